package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the todo API.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(r gin.IRoutes) {
	r.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	r.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>todo-backend Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "todo-backend", "version": "v1.0.0" },
  "components": {
    "securitySchemes": { "bearer": { "type": "http", "scheme": "bearer", "bearerFormat": "JWT" } },
    "schemas": {
      "TodoItem": {
        "type": "object",
        "properties": {
          "userId": {"type":"string"}, "todoId": {"type":"string"}, "createdAt": {"type":"string"},
          "name": {"type":"string"}, "dueDate": {"type":"string"}, "done": {"type":"boolean"},
          "attachmentUrl": {"type":"string"}
        }
      }
    }
  },
  "security": [ { "bearer": [] } ],
  "paths": {
    "/todos": {
      "get": { "summary": "List the caller's todos", "responses": { "200": { "description": "array of TodoItem" }, "403": { "description": "not authorized" } } },
      "post": {
        "summary": "Create a todo",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"name":{"type":"string"},"dueDate":{"type":"string"}}}}}},
        "responses": { "200": { "description": "created TodoItem" }, "500": { "description": "internal error" } }
      }
    },
    "/todos/{todoId}": {
      "patch": {
        "summary": "Overwrite name, dueDate and done",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"name":{"type":"string"},"dueDate":{"type":"string"},"done":{"type":"boolean"}}}}}},
        "responses": { "200": { "description": "updated" }, "500": { "description": "not found, not owned or store error" } }
      },
      "delete": { "summary": "Delete a todo", "responses": { "200": { "description": "deleted" }, "500": { "description": "not found, not owned or store error" } } }
    },
    "/todos/{todoId}/attachment": {
      "post": { "summary": "Presigned upload URL for the todo's attachment", "responses": { "200": { "description": "{\"uploadUrl\": ...}" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
