package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/serverless-todo/todo-backend/pkg/middleware"
)

// TokenAuthorizerRequest is the body a gateway sends to a token authorizer.
type TokenAuthorizerRequest struct {
	Type               string `json:"type"`
	AuthorizationToken string `json:"authorizationToken"`
	MethodArn          string `json:"methodArn"`
}

// RegisterAuthorizer mounts POST /authorize. The answer is always 200 with a
// policy document; Deny is expressed in the document, not the status.
func RegisterAuthorizer(r gin.IRoutes, a middleware.Authorizer) {
	r.POST("/authorize", func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			var req TokenAuthorizerRequest
			if err := c.ShouldBindJSON(&req); err == nil {
				header = req.AuthorizationToken
			}
		}
		d := a.Authorize(c.Request.Context(), header)
		c.JSON(http.StatusOK, d.Policy())
	})
}
