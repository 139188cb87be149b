package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/serverless-todo/todo-backend/internal/models"
	"github.com/serverless-todo/todo-backend/internal/storage"
	"github.com/serverless-todo/todo-backend/pkg/logger"
)

// TodoService is the business surface the handlers call.
type TodoService interface {
	GetAllTodos(ctx context.Context, token string) ([]models.TodoItem, error)
	CreateTodo(ctx context.Context, req models.CreateTodoRequest, token string) (models.TodoItem, error)
	UpdateTodo(ctx context.Context, todoID string, req models.UpdateTodoRequest, token string) error
	DeleteTodo(ctx context.Context, todoID, token string) error
	AddImage(ctx context.Context, todoID, token, url string) error
}

type Handler struct {
	svc           TodoService
	signer        storage.URLSigner
	urlExpiration time.Duration
	log           *logger.Logger
}

func New(svc TodoService, signer storage.URLSigner, urlExpiration time.Duration) *Handler {
	return &Handler{svc: svc, signer: signer, urlExpiration: urlExpiration, log: logger.New("todoHandler")}
}

// Register mounts the todo routes. The group is expected to sit behind the
// authorizer middleware.
func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/todos", h.list)
	r.POST("/todos", h.create)
	r.PATCH("/todos/:todoId", h.update)
	r.DELETE("/todos/:todoId", h.delete)
	r.POST("/todos/:todoId/attachment", h.uploadURL)
}

// jwtToken returns the second space-separated part of the Authorization header.
func jwtToken(c *gin.Context) string {
	parts := strings.Split(c.GetHeader("Authorization"), " ")
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	h.log.Error("request failed", "operation", op, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.svc.GetAllTodos(c.Request.Context(), jwtToken(c))
	if err != nil {
		h.fail(c, "list", err)
		return
	}
	if items == nil {
		items = []models.TodoItem{}
	}
	c.JSON(http.StatusOK, items)
}

func (h *Handler) create(c *gin.Context) {
	var req models.CreateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, "create", err)
		return
	}
	item, err := h.svc.CreateTodo(c.Request.Context(), req, jwtToken(c))
	if err != nil {
		h.fail(c, "create", err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *Handler) update(c *gin.Context) {
	var req models.UpdateTodoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, "update", err)
		return
	}
	if err := h.svc.UpdateTodo(c.Request.Context(), c.Param("todoId"), req, jwtToken(c)); err != nil {
		h.fail(c, "update", err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.svc.DeleteTodo(c.Request.Context(), c.Param("todoId"), jwtToken(c)); err != nil {
		h.fail(c, "delete", err)
		return
	}
	c.Status(http.StatusOK)
}

func (h *Handler) uploadURL(c *gin.Context) {
	todoID := c.Param("todoId")
	ctx := c.Request.Context()
	uploadURL, err := h.signer.PresignedUploadURL(ctx, todoID, h.urlExpiration)
	if err != nil {
		h.fail(c, "upload_url", err)
		return
	}
	if err := h.svc.AddImage(ctx, todoID, jwtToken(c), h.signer.ObjectURL(todoID)); err != nil {
		h.fail(c, "upload_url", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"uploadUrl": uploadURL})
}
