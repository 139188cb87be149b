package repository

import (
	"context"
	"errors"

	"github.com/serverless-todo/todo-backend/internal/models"
)

// ErrConditionFailed is returned when a conditional write finds no record
// owned by the caller. Absence and owner mismatch are indistinguishable.
var ErrConditionFailed = errors.New("conditional check failed")

// Repository is the todo data access contract. Writes are one round trip to
// the backing store; ListByOwner follows the store's pagination to the end.
type Repository interface {
	ListByOwner(ctx context.Context, ownerID string) ([]models.TodoItem, error)
	Create(ctx context.Context, item models.TodoItem) (models.TodoItem, error)
	Update(ctx context.Context, todoID, ownerID string, patch models.TodoUpdate) error
	Delete(ctx context.Context, todoID, ownerID string) error
	SetAttachmentURL(ctx context.Context, todoID, ownerID, url string) error
}
