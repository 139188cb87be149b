// Package service holds the todo business rules: ownership comes from the
// caller's token and every change goes through the repository's owner check.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/serverless-todo/todo-backend/internal/auth"
	"github.com/serverless-todo/todo-backend/internal/models"
	"github.com/serverless-todo/todo-backend/internal/todo/repository"
	"github.com/serverless-todo/todo-backend/pkg/metrics"
)

// CreatedAtLayout is RFC 3339 in UTC with millisecond precision.
const CreatedAtLayout = "2006-01-02T15:04:05.000Z"

type Service struct {
	repo  repository.Repository
	newID func() string
	now   func() time.Time
}

func New(repo repository.Repository) *Service {
	return &Service{repo: repo, newID: uuid.NewString, now: time.Now}
}

func record(op string, err error) {
	metrics.TodoOperations.WithLabelValues(op, metrics.Outcome(err)).Inc()
}

func (s *Service) GetAllTodos(ctx context.Context, token string) (items []models.TodoItem, err error) {
	defer func() { record("list", err) }()
	userID, err := auth.ParseUserID(token)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByOwner(ctx, userID)
}

// CreateTodo stores a new item owned by the token's subject. done starts false.
func (s *Service) CreateTodo(ctx context.Context, req models.CreateTodoRequest, token string) (item models.TodoItem, err error) {
	defer func() { record("create", err) }()
	userID, err := auth.ParseUserID(token)
	if err != nil {
		return models.TodoItem{}, err
	}
	return s.repo.Create(ctx, models.TodoItem{
		UserID:    userID,
		TodoID:    s.newID(),
		CreatedAt: s.now().UTC().Format(CreatedAtLayout),
		Name:      req.Name,
		DueDate:   req.DueDate,
		Done:      false,
	})
}

func (s *Service) UpdateTodo(ctx context.Context, todoID string, req models.UpdateTodoRequest, token string) (err error) {
	defer func() { record("update", err) }()
	userID, err := auth.ParseUserID(token)
	if err != nil {
		return err
	}
	return s.repo.Update(ctx, todoID, userID, models.TodoUpdate{
		Name:    req.Name,
		DueDate: req.DueDate,
		Done:    req.Done,
	})
}

func (s *Service) DeleteTodo(ctx context.Context, todoID, token string) (err error) {
	defer func() { record("delete", err) }()
	userID, err := auth.ParseUserID(token)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, todoID, userID)
}

// AddImage records the public URL of an uploaded attachment.
func (s *Service) AddImage(ctx context.Context, todoID, token, url string) (err error) {
	defer func() { record("add_image", err) }()
	userID, err := auth.ParseUserID(token)
	if err != nil {
		return err
	}
	return s.repo.SetAttachmentURL(ctx, todoID, userID, url)
}
