package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/serverless-todo/todo-backend/internal/models"
)

type memoryKey struct {
	userID string
	todoID string
}

// MemoryRepo is an in-memory repository for local runs and unit tests.
// It applies the same owner-match conditions as the managed store.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[memoryKey]models.TodoItem
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[memoryKey]models.TodoItem)}
}

// ListByOwner returns the owner's items ordered by creation time.
func (m *MemoryRepo) ListByOwner(_ context.Context, ownerID string) ([]models.TodoItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []models.TodoItem{}
	for k, item := range m.store {
		if k.userID == ownerID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].TodoID < out[j].TodoID
	})
	return out, nil
}

func (m *MemoryRepo) Create(_ context.Context, item models.TodoItem) (models.TodoItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[memoryKey{item.UserID, item.TodoID}] = item
	return item, nil
}

func (m *MemoryRepo) Update(_ context.Context, todoID, ownerID string, patch models.TodoUpdate) error {
	return m.mutate(todoID, ownerID, func(item *models.TodoItem) {
		item.Name = patch.Name
		item.DueDate = patch.DueDate
		item.Done = patch.Done
	})
}

func (m *MemoryRepo) SetAttachmentURL(_ context.Context, todoID, ownerID, url string) error {
	return m.mutate(todoID, ownerID, func(item *models.TodoItem) {
		item.AttachmentURL = url
	})
}

func (m *MemoryRepo) Delete(_ context.Context, todoID, ownerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := memoryKey{ownerID, todoID}
	if _, ok := m.store[k]; !ok {
		return ErrConditionFailed
	}
	delete(m.store, k)
	return nil
}

func (m *MemoryRepo) mutate(todoID, ownerID string, apply func(*models.TodoItem)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := memoryKey{ownerID, todoID}
	item, ok := m.store[k]
	if !ok {
		return ErrConditionFailed
	}
	apply(&item)
	m.store[k] = item
	return nil
}
