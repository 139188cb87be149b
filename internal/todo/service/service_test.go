package service

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/serverless-todo/todo-backend/internal/models"
	"github.com/serverless-todo/todo-backend/internal/todo/repository"
	"github.com/serverless-todo/todo-backend/internal/tokens"
	"github.com/serverless-todo/todo-backend/pkg/metrics"
	"github.com/stretchr/testify/require"
)

func tokenFor(t *testing.T, sub string) string {
	t.Helper()
	key, err := tokens.GenerateKey()
	require.NoError(t, err)
	tok, err := tokens.GenerateAccessToken(key, "https://tenant.example/", sub, time.Hour)
	require.NoError(t, err)
	return tok
}

func newTestService() *Service {
	s := New(repository.NewMemoryRepo())
	ids := []string{"id-1", "id-2", "id-3"}
	s.newID = func() string {
		id := ids[0]
		ids = ids[1:]
		return id
	}
	s.now = func() time.Time { return time.Date(2019, 5, 4, 13, 22, 7, 123456789, time.FixedZone("CEST", 2*3600)) }
	return s
}

func TestCreateTodo(t *testing.T) {
	s := newTestService()
	tok := tokenFor(t, "auth0|alice")

	item, err := s.CreateTodo(context.Background(), models.CreateTodoRequest{Name: "Buy milk", DueDate: "2019-06-01"}, tok)
	require.NoError(t, err)
	require.Equal(t, models.TodoItem{
		UserID:    "auth0|alice",
		TodoID:    "id-1",
		CreatedAt: "2019-05-04T11:22:07.123Z",
		Name:      "Buy milk",
		DueDate:   "2019-06-01",
		Done:      false,
	}, item)
}

func TestCreateTodo_RealIDsAreUnique(t *testing.T) {
	s := New(repository.NewMemoryRepo())
	tok := tokenFor(t, "auth0|alice")
	a, err := s.CreateTodo(context.Background(), models.CreateTodoRequest{Name: "a"}, tok)
	require.NoError(t, err)
	b, err := s.CreateTodo(context.Background(), models.CreateTodoRequest{Name: "b"}, tok)
	require.NoError(t, err)
	require.NotEqual(t, a.TodoID, b.TodoID)
	_, err = time.Parse(CreatedAtLayout, a.CreatedAt)
	require.NoError(t, err)
}

func TestGetAllTodos_OnlyOwnItems(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	alice, bob := tokenFor(t, "auth0|alice"), tokenFor(t, "auth0|bob")

	_, err := s.CreateTodo(ctx, models.CreateTodoRequest{Name: "a1"}, alice)
	require.NoError(t, err)
	_, err = s.CreateTodo(ctx, models.CreateTodoRequest{Name: "b1"}, bob)
	require.NoError(t, err)

	list, err := s.GetAllTodos(ctx, alice)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "a1", list[0].Name)

	none, err := s.GetAllTodos(ctx, tokenFor(t, "auth0|carol"))
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestUpdateAndDelete_OwnerScoped(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	alice, bob := tokenFor(t, "auth0|alice"), tokenFor(t, "auth0|bob")

	item, err := s.CreateTodo(ctx, models.CreateTodoRequest{Name: "Buy milk", DueDate: "2019-06-01"}, alice)
	require.NoError(t, err)

	err = s.UpdateTodo(ctx, item.TodoID, models.UpdateTodoRequest{Name: "x", Done: true}, bob)
	require.ErrorIs(t, err, repository.ErrConditionFailed)
	require.ErrorIs(t, s.DeleteTodo(ctx, item.TodoID, bob), repository.ErrConditionFailed)

	require.NoError(t, s.UpdateTodo(ctx, item.TodoID, models.UpdateTodoRequest{Name: "Buy oat milk", DueDate: "2019-06-02", Done: true}, alice))
	list, err := s.GetAllTodos(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, "Buy oat milk", list[0].Name)
	require.True(t, list[0].Done)
	require.Equal(t, item.CreatedAt, list[0].CreatedAt)

	require.NoError(t, s.DeleteTodo(ctx, item.TodoID, alice))
	list, err = s.GetAllTodos(ctx, alice)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestAddImage(t *testing.T) {
	s := newTestService()
	ctx := context.Background()
	alice := tokenFor(t, "auth0|alice")
	item, err := s.CreateTodo(ctx, models.CreateTodoRequest{Name: "scan"}, alice)
	require.NoError(t, err)

	require.NoError(t, s.AddImage(ctx, item.TodoID, alice, "https://todos.s3.amazonaws.com/"+item.TodoID))
	list, err := s.GetAllTodos(ctx, alice)
	require.NoError(t, err)
	require.Equal(t, "https://todos.s3.amazonaws.com/id-1", list[0].AttachmentURL)

	require.ErrorIs(t, s.AddImage(ctx, "missing", alice, "u"), repository.ErrConditionFailed)
}

func TestMalformedTokenFails(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	_, err := s.GetAllTodos(ctx, "not-a-jwt")
	require.Error(t, err)
	_, err = s.CreateTodo(ctx, models.CreateTodoRequest{Name: "x"}, "")
	require.Error(t, err)
	require.Error(t, s.DeleteTodo(ctx, "id", "a.b"))
}

func TestOperationsAreCounted(t *testing.T) {
	s := newTestService()
	before := testutil.ToFloat64(metrics.TodoOperations.WithLabelValues("delete", "error"))
	_ = s.DeleteTodo(context.Background(), "missing", tokenFor(t, "auth0|alice"))
	require.Equal(t, before+1, testutil.ToFloat64(metrics.TodoOperations.WithLabelValues("delete", "error")))
}
