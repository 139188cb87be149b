package repository

import (
	"context"

	"github.com/serverless-todo/todo-backend/internal/models"
	"github.com/serverless-todo/todo-backend/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo stores todos in a MongoDB collection. The compound unique index
// on (userId, todoId) mirrors the managed table's composite key.
type MongoRepo struct {
	col *mongo.Collection
	log *logger.Logger
}

func NewMongoRepo(ctx context.Context, col *mongo.Collection) (*MongoRepo, error) {
	idxModel := mongo.IndexModel{
		Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "todoId", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := col.Indexes().CreateOne(ctx, idxModel); err != nil {
		return nil, err
	}
	return &MongoRepo{col: col, log: logger.New("todoAccess")}, nil
}

func ownedBy(todoID, ownerID string) bson.M {
	return bson.M{"userId": ownerID, "todoId": todoID}
}

func (m *MongoRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.TodoItem, error) {
	m.log.Info("Getting all todos", "userId", ownerID)
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	cur, err := m.col.Find(ctx, bson.M{"userId": ownerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.TodoItem{}
	for cur.Next(ctx) {
		var item models.TodoItem
		if err := cur.Decode(&item); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, cur.Err()
}

func (m *MongoRepo) Create(ctx context.Context, item models.TodoItem) (models.TodoItem, error) {
	m.log.Info("Creating todo", "todoId", item.TodoID, "userId", item.UserID)
	if _, err := m.col.InsertOne(ctx, item); err != nil {
		return models.TodoItem{}, err
	}
	return item, nil
}

func (m *MongoRepo) Update(ctx context.Context, todoID, ownerID string, patch models.TodoUpdate) error {
	m.log.Info("Updating todo", "todoId", todoID, "userId", ownerID)
	set := bson.M{"name": patch.Name, "dueDate": patch.DueDate, "done": patch.Done}
	return m.updateOwned(ctx, todoID, ownerID, set)
}

func (m *MongoRepo) SetAttachmentURL(ctx context.Context, todoID, ownerID, url string) error {
	m.log.Info("Setting attachment url", "todoId", todoID, "userId", ownerID)
	return m.updateOwned(ctx, todoID, ownerID, bson.M{"attachmentUrl": url})
}

func (m *MongoRepo) updateOwned(ctx context.Context, todoID, ownerID string, set bson.M) error {
	res, err := m.col.UpdateOne(ctx, ownedBy(todoID, ownerID), bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrConditionFailed
	}
	return nil
}

func (m *MongoRepo) Delete(ctx context.Context, todoID, ownerID string) error {
	m.log.Info("Deleting todo", "todoId", todoID, "userId", ownerID)
	res, err := m.col.DeleteOne(ctx, ownedBy(todoID, ownerID))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrConditionFailed
	}
	return nil
}
