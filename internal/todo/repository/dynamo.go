package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbattribute"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"github.com/aws/aws-sdk-go/service/dynamodb/expression"
	"github.com/serverless-todo/todo-backend/internal/models"
	"github.com/serverless-todo/todo-backend/pkg/logger"
)

// DynamoRepo stores todos in a DynamoDB table keyed by (userId, todoId).
// Listing goes through a secondary index whose partition key is userId.
type DynamoRepo struct {
	db    dynamodbiface.DynamoDBAPI
	table string
	index string
	log   *logger.Logger
}

func NewDynamoRepo(db dynamodbiface.DynamoDBAPI, table, index string) *DynamoRepo {
	return &DynamoRepo{db: db, table: table, index: index, log: logger.New("todoAccess")}
}

func (r *DynamoRepo) key(todoID, ownerID string) map[string]*dynamodb.AttributeValue {
	return map[string]*dynamodb.AttributeValue{
		"userId": {S: aws.String(ownerID)},
		"todoId": {S: aws.String(todoID)},
	}
}

// ownerCondition matches only an existing record whose userId is the caller.
func ownerCondition(ownerID string) expression.ConditionBuilder {
	return expression.AttributeExists(expression.Name("todoId")).
		And(expression.Name("userId").Equal(expression.Value(ownerID)))
}

func (r *DynamoRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.TodoItem, error) {
	r.log.Info("Getting all todos", "userId", ownerID)
	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.Key("userId").Equal(expression.Value(ownerID))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	in := &dynamodb.QueryInput{
		TableName:                 aws.String(r.table),
		IndexName:                 aws.String(r.index),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}
	out := []models.TodoItem{}
	var decodeErr error
	err = r.db.QueryPagesWithContext(ctx, in, func(page *dynamodb.QueryOutput, _ bool) bool {
		var items []models.TodoItem
		if decodeErr = dynamodbattribute.UnmarshalListOfMaps(page.Items, &items); decodeErr != nil {
			return false
		}
		out = append(out, items...)
		return true
	})
	if err != nil {
		return nil, err
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("unmarshal todos: %w", decodeErr)
	}
	return out, nil
}

func (r *DynamoRepo) Create(ctx context.Context, item models.TodoItem) (models.TodoItem, error) {
	r.log.Info("Creating todo", "todoId", item.TodoID, "userId", item.UserID)
	av, err := dynamodbattribute.MarshalMap(item)
	if err != nil {
		return models.TodoItem{}, fmt.Errorf("marshal todo: %w", err)
	}
	_, err = r.db.PutItemWithContext(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      av,
	})
	if err != nil {
		return models.TodoItem{}, err
	}
	return item, nil
}

func (r *DynamoRepo) Update(ctx context.Context, todoID, ownerID string, patch models.TodoUpdate) error {
	r.log.Info("Updating todo", "todoId", todoID, "userId", ownerID)
	update := expression.Set(expression.Name("name"), expression.Value(patch.Name)).
		Set(expression.Name("dueDate"), expression.Value(patch.DueDate)).
		Set(expression.Name("done"), expression.Value(patch.Done))
	return r.updateOwned(ctx, todoID, ownerID, update)
}

func (r *DynamoRepo) SetAttachmentURL(ctx context.Context, todoID, ownerID, url string) error {
	r.log.Info("Setting attachment url", "todoId", todoID, "userId", ownerID)
	update := expression.Set(expression.Name("attachmentUrl"), expression.Value(url))
	return r.updateOwned(ctx, todoID, ownerID, update)
}

func (r *DynamoRepo) updateOwned(ctx context.Context, todoID, ownerID string, update expression.UpdateBuilder) error {
	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(ownerCondition(ownerID)).
		Build()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	_, err = r.db.UpdateItemWithContext(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.table),
		Key:                       r.key(todoID, ownerID),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	return mapConditionErr(err)
}

func (r *DynamoRepo) Delete(ctx context.Context, todoID, ownerID string) error {
	r.log.Info("Deleting todo", "todoId", todoID, "userId", ownerID)
	expr, err := expression.NewBuilder().WithCondition(ownerCondition(ownerID)).Build()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	_, err = r.db.DeleteItemWithContext(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(r.table),
		Key:                       r.key(todoID, ownerID),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	return mapConditionErr(err)
}

func mapConditionErr(err error) error {
	if err == nil {
		return nil
	}
	var aerr awserr.Error
	if errors.As(err, &aerr) && aerr.Code() == dynamodb.ErrCodeConditionalCheckFailedException {
		return ErrConditionFailed
	}
	return err
}
