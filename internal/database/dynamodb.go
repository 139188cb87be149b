package database

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
)

// NewAWSSession builds a session for region using the default credential chain.
func NewAWSSession(region string) (*session.Session, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, fmt.Errorf("aws session: %w", err)
	}
	return sess, nil
}

// NewDynamoDB returns a client, pointed at endpoint when set (DynamoDB Local
// for offline runs).
func NewDynamoDB(sess *session.Session, endpoint string) *dynamodb.DynamoDB {
	cfg := aws.NewConfig()
	if endpoint != "" {
		cfg = cfg.WithEndpoint(endpoint)
	}
	return dynamodb.New(sess, cfg)
}

// PingTable reports whether table is reachable and active.
func PingTable(ctx context.Context, db dynamodbiface.DynamoDBAPI, table string) error {
	out, err := db.DescribeTableWithContext(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(table)})
	if err != nil {
		return fmt.Errorf("describe table %s: %w", table, err)
	}
	if status := aws.StringValue(out.Table.TableStatus); status != dynamodb.TableStatusActive {
		return fmt.Errorf("table %s is %s", table, status)
	}
	return nil
}
