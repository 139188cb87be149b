package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/serverless-todo/todo-backend/internal/auth"
	"github.com/serverless-todo/todo-backend/internal/config"
	"github.com/serverless-todo/todo-backend/internal/storage"
	"github.com/serverless-todo/todo-backend/internal/todo/repository"
	"github.com/serverless-todo/todo-backend/internal/tokens"
	"github.com/stretchr/testify/require"
)

func testSession(t *testing.T) *session.Session {
	t.Helper()
	sess, err := session.NewSession(&aws.Config{
		Region:      aws.String("us-east-1"),
		Credentials: credentials.NewStaticCredentials("AKIDEXAMPLE", "secret", ""),
	})
	require.NoError(t, err)
	return sess
}

func TestVerifier_FromPEM(t *testing.T) {
	key, err := tokens.GenerateKey()
	require.NoError(t, err)
	cert, err := tokens.CertificatePEM(key, "tenant.example", time.Hour)
	require.NoError(t, err)

	cfg := &config.Config{Auth: config.AuthConfig{CertPEM: string(cert)}}
	v, ready, err := Verifier(context.Background(), cfg, testSession(t))
	require.NoError(t, err)
	require.NoError(t, ready(context.Background()))

	tok, err := tokens.GenerateAccessToken(key, "", "auth0|x", time.Hour)
	require.NoError(t, err)
	claims, err := v.Verify(context.Background(), tok)
	require.NoError(t, err)
	require.Equal(t, "auth0|x", claims.Subject)
}

func TestVerifier_FileTakesPrecedenceOverPEM(t *testing.T) {
	key, err := tokens.GenerateKey()
	require.NoError(t, err)
	cert, err := tokens.CertificatePEM(key, "tenant.example", time.Hour)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "cert.pem")
	require.NoError(t, os.WriteFile(path, cert, 0o600))

	cfg := &config.Config{Auth: config.AuthConfig{CertFile: path, CertPEM: "not a certificate"}}
	v, _, err := Verifier(context.Background(), cfg, testSession(t))
	require.NoError(t, err)
	_, ok := v.(*auth.CertVerifier)
	require.True(t, ok)
}

func TestVerifier_BadCertificate(t *testing.T) {
	cfg := &config.Config{Auth: config.AuthConfig{CertPEM: "garbage"}}
	_, _, err := Verifier(context.Background(), cfg, testSession(t))
	require.Error(t, err)

	// with a refresh interval the process starts but stays not ready
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfg.Auth.RefreshInterval = time.Hour
	_, ready, err := Verifier(ctx, cfg, testSession(t))
	require.NoError(t, err)
	require.Error(t, ready(ctx))
}

func TestVerifier_NoSource(t *testing.T) {
	_, _, err := Verifier(context.Background(), &config.Config{}, testSession(t))
	require.Error(t, err)
}

func TestRepository_Memory(t *testing.T) {
	cfg := &config.Config{Todos: config.TodosConfig{Store: config.StoreMemory}}
	repo, ready, closer, err := Repository(context.Background(), cfg, testSession(t))
	require.NoError(t, err)
	require.IsType(t, &repository.MemoryRepo{}, repo)
	require.NoError(t, ready(context.Background()))
	require.NoError(t, closer(context.Background()))
}

func TestRepository_DynamoDB(t *testing.T) {
	cfg := &config.Config{Todos: config.TodosConfig{Store: config.StoreDynamoDB, Table: "Todos", Index: "TodoIdIndex"}}
	repo, _, _, err := Repository(context.Background(), cfg, testSession(t))
	require.NoError(t, err)
	require.IsType(t, &repository.DynamoRepo{}, repo)
}

func TestRepository_Unsupported(t *testing.T) {
	cfg := &config.Config{Todos: config.TodosConfig{Store: "sqlite"}}
	_, _, _, err := Repository(context.Background(), cfg, testSession(t))
	require.Error(t, err)
}

func TestURLSigner_S3(t *testing.T) {
	cfg := &config.Config{Attachments: config.AttachmentsConfig{Store: config.AttachmentsS3, Bucket: "todo-attachments"}}
	s, err := URLSigner(context.Background(), cfg, testSession(t))
	require.NoError(t, err)
	require.IsType(t, &storage.S3Storage{}, s)
	require.Equal(t, "https://todo-attachments.s3.amazonaws.com/t1", s.ObjectURL("t1"))
}

func TestRedis(t *testing.T) {
	require.Nil(t, Redis(context.Background(), &config.Config{}))

	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	cfg := &config.Config{Redis: config.RedisConfig{Host: m.Host(), Port: m.Port()}}
	client := Redis(context.Background(), cfg)
	require.NotNil(t, client)
	defer client.Close()
	require.NoError(t, client.Set(context.Background(), "k", "v", 0).Err())

	m.Close()
	require.Nil(t, Redis(context.Background(), cfg))
}
