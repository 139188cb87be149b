// Package bootstrap builds the runtime dependencies selected by config.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/redis/go-redis/v9"
	"github.com/serverless-todo/todo-backend/internal/auth"
	"github.com/serverless-todo/todo-backend/internal/config"
	"github.com/serverless-todo/todo-backend/internal/database"
	"github.com/serverless-todo/todo-backend/internal/oidc"
	"github.com/serverless-todo/todo-backend/internal/secrets"
	"github.com/serverless-todo/todo-backend/internal/storage"
	"github.com/serverless-todo/todo-backend/internal/todo/repository"
	"github.com/serverless-todo/todo-backend/pkg/logger"
)

// Check reports whether a dependency is usable; nil means ready.
type Check func(ctx context.Context) error

// Closer releases a dependency on shutdown.
type Closer func(ctx context.Context) error

func alwaysReady(context.Context) error { return nil }

func noClose(context.Context) error { return nil }

const mongoConnectAttempts = 5

// Verifier builds the token verifier for the configured trust source.
// Precedence is JWKS URL, Secrets Manager secret, certificate file, inline PEM.
// A key ring is refreshed in the background while ctx lives when
// cfg.Auth.RefreshInterval is positive.
func Verifier(ctx context.Context, cfg *config.Config, sess *session.Session) (auth.Verifier, Check, error) {
	if cfg.Auth.JWKSURL != "" {
		logger.Infof("trust source: JWKS %s", cfg.Auth.JWKSURL)
		return oidc.NewJWKSVerifier(ctx, cfg.Auth.JWKSURL), alwaysReady, nil
	}

	var src auth.KeySource
	switch {
	case cfg.Auth.CertSecretID != "":
		logger.Infof("trust source: secret %s", cfg.Auth.CertSecretID)
		src = secrets.NewCertificateSource(sess, cfg.Auth.CertSecretID)
	case cfg.Auth.CertFile != "":
		logger.Infof("trust source: file %s", cfg.Auth.CertFile)
		src = auth.FileSource(cfg.Auth.CertFile)
	case cfg.Auth.CertPEM != "":
		logger.Infof("trust source: inline certificate")
		src = auth.PEMSource(cfg.Auth.CertPEM)
	default:
		return nil, nil, fmt.Errorf("no trusted certificate configured")
	}

	ring := auth.NewKeyRing(src)
	if err := ring.Reload(ctx); err != nil {
		if cfg.Auth.RefreshInterval <= 0 {
			return nil, nil, fmt.Errorf("load trusted certificate: %w", err)
		}
		logger.Warnf("initial trusted key load failed, retrying every %s: %v", cfg.Auth.RefreshInterval, err)
	}
	if cfg.Auth.RefreshInterval > 0 {
		go ring.Watch(ctx, cfg.Auth.RefreshInterval)
	}
	return auth.NewCertVerifier(ring), ring.Ready, nil
}

// Repository opens the configured record store.
func Repository(ctx context.Context, cfg *config.Config, sess *session.Session) (repository.Repository, Check, Closer, error) {
	switch cfg.Todos.Store {
	case config.StoreMemory:
		logger.Warnf("using in-memory todo store; data is lost on restart")
		return repository.NewMemoryRepo(), alwaysReady, noClose, nil

	case config.StoreMongo:
		client, err := database.ConnectMongoWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, mongoConnectAttempts)
		if err != nil {
			return nil, nil, nil, err
		}
		col := client.Database(cfg.MongoDB.Database).Collection(cfg.Todos.Table)
		repo, err := repository.NewMongoRepo(ctx, col)
		if err != nil {
			_ = client.Disconnect(ctx)
			return nil, nil, nil, fmt.Errorf("mongo index: %w", err)
		}
		ready := func(ctx context.Context) error { return client.Ping(ctx, nil) }
		return repo, ready, client.Disconnect, nil

	case config.StoreDynamoDB:
		db := database.NewDynamoDB(sess, cfg.AWS.DynamoDBEndpoint)
		ready := func(ctx context.Context) error { return database.PingTable(ctx, db, cfg.Todos.Table) }
		return repository.NewDynamoRepo(db, cfg.Todos.Table, cfg.Todos.Index), ready, noClose, nil
	}
	return nil, nil, nil, fmt.Errorf("unsupported TODOS_STORE %q", cfg.Todos.Store)
}

// URLSigner builds the attachment presigner.
func URLSigner(ctx context.Context, cfg *config.Config, sess *session.Session) (storage.URLSigner, error) {
	switch cfg.Attachments.Store {
	case config.AttachmentsS3:
		return storage.NewS3Storage(sess, cfg.Attachments.Bucket, cfg.AWS.S3Endpoint), nil
	case config.AttachmentsMinIO:
		s, err := storage.NewMinIOStorage(cfg.Attachments.MinIO, cfg.Attachments.Bucket, cfg.AWS.Region)
		if err != nil {
			return nil, err
		}
		if err := s.EnsureBucket(ctx); err != nil {
			logger.Warnf("minio bucket %s not ensured: %v", cfg.Attachments.Bucket, err)
		}
		return s, nil
	}
	return nil, fmt.Errorf("unsupported ATTACHMENTS_STORE %q", cfg.Attachments.Store)
}

// Redis connects when REDIS_HOST is set. It returns nil when Redis is not
// configured or unreachable; callers fall back to in-process state.
func Redis(ctx context.Context, cfg *config.Config) *redis.Client {
	addr := cfg.RedisAddr()
	if addr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warnf("failed to connect to Redis (%s): %v", addr, err)
		_ = client.Close()
		return nil
	}
	logger.Infof("Connected to Redis: %s", addr)
	return client
}
