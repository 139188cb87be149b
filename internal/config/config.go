package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Record store and attachment store backends.
const (
	StoreDynamoDB = "dynamodb"
	StoreMongo    = "mongo"
	StoreMemory   = "memory"

	AttachmentsS3    = "s3"
	AttachmentsMinIO = "minio"
)

// Config holds application configuration
type Config struct {
	Server      ServerConfig
	LogLevel    string
	Todos       TodosConfig
	AWS         AWSConfig
	MongoDB     MongoDBConfig
	Attachments AttachmentsConfig
	Auth        AuthConfig
	Redis       RedisConfig
	RateLimit   RateLimitConfig
}

type ServerConfig struct {
	Port           string
	Host           string
	AuthorizerPort string
	Environment    string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
}

type TodosConfig struct {
	Store string
	Table string
	Index string
}

type AWSConfig struct {
	Region           string
	DynamoDBEndpoint string
	S3Endpoint       string
}

type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

type AttachmentsConfig struct {
	Store         string
	Bucket        string
	URLExpiration time.Duration
	MinIO         MinIOConfig
}

// MinIOConfig holds MinIO connection configuration
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// AuthConfig selects where the trusted signing certificate comes from.
// Exactly one source is used; precedence is JWKSURL, CertSecretID, CertFile, CertPEM.
type AuthConfig struct {
	CertPEM         string
	CertFile        string
	CertSecretID    string
	JWKSURL         string
	RefreshInterval time.Duration
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
}

type RateLimitConfig struct {
	Enabled       bool
	RPS           float64
	Burst         int
	UseRedis      bool
	WindowSeconds int
}

// LoadConfig loads configuration from environment variables and an optional .env file
func LoadConfig() (*Config, error) {
	cfg := load()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadAuthorizerConfig is LoadConfig for cmd/authorizer, which only needs a
// trust source.
func LoadAuthorizerConfig() (*Config, error) {
	cfg := load()
	if err := cfg.validateAuth(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func load() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "5001")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("AUTHORIZER_PORT", "5002")
	v.SetDefault("SERVER_ENVIRONMENT", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("TODOS_STORE", StoreDynamoDB)
	v.SetDefault("TODOS_TABLE", "Todos")
	v.SetDefault("TODO_ID_INDEX", "TodoIdIndex")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("MONGODB_DATABASE", "todos")
	v.SetDefault("MONGODB_TIMEOUT", 10)
	v.SetDefault("ATTACHMENTS_STORE", AttachmentsS3)
	v.SetDefault("SIGNED_URL_EXPIRATION", 300)
	v.SetDefault("AUTH_CERT_REFRESH_INTERVAL", 0)
	v.SetDefault("RATE_LIMIT_RPS", 10)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 1)

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Host:           v.GetString("SERVER_HOST"),
			AuthorizerPort: v.GetString("AUTHORIZER_PORT"),
			Environment:    v.GetString("SERVER_ENVIRONMENT"),
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
		},
		LogLevel: v.GetString("LOG_LEVEL"),
		Todos: TodosConfig{
			Store: strings.ToLower(v.GetString("TODOS_STORE")),
			Table: v.GetString("TODOS_TABLE"),
			Index: v.GetString("TODO_ID_INDEX"),
		},
		AWS: AWSConfig{
			Region:           v.GetString("AWS_REGION"),
			DynamoDBEndpoint: v.GetString("DYNAMODB_ENDPOINT"),
			S3Endpoint:       v.GetString("S3_ENDPOINT"),
		},
		MongoDB: MongoDBConfig{
			URI:      v.GetString("MONGODB_URI"),
			Database: v.GetString("MONGODB_DATABASE"),
			Timeout:  time.Duration(v.GetInt("MONGODB_TIMEOUT")) * time.Second,
		},
		Attachments: AttachmentsConfig{
			Store:         strings.ToLower(v.GetString("ATTACHMENTS_STORE")),
			Bucket:        v.GetString("TODOS_S3_BUCKET"),
			URLExpiration: time.Duration(v.GetInt("SIGNED_URL_EXPIRATION")) * time.Second,
			MinIO: MinIOConfig{
				Endpoint:  v.GetString("MINIO_ENDPOINT"),
				AccessKey: v.GetString("MINIO_ACCESS_KEY"),
				SecretKey: v.GetString("MINIO_SECRET_KEY"),
				UseSSL:    v.GetBool("MINIO_USE_SSL"),
			},
		},
		Auth: AuthConfig{
			CertPEM:         v.GetString("AUTH_CERT_PEM"),
			CertFile:        v.GetString("AUTH_CERT_FILE"),
			CertSecretID:    v.GetString("AUTH_CERT_SECRET_ID"),
			JWKSURL:         v.GetString("AUTH_JWKS_URL"),
			RefreshInterval: time.Duration(v.GetInt("AUTH_CERT_REFRESH_INTERVAL")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
		},
		RateLimit: RateLimitConfig{
			Enabled:       v.GetBool("RATE_LIMIT_ENABLED"),
			RPS:           v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:         v.GetInt("RATE_LIMIT_BURST"),
			UseRedis:      v.GetBool("RATE_LIMIT_USE_REDIS"),
			WindowSeconds: v.GetInt("RATE_LIMIT_WINDOW_SECONDS"),
		},
	}
	return cfg
}

// Validate checks the settings the todo service cannot start without.
func (c *Config) Validate() error {
	switch c.Todos.Store {
	case StoreDynamoDB, StoreMemory:
	case StoreMongo:
		if c.MongoDB.URI == "" {
			return fmt.Errorf("MONGODB_URI is required when TODOS_STORE=%s", StoreMongo)
		}
	default:
		return fmt.Errorf("unsupported TODOS_STORE %q", c.Todos.Store)
	}

	switch c.Attachments.Store {
	case AttachmentsS3:
	case AttachmentsMinIO:
		if c.Attachments.MinIO.Endpoint == "" {
			return fmt.Errorf("MINIO_ENDPOINT is required when ATTACHMENTS_STORE=%s", AttachmentsMinIO)
		}
	default:
		return fmt.Errorf("unsupported ATTACHMENTS_STORE %q", c.Attachments.Store)
	}
	if c.Attachments.Bucket == "" {
		return fmt.Errorf("TODOS_S3_BUCKET is required")
	}
	if c.Attachments.URLExpiration <= 0 {
		return fmt.Errorf("SIGNED_URL_EXPIRATION must be positive")
	}

	return c.validateAuth()
}

func (c *Config) validateAuth() error {
	if c.Auth.JWKSURL == "" && c.Auth.CertSecretID == "" && c.Auth.CertFile == "" && c.Auth.CertPEM == "" {
		return fmt.Errorf("no trusted certificate configured: set one of AUTH_JWKS_URL, AUTH_CERT_SECRET_ID, AUTH_CERT_FILE, AUTH_CERT_PEM")
	}
	return nil
}

// RedisAddr returns host:port, or "" when Redis is not configured.
func (c *Config) RedisAddr() string {
	if c.Redis.Host == "" {
		return ""
	}
	port := c.Redis.Port
	if port == "" {
		port = "6379"
	}
	return c.Redis.Host + ":" + port
}
