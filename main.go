package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/serverless-todo/todo-backend/handlers"
	"github.com/serverless-todo/todo-backend/internal/auth"
	"github.com/serverless-todo/todo-backend/internal/bootstrap"
	"github.com/serverless-todo/todo-backend/internal/config"
	"github.com/serverless-todo/todo-backend/internal/database"
	"github.com/serverless-todo/todo-backend/internal/todo/handler"
	"github.com/serverless-todo/todo-backend/internal/todo/service"
	"github.com/serverless-todo/todo-backend/pkg/logger"
	"github.com/serverless-todo/todo-backend/pkg/metrics"
	"github.com/serverless-todo/todo-backend/pkg/middleware"
)

func main() {
	started := time.Now()
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel)
	logger.Infof("config loaded: store=%s attachments=%s redis=%v", cfg.Todos.Store, cfg.Attachments.Store, cfg.RedisAddr() != "")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, err := database.NewAWSSession(cfg.AWS.Region)
	if err != nil {
		logger.Fatalf("%v", err)
	}

	verifier, trustReady, err := bootstrap.Verifier(ctx, cfg, sess)
	if err != nil {
		logger.Fatalf("failed to initialize token verifier: %v", err)
	}
	repo, storeReady, closeStore, err := bootstrap.Repository(ctx, cfg, sess)
	if err != nil {
		logger.Fatalf("failed to open todo store: %v", err)
	}
	defer func() { _ = closeStore(context.Background()) }()
	signer, err := bootstrap.URLSigner(ctx, cfg, sess)
	if err != nil {
		logger.Fatalf("failed to initialize attachment store: %v", err)
	}

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), middleware.CORS())

	handlers.RegisterHealth(r, started,
		handlers.ReadinessCheck{Name: "store", Check: storeReady},
		handlers.ReadinessCheck{Name: "trust", Check: trustReady},
	)
	handlers.RegisterSwagger(r)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/")
	api.Use(middleware.Authorize(auth.NewAuthorizer(verifier)))
	if cfg.RateLimit.Enabled {
		// per-user once authorized
		if rdb := bootstrap.Redis(ctx, cfg); rdb != nil && cfg.RateLimit.UseRedis {
			defer rdb.Close()
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			api.Use(middleware.RedisRateLimitMiddleware(rdb, cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			api.Use(middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}
	handler.New(service.New(repo), signer, cfg.Attachments.URLExpiration).Register(api)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("Starting todo service on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
}
