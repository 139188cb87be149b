// Command authorizer serves the bearer-token access decision on its own, for
// gateways that delegate authorization to an external endpoint.
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
	"github.com/serverless-todo/todo-backend/pkg/logger"
	"github.com/serverless-todo/todo-backend/pkg/metrics"
)

func main() {
	started := time.Now()
	logger.Init(os.Getenv("LOG_LEVEL"))

	cfg, err := config.LoadAuthorizerConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Init(cfg.LogLevel)

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

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	handlers.RegisterHealth(r, started, handlers.ReadinessCheck{Name: "trust", Check: trustReady})
	handlers.RegisterAuthorizer(r, auth.NewAuthorizer(verifier))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.AuthorizerPort),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("Starting authorizer on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
}
