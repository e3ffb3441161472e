// Command main is the entry point for the folio backend server.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"folio/internal/bootstrap"
	"folio/internal/config"
	"folio/internal/middleware"
	"folio/internal/observability"
	"folio/internal/server"
)

// @title folio API
// @version 1.0
// @description Blog and portfolio backend: accounts, posts and projects.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT.

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	middleware.InitLogger(cfg.Env, cfg.SentryDSN)
	defer middleware.FlushSentry(2 * time.Second)

	ctx := context.Background()
	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		ServiceName:    "folio-api",
		ServiceVersion: cfg.AppVersion,
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSamplerRatio,
	})
	if err != nil {
		middleware.Logger.Error("Failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	db, rdb, err := bootstrap.InitRuntime(ctx, cfg)
	if err != nil {
		middleware.Logger.Error("Failed to initialize runtime", slog.String("error", err.Error()))
		os.Exit(1)
	}

	srv, err := server.NewServerWithDeps(cfg, db, rdb)
	if err != nil {
		middleware.Logger.Error("Failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		middleware.Logger.Info("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			middleware.Logger.Error("Server shutdown error", slog.String("error", err.Error()))
		}
		if err := shutdownTracing(ctx); err != nil {
			middleware.Logger.Error("Tracer shutdown error", slog.String("error", err.Error()))
		}
	}()

	if err := srv.Start(); err != nil {
		middleware.Logger.Error("Server stopped", slog.String("error", err.Error()))
		middleware.FlushSentry(2 * time.Second)
		os.Exit(1)
	}
}
