package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/RiccardoZanardi/Calvenzano/internal/amqp"
	"github.com/RiccardoZanardi/Calvenzano/internal/backend"
	"github.com/RiccardoZanardi/Calvenzano/internal/config"
	apphttp "github.com/RiccardoZanardi/Calvenzano/internal/http"
	"github.com/RiccardoZanardi/Calvenzano/internal/ledger"
	applog "github.com/RiccardoZanardi/Calvenzano/internal/log"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Level: slog.LevelInfo, Component: applog.ComponentApp})
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	factory := backend.NewFactory(logger)
	result, err := factory.CreateBackend(ctx, backend.Config{
		Type:         backend.Type(cfg.DataBackend),
		GitHubOwner:  cfg.GitHubOwner,
		GitHubRepo:   cfg.GitHubRepo,
		GitHubToken:  cfg.GitHubToken,
		GitHubBranch: cfg.GitHubBranch,
		GitHubFile:   cfg.GitHubFile,
		SQLiteDBPath: cfg.SQLiteDBPath,
		FilePath:     cfg.LedgerFilePath,
	})
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, applog.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	if result.Cleanup != nil {
		defer result.Cleanup()
	}

	// The local file copy backs every remote backend. When the primary
	// already is the local file there is nothing to fall back to.
	var fallback backend.Backend
	if cfg.DataBackend != string(backend.FileType) {
		fb, err := backend.NewFileBackend(cfg.LedgerFilePath)
		if err != nil {
			logger.Error("Failed to initialize fallback file backend", applog.FieldError, err)
			os.Exit(1)
		}
		fallback = fb
	}

	store := ledger.NewStore(result.Backend, fallback, logger, ledger.WithBackupTTL(cfg.BackupTTL))
	store.Load(ctx)

	// Report queue is optional: without it report requests answer 503.
	var publisher apphttp.ReportPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, report queue disabled", applog.FieldError, err)
		} else {
			defer client.Close()
			publisher = client
		}
	}

	srv := apphttp.NewServer(":"+cfg.Port, store, publisher, logger)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
		cancel()
	}()

	logger.Info("Starting cassa server", "port", cfg.Port, applog.FieldBackend, cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
