package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/RiccardoZanardi/Calvenzano/internal/amqp"
	"github.com/RiccardoZanardi/Calvenzano/internal/backend"
	"github.com/RiccardoZanardi/Calvenzano/internal/config"
	applog "github.com/RiccardoZanardi/Calvenzano/internal/log"
	"github.com/RiccardoZanardi/Calvenzano/internal/report"
	"github.com/RiccardoZanardi/Calvenzano/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Level: slog.LevelInfo, Component: applog.ComponentWorker})
	applog.SetDefault(logger)

	logger.Info("Starting cassa-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the report worker")
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

	sink, err := report.NewFileSink(cfg.ReportOutputDir, logger)
	if err != nil {
		logger.Error("Failed to initialize report sink", applog.FieldError, err)
		os.Exit(1)
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	reportWorker := worker.NewReportWorker(result.Backend, sink, logger)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return amqpClient.ConsumeReportRequests(gctx, reportWorker.HandleReportRequest)
	})

	g.Go(func() error {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
			return nil
		case <-gctx.Done():
			return nil
		}
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("Worker stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
