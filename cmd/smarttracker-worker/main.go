package main

import (
	"context"
	"errors"
	"os"

	"smarttracker/internal/amqp"
	"smarttracker/internal/cli"
	"smarttracker/internal/config"
	applog "smarttracker/internal/log"
	"smarttracker/internal/sheets"
	gsheet "smarttracker/internal/sheets/google"
	mirrormem "smarttracker/internal/sheets/memory"
	"smarttracker/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()

	logger, logCloser := cli.SetupLogger(cfg, applog.ComponentWorker)
	defer logCloser.Close()

	logger.Info("Starting smarttracker-worker")

	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required by the worker")
		os.Exit(1)
	}

	// The worker reads the store directly and never publishes events itself.
	workerCfg := *cfg
	workerCfg.AMQPURL = ""
	res := cli.InitBackend(context.Background(), logger.Logger, &workerCfg)

	mirror := newMirror(logger, cfg)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		_ = res.Cleanup()
		os.Exit(1)
	}

	syncWorker := worker.NewSyncWorker(res.Backend.Forms, res.Backend.Entries, mirror, cfg.SyncConcurrency)

	ctx, done := cli.GracefulShutdown(logger.Logger, cfg.ShutdownTimeout, func(context.Context) {
		logger.Info("Shutting down worker...")
		if err := errors.Join(amqpClient.Close(), res.Cleanup()); err != nil {
			logger.Error("Worker cleanup error", "error", err)
		}
	})

	logger.Info("Performing startup sync...")
	if err := syncWorker.StartupSync(ctx); err != nil {
		logger.Error("Startup sync failed", "error", err)
	}

	go func() {
		if err := amqpClient.Consume(ctx, syncWorker.HandleEvent); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("Message consumption failed", "error", err)
		}
	}()

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped")
}

// newMirror returns the Google Sheets mirror, or an in-memory one when no
// spreadsheet is configured.
func newMirror(logger *applog.Logger, cfg *config.Config) sheets.EntryMirror {
	if !cfg.SheetsEnabled() {
		logger.Warn("Google Sheets disabled - mirroring to memory only")
		return mirrormem.New()
	}
	client, err := gsheet.New(context.Background(), gsheet.Config{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return client
}
