package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"smarttracker/internal/cli"
	apphttp "smarttracker/internal/http"
	applog "smarttracker/internal/log"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()

	logger, logCloser := cli.SetupLogger(cfg, applog.ComponentApp)
	defer logCloser.Close()

	res := cli.InitBackend(context.Background(), logger.Logger, cfg)

	srv := apphttp.NewServer(":"+cfg.Port, res.Backend, apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		ReportCacheTTL:     cfg.ReportCacheTTL,
		ReportCacheSize:    cfg.ReportCacheSize,
		AllEntriesLimit:    cfg.AllEntriesLimit,
	})

	ctx, done := cli.GracefulShutdown(logger.Logger, cfg.ShutdownTimeout, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", "error", err)
		}
	})

	logger.Info("Starting smarttracker server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"events", res.Backend.EventsEnabled)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		_ = res.Cleanup()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
