package main

import (
	"context"
	"os"

	"smarttracker/internal/backend"
	"smarttracker/internal/cli"
	"smarttracker/internal/commands"
	applog "smarttracker/internal/log"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()

	// Reports are read-only; no events are published from the CLI.
	cfg.AMQPURL = ""
	cfg.LogLevel = "warn"
	logger, logCloser := cli.SetupLogger(cfg, applog.ComponentCLI)
	defer logCloser.Close()

	open := func(ctx context.Context) (*backend.BackendResult, error) {
		bcfg, err := backend.FromAppConfig(cfg)
		if err != nil {
			return nil, err
		}
		return backend.NewFactory(logger.Logger).CreateBackend(ctx, bcfg)
	}

	if err := commands.NewRootCommand(open).Execute(); err != nil {
		os.Exit(1)
	}
}
