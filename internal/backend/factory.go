package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"smarttracker/internal/amqp"
	"smarttracker/internal/services"
	"smarttracker/internal/storage"
	"smarttracker/internal/storage/memory"
)

type DefaultFactory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend opens the store and, when configured, the AMQP publisher.
// A broker that cannot be reached is logged and events are disabled.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	var store storage.Store
	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		store = repo
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
	case MemoryBackend:
		store = memory.New()
		f.logger.Info("Initialized memory backend")
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}

	var (
		events     services.EventPublisher
		amqpClient *amqp.Client
	)
	if config.AMQPURL != "" {
		client, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			amqpClient = client
			events = client
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	b := New(store, events, config.ReportCurrency)
	b.EventsEnabled = events != nil

	cleanup := func() error {
		var errs []error
		if amqpClient != nil {
			errs = append(errs, amqpClient.Close())
		}
		errs = append(errs, store.Close())
		return errors.Join(errs...)
	}

	return &BackendResult{Backend: b, Cleanup: cleanup}, nil
}

// New wires the services over store. events may be nil.
func New(store storage.Store, events services.EventPublisher, currency string) *Backend {
	forms := services.NewFormService(store, events)
	entries := services.NewEntryService(store, events)
	return &Backend{
		Store:   store,
		Forms:   forms,
		Entries: entries,
		Reports: services.NewReportService(forms, entries, currency),
	}
}
