// Package backend assembles the store, the event publisher and the services
// from configuration.
package backend

import (
	"context"

	"smarttracker/internal/services"
	"smarttracker/internal/storage"
)

// Backend bundles the store with the services built on top of it.
type Backend struct {
	Store   storage.Store
	Forms   *services.FormService
	Entries *services.EntryService
	Reports *services.ReportService
	// EventsEnabled reports whether change events reach a broker.
	EventsEnabled bool
}

type CleanupFunc func() error

// BackendResult contains the backend and a function releasing its resources.
type BackendResult struct {
	Backend *Backend
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

type Config struct {
	Type BackendType

	SQLiteDBPath string

	// AMQP is optional; an empty URL disables events.
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	ReportCurrency string
}

type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
