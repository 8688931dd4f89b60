package storage

import (
	"context"
	"time"
)

// FormRecord is a persisted form. Fields is the encoded field list.
type FormRecord struct {
	ID        int64
	Name      string
	Fields    string
	CreatedAt time.Time
}

// EntryRecord is a persisted entry. Date is YYYY-MM-DD and Data the encoded
// payload. FormName is filled only by ListAllEntries.
type EntryRecord struct {
	ID       int64
	FormID   int64
	Date     string
	Data     string
	FormName string
}

// FormRepository persists forms.
type FormRepository interface {
	CreateForm(ctx context.Context, name, fields string, createdAt time.Time) (FormRecord, error)
	ListForms(ctx context.Context) ([]FormRecord, error)
	GetForm(ctx context.Context, id int64) (FormRecord, error)
	UpdateForm(ctx context.Context, id int64, name, fields string) (FormRecord, error)
	DeleteForm(ctx context.Context, id int64) error
}

// EntryRepository persists entries.
type EntryRepository interface {
	AddEntry(ctx context.Context, formID int64, date, data string) (EntryRecord, error)
	ListEntries(ctx context.Context, formID int64) ([]EntryRecord, error)
	GetEntry(ctx context.Context, id int64) (EntryRecord, error)
	UpdateEntry(ctx context.Context, id int64, date, data string) (EntryRecord, error)
	DeleteEntry(ctx context.Context, id int64) error
	DeleteEntriesByForm(ctx context.Context, formID int64) (int64, error)
	ListAllEntries(ctx context.Context, limit int) ([]EntryRecord, error)
}

// TxRunner runs fn inside a transaction carried by the context passed to fn.
// Repository calls made with that context join the transaction.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Store is everything the services need from a backend.
type Store interface {
	FormRepository
	EntryRepository
	TxRunner
	Ping(ctx context.Context) error
	Close() error
}
