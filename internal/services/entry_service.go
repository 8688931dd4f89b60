package services

import (
	"context"
	"fmt"
	"log/slog"

	"smarttracker/internal/amqp"
	"smarttracker/internal/core"
	"smarttracker/internal/storage"
)

// EntryInput is the client-supplied content of an entry.
type EntryInput struct {
	// Date is YYYY-MM-DD or RFC 3339. When empty the payload "date" value is used.
	Date    string
	Payload core.Payload
}

// EntryService manages entries of forms.
type EntryService struct {
	store  storage.Store
	events EventPublisher
}

// NewEntryService creates an entry service. events may be nil.
func NewEntryService(store storage.Store, events EventPublisher) *EntryService {
	return &EntryService{store: store, events: events}
}

// AddEntry logs a new entry against an existing form. Payload keys are not
// checked against the form's field list.
func (s *EntryService) AddEntry(ctx context.Context, formID int64, in EntryInput) (core.Entry, error) {
	date, data, err := encodeInput(in)
	if err != nil {
		return core.Entry{}, err
	}

	rec, err := s.store.AddEntry(ctx, formID, date.String(), data)
	if err != nil {
		return core.Entry{}, fmt.Errorf("add entry: %w", err)
	}

	slog.InfoContext(ctx, "Entry created", "entry_id", rec.ID, "form_id", formID, "date", rec.Date)
	publish(ctx, s.events, amqp.NewEntryEvent(amqp.EventEntryCreated, formID, rec.ID))
	return entryFromRecord(rec)
}

// ListEntries returns the entries of a form, newest date first. An unknown or
// deleted form has no entries.
func (s *EntryService) ListEntries(ctx context.Context, formID int64) ([]core.Entry, error) {
	recs, err := s.store.ListEntries(ctx, formID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entriesFromRecords(recs)
}

func (s *EntryService) GetEntry(ctx context.Context, id int64) (core.Entry, error) {
	rec, err := s.store.GetEntry(ctx, id)
	if err != nil {
		return core.Entry{}, fmt.Errorf("get entry: %w", err)
	}
	return entryFromRecord(rec)
}

// UpdateEntry replaces date and payload of an entry.
func (s *EntryService) UpdateEntry(ctx context.Context, id int64, in EntryInput) (core.Entry, error) {
	date, data, err := encodeInput(in)
	if err != nil {
		return core.Entry{}, err
	}

	rec, err := s.store.UpdateEntry(ctx, id, date.String(), data)
	if err != nil {
		return core.Entry{}, fmt.Errorf("update entry: %w", err)
	}

	slog.InfoContext(ctx, "Entry updated", "entry_id", id, "form_id", rec.FormID, "date", rec.Date)
	publish(ctx, s.events, amqp.NewEntryEvent(amqp.EventEntryUpdated, rec.FormID, id))
	return entryFromRecord(rec)
}

func (s *EntryService) DeleteEntry(ctx context.Context, id int64) error {
	var formID int64
	err := s.store.RunInTx(ctx, func(ctx context.Context) error {
		rec, err := s.store.GetEntry(ctx, id)
		if err != nil {
			return err
		}
		formID = rec.FormID
		return s.store.DeleteEntry(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}

	slog.InfoContext(ctx, "Entry deleted", "entry_id", id, "form_id", formID)
	publish(ctx, s.events, amqp.NewEntryEvent(amqp.EventEntryDeleted, formID, id))
	return nil
}

// ListAllEntries returns the latest entries across forms with their form
// name. limit <= 0 uses the default of 100; it is capped at 500.
func (s *EntryService) ListAllEntries(ctx context.Context, limit int) ([]core.Entry, error) {
	recs, err := s.store.ListAllEntries(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list all entries: %w", err)
	}
	return entriesFromRecords(recs)
}

func encodeInput(in EntryInput) (core.Date, string, error) {
	raw := in.Date
	if raw == "" {
		if v, ok := in.Payload[core.FieldDate].(string); ok {
			raw = v
		}
	}
	date, err := core.ParseDate(raw)
	if err != nil {
		return core.Date{}, "", err
	}
	data, err := core.EncodePayload(in.Payload)
	if err != nil {
		return core.Date{}, "", core.NewValidationError("payload", err.Error())
	}
	return date, data, nil
}

func entryFromRecord(rec storage.EntryRecord) (core.Entry, error) {
	date, err := core.ParseDate(rec.Date)
	if err != nil {
		return core.Entry{}, core.NewStorageError(fmt.Sprintf("decode entry %d date", rec.ID), err)
	}
	payload, err := core.DecodePayload(rec.Data)
	if err != nil {
		return core.Entry{}, core.NewStorageError(fmt.Sprintf("decode entry %d", rec.ID), err)
	}
	return core.Entry{
		ID:       rec.ID,
		FormID:   rec.FormID,
		Date:     date,
		Payload:  payload,
		FormName: rec.FormName,
	}, nil
}

func entriesFromRecords(recs []storage.EntryRecord) ([]core.Entry, error) {
	entries := make([]core.Entry, 0, len(recs))
	for _, rec := range recs {
		e, err := entryFromRecord(rec)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}
