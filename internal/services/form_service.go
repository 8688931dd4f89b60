package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"smarttracker/internal/amqp"
	"smarttracker/internal/core"
	"smarttracker/internal/storage"
)

// FormService manages form definitions.
type FormService struct {
	store  storage.Store
	events EventPublisher
	now    func() time.Time
}

// NewFormService creates a form service. events may be nil.
func NewFormService(store storage.Store, events EventPublisher) *FormService {
	return &FormService{store: store, events: events, now: time.Now}
}

// CreateForm validates and normalizes the definition, then persists it.
func (s *FormService) CreateForm(ctx context.Context, name string, fieldKeys []string) (core.Form, error) {
	form, err := core.NewForm(name, fieldKeys)
	if err != nil {
		return core.Form{}, err
	}
	fields, err := core.EncodeFields(form.Fields)
	if err != nil {
		return core.Form{}, err
	}

	rec, err := s.store.CreateForm(ctx, form.Name, fields, s.now().UTC())
	if err != nil {
		return core.Form{}, fmt.Errorf("create form: %w", err)
	}

	slog.InfoContext(ctx, "Form created", "form_id", rec.ID, "name", rec.Name, "fields", len(form.Fields))
	return formFromRecord(rec)
}

// ListForms returns all forms, newest first.
func (s *FormService) ListForms(ctx context.Context) ([]core.Form, error) {
	recs, err := s.store.ListForms(ctx)
	if err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}
	forms := make([]core.Form, 0, len(recs))
	for _, rec := range recs {
		f, err := formFromRecord(rec)
		if err != nil {
			return nil, err
		}
		forms = append(forms, f)
	}
	return forms, nil
}

func (s *FormService) GetForm(ctx context.Context, id int64) (core.Form, error) {
	rec, err := s.store.GetForm(ctx, id)
	if err != nil {
		return core.Form{}, fmt.Errorf("get form: %w", err)
	}
	return formFromRecord(rec)
}

// UpdateForm replaces the name and field list of a form.
func (s *FormService) UpdateForm(ctx context.Context, id int64, name string, fieldKeys []string) (core.Form, error) {
	form, err := core.NewForm(name, fieldKeys)
	if err != nil {
		return core.Form{}, err
	}
	fields, err := core.EncodeFields(form.Fields)
	if err != nil {
		return core.Form{}, err
	}

	rec, err := s.store.UpdateForm(ctx, id, form.Name, fields)
	if err != nil {
		return core.Form{}, fmt.Errorf("update form: %w", err)
	}

	slog.InfoContext(ctx, "Form updated", "form_id", id, "name", form.Name)
	return formFromRecord(rec)
}

// DeleteForm removes the form and all of its entries in one transaction.
func (s *FormService) DeleteForm(ctx context.Context, id int64) error {
	var removed int64
	err := s.store.RunInTx(ctx, func(ctx context.Context) error {
		n, err := s.store.DeleteEntriesByForm(ctx, id)
		if err != nil {
			return err
		}
		removed = n
		return s.store.DeleteForm(ctx, id)
	})
	if err != nil {
		return fmt.Errorf("delete form: %w", err)
	}

	slog.InfoContext(ctx, "Form deleted", "form_id", id, "entries_removed", removed)
	publish(ctx, s.events, amqp.NewEntryEvent(amqp.EventFormDeleted, id, 0))
	return nil
}

func formFromRecord(rec storage.FormRecord) (core.Form, error) {
	fields, err := core.DecodeFields(rec.Fields)
	if err != nil {
		return core.Form{}, core.NewStorageError(fmt.Sprintf("decode form %d", rec.ID), err)
	}
	return core.Form{
		ID:        rec.ID,
		Name:      rec.Name,
		Fields:    fields,
		CreatedAt: rec.CreatedAt,
	}, nil
}
