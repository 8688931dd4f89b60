package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"smarttracker/internal/amqp"
	"smarttracker/internal/core"
	"smarttracker/internal/services"
	"smarttracker/internal/sheets"
)

// SyncWorker mirrors entries from the database to a spreadsheet, one sheet
// per form, driven by change events.
type SyncWorker struct {
	forms       *services.FormService
	entries     *services.EntryService
	mirror      sheets.EntryMirror
	concurrency int
}

func NewSyncWorker(forms *services.FormService, entries *services.EntryService, mirror sheets.EntryMirror, concurrency int) *SyncWorker {
	if concurrency < 1 {
		concurrency = 1
	}
	return &SyncWorker{
		forms:       forms,
		entries:     entries,
		mirror:      mirror,
		concurrency: concurrency,
	}
}

// HandleEvent applies one change event to the mirror. Events about rows that
// no longer exist are acknowledged without error.
func (w *SyncWorker) HandleEvent(ctx context.Context, evt *amqp.EntryEvent) error {
	slog.InfoContext(ctx, "Processing entry event",
		"type", evt.Type,
		"form_id", evt.FormID,
		"entry_id", evt.EntryID)

	switch evt.Type {
	case amqp.EventEntryCreated, amqp.EventEntryUpdated:
		return w.syncEntry(ctx, evt.EntryID)
	case amqp.EventEntryDeleted:
		if err := w.mirror.DeleteEntry(ctx, sheets.SheetName(evt.FormID), evt.EntryID); err != nil {
			return fmt.Errorf("delete mirrored entry %d: %w", evt.EntryID, err)
		}
		return nil
	case amqp.EventFormDeleted:
		if err := w.mirror.ClearSheet(ctx, sheets.SheetName(evt.FormID)); err != nil {
			return fmt.Errorf("clear mirror of form %d: %w", evt.FormID, err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported event type %q", evt.Type)
	}
}

func (w *SyncWorker) syncEntry(ctx context.Context, entryID int64) error {
	entry, err := w.entries.GetEntry(ctx, entryID)
	if errors.Is(err, core.ErrNotFound) {
		slog.WarnContext(ctx, "Entry vanished before sync, skipping", "entry_id", entryID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get entry: %w", err)
	}

	form, err := w.forms.GetForm(ctx, entry.FormID)
	if errors.Is(err, core.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get form: %w", err)
	}

	ref, err := w.mirror.UpsertEntry(ctx, sheets.SheetName(form.ID), Header(form), RowOf(form, entry))
	if err != nil {
		return fmt.Errorf("mirror entry %d: %w", entryID, err)
	}

	slog.InfoContext(ctx, "Entry mirrored", "entry_id", entryID, "form_id", form.ID, "sheets_ref", ref)
	return nil
}

// StartupSync mirrors every entry of every form. It recovers from events
// lost while the worker was down.
func (w *SyncWorker) StartupSync(ctx context.Context) error {
	forms, err := w.forms.ListForms(ctx)
	if err != nil {
		return fmt.Errorf("list forms for startup sync: %w", err)
	}

	var synced, failed int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for _, form := range forms {
		g.Go(func() error {
			entries, err := w.entries.ListEntries(gctx, form.ID)
			if err != nil {
				return err
			}
			header := Header(form)
			for _, e := range entries {
				if _, err := w.mirror.UpsertEntry(gctx, sheets.SheetName(form.ID), header, RowOf(form, e)); err != nil {
					atomic.AddInt64(&failed, 1)
					slog.ErrorContext(gctx, "Failed to mirror entry on startup", "entry_id", e.ID, "error", err)
					continue
				}
				atomic.AddInt64(&synced, 1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("startup sync: %w", err)
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"forms", len(forms),
		"synced", synced,
		"failed", failed)
	return nil
}

// Header is the mirrored header row: the id column plus the form's labels.
func Header(form core.Form) []string {
	return append([]string{"ID"}, core.Labels(form.Fields)...)
}

// RowOf converts an entry to a mirrored row in form field order.
func RowOf(form core.Form, e core.Entry) sheets.Row {
	values := make([]any, 0, len(form.Fields)+1)
	values = append(values, e.ID)
	for _, k := range form.Fields {
		values = append(values, e.Display(k))
	}
	return sheets.Row{EntryID: e.ID, Values: values}
}
