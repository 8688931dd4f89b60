package worker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smarttracker/internal/amqp"
	"smarttracker/internal/core"
	"smarttracker/internal/services"
	"smarttracker/internal/sheets"
	mirrormem "smarttracker/internal/sheets/memory"
	"smarttracker/internal/storage/memory"
)

type fixture struct {
	forms   *services.FormService
	entries *services.EntryService
	mirror  *mirrormem.Store
	worker  *SyncWorker
}

func newFixture() fixture {
	store := memory.New()
	forms := services.NewFormService(store, nil)
	entries := services.NewEntryService(store, nil)
	mirror := mirrormem.New()
	return fixture{
		forms:   forms,
		entries: entries,
		mirror:  mirror,
		worker:  NewSyncWorker(forms, entries, mirror, 2),
	}
}

func TestHandleEntryCreatedAndUpdated(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	form, err := f.forms.CreateForm(ctx, "Tea Count", []string{"count", "category"})
	require.NoError(t, err)
	e, err := f.entries.AddEntry(ctx, form.ID, services.EntryInput{Date: "2024-01-05", Payload: core.Payload{"count": 3.0, "category": "Food"}})
	require.NoError(t, err)

	require.NoError(t, f.worker.HandleEvent(ctx, amqp.NewEntryEvent(amqp.EventEntryCreated, form.ID, e.ID)))

	sheet := sheets.SheetName(form.ID)
	assert.Equal(t, []string{"ID", "Date", "Count", "Category"}, f.mirror.Header(sheet))
	rows := f.mirror.Rows(sheet)
	require.Len(t, rows, 1)
	assert.Equal(t, []any{e.ID, "2024-01-05", "3", "Food"}, rows[0].Values)

	_, err = f.entries.UpdateEntry(ctx, e.ID, services.EntryInput{Date: "2024-01-05", Payload: core.Payload{"count": 4.0, "category": "Food"}})
	require.NoError(t, err)
	require.NoError(t, f.worker.HandleEvent(ctx, amqp.NewEntryEvent(amqp.EventEntryUpdated, form.ID, e.ID)))

	rows = f.mirror.Rows(sheet)
	require.Len(t, rows, 1)
	assert.Equal(t, "4", rows[0].Values[2])
}

func TestHandleEntryDeletedAndFormDeleted(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	form, _ := f.forms.CreateForm(ctx, "Tea Count", []string{"count"})
	a, _ := f.entries.AddEntry(ctx, form.ID, services.EntryInput{Date: "2024-01-05"})
	b, _ := f.entries.AddEntry(ctx, form.ID, services.EntryInput{Date: "2024-01-06"})
	require.NoError(t, f.worker.StartupSync(ctx))
	sheet := sheets.SheetName(form.ID)
	require.Len(t, f.mirror.Rows(sheet), 2)

	require.NoError(t, f.entries.DeleteEntry(ctx, a.ID))
	require.NoError(t, f.worker.HandleEvent(ctx, amqp.NewEntryEvent(amqp.EventEntryDeleted, form.ID, a.ID)))
	rows := f.mirror.Rows(sheet)
	require.Len(t, rows, 1)
	assert.Equal(t, b.ID, rows[0].EntryID)

	require.NoError(t, f.forms.DeleteForm(ctx, form.ID))
	require.NoError(t, f.worker.HandleEvent(ctx, amqp.NewEntryEvent(amqp.EventFormDeleted, form.ID, 0)))
	assert.Empty(t, f.mirror.Sheets())
}

func TestHandleEventForVanishedEntry(t *testing.T) {
	f := newFixture()
	err := f.worker.HandleEvent(context.Background(), amqp.NewEntryEvent(amqp.EventEntryUpdated, 1, 404))
	assert.NoError(t, err)
	assert.Empty(t, f.mirror.Sheets())
}

func TestHandleUnknownEvent(t *testing.T) {
	f := newFixture()
	err := f.worker.HandleEvent(context.Background(), &amqp.EntryEvent{Type: "entry.renamed", EntryID: 1})
	assert.Error(t, err)
}

func TestStartupSyncAllForms(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	for _, name := range []string{"A", "B", "C"} {
		form, err := f.forms.CreateForm(ctx, name, []string{"amount"})
		require.NoError(t, err)
		for i := 0; i < 3; i++ {
			_, err := f.entries.AddEntry(ctx, form.ID, services.EntryInput{Date: "2024-01-01", Payload: core.Payload{"amount": float64(i)}})
			require.NoError(t, err)
		}
	}

	require.NoError(t, f.worker.StartupSync(ctx))
	names := f.mirror.Sheets()
	require.Len(t, names, 3)
	for _, n := range names {
		assert.Len(t, f.mirror.Rows(n), 3)
	}
}
