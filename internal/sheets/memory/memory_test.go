package memory

import (
	"context"
	"testing"

	"smarttracker/internal/sheets"
)

func TestMirrorUpsertReplacesByEntryID(t *testing.T) {
	ctx := context.Background()
	s := New()
	header := []string{"ID", "Date", "Count"}

	ref, err := s.UpsertEntry(ctx, "Form 1", header, sheets.Row{EntryID: 7, Values: []any{int64(7), "2024-01-05", "3"}})
	if err != nil || ref != "mem:Form 1!A2" {
		t.Fatalf("unexpected upsert: ref=%q err=%v", ref, err)
	}
	if _, err := s.UpsertEntry(ctx, "Form 1", header, sheets.Row{EntryID: 8, Values: []any{int64(8), "2024-01-06", "1"}}); err != nil {
		t.Fatal(err)
	}
	ref, err = s.UpsertEntry(ctx, "Form 1", header, sheets.Row{EntryID: 7, Values: []any{int64(7), "2024-01-05", "4"}})
	if err != nil || ref != "mem:Form 1!A2" {
		t.Fatalf("expected in-place update, ref=%q err=%v", ref, err)
	}

	rows := s.Rows("Form 1")
	if len(rows) != 2 || rows[0].Values[2] != "4" {
		t.Fatalf("unexpected rows %+v", rows)
	}
	if got := s.Header("Form 1"); len(got) != 3 || got[0] != "ID" {
		t.Fatalf("unexpected header %v", got)
	}
}

func TestMirrorDeleteAndClear(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, _ = s.UpsertEntry(ctx, "Form 1", nil, sheets.Row{EntryID: 1})
	_, _ = s.UpsertEntry(ctx, "Form 1", nil, sheets.Row{EntryID: 2})
	_, _ = s.UpsertEntry(ctx, "Form 2", nil, sheets.Row{EntryID: 3})

	if err := s.DeleteEntry(ctx, "Form 1", 1); err != nil {
		t.Fatal(err)
	}
	if err := s.DeleteEntry(ctx, "Form 9", 1); err != nil {
		t.Fatalf("missing sheet should not fail: %v", err)
	}
	if rows := s.Rows("Form 1"); len(rows) != 1 || rows[0].EntryID != 2 {
		t.Fatalf("unexpected rows %+v", rows)
	}

	if err := s.ClearSheet(ctx, "Form 1"); err != nil {
		t.Fatal(err)
	}
	if names := s.Sheets(); len(names) != 1 || names[0] != "Form 2" {
		t.Fatalf("unexpected sheets %v", names)
	}
}

func TestMirrorRejectsInvalidID(t *testing.T) {
	if _, err := New().UpsertEntry(context.Background(), "Form 1", nil, sheets.Row{}); err == nil {
		t.Fatal("expected error for zero entry id")
	}
}
