package sheets

import (
	"context"
	"fmt"
)

// Row is one mirrored entry. The entry id is written to the first column and
// used as the row key.
type Row struct {
	EntryID int64
	Values  []any
}

// Ports for outbound adapters.
type (
	// EntryMirror keeps a spreadsheet copy of the entries, one sheet per form.
	EntryMirror interface {
		// UpsertEntry writes header to the first row and replaces or appends
		// the row keyed by its entry id.
		UpsertEntry(ctx context.Context, sheet string, header []string, row Row) (rowRef string, err error)
		// DeleteEntry removes the row of the entry. Missing rows are not an error.
		DeleteEntry(ctx context.Context, sheet string, entryID int64) error
		// ClearSheet empties the sheet of a deleted form.
		ClearSheet(ctx context.Context, sheet string) error
	}
)

// SheetName is the sheet that mirrors the entries of a form.
func SheetName(formID int64) string {
	return fmt.Sprintf("Form %d", formID)
}
