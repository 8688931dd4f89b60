// Package memory is an in-process EntryMirror. The worker uses it when no
// spreadsheet is configured.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"smarttracker/internal/sheets"
)

type sheet struct {
	header []string
	rows   []sheets.Row
}

type Store struct {
	mu     sync.Mutex
	sheets map[string]*sheet
}

var _ sheets.EntryMirror = (*Store)(nil)

func New() *Store {
	return &Store{sheets: map[string]*sheet{}}
}

// UpsertEntry stores the row and returns a synthetic row reference.
func (s *Store) UpsertEntry(_ context.Context, name string, header []string, row sheets.Row) (string, error) {
	if row.EntryID <= 0 {
		return "", fmt.Errorf("invalid entry id %d", row.EntryID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sh, ok := s.sheets[name]
	if !ok {
		sh = &sheet{}
		s.sheets[name] = sh
	}
	sh.header = append([]string(nil), header...)
	row.Values = append([]any(nil), row.Values...)

	for i, r := range sh.rows {
		if r.EntryID == row.EntryID {
			sh.rows[i] = row
			return ref(name, i), nil
		}
	}
	sh.rows = append(sh.rows, row)
	return ref(name, len(sh.rows)-1), nil
}

func (s *Store) DeleteEntry(_ context.Context, name string, entryID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.sheets[name]
	if !ok {
		return nil
	}
	for i, r := range sh.rows {
		if r.EntryID == entryID {
			sh.rows = append(sh.rows[:i], sh.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

func (s *Store) ClearSheet(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sheets, name)
	return nil
}

// Rows returns a copy of the rows of a sheet in insertion order.
func (s *Store) Rows(name string) []sheets.Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.sheets[name]
	if !ok {
		return nil
	}
	return append([]sheets.Row(nil), sh.rows...)
}

// Header returns the header row of a sheet.
func (s *Store) Header(name string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sh, ok := s.sheets[name]; ok {
		return append([]string(nil), sh.header...)
	}
	return nil
}

// Sheets lists the sheet names, sorted.
func (s *Store) Sheets() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.sheets))
	for n := range s.sheets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// header row is row 1
func ref(name string, idx int) string {
	return fmt.Sprintf("mem:%s!A%d", name, idx+2)
}
