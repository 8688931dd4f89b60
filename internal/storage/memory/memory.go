// Package memory is an in-process Store used for tests and the memory
// backend. Data is lost when the process exits.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"smarttracker/internal/core"
	"smarttracker/internal/storage"
)

type state struct {
	forms     map[int64]storage.FormRecord
	entries   map[int64]storage.EntryRecord
	nextForm  int64
	nextEntry int64
}

// Store keeps forms and entries in maps guarded by a mutex.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex
	st   state
}

var _ storage.Store = (*Store)(nil)

func New() *Store {
	return &Store{st: state{
		forms:   map[int64]storage.FormRecord{},
		entries: map[int64]storage.EntryRecord{},
	}}
}

type txKey struct{}

// tx records how to revert the writes made through its context.
type tx struct {
	undo []func(*state)
}

// RunInTx runs fn and reverts the writes fn made if it fails. Writes made
// outside the transaction are left alone. Transactions are serialized.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	t := &tx{}
	if err := fn(context.WithValue(ctx, txKey{}, t)); err != nil {
		s.mu.Lock()
		for i := len(t.undo) - 1; i >= 0; i-- {
			t.undo[i](&s.st)
		}
		s.mu.Unlock()
		return err
	}
	return nil
}

// onRollback registers undo for the transaction in ctx, if any. Callers
// hold s.mu.
func onRollback(ctx context.Context, undo func(*state)) {
	if t, ok := ctx.Value(txKey{}).(*tx); ok {
		t.undo = append(t.undo, undo)
	}
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func (s *Store) CreateForm(ctx context.Context, name, fields string, createdAt time.Time) (storage.FormRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.nextForm++
	f := storage.FormRecord{ID: s.st.nextForm, Name: name, Fields: fields, CreatedAt: createdAt.UTC()}
	s.st.forms[f.ID] = f
	onRollback(ctx, func(st *state) { delete(st.forms, f.ID) })
	return f, nil
}

// ListForms returns forms newest first, ties by id descending.
func (s *Store) ListForms(context.Context) ([]storage.FormRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]storage.FormRecord, 0, len(s.st.forms))
	for _, f := range s.st.forms {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) GetForm(_ context.Context, id int64) (storage.FormRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.st.forms[id]
	if !ok {
		return storage.FormRecord{}, core.NotFound("form", id)
	}
	return f, nil
}

func (s *Store) UpdateForm(ctx context.Context, id int64, name, fields string) (storage.FormRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.st.forms[id]
	if !ok {
		return storage.FormRecord{}, core.NotFound("form", id)
	}
	prev := f
	onRollback(ctx, func(st *state) { st.forms[id] = prev })
	f.Name, f.Fields = name, fields
	s.st.forms[id] = f
	return f, nil
}

// DeleteForm removes the form and, like the SQL cascade, its entries.
func (s *Store) DeleteForm(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.st.forms[id]
	if !ok {
		return core.NotFound("form", id)
	}
	delete(s.st.forms, id)
	removed := s.removeEntriesLocked(id)
	onRollback(ctx, func(st *state) {
		st.forms[id] = f
		for _, e := range removed {
			st.entries[e.ID] = e
		}
	})
	return nil
}

func (s *Store) AddEntry(ctx context.Context, formID int64, date, data string) (storage.EntryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.st.forms[formID]; !ok {
		return storage.EntryRecord{}, core.NotFound("form", formID)
	}
	s.st.nextEntry++
	e := storage.EntryRecord{ID: s.st.nextEntry, FormID: formID, Date: date, Data: data}
	s.st.entries[e.ID] = e
	onRollback(ctx, func(st *state) { delete(st.entries, e.ID) })
	return e, nil
}

func (s *Store) ListEntries(_ context.Context, formID int64) ([]storage.EntryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []storage.EntryRecord{}
	for _, e := range s.st.entries {
		if e.FormID == formID {
			out = append(out, e)
		}
	}
	sortEntries(out)
	return out, nil
}

func (s *Store) GetEntry(_ context.Context, id int64) (storage.EntryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.st.entries[id]
	if !ok {
		return storage.EntryRecord{}, core.NotFound("entry", id)
	}
	e.FormName = s.st.forms[e.FormID].Name
	return e, nil
}

func (s *Store) UpdateEntry(ctx context.Context, id int64, date, data string) (storage.EntryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.st.entries[id]
	if !ok {
		return storage.EntryRecord{}, core.NotFound("entry", id)
	}
	prev := e
	onRollback(ctx, func(st *state) { st.entries[id] = prev })
	e.Date, e.Data = date, data
	s.st.entries[id] = e
	return e, nil
}

func (s *Store) DeleteEntry(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.st.entries[id]
	if !ok {
		return core.NotFound("entry", id)
	}
	delete(s.st.entries, id)
	onRollback(ctx, func(st *state) { st.entries[id] = e })
	return nil
}

func (s *Store) DeleteEntriesByForm(ctx context.Context, formID int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := s.removeEntriesLocked(formID)
	onRollback(ctx, func(st *state) {
		for _, e := range removed {
			st.entries[e.ID] = e
		}
	})
	return int64(len(removed)), nil
}

func (s *Store) removeEntriesLocked(formID int64) []storage.EntryRecord {
	var removed []storage.EntryRecord
	for id, e := range s.st.entries {
		if e.FormID == formID {
			removed = append(removed, e)
			delete(s.st.entries, id)
		}
	}
	return removed
}

func (s *Store) ListAllEntries(_ context.Context, limit int) ([]storage.EntryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]storage.EntryRecord, 0, len(s.st.entries))
	for _, e := range s.st.entries {
		e.FormName = s.st.forms[e.FormID].Name
		out = append(out, e)
	}
	sortEntries(out)
	if n := storage.ClampLimit(limit); len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// sortEntries orders by date descending, ties by id ascending.
func sortEntries(entries []storage.EntryRecord) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Date != entries[j].Date {
			return entries[i].Date > entries[j].Date
		}
		return entries[i].ID < entries[j].ID
	})
}
