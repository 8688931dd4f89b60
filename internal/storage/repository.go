package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"smarttracker/internal/core"
)

const (
	formsTable   = "forms"
	entriesTable = "form_entries"

	// DefaultListLimit caps ListAllEntries when no limit is given.
	DefaultListLimit = 100
	// MaxListLimit is the largest accepted ListAllEntries limit.
	MaxListLimit = 500
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// SQLiteRepository implements Store on a SQLite database.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// DSN builds the connection string with the pragmas the store relies on.
func DSN(dbPath string) string {
	return "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", DSN(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// One connection serializes writers and keeps the pragmas in effect.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, now: time.Now}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping checks the database connection.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return mapError("ping", r.db.PingContext(ctx))
}

// CreateForm inserts a form and returns it with its assigned id.
func (r *SQLiteRepository) CreateForm(ctx context.Context, name, fields string, createdAt time.Time) (FormRecord, error) {
	createdAt = createdAt.UTC()
	query, args, err := psql.Insert(formsTable).
		Columns("name", "fields", "created_at").
		Values(name, fields, createdAt.UnixNano()).
		ToSql()
	if err != nil {
		return FormRecord{}, mapError("build insert form", err)
	}

	res, err := querierFromCtx(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return FormRecord{}, mapError("insert form", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return FormRecord{}, mapError("insert form id", err)
	}

	slog.DebugContext(ctx, "Form saved to SQLite", "form_id", id, "name", name)
	return FormRecord{ID: id, Name: name, Fields: fields, CreatedAt: createdAt}, nil
}

func (r *SQLiteRepository) selectForms() sq.SelectBuilder {
	return psql.Select("id", "name", "fields", "created_at").From(formsTable)
}

// ListForms returns all forms, newest first.
func (r *SQLiteRepository) ListForms(ctx context.Context) ([]FormRecord, error) {
	query, args, err := r.selectForms().OrderBy("created_at DESC", "id DESC").ToSql()
	if err != nil {
		return nil, mapError("build list forms", err)
	}

	rows, err := querierFromCtx(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError("list forms", err)
	}
	defer rows.Close()

	forms := []FormRecord{}
	for rows.Next() {
		f, err := scanForm(rows)
		if err != nil {
			return nil, mapError("scan form", err)
		}
		forms = append(forms, f)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("list forms", err)
	}
	return forms, nil
}

// GetForm returns one form or a NotFound error.
func (r *SQLiteRepository) GetForm(ctx context.Context, id int64) (FormRecord, error) {
	query, args, err := r.selectForms().Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return FormRecord{}, mapError("build get form", err)
	}

	f, err := scanForm(querierFromCtx(ctx, r.db).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return FormRecord{}, core.NotFound("form", id)
	}
	if err != nil {
		return FormRecord{}, mapError("get form", err)
	}
	return f, nil
}

// UpdateForm replaces name and fields of a form.
func (r *SQLiteRepository) UpdateForm(ctx context.Context, id int64, name, fields string) (FormRecord, error) {
	query, args, err := psql.Update(formsTable).
		Set("name", name).
		Set("fields", fields).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return FormRecord{}, mapError("build update form", err)
	}

	res, err := querierFromCtx(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return FormRecord{}, mapError("update form", err)
	}
	if err := requireAffected(res, "form", id); err != nil {
		return FormRecord{}, err
	}
	return r.GetForm(ctx, id)
}

// DeleteForm removes the form row. Entries are removed by the caller in the
// same transaction, or by the ON DELETE CASCADE constraint.
func (r *SQLiteRepository) DeleteForm(ctx context.Context, id int64) error {
	query, args, err := psql.Delete(formsTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return mapError("build delete form", err)
	}

	res, err := querierFromCtx(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return mapError("delete form", err)
	}
	return requireAffected(res, "form", id)
}

// AddEntry inserts an entry for an existing form.
func (r *SQLiteRepository) AddEntry(ctx context.Context, formID int64, date, data string) (EntryRecord, error) {
	if _, err := r.GetForm(ctx, formID); err != nil {
		return EntryRecord{}, err
	}

	now := r.now().UTC().UnixNano()
	query, args, err := psql.Insert(entriesTable).
		Columns("form_id", "date", "data", "created_at", "updated_at").
		Values(formID, date, data, now, now).
		ToSql()
	if err != nil {
		return EntryRecord{}, mapError("build insert entry", err)
	}

	res, err := querierFromCtx(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		err = mapError("insert entry", err)
		if errors.Is(err, ErrForeignKey) {
			return EntryRecord{}, core.NotFound("form", formID)
		}
		return EntryRecord{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return EntryRecord{}, mapError("insert entry id", err)
	}

	slog.DebugContext(ctx, "Entry saved to SQLite", "entry_id", id, "form_id", formID, "date", date)
	return EntryRecord{ID: id, FormID: formID, Date: date, Data: data}, nil
}

func (r *SQLiteRepository) selectEntries() sq.SelectBuilder {
	return psql.Select("e.id", "e.form_id", "e.date", "e.data", "f.name").
		From(entriesTable + " e").
		Join(formsTable + " f ON f.id = e.form_id")
}

// ListEntries returns the entries of a form, newest date first, ties by id.
func (r *SQLiteRepository) ListEntries(ctx context.Context, formID int64) ([]EntryRecord, error) {
	q := r.selectEntries().Where(sq.Eq{"e.form_id": formID}).OrderBy("e.date DESC", "e.id ASC")
	entries, err := r.queryEntries(ctx, "list entries", q)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].FormName = ""
	}
	return entries, nil
}

// ListAllEntries returns the latest entries across all forms with their form
// name. limit <= 0 means DefaultListLimit; it is capped at MaxListLimit.
func (r *SQLiteRepository) ListAllEntries(ctx context.Context, limit int) ([]EntryRecord, error) {
	q := r.selectEntries().OrderBy("e.date DESC", "e.id ASC").Limit(uint64(ClampLimit(limit)))
	return r.queryEntries(ctx, "list all entries", q)
}

// GetEntry returns one entry or a NotFound error.
func (r *SQLiteRepository) GetEntry(ctx context.Context, id int64) (EntryRecord, error) {
	query, args, err := r.selectEntries().Where(sq.Eq{"e.id": id}).ToSql()
	if err != nil {
		return EntryRecord{}, mapError("build get entry", err)
	}

	e, err := scanEntry(querierFromCtx(ctx, r.db).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return EntryRecord{}, core.NotFound("entry", id)
	}
	if err != nil {
		return EntryRecord{}, mapError("get entry", err)
	}
	return e, nil
}

// UpdateEntry replaces date and data of an entry.
func (r *SQLiteRepository) UpdateEntry(ctx context.Context, id int64, date, data string) (EntryRecord, error) {
	query, args, err := psql.Update(entriesTable).
		Set("date", date).
		Set("data", data).
		Set("updated_at", r.now().UTC().UnixNano()).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return EntryRecord{}, mapError("build update entry", err)
	}

	res, err := querierFromCtx(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return EntryRecord{}, mapError("update entry", err)
	}
	if err := requireAffected(res, "entry", id); err != nil {
		return EntryRecord{}, err
	}
	e, err := r.GetEntry(ctx, id)
	if err != nil {
		return EntryRecord{}, err
	}
	e.FormName = ""
	return e, nil
}

// DeleteEntry removes one entry.
func (r *SQLiteRepository) DeleteEntry(ctx context.Context, id int64) error {
	query, args, err := psql.Delete(entriesTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return mapError("build delete entry", err)
	}

	res, err := querierFromCtx(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return mapError("delete entry", err)
	}
	return requireAffected(res, "entry", id)
}

// DeleteEntriesByForm removes every entry of a form and reports how many.
func (r *SQLiteRepository) DeleteEntriesByForm(ctx context.Context, formID int64) (int64, error) {
	query, args, err := psql.Delete(entriesTable).Where(sq.Eq{"form_id": formID}).ToSql()
	if err != nil {
		return 0, mapError("build delete entries", err)
	}

	res, err := querierFromCtx(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mapError("delete entries", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, mapError("delete entries", err)
	}
	return n, nil
}

func (r *SQLiteRepository) queryEntries(ctx context.Context, op string, q sq.SelectBuilder) ([]EntryRecord, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, mapError("build "+op, err)
	}

	rows, err := querierFromCtx(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(op, err)
	}
	defer rows.Close()

	entries := []EntryRecord{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, mapError("scan entry", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(op, err)
	}
	return entries, nil
}

// ClampLimit applies the default and maximum of ListAllEntries.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultListLimit
	case limit > MaxListLimit:
		return MaxListLimit
	default:
		return limit
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanForm(s scanner) (FormRecord, error) {
	var (
		f         FormRecord
		createdAt int64
	)
	if err := s.Scan(&f.ID, &f.Name, &f.Fields, &createdAt); err != nil {
		return FormRecord{}, err
	}
	f.CreatedAt = time.Unix(0, createdAt).UTC()
	return f, nil
}

func scanEntry(s scanner) (EntryRecord, error) {
	var e EntryRecord
	if err := s.Scan(&e.ID, &e.FormID, &e.Date, &e.Data, &e.FormName); err != nil {
		return EntryRecord{}, err
	}
	e.Date = strings.TrimSpace(e.Date)
	return e, nil
}

func requireAffected(res sql.Result, entity string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return mapError("rows affected", err)
	}
	if n == 0 {
		return core.NotFound(entity, id)
	}
	return nil
}
