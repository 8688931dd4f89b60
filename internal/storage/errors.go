package storage

import (
	"errors"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"smarttracker/internal/core"
)

// ErrForeignKey reports a row referencing a missing parent.
var ErrForeignKey = errors.New("foreign key violation")

// mapError converts driver errors into StorageErrors. Domain errors pass
// through untouched.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, core.ErrNotFound) || errors.Is(err, core.ErrValidation) {
		return err
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) && isForeignKeyViolation(sqliteErr) {
		return core.NewStorageError(op, ErrForeignKey)
	}
	return core.NewStorageError(op, err)
}

func isForeignKeyViolation(err *sqlite.Error) bool {
	if err.Code() == sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY {
		return true
	}
	return err.Code()&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(err.Error(), "FOREIGN KEY")
}
