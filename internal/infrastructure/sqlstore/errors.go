package sqlstore

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"github.com/martijn/clientdesk/internal/core/domain"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	pgUniqueViolation     = "23505"
	pgStringTooLong       = "22001"
	sqlitePrimaryCodeMask = 0xff

	valueTooLongMessage = "Value exceeds the maximum length"
)

// translateError maps driver errors for constraint violations onto domain
// error kinds. Any other error is returned unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		code, detail := sqliteErr.Code(), sqliteErr.Error()
		switch {
		case code == sqlite3.SQLITE_CONSTRAINT_UNIQUE,
			code&sqlitePrimaryCodeMask == sqlite3.SQLITE_CONSTRAINT && strings.Contains(detail, "UNIQUE"):
			return &domain.ConflictError{Field: conflictField(detail)}
		case code == sqlite3.SQLITE_CONSTRAINT_CHECK,
			code&sqlitePrimaryCodeMask == sqlite3.SQLITE_CONSTRAINT && strings.Contains(detail, "CHECK"):
			return domain.NewValidationError(lengthField(detail), valueTooLongMessage)
		}
		return err
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pgUniqueViolation:
			return &domain.ConflictError{Field: conflictField(pqErr.Constraint)}
		case pgStringTooLong:
			return domain.NewValidationError(pqErr.Column, valueTooLongMessage)
		}
	}

	return err
}

// conflictField extracts the column named by a constraint or error message
func conflictField(detail string) string {
	switch {
	case strings.Contains(detail, "cpf"):
		return "cpf"
	case strings.Contains(detail, "email"):
		return "email"
	case strings.Contains(detail, "app_user"):
		return "username"
	default:
		return ""
	}
}

// lengthField maps a failed client_<column>_length CHECK onto its column
func lengthField(detail string) string {
	for _, field := range []string{"name", "email"} {
		if strings.Contains(detail, "client_"+field+"_length") {
			return field
		}
	}
	return ""
}
