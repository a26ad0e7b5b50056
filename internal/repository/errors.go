package repository

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes
const (
	PgErrForeignKeyViolation = "23503" // foreign_key_violation
	PgErrUniqueViolation     = "23505" // unique_violation
	PgErrCheckViolation      = "23514" // check_violation
)

var (
	ErrSlugAlreadyExists = errors.New("slug already exists")
	ErrSKUAlreadyExists  = errors.New("sku already exists")
	ErrInvalidReference  = errors.New("referenced record does not exist")
	ErrCheckViolation    = errors.New("value is out of the accepted range")
)

func pgErrorCode(err error) (string, string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, pgErr.ConstraintName, true
	}
	return "", "", false
}

func isUniqueViolation(err error) bool {
	code, _, ok := pgErrorCode(err)
	return ok && code == PgErrUniqueViolation
}

func isCheckViolation(err error) bool {
	code, _, ok := pgErrorCode(err)
	return ok && code == PgErrCheckViolation
}

func isForeignKeyViolation(err error) bool {
	code, _, ok := pgErrorCode(err)
	return ok && code == PgErrForeignKeyViolation
}

// classifyConflict maps unique violations on slug or sku columns to sentinels
func classifyConflict(err error) error {
	code, constraint, ok := pgErrorCode(err)
	if !ok {
		return nil
	}
	switch code {
	case PgErrUniqueViolation:
		if strings.Contains(constraint, "sku") {
			return ErrSKUAlreadyExists
		}
		if strings.Contains(constraint, "slug") {
			return ErrSlugAlreadyExists
		}
	case PgErrForeignKeyViolation:
		return ErrInvalidReference
	}
	return nil
}

// uuidStrings renders ids for use with = ANY($1::uuid[])
func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
