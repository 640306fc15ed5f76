package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("record not found")

// ErrConflict is returned when a write collides with an existing record
var ErrConflict = errors.New("record conflicts with existing data")

const uniqueViolation = pq.ErrorCode("23505")

// checkID rejects ids that cannot match a UUID column. Such ids name no
// record, so they are reported as ErrNotFound.
func checkID(kind, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
	}
	return nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint failure
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
