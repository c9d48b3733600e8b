package repository

import (
	"errors"

	"github.com/lib/pq"
)

const (
	pgUniqueViolation      pq.ErrorCode = "23505"
	pgForeignKeyViolation  pq.ErrorCode = "23503"
	pgSerializationFailure pq.ErrorCode = "40001"
	pgDeadlockDetected     pq.ErrorCode = "40P01"
	pgRaiseException       pq.ErrorCode = "P0001"
)

func pgError(err error) *pq.Error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr
	}
	return nil
}

func isUniqueViolation(err error, constraint string) bool {
	e := pgError(err)
	return e != nil && e.Code == pgUniqueViolation && (constraint == "" || e.Constraint == constraint)
}

func isForeignKeyViolation(err error) bool {
	e := pgError(err)
	return e != nil && e.Code == pgForeignKeyViolation
}

func isTransient(err error) bool {
	e := pgError(err)
	return e != nil && (e.Code == pgSerializationFailure || e.Code == pgDeadlockDetected)
}

// isImmutableEntry matches the exception raised by the posted-entry triggers.
func isImmutableEntry(err error) bool {
	e := pgError(err)
	return e != nil && e.Code == pgRaiseException
}
