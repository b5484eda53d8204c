package store

import (
	"errors"

	"github.com/lib/pq"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a unique constraint,
// e.g. a second application for the same (candidate, job) pair or a
// duplicate slug. Uniqueness is enforced by the database index, never by
// check-then-insert.
var ErrDuplicate = errors.New("duplicate")

const pqUniqueViolation = "23505"

// mapError translates driver errors into the store's sentinel errors.
func mapError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return ErrDuplicate
	}
	return err
}
