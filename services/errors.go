// services/errors.go
package services

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Error kinds surfaced by the service layer. Handlers map these to HTTP
// statuses; everything else is treated as an internal failure.
var (
	// ErrBadInput: malformed or out-of-range arguments. Caller-fixable.
	ErrBadInput = errors.New("bad input")

	// ErrNotFound: the referenced record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized: the caller may not act on this resource.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrSessionUnavailable covers a missing session, a session owned by
	// another user, and a session that was already completed. The three
	// cases are deliberately indistinguishable so that probing an id
	// reveals nothing about other users' sessions.
	ErrSessionUnavailable = errors.New("cannot complete this session")

	// ErrConflict: a concurrent writer won the race.
	ErrConflict = errors.New("conflict")

	// ErrStore: the persistence layer failed.
	ErrStore = errors.New("store failure")
)

func badInputf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrBadInput, fmt.Sprintf(format, args...))
}

// storeErr wraps a gorm error into the service taxonomy. Record-not-found
// is a domain outcome, not a store failure, and a serialization failure or
// deadlock means a concurrent writer won the race.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return fmt.Errorf("%w: %v", ErrConflict, err)
		}
	}
	return fmt.Errorf("%w: %v", ErrStore, err)
}

// withReadRetry retries a read-only store operation once on a store
// failure. Writes are never retried; their atomicity comes from the
// surrounding transaction.
func withReadRetry(fn func() error) error {
	err := fn()
	if err != nil && errors.Is(err, ErrStore) {
		err = fn()
	}
	return err
}
