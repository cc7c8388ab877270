// Package pgerrors classifies Postgres failures into the ledger error
// taxonomy so callers can decide what is safe to retry.
package pgerrors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/amirasaad/walletfx/pkg/domain/ledger"
)

// Translate maps storage errors onto the domain taxonomy. Serialization
// failures, deadlocks, and unique-index races all mean the unit of work lost
// to a concurrent writer, which is the one error class the engine retries.
func Translate(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.SerializationFailure,
			pgerrcode.DeadlockDetected,
			pgerrcode.UniqueViolation:
			return fmt.Errorf("%w: %s", ledger.ErrPersistenceConflict, pgErr.Code)
		}
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: duplicate key", ledger.ErrPersistenceConflict)
	}

	return err
}
