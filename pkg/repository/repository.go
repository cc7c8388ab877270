// Package repository defines the persistence contracts consumed by the
// ledger engine: the balance store, the append-only transaction log, and
// the unit of work that binds their mutations into one atomic commit.
package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/amirasaad/walletfx/pkg/currency"
	"github.com/amirasaad/walletfx/pkg/domain/ledger"
	"github.com/amirasaad/walletfx/pkg/domain/money"
)

// BalanceRepository is the durable (userID, currency) -> amount mapping.
type BalanceRepository interface {
	// Get returns the user's balance in the given currency. A missing row is
	// not an error: a zero-amount balance is returned instead.
	Get(ctx context.Context, userID uuid.UUID, code currency.Code) (*ledger.Balance, error)

	// ListByUser returns all balance rows the user holds.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*ledger.Balance, error)

	// Credit adds amount to the user's balance in amount's currency, creating
	// the row at zero first if absent. amount must be positive.
	Credit(ctx context.Context, userID uuid.UUID, amount money.Money) (*ledger.Balance, error)

	// Debit subtracts amount from the user's balance. The sufficient-funds
	// check and the subtraction are a single guarded write, so a concurrent
	// debit cannot slip between them; a short balance yields
	// ledger.ErrInsufficientBalance and no mutation.
	Debit(ctx context.Context, userID uuid.UUID, amount money.Money) (*ledger.Balance, error)
}

// TransactionRepository is the append-only transaction log. Entries have no
// update or delete operation.
type TransactionRepository interface {
	Create(ctx context.Context, entry *ledger.Entry) error

	// ListByUser returns the user's entries, most recent first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*ledger.Entry, error)
}

// UserRepository exposes the slice of user state the ledger needs. User
// lifecycle (registration, verification, login) belongs to an external
// collaborator.
type UserRepository interface {
	Exists(ctx context.Context, userID uuid.UUID) (bool, error)
}

// UnitOfWork groups repository mutations into a single atomic, isolated
// unit: either every write inside Do's callback commits and becomes durably
// visible together, or none does. Repositories obtained through the
// callback's UnitOfWork are bound to that transaction session.
type UnitOfWork interface {
	// Do executes fn within a transaction boundary. A returned error aborts
	// the whole unit; a commit failure caused by a concurrent modification
	// surfaces as ledger.ErrPersistenceConflict.
	Do(ctx context.Context, fn func(uow UnitOfWork) error) error

	Balances() BalanceRepository
	Transactions() TransactionRepository
	Users() UserRepository
}
