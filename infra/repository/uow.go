// Package repository provides the GORM-backed unit of work binding the
// balance store and transaction log into single atomic commits.
package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/amirasaad/walletfx/infra/repository/balance"
	"github.com/amirasaad/walletfx/infra/repository/pgerrors"
	"github.com/amirasaad/walletfx/infra/repository/transaction"
	"github.com/amirasaad/walletfx/infra/repository/user"
	"github.com/amirasaad/walletfx/pkg/repository"
)

// UoW implements repository.UnitOfWork over gorm transactions. Repositories
// obtained inside Do share the transaction session, so a balance mutation
// and its log entry commit together or not at all.
type UoW struct {
	db      *gorm.DB
	session *gorm.DB
}

// New creates a UoW for the given *gorm.DB. Repository accessors called
// outside Do run on the base connection, which is fine for reads.
func New(db *gorm.DB) *UoW {
	return &UoW{db: db, session: db}
}

// Do runs fn inside one database transaction. fn's error aborts the
// transaction; commit failures are classified through pgerrors so the
// caller can retry conflicts.
func (u *UoW) Do(ctx context.Context, fn func(uow repository.UnitOfWork) error) error {
	err := u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UoW{db: u.db, session: tx})
	})
	return pgerrors.Translate(err)
}

// Balances returns the balance store bound to the current session.
func (u *UoW) Balances() repository.BalanceRepository {
	return balance.New(u.session)
}

// Transactions returns the transaction log bound to the current session.
func (u *UoW) Transactions() repository.TransactionRepository {
	return transaction.New(u.session)
}

// Users returns the user repository bound to the current session.
func (u *UoW) Users() repository.UserRepository {
	return user.New(u.session)
}

var _ repository.UnitOfWork = (*UoW)(nil)
