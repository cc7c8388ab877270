package balance

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/amirasaad/walletfx/infra/repository/pgerrors"
	"github.com/amirasaad/walletfx/pkg/currency"
	"github.com/amirasaad/walletfx/pkg/domain/ledger"
	"github.com/amirasaad/walletfx/pkg/domain/money"
	"github.com/amirasaad/walletfx/pkg/repository"
)

type repo struct {
	db *gorm.DB
}

// New creates a balance repository bound to the given session.
func New(db *gorm.DB) repository.BalanceRepository {
	return &repo{db: db}
}

// Get returns the user's balance in the given currency; a missing row maps
// to a zero-amount balance, not an error.
func (r *repo) Get(
	ctx context.Context,
	userID uuid.UUID,
	code currency.Code,
) (*ledger.Balance, error) {
	var row Balance
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND currency = ?", userID, code.String()).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		zero := money.Zero(code)
		return &ledger.Balance{UserID: userID, Amount: zero}, nil
	}
	if err != nil {
		return nil, pgerrors.Translate(err)
	}
	return mapRowToDomain(&row)
}

// ListByUser returns every balance row the user holds.
func (r *repo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*ledger.Balance, error) {
	var rows []Balance
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("currency ASC").
		Find(&rows).Error
	if err != nil {
		return nil, pgerrors.Translate(err)
	}

	result := make([]*ledger.Balance, 0, len(rows))
	for i := range rows {
		b, err := mapRowToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, nil
}

// Credit adds amount to the user's holding, creating the row if absent.
func (r *repo) Credit(
	ctx context.Context,
	userID uuid.UUID,
	amount money.Money,
) (*ledger.Balance, error) {
	if !amount.IsPositive() {
		return nil, ledger.ErrInvalidAmount
	}
	code := amount.Currency().String()

	res := r.db.WithContext(ctx).
		Model(&Balance{}).
		Where("user_id = ? AND currency = ?", userID, code).
		Updates(map[string]any{"amount": gorm.Expr("amount + ?", amount.Amount())})
	if res.Error != nil {
		return nil, pgerrors.Translate(res.Error)
	}

	if res.RowsAffected == 0 {
		// First credit into this currency: create the row. A concurrent
		// creator loses the unique-index race and surfaces as a retryable
		// conflict.
		row := Balance{
			ID:       uuid.New(),
			UserID:   userID,
			Currency: code,
			Amount:   amount.Amount(),
		}
		if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
			return nil, pgerrors.Translate(err)
		}
		return mapRowToDomain(&row)
	}

	return r.Get(ctx, userID, amount.Currency())
}

// Debit subtracts amount from the user's holding. The guard and the
// subtraction are one statement, so the balance can never go negative even
// under concurrent debits.
func (r *repo) Debit(
	ctx context.Context,
	userID uuid.UUID,
	amount money.Money,
) (*ledger.Balance, error) {
	if !amount.IsPositive() {
		return nil, ledger.ErrInvalidAmount
	}
	code := amount.Currency().String()

	res := r.db.WithContext(ctx).
		Model(&Balance{}).
		Where("user_id = ? AND currency = ? AND amount >= ?", userID, code, amount.Amount()).
		Updates(map[string]any{"amount": gorm.Expr("amount - ?", amount.Amount())})
	if res.Error != nil {
		return nil, pgerrors.Translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ledger.ErrInsufficientBalance
	}

	return r.Get(ctx, userID, amount.Currency())
}

func mapRowToDomain(row *Balance) (*ledger.Balance, error) {
	amount, err := money.NewFromSmallestUnit(row.Amount, currency.Code(row.Currency))
	if err != nil {
		return nil, err
	}
	return &ledger.Balance{
		ID:        row.ID,
		UserID:    row.UserID,
		Amount:    amount,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}
