package transaction

import (
	"context"

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

// New creates a transaction log repository bound to the given session.
func New(db *gorm.DB) repository.TransactionRepository {
	return &repo{db: db}
}

// Create appends one entry to the log.
func (r *repo) Create(ctx context.Context, entry *ledger.Entry) error {
	row := mapDomainToRow(entry)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return pgerrors.Translate(err)
	}
	entry.CreatedAt = row.CreatedAt
	return nil
}

// ListByUser returns the user's entries, most recent first.
func (r *repo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*ledger.Entry, error) {
	var rows []Entry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, pgerrors.Translate(err)
	}

	entries := make([]*ledger.Entry, 0, len(rows))
	for i := range rows {
		e, err := mapRowToDomain(&rows[i])
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func mapDomainToRow(entry *ledger.Entry) Entry {
	return Entry{
		ID:           entry.ID,
		UserID:       entry.UserID,
		Kind:         string(entry.Kind),
		Amount:       entry.Amount.Amount(),
		FromCurrency: entry.FromCurrency.String(),
		ToCurrency:   entry.ToCurrency.String(),
		Rate:         entry.Rate,
		Status:       string(entry.Status),
		CreatedAt:    entry.CreatedAt,
	}
}

func mapRowToDomain(row *Entry) (*ledger.Entry, error) {
	amount, err := money.NewFromSmallestUnit(row.Amount, currency.Code(row.FromCurrency))
	if err != nil {
		return nil, err
	}
	return &ledger.Entry{
		ID:           row.ID,
		UserID:       row.UserID,
		Kind:         ledger.Kind(row.Kind),
		Amount:       amount,
		FromCurrency: currency.Code(row.FromCurrency),
		ToCurrency:   currency.Code(row.ToCurrency),
		Rate:         row.Rate,
		Status:       ledger.Status(row.Status),
		CreatedAt:    row.CreatedAt,
	}, nil
}
