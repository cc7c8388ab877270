package balance

import (
	"time"

	"github.com/google/uuid"
)

// Balance is the persisted form of a user's holding in one currency.
// Amount is stored in the currency's smallest unit. The (user_id, currency)
// pair is unique: one row per holding, created lazily on first credit.
type Balance struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_balances_user_currency"`
	Currency  string    `gorm:"type:varchar(3);not null;uniqueIndex:idx_balances_user_currency"`
	Amount    int64     `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName specifies the table name for the Balance model.
func (Balance) TableName() string {
	return "balances"
}
