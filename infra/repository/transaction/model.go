package transaction

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Entry is the persisted form of one ledger audit record. Rows are only
// ever inserted; there is no update or delete path.
type Entry struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID        `gorm:"type:uuid;not null;index"`
	Kind         string           `gorm:"type:varchar(16);not null"`
	Amount       int64            `gorm:"not null"`
	FromCurrency string           `gorm:"type:varchar(3);not null"`
	ToCurrency   string           `gorm:"type:varchar(3);not null"`
	Rate         *decimal.Decimal `gorm:"type:numeric(16,6)"`
	Status       string           `gorm:"type:varchar(16);not null"`
	CreatedAt    time.Time        `gorm:"index"`
}

// TableName specifies the table name for the Entry model.
func (Entry) TableName() string {
	return "transaction_entries"
}
