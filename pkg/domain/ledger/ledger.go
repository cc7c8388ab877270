// Package ledger holds the wallet ledger's domain model: per-user currency
// balances, immutable transaction entries, and the error taxonomy shared by
// the engine, the repositories, and the HTTP surface.
package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/amirasaad/walletfx/pkg/currency"
	"github.com/amirasaad/walletfx/pkg/domain/money"
)

// RateDecimals is the fixed precision at which applied exchange rates are
// recorded on transaction entries.
const RateDecimals = 6

// Kind identifies the operation that produced a transaction entry.
type Kind string

// The closed set of ledger operations. Trade is a distinct kind for audit
// purposes even though its balance semantics equal Convert's.
const (
	KindFund    Kind = "fund"
	KindConvert Kind = "convert"
	KindTrade   Kind = "trade"
)

// IsValid reports whether k is one of the known operation kinds.
func (k Kind) IsValid() bool {
	switch k {
	case KindFund, KindConvert, KindTrade:
		return true
	}
	return false
}

// Status is the terminal state of a logged operation. Only successful
// operations produce entries; failed attempts surface an error to the
// caller without a log record.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Balance is a user's holding in one currency. A balance row is created
// lazily on the first credit into a currency, never deleted, and mutated
// only inside a unit of work.
//
// Invariant: Amount >= 0 at every observable point.
type Balance struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Amount    money.Money
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Currency returns the balance's currency code.
func (b *Balance) Currency() currency.Code {
	return b.Amount.Currency()
}

// Entry is one immutable audit record of a completed ledger operation.
// Amount is the source-currency magnitude; Rate is the exchange rate
// applied at execution time, nil for fund entries.
type Entry struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Kind         Kind
	Amount       money.Money
	FromCurrency currency.Code
	ToCurrency   currency.Code
	Rate         *decimal.Decimal
	Status       Status
	CreatedAt    time.Time
}

// ConversionResult is what a successful Convert or Trade returns to the
// caller: the credited money plus the identity of the rate actually used.
type ConversionResult struct {
	ConvertedAmount money.Money
	Rate            decimal.Decimal
	RateSource      string
}
