// Package money provides the Money value object used for all wallet amounts.
package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/amirasaad/walletfx/pkg/currency"
)

var (
	// ErrInvalidCurrency is returned when a currency code is malformed or unknown.
	ErrInvalidCurrency = errors.New("invalid currency code")
	// ErrCurrencyMismatch is returned when arithmetic mixes two currencies.
	ErrCurrencyMismatch = errors.New("currency mismatch")
)

// Money represents a monetary value in a specific currency.
//
// Invariants:
//   - The amount is stored as an integer count of the currency's smallest
//     unit (e.g., kobo for NGN, cents for USD), so no floating drift can
//     accumulate across operations.
//   - The currency code must be registered in the currency registry.
//   - Arithmetic requires matching currencies.
type Money struct {
	amount   int64
	currency currency.Code
}

// New creates a Money value from a decimal amount in major units.
// Fractional digits beyond the currency's resolution are rounded
// half-away-from-zero at this boundary; the value is exact from here on.
func New(amount decimal.Decimal, code currency.Code) (Money, error) {
	if code == "" {
		code = currency.DefaultCurrency
	}
	if !currency.IsValidFormat(code.String()) {
		return Money{}, ErrInvalidCurrency
	}
	meta, err := currency.Get(code)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %s", ErrInvalidCurrency, code)
	}

	smallest := amount.Round(int32(meta.Decimals)).Shift(int32(meta.Decimals))
	if !smallest.IsInteger() {
		return Money{}, fmt.Errorf("amount %s does not round to %d decimal places", amount, meta.Decimals)
	}
	if !smallest.BigInt().IsInt64() {
		return Money{}, fmt.Errorf("amount %s exceeds the representable range for %s", amount, code)
	}

	return Money{amount: smallest.IntPart(), currency: code}, nil
}

// NewFromSmallestUnit creates a Money value directly from the smallest
// currency unit. Used when hydrating persisted balances.
func NewFromSmallestUnit(amount int64, code currency.Code) (Money, error) {
	if code == "" {
		code = currency.DefaultCurrency
	}
	if !currency.IsValidFormat(code.String()) {
		return Money{}, ErrInvalidCurrency
	}
	return Money{amount: amount, currency: code}, nil
}

// Zero returns a zero-valued Money in the given currency.
func Zero(code currency.Code) Money {
	return Money{amount: 0, currency: code}
}

// Amount returns the value in the smallest currency unit.
func (m Money) Amount() int64 {
	return m.amount
}

// Decimal returns the value in major units as an exact decimal.
func (m Money) Decimal() decimal.Decimal {
	meta, err := currency.Get(m.currency)
	if err != nil {
		return decimal.NewFromInt(m.amount)
	}
	return decimal.NewFromInt(m.amount).Shift(-int32(meta.Decimals))
}

// Float64 returns the value in major units. Only for presentation; all
// arithmetic stays on the integer representation.
func (m Money) Float64() float64 {
	f, _ := m.Decimal().Float64()
	return f
}

// Currency returns the currency code.
func (m Money) Currency() currency.Code {
	return m.currency
}

// Add returns m + other. Currencies must match and the result must not
// overflow int64.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, ErrCurrencyMismatch
	}
	sum := m.amount + other.amount
	if (other.amount > 0 && sum < m.amount) || (other.amount < 0 && sum > m.amount) {
		return Money{}, fmt.Errorf("addition result would overflow")
	}
	return Money{amount: sum, currency: m.currency}, nil
}

// Subtract returns m - other. Currencies must match and the result must not
// overflow int64.
func (m Money) Subtract(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, ErrCurrencyMismatch
	}
	diff := m.amount - other.amount
	if (other.amount > 0 && diff > m.amount) || (other.amount < 0 && diff < m.amount) {
		return Money{}, fmt.Errorf("subtraction result would overflow")
	}
	return Money{amount: diff, currency: m.currency}, nil
}

// LessThan reports whether m < other. Currencies must match.
func (m Money) LessThan(other Money) (bool, error) {
	if m.currency != other.currency {
		return false, ErrCurrencyMismatch
	}
	return m.amount < other.amount, nil
}

// IsPositive reports whether the amount is greater than zero.
func (m Money) IsPositive() bool {
	return m.amount > 0
}

// IsNegative reports whether the amount is less than zero.
func (m Money) IsNegative() bool {
	return m.amount < 0
}

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool {
	return m.amount == 0
}

// Convert returns the value of m expressed in the target currency at the
// given rate (1 unit of m.currency = rate units of target). The result is
// rounded half-away-from-zero to the target currency's resolution, so the
// same (amount, rate) pair always converts to the same result.
func (m Money) Convert(rate decimal.Decimal, target currency.Code) (Money, error) {
	if !rate.IsPositive() {
		return Money{}, fmt.Errorf("conversion rate must be positive, got %s", rate)
	}
	converted := m.Decimal().Mul(rate)
	return New(converted, target)
}

// String renders the amount with the currency's decimal resolution.
func (m Money) String() string {
	meta, err := currency.Get(m.currency)
	if err != nil {
		return fmt.Sprintf("%d %s", m.amount, m.currency)
	}
	return fmt.Sprintf("%s %s", m.Decimal().StringFixed(int32(meta.Decimals)), m.currency)
}
