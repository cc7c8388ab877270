package ledger

import "errors"

// The ledger error taxonomy. Callers match with errors.Is; the HTTP layer
// maps each class to a stable status code.
var (
	// ErrInvalidAmount is returned when an operation amount is zero, negative,
	// or unparseable.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInvalidCurrencyCode is returned when a currency code is malformed.
	ErrInvalidCurrencyCode = errors.New("invalid currency code")

	// ErrUserNotFound is returned when the operation references an unknown user.
	ErrUserNotFound = errors.New("user not found")

	// ErrInsufficientBalance is returned when a debit would drive a balance
	// negative. Detected before any mutation and re-checked atomically at
	// debit time.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrRateUnavailable is returned when the rate provider failed and no
	// fallback rate is defined for the pair.
	ErrRateUnavailable = errors.New("exchange rate unavailable")

	// ErrUnsupportedCurrency is returned when the provider does not quote the
	// target currency and no fallback applies.
	ErrUnsupportedCurrency = errors.New("currency not supported")

	// ErrPersistenceConflict is returned when a unit of work could not commit
	// because of a concurrent modification. Safe to retry: the unit of work
	// is all-or-nothing, so a retry cannot double-apply a balance change.
	ErrPersistenceConflict = errors.New("conflicting concurrent update")

	// ErrUpstreamTransient is returned for network-level provider failures.
	ErrUpstreamTransient = errors.New("upstream provider failure")
)
