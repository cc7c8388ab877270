// Package currency provides currency codes and per-currency metadata such as
// the number of minor-unit decimals used for amounts in that currency.
package currency

import (
	"fmt"
	"sync"
)

const (
	// DefaultCurrency is the fallback currency code (USD)
	DefaultCurrency Code = "USD"
	// DefaultDecimals is the default number of decimal places for currencies
	DefaultDecimals = 2
)

// Code represents an ISO 4217 currency code (e.g., "USD", "NGN").
type Code string

// String returns the code as a plain string.
func (c Code) String() string {
	return string(c)
}

// IsValidFormat reports whether code has the shape of an ISO 4217 code:
// exactly three uppercase ASCII letters.
func IsValidFormat(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// Meta holds currency-specific metadata.
type Meta struct {
	Decimals int
	Symbol   string
}

// Registry maps currency codes to their metadata. Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[Code]Meta
}

// NewRegistry creates a registry seeded with the major currencies.
func NewRegistry() *Registry {
	r := &Registry{entries: make(map[Code]Meta)}

	defaults := map[Code]Meta{
		"USD": {Decimals: 2, Symbol: "$"},
		"EUR": {Decimals: 2, Symbol: "€"},
		"GBP": {Decimals: 2, Symbol: "£"},
		"NGN": {Decimals: 2, Symbol: "₦"},
		"JPY": {Decimals: 0, Symbol: "¥"},
		"KWD": {Decimals: 3, Symbol: "د.ك"},
		"EGP": {Decimals: 2, Symbol: "£"},
		"CAD": {Decimals: 2, Symbol: "C$"},
		"AUD": {Decimals: 2, Symbol: "A$"},
		"CHF": {Decimals: 2, Symbol: "CHF"},
		"CNY": {Decimals: 2, Symbol: "¥"},
		"INR": {Decimals: 2, Symbol: "₹"},
		"GHS": {Decimals: 2, Symbol: "₵"},
		"KES": {Decimals: 2, Symbol: "KSh"},
		"ZAR": {Decimals: 2, Symbol: "R"},
	}
	for code, meta := range defaults {
		r.Register(code, meta)
	}

	return r
}

// Register adds or updates a currency in the registry.
func (r *Registry) Register(code Code, meta Meta) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[code] = meta
}

// Get returns metadata for the given code, or an error if the currency is
// not registered.
func (r *Registry) Get(code Code) (Meta, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	meta, ok := r.entries[code]
	if !ok {
		return Meta{}, fmt.Errorf("currency %q is not registered", code)
	}
	return meta, nil
}

// IsSupported reports whether the code is registered.
func (r *Registry) IsSupported(code Code) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[code]
	return ok
}

// ListSupported returns all registered currency codes.
func (r *Registry) ListSupported() []Code {
	r.mu.RLock()
	defer r.mu.RUnlock()
	codes := make([]Code, 0, len(r.entries))
	for code := range r.entries {
		codes = append(codes, code)
	}
	return codes
}

// defaultRegistry backs the package-level helpers. Callers that need
// isolation (tests, custom currency sets) construct their own Registry.
var defaultRegistry = NewRegistry()

// Get returns metadata for code from the default registry.
func Get(code Code) (Meta, error) {
	return defaultRegistry.Get(code)
}

// IsSupported reports whether code is registered in the default registry.
func IsSupported(code Code) bool {
	return defaultRegistry.IsSupported(code)
}

// Register adds a currency to the default registry.
func Register(code Code, meta Meta) {
	defaultRegistry.Register(code, meta)
}
