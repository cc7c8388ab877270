// Package provider defines the outbound contract for exchange-rate lookups.
package provider

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/amirasaad/walletfx/pkg/currency"
)

// QuoteSource records where a rate came from.
type QuoteSource string

const (
	// SourceLive is a rate fetched from the upstream provider for this request.
	SourceLive QuoteSource = "live"
	// SourceCached is a rate served from the cache within its freshness window.
	SourceCached QuoteSource = "cached"
	// SourceFallback is a static emergency rate used when the upstream failed.
	SourceFallback QuoteSource = "fallback"
)

// RateQuote is a transient exchange-rate observation for an ordered
// currency pair: 1 unit of From equals Rate units of To.
type RateQuote struct {
	From      currency.Code
	To        currency.Code
	Rate      decimal.Decimal
	FetchedAt time.Time
	Source    QuoteSource
}

// RateProvider fetches a current exchange rate for an ordered currency pair
// from an upstream source. Implementations are pure queries: no wallet
// knowledge, no side effects beyond the network call.
//
// The engine never asks for identity pairs (from == to); those short-circuit
// in the caller.
type RateProvider interface {
	// FetchRate returns a positive rate for the pair, or an error wrapping
	// ledger.ErrUnsupportedCurrency or ledger.ErrUpstreamTransient.
	FetchRate(ctx context.Context, from, to currency.Code) (*RateQuote, error)
}
