// Package ratecache memoizes exchange-rate lookups with a freshness window
// and a static fallback table for when the upstream provider is unavailable.
package ratecache

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/amirasaad/walletfx/pkg/currency"
	"github.com/amirasaad/walletfx/pkg/domain/ledger"
	"github.com/amirasaad/walletfx/pkg/provider"
)

// DefaultTTL is the freshness window for cached point rates.
const DefaultTTL = time.Hour

// Cache serves exchange rates from memory while they are fresh, refreshes
// them from the provider on miss or expiry, and falls back to a static
// emergency table when the provider fails. The quote table is shared across
// all callers and guarded internally; it is an optimization layer, not a
// source of truth, so its reads need not be linearizable with balance
// mutations.
type Cache struct {
	provider provider.RateProvider
	ttl      time.Duration
	clock    func() time.Time
	fallback map[string]decimal.Decimal
	logger   *slog.Logger

	mu     sync.RWMutex
	quotes map[string]*provider.RateQuote
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock injects the time source. Tests use this to age quotes past the
// freshness window without sleeping.
func WithClock(clock func() time.Time) Option {
	return func(c *Cache) {
		c.clock = clock
	}
}

// WithFallback replaces the emergency rate table. An empty map disables the
// fallback policy entirely.
func WithFallback(rates map[string]decimal.Decimal) Option {
	return func(c *Cache) {
		c.fallback = rates
	}
}

// DefaultFallbackRates returns the static emergency table for known-critical
// pairs, applied when the upstream is unreachable.
func DefaultFallbackRates() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		PairKey("NGN", "USD"): decimal.RequireFromString("0.00062"),
	}
}

// New creates a cache over the given provider. A non-positive ttl falls back
// to DefaultTTL.
func New(p provider.RateProvider, ttl time.Duration, logger *slog.Logger, opts ...Option) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		provider: p,
		ttl:      ttl,
		clock:    time.Now,
		fallback: DefaultFallbackRates(),
		logger:   logger,
		quotes:   make(map[string]*provider.RateQuote),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PairKey normalizes an ordered currency pair into its cache key, e.g.
// ("ngn", "usd") -> "NGN_USD".
func PairKey(from, to currency.Code) string {
	return strings.ToUpper(from.String()) + "_" + strings.ToUpper(to.String())
}

// GetRate returns a quote for the pair: a cached one while fresh, otherwise
// a live fetch. On provider failure the fallback table is consulted before
// the error propagates as ledger.ErrRateUnavailable.
//
// Concurrent misses for the same pair may each call the provider; the fetch
// is idempotent and side-effect-free upstream, so no single-flight
// de-duplication is done here.
func (c *Cache) GetRate(ctx context.Context, from, to currency.Code) (*provider.RateQuote, error) {
	from = currency.Code(strings.ToUpper(from.String()))
	to = currency.Code(strings.ToUpper(to.String()))
	key := PairKey(from, to)

	if quote := c.lookup(key); quote != nil {
		c.logger.Debug("rate cache hit", "pair", key, "rate", quote.Rate)
		return quote, nil
	}

	quote, err := c.provider.FetchRate(ctx, from, to)
	if err != nil {
		if fb, ok := c.fallback[key]; ok {
			c.logger.Warn("rate provider failed, using fallback rate",
				"pair", key, "rate", fb, "error", err)
			return &provider.RateQuote{
				From:      from,
				To:        to,
				Rate:      fb,
				FetchedAt: c.clock(),
				Source:    provider.SourceFallback,
			}, nil
		}
		return nil, fmt.Errorf("%w: %w", ledger.ErrRateUnavailable, err)
	}

	stored := *quote
	stored.FetchedAt = c.clock()

	c.mu.Lock()
	c.quotes[key] = &stored
	c.mu.Unlock()

	c.logger.Info("rate fetched from provider", "pair", key, "rate", quote.Rate)
	return &stored, nil
}

// lookup returns a fresh cached quote for key, or nil.
func (c *Cache) lookup(key string) *provider.RateQuote {
	c.mu.RLock()
	defer c.mu.RUnlock()

	quote, ok := c.quotes[key]
	if !ok {
		return nil
	}
	if c.clock().Sub(quote.FetchedAt) >= c.ttl {
		return nil
	}

	hit := *quote
	hit.Source = provider.SourceCached
	return &hit
}
