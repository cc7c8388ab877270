// Package exchangerateapi implements the RateProvider contract against the
// exchangerate-api.com v6 HTTP API.
package exchangerateapi

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/amirasaad/walletfx/pkg/config"
	"github.com/amirasaad/walletfx/pkg/currency"
	"github.com/amirasaad/walletfx/pkg/domain/ledger"
	"github.com/amirasaad/walletfx/pkg/provider"

	"context"
)

// Provider fetches live rates from exchangerate-api.com.
type Provider struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// responseV6 models the v6 standard response.
// See: https://www.exchangerate-api.com/docs/standard-requests
type responseV6 struct {
	Result             string             `json:"result"`
	BaseCode           string             `json:"base_code"`
	TimeLastUpdateUnix int64              `json:"time_last_update_unix"`
	ConversionRates    map[string]float64 `json:"conversion_rates"`
	ErrorType          string             `json:"error-type,omitempty"`
}

// New creates a provider from the exchange-rate section of the app config.
func New(cfg config.ExchangeRate, logger *slog.Logger) *Provider {
	return &Provider{
		apiKey:  cfg.ApiKey,
		baseURL: cfg.ApiUrl, // like https://v6.exchangerate-api.com/v6
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
		logger: logger,
	}
}

// FetchRate returns the current rate for the pair. Transport failures and
// upstream errors are classified into the ledger error taxonomy so the rate
// cache can decide whether its fallback table applies.
func (p *Provider) FetchRate(
	ctx context.Context,
	from, to currency.Code,
) (*provider.RateQuote, error) {
	url := fmt.Sprintf("%s/%s/latest/%s", p.baseURL, p.apiKey, from)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", ledger.ErrUpstreamTransient, err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.Warn("exchange rate fetch failed", "from", from, "to", to, "error", err)
		return nil, fmt.Errorf("%w: %v", ledger.ErrUpstreamTransient, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		p.logger.Warn("exchange rate API returned non-OK status", "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: upstream status %d", ledger.ErrUpstreamTransient, resp.StatusCode)
	}

	var body responseV6
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ledger.ErrUpstreamTransient, err)
	}

	if body.Result != "success" {
		switch body.ErrorType {
		case "unsupported-code", "unknown-code":
			return nil, fmt.Errorf("%w: %s", ledger.ErrUnsupportedCurrency, from)
		default:
			return nil, fmt.Errorf("%w: upstream result %q (%s)",
				ledger.ErrUpstreamTransient, body.Result, body.ErrorType)
		}
	}

	rate, ok := body.ConversionRates[to.String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ledger.ErrUnsupportedCurrency, to)
	}
	if rate <= 0 {
		return nil, fmt.Errorf("%w: non-positive rate %v for %s/%s",
			ledger.ErrUpstreamTransient, rate, from, to)
	}

	p.logger.Debug("fetched exchange rate", "from", from, "to", to, "rate", rate)
	return &provider.RateQuote{
		From:      from,
		To:        to,
		Rate:      decimal.NewFromFloat(rate),
		FetchedAt: time.Now(),
		Source:    provider.SourceLive,
	}, nil
}

var _ provider.RateProvider = (*Provider)(nil)
