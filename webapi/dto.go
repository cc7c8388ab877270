package webapi

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/amirasaad/walletfx/pkg/domain/ledger"
	"github.com/amirasaad/walletfx/pkg/provider"
)

// FundRequest is the body of POST /wallet/fund.
type FundRequest struct {
	Currency string          `json:"currency" validate:"required,len=3,alpha"`
	Amount   decimal.Decimal `json:"amount" validate:"required"`
}

// ConvertRequest is the body of POST /wallet/convert and POST /wallet/trade.
type ConvertRequest struct {
	FromCurrency string          `json:"fromCurrency" validate:"required,len=3,alpha"`
	ToCurrency   string          `json:"toCurrency" validate:"required,len=3,alpha"`
	Amount       decimal.Decimal `json:"amount" validate:"required"`
}

// BalanceResponse is one wallet holding.
type BalanceResponse struct {
	Currency string          `json:"currency"`
	Amount   decimal.Decimal `json:"amount"`
}

// ConvertResponse reports a completed conversion.
type ConvertResponse struct {
	ConvertedAmount decimal.Decimal `json:"convertedAmount"`
	Currency        string          `json:"currency"`
	Rate            decimal.Decimal `json:"rate"`
	RateSource      string          `json:"rateSource"`
}

// EntryResponse is one transaction history record.
type EntryResponse struct {
	ID           string           `json:"id"`
	Kind         string           `json:"type"`
	Amount       decimal.Decimal  `json:"amount"`
	FromCurrency string           `json:"fromCurrency"`
	ToCurrency   string           `json:"toCurrency"`
	Rate         *decimal.Decimal `json:"rate,omitempty"`
	Status       string           `json:"status"`
	Timestamp    time.Time        `json:"timestamp"`
}

// RateResponse is the read-only FX quote returned by GET /fx/rate.
type RateResponse struct {
	From      string          `json:"from"`
	To        string          `json:"to"`
	Rate      decimal.Decimal `json:"rate"`
	Source    string          `json:"source"`
	FetchedAt time.Time       `json:"fetchedAt"`
}

func toBalanceResponse(b *ledger.Balance) BalanceResponse {
	return BalanceResponse{
		Currency: b.Currency().String(),
		Amount:   b.Amount.Decimal(),
	}
}

func toConvertResponse(res *ledger.ConversionResult) ConvertResponse {
	return ConvertResponse{
		ConvertedAmount: res.ConvertedAmount.Decimal(),
		Currency:        res.ConvertedAmount.Currency().String(),
		Rate:            res.Rate,
		RateSource:      res.RateSource,
	}
}

func toEntryResponse(e *ledger.Entry) EntryResponse {
	return EntryResponse{
		ID:           e.ID.String(),
		Kind:         string(e.Kind),
		Amount:       e.Amount.Decimal(),
		FromCurrency: e.FromCurrency.String(),
		ToCurrency:   e.ToCurrency.String(),
		Rate:         e.Rate,
		Status:       string(e.Status),
		Timestamp:    e.CreatedAt,
	}
}

func toRateResponse(q *provider.RateQuote) RateResponse {
	return RateResponse{
		From:      q.From.String(),
		To:        q.To.String(),
		Rate:      q.Rate,
		Source:    string(q.Source),
		FetchedAt: q.FetchedAt,
	}
}
