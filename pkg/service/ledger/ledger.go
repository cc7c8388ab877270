// Package ledger implements the ledger engine: the orchestration of Fund,
// Convert, and Trade against the balance store and transaction log, with
// exchange-rate acquisition and all-or-nothing commit semantics.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/amirasaad/walletfx/pkg/currency"
	"github.com/amirasaad/walletfx/pkg/domain/ledger"
	"github.com/amirasaad/walletfx/pkg/domain/money"
	"github.com/amirasaad/walletfx/pkg/provider"
	"github.com/amirasaad/walletfx/pkg/repository"
)

// conflictRetries bounds automatic re-runs, beyond the first attempt, of
// units of work that lost to a concurrent writer. Conflict retries cannot
// double-apply: the aborted unit left no trace.
const conflictRetries = 3

// RateSource yields exchange-rate quotes. Satisfied by *ratecache.Cache.
type RateSource interface {
	GetRate(ctx context.Context, from, to currency.Code) (*provider.RateQuote, error)
}

// Service is the ledger engine. It is safe for concurrent use by many
// callers; per-row serialization comes from the unit of work, not from
// engine-level locks.
type Service struct {
	uow    repository.UnitOfWork
	rates  RateSource
	logger *slog.Logger
}

// NewService creates a ledger engine over the given unit of work and rate
// source.
func NewService(uow repository.UnitOfWork, rates RateSource, logger *slog.Logger) *Service {
	return &Service{
		uow:    uow,
		rates:  rates,
		logger: logger,
	}
}

// Fund credits amount to the user's balance in the given currency and logs
// one fund entry, atomically. Returns the updated balance.
func (s *Service) Fund(
	ctx context.Context,
	userID uuid.UUID,
	code currency.Code,
	amount decimal.Decimal,
) (*ledger.Balance, error) {
	m, err := s.parseAmount(amount, code)
	if err != nil {
		return nil, err
	}

	var updated *ledger.Balance
	err = s.withConflictRetry(ctx, "fund", func(uow repository.UnitOfWork) error {
		if err := s.requireUser(ctx, uow, userID); err != nil {
			return err
		}

		b, err := uow.Balances().Credit(ctx, userID, m)
		if err != nil {
			return err
		}

		entry := &ledger.Entry{
			ID:           uuid.New(),
			UserID:       userID,
			Kind:         ledger.KindFund,
			Amount:       m,
			FromCurrency: m.Currency(),
			ToCurrency:   m.Currency(),
			Status:       ledger.StatusSuccess,
			CreatedAt:    time.Now(),
		}
		if err := uow.Transactions().Create(ctx, entry); err != nil {
			return err
		}

		updated = b
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("wallet funded",
		"user_id", userID, "currency", m.Currency(), "amount", m.String())
	return updated, nil
}

// Convert moves amount from one of the user's currencies into another at
// the current exchange rate. The rate is acquired before the unit of work
// opens, so a slow upstream never holds row locks. Returns the credited
// amount and the rate actually applied.
func (s *Service) Convert(
	ctx context.Context,
	userID uuid.UUID,
	from, to currency.Code,
	amount decimal.Decimal,
) (*ledger.ConversionResult, error) {
	return s.exchange(ctx, userID, from, to, amount, ledger.KindConvert)
}

// Trade has Convert's exact balance semantics; it exists as a distinct
// operation so the audit trail records what the caller asked for.
func (s *Service) Trade(
	ctx context.Context,
	userID uuid.UUID,
	from, to currency.Code,
	amount decimal.Decimal,
) (*ledger.ConversionResult, error) {
	return s.exchange(ctx, userID, from, to, amount, ledger.KindTrade)
}

func (s *Service) exchange(
	ctx context.Context,
	userID uuid.UUID,
	from, to currency.Code,
	amount decimal.Decimal,
	kind ledger.Kind,
) (*ledger.ConversionResult, error) {
	src, err := s.parseAmount(amount, from)
	if err != nil {
		return nil, err
	}
	if !currency.IsValidFormat(to.String()) {
		return nil, ledger.ErrInvalidCurrencyCode
	}

	// Early existence and sufficiency checks: fail fast before paying for a
	// rate lookup. The authoritative re-checks happen inside the unit of work.
	if err := s.requireUser(ctx, s.uow, userID); err != nil {
		return nil, err
	}
	current, err := s.uow.Balances().Get(ctx, userID, from)
	if err != nil {
		return nil, err
	}
	if short, err := current.Amount.LessThan(src); err != nil {
		return nil, err
	} else if short {
		return nil, ledger.ErrInsufficientBalance
	}

	quote, err := s.acquireRate(ctx, from, to)
	if err != nil {
		return nil, err
	}

	credited, err := src.Convert(quote.Rate, to)
	if err != nil {
		if errors.Is(err, money.ErrInvalidCurrency) {
			return nil, fmt.Errorf("%w: %s", ledger.ErrUnsupportedCurrency, to)
		}
		return nil, err
	}
	if credited.IsZero() {
		// A positive source amount can still round to zero at the target
		// currency's resolution. Rejected before any balance is touched.
		return nil, fmt.Errorf("%w: %s converts to zero in %s",
			ledger.ErrInvalidAmount, src.String(), to)
	}
	appliedRate := quote.Rate.Round(ledger.RateDecimals)

	err = s.withConflictRetry(ctx, string(kind), func(uow repository.UnitOfWork) error {
		if err := s.requireUser(ctx, uow, userID); err != nil {
			return err
		}

		if _, err := uow.Balances().Debit(ctx, userID, src); err != nil {
			return err
		}
		if _, err := uow.Balances().Credit(ctx, userID, credited); err != nil {
			return err
		}

		entry := &ledger.Entry{
			ID:           uuid.New(),
			UserID:       userID,
			Kind:         kind,
			Amount:       src,
			FromCurrency: from,
			ToCurrency:   to,
			Rate:         &appliedRate,
			Status:       ledger.StatusSuccess,
			CreatedAt:    time.Now(),
		}
		return uow.Transactions().Create(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("currency exchanged",
		"kind", kind, "user_id", userID,
		"from", from, "to", to,
		"amount", src.String(), "converted", credited.String(),
		"rate", appliedRate, "rate_source", quote.Source)

	return &ledger.ConversionResult{
		ConvertedAmount: credited,
		Rate:            appliedRate,
		RateSource:      string(quote.Source),
	}, nil
}

// GetBalances returns every balance the user holds.
func (s *Service) GetBalances(ctx context.Context, userID uuid.UUID) ([]*ledger.Balance, error) {
	if err := s.requireUser(ctx, s.uow, userID); err != nil {
		return nil, err
	}
	return s.uow.Balances().ListByUser(ctx, userID)
}

// GetHistory returns the user's transaction entries, most recent first.
func (s *Service) GetHistory(ctx context.Context, userID uuid.UUID) ([]*ledger.Entry, error) {
	if err := s.requireUser(ctx, s.uow, userID); err != nil {
		return nil, err
	}
	return s.uow.Transactions().ListByUser(ctx, userID)
}

// GetRate exposes a read-only quote for a currency pair, identity pairs
// included.
func (s *Service) GetRate(ctx context.Context, from, to currency.Code) (*provider.RateQuote, error) {
	if !currency.IsValidFormat(from.String()) || !currency.IsValidFormat(to.String()) {
		return nil, ledger.ErrInvalidCurrencyCode
	}
	return s.acquireRate(ctx, from, to)
}

// acquireRate returns the quote to apply to a pair. Identity pairs never
// reach the provider: they degenerate to rate 1.0 here.
func (s *Service) acquireRate(ctx context.Context, from, to currency.Code) (*provider.RateQuote, error) {
	if from == to {
		return &provider.RateQuote{
			From:      from,
			To:        to,
			Rate:      decimal.NewFromInt(1),
			FetchedAt: time.Now(),
			Source:    provider.SourceLive,
		}, nil
	}
	return s.rates.GetRate(ctx, from, to)
}

// parseAmount validates and fixes an operation amount at the input boundary.
func (s *Service) parseAmount(amount decimal.Decimal, code currency.Code) (money.Money, error) {
	if !amount.IsPositive() {
		return money.Money{}, ledger.ErrInvalidAmount
	}
	m, err := money.New(amount, code)
	if err != nil {
		if errors.Is(err, money.ErrInvalidCurrency) {
			return money.Money{}, ledger.ErrInvalidCurrencyCode
		}
		return money.Money{}, err
	}
	if !m.IsPositive() {
		// Rounded to zero at the currency's resolution.
		return money.Money{}, ledger.ErrInvalidAmount
	}
	return m, nil
}

// requireUser confirms the user exists before any mutation.
func (s *Service) requireUser(
	ctx context.Context,
	uow repository.UnitOfWork,
	userID uuid.UUID,
) error {
	exists, err := uow.Users().Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !exists {
		return ledger.ErrUserNotFound
	}
	return nil
}

// withConflictRetry runs the unit of work, retrying only persistence
// conflicts. Every other error surfaces once, unmodified.
func (s *Service) withConflictRetry(
	ctx context.Context,
	op string,
	fn func(uow repository.UnitOfWork) error,
) error {
	var err error
	for attempt := 0; attempt <= conflictRetries; attempt++ {
		err = s.uow.Do(ctx, fn)
		if !errors.Is(err, ledger.ErrPersistenceConflict) {
			return err
		}
		s.logger.Warn("unit of work conflicted, retrying",
			"op", op, "attempt", attempt+1, "error", err)
	}
	return err
}
