package webapi

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/amirasaad/walletfx/pkg/currency"
	"github.com/amirasaad/walletfx/pkg/domain/ledger"
	"github.com/amirasaad/walletfx/pkg/provider"
)

// LedgerService is the slice of the ledger engine the handlers consume.
type LedgerService interface {
	Fund(ctx context.Context, userID uuid.UUID, code currency.Code, amount decimal.Decimal) (*ledger.Balance, error)
	Convert(ctx context.Context, userID uuid.UUID, from, to currency.Code, amount decimal.Decimal) (*ledger.ConversionResult, error)
	Trade(ctx context.Context, userID uuid.UUID, from, to currency.Code, amount decimal.Decimal) (*ledger.ConversionResult, error)
	GetBalances(ctx context.Context, userID uuid.UUID) ([]*ledger.Balance, error)
	GetHistory(ctx context.Context, userID uuid.UUID) ([]*ledger.Entry, error)
	GetRate(ctx context.Context, from, to currency.Code) (*provider.RateQuote, error)
}

// WalletRoutes registers the wallet and transaction-history endpoints.
func WalletRoutes(app *fiber.App, svc LedgerService, logger *slog.Logger) {
	app.Get("/wallet", GetWallet(svc))
	app.Post("/wallet/fund", Fund(svc, logger))
	app.Post("/wallet/convert", Convert(svc, logger))
	app.Post("/wallet/trade", Trade(svc, logger))
	app.Get("/transactions", GetTransactions(svc))
}

// GetWallet returns every balance the authenticated user holds.
func GetWallet(svc LedgerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := requireUserID(c)
		if err != nil {
			return err
		}

		balances, err := svc.GetBalances(c.UserContext(), userID)
		if err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Failed to fetch wallet", errorDetail(err))
		}

		data := make([]BalanceResponse, 0, len(balances))
		for _, b := range balances {
			data = append(data, toBalanceResponse(b))
		}
		return c.JSON(Response{
			Status:  fiber.StatusOK,
			Message: "Wallet fetched",
			Data:    data,
		})
	}
}

// Fund credits the user's wallet in the given currency.
func Fund(svc LedgerService, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := requireUserID(c)
		if err != nil {
			return err
		}

		input, err := BindAndValidate[FundRequest](c)
		if err != nil {
			return nil
		}

		b, err := svc.Fund(c.UserContext(), userID, currency.Code(input.Currency), input.Amount)
		if err != nil {
			logger.Warn("fund failed", "user_id", userID, "error", err)
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Fund failed", errorDetail(err))
		}

		return c.Status(fiber.StatusCreated).JSON(Response{
			Status:  fiber.StatusCreated,
			Message: "Wallet funded",
			Data:    toBalanceResponse(b),
		})
	}
}

// Convert exchanges between two of the user's currencies.
func Convert(svc LedgerService, logger *slog.Logger) fiber.Handler {
	return exchangeHandler(svc.Convert, "Conversion", logger)
}

// Trade is Convert under a distinct audit kind.
func Trade(svc LedgerService, logger *slog.Logger) fiber.Handler {
	return exchangeHandler(svc.Trade, "Trade", logger)
}

func exchangeHandler(
	op func(ctx context.Context, userID uuid.UUID, from, to currency.Code, amount decimal.Decimal) (*ledger.ConversionResult, error),
	label string,
	logger *slog.Logger,
) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := requireUserID(c)
		if err != nil {
			return err
		}

		input, err := BindAndValidate[ConvertRequest](c)
		if err != nil {
			return nil
		}

		res, err := op(
			c.UserContext(),
			userID,
			currency.Code(input.FromCurrency),
			currency.Code(input.ToCurrency),
			input.Amount,
		)
		if err != nil {
			logger.Warn("exchange failed",
				"op", label, "user_id", userID,
				"from", input.FromCurrency, "to", input.ToCurrency, "error", err)
			return ErrorResponseJSON(c, ErrorToStatusCode(err), label+" failed", errorDetail(err))
		}

		return c.JSON(Response{
			Status:  fiber.StatusOK,
			Message: label + " completed",
			Data:    toConvertResponse(res),
		})
	}
}

// GetTransactions returns the user's history, most recent first.
func GetTransactions(svc LedgerService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := requireUserID(c)
		if err != nil {
			return err
		}

		entries, err := svc.GetHistory(c.UserContext(), userID)
		if err != nil {
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Failed to fetch history", errorDetail(err))
		}

		data := make([]EntryResponse, 0, len(entries))
		for _, e := range entries {
			data = append(data, toEntryResponse(e))
		}
		return c.JSON(Response{
			Status:  fiber.StatusOK,
			Message: "Transactions fetched",
			Data:    data,
		})
	}
}
