package webapi

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/amirasaad/walletfx/pkg/currency"
)

// FxRoutes registers the exchange-rate lookup endpoint.
func FxRoutes(app *fiber.App, svc LedgerService, logger *slog.Logger) {
	app.Get("/fx/rate", GetRate(svc, logger))
}

// GetRate quotes the current rate for a currency pair without touching balances.
func GetRate(svc LedgerService, logger *slog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		from := strings.ToUpper(c.Query("from"))
		to := strings.ToUpper(c.Query("to"))
		if from == "" || to == "" {
			return ErrorResponseJSON(c, fiber.StatusBadRequest,
				"Invalid query", "both from and to query parameters are required")
		}

		quote, err := svc.GetRate(c.UserContext(), currency.Code(from), currency.Code(to))
		if err != nil {
			logger.Warn("rate lookup failed", "from", from, "to", to, "error", err)
			return ErrorResponseJSON(c, ErrorToStatusCode(err), "Rate lookup failed", errorDetail(err))
		}

		return c.JSON(Response{
			Status:  fiber.StatusOK,
			Message: "Rate fetched",
			Data:    toRateResponse(quote),
		})
	}
}
