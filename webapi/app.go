package webapi

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/amirasaad/walletfx/pkg/config"
)

// New assembles the HTTP application: middleware, identity resolution and
// the wallet, transaction and fx routes.
func New(cfg *config.App, svc LedgerService, logger *slog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName: "walletfx",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			status := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				status = e.Code
			}
			return ErrorResponseJSON(c, status, "Internal Server Error", err.Error())
		},
	})

	app.Use(recover.New())
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimit.MaxRequests,
		Expiration: cfg.RateLimit.Window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return ErrorResponseJSON(c, fiber.StatusTooManyRequests, "Too Many Requests", "Rate limit exceeded")
		},
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(Response{Status: fiber.StatusOK, Message: "ok"})
	})

	FxRoutes(app, svc, logger)

	app.Use(UserIdentity())
	WalletRoutes(app, svc, logger)

	return app
}
