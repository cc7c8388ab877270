// Package initializer wires configuration into concrete infrastructure:
// logger, database, upstream rate provider, cache and the ledger service.
package initializer

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/amirasaad/walletfx/infra"
	"github.com/amirasaad/walletfx/infra/provider/exchangerateapi"
	infrarepo "github.com/amirasaad/walletfx/infra/repository"
	"github.com/amirasaad/walletfx/pkg/config"
	"github.com/amirasaad/walletfx/pkg/ratecache"
	"github.com/amirasaad/walletfx/pkg/repository"
	ledgersvc "github.com/amirasaad/walletfx/pkg/service/ledger"
)

// Deps holds every constructed dependency the server needs.
type Deps struct {
	Logger *slog.Logger
	Uow    repository.UnitOfWork
	Rates  *ratecache.Cache
	Ledger *ledgersvc.Service
}

// InitializeDependencies builds the full dependency graph from configuration.
func InitializeDependencies(cfg *config.App) (*Deps, error) {
	deps := &Deps{}
	logger := SetupLogger(cfg.Log)
	deps.Logger = logger

	db, err := infra.NewDBConnection(cfg.DB, cfg.Server.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := infra.Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	deps.Uow = infrarepo.New(db)

	upstream := exchangerateapi.New(cfg.Exchange, logger)
	fallback := ratecache.DefaultFallbackRates()
	if !cfg.Exchange.EnableFallback {
		fallback = map[string]decimal.Decimal{}
	}
	deps.Rates = ratecache.New(
		upstream,
		cfg.Exchange.CacheTTL,
		logger,
		ratecache.WithFallback(fallback),
	)

	deps.Ledger = ledgersvc.NewService(deps.Uow, deps.Rates, logger)
	return deps, nil
}
