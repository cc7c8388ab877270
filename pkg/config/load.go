package config

import (
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load reads configuration from the environment. When envFilePath is given,
// variables are first loaded from that .env file; a missing file is not an
// error since production deploys set real environment variables.
func Load(logger *slog.Logger, envFilePath ...string) (*App, error) {
	var err error
	if len(envFilePath) > 0 && envFilePath[0] != "" {
		err = godotenv.Load(envFilePath[0])
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		logger.Warn("no .env file found, using system environment variables")
	} else {
		logger.Info("environment variables loaded from .env file")
	}

	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	logger.Info("app config loaded",
		"env", cfg.Server.Env,
		"db", maskDBUrl(cfg.DB.Url),
		"exchange_api_url", cfg.Exchange.ApiUrl,
		"exchange_api_key", maskApiKey(cfg.Exchange.ApiKey),
		"exchange_cache_ttl", cfg.Exchange.CacheTTL,
	)
	return &cfg, nil
}
