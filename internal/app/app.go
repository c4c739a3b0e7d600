// Package app builds the components shared by the server and the ask tool.
package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/RichardoC/askbot/internal/assistant"
	"github.com/RichardoC/askbot/internal/config"
	"github.com/RichardoC/askbot/internal/f1"
	"github.com/RichardoC/askbot/internal/market"
	"github.com/RichardoC/askbot/internal/usage"
	"github.com/RichardoC/askbot/internal/weather"
)

// NewLogger returns a production or development logger at the configured level.
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	zc := zap.NewProductionConfig()
	if cfg.Log.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	return zc.Build()
}

// NewAssistant wires the weather, stock and F1 providers from cfg.
func NewAssistant(cfg *config.Config, counters *usage.Counters, logger *zap.Logger) *assistant.Assistant {
	timeout := cfg.Providers.Timeout

	stocks := market.NewServiceFromConfig(cfg, market.NewMemoryCache(), logger)
	wx := weather.NewClient(cfg.Providers.OpenWeather, timeout)
	races := f1.NewService(cfg.Providers.Ergast, cfg.Providers.Jolpica, timeout, logger,
		f1.WithPlaceholder(*cfg.F1.PlaceholderOnFailure))

	if !cfg.Providers.OpenWeather.Configured() {
		logger.Warn("OpenWeather API key not configured, weather requests will fail")
	}
	return assistant.New(wx, stocks, races, counters, logger)
}
