// Package market resolves company names to tickers and fetches live quotes
// from an ordered list of providers.
package market

import (
	"context"

	"go.uber.org/zap"

	"github.com/RichardoC/askbot/internal/config"
	"github.com/RichardoC/askbot/internal/models"
)

// Service combines symbol resolution with the quote chain.
type Service struct {
	resolver *Resolver
	chain    *QuoteChain
	logger   *zap.Logger
}

func NewService(resolver *Resolver, chain *QuoteChain, logger *zap.Logger) *Service {
	return &Service{resolver: resolver, chain: chain, logger: logger}
}

// NewServiceFromConfig wires the searchers and quote providers in their
// fixed priority order.
func NewServiceFromConfig(cfg *config.Config, cache SymbolCache, logger *zap.Logger) *Service {
	p := cfg.Providers
	timeout := p.Timeout

	resolver := NewResolver(cache, logger,
		NewTwelveDataSearch(p.TwelveData, timeout),
		NewAlphaVantageSearch(p.AlphaVantage, timeout),
		NewYahooSearch(p.Yahoo, timeout),
	)
	chain := NewQuoteChain(logger,
		NewTwelveDataQuotes(p.TwelveData, timeout),
		NewPolygonQuotes(p.Polygon, timeout),
		NewFinnhubQuotes(p.Finnhub, timeout),
		NewAlphaVantageQuotes(p.AlphaVantage, timeout),
		NewYahooQuotes(p.Yahoo, timeout),
	)
	return NewService(resolver, chain, logger)
}

// Lookup resolves company and returns its quote. When every provider fails
// the error is a *ChainError.
func (s *Service) Lookup(ctx context.Context, company string) (*models.Quote, error) {
	symbol, resolved := s.resolver.Resolve(ctx, company)
	if !resolved {
		s.logger.Info("no symbol found, querying company text as ticker",
			zap.String("company", company),
			zap.String("symbol", symbol))
	}
	return s.chain.Fetch(ctx, company, symbol)
}
