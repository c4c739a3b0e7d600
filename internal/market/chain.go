package market

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/RichardoC/askbot/internal/models"
)

// ErrNoQuote is returned when no provider produced a usable quote.
var ErrNoQuote = errors.New("no quote available")

// ChainError lists the providers tried before giving up.
type ChainError struct {
	Query     string
	Providers []string
}

func (e *ChainError) Error() string {
	return fmt.Sprintf("Could not fetch LIVE data for %q. The system tried multiple free APIs (%s) but none returned valid data. "+
		"This could be due to:\n• Invalid symbol or company name\n• Market is closed\n• API rate limits reached\n• Temporary service issues\n\n"+
		"Try asking for well-known companies like: Microsoft, Apple, Google, Tesla, TCS, Reliance, Infosys, etc.",
		e.Query, strings.Join(e.Providers, ", "))
}

func (e *ChainError) Unwrap() error { return ErrNoQuote }

var currencyMarkers = map[string]string{
	"INR": "₹",
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"JPY": "¥",
}

// QuoteChain asks each configured provider in order and returns the first
// usable quote.
type QuoteChain struct {
	providers []QuoteProvider
	logger    *zap.Logger
}

func NewQuoteChain(logger *zap.Logger, providers ...QuoteProvider) *QuoteChain {
	return &QuoteChain{providers: providers, logger: logger}
}

// Fetch returns a normalized quote for symbol. query is the user's wording
// and only appears in the error.
func (c *QuoteChain) Fetch(ctx context.Context, query, symbol string) (*models.Quote, error) {
	var tried []string
	for _, p := range c.providers {
		if !p.Configured() {
			c.logger.Debug("quote provider not configured", zap.String("provider", p.Name()))
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("fetch quote: %w", err)
		}
		tried = append(tried, p.Name())

		q, err := p.Quote(ctx, symbol)
		if err != nil {
			c.logger.Warn("quote provider failed",
				zap.String("provider", p.Name()),
				zap.String("symbol", symbol),
				zap.Error(err))
			continue
		}
		q.Provider = p.Name()
		return normalize(q, symbol), nil
	}
	return nil, &ChainError{Query: query, Providers: tried}
}

func normalize(q *models.Quote, requested string) *models.Quote {
	q.Price = round2(q.Price)
	q.Change = round2(q.Change)
	q.ChangePercent = round2(q.ChangePercent)
	q.Currency = currencyMarker(requested, q.Symbol, q.Currency)
	return q
}

// round2 rounds half away from zero.
func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func currencyMarker(requested, symbol, code string) string {
	for _, s := range []string{requested, symbol} {
		s = strings.ToUpper(s)
		if strings.HasSuffix(s, ".NS") || strings.HasSuffix(s, ".BO") {
			return "₹"
		}
	}
	if m, ok := currencyMarkers[strings.ToUpper(code)]; ok {
		return m
	}
	return "$"
}
