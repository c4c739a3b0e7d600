// Package assistant answers a chat message by routing it to the matching
// lookup and formatting the result.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/RichardoC/askbot/internal/f1"
	"github.com/RichardoC/askbot/internal/intent"
	"github.com/RichardoC/askbot/internal/market"
	"github.com/RichardoC/askbot/internal/models"
	"github.com/RichardoC/askbot/internal/usage"
)

type WeatherClient interface {
	Current(ctx context.Context, location string) (*models.Weather, error)
}

type StockLookup interface {
	Lookup(ctx context.Context, company string) (*models.Quote, error)
}

type RaceFinder interface {
	NextRace(ctx context.Context) (*models.Race, error)
}

// Reply is the assistant's answer. Tool is nil for help text and failures.
type Reply struct {
	Content string
	Tool    *models.ToolResult
	Intent  intent.Intent
}

type Assistant struct {
	weather  WeatherClient
	stocks   StockLookup
	races    RaceFinder
	counters *usage.Counters
	logger   *zap.Logger
	now      func() time.Time
}

func New(weather WeatherClient, stocks StockLookup, races RaceFinder, counters *usage.Counters, logger *zap.Logger) *Assistant {
	if counters == nil {
		counters = usage.NewCounters()
	}
	return &Assistant{
		weather:  weather,
		stocks:   stocks,
		races:    races,
		counters: counters,
		logger:   logger,
		now:      time.Now,
	}
}

// Reply never fails: lookup errors become user-facing text.
func (a *Assistant) Reply(ctx context.Context, text string) Reply {
	res := intent.Classify(text)
	a.counters.RecordIntent(string(res.Intent))
	a.logger.Info("classified message",
		zap.String("intent", string(res.Intent)),
		zap.String("param", res.Param))

	var reply Reply
	switch res.Intent {
	case intent.Weather:
		reply = a.replyWeather(ctx, res.Param)
	case intent.Stock:
		reply = a.replyStock(ctx, res.Param)
	case intent.F1:
		reply = a.replyF1(ctx)
	default:
		reply = Reply{Content: HelpText}
	}
	reply.Intent = res.Intent
	return reply
}

func (a *Assistant) replyWeather(ctx context.Context, location string) Reply {
	w, err := a.weather.Current(ctx, location)
	if err != nil {
		a.counters.RecordFailure(string(intent.Weather))
		a.logger.Warn("weather lookup failed", zap.String("location", location), zap.Error(err))
		return Reply{Content: fmt.Sprintf("Failed to get weather for %s", location)}
	}
	a.counters.RecordProvider("OpenWeather")
	return Reply{Content: FormatWeather(w), Tool: a.toolResult(models.ToolWeather, w)}
}

func (a *Assistant) replyStock(ctx context.Context, company string) Reply {
	if company == "" {
		a.counters.RecordFailure(string(intent.Stock))
		return Reply{Content: "Which company would you like a price for? Try 'What's Microsoft stock price?'"}
	}

	q, err := a.stocks.Lookup(ctx, company)
	if err != nil {
		a.counters.RecordFailure(string(intent.Stock))
		a.logger.Warn("stock lookup failed", zap.String("company", company), zap.Error(err))
		var chainErr *market.ChainError
		if errors.As(err, &chainErr) {
			return Reply{Content: chainErr.Error()}
		}
		return Reply{Content: fmt.Sprintf("Could not fetch LIVE data for %q. Please try again in a moment.", company)}
	}
	a.counters.RecordProvider(q.Provider)
	return Reply{Content: FormatQuote(q, a.now()), Tool: a.toolResult(models.ToolStock, q)}
}

func (a *Assistant) replyF1(ctx context.Context) Reply {
	race, err := a.races.NextRace(ctx)
	if err != nil {
		a.counters.RecordFailure(string(intent.F1))
		a.logger.Warn("f1 lookup failed", zap.Error(err))
		if errors.Is(err, f1.ErrUnavailable) {
			return Reply{Content: "F1 race information is temporarily unavailable. Please try again later."}
		}
		return Reply{Content: "Failed to get F1 race information"}
	}
	if race.Placeholder {
		a.counters.RecordFailure(string(intent.F1))
	}
	return Reply{Content: FormatRace(race), Tool: a.toolResult(models.ToolF1, race)}
}

func (a *Assistant) toolResult(t models.ToolType, v any) *models.ToolResult {
	tr, err := models.NewToolResult(t, v)
	if err != nil {
		a.logger.Error("failed to encode tool result", zap.String("tool", string(t)), zap.Error(err))
		return nil
	}
	return tr
}
