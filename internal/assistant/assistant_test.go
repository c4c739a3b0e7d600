package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/RichardoC/askbot/internal/f1"
	"github.com/RichardoC/askbot/internal/intent"
	"github.com/RichardoC/askbot/internal/market"
	"github.com/RichardoC/askbot/internal/models"
	"github.com/RichardoC/askbot/internal/usage"
)

type fakeWeather struct {
	got string
	w   *models.Weather
	err error
}

func (f *fakeWeather) Current(ctx context.Context, location string) (*models.Weather, error) {
	f.got = location
	return f.w, f.err
}

type fakeStocks struct {
	got string
	q   *models.Quote
	err error
}

func (f *fakeStocks) Lookup(ctx context.Context, company string) (*models.Quote, error) {
	f.got = company
	return f.q, f.err
}

type fakeRaces struct {
	race *models.Race
	err  error
}

func (f *fakeRaces) NextRace(ctx context.Context) (*models.Race, error) {
	return f.race, f.err
}

func newTestAssistant(w *fakeWeather, s *fakeStocks, r *fakeRaces) (*Assistant, *usage.Counters) {
	counters := usage.NewCounters()
	a := New(w, s, r, counters, zap.NewNop())
	a.now = func() time.Time { return time.Date(2025, 6, 1, 14, 30, 0, 0, time.UTC) }
	return a, counters
}

func TestReplyWeatherTokyo(t *testing.T) {
	w := &fakeWeather{w: &models.Weather{
		Location: "Tokyo", Temperature: 19, Description: "light rain",
		Humidity: 72, WindSpeed: 3.6, Pressure: 1012, Visibility: 10,
	}}
	a, counters := newTestAssistant(w, &fakeStocks{}, &fakeRaces{})

	reply := a.Reply(context.Background(), "What's the weather in Tokyo?")
	if w.got != "Tokyo" {
		t.Fatalf("looked up %q", w.got)
	}
	want := "🌤️ **Weather in Tokyo:**\n" +
		"🌡️ Temperature: 19°C\n" +
		"☁️ Conditions: light rain\n" +
		"💧 Humidity: 72%\n" +
		"💨 Wind Speed: 3.6 m/s\n" +
		"👁️ Visibility: 10 km"
	if reply.Content != want {
		t.Fatalf("content:\n%s\nwant:\n%s", reply.Content, want)
	}
	if reply.Intent != intent.Weather || reply.Tool == nil || reply.Tool.Type != models.ToolWeather {
		t.Fatalf("reply = %+v", reply)
	}
	if counters.Snapshot().Providers["OpenWeather"] != 1 {
		t.Error("provider not counted")
	}
}

func TestReplyWeatherFailure(t *testing.T) {
	a, counters := newTestAssistant(&fakeWeather{err: errors.New("HTTP 404")}, &fakeStocks{}, &fakeRaces{})
	reply := a.Reply(context.Background(), "weather in Atlantis")
	if reply.Content != "Failed to get weather for Atlantis" || reply.Tool != nil {
		t.Fatalf("reply = %+v", reply)
	}
	if counters.Snapshot().Failures["weather"] != 1 {
		t.Error("failure not counted")
	}
}

func TestReplyWeatherWinsOverStock(t *testing.T) {
	w := &fakeWeather{w: &models.Weather{Location: "Oslo"}}
	s := &fakeStocks{}
	a, _ := newTestAssistant(w, s, &fakeRaces{})
	a.Reply(context.Background(), "weather in Oslo and the Equinor stock price")
	if s.got != "" {
		t.Fatal("stock lookup ran for a weather question")
	}
}

func TestReplyStock(t *testing.T) {
	s := &fakeStocks{q: &models.Quote{
		Symbol: "TCS.NS", Name: "TATA CONSULTANCY SERV LT", Price: 3456.79,
		Change: 56.79, ChangePercent: 1.67, Currency: "₹", Provider: "Yahoo Finance",
	}}
	a, counters := newTestAssistant(&fakeWeather{}, s, &fakeRaces{})

	reply := a.Reply(context.Background(), "TCS stock price")
	if s.got != "TCS" {
		t.Fatalf("looked up %q", s.got)
	}
	want := "📈 **TATA CONSULTANCY SERV LT (TCS.NS)**\n" +
		"💰 **Current Price:** ₹3456.79\n" +
		"🟢 **Change:** +56.79 (+1.67%)\n" +
		"🕒 **Last Updated:** Jun 1, 2025 14:30:00 UTC"
	if reply.Content != want {
		t.Fatalf("content:\n%s\nwant:\n%s", reply.Content, want)
	}
	if reply.Tool == nil || reply.Tool.Type != models.ToolStock {
		t.Fatal("missing stock tool result")
	}
	if counters.Snapshot().Providers["Yahoo Finance"] != 1 {
		t.Error("provider not counted")
	}
}

func TestReplyStockNegativeChange(t *testing.T) {
	s := &fakeStocks{q: &models.Quote{Symbol: "MSFT", Name: "MSFT", Price: 410, Change: -1.5, ChangePercent: -0.36, Currency: "$"}}
	a, _ := newTestAssistant(&fakeWeather{}, s, &fakeRaces{})
	reply := a.Reply(context.Background(), "What's Microsoft stock price?")
	if !strings.Contains(reply.Content, "🔴 **Change:** -1.50 (-0.36%)") || !strings.Contains(reply.Content, "$410.00") {
		t.Fatalf("content = %s", reply.Content)
	}
}

func TestReplyStockFailure(t *testing.T) {
	s := &fakeStocks{err: &market.ChainError{Query: "acme", Providers: []string{"Yahoo Finance"}}}
	a, _ := newTestAssistant(&fakeWeather{}, s, &fakeRaces{})
	reply := a.Reply(context.Background(), "acme stock price")
	if !strings.HasPrefix(reply.Content, `Could not fetch LIVE data for "acme".`) ||
		!strings.Contains(reply.Content, "(Yahoo Finance)") {
		t.Fatalf("content = %s", reply.Content)
	}
	if reply.Tool != nil {
		t.Fatal("failure carried a tool result")
	}
}

func TestReplyF1(t *testing.T) {
	r := &fakeRaces{race: &models.Race{
		RaceName: "Australian Grand Prix", CircuitName: "Albert Park Grand Prix Circuit",
		Date: "2025-03-16", Time: "04:00:00Z", Country: "Australia", Locality: "Melbourne",
	}}
	a, _ := newTestAssistant(&fakeWeather{}, &fakeStocks{}, r)
	reply := a.Reply(context.Background(), "When is the next F1 race?")
	want := "🏎️ **Next Formula 1 Race:**\n" +
		"🏁 **Race:** Australian Grand Prix\n" +
		"🏟️ **Circuit:** Albert Park Grand Prix Circuit\n" +
		"📍 **Location:** Melbourne, Australia\n" +
		"📅 **Date:** Sun, Mar 16, 2025\n" +
		"⏰ **Time:** 04:00 UTC"
	if reply.Content != want {
		t.Fatalf("content:\n%s\nwant:\n%s", reply.Content, want)
	}
}

func TestReplyF1Fallbacks(t *testing.T) {
	placeholder := f1.Placeholder
	a, counters := newTestAssistant(&fakeWeather{}, &fakeStocks{}, &fakeRaces{race: &placeholder})
	reply := a.Reply(context.Background(), "formula one")
	if !strings.Contains(reply.Content, "placeholder") || !strings.Contains(reply.Content, "⏰ **Time:** TBA") {
		t.Fatalf("content = %s", reply.Content)
	}
	if counters.Snapshot().Failures["f1"] != 1 {
		t.Error("placeholder not counted as a failure")
	}

	a, _ = newTestAssistant(&fakeWeather{}, &fakeStocks{}, &fakeRaces{err: f1.ErrUnavailable})
	reply = a.Reply(context.Background(), "next race?")
	if !strings.Contains(reply.Content, "temporarily unavailable") {
		t.Fatalf("content = %s", reply.Content)
	}
}

func TestReplyOther(t *testing.T) {
	a, counters := newTestAssistant(&fakeWeather{}, &fakeStocks{}, &fakeRaces{})
	reply := a.Reply(context.Background(), "hello there")
	if reply.Content != HelpText || reply.Intent != intent.Other || reply.Tool != nil {
		t.Fatalf("reply = %+v", reply)
	}
	if counters.Snapshot().Intents["other"] != 1 {
		t.Error("intent not counted")
	}
}
