package assistant

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/RichardoC/askbot/internal/models"
)

// HelpText is the reply to anything that is not a supported question.
const HelpText = "I can help you with:\n" +
	"🌤️ **Weather** - try 'What's the weather in London?'\n" +
	"📈 **Stock prices** - try 'What's Microsoft stock price?'\n" +
	"🏎️ **F1 races** - try 'When is the next F1 race?'\n" +
	"\nWhat would you like to know?"

// FormatWeather renders current conditions.
func FormatWeather(w *models.Weather) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🌤️ **Weather in %s:**\n", w.Location)
	fmt.Fprintf(&sb, "🌡️ Temperature: %d°C\n", w.Temperature)
	fmt.Fprintf(&sb, "☁️ Conditions: %s\n", w.Description)
	fmt.Fprintf(&sb, "💧 Humidity: %d%%\n", w.Humidity)
	fmt.Fprintf(&sb, "💨 Wind Speed: %s m/s\n", decimal.NewFromFloat(w.WindSpeed).String())
	fmt.Fprintf(&sb, "👁️ Visibility: %d km", w.Visibility)
	return sb.String()
}

// FormatQuote renders a quote with a green or red change line.
func FormatQuote(q *models.Quote, updated time.Time) string {
	sign, dot := "+", "🟢"
	if q.Change < 0 {
		sign, dot = "", "🔴"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📈 **%s (%s)**\n", q.Name, q.Symbol)
	fmt.Fprintf(&sb, "💰 **Current Price:** %s%s\n", q.Currency, money(q.Price))
	fmt.Fprintf(&sb, "%s **Change:** %s%s (%s%s%%)\n", dot, sign, money(q.Change), sign, money(q.ChangePercent))
	fmt.Fprintf(&sb, "🕒 **Last Updated:** %s", updated.UTC().Format("Jan 2, 2006 15:04:05 UTC"))
	return sb.String()
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// FormatRace renders the next race. Placeholder races carry a notice.
func FormatRace(r *models.Race) string {
	var sb strings.Builder
	sb.WriteString("🏎️ **Next Formula 1 Race:**\n")
	fmt.Fprintf(&sb, "🏁 **Race:** %s\n", r.RaceName)
	fmt.Fprintf(&sb, "🏟️ **Circuit:** %s\n", r.CircuitName)
	fmt.Fprintf(&sb, "📍 **Location:** %s, %s\n", r.Locality, r.Country)
	fmt.Fprintf(&sb, "📅 **Date:** %s\n", raceDate(r.Date))
	fmt.Fprintf(&sb, "⏰ **Time:** %s", raceTime(r.Time))
	if r.Placeholder {
		sb.WriteString("\n\n_Live schedule data is unavailable right now, so this is placeholder information._")
	}
	return sb.String()
}

func raceDate(s string) string {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return s
	}
	return d.Format("Mon, Jan 2, 2006")
}

func raceTime(s string) string {
	t, err := time.Parse("15:04:05Z07:00", s)
	if err != nil {
		return s
	}
	return t.UTC().Format("15:04") + " UTC"
}
