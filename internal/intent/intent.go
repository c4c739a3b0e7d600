// Package intent decides which lookup a chat message asks for.
package intent

import (
	"regexp"
	"strings"
)

type Intent string

const (
	Weather Intent = "weather"
	Stock   Intent = "stock"
	F1      Intent = "f1"
	Other   Intent = "other"
)

// DefaultLocation is used when a weather question names no place.
const DefaultLocation = "London"

// Result is a classified message. Param is the location for Weather and the
// company or ticker text for Stock; it is empty otherwise.
type Result struct {
	Intent Intent
	Param  string
}

var (
	weatherKeywords = []string{"weather"}
	f1Keywords      = []string{"f1", "formula", "race"}
	stockKeywords   = []string{"stock", "price"}

	locationPattern = regexp.MustCompile(`(?i)weather.*?in\s+(\w+)`)

	// Tried in order; the first non-empty capture wins.
	companyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)what'?s\s+(?:the\s+)?(.+?)(?:'s)?\s+stock`),
		regexp.MustCompile(`(?i)(?:^|\s)([a-z0-9][a-z0-9.&\s-]*?)(?:'s)?\s+stock\s+price`),
		regexp.MustCompile(`(?i)(?:^|\s)([a-z0-9][a-z0-9.&\s-]*?)(?:'s)?\s+stock\b`),
		regexp.MustCompile(`(?i)stock\s+price\s+(?:of\s+)?([a-z0-9][a-z0-9.&\s-]*)`),
		regexp.MustCompile(`(?i)price\s+of\s+([a-z0-9][a-z0-9.&\s-]*)`),
	}

	stopwords  = regexp.MustCompile(`(?i)\b(?:what'?s|stock|price|the|of)\b`)
	whitespace = regexp.MustCompile(`\s+`)
)

// Classify returns the intent of text and its extracted parameter.
// Weather is checked before F1, and F1 before stock.
func Classify(text string) Result {
	s := strings.ToLower(text)

	switch {
	case containsAny(s, weatherKeywords...):
		return Result{Intent: Weather, Param: ExtractLocation(text)}
	case containsAny(s, f1Keywords...):
		return Result{Intent: F1}
	case containsAny(s, stockKeywords...):
		return Result{Intent: Stock, Param: ExtractCompany(text)}
	}
	return Result{Intent: Other}
}

// ExtractLocation returns the word following "weather ... in", or
// DefaultLocation.
func ExtractLocation(text string) string {
	if m := locationPattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return DefaultLocation
}

// ExtractCompany returns the company or symbol phrase of a stock question.
func ExtractCompany(text string) string {
	for _, p := range companyPatterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		// A capture made only of filler ("what's the stock price") is a miss.
		if c := strings.TrimSpace(m[1]); stripStopwords(c) != "" {
			return c
		}
	}
	return stripStopwords(text)
}

func stripStopwords(text string) string {
	s := stopwords.ReplaceAllString(text, " ")
	s = strings.Trim(s, " \t\n?!.,")
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

func containsAny(s string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
