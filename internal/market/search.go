package market

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/RichardoC/askbot/internal/config"
	"github.com/RichardoC/askbot/internal/restclient"
)

// SymbolSearcher maps a company name to a ticker. An empty symbol with a nil
// error means the provider answered but had no acceptable match.
type SymbolSearcher interface {
	Name() string
	Configured() bool
	Search(ctx context.Context, query string) (string, error)
}

var (
	majorExchanges = []string{"NASDAQ", "NYSE", "NSE", "BSE"}
	indianNames    = []string{"tcs", "reliance", "infosys", "wipro", "bajaj", "adani", "hdfc", "icici", "sbi"}
)

const (
	twelveDataMinScore   = 0.6
	alphaVantageMinScore = 0.5
)

// TwelveDataSearch scores every candidate of /symbol_search.
type TwelveDataSearch struct {
	client   *resty.Client
	provider config.Provider
}

func NewTwelveDataSearch(p config.Provider, timeout time.Duration) *TwelveDataSearch {
	return &TwelveDataSearch{client: restclient.New(p.BaseURL, timeout), provider: p}
}

func (s *TwelveDataSearch) Name() string     { return "Twelve Data" }
func (s *TwelveDataSearch) Configured() bool { return s.provider.Configured() }

type twelveDataSearchResponse struct {
	Status string `json:"status"`
	Data   []struct {
		Symbol         string `json:"symbol"`
		InstrumentName string `json:"instrument_name"`
		Exchange       string `json:"exchange"`
		Country        string `json:"country"`
	} `json:"data"`
}

func (s *TwelveDataSearch) Search(ctx context.Context, query string) (string, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol": query,
			"apikey": s.provider.APIKey,
		}).
		Get("/symbol_search")
	if err != nil {
		return "", fmt.Errorf("twelve data search: %w", err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("twelve data search: HTTP %d", resp.StatusCode())
	}

	var body twelveDataSearchResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return "", fmt.Errorf("decode twelve data search: %w", err)
	}

	best, bestScore := "", 0.0
	for _, m := range body.Data {
		score := scoreCandidate(query, m.InstrumentName, m.Exchange, m.Country)
		if score > bestScore && score > twelveDataMinScore {
			best, bestScore = m.Symbol, score
		}
	}
	return best, nil
}

// scoreCandidate ranks a search hit: 0.5 base, +0.4 name containment,
// +0.2 major exchange, +0.3 Indian listing for a known Indian name,
// +0.1 US listing unless the query mentions India.
func scoreCandidate(query, name, exchange, country string) float64 {
	q := strings.ToLower(query)
	n := strings.ToLower(name)

	score := 0.5
	if n != "" && (strings.Contains(n, q) || strings.Contains(q, n)) {
		score += 0.4
	}
	for _, ex := range majorExchanges {
		if exchange == ex {
			score += 0.2
			break
		}
	}
	if country == "India" {
		for _, term := range indianNames {
			if strings.Contains(q, term) {
				score += 0.3
				break
			}
		}
	}
	if country == "United States" && !strings.Contains(q, "india") {
		score += 0.1
	}
	return score
}

// AlphaVantageSearch accepts the top SYMBOL_SEARCH match above 0.5.
type AlphaVantageSearch struct {
	client   *resty.Client
	provider config.Provider
}

func NewAlphaVantageSearch(p config.Provider, timeout time.Duration) *AlphaVantageSearch {
	return &AlphaVantageSearch{client: restclient.New(p.BaseURL, timeout), provider: p}
}

func (s *AlphaVantageSearch) Name() string     { return "Alpha Vantage" }
func (s *AlphaVantageSearch) Configured() bool { return s.provider.Configured() }

func (s *AlphaVantageSearch) Search(ctx context.Context, query string) (string, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"function": "SYMBOL_SEARCH",
			"keywords": query,
			"apikey":   s.provider.APIKey,
		}).
		Get("/query")
	if err != nil {
		return "", fmt.Errorf("alpha vantage search: %w", err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("alpha vantage search: HTTP %d", resp.StatusCode())
	}

	var body struct {
		BestMatches []map[string]string `json:"bestMatches"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return "", fmt.Errorf("decode alpha vantage search: %w", err)
	}
	if len(body.BestMatches) == 0 {
		return "", nil
	}

	top := body.BestMatches[0]
	score, err := decimal.NewFromString(top["9. matchScore"])
	if err != nil {
		return "", nil
	}
	if score.GreaterThan(decimal.NewFromFloat(alphaVantageMinScore)) {
		return top["1. symbol"], nil
	}
	return "", nil
}

// YahooSearch needs no key. It prefers a quote whose name overlaps the query
// and otherwise takes the first result.
type YahooSearch struct {
	client *resty.Client
}

func NewYahooSearch(p config.Provider, timeout time.Duration) *YahooSearch {
	client := restclient.New(p.BaseURL, timeout)
	client.SetHeader("User-Agent", restclient.BrowserUserAgent)
	return &YahooSearch{client: client}
}

func (s *YahooSearch) Name() string     { return "Yahoo Finance" }
func (s *YahooSearch) Configured() bool { return true }

func (s *YahooSearch) Search(ctx context.Context, query string) (string, error) {
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":           query,
			"quotesCount": "5",
			"newsCount":   "0",
		}).
		Get("/v1/finance/search")
	if err != nil {
		return "", fmt.Errorf("yahoo search: %w", err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("yahoo search: HTTP %d", resp.StatusCode())
	}

	var body struct {
		Quotes []struct {
			Symbol    string `json:"symbol"`
			ShortName string `json:"shortname"`
			LongName  string `json:"longname"`
		} `json:"quotes"`
	}
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return "", fmt.Errorf("decode yahoo search: %w", err)
	}

	q := strings.ToLower(query)
	for _, quote := range body.Quotes {
		name := quote.LongName
		if name == "" {
			name = quote.ShortName
		}
		name = strings.ToLower(name)
		if quote.Symbol != "" && name != "" && (strings.Contains(name, q) || strings.Contains(q, name)) {
			return quote.Symbol, nil
		}
	}
	if len(body.Quotes) > 0 {
		return body.Quotes[0].Symbol, nil
	}
	return "", nil
}
