package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/RichardoC/askbot/internal/config"
	"github.com/RichardoC/askbot/internal/models"
	"github.com/RichardoC/askbot/internal/restclient"
)

// QuoteProvider fetches a raw quote for a ticker. Price, change and percent
// are unrounded and Currency is the provider's ISO code, if any.
type QuoteProvider interface {
	Name() string
	Configured() bool
	Quote(ctx context.Context, symbol string) (*models.Quote, error)
}

// errNoData marks a response that arrived but carried no usable quote.
var errNoData = errors.New("no usable data")

func parseDecimal(s string) (float64, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%")))
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}

func getJSON(ctx context.Context, req *resty.Request, path string, v any) error {
	resp, err := req.SetContext(ctx).Get(path)
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("HTTP %d", resp.StatusCode())
	}
	if err := json.Unmarshal(resp.Body(), v); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

// TwelveDataQuotes reads /quote.
type TwelveDataQuotes struct {
	client   *resty.Client
	provider config.Provider
}

func NewTwelveDataQuotes(p config.Provider, timeout time.Duration) *TwelveDataQuotes {
	return &TwelveDataQuotes{client: restclient.New(p.BaseURL, timeout), provider: p}
}

func (q *TwelveDataQuotes) Name() string     { return "Twelve Data" }
func (q *TwelveDataQuotes) Configured() bool { return q.provider.Configured() }

func (q *TwelveDataQuotes) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	var body struct {
		Code          int    `json:"code"`
		Status        string `json:"status"`
		Message       string `json:"message"`
		Symbol        string `json:"symbol"`
		Name          string `json:"name"`
		Currency      string `json:"currency"`
		Close         string `json:"close"`
		Change        string `json:"change"`
		PercentChange string `json:"percent_change"`
	}
	req := q.client.R().SetQueryParams(map[string]string{
		"symbol": symbol,
		"apikey": q.provider.APIKey,
	})
	if err := getJSON(ctx, req, "/quote", &body); err != nil {
		return nil, err
	}

	switch {
	case body.Code == 429:
		return nil, fmt.Errorf("rate limited: %w", errNoData)
	case body.Status == "error":
		return nil, fmt.Errorf("%s: %w", body.Message, errNoData)
	case body.Symbol == "" || body.Close == "":
		return nil, errNoData
	}

	price, err := parseDecimal(body.Close)
	if err != nil || price <= 0 {
		return nil, errNoData
	}
	change, _ := parseDecimal(body.Change)
	pct, _ := parseDecimal(body.PercentChange)

	name := body.Name
	if name == "" {
		name = body.Symbol
	}
	return &models.Quote{
		Symbol:        body.Symbol,
		Name:          name,
		Price:         price,
		Change:        change,
		ChangePercent: pct,
		Currency:      body.Currency,
	}, nil
}

// PolygonQuotes reads the previous-day aggregate; change is close minus open.
type PolygonQuotes struct {
	client   *resty.Client
	provider config.Provider
}

func NewPolygonQuotes(p config.Provider, timeout time.Duration) *PolygonQuotes {
	return &PolygonQuotes{client: restclient.New(p.BaseURL, timeout), provider: p}
}

func (q *PolygonQuotes) Name() string     { return "Polygon.io" }
func (q *PolygonQuotes) Configured() bool { return q.provider.Configured() }

func (q *PolygonQuotes) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	var body struct {
		Status  string `json:"status"`
		Ticker  string `json:"ticker"`
		Results []struct {
			Close float64 `json:"c"`
			Open  float64 `json:"o"`
		} `json:"results"`
	}
	req := q.client.R().SetQueryParams(map[string]string{
		"adjusted": "true",
		"apikey":   q.provider.APIKey,
	})
	path := fmt.Sprintf("/v2/aggs/ticker/%s/prev", url.PathEscape(symbol))
	if err := getJSON(ctx, req, path, &body); err != nil {
		return nil, err
	}
	if body.Status != "OK" || len(body.Results) == 0 {
		return nil, errNoData
	}

	r := body.Results[0]
	if r.Close <= 0 || r.Open <= 0 {
		return nil, errNoData
	}
	change := r.Close - r.Open
	ticker := body.Ticker
	if ticker == "" {
		ticker = symbol
	}
	return &models.Quote{
		Symbol:        ticker,
		Name:          symbol,
		Price:         r.Close,
		Change:        change,
		ChangePercent: change / r.Open * 100,
		Currency:      "USD",
	}, nil
}

// FinnhubQuotes reads /quote.
type FinnhubQuotes struct {
	client   *resty.Client
	provider config.Provider
}

func NewFinnhubQuotes(p config.Provider, timeout time.Duration) *FinnhubQuotes {
	return &FinnhubQuotes{client: restclient.New(p.BaseURL, timeout), provider: p}
}

func (q *FinnhubQuotes) Name() string     { return "Finnhub" }
func (q *FinnhubQuotes) Configured() bool { return q.provider.Configured() }

func (q *FinnhubQuotes) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	var body struct {
		Current       float64 `json:"c"`
		Change        float64 `json:"d"`
		ChangePercent float64 `json:"dp"`
	}
	req := q.client.R().SetQueryParams(map[string]string{
		"symbol": symbol,
		"token":  q.provider.APIKey,
	})
	if err := getJSON(ctx, req, "/quote", &body); err != nil {
		return nil, err
	}
	if body.Current <= 0 {
		return nil, errNoData
	}
	return &models.Quote{
		Symbol:        symbol,
		Name:          symbol,
		Price:         body.Current,
		Change:        body.Change,
		ChangePercent: body.ChangePercent,
	}, nil
}

// AlphaVantageQuotes reads GLOBAL_QUOTE.
type AlphaVantageQuotes struct {
	client   *resty.Client
	provider config.Provider
}

func NewAlphaVantageQuotes(p config.Provider, timeout time.Duration) *AlphaVantageQuotes {
	return &AlphaVantageQuotes{client: restclient.New(p.BaseURL, timeout), provider: p}
}

func (q *AlphaVantageQuotes) Name() string     { return "Alpha Vantage" }
func (q *AlphaVantageQuotes) Configured() bool { return q.provider.Configured() }

func (q *AlphaVantageQuotes) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	var body struct {
		Note         string            `json:"Note"`
		Information  string            `json:"Information"`
		ErrorMessage string            `json:"Error Message"`
		GlobalQuote  map[string]string `json:"Global Quote"`
	}
	req := q.client.R().SetQueryParams(map[string]string{
		"function": "GLOBAL_QUOTE",
		"symbol":   symbol,
		"apikey":   q.provider.APIKey,
	})
	if err := getJSON(ctx, req, "/query", &body); err != nil {
		return nil, err
	}

	switch {
	case strings.Contains(body.Note, "API call frequency"), body.Information != "":
		return nil, fmt.Errorf("rate limited: %w", errNoData)
	case body.ErrorMessage != "":
		return nil, fmt.Errorf("%s: %w", body.ErrorMessage, errNoData)
	}

	gq := body.GlobalQuote
	price, err := parseDecimal(gq["05. price"])
	if err != nil || price <= 0 {
		return nil, errNoData
	}
	change, _ := parseDecimal(gq["09. change"])
	pct, _ := parseDecimal(gq["10. change percent"])

	ticker := gq["01. symbol"]
	if ticker == "" {
		ticker = symbol
	}
	return &models.Quote{
		Symbol:        ticker,
		Name:          ticker,
		Price:         price,
		Change:        change,
		ChangePercent: pct,
	}, nil
}

// YahooQuotes reads the v8 chart endpoint. It needs no key.
type YahooQuotes struct {
	client *resty.Client
}

func NewYahooQuotes(p config.Provider, timeout time.Duration) *YahooQuotes {
	client := restclient.New(p.BaseURL, timeout)
	client.SetHeader("User-Agent", restclient.BrowserUserAgent)
	return &YahooQuotes{client: client}
}

func (q *YahooQuotes) Name() string     { return "Yahoo Finance" }
func (q *YahooQuotes) Configured() bool { return true }

func (q *YahooQuotes) Quote(ctx context.Context, symbol string) (*models.Quote, error) {
	var body struct {
		Chart struct {
			Result []struct {
				Meta struct {
					Symbol             string  `json:"symbol"`
					ShortName          string  `json:"shortName"`
					LongName           string  `json:"longName"`
					Currency           string  `json:"currency"`
					RegularMarketPrice float64 `json:"regularMarketPrice"`
					PreviousClose      float64 `json:"previousClose"`
					ChartPreviousClose float64 `json:"chartPreviousClose"`
				} `json:"meta"`
			} `json:"result"`
		} `json:"chart"`
	}
	req := q.client.R().SetQueryParams(map[string]string{
		"interval": "1d",
		"range":    "1d",
	})
	path := fmt.Sprintf("/v8/finance/chart/%s", url.PathEscape(symbol))
	if err := getJSON(ctx, req, path, &body); err != nil {
		return nil, err
	}
	if len(body.Chart.Result) == 0 {
		return nil, errNoData
	}

	meta := body.Chart.Result[0].Meta
	if meta.RegularMarketPrice <= 0 {
		return nil, errNoData
	}
	prev := meta.PreviousClose
	if prev <= 0 {
		prev = meta.ChartPreviousClose
	}
	var change, pct float64
	if prev > 0 {
		change = meta.RegularMarketPrice - prev
		pct = change / prev * 100
	}

	ticker := meta.Symbol
	if ticker == "" {
		ticker = symbol
	}
	name := meta.ShortName
	if name == "" {
		name = meta.LongName
	}
	if name == "" {
		name = ticker
	}
	return &models.Quote{
		Symbol:        ticker,
		Name:          name,
		Price:         meta.RegularMarketPrice,
		Change:        change,
		ChangePercent: pct,
		Currency:      meta.Currency,
	}, nil
}
