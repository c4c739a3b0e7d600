// Package weather fetches current conditions from OpenWeather.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/RichardoC/askbot/internal/config"
	"github.com/RichardoC/askbot/internal/models"
	"github.com/RichardoC/askbot/internal/restclient"
)

// ErrNotConfigured is returned when no OpenWeather key is set.
var ErrNotConfigured = errors.New("openweather api key not configured")

type Client struct {
	client   *resty.Client
	provider config.Provider
}

func NewClient(p config.Provider, timeout time.Duration) *Client {
	return &Client{client: restclient.New(p.BaseURL, timeout), provider: p}
}

type currentResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
		Pressure int     `json:"pressure"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Visibility int `json:"visibility"` // metres
}

// Current returns the conditions for location in metric units.
func (c *Client) Current(ctx context.Context, location string) (*models.Weather, error) {
	if !c.provider.Configured() {
		return nil, ErrNotConfigured
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":     location,
			"appid": c.provider.APIKey,
			"units": "metric",
		}).
		Get("/data/2.5/weather")
	if err != nil {
		return nil, fmt.Errorf("weather request: %w", err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("weather for %q: HTTP %d", location, resp.StatusCode())
	}

	var body currentResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("decode weather: %w", err)
	}

	w := &models.Weather{
		Location:    body.Name,
		Temperature: roundHalfUp(body.Main.Temp),
		Humidity:    body.Main.Humidity,
		WindSpeed:   body.Wind.Speed,
		Pressure:    body.Main.Pressure,
		Visibility:  roundHalfUp(float64(body.Visibility) / 1000),
	}
	if w.Location == "" {
		w.Location = location
	}
	if len(body.Weather) > 0 {
		w.Description = body.Weather[0].Description
	}
	return w, nil
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
