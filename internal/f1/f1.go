// Package f1 finds the next Formula 1 race from Ergast-compatible schedules.
package f1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/RichardoC/askbot/internal/config"
	"github.com/RichardoC/askbot/internal/models"
	"github.com/RichardoC/askbot/internal/restclient"
)

// ErrUnavailable is returned when every schedule source failed and the
// placeholder is disabled.
var ErrUnavailable = errors.New("f1 schedule unavailable")

// Placeholder is served when no schedule source answers.
var Placeholder = models.Race{
	RaceName:    "Next Grand Prix",
	CircuitName: "TBA",
	Date:        "TBA",
	Time:        "TBA",
	Country:     "TBA",
	Locality:    "TBA",
	Placeholder: true,
}

type source struct {
	name   string
	client *resty.Client
}

type Service struct {
	sources     []source
	placeholder bool
	now         func() time.Time
	logger      *zap.Logger
}

type Option func(*Service)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithPlaceholder controls whether total failure yields Placeholder.
func WithPlaceholder(on bool) Option {
	return func(s *Service) { s.placeholder = on }
}

// NewService queries primary first and secondary second.
func NewService(primary, secondary config.Provider, timeout time.Duration, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		sources: []source{
			{name: "Ergast", client: restclient.New(primary.BaseURL, timeout)},
			{name: "Jolpica", client: restclient.New(secondary.BaseURL, timeout)},
		},
		placeholder: true,
		now:         time.Now,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type scheduleResponse struct {
	MRData struct {
		RaceTable struct {
			Season string     `json:"season"`
			Races  []raceJSON `json:"Races"`
		} `json:"RaceTable"`
	} `json:"MRData"`
}

type raceJSON struct {
	RaceName string `json:"raceName"`
	Date     string `json:"date"`
	Time     string `json:"time"`
	Circuit  struct {
		CircuitName string `json:"circuitName"`
		Location    struct {
			Locality string `json:"locality"`
			Country  string `json:"country"`
		} `json:"Location"`
	} `json:"Circuit"`
}

// NextRace returns the first race of the current season that starts after
// now, or the season's last race once it has ended.
func (s *Service) NextRace(ctx context.Context) (*models.Race, error) {
	now := s.now()
	for _, src := range s.sources {
		races, err := s.schedule(ctx, src, now.Year())
		if err != nil {
			s.logger.Warn("f1 schedule failed", zap.String("provider", src.name), zap.Error(err))
			continue
		}
		race := pickNext(races, now)
		return &race, nil
	}

	if s.placeholder {
		s.logger.Warn("all f1 schedule sources failed, serving placeholder")
		race := Placeholder
		return &race, nil
	}
	return nil, ErrUnavailable
}

func (s *Service) schedule(ctx context.Context, src source, year int) ([]raceJSON, error) {
	resp, err := src.client.R().SetContext(ctx).Get(fmt.Sprintf("/%d.json", year))
	if err != nil {
		return nil, err
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode())
	}

	var body scheduleResponse
	if err := json.Unmarshal(resp.Body(), &body); err != nil {
		return nil, fmt.Errorf("decode schedule: %w", err)
	}
	races := body.MRData.RaceTable.Races
	if len(races) == 0 {
		return nil, fmt.Errorf("empty schedule for %d", year)
	}
	return races, nil
}

func pickNext(races []raceJSON, now time.Time) models.Race {
	chosen := races[len(races)-1]
	for _, r := range races {
		start, err := startTime(r)
		if err != nil {
			continue
		}
		if start.After(now) {
			chosen = r
			break
		}
	}

	race := models.Race{
		RaceName:    chosen.RaceName,
		CircuitName: chosen.Circuit.CircuitName,
		Date:        chosen.Date,
		Time:        chosen.Time,
		Country:     chosen.Circuit.Location.Country,
		Locality:    chosen.Circuit.Location.Locality,
	}
	if race.Time == "" {
		race.Time = "TBA"
	}
	return race
}

// startTime treats a missing time as midnight and a zone-less time as UTC.
func startTime(r raceJSON) (time.Time, error) {
	clock := r.Time
	if clock == "" {
		clock = "00:00:00Z"
	}
	if !strings.HasSuffix(clock, "Z") && !strings.ContainsAny(clock, "+-") {
		clock += "Z"
	}
	return time.Parse(time.RFC3339, r.Date+"T"+clock)
}
