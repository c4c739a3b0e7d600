package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Provider holds the key and endpoint of one third-party API.
type Provider struct {
	APIKey       string   `yaml:"api_key"`
	BaseURL      string   `yaml:"base_url"`
	Placeholders []string `yaml:"placeholders"`
}

// Configured reports whether the key is set and is not a known placeholder.
func (p Provider) Configured() bool {
	return Configured(p.APIKey, p.Placeholders)
}

// Configured reports whether key is non-empty and none of placeholders.
func Configured(key string, placeholders []string) bool {
	key = strings.TrimSpace(key)
	if key == "" {
		return false
	}
	for _, p := range placeholders {
		if key == p {
			return false
		}
	}
	return true
}

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Database struct {
		Driver string `yaml:"driver"` // "sqlite3" (cgo) or "sqlite" (pure Go)
		Path   string `yaml:"path"`
	} `yaml:"database"`
	Log struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
	} `yaml:"log"`
	Auth struct {
		UserHeader string            `yaml:"user_header"`
		Tokens     map[string]string `yaml:"tokens"` // bearer token -> user id
	} `yaml:"auth"`
	LLM struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
		Model   string `yaml:"model"`
	} `yaml:"llm"`
	Providers struct {
		Timeout      time.Duration `yaml:"timeout"`
		OpenWeather  Provider      `yaml:"openweather"`
		TwelveData   Provider      `yaml:"twelve_data"`
		Polygon      Provider      `yaml:"polygon"`
		Finnhub      Provider      `yaml:"finnhub"`
		AlphaVantage Provider      `yaml:"alpha_vantage"`
		Yahoo        Provider      `yaml:"yahoo"`
		Ergast       Provider      `yaml:"ergast"`
		Jolpica      Provider      `yaml:"jolpica"`
	} `yaml:"providers"`
	F1 struct {
		// PlaceholderOnFailure returns a static race when both schedule
		// providers fail instead of an "unavailable" message.
		PlaceholderOnFailure *bool `yaml:"placeholder_on_failure"`
	} `yaml:"f1"`
	Usage struct {
		ReportCron string `yaml:"report_cron"`
	} `yaml:"usage"`
}

// Load reads config from a YAML file, then .env, then environment overrides,
// then fills defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	_ = godotenv.Load()
	cfg.loadFromEnv()
	cfg.applyDefaults()

	return cfg, nil
}

func (c *Config) loadFromEnv() {
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		c.Database.Driver = v
	}
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LOG_DEVELOPMENT"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Log.Development = b
		}
	}
	if v := os.Getenv("AUTH_USER_HEADER"); v != "" {
		c.Auth.UserHeader = v
	}

	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}

	if v := os.Getenv("PROVIDER_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Providers.Timeout = d
		}
	}
	if v := os.Getenv("OPENWEATHER_API_KEY"); v != "" {
		c.Providers.OpenWeather.APIKey = v
	}
	if v := os.Getenv("TWELVE_DATA_API_KEY"); v != "" {
		c.Providers.TwelveData.APIKey = v
	}
	if v := os.Getenv("POLYGON_API_KEY"); v != "" {
		c.Providers.Polygon.APIKey = v
	}
	if v := os.Getenv("FINNHUB_API_KEY"); v != "" {
		c.Providers.Finnhub.APIKey = v
	}
	if v := os.Getenv("ALPHA_VANTAGE_API_KEY"); v != "" {
		c.Providers.AlphaVantage.APIKey = v
	}

	if v := os.Getenv("F1_PLACEHOLDER_ON_FAILURE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.F1.PlaceholderOnFailure = &b
		}
	}
	if v := os.Getenv("USAGE_REPORT_CRON"); v != "" {
		c.Usage.ReportCron = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8100"
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite3"
	}
	if c.Database.Path == "" {
		c.Database.Path = "askbot.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "llama3.1:8b"
	}
	if c.Providers.Timeout == 0 {
		c.Providers.Timeout = 10 * time.Second
	}

	p := &c.Providers
	defaultProvider(&p.OpenWeather, "https://api.openweathermap.org", "your_openweather_api_key_here")
	defaultProvider(&p.TwelveData, "https://api.twelvedata.com", "your_twelve_data_api_key_here")
	defaultProvider(&p.Polygon, "https://api.polygon.io", "your_polygon_api_key_here")
	defaultProvider(&p.Finnhub, "https://finnhub.io/api/v1", "your_finnhub_api_key_here")
	defaultProvider(&p.AlphaVantage, "https://www.alphavantage.co",
		"your_actual_alpha_vantage_api_key_here", "your-alpha-vantage-api-key")
	defaultProvider(&p.Yahoo, "https://query1.finance.yahoo.com")
	defaultProvider(&p.Ergast, "https://ergast.com/api/f1")
	defaultProvider(&p.Jolpica, "https://api.jolpi.ca/ergast/f1")

	if c.F1.PlaceholderOnFailure == nil {
		on := true
		c.F1.PlaceholderOnFailure = &on
	}
	if c.Usage.ReportCron == "" {
		c.Usage.ReportCron = "@every 1h"
	}
}

func defaultProvider(p *Provider, baseURL string, placeholders ...string) {
	if p.BaseURL == "" {
		p.BaseURL = baseURL
	}
	if len(p.Placeholders) == 0 {
		p.Placeholders = placeholders
	}
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite3", "sqlite":
	default:
		return fmt.Errorf("database.driver must be sqlite3 or sqlite, got %q", c.Database.Driver)
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.Auth.UserHeader == "" && len(c.Auth.Tokens) == 0 {
		return fmt.Errorf("auth.user_header or auth.tokens is required")
	}
	if c.Providers.Timeout < 0 {
		return fmt.Errorf("providers.timeout must not be negative")
	}
	return nil
}

// LLMConfigured reports whether chat titles can be generated by an LLM.
func (c *Config) LLMConfigured() bool {
	return c.LLM.BaseURL != ""
}
