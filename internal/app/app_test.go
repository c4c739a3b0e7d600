package app

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/RichardoC/askbot/internal/config"
	"github.com/RichardoC/askbot/internal/intent"
)

func TestNewLogger(t *testing.T) {
	cfg := &config.Config{}
	cfg.Log.Level = "debug"
	logger, err := NewLogger(cfg)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if !logger.Core().Enabled(zapcore.DebugLevel) {
		t.Error("debug level not enabled")
	}

	cfg.Log.Level = "loud"
	if _, err := NewLogger(cfg); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestNewAssistantWithoutKeys(t *testing.T) {
	t.Setenv("OPENWEATHER_API_KEY", "")
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Providers.OpenWeather.APIKey = ""

	reply := NewAssistant(cfg, nil, zap.NewNop()).Reply(context.Background(), "What's the weather in Paris?")
	if reply.Intent != intent.Weather {
		t.Fatalf("intent = %q", reply.Intent)
	}
	if !strings.HasPrefix(reply.Content, "Failed to get weather for Paris") {
		t.Fatalf("content = %q", reply.Content)
	}
}
