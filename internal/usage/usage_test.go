package usage

import (
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestCountersConcurrent(t *testing.T) {
	c := NewCounters()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RecordIntent("stock")
			c.RecordProvider("Yahoo Finance")
		}()
	}
	wg.Wait()
	c.RecordFailure("weather")

	snap := c.Snapshot()
	if snap.Intents["stock"] != 50 || snap.Providers["Yahoo Finance"] != 50 || snap.Failures["weather"] != 1 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	snap.Intents["stock"] = 0
	if c.Snapshot().Intents["stock"] != 50 {
		t.Fatal("snapshot shares state with counters")
	}
}

func TestReporterLogsCounters(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	c := NewCounters()
	c.RecordIntent("weather")
	c.RecordIntent("weather")
	c.RecordProvider("OpenWeather")

	r := NewReporter(c, zap.New(core))
	if err := r.Schedule("@every 1h"); err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if err := r.Schedule("not a cron spec"); err == nil {
		t.Fatal("expected error for bad spec")
	}
	r.Report()

	entries := logs.FilterMessage("usage report").All()
	if len(entries) != 1 {
		t.Fatalf("got %d report entries, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["intent.weather"] != int64(2) || fields["provider.OpenWeather"] != int64(1) {
		t.Fatalf("unexpected fields %v", fields)
	}
}
