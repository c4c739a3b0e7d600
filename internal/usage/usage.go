// Package usage counts assistant traffic per intent and per provider and
// logs a periodic report.
package usage

import (
	"fmt"
	"sort"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Counters is safe for concurrent use.
type Counters struct {
	mu        sync.Mutex
	intents   map[string]int64
	providers map[string]int64
	failures  map[string]int64
}

func NewCounters() *Counters {
	return &Counters{
		intents:   make(map[string]int64),
		providers: make(map[string]int64),
		failures:  make(map[string]int64),
	}
}

func (c *Counters) RecordIntent(intent string) {
	c.mu.Lock()
	c.intents[intent]++
	c.mu.Unlock()
}

// RecordProvider counts a lookup answered by provider.
func (c *Counters) RecordProvider(provider string) {
	c.mu.Lock()
	c.providers[provider]++
	c.mu.Unlock()
}

// RecordFailure counts a tool lookup that produced no data.
func (c *Counters) RecordFailure(intent string) {
	c.mu.Lock()
	c.failures[intent]++
	c.mu.Unlock()
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Intents   map[string]int64
	Providers map[string]int64
	Failures  map[string]int64
}

func (c *Counters) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Intents:   copyMap(c.intents),
		Providers: copyMap(c.providers),
		Failures:  copyMap(c.failures),
	}
}

func copyMap(m map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Fields renders the snapshot as sorted zap fields.
func (s Snapshot) Fields() []zap.Field {
	var fields []zap.Field
	add := func(prefix string, m map[string]int64) {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fields = append(fields, zap.Int64(prefix+"."+k, m[k]))
		}
	}
	add("intent", s.Intents)
	add("provider", s.Providers)
	add("failure", s.Failures)
	return fields
}

// Reporter logs the counters on a cron schedule.
type Reporter struct {
	cron     *cron.Cron
	counters *Counters
	logger   *zap.Logger
}

func NewReporter(counters *Counters, logger *zap.Logger) *Reporter {
	return &Reporter{cron: cron.New(), counters: counters, logger: logger}
}

// Schedule registers the report under spec, e.g. "@every 1h".
func (r *Reporter) Schedule(spec string) error {
	if _, err := r.cron.AddFunc(spec, r.Report); err != nil {
		return fmt.Errorf("register usage report: %w", err)
	}
	return nil
}

func (r *Reporter) Report() {
	r.logger.Info("usage report", r.counters.Snapshot().Fields()...)
}

func (r *Reporter) Start() { r.cron.Start() }

// Stop waits for a running report to finish.
func (r *Reporter) Stop() {
	<-r.cron.Stop().Done()
}
