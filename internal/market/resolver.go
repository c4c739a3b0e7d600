package market

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

var (
	fillerWords     = regexp.MustCompile(`(?i)\b(?:what'?s|what|is|the|of|stock|price|share)\b|'s\b`)
	multiSpace      = regexp.MustCompile(`\s+`)
	corporateSuffix = []string{" Inc", " Corporation", " Limited", " Ltd", " Company"}
)

// Resolver turns a company name into a ticker symbol using the cache first
// and then each configured searcher.
type Resolver struct {
	searchers []SymbolSearcher
	cache     SymbolCache
	logger    *zap.Logger
}

func NewResolver(cache SymbolCache, logger *zap.Logger, searchers ...SymbolSearcher) *Resolver {
	return &Resolver{searchers: searchers, cache: cache, logger: logger}
}

// Resolve returns the ticker for name. When no searcher accepts any
// variation it returns the uppercased first variation and false.
func (r *Resolver) Resolve(ctx context.Context, name string) (string, bool) {
	key := CacheKey(name)
	if symbol, ok := r.cache.Get(key); ok {
		r.logger.Debug("symbol cache hit", zap.String("name", name), zap.String("symbol", symbol))
		return symbol, true
	}

	variations := Variations(name)
	if len(variations) == 0 {
		return strings.ToUpper(strings.TrimSpace(name)), false
	}

	for _, v := range variations {
		for _, s := range r.searchers {
			if !s.Configured() {
				continue
			}
			if err := ctx.Err(); err != nil {
				return strings.ToUpper(variations[0]), false
			}
			symbol, err := s.Search(ctx, v)
			if err != nil {
				r.logger.Warn("symbol search failed",
					zap.String("provider", s.Name()),
					zap.String("query", v),
					zap.Error(err))
				continue
			}
			if symbol == "" {
				continue
			}
			r.logger.Info("symbol resolved",
				zap.String("provider", s.Name()),
				zap.String("query", v),
				zap.String("symbol", symbol))
			r.cache.Put(key, symbol)
			r.cache.Put(CacheKey(v), symbol)
			return symbol, true
		}
	}

	return strings.ToUpper(variations[0]), false
}

// Variations builds the search queries tried for a company name, in order.
func Variations(name string) []string {
	cleaned := strings.TrimSpace(fillerWords.ReplaceAllString(name, " "))
	if cleaned == "" {
		return nil
	}
	collapsed := multiSpace.ReplaceAllString(cleaned, " ")

	candidates := []string{cleaned, collapsed, strings.ToLower(collapsed)}
	for _, suffix := range corporateSuffix {
		candidates = append(candidates, collapsed+suffix)
	}

	seen := make(map[string]bool, len(candidates))
	out := candidates[:0]
	for _, c := range candidates {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}
