package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jibsearch/backend/internal/domain"
	"github.com/jibsearch/backend/internal/observability"
	"github.com/rs/zerolog"
)

// ModelAnalyzerConfig holds configuration for the model-backed analyzer
type ModelAnalyzerConfig struct {
	Model       string
	Temperature float64
	CacheTTL    time.Duration
}

// ModelAnalyzer asks the language model for a query analysis and fills the
// gaps with the heuristic reading. Any model failure yields the heuristic
// analysis unchanged.
type ModelAnalyzer struct {
	model   domain.LanguageModel
	cache   domain.CacheRepository
	cfg     ModelAnalyzerConfig
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// NewModelAnalyzer creates a model-backed analyzer. model and cache may be nil.
func NewModelAnalyzer(
	model domain.LanguageModel,
	cache domain.CacheRepository,
	cfg ModelAnalyzerConfig,
	logger zerolog.Logger,
	metrics *observability.Metrics,
) *ModelAnalyzer {
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.3
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = time.Hour
	}
	return &ModelAnalyzer{
		model:   model,
		cache:   cache,
		cfg:     cfg,
		logger:  observability.Component(logger, "analyzer"),
		metrics: metrics,
	}
}

// modelAnalysis accepts numbers encoded as floats or strings
type modelAnalysis struct {
	Category         *string     `json:"category"`
	PriceMin         interface{} `json:"price_min"`
	PriceMax         interface{} `json:"price_max"`
	Keywords         []string    `json:"keywords"`
	Brands           []string    `json:"brands"`
	PerformanceLevel *string     `json:"performance_level"`
}

// Analyze implements Analyzer
func (a *ModelAnalyzer) Analyze(ctx context.Context, query string) domain.QueryAnalysis {
	if a.model == nil {
		a.metrics.RecordFallback("analyze", "model_unavailable")
		return AnalyzeQuery(query)
	}

	key := cacheKey("analysis", query)
	if cached, ok := a.fromCache(ctx, key); ok {
		return cached
	}

	start := time.Now()
	reply, err := a.model.Complete(ctx, domain.CompletionRequest{
		System:      analysisPrompt,
		User:        fmt.Sprintf("Query: %q", query),
		Model:       a.cfg.Model,
		Temperature: a.cfg.Temperature,
		JSON:        true,
	})
	a.metrics.ObserveStage("analyze", time.Since(start))
	if err != nil {
		a.logger.Warn().Err(err).Str("query", query).Msg("model analysis failed, using heuristic")
		a.metrics.RecordFallback("analyze", fallbackReason(err))
		return AnalyzeQuery(query)
	}

	var raw modelAnalysis
	if err := decodeModelJSON(reply, &raw); err != nil {
		a.logger.Warn().Err(err).Str("query", query).Msg("unparseable model analysis, using heuristic")
		a.metrics.RecordFallback("analyze", fallbackReason(err))
		return AnalyzeQuery(query)
	}

	analysis := Backfill(query, raw.toDomain())
	a.toCache(ctx, key, analysis)
	return analysis
}

func (m modelAnalysis) toDomain() domain.QueryAnalysis {
	out := domain.QueryAnalysis{
		Category:         m.Category,
		Keywords:         cleanStrings(m.Keywords),
		Brands:           cleanStrings(m.Brands),
		PerformanceLevel: m.PerformanceLevel,
	}
	if n, ok := domain.AsInt(m.PriceMin); ok {
		out.PriceMin = intPtr(n)
	}
	if n, ok := domain.AsInt(m.PriceMax); ok {
		out.PriceMax = intPtr(n)
	}
	return out
}

func cleanStrings(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (a *ModelAnalyzer) fromCache(ctx context.Context, key string) (domain.QueryAnalysis, bool) {
	if a.cache == nil {
		return domain.QueryAnalysis{}, false
	}
	data, err := a.cache.Get(ctx, key)
	if err != nil {
		return domain.QueryAnalysis{}, false
	}
	var analysis domain.QueryAnalysis
	if err := json.Unmarshal(data, &analysis); err != nil {
		return domain.QueryAnalysis{}, false
	}
	normalizeAnalysis(&analysis)
	return analysis, true
}

func (a *ModelAnalyzer) toCache(ctx context.Context, key string, analysis domain.QueryAnalysis) {
	if a.cache == nil {
		return
	}
	data, err := json.Marshal(analysis)
	if err != nil {
		return
	}
	if err := a.cache.Set(ctx, key, data, a.cfg.CacheTTL); err != nil {
		a.logger.Debug().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// fallbackReason labels a degradation for the fallback counter
func fallbackReason(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, domain.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, domain.ErrMalformedModelOutput):
		return "malformed_output"
	case errors.Is(err, domain.ErrModelUnavailable):
		return "model_unavailable"
	case errors.Is(err, domain.ErrStoreUnavailable):
		return "store_unavailable"
	default:
		return "error"
	}
}
