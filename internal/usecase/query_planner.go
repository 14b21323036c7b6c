package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jibsearch/backend/internal/domain"
	"github.com/jibsearch/backend/internal/observability"
	"github.com/rs/zerolog"
)

// FallbackFilterExplanation accompanies the match-all filter when planning fails
const FallbackFilterExplanation = "ไม่สามารถสร้างตัวกรองได้ จะค้นหาทั้งหมด"

var whitespaceRegex = regexp.MustCompile(`\s+`)

// Planner turns a query into a catalog filter. Implementations never fail;
// the weakest plan is the empty filter.
type Planner interface {
	PlanFilter(ctx context.Context, query string) *domain.FilterPlan
}

// QueryPlannerConfig holds configuration for the model-backed planner
type QueryPlannerConfig struct {
	Model       string
	Temperature float64
	MaxTokens   int
	CacheTTL    time.Duration
}

// QueryPlanner asks the language model to write the catalog filter
type QueryPlanner struct {
	model   domain.LanguageModel
	cache   domain.CacheRepository
	cfg     QueryPlannerConfig
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// NewQueryPlanner creates a planner. A nil model always yields the fallback plan.
func NewQueryPlanner(
	model domain.LanguageModel,
	cache domain.CacheRepository,
	cfg QueryPlannerConfig,
	logger zerolog.Logger,
	metrics *observability.Metrics,
) *QueryPlanner {
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.3
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1000
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = time.Hour
	}
	return &QueryPlanner{
		model:   model,
		cache:   cache,
		cfg:     cfg,
		logger:  observability.Component(logger, "planner"),
		metrics: metrics,
	}
}

type modelPlan struct {
	Filter      map[string]interface{} `json:"filter"`
	Explanation string                 `json:"explanation"`
}

// PlanFilter implements Planner
func (p *QueryPlanner) PlanFilter(ctx context.Context, query string) *domain.FilterPlan {
	start := time.Now()
	defer func() { p.metrics.ObserveStage("plan", time.Since(start)) }()

	if p.model == nil {
		p.metrics.RecordFallback("plan", "model_unavailable")
		return fallbackPlan()
	}

	key := cacheKey("plan", query)
	if plan, ok := p.fromCache(ctx, key); ok {
		return plan
	}

	reply, err := p.model.Complete(ctx, domain.CompletionRequest{
		System:      filterPrompt,
		User:        userQueryPrefix + query,
		Model:       p.cfg.Model,
		Temperature: p.cfg.Temperature,
		MaxTokens:   p.cfg.MaxTokens,
		JSON:        true,
	})
	if err != nil {
		p.logger.Warn().Err(err).Str("query", query).Msg("filter planning failed")
		p.metrics.RecordFallback("plan", fallbackReason(err))
		return fallbackPlan()
	}

	var parsed modelPlan
	if err := decodeModelJSON(reply, &parsed); err != nil {
		p.logger.Warn().Err(err).Str("query", query).Msg("unparseable filter plan")
		p.metrics.RecordFallback("plan", fallbackReason(err))
		return fallbackPlan()
	}
	if parsed.Filter == nil {
		p.logger.Warn().Str("query", query).Msg("filter plan has no filter object")
		p.metrics.RecordFallback("plan", "missing_filter")
		return fallbackPlan()
	}

	plan := &domain.FilterPlan{
		Filter:      domain.Filter(parsed.Filter),
		Explanation: parsed.Explanation,
		Source:      domain.SourceModel,
	}
	p.logger.Debug().Str("query", query).Interface("filter", plan.Filter).Msg("filter planned")
	p.toCache(ctx, key, plan)
	return plan
}

func fallbackPlan() *domain.FilterPlan {
	return &domain.FilterPlan{
		Filter:      domain.Filter{},
		Explanation: FallbackFilterExplanation,
		Source:      domain.SourceFallback,
	}
}

func (p *QueryPlanner) fromCache(ctx context.Context, key string) (*domain.FilterPlan, bool) {
	if p.cache == nil {
		return nil, false
	}
	data, err := p.cache.Get(ctx, key)
	if err != nil {
		return nil, false
	}
	var plan domain.FilterPlan
	if err := json.Unmarshal(data, &plan); err != nil || plan.Filter == nil {
		return nil, false
	}
	plan.Source = domain.SourceCache
	return &plan, true
}

func (p *QueryPlanner) toCache(ctx context.Context, key string, plan *domain.FilterPlan) {
	if p.cache == nil {
		return
	}
	data, err := json.Marshal(plan)
	if err != nil {
		return
	}
	if err := p.cache.Set(ctx, key, data, p.cfg.CacheTTL); err != nil {
		p.logger.Debug().Err(err).Str("key", key).Msg("cache write failed")
	}
}

// cacheKey builds "<prefix>:<normalized query>". Normalization lowercases and
// collapses whitespace; Thai text is kept as is.
func cacheKey(prefix, query string) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	normalized = whitespaceRegex.ReplaceAllString(normalized, " ")
	return fmt.Sprintf("%s:%s", prefix, normalized)
}
