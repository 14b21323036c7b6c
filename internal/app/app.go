// Package app assembles the search pipeline from configuration. The server and
// the operator CLI share it.
package app

import (
	"context"
	"errors"
	"time"

	"github.com/jibsearch/backend/config"
	"github.com/jibsearch/backend/internal/domain"
	"github.com/jibsearch/backend/internal/infrastructure/cache"
	"github.com/jibsearch/backend/internal/infrastructure/catalog"
	"github.com/jibsearch/backend/internal/infrastructure/llm"
	"github.com/jibsearch/backend/internal/observability"
	"github.com/jibsearch/backend/internal/usecase"
	"github.com/rs/zerolog"
)

const cacheKeyPrefix = "jibsearch:"

// App holds the wired components
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Metrics *observability.Metrics

	Store    *catalog.Store
	Cache    domain.CacheRepository
	Model    domain.LanguageModel // nil when no API key is configured
	Analyzer usecase.Analyzer
	Search   *usecase.SearchService
	Catalog  *usecase.CatalogService

	closers []func(context.Context) error
}

// New builds every component. Only an unusable catalog configuration is an
// error; a missing model key or unreachable Redis degrades instead.
func New(ctx context.Context, cfg *config.Config, logger zerolog.Logger, metrics *observability.Metrics) (*App, error) {
	a := &App{Config: cfg, Logger: logger, Metrics: metrics}

	store, err := catalog.NewStore(ctx, catalog.Config{
		URI:        cfg.Mongo.URI,
		Database:   cfg.Mongo.Database,
		Collection: cfg.Mongo.Collection,
		Timeout:    cfg.Mongo.Timeout,
	})
	if err != nil {
		return nil, err
	}
	a.Store = store
	a.closers = append(a.closers, store.Close)

	a.Cache = a.buildCache(ctx)
	a.Model = a.buildModel()

	if a.Model != nil {
		a.Analyzer = usecase.NewModelAnalyzer(a.Model, a.Cache, usecase.ModelAnalyzerConfig{
			Model:    cfg.LLM.FilterModel,
			CacheTTL: cfg.Cache.TTL,
		}, logger, metrics)
	} else {
		a.Analyzer = usecase.NewHeuristicAnalyzer()
	}

	var (
		planner usecase.Planner
		ranker  usecase.Ranker
	)
	switch cfg.Search.Mode {
	case config.ModeHeuristic:
		planner = usecase.NewAnalysisPlanner(a.Analyzer, metrics)
		ranker = usecase.NewHeuristicRanker(a.Analyzer, cfg.Search.TopK, logger, metrics)
	default:
		planner = usecase.NewQueryPlanner(a.Model, a.Cache, usecase.QueryPlannerConfig{
			Model:    cfg.LLM.FilterModel,
			CacheTTL: cfg.Cache.TTL,
		}, logger, metrics)
		ranker = usecase.NewResultRanker(a.Model, usecase.ResultRankerConfig{
			Model:      cfg.LLM.RankModel,
			Candidates: cfg.Search.RankCandidates,
			TopK:       cfg.Search.TopK,
		}, logger, metrics)
	}

	a.Search = usecase.NewSearchService(planner, store, ranker, usecase.SearchServiceConfig{
		Mode:          cfg.Search.Mode,
		RetrieveLimit: cfg.Search.RetrieveLimit,
		DisplayLimit:  cfg.Search.DisplayLimit,
	}, logger, metrics)
	a.Catalog = usecase.NewCatalogService(store, store, logger)

	return a, nil
}

func (a *App) buildCache(ctx context.Context) domain.CacheRepository {
	if a.Config.Cache.Type == "redis" {
		redisCache, err := cache.NewRedisCache(ctx, a.Config.Cache.RedisURL, cacheKeyPrefix)
		if err == nil {
			a.closers = append(a.closers, func(context.Context) error { return redisCache.Close() })
			return redisCache
		}
		a.Logger.Warn().Err(err).Msg("redis unavailable, using in-memory cache")
	}

	memoryCache := cache.NewMemoryCache(time.Minute)
	a.closers = append(a.closers, func(context.Context) error { return memoryCache.Close() })
	return memoryCache
}

func (a *App) buildModel() domain.LanguageModel {
	if !a.Config.ModelConfigured() {
		a.Logger.Warn().Msg("no language model API key configured, running degraded")
		return nil
	}

	client, err := llm.NewClient(llm.Config{
		APIKey:            a.Config.LLM.APIKey,
		BaseURL:           a.Config.LLM.BaseURL,
		DefaultModel:      a.Config.LLM.FilterModel,
		Timeout:           a.Config.LLM.Timeout,
		MaxRetries:        a.Config.LLM.MaxRetries,
		RequestsPerSecond: a.Config.LLM.RequestsPerSecond,
		Burst:             a.Config.LLM.Burst,
	}, a.Logger, a.Metrics)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("language model client unavailable, running degraded")
		return nil
	}
	return client
}

// Close releases the store and cache
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
