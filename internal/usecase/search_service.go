package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jibsearch/backend/internal/domain"
	"github.com/jibsearch/backend/internal/observability"
	"github.com/rs/zerolog"
)

// NoResultsExplanation is returned when retrieval finds nothing
const NoResultsExplanation = "ไม่พบสินค้าที่ตรงกับความต้องการของคุณ กรุณาลองใช้คำค้นหาอื่น"

// SearchServiceConfig holds configuration for the search pipeline
type SearchServiceConfig struct {
	Mode          string
	RetrieveLimit int
	DisplayLimit  int
}

// SearchService runs plan, retrieve, rank, merge and coerce for one query
type SearchService struct {
	planner Planner
	store   domain.ProductStore
	ranker  Ranker
	cfg     SearchServiceConfig
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// NewSearchService creates a search service with dependencies
func NewSearchService(
	planner Planner,
	store domain.ProductStore,
	ranker Ranker,
	cfg SearchServiceConfig,
	logger zerolog.Logger,
	metrics *observability.Metrics,
) *SearchService {
	if cfg.RetrieveLimit <= 0 {
		cfg.RetrieveLimit = 50
	}
	if cfg.DisplayLimit <= 0 {
		cfg.DisplayLimit = 20
	}
	return &SearchService{
		planner: planner,
		store:   store,
		ranker:  ranker,
		cfg:     cfg,
		logger:  observability.Component(logger, "search"),
		metrics: metrics,
	}
}

// Search answers a shopping query. Planner, store, ranker and record errors
// degrade the response; only a done ctx is returned as an error.
func (s *SearchService) Search(ctx context.Context, query string) (*domain.SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrInvalidRequest
	}

	plan := s.planner.PlanFilter(ctx, query)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.logger.Info().
		Str("query", query).
		Str("plan_source", plan.Source).
		Interface("filter", plan.Filter).
		Msg("filter planned")

	products := s.retrieve(ctx, plan.Filter)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.metrics.RecordSearch(s.cfg.Mode, len(products))

	if len(products) == 0 {
		return &domain.SearchResponse{
			Products:        []domain.Product{},
			Explanation:     NoResultsExplanation,
			TotalFound:      0,
			Recommendations: []domain.Recommendation{},
		}, nil
	}

	ranking, err := s.ranker.Rank(ctx, query, products)
	if err != nil {
		return nil, err
	}

	display := MergeResults(products, ranking, s.cfg.DisplayLimit)
	out := s.coerce(display)

	recs := ranking.Recommendations
	if recs == nil {
		recs = []domain.Recommendation{}
	}

	s.logger.Info().
		Str("query", query).
		Int("retrieved", len(products)).
		Int("displayed", len(out)).
		Str("rank_source", ranking.Source).
		Msg("search completed")

	return &domain.SearchResponse{
		Products:        out,
		Explanation:     ranking.Explanation,
		TotalFound:      len(products),
		Recommendations: recs,
	}, nil
}

// Filter runs the planning stage only
func (s *SearchService) Filter(ctx context.Context, query string) (*domain.FilterResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, domain.ErrInvalidRequest
	}

	plan := s.planner.PlanFilter(ctx, query)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	filter := plan.Filter
	if filter == nil {
		filter = domain.Filter{}
	}
	return &domain.FilterResponse{Filter: filter, Explanation: plan.Explanation}, nil
}

// Plan exposes the full plan, including the analysis in heuristic mode
func (s *SearchService) Plan(ctx context.Context, query string) *domain.FilterPlan {
	return s.planner.PlanFilter(ctx, strings.TrimSpace(query))
}

func (s *SearchService) retrieve(ctx context.Context, filter domain.Filter) []domain.RawProduct {
	if filter == nil {
		filter = domain.Filter{}
	}

	start := time.Now()
	products, err := s.store.Find(ctx, filter, s.cfg.RetrieveLimit)
	s.metrics.ObserveStage("retrieve", time.Since(start))
	if err != nil {
		s.logger.Warn().Err(err).Msg("retrieval failed, treating as no matches")
		s.metrics.RecordFallback("retrieve", fallbackReason(err))
		return nil
	}
	if len(products) > s.cfg.RetrieveLimit {
		products = products[:s.cfg.RetrieveLimit]
	}
	return products
}

func (s *SearchService) coerce(records []domain.RawProduct) []domain.Product {
	out := make([]domain.Product, 0, len(records))
	for _, r := range records {
		p, err := domain.CoerceProduct(r)
		if err != nil {
			s.logger.Warn().Err(err).Str("id", r.ID()).Msg("dropping invalid record")
			s.metrics.RecordFallback("coerce", "invalid_record")
			continue
		}
		out = append(out, p)
	}
	return out
}

// MergeResults lists recommended records in ranking order, then the remaining
// records, up to limit. Remaining records follow retrieval order unless the
// ranking names its own candidate order.
func MergeResults(products []domain.RawProduct, ranking *domain.RankingResult, limit int) []domain.RawProduct {
	byID := make(map[string]domain.RawProduct, len(products))
	for _, p := range products {
		if id := p.ID(); id != "" {
			if _, dup := byID[id]; !dup {
				byID[id] = p
			}
		}
	}

	merged := make([]domain.RawProduct, 0, limit)
	used := make(map[string]bool, limit)

	add := func(p domain.RawProduct) bool {
		if len(merged) >= limit {
			return false
		}
		merged = append(merged, p)
		return true
	}

	if ranking != nil {
		for _, rec := range ranking.Recommendations {
			p, ok := byID[rec.ProductID]
			if !ok || used[rec.ProductID] {
				continue
			}
			used[rec.ProductID] = true
			if !add(p) {
				return merged
			}
		}
	}

	if ranking != nil && ranking.Candidates != nil {
		for _, id := range ranking.Candidates {
			p, ok := byID[id]
			if !ok || used[id] {
				continue
			}
			used[id] = true
			if !add(p) {
				return merged
			}
		}
		return merged
	}

	for _, p := range products {
		id := p.ID()
		if id != "" {
			if used[id] {
				continue
			}
			used[id] = true
		}
		if !add(p) {
			break
		}
	}
	return merged
}

// String describes the configured pipeline
func (s *SearchService) String() string {
	return fmt.Sprintf("search(mode=%s retrieve=%d display=%d)", s.cfg.Mode, s.cfg.RetrieveLimit, s.cfg.DisplayLimit)
}
