package usecase

import (
	"context"
	"fmt"

	"github.com/jibsearch/backend/internal/domain"
	"github.com/jibsearch/backend/internal/observability"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const sampleSize = 5

// CatalogStats summarizes the stored catalog
type CatalogStats struct {
	TotalProducts int64    `json:"total_products"`
	Categories    []string `json:"categories"`
}

// CatalogService serves catalog metadata and operator maintenance
type CatalogService struct {
	store    domain.ProductStore
	importer domain.ProductImporter
	logger   zerolog.Logger
}

// NewCatalogService creates a catalog service. importer may be nil when the
// process only serves reads.
func NewCatalogService(store domain.ProductStore, importer domain.ProductImporter, logger zerolog.Logger) *CatalogService {
	return &CatalogService{
		store:    store,
		importer: importer,
		logger:   observability.Component(logger, "catalog"),
	}
}

// Categories returns the fixed category enumeration
func (s *CatalogService) Categories() []string {
	return append([]string(nil), domain.Categories...)
}

// Suggestions completes a partially typed query
func (s *CatalogService) Suggestions(partial string) []string {
	return Suggest(partial)
}

// Health reports store reachability. It never returns an error.
func (s *CatalogService) Health(ctx context.Context) domain.HealthStatus {
	if s.store == nil {
		return domain.HealthStatus{Status: "unhealthy", Error: "catalog store not configured"}
	}

	count, err := s.store.Count(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("health check failed")
		return domain.HealthStatus{Status: "unhealthy", Error: err.Error()}
	}

	return domain.HealthStatus{
		Status:        "healthy",
		Database:      "connected",
		TotalProducts: count,
		Categories:    len(domain.Categories),
	}
}

// SampleProducts returns the first few stored records as is
func (s *CatalogService) SampleProducts(ctx context.Context) ([]domain.RawProduct, error) {
	products, err := s.store.Find(ctx, domain.Filter{}, sampleSize)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []domain.RawProduct{}
	}
	return products, nil
}

// Stats counts records and lists the categories actually stored
func (s *CatalogService) Stats(ctx context.Context) (*CatalogStats, error) {
	var stats CatalogStats

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.store.Count(gctx)
		if err != nil {
			return err
		}
		stats.TotalProducts = n
		return nil
	})
	g.Go(func() error {
		categories, err := s.store.DistinctCategories(gctx)
		if err != nil {
			return err
		}
		stats.Categories = categories
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Import loads docs into the catalog, clearing it first when drop is set.
// It returns the number of inserted documents and the collection size afterwards.
func (s *CatalogService) Import(ctx context.Context, docs []map[string]interface{}, drop bool) (inserted int, total int64, err error) {
	if s.importer == nil {
		return 0, 0, fmt.Errorf("%w: importer not configured", domain.ErrStoreUnavailable)
	}

	inserted, err = s.importer.ReplaceAll(ctx, docs, drop)
	if err != nil {
		return 0, 0, err
	}
	s.logger.Info().Int("inserted", inserted).Bool("dropped", drop).Msg("catalog import finished")

	total, err = s.store.Count(ctx)
	if err != nil {
		return inserted, 0, err
	}
	return inserted, total, nil
}
