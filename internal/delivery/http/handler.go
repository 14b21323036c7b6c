package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jibsearch/backend/internal/domain"
	"github.com/jibsearch/backend/internal/observability"
	"github.com/rs/zerolog"
)

const (
	serviceBanner = "JIB Computer Shop AI Search API"
	apiVersion    = "2.0"
)

// Thai error details returned to shoppers
const (
	detailEmptyQuery    = "กรุณาระบุคำค้นหา"
	detailSearchFailed  = "เกิดข้อผิดพลาดในการค้นหา: "
	detailFilterFailed  = "เกิดข้อผิดพลาดในการสร้างตัวกรอง: "
	detailNotConfigured = "ระบบค้นหายังไม่พร้อมใช้งาน"
	detailRateLimited   = "มีการร้องขอมากเกินไป กรุณาลองใหม่อีกครั้ง"
)

// SearchUsecase is the search pipeline as seen by the HTTP layer
type SearchUsecase interface {
	Search(ctx context.Context, query string) (*domain.SearchResponse, error)
	Filter(ctx context.Context, query string) (*domain.FilterResponse, error)
}

// CatalogUsecase serves catalog metadata
type CatalogUsecase interface {
	Health(ctx context.Context) domain.HealthStatus
	Categories() []string
	Suggestions(partial string) []string
	SampleProducts(ctx context.Context) ([]domain.RawProduct, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	search  SearchUsecase
	catalog CatalogUsecase
	logger  zerolog.Logger
}

// NewHandler creates a new HTTP handler. Either usecase may be nil; the
// endpoints that need it then answer 503.
func NewHandler(search SearchUsecase, catalog CatalogUsecase, logger zerolog.Logger) *Handler {
	return &Handler{
		search:  search,
		catalog: catalog,
		logger:  observability.Component(logger, "http"),
	}
}

// Root returns the service banner
func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": serviceBanner,
		"version": apiVersion,
	})
}

// HealthCheck reports catalog reachability. It always answers 200.
func (h *Handler) HealthCheck(c *gin.Context) {
	if h.catalog == nil {
		c.JSON(http.StatusOK, domain.HealthStatus{Status: "unhealthy", Error: "catalog not configured"})
		return
	}
	c.JSON(http.StatusOK, h.catalog.Health(c.Request.Context()))
}

// Categories lists the fixed category enumeration
func (h *Handler) Categories(c *gin.Context) {
	categories := domain.Categories
	if h.catalog != nil {
		categories = h.catalog.Categories()
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// Suggestions completes a partially typed query given as ?partial_query=
func (h *Handler) Suggestions(c *gin.Context) {
	partial, ok := c.GetQuery("partial_query")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"detail": detailEmptyQuery})
		return
	}
	if h.catalog == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": detailNotConfigured})
		return
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": h.catalog.Suggestions(partial)})
}

// Search handles natural-language product search
func (h *Handler) Search(c *gin.Context) {
	if h.search == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": detailNotConfigured})
		return
	}

	var req domain.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": detailEmptyQuery})
		return
	}

	resp, err := h.search.Search(c.Request.Context(), req.Query)
	if err != nil {
		h.fail(c, err, detailSearchFailed)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Filter returns the planned catalog filter without retrieving records
func (h *Handler) Filter(c *gin.Context) {
	if h.search == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": detailNotConfigured})
		return
	}

	var req domain.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": detailEmptyQuery})
		return
	}

	resp, err := h.search.Filter(c.Request.Context(), req.Query)
	if err != nil {
		h.fail(c, err, detailFilterFailed)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SampleProducts returns the first few stored records unchanged
func (h *Handler) SampleProducts(c *gin.Context) {
	if h.catalog == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"detail": detailNotConfigured})
		return
	}

	products, err := h.catalog.SampleProducts(c.Request.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("sample products failed")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *Handler) fail(c *gin.Context, err error, prefix string) {
	if errors.Is(err, domain.ErrInvalidRequest) {
		c.JSON(http.StatusBadRequest, gin.H{"detail": detailEmptyQuery})
		return
	}
	h.logger.Error().Err(err).Str("request_id", RequestID(c)).Msg("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"detail": prefix + err.Error()})
}
