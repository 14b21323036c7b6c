package usecase

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jibsearch/backend/internal/domain"
	"github.com/jibsearch/backend/internal/observability"
	"github.com/rs/zerolog"
)

// Ranker messages
const (
	NoCandidatesExplanation   = "ไม่พบสินค้าที่ตรงกับความต้องการ"
	DefaultRankingExplanation = "พบสินค้าที่ตรงกับความต้องการ"
	degradedExplanationFormat = "พบสินค้าที่เหมาะสม %d รายการ จัดเรียงตามราคาและความนิยม"
)

const (
	defaultRankCandidates = 20
	defaultTopK           = 5
	degradedBaseScore     = 80.0
	degradedScoreStep     = 10.0
)

var (
	degradedReasons = []string{"ราคาเหมาะสม", "สเปคดี"}
	degradedPros    = []string{"ราคาคุ้มค่า"}
)

// Ranker orders a candidate set for display. It only fails when ctx is done.
type Ranker interface {
	Rank(ctx context.Context, query string, products []domain.RawProduct) (*domain.RankingResult, error)
}

// ResultRankerConfig holds configuration for the model-backed ranker
type ResultRankerConfig struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Candidates  int
	TopK        int
}

// ResultRanker asks the language model to pick and justify the best candidates
type ResultRanker struct {
	model   domain.LanguageModel
	cfg     ResultRankerConfig
	logger  zerolog.Logger
	metrics *observability.Metrics
}

// NewResultRanker creates a ranker. A nil model always yields the degraded ranking.
func NewResultRanker(
	model domain.LanguageModel,
	cfg ResultRankerConfig,
	logger zerolog.Logger,
	metrics *observability.Metrics,
) *ResultRanker {
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.4
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2000
	}
	if cfg.Candidates <= 0 {
		cfg.Candidates = defaultRankCandidates
	}
	if cfg.TopK <= 0 {
		cfg.TopK = defaultTopK
	}
	return &ResultRanker{
		model:   model,
		cfg:     cfg,
		logger:  observability.Component(logger, "ranker"),
		metrics: metrics,
	}
}

type modelRanking struct {
	Recommendations []modelRecommendation `json:"recommendations"`
	Explanation     string                `json:"explanation"`
}

type modelRecommendation struct {
	ProductID interface{} `json:"product_id"`
	Score     interface{} `json:"score"`
	Reasons   []string    `json:"reasons"`
	Pros      []string    `json:"pros"`
	Cons      []string    `json:"cons"`
}

// Rank implements Ranker
func (r *ResultRanker) Rank(ctx context.Context, query string, products []domain.RawProduct) (*domain.RankingResult, error) {
	if len(products) == 0 {
		return emptyRanking(), nil
	}

	candidates := products
	if len(candidates) > r.cfg.Candidates {
		candidates = candidates[:r.cfg.Candidates]
	}

	if r.model == nil {
		r.metrics.RecordFallback("rank", "model_unavailable")
		return r.degraded(candidates), nil
	}

	start := time.Now()
	result, err := r.rankWithModel(ctx, query, candidates)
	r.metrics.ObserveStage("rank", time.Since(start))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		r.logger.Warn().Err(err).Str("query", query).Int("candidates", len(candidates)).Msg("model ranking failed, using input order")
		r.metrics.RecordFallback("rank", fallbackReason(err))
		return r.degraded(candidates), nil
	}
	return result, nil
}

func (r *ResultRanker) rankWithModel(ctx context.Context, query string, candidates []domain.RawProduct) (*domain.RankingResult, error) {
	user, err := buildRankUserMessage(query, candidates)
	if err != nil {
		return nil, err
	}

	reply, err := r.model.Complete(ctx, domain.CompletionRequest{
		System:      rankPrompt,
		User:        user,
		Model:       r.cfg.Model,
		Temperature: r.cfg.Temperature,
		MaxTokens:   r.cfg.MaxTokens,
		JSON:        true,
	})
	if err != nil {
		return nil, err
	}

	var parsed modelRanking
	if err := decodeModelJSON(reply, &parsed); err != nil {
		return nil, err
	}

	recs := normalizeRecommendations(parsed.Recommendations, candidates, r.cfg.TopK)
	if len(recs) == 0 {
		return nil, fmt.Errorf("%w: no usable recommendations", domain.ErrMalformedModelOutput)
	}

	explanation := parsed.Explanation
	if explanation == "" {
		explanation = DefaultRankingExplanation
	}

	return &domain.RankingResult{
		Recommendations: recs,
		Explanation:     explanation,
		TotalAnalyzed:   len(candidates),
		Source:          domain.SourceModel,
	}, nil
}

// normalizeRecommendations keeps entries that reference a candidate (first
// mention wins), sorts them by score descending, keeps topK, and renumbers
// ranks from 1.
func normalizeRecommendations(raw []modelRecommendation, candidates []domain.RawProduct, topK int) []domain.Recommendation {
	known := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		if id := c.ID(); id != "" {
			known[id] = true
		}
	}

	seen := make(map[string]bool, len(raw))
	recs := make([]domain.Recommendation, 0, len(raw))
	for _, item := range raw {
		id := looseString(item.ProductID)
		if !known[id] || seen[id] {
			continue
		}
		seen[id] = true

		score, _ := looseFloat(item.Score)
		recs = append(recs, domain.Recommendation{
			ProductID: id,
			Score:     score,
			Reasons:   nonNil(item.Reasons),
			Pros:      nonNil(item.Pros),
			Cons:      item.Cons,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Score > recs[j].Score
	})
	if len(recs) > topK {
		recs = recs[:topK]
	}
	for i := range recs {
		recs[i].Rank = i + 1
	}
	return recs
}

// degraded lists the first topK candidates in input order with placeholder scores
func (r *ResultRanker) degraded(candidates []domain.RawProduct) *domain.RankingResult {
	recs := make([]domain.Recommendation, 0, r.cfg.TopK)
	for _, c := range candidates {
		if len(recs) == r.cfg.TopK {
			break
		}
		id := c.ID()
		if id == "" {
			continue
		}
		recs = append(recs, domain.Recommendation{
			ProductID: id,
			Rank:      len(recs) + 1,
			Score:     degradedBaseScore - float64(len(recs))*degradedScoreStep,
			Reasons:   append([]string{}, degradedReasons...),
			Pros:      append([]string{}, degradedPros...),
		})
	}

	return &domain.RankingResult{
		Recommendations: recs,
		Explanation:     fmt.Sprintf(degradedExplanationFormat, len(candidates)),
		TotalAnalyzed:   len(candidates),
		Source:          domain.SourceFallback,
	}
}

func emptyRanking() *domain.RankingResult {
	return &domain.RankingResult{
		Recommendations: []domain.Recommendation{},
		Explanation:     NoCandidatesExplanation,
		TotalAnalyzed:   0,
		Source:          domain.SourceFallback,
	}
}

func looseString(v interface{}) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		if n, ok := domain.AsInt(s); ok {
			return fmt.Sprint(n)
		}
		return fmt.Sprint(s)
	default:
		return fmt.Sprint(s)
	}
}

func looseFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(n), 64); err == nil {
			return f, true
		}
	}
	return 0, false
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
