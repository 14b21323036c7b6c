package usecase

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/jibsearch/backend/internal/domain"
	"github.com/jibsearch/backend/internal/observability"
	"github.com/rs/zerolog"
)

// Scoring bonuses
const (
	baseScore          = 10.0
	categoryMatchBonus = 100.0
	gamingMatchBonus   = 200.0 // performance level is gaming and the text names gaming hardware
	brandMatchBonus    = 150.0 // per matched brand
	queryMatchBonus    = 100.0 // whole query appears in name or detail
	keywordMatchBonus  = 80.0  // per matched keyword
	budgetValueMax     = 50.0  // scaled by (1 - price/price_max)
	viewsPerPoint      = 2000.0
	viewsBonusCap      = 30.0
	discountBonus      = 25.0
	maxScoredProducts  = 20
)

var gamingTextKeywords = []string{"gaming", "geforce", "rtx", "gtx", "radeon", "rx"}

// ScoredProduct is a candidate with its heuristic score and the reasons it earned
type ScoredProduct struct {
	Product domain.RawProduct
	Score   float64
	Reasons []string
	Pros    []string
}

// HeuristicRanker scores candidates against the query analysis. It never
// calls the model directly; the analyzer may.
type HeuristicRanker struct {
	analyzer Analyzer
	topK     int
	logger   zerolog.Logger
	metrics  *observability.Metrics
}

// NewHeuristicRanker creates a weighted-sum ranker
func NewHeuristicRanker(analyzer Analyzer, topK int, logger zerolog.Logger, metrics *observability.Metrics) *HeuristicRanker {
	if topK <= 0 {
		topK = defaultTopK
	}
	return &HeuristicRanker{
		analyzer: analyzer,
		topK:     topK,
		logger:   observability.Component(logger, "heuristic_ranker"),
		metrics:  metrics,
	}
}

// Rank implements Ranker
func (r *HeuristicRanker) Rank(ctx context.Context, query string, products []domain.RawProduct) (*domain.RankingResult, error) {
	if len(products) == 0 {
		return emptyRanking(), nil
	}

	start := time.Now()
	analysis := r.analyzer.Analyze(ctx, query)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scored := ScoreProducts(query, analysis, products)
	r.metrics.ObserveStage("rank", time.Since(start))
	r.logger.Debug().Str("query", query).Int("candidates", len(products)).Int("kept", len(scored)).Msg("heuristic ranking")

	candidates := make([]string, 0, len(scored))
	for _, s := range scored {
		candidates = append(candidates, s.Product.ID())
	}

	recs := make([]domain.Recommendation, 0, r.topK)
	for _, s := range scored {
		if len(recs) == r.topK {
			break
		}
		id := s.Product.ID()
		if id == "" {
			continue
		}
		recs = append(recs, domain.Recommendation{
			ProductID: id,
			Rank:      len(recs) + 1,
			Score:     s.Score,
			Reasons:   s.Reasons,
			Pros:      s.Pros,
		})
	}

	return &domain.RankingResult{
		Recommendations: recs,
		Explanation:     Describe(analysis, len(scored)),
		TotalAnalyzed:   len(products),
		Source:          domain.SourceHeuristic,
		Candidates:      candidates,
	}, nil
}

// ScoreProducts scores every product, drops those outside explicit price
// bounds, and returns the best maxScoredProducts sorted by score descending.
// Ties keep input order.
func ScoreProducts(query string, analysis domain.QueryAnalysis, products []domain.RawProduct) []ScoredProduct {
	queryLower := strings.ToLower(strings.TrimSpace(query))
	categoryRe := categoryMatcher(analysis.Category)

	scored := make([]ScoredProduct, 0, len(products))
	for _, p := range products {
		price := p.EffectivePrice()
		if analysis.PriceMax != nil && price > *analysis.PriceMax {
			continue
		}
		if analysis.PriceMin != nil && price < *analysis.PriceMin {
			continue
		}

		s := ScoredProduct{Product: p, Score: baseScore, Reasons: []string{}, Pros: []string{}}
		text := strings.ToLower(p.String("name") + " " + p.String("detail"))

		if categoryRe != nil && categoryRe.MatchString(p.String("category")) {
			s.Score += categoryMatchBonus
			s.Reasons = append(s.Reasons, "ตรงหมวดหมู่ "+*analysis.Category)
		}

		if analysis.PerformanceLevel != nil && *analysis.PerformanceLevel == domain.PerformanceGaming &&
			containsAny(text, gamingTextKeywords) {
			s.Score += gamingMatchBonus
			s.Reasons = append(s.Reasons, "สเปคเหมาะสำหรับเล่นเกม")
		}

		brandField := strings.ToLower(p.String("brand"))
		for _, brand := range analysis.Brands {
			b := strings.ToLower(strings.TrimSpace(brand))
			if b == "" {
				continue
			}
			if strings.Contains(text, b) || brandField == b {
				s.Score += brandMatchBonus
				s.Reasons = append(s.Reasons, "ยี่ห้อ "+strings.ToUpper(b))
			}
		}

		if queryLower != "" && strings.Contains(text, queryLower) {
			s.Score += queryMatchBonus
			s.Reasons = append(s.Reasons, "ชื่อหรือรายละเอียดตรงกับคำค้น")
		}

		for _, kw := range analysis.Keywords {
			k := strings.ToLower(strings.TrimSpace(kw))
			if k != "" && strings.Contains(text, k) {
				s.Score += keywordMatchBonus
				s.Reasons = append(s.Reasons, "มีคำว่า "+kw)
			}
		}

		if analysis.PriceMax != nil && *analysis.PriceMax > 0 {
			ratio := float64(price) / float64(*analysis.PriceMax)
			if ratio <= 1.0 {
				s.Score += float64(int((1.0 - ratio) * budgetValueMax))
				s.Pros = append(s.Pros, "ราคาอยู่ในงบ")
			}
		}

		if views := p.Int("views"); views > 0 {
			s.Score += math.Min(float64(views)/viewsPerPoint, viewsBonusCap)
			if float64(views) >= viewsPerPoint*viewsBonusCap {
				s.Pros = append(s.Pros, "ได้รับความนิยมสูง")
			}
		}

		if p.HasDiscount() {
			s.Score += discountBonus
			s.Pros = append(s.Pros, "มีส่วนลด")
		}

		scored = append(scored, s)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > maxScoredProducts {
		scored = scored[:maxScoredProducts]
	}
	return scored
}

func categoryMatcher(category *string) *regexp.Regexp {
	if category == nil || *category == "" {
		return nil
	}
	re, err := regexp.Compile("(?i)" + domain.CategoryPattern(*category))
	if err != nil {
		return nil
	}
	return re
}
