package usecase

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/jibsearch/backend/internal/domain"
	"github.com/jibsearch/backend/internal/observability"
)

// Text patterns matched against name and detail for each performance level
const (
	gamingTextPattern = "gaming|เกม|เกมมิ่ง|MSI|ROG|Legion|TUF|Predator|Nitro|RTX|GTX|GeForce|Radeon"
	officeTextPattern = "office|ทำงาน|business|Office.*Home|Excel|Word|บางเบา|พกพา"
)

// recommendedMinViews is the popularity floor for "recommended" queries
const recommendedMinViews = 500

// AnalysisPlanner derives the catalog filter from a query analysis without
// asking the model to write a filter.
type AnalysisPlanner struct {
	analyzer Analyzer
	metrics  *observability.Metrics
}

// NewAnalysisPlanner creates a planner on top of analyzer
func NewAnalysisPlanner(analyzer Analyzer, metrics *observability.Metrics) *AnalysisPlanner {
	return &AnalysisPlanner{analyzer: analyzer, metrics: metrics}
}

// PlanFilter implements Planner
func (p *AnalysisPlanner) PlanFilter(ctx context.Context, query string) *domain.FilterPlan {
	start := time.Now()
	analysis := p.analyzer.Analyze(ctx, query)
	p.metrics.ObserveStage("plan", time.Since(start))

	explanation := "ค้นหาสินค้าทั้งหมด"
	if applied := appliedFilters(analysis); len(applied) > 0 {
		explanation = "กรองสินค้าตามเงื่อนไข: " + strings.Join(applied, " | ")
	}

	return &domain.FilterPlan{
		Filter:      BuildFilter(analysis),
		Explanation: explanation,
		Analysis:    &analysis,
		Source:      domain.SourceHeuristic,
	}
}

// BuildFilter translates an analysis into a catalog filter. An analysis with
// nothing set yields the empty filter.
func BuildFilter(a domain.QueryAnalysis) domain.Filter {
	filter := domain.Filter{}

	if a.Category != nil {
		filter["category"] = regexCondition(domain.CategoryPattern(*a.Category))
	}

	price := map[string]interface{}{}
	if a.PriceMin != nil {
		price["$gte"] = *a.PriceMin
	}
	if a.PriceMax != nil {
		price["$lte"] = *a.PriceMax
	}
	if len(price) > 0 {
		filter["sellprice"] = price
	}

	if len(a.Brands) > 0 {
		filter["brand"] = regexCondition(quoteAll(a.Brands))
	}

	var text []string
	if a.PerformanceLevel != nil {
		switch *a.PerformanceLevel {
		case domain.PerformanceGaming:
			text = append(text, gamingTextPattern)
		case domain.PerformanceOffice:
			text = append(text, officeTextPattern)
		case domain.PerformanceRecommended:
			filter["views"] = map[string]interface{}{"$gte": recommendedMinViews}
		}
	}
	if len(a.Keywords) > 0 {
		text = append(text, quoteAll(a.Keywords))
	}
	if len(text) > 0 {
		pattern := strings.Join(text, "|")
		filter["$or"] = []interface{}{
			map[string]interface{}{"name": regexCondition(pattern)},
			map[string]interface{}{"detail": regexCondition(pattern)},
		}
	}

	return filter
}

func regexCondition(pattern string) map[string]interface{} {
	return map[string]interface{}{"$regex": pattern, "$options": "i"}
}

func quoteAll(words []string) string {
	quoted := make([]string, 0, len(words))
	for _, w := range words {
		quoted = append(quoted, regexp.QuoteMeta(w))
	}
	return strings.Join(quoted, "|")
}
