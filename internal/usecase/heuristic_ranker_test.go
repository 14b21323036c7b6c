package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/jibsearch/backend/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scoringFixture() []domain.RawProduct {
	gaming := product("a", "ASUS TUF Gaming RTX 4050", "โน้ตบุ๊ค", 19000)

	office := product("b", "Acer Aspire office", "โน้ตบุ๊ค", 10000)
	office["brand"] = "ACER"
	office["discount"] = 10

	overBudget := product("c", "ASUS ROG Strix", "โน้ตบุ๊ค", 25000)

	monitor := product("d", "จอ 27 นิ้ว", "จอคอมพิวเตอร์", 5000)
	monitor["brand"] = "LG"
	monitor["views"] = 100000

	return []domain.RawProduct{office, overBudget, monitor, gaming}
}

func gamingNotebookAnalysis() domain.QueryAnalysis {
	return domain.QueryAnalysis{
		Category:         stringPtr(domain.CategoryNotebook),
		PriceMax:         intPtr(20000),
		PerformanceLevel: stringPtr(domain.PerformanceGaming),
		Brands:           []string{"ASUS"},
		Keywords:         []string{},
	}
}

func TestScoreProducts(t *testing.T) {
	scored := ScoreProducts("โน้ตบุ๊ค เล่นเกม งบ 20000", gamingNotebookAnalysis(), scoringFixture())

	require.Len(t, scored, 3)

	got := map[string]float64{}
	order := make([]string, 0, len(scored))
	for _, s := range scored {
		got[s.Product.ID()] = s.Score
		order = append(order, s.Product.ID())
	}

	assert.Equal(t, []string{"a", "b", "d"}, order)
	assert.Equal(t, 462.0, got["a"]) // base + category + gaming + brand + budget
	assert.Equal(t, 160.0, got["b"]) // base + category + budget + discount
	assert.Equal(t, 77.0, got["d"])  // base + budget + capped views
	assert.NotContains(t, got, "c")
}

func TestScoreProducts_PriceBounds(t *testing.T) {
	products := make([]domain.RawProduct, 0, 40)
	for i := 0; i < 40; i++ {
		p := product(fmt.Sprintf("p%d", i), fmt.Sprintf("สินค้า %d", i), "โน้ตบุ๊ค", 5000+i*1000)
		if i%3 == 0 {
			// list price only
			p["sellprice"] = 0
			p["price"] = 5000 + i*1000
		}
		products = append(products, p)
	}

	for _, bounds := range [][2]int{{0, 20000}, {10000, 30000}, {0, 4000}, {25000, 0}} {
		analysis := domain.QueryAnalysis{}
		if bounds[0] > 0 {
			analysis.PriceMin = intPtr(bounds[0])
		}
		if bounds[1] > 0 {
			analysis.PriceMax = intPtr(bounds[1])
		}

		scored := ScoreProducts("โน้ตบุ๊ค", analysis, products)
		assert.LessOrEqual(t, len(scored), 20)
		for _, s := range scored {
			price := s.Product.EffectivePrice()
			if analysis.PriceMax != nil {
				assert.LessOrEqual(t, price, *analysis.PriceMax)
			}
			if analysis.PriceMin != nil {
				assert.GreaterOrEqual(t, price, *analysis.PriceMin)
			}
		}
		for i := 1; i < len(scored); i++ {
			assert.LessOrEqual(t, scored[i].Score, scored[i-1].Score)
		}
	}
}

func TestScoreProducts_QueryAndKeywordMatch(t *testing.T) {
	p := product("k", "Lenovo Legion 5 Pro", "โน้ตบุ๊ค", 40000)
	analysis := domain.QueryAnalysis{Keywords: []string{"legion", "oled"}}

	scored := ScoreProducts("legion 5", analysis, []domain.RawProduct{p})

	require.Len(t, scored, 1)
	assert.Equal(t, baseScore+queryMatchBonus+keywordMatchBonus, scored[0].Score)
}

func TestHeuristicRanker_Rank(t *testing.T) {
	analyzer := NewHeuristicAnalyzer()
	ranker := NewHeuristicRanker(analyzer, 5, zerolog.Nop(), nil)

	result, err := ranker.Rank(context.Background(), "โน้ตบุ๊ค เล่นเกม งบ 20000 asus", scoringFixture())

	require.NoError(t, err)
	assert.Equal(t, domain.SourceHeuristic, result.Source)
	assert.Equal(t, 4, result.TotalAnalyzed)
	assert.Equal(t, []string{"a", "b", "d"}, result.Candidates)
	assertRankingShape(t, result.Recommendations)
	require.NotEmpty(t, result.Recommendations)
	assert.Equal(t, "a", result.Recommendations[0].ProductID)
	assert.Contains(t, result.Explanation, "พบสินค้า 3 รายการ")
	assert.Contains(t, result.Explanation, "ราคาไม่เกิน: 20,000 บาท")
}

func TestHeuristicRanker_TopK(t *testing.T) {
	ranker := NewHeuristicRanker(NewHeuristicAnalyzer(), 5, zerolog.Nop(), nil)

	result, err := ranker.Rank(context.Background(), "โน้ตบุ๊ค", productRange(30))

	require.NoError(t, err)
	assert.Len(t, result.Recommendations, 5)
	assert.Len(t, result.Candidates, 20)
	assertRankingShape(t, result.Recommendations)
}

func TestHeuristicRanker_Empty(t *testing.T) {
	ranker := NewHeuristicRanker(NewHeuristicAnalyzer(), 5, zerolog.Nop(), nil)

	result, err := ranker.Rank(context.Background(), "โน้ตบุ๊ค", nil)

	require.NoError(t, err)
	assert.Empty(t, result.Recommendations)
	assert.Equal(t, NoCandidatesExplanation, result.Explanation)
}
