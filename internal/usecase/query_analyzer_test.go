package usecase

import (
	"context"
	"testing"

	"github.com/jibsearch/backend/internal/domain"
	"github.com/stretchr/testify/assert"
)

func strVal(p *string) string {
	if p == nil {
		return "<nil>"
	}
	return *p
}

func intVal(p *int) int {
	if p == nil {
		return -1
	}
	return *p
}

func TestAnalyzeQuery(t *testing.T) {
	tests := []struct {
		name        string
		query       string
		category    string
		priceMin    int
		priceMax    int
		performance string
		brands      []string
	}{
		{
			name:        "cpu under budget has no performance level",
			query:       "CPU แนะนำราคาไม่เกิน 20000",
			category:    domain.CategoryCPU,
			priceMin:    -1,
			priceMax:    20000,
			performance: "<nil>",
			brands:      []string{},
		},
		{
			name:        "gaming notebook with budget",
			query:       "โน้ตบุ๊ค เล่นเกม งบ 20000",
			category:    domain.CategoryNotebook,
			priceMin:    -1,
			priceMax:    20000,
			performance: domain.PerformanceGaming,
			brands:      []string{},
		},
		{
			name:        "price range with brand",
			query:       "Intel CPU ราคา 5000-10000",
			category:    domain.CategoryCPU,
			priceMin:    5000,
			priceMax:    10000,
			performance: "<nil>",
			brands:      []string{"INTEL"},
		},
		{
			name:        "reversed range is ordered",
			query:       "โน้ตบุ๊ค 30,000 - 15,000 บาท",
			category:    domain.CategoryNotebook,
			priceMin:    15000,
			priceMax:    30000,
			performance: "<nil>",
			brands:      []string{},
		},
		{
			name:        "budget range",
			query:       "โน้ตบุ๊ค งบ 15000-20000",
			category:    domain.CategoryNotebook,
			priceMin:    15000,
			priceMax:    20000,
			performance: "<nil>",
			brands:      []string{},
		},
		{
			name:        "budget wins over a model year pair",
			query:       "โน้ตบุ๊ค รุ่นปี 2023-2024 งบ 20000",
			category:    domain.CategoryNotebook,
			priceMin:    -1,
			priceMax:    20000,
			performance: "<nil>",
			brands:      []string{},
		},
		{
			name:        "budget wins over a memory speed pair",
			query:       "แรม DDR4 3200-3600 งบ 5000",
			category:    "<nil>",
			priceMin:    -1,
			priceMax:    5000,
			performance: "<nil>",
			brands:      []string{},
		},
		{
			name:        "budget wins over a stated price range",
			query:       "ราคา 10000-30000 แต่งบ 18000",
			category:    "<nil>",
			priceMin:    -1,
			priceMax:    18000,
			performance: "<nil>",
			brands:      []string{},
		},
		{
			name:        "thousands separator",
			query:       "laptop งบประมาณ 25,000 บาท",
			category:    domain.CategoryNotebook,
			priceMin:    -1,
			priceMax:    25000,
			performance: "<nil>",
			brands:      []string{},
		},
		{
			name:        "computer set before computer",
			query:       "คอมเซ็ต ทำงาน",
			category:    domain.CategoryComputerSet,
			priceMin:    -1,
			priceMax:    -1,
			performance: domain.PerformanceOffice,
			brands:      []string{},
		},
		{
			name:        "plain computer",
			query:       "คอมพิวเตอร์ ออฟฟิศ 15000 บาท",
			category:    domain.CategoryComputer,
			priceMin:    -1,
			priceMax:    15000,
			performance: domain.PerformanceOffice,
			brands:      []string{},
		},
		{
			name:        "apple",
			query:       "MacBook Air",
			category:    domain.CategoryApple,
			priceMin:    -1,
			priceMax:    -1,
			performance: "<nil>",
			brands:      []string{},
		},
		{
			name:        "gaming wins over office",
			query:       "notebook ทำงาน และ เล่นเกม rtx asus msi",
			category:    domain.CategoryNotebook,
			priceMin:    -1,
			priceMax:    -1,
			performance: domain.PerformanceGaming,
			brands:      []string{"ASUS", "MSI"},
		},
		{
			name:        "bare number",
			query:       "การ์ดจอ 12000",
			category:    "<nil>",
			priceMin:    -1,
			priceMax:    12000,
			performance: "<nil>",
			brands:      []string{},
		},
		{
			name:        "nothing recognised",
			query:       "หูฟัง",
			category:    "<nil>",
			priceMin:    -1,
			priceMax:    -1,
			performance: "<nil>",
			brands:      []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AnalyzeQuery(tt.query)
			assert.Equal(t, tt.category, strVal(got.Category))
			assert.Equal(t, tt.priceMin, intVal(got.PriceMin))
			assert.Equal(t, tt.priceMax, intVal(got.PriceMax))
			assert.Equal(t, tt.performance, strVal(got.PerformanceLevel))
			assert.Equal(t, tt.brands, got.Brands)
			assert.NotNil(t, got.Keywords)
		})
	}
}

func TestAnalyzeQuery_Idempotent(t *testing.T) {
	queries := []string{
		"CPU แนะนำราคาไม่เกิน 20000",
		"โน้ตบุ๊ค เล่นเกม งบ 20000",
		"Dell Lenovo ราคา 10000-20000",
		"",
	}
	analyzer := NewHeuristicAnalyzer()
	for _, q := range queries {
		first := analyzer.Analyze(context.Background(), q)
		second := analyzer.Analyze(context.Background(), q)
		assert.Equal(t, first, second, q)
	}
}

func TestBackfill(t *testing.T) {
	t.Run("fills unset fields", func(t *testing.T) {
		got := Backfill("โน้ตบุ๊ค เล่นเกม งบ 20000 asus", domain.QueryAnalysis{})
		assert.Equal(t, domain.CategoryNotebook, strVal(got.Category))
		assert.Equal(t, 20000, intVal(got.PriceMax))
		assert.Equal(t, domain.PerformanceGaming, strVal(got.PerformanceLevel))
		assert.Equal(t, []string{"ASUS"}, got.Brands)
	})

	t.Run("never overwrites set fields", func(t *testing.T) {
		partial := domain.QueryAnalysis{
			Category:         stringPtr(domain.CategoryCPU),
			PriceMax:         intPtr(15000),
			PerformanceLevel: stringPtr(domain.PerformanceRecommended),
			Brands:           []string{"AMD"},
			Keywords:         []string{"ryzen"},
		}
		got := Backfill("โน้ตบุ๊ค เล่นเกม งบ 20000 asus", partial)
		assert.Equal(t, domain.CategoryCPU, strVal(got.Category))
		assert.Equal(t, 15000, intVal(got.PriceMax))
		assert.Equal(t, domain.PerformanceRecommended, strVal(got.PerformanceLevel))
		assert.Equal(t, []string{"AMD"}, got.Brands)
		assert.Equal(t, []string{"ryzen"}, got.Keywords)
	})

	t.Run("unknown labels count as unset", func(t *testing.T) {
		partial := domain.QueryAnalysis{
			Category:         stringPtr("LAPTOPS"),
			PerformanceLevel: stringPtr("ultra"),
		}
		got := Backfill("notebook gaming", partial)
		assert.Equal(t, domain.CategoryNotebook, strVal(got.Category))
		assert.Equal(t, domain.PerformanceGaming, strVal(got.PerformanceLevel))
	})

	t.Run("keeps min below max", func(t *testing.T) {
		got := Backfill("งบ 10000", domain.QueryAnalysis{PriceMin: intPtr(30000)})
		assert.Equal(t, 10000, intVal(got.PriceMin))
		assert.Equal(t, 30000, intVal(got.PriceMax))
	})
}

func TestDescribe(t *testing.T) {
	analysis := domain.QueryAnalysis{
		Category:         stringPtr(domain.CategoryNotebook),
		PriceMax:         intPtr(25000),
		PerformanceLevel: stringPtr(domain.PerformanceGaming),
		Brands:           []string{"ASUS", "MSI"},
	}

	got := Describe(analysis, 7)
	assert.Equal(t,
		"พบสินค้า 7 รายการ ที่ตรงตามเงื่อนไข: หมวดหมู่: NOTEBOOK | ราคาไม่เกิน: 25,000 บาท | ประเภท: สำหรับเล่นเกม | ยี่ห้อ: ASUS, MSI (เรียงตามความเหมาะสมและความนิยม)",
		got)

	assert.Equal(t, "พบสินค้า 0 รายการ (เรียงตามความเหมาะสมและความนิยม)", Describe(domain.QueryAnalysis{}, 0))
}
