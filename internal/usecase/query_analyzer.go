package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jibsearch/backend/internal/domain"
)

// Analyzer turns a raw query into a structured analysis. Implementations never fail.
type Analyzer interface {
	Analyze(ctx context.Context, query string) domain.QueryAnalysis
}

// categoryRule maps query keywords to an analysis category label
type categoryRule struct {
	label    string
	keywords []string
}

// Rules are checked in order, first match wins. COMPUTERSET precedes COMPUTER
// because "คอมเซ็ต" contains "คอม".
var categoryRules = []categoryRule{
	{domain.CategoryCPU, []string{"cpu", "ซีพียู", "processor"}},
	{domain.CategoryNotebook, []string{"โน้ตบุ๊ค", "โน้ตบุค", "โน๊ตบุ๊ค", "notebook", "laptop"}},
	{domain.CategoryComputerSet, []string{"คอมเซ็ต", "ชุดคอม", "computerset"}},
	{domain.CategoryComputer, []string{"desktop", "คอมพิวเตอร์", "คอม"}},
	{domain.CategoryApple, []string{"apple", "แอปเปิล", "mac", "iphone", "ipad"}},
}

var (
	gamingWords = []string{"แรงๆ", "แรง", "gaming", "เกม", "rtx", "gtx"}
	officeWords = []string{"ทำงาน", "office", "ออฟฟิศ"}
	knownBrands = []string{"asus", "acer", "hp", "dell", "lenovo", "msi", "amd", "intel", "samsung"}
)

// number matches 20000 or 20,000
const number = `(\d{1,3}(?:,\d{3})+|\d+)`

// amount is a price with at least three digits, so short model numbers and
// sizes are not read as prices
const amount = `(\d{1,3}(?:,\d{3})+|\d{3,})`

// pricePattern captures either one upper bound or a lower and upper bound
type pricePattern struct {
	re      *regexp.Regexp
	isRange bool
}

// Price patterns in priority order, first match wins. A budget is always read
// before a stated price, and a bare "N-M" pair only counts as a range when it
// follows งบ/ราคา or ends in บาท.
var pricePatterns = []pricePattern{
	{regexp.MustCompile(`งบ(?:ประมาณ)?\s*` + amount + `\s*-\s*` + amount), true},
	{regexp.MustCompile(`งบ(?:ประมาณ)?\s*` + number), false},
	{regexp.MustCompile(`ราคา\s*` + amount + `\s*-\s*` + amount), true},
	{regexp.MustCompile(`ราคา\s*` + number), false},
	{regexp.MustCompile(`(?:ไม่เกิน|ต่ำกว่า)\s*` + number), false},
	{regexp.MustCompile(amount + `\s*-\s*` + amount + `\s*บาท`), true},
	{regexp.MustCompile(`(\d{1,3}(?:,\d{3})+|\d{4,6})\s*บาท`), false},
	{regexp.MustCompile(`(?:^|\D)(\d{4,6})(?:\D|$)`), false},
}

// HeuristicAnalyzer is the rule-based analyzer. It makes no external calls.
type HeuristicAnalyzer struct{}

// NewHeuristicAnalyzer creates a rule-based analyzer
func NewHeuristicAnalyzer() *HeuristicAnalyzer {
	return &HeuristicAnalyzer{}
}

// Analyze implements Analyzer
func (h *HeuristicAnalyzer) Analyze(_ context.Context, query string) domain.QueryAnalysis {
	return AnalyzeQuery(query)
}

// AnalyzeQuery reads category, price bounds, performance level and brands from
// a query. The result depends only on the query text.
func AnalyzeQuery(query string) domain.QueryAnalysis {
	analysis := domain.QueryAnalysis{
		Keywords: []string{},
		Brands:   []string{},
	}
	lower := strings.ToLower(query)

	for _, rule := range categoryRules {
		if containsAny(lower, rule.keywords) {
			analysis.Category = stringPtr(rule.label)
			break
		}
	}

	analysis.PriceMin, analysis.PriceMax = extractPrice(query)

	switch {
	case containsAny(lower, gamingWords):
		analysis.PerformanceLevel = stringPtr(domain.PerformanceGaming)
	case containsAny(lower, officeWords):
		analysis.PerformanceLevel = stringPtr(domain.PerformanceOffice)
	}

	for _, brand := range knownBrands {
		if strings.Contains(lower, brand) {
			analysis.Brands = append(analysis.Brands, strings.ToUpper(brand))
		}
	}

	return analysis
}

// extractPrice applies the first matching price pattern
func extractPrice(query string) (min, max *int) {
	for _, pattern := range pricePatterns {
		m := pattern.re.FindStringSubmatch(query)
		if m == nil {
			continue
		}
		if !pattern.isRange {
			if v, err := parseAmount(m[1]); err == nil && v > 0 {
				return nil, intPtr(v)
			}
			continue
		}
		lo, errLo := parseAmount(m[1])
		hi, errHi := parseAmount(m[2])
		if errLo != nil || errHi != nil || lo <= 0 || hi <= 0 {
			continue
		}
		if lo > hi {
			lo, hi = hi, lo
		}
		return intPtr(lo), intPtr(hi)
	}
	return nil, nil
}

func parseAmount(s string) (int, error) {
	return strconv.Atoi(strings.ReplaceAll(s, ",", ""))
}

// Backfill fills every field the partial analysis left unset with the
// heuristic reading of query. Fields already set are kept.
func Backfill(query string, partial domain.QueryAnalysis) domain.QueryAnalysis {
	fallback := AnalyzeQuery(query)
	out := partial
	normalizeAnalysis(&out)

	if out.Category == nil {
		out.Category = fallback.Category
	}
	if out.PriceMin == nil {
		out.PriceMin = fallback.PriceMin
	}
	if out.PriceMax == nil {
		out.PriceMax = fallback.PriceMax
	}
	if out.PerformanceLevel == nil {
		out.PerformanceLevel = fallback.PerformanceLevel
	}
	if len(out.Keywords) == 0 {
		out.Keywords = append([]string{}, fallback.Keywords...)
	}
	if len(out.Brands) == 0 {
		out.Brands = append([]string{}, fallback.Brands...)
	}

	normalizeAnalysis(&out)
	return out
}

// normalizeAnalysis drops values outside the known enumerations and keeps
// price_min <= price_max.
func normalizeAnalysis(a *domain.QueryAnalysis) {
	if a.Category != nil && !isKnownCategory(*a.Category) {
		a.Category = nil
	}
	if a.PerformanceLevel != nil {
		switch *a.PerformanceLevel {
		case domain.PerformanceGaming, domain.PerformanceOffice, domain.PerformanceRecommended:
		default:
			a.PerformanceLevel = nil
		}
	}
	if a.PriceMin != nil && *a.PriceMin <= 0 {
		a.PriceMin = nil
	}
	if a.PriceMax != nil && *a.PriceMax <= 0 {
		a.PriceMax = nil
	}
	if a.PriceMin != nil && a.PriceMax != nil && *a.PriceMin > *a.PriceMax {
		a.PriceMin, a.PriceMax = a.PriceMax, a.PriceMin
	}
	if a.Keywords == nil {
		a.Keywords = []string{}
	}
	if a.Brands == nil {
		a.Brands = []string{}
	}
}

func isKnownCategory(label string) bool {
	for _, rule := range categoryRules {
		if rule.label == label {
			return true
		}
	}
	return false
}

var performanceText = map[string]string{
	domain.PerformanceGaming:      "สำหรับเล่นเกม",
	domain.PerformanceOffice:      "สำหรับทำงาน",
	domain.PerformanceRecommended: "สินค้าแนะนำ",
}

// Describe renders the Thai summary of the filters an analysis applied
func Describe(a domain.QueryAnalysis, found int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "พบสินค้า %d รายการ", found)
	if applied := appliedFilters(a); len(applied) > 0 {
		b.WriteString(" ที่ตรงตามเงื่อนไข: ")
		b.WriteString(strings.Join(applied, " | "))
	}
	b.WriteString(" (เรียงตามความเหมาะสมและความนิยม)")
	return b.String()
}

func appliedFilters(a domain.QueryAnalysis) []string {
	var applied []string
	if a.Category != nil {
		applied = append(applied, "หมวดหมู่: "+*a.Category)
	}
	switch {
	case a.PriceMin != nil && a.PriceMax != nil:
		applied = append(applied, fmt.Sprintf("ราคา: %s - %s บาท",
			humanize.Comma(int64(*a.PriceMin)), humanize.Comma(int64(*a.PriceMax))))
	case a.PriceMax != nil:
		applied = append(applied, fmt.Sprintf("ราคาไม่เกิน: %s บาท", humanize.Comma(int64(*a.PriceMax))))
	case a.PriceMin != nil:
		applied = append(applied, fmt.Sprintf("ราคาขั้นต่ำ: %s บาท", humanize.Comma(int64(*a.PriceMin))))
	}
	if a.PerformanceLevel != nil {
		text, ok := performanceText[*a.PerformanceLevel]
		if !ok {
			text = *a.PerformanceLevel
		}
		applied = append(applied, "ประเภท: "+text)
	}
	if len(a.Brands) > 0 {
		applied = append(applied, "ยี่ห้อ: "+strings.Join(a.Brands, ", "))
	}
	if len(a.Keywords) > 0 {
		applied = append(applied, "คำค้น: "+strings.Join(a.Keywords, ", "))
	}
	return applied
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func stringPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }
