package domain

// Filter is a MongoDB-style query document. An empty filter matches all records.
type Filter map[string]interface{}

// Plan sources
const (
	SourceModel     = "model"
	SourceHeuristic = "heuristic"
	SourceFallback  = "fallback"
	SourceCache     = "cache"
)

// FilterPlan is the planning stage output
type FilterPlan struct {
	Filter      Filter         `json:"filter"`
	Explanation string         `json:"explanation"`
	Analysis    *QueryAnalysis `json:"analysis,omitempty"`
	Source      string         `json:"source"`
}

// Performance levels
const (
	PerformanceGaming      = "gaming"
	PerformanceOffice      = "office"
	PerformanceRecommended = "recommended"
)

// QueryAnalysis is the structured reading of a shopping query. Optional fields
// are pointers; nil means "not stated".
type QueryAnalysis struct {
	Category         *string  `json:"category"`
	PriceMin         *int     `json:"price_min"`
	PriceMax         *int     `json:"price_max"`
	Keywords         []string `json:"keywords"`
	Brands           []string `json:"brands"`
	PerformanceLevel *string  `json:"performance_level"`
}

// Recommendation is one ranked entry
type Recommendation struct {
	ProductID string   `json:"product_id"`
	Rank      int      `json:"rank"`
	Score     float64  `json:"score"`
	Reasons   []string `json:"reasons"`
	Pros      []string `json:"pros"`
	Cons      []string `json:"cons"`
}

// RankingResult is the ranking stage output
type RankingResult struct {
	Recommendations []Recommendation `json:"recommendations"`
	Explanation     string           `json:"explanation"`
	TotalAnalyzed   int              `json:"total_analyzed"`
	Source          string           `json:"source"`

	// Candidates, when set, lists every record id the ranker kept, best first.
	// Records outside it are not displayed.
	Candidates []string `json:"-"`
}

// SearchRequest is the body of search and filter requests
type SearchRequest struct {
	Query string `json:"query" binding:"required"`
}

// SearchResponse is the search operation output
type SearchResponse struct {
	Products        []Product        `json:"products"`
	Explanation     string           `json:"explanation"`
	TotalFound      int              `json:"total_found"`
	Recommendations []Recommendation `json:"recommendations"`
}

// FilterResponse is the filter-only operation output
type FilterResponse struct {
	Filter      Filter `json:"filter"`
	Explanation string `json:"explanation"`
}

// HealthStatus reports catalog reachability
type HealthStatus struct {
	Status        string `json:"status"`
	Database      string `json:"database,omitempty"`
	TotalProducts int64  `json:"total_products,omitempty"`
	Categories    int    `json:"categories,omitempty"`
	Error         string `json:"error,omitempty"`
}
