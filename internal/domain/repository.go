package domain

import (
	"context"
	"time"
)

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// ProductStore is the catalog collection. An empty filter matches every record.
type ProductStore interface {
	Find(ctx context.Context, filter Filter, limit int) ([]RawProduct, error)
	Count(ctx context.Context) (int64, error)
	DistinctCategories(ctx context.Context) ([]string, error)
}

// ProductImporter replaces catalog contents; used by operator tooling only.
type ProductImporter interface {
	ReplaceAll(ctx context.Context, docs []map[string]interface{}, drop bool) (int, error)
}

// CompletionRequest is a single system+user exchange with the language model
type CompletionRequest struct {
	System      string
	User        string
	Model       string // empty uses the client's default
	Temperature float64
	MaxTokens   int
	JSON        bool
}

// LanguageModel is a black-box text completion service
type LanguageModel interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
