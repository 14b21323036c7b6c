package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jibsearch/backend/internal/domain"
)

// fakeModel answers completions from a handler and records requests
type fakeModel struct {
	mu       sync.Mutex
	handler  func(req domain.CompletionRequest) (string, error)
	requests []domain.CompletionRequest
}

func replyWith(text string) *fakeModel {
	return &fakeModel{handler: func(domain.CompletionRequest) (string, error) { return text, nil }}
}

func failWith(err error) *fakeModel {
	return &fakeModel{handler: func(domain.CompletionRequest) (string, error) { return "", err }}
}

func (f *fakeModel) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	handler := f.handler
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrModelUnavailable, err)
	}
	return handler(req)
}

func (f *fakeModel) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func (f *fakeModel) lastRequest() domain.CompletionRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

// fakeStore serves a fixed record list
type fakeStore struct {
	mu         sync.Mutex
	products   []domain.RawProduct
	err        error
	count      int64
	countErr   error
	categories []string
	findCalls  int
	lastFilter domain.Filter
	lastLimit  int
	imported   []map[string]interface{}
	dropped    bool
}

func (s *fakeStore) Find(_ context.Context, filter domain.Filter, limit int) ([]domain.RawProduct, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findCalls++
	s.lastFilter = filter
	s.lastLimit = limit
	if s.err != nil {
		return nil, s.err
	}
	out := s.products
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeStore) Count(context.Context) (int64, error) {
	if s.countErr != nil {
		return 0, s.countErr
	}
	return s.count, nil
}

func (s *fakeStore) DistinctCategories(context.Context) ([]string, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.categories, nil
}

func (s *fakeStore) ReplaceAll(_ context.Context, docs []map[string]interface{}, drop bool) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	s.dropped = drop
	s.imported = append(s.imported, docs...)
	s.count = int64(len(s.imported))
	return len(docs), nil
}

// fakeCache is a map-backed domain.CacheRepository
type fakeCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	if !ok {
		return nil, domain.ErrCacheMiss
	}
	return v, nil
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *fakeCache) Exists(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok, nil
}

func (c *fakeCache) has(key string) bool {
	ok, _ := c.Exists(context.Background(), key)
	return ok
}

// product builds a complete catalog record
func product(id, name, category string, sellprice int) domain.RawProduct {
	return domain.RawProduct{
		"id":        id,
		"brand":     "ASUS",
		"category":  category,
		"detail":    "รายละเอียด " + name,
		"discount":  0,
		"image":     "https://img.example/" + id + ".jpg",
		"link":      "https://shop.example/" + id,
		"name":      name,
		"price":     sellprice,
		"sellprice": sellprice,
		"sku":       "SKU-" + id,
		"views":     0,
		"warranty":  "2 ปี",
	}
}

// productRange builds n records with ids p1..pn
func productRange(n int) []domain.RawProduct {
	out := make([]domain.RawProduct, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, product(fmt.Sprintf("p%d", i), fmt.Sprintf("สินค้า %d", i), "โน้ตบุ๊ค", 10000+i*100))
	}
	return out
}
