// Package catalog reads and writes the product catalog collection in MongoDB.
package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/jibsearch/backend/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Config holds connection settings
type Config struct {
	URI        string
	Database   string
	Collection string
	Timeout    time.Duration
}

// Store implements domain.ProductStore and domain.ProductImporter
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
	timeout    time.Duration
}

// NewStore creates a client for the catalog collection. Connections are made
// lazily, so an unreachable server surfaces on first use or Ping.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.URI == "" {
		return nil, fmt.Errorf("%w: mongo uri not configured", domain.ErrStoreUnavailable)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	clientOpts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: connect: %v", domain.ErrStoreUnavailable, err)
	}

	return &Store{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
		timeout:    timeout,
	}, nil
}

// Ping checks that the primary is reachable
func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := s.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("%w: ping: %v", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Find returns at most limit records matching filter, in natural order.
// limit <= 0 means no limit.
func (s *Store) Find(ctx context.Context, filter domain.Filter, limit int) ([]domain.RawProduct, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	opts := options.Find()
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.collection.Find(ctx, ToBSON(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("%w: find: %v", domain.ErrStoreUnavailable, err)
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", domain.ErrStoreUnavailable, err)
	}

	products := make([]domain.RawProduct, 0, len(docs))
	for _, doc := range docs {
		products = append(products, FromBSON(doc))
	}
	return products, nil
}

// Count returns the total number of records in the collection
func (s *Store) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	n, err := s.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("%w: count: %v", domain.ErrStoreUnavailable, err)
	}
	return n, nil
}

// DistinctCategories lists the category values present in the collection
func (s *Store) DistinctCategories(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	values, err := s.collection.Distinct(ctx, "category", bson.M{})
	if err != nil {
		return nil, fmt.Errorf("%w: distinct: %v", domain.ErrStoreUnavailable, err)
	}

	categories := make([]string, 0, len(values))
	for _, v := range values {
		if c, ok := v.(string); ok && c != "" {
			categories = append(categories, c)
		}
	}
	return categories, nil
}

// ReplaceAll inserts docs, first clearing the collection when drop is set.
// It returns the number of inserted documents.
func (s *Store) ReplaceAll(ctx context.Context, docs []map[string]interface{}, drop bool) (int, error) {
	if drop {
		if _, err := s.collection.DeleteMany(ctx, bson.M{}); err != nil {
			return 0, fmt.Errorf("%w: clear collection: %v", domain.ErrStoreUnavailable, err)
		}
	}
	if len(docs) == 0 {
		return 0, nil
	}

	batch := make([]interface{}, 0, len(docs))
	for _, doc := range docs {
		batch = append(batch, ToBSON(doc))
	}

	res, err := s.collection.InsertMany(ctx, batch)
	if err != nil {
		return 0, fmt.Errorf("%w: insert: %v", domain.ErrStoreUnavailable, err)
	}
	return len(res.InsertedIDs), nil
}

// Close disconnects the client
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
