package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/storekit/storefront/internal/domain"
	apperrors "github.com/storekit/storefront/pkg/errors"
)

const summaryKeyPrefix = "review_summary:"

// SummaryCache stores computed review summaries keyed by product ID. A cache
// miss is reported as ErrNotFound so callers fall through to the database.
type SummaryCache interface {
	Get(ctx context.Context, productID string) (*domain.ReviewSummary, error)
	Set(ctx context.Context, productID string, summary *domain.ReviewSummary) error
	Invalidate(ctx context.Context, productID string) error
}

// RedisSummaryCache implements SummaryCache using Redis.
type RedisSummaryCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSummaryCache creates a Redis-backed summary cache.
func NewRedisSummaryCache(client *redis.Client, ttl time.Duration) *RedisSummaryCache {
	return &RedisSummaryCache{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves a cached summary by product ID.
func (c *RedisSummaryCache) Get(ctx context.Context, productID string) (*domain.ReviewSummary, error) {
	key := summaryKeyPrefix + productID

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperrors.NotFound("review summary", productID)
		}
		return nil, fmt.Errorf("redis get summary: %w", err)
	}

	var summary domain.ReviewSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("unmarshal summary: %w", err)
	}

	return &summary, nil
}

// Set stores a summary with the configured TTL.
func (c *RedisSummaryCache) Set(ctx context.Context, productID string, summary *domain.ReviewSummary) error {
	key := summaryKeyPrefix + productID

	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set summary: %w", err)
	}

	return nil
}

// Invalidate drops the cached summary for a product. Called after a review is
// approved so the next read recomputes from the database.
func (c *RedisSummaryCache) Invalidate(ctx context.Context, productID string) error {
	key := summaryKeyPrefix + productID

	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del summary: %w", err)
	}

	return nil
}

// NoopSummaryCache satisfies SummaryCache without storing anything. Used when
// Redis is not configured.
type NoopSummaryCache struct{}

// NewNoopSummaryCache creates a cache that always misses.
func NewNoopSummaryCache() *NoopSummaryCache { return &NoopSummaryCache{} }

func (*NoopSummaryCache) Get(_ context.Context, productID string) (*domain.ReviewSummary, error) {
	return nil, apperrors.NotFound("review summary", productID)
}

func (*NoopSummaryCache) Set(context.Context, string, *domain.ReviewSummary) error { return nil }

func (*NoopSummaryCache) Invalidate(context.Context, string) error { return nil }
