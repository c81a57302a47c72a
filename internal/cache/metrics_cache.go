package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/sla-dashboard/internal/sla"
)

const metricsPrefix = "sla:metricas:"

// MetricsCache stores aggregate SLA metrics in Redis for a short TTL. A nil cache,
// a nil client or a non-positive TTL turns every call into a miss.
type MetricsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewMetricsCache builds the cache.
func NewMetricsCache(client *redis.Client, ttl time.Duration) *MetricsCache {
	return &MetricsCache{client: client, ttl: ttl}
}

func (c *MetricsCache) enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// Get returns the cached metrics for key. A missing key is not an error.
func (c *MetricsCache) Get(ctx context.Context, key string) (sla.AggregateMetrics, bool, error) {
	if !c.enabled() {
		return sla.AggregateMetrics{}, false, nil
	}
	raw, err := c.client.Get(ctx, metricsPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return sla.AggregateMetrics{}, false, nil
	}
	if err != nil {
		return sla.AggregateMetrics{}, false, fmt.Errorf("redis get: %w", err)
	}
	var metrics sla.AggregateMetrics
	if err := json.Unmarshal(raw, &metrics); err != nil {
		return sla.AggregateMetrics{}, false, fmt.Errorf("decode cached metrics: %w", err)
	}
	return metrics, true, nil
}

// Set stores metrics under key with the configured TTL.
func (c *MetricsCache) Set(ctx context.Context, key string, metrics sla.AggregateMetrics) error {
	if !c.enabled() {
		return nil
	}
	raw, err := json.Marshal(metrics)
	if err != nil {
		return fmt.Errorf("encode metrics: %w", err)
	}
	if err := c.client.Set(ctx, metricsPrefix+key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
