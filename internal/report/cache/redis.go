// Package cache holds the short-lived Redis cache in front of report
// aggregation. Reports are expensive to count and tolerate staleness up to
// the configured TTL, so one entry per timeframe is enough.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"cityline/internal/report/models"
	"cityline/pkg/platform/sentinel"
)

const keyPrefix = "cityline:report:performance:"

// Redis stores serialized reports keyed by timeframe.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

// Get returns the cached report for the timeframe, or sentinel.ErrNotFound
// on a miss or expired entry.
func (c *Redis) Get(ctx context.Context, tf models.Timeframe) (*models.Report, error) {
	raw, err := c.client.Get(ctx, keyPrefix+string(tf)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("get cached report: %w", err)
	}

	var report models.Report
	if err := json.Unmarshal(raw, &report); err != nil {
		// A corrupt entry reads as a miss; the next Set overwrites it.
		return nil, sentinel.ErrNotFound
	}
	return &report, nil
}

// Set stores the report under its timeframe key for the configured TTL.
func (c *Redis) Set(ctx context.Context, report *models.Report) error {
	raw, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := c.client.Set(ctx, keyPrefix+string(report.Timeframe), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached report: %w", err)
	}
	return nil
}
