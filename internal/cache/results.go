// internal/cache/results.go
//
// Package cache stores finished analysis reports keyed by video ID so a
// repeated request skips the gateway round trip entirely. The cache is best
// effort: a Redis failure degrades to a miss and never fails an analysis.
package cache

import (
	"context"
	"errors"
	"time"

	"worthcheck/internal/common/logger"
	"worthcheck/internal/common/metrics"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "worthcheck:report:"

// Results is a read-through cache of serialized analysis reports.
type Results struct {
	redis  *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

// NewResults creates a report cache. A nil client disables caching and every
// lookup reports a miss.
func NewResults(rdb *redis.Client, ttl time.Duration, log logger.Logger) *Results {
	return &Results{
		redis:  rdb,
		ttl:    ttl,
		logger: log.WithFields(map[string]interface{}{"component": "result_cache"}),
	}
}

func key(videoID string) string {
	return keyPrefix + videoID
}

// Get returns the cached report payload for the video, if present.
func (r *Results) Get(ctx context.Context, videoID string) ([]byte, bool) {
	if r.redis == nil || videoID == "" {
		return nil, false
	}

	payload, err := r.redis.Get(ctx, key(videoID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.CacheHits.WithLabelValues("miss").Inc()
			return nil, false
		}
		metrics.CacheHits.WithLabelValues("error").Inc()
		r.logger.Warn("cache lookup failed", map[string]interface{}{
			"videoId": videoID,
			"error":   err.Error(),
		})
		return nil, false
	}

	metrics.CacheHits.WithLabelValues("hit").Inc()
	return payload, true
}

// Put stores a report payload under the video's key with the configured TTL.
// Write failures are logged and swallowed.
func (r *Results) Put(ctx context.Context, videoID string, payload []byte) {
	if r.redis == nil || videoID == "" || len(payload) == 0 {
		return
	}

	if err := r.redis.Set(ctx, key(videoID), payload, r.ttl).Err(); err != nil {
		r.logger.Warn("cache write failed", map[string]interface{}{
			"videoId": videoID,
			"error":   err.Error(),
		})
	}
}

// Invalidate drops the cached report for a video.
func (r *Results) Invalidate(ctx context.Context, videoID string) error {
	if r.redis == nil || videoID == "" {
		return nil
	}
	return r.redis.Del(ctx, key(videoID)).Err()
}
