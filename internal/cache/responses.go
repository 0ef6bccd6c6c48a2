// internal/cache/responses.go
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"

	"green-genie/internal/common/logger"
	"green-genie/internal/common/metrics"
)

// ResponseCache memoizes generated explanations keyed by the exact prompt
// and model. Identical composed prompts yield identical cache keys, so a
// repeat query is served without another model invocation.
type ResponseCache struct {
	client *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewResponseCache(client *redis.Client, ttl time.Duration, log logger.Logger) *ResponseCache {
	return &ResponseCache{
		client: client,
		ttl:    ttl,
		logger: log.With(map[string]interface{}{"component": "response_cache"}),
	}
}

// Key derives the cache key for a prompt/model pair.
func Key(prompt, modelID string) string {
	sum := sha256.Sum256([]byte(modelID + "\x00" + prompt))
	return "ggenie:response:" + hex.EncodeToString(sum[:])
}

// Get returns the cached explanation for the prompt, or ("", false) on a
// miss. Cache errors are logged and treated as misses.
func (c *ResponseCache) Get(ctx context.Context, prompt, modelID string) (string, bool) {
	val, err := c.client.Get(ctx, Key(prompt, modelID)).Result()
	if err == redis.Nil {
		metrics.ResponseCacheHits.WithLabelValues("miss").Inc()
		return "", false
	}
	if err != nil {
		c.logger.Warn("cache lookup failed", map[string]interface{}{"error": err.Error()})
		metrics.ResponseCacheHits.WithLabelValues("error").Inc()
		return "", false
	}
	metrics.ResponseCacheHits.WithLabelValues("hit").Inc()
	return val, true
}

// Set stores the explanation for the prompt. Failures are logged only; the
// cache is best effort.
func (c *ResponseCache) Set(ctx context.Context, prompt, modelID, explanation string) {
	if err := c.client.Set(ctx, Key(prompt, modelID), explanation, c.ttl).Err(); err != nil {
		c.logger.Warn("cache store failed", map[string]interface{}{"error": err.Error()})
	}
}
