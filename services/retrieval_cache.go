package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sevap8/ai-platform/internal/logger"
	"github.com/sevap8/ai-platform/models"
)

const retrievalCachePrefix = "retrieve:"

// RetrievalCache caches similarity-search responses in Redis so
// repeated queries skip the embedding call and vector search.
type RetrievalCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRetrievalCache(rdb *redis.Client, ttl time.Duration) *RetrievalCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RetrievalCache{rdb: rdb, ttl: ttl}
}

func (rc *RetrievalCache) key(query string, topK int) string {
	sum := sha256.Sum256([]byte(query))
	return fmt.Sprintf("%s%s:%d", retrievalCachePrefix, hex.EncodeToString(sum[:16]), topK)
}

// Get returns a cached response, or false on miss. Cache errors are
// treated as misses.
func (rc *RetrievalCache) Get(ctx context.Context, query string, topK int) (*models.RetrieveResponse, bool) {
	data, err := rc.rdb.Get(ctx, rc.key(query, topK)).Bytes()
	if err != nil {
		return nil, false
	}

	var response models.RetrieveResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, false
	}
	return &response, true
}

// Set stores a response with the cache TTL. Failures are logged, not
// propagated: caching is best-effort.
func (rc *RetrievalCache) Set(ctx context.Context, query string, topK int, response *models.RetrieveResponse) {
	data, err := json.Marshal(response)
	if err != nil {
		return
	}
	if err := rc.rdb.Set(ctx, rc.key(query, topK), data, rc.ttl).Err(); err != nil {
		logger.Debug("Retrieval cache write failed", "error", err)
	}
}

// Invalidate drops all cached retrieval responses. Called after the
// index changes so queries see new or deleted documents.
func (rc *RetrievalCache) Invalidate(ctx context.Context) {
	var cursor uint64
	for {
		keys, next, err := rc.rdb.Scan(ctx, cursor, retrievalCachePrefix+"*", 100).Result()
		if err != nil {
			logger.Debug("Retrieval cache invalidation failed", "error", err)
			return
		}
		if len(keys) > 0 {
			rc.rdb.Del(ctx, keys...)
		}
		if next == 0 {
			return
		}
		cursor = next
	}
}
