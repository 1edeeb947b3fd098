// Package cache provides a Redis-backed completion cache so repeated
// pipeline runs over the same corpus do not pay for identical LLM calls.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	llmpkg "github.com/BaSui01/userboard/llm"
)

// ErrCacheMiss is returned by Get when the key is not present.
var ErrCacheMiss = errors.New("cache miss")

// Entry is a cached completion with bookkeeping for reporting.
type Entry struct {
	Response  *llmpkg.ChatResponse `json:"response"`
	Model     string               `json:"model"`
	CreatedAt time.Time            `json:"created_at"`
}

// CompletionCache stores chat responses keyed by request content.
type CompletionCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCompletionCache wraps a Redis client. TTL <= 0 defaults to one hour.
func NewCompletionCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *CompletionCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompletionCache{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger.With(zap.String("component", "completion_cache")),
	}
}

// Key hashes the full request so any change to model, messages or
// sampling parameters produces a distinct cache slot.
func Key(req *llmpkg.ChatRequest) string {
	data, err := json.Marshal(req)
	if err != nil {
		data = []byte(fmt.Sprintf("%v", req))
	}
	hash := sha256.Sum256(data)
	return "llm:cache:" + hex.EncodeToString(hash[:16])
}

// Get fetches a cached response, returning ErrCacheMiss when absent.
func (c *CompletionCache) Get(ctx context.Context, req *llmpkg.ChatRequest) (*llmpkg.ChatResponse, error) {
	raw, err := c.rdb.Get(ctx, Key(req)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		// A corrupt entry behaves like a miss so the caller re-fetches.
		c.logger.Warn("dropping corrupt cache entry", zap.Error(err))
		return nil, ErrCacheMiss
	}
	return entry.Response, nil
}

// Set stores a response under the request's key.
func (c *CompletionCache) Set(ctx context.Context, req *llmpkg.ChatRequest, resp *llmpkg.ChatResponse) error {
	entry := Entry{Response: resp, Model: req.Model, CreatedAt: time.Now().UTC()}
	raw, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("cache marshal: %w", err)
	}
	if err := c.rdb.Set(ctx, Key(req), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}
