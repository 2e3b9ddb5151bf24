// Package cache provides a Redis-backed cache of translation results with
// singleflight deduplication of concurrent identical requests.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/nlcmd/translator/internal/translate"
	"github.com/nlcmd/translator/pkg/config"
	pkgredis "github.com/nlcmd/translator/pkg/redis"
)

const keyPrefix = "translate:"

// TranslationCache caches TranslationResults keyed by normalised sentence
// and result limit.
type TranslationCache struct {
	client *pkgredis.Client
	cfg    config.RedisConfig
	group  singleflight.Group
	logger *slog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a TranslationCache over the given Redis client.
func New(client *pkgredis.Client, cfg config.RedisConfig) *TranslationCache {
	return &TranslationCache{
		client: client,
		cfg:    cfg,
		logger: slog.Default().With("component", "translation-cache"),
	}
}

// Get returns the cached result for sentence/limit, if present.
func (c *TranslationCache) Get(ctx context.Context, sentence string, limit int) (*translate.TranslationResult, bool) {
	key := c.buildKey(sentence, limit)
	data, err := c.client.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}
	var result translate.TranslationResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	c.logger.Debug("cache hit", "sentence", sentence, "key", key)
	return &result, true
}

// Set stores a result under the sentence/limit key with the configured TTL.
func (c *TranslationCache) Set(ctx context.Context, sentence string, limit int, result *translate.TranslationResult) {
	key := c.buildKey(sentence, limit)
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.client.Set(ctx, key, data, c.cfg.CacheTTL); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached result or computes and stores it, with
// singleflight collapsing concurrent identical requests. The second return
// reports whether the result came from cache.
func (c *TranslationCache) GetOrCompute(
	ctx context.Context,
	sentence string,
	limit int,
	computeFn func() (*translate.TranslationResult, error),
) (*translate.TranslationResult, bool, error) {
	if result, ok := c.Get(ctx, sentence, limit); ok {
		return result, true, nil
	}
	key := c.buildKey(sentence, limit)
	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if result, ok := c.Get(ctx, sentence, limit); ok {
			return result, nil
		}
		result, err := computeFn()
		if err != nil {
			return nil, err
		}
		c.Set(ctx, sentence, limit, result)
		return result, nil
	})
	if err != nil {
		return nil, false, err
	}
	return val.(*translate.TranslationResult), false, nil
}

// Invalidate removes every cached translation.
func (c *TranslationCache) Invalidate(ctx context.Context) error {
	deleted, err := c.client.FlushByPattern(ctx, keyPrefix+"*")
	if err != nil {
		return fmt.Errorf("invalidating translation cache: %w", err)
	}
	c.logger.Info("cache invalidated", "keys_deleted", deleted)
	return nil
}

// Stats returns hit and miss counts since startup.
func (c *TranslationCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *TranslationCache) buildKey(sentence string, limit int) string {
	raw := fmt.Sprintf("%s:limit=%d", normalizeSentence(sentence), limit)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}

// normalizeSentence maps sentences that score identically to one key: the
// enumerator aligns against the word set, so word order and repetition do
// not affect results.
func normalizeSentence(sentence string) string {
	words := strings.Fields(strings.ToLower(sentence))
	seen := make(map[string]struct{}, len(words))
	unique := make([]string, 0, len(words))
	for _, w := range words {
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		unique = append(unique, w)
	}
	sort.Strings(unique)
	return strings.Join(unique, " ")
}
