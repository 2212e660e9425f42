package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const generationCachePrefix = "generation:cache"

// CachedGeneration points at the ideas persisted for an earlier generation
type CachedGeneration struct {
	Keywords []string    `json:"keywords"`
	IdeaIDs  []uuid.UUID `json:"idea_ids"`
}

// GenerationCacheKey derives the cache key of a user's prompt and count
func GenerationCacheKey(userID uuid.UUID, prompt string, count int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d", prompt, count)))
	return fmt.Sprintf("%s:%s:%s", generationCachePrefix, userID, hex.EncodeToString(sum[:]))
}

// RedisGenerationCache stores CachedGeneration values as JSON in redis
type RedisGenerationCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisGenerationCache(client *redis.Client, ttl time.Duration) *RedisGenerationCache {
	return &RedisGenerationCache{redis: client, ttl: ttl}
}

func (c *RedisGenerationCache) Get(ctx context.Context, key string) (*CachedGeneration, error) {
	data, err := c.redis.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read generation cache: %w", err)
	}
	var entry CachedGeneration
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to decode generation cache: %w", err)
	}
	return &entry, nil
}

func (c *RedisGenerationCache) Set(ctx context.Context, key string, entry *CachedGeneration) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode generation cache: %w", err)
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write generation cache: %w", err)
	}
	return nil
}
