package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/justsurfingit/jacker/internal/models"
	"github.com/redis/go-redis/v9"
)

const extractionKeyPrefix = "jacker:extraction:"

// ExtractionCache remembers AI extractions per posting URL so re-tracking the
// same posting does not open another scrape session.
type ExtractionCache interface {
	Get(ctx context.Context, pageURL string) (*models.JobExtraction, error)
	Set(ctx context.Context, pageURL string, ext *models.JobExtraction) error
}

type RedisExtractionCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

func NewRedisExtractionCache(client redis.UniversalClient, ttl time.Duration) *RedisExtractionCache {
	return &RedisExtractionCache{client: client, ttl: ttl}
}

// Get returns (nil, nil) on a miss.
func (c *RedisExtractionCache) Get(ctx context.Context, pageURL string) (*models.JobExtraction, error) {
	raw, err := c.client.Get(ctx, extractionKey(pageURL)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var ext models.JobExtraction
	if err := json.Unmarshal(raw, &ext); err != nil {
		return nil, fmt.Errorf("decode cached extraction: %w", err)
	}
	return &ext, nil
}

func (c *RedisExtractionCache) Set(ctx context.Context, pageURL string, ext *models.JobExtraction) error {
	if ext == nil {
		return errors.New("extraction cannot be nil")
	}
	raw, err := json.Marshal(ext)
	if err != nil {
		return fmt.Errorf("encode extraction: %w", err)
	}
	if err := c.client.Set(ctx, extractionKey(pageURL), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func extractionKey(pageURL string) string {
	sum := sha256.Sum256([]byte(pageURL))
	return extractionKeyPrefix + hex.EncodeToString(sum[:])
}
