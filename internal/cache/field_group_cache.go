package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"nomenclator/internal/fieldblock"
)

// FieldGroupCache stores parse results keyed by the sha256 of the uploaded
// bytes, so identical files are parsed once per TTL.
type FieldGroupCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewFieldGroupCache(client *redisv9.Client, ttl time.Duration) *FieldGroupCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &FieldGroupCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *FieldGroupCache) Get(ctx context.Context, digest string) ([]fieldblock.FieldGroup, bool, error) {
	raw, err := c.client.Get(ctx, c.key(digest)).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get field groups failed: %w", err)
	}

	var groups []fieldblock.FieldGroup
	if err := json.Unmarshal([]byte(raw), &groups); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached field groups failed: %w", err)
	}
	return groups, true, nil
}

func (c *FieldGroupCache) Set(ctx context.Context, digest string, groups []fieldblock.FieldGroup) error {
	payload, err := json.Marshal(groups)
	if err != nil {
		return fmt.Errorf("marshal field groups failed: %w", err)
	}
	if err := c.client.Set(ctx, c.key(digest), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set field groups failed: %w", err)
	}
	return nil
}

func (c *FieldGroupCache) key(digest string) string {
	return "fields:parsed:" + digest
}

// Digest returns the hex sha256 of content, the cache key for an upload.
func Digest(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
