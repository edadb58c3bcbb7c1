package cache

import (
	"context"
	"testing"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nomenclator/internal/fieldblock"
)

func TestDigest(t *testing.T) {
	a := Digest([]byte("**A**\nx\n"))
	b := Digest([]byte("**A**\nx\n"))
	c := Digest([]byte("**A**\ny\n"))

	assert.Len(t, a, 64)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestFieldGroupCache_Defaults(t *testing.T) {
	c := NewFieldGroupCache(nil, 0)
	assert.Equal(t, 10*time.Minute, c.ttl)
	assert.Equal(t, "fields:parsed:abc", c.key("abc"))
}

func TestFieldGroupCache_Unreachable(t *testing.T) {
	client := redisv9.NewClient(&redisv9.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	c := NewFieldGroupCache(client, time.Minute)
	ctx := context.Background()

	_, hit, err := c.Get(ctx, "digest")
	require.Error(t, err)
	assert.False(t, hit)
	assert.Contains(t, err.Error(), "redis get field groups failed")

	err = c.Set(ctx, "digest", []fieldblock.FieldGroup{{Name: "A", Values: []string{}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis set field groups failed")
}
