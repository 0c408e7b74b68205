package services

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/justsurfingit/jacker/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*RedisExtractionCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisExtractionCache(client, time.Hour), mr
}

func TestRedisExtractionCache_RoundTrip(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	url := "https://careers.acme.io/jobs/1"

	miss, err := cache.Get(ctx, url)
	require.NoError(t, err)
	assert.Nil(t, miss)

	want := &models.JobExtraction{CompanyName: "Acme", JobTitle: "SRE", Location: "Remote"}
	require.NoError(t, cache.Set(ctx, url, want))

	got, err := cache.Get(ctx, url)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	key := extractionKey(url)
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Hour, mr.TTL(key))
}

func TestRedisExtractionCache_Expiry(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()
	url := "https://careers.acme.io/jobs/2"

	require.NoError(t, cache.Set(ctx, url, &models.JobExtraction{CompanyName: "Acme"}))
	mr.FastForward(2 * time.Hour)

	got, err := cache.Get(ctx, url)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisExtractionCache_CorruptEntry(t *testing.T) {
	cache, mr := newTestCache(t)
	url := "https://careers.acme.io/jobs/3"
	require.NoError(t, mr.Set(extractionKey(url), "not json"))

	_, err := cache.Get(context.Background(), url)
	assert.Error(t, err)
}

func TestRedisExtractionCache_ServerDown(t *testing.T) {
	cache, mr := newTestCache(t)
	mr.Close()

	_, err := cache.Get(context.Background(), "https://a.example")
	assert.Error(t, err)
	assert.Error(t, cache.Set(context.Background(), "https://a.example", &models.JobExtraction{}))
}

func TestExtractionKey(t *testing.T) {
	a := extractionKey("https://a.example/1")
	b := extractionKey("https://a.example/2")
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, extractionKey("https://a.example/1"))
	assert.Len(t, a, len(extractionKeyPrefix)+64)
}
