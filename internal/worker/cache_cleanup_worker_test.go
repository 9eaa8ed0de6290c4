package worker

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"rag-gateway/internal/domain"

	"github.com/stretchr/testify/assert"
)

type countingCache struct {
	calls atomic.Int64
}

func (c *countingCache) LookupResults(context.Context, string, domain.SearchEngine) ([]domain.WebSearchResult, error) {
	return nil, nil
}

func (c *countingCache) StoreResults(context.Context, domain.CachedSearchQuery, []domain.WebSearchResult) error {
	return nil
}

func (c *countingCache) CleanupExpired(context.Context) (int64, error) {
	c.calls.Add(1)
	return 3, nil
}

func (c *countingCache) Stats(context.Context) (domain.CacheStats, error) {
	return domain.CacheStats{}, nil
}

func TestCacheCleanupWorker_RunsAndStops(t *testing.T) {
	cache := &countingCache{}
	w := NewCacheCleanupWorker(cache, 20*time.Millisecond, slog.New(slog.DiscardHandler))

	w.Start()
	time.Sleep(110 * time.Millisecond)
	w.Stop()
	time.Sleep(30 * time.Millisecond)

	ran := cache.calls.Load()
	assert.GreaterOrEqual(t, ran, int64(2))

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, ran, cache.calls.Load())
}

func TestCacheCleanupWorker_DefaultInterval(t *testing.T) {
	w := NewCacheCleanupWorker(&countingCache{}, 0, slog.New(slog.DiscardHandler))
	assert.Equal(t, 15*time.Minute, w.interval)
}
