package domain

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// CachedSearchQuery memoizes one web search request. At most one
// non-expired row exists per (QueryHash, SearchEngine); expired rows are
// logically invalid and trigger a fresh fetch.
type CachedSearchQuery struct {
	ID             int64
	QueryText      string
	QueryHash      string
	SearchEngine   SearchEngine
	MaxResults     int
	TimeRange      TimeRange
	ResultsCount   int
	SearchCount    int
	LastSearchedAt time.Time
	CacheExpiresAt time.Time
}

// CachedWebContent memoizes one fetched-and-extracted page, keyed by URL.
// ContentHash changes only when the extracted content changes; FetchCount
// increments monotonically with re-fetches.
type CachedWebContent struct {
	ID             int64
	URL            string
	Title          string
	Content        string
	Snippet        string
	Source         string
	PublishedDate  string
	ContentHash    string
	FetchCount     int
	LastFetchedAt  time.Time
	CacheExpiresAt time.Time
}

// CacheStats reports row counts for the ops CLI and admin surface.
type CacheStats struct {
	Queries        int64
	ContentEntries int64
	ExpiredQueries int64
	ExpiredContent int64
}

// WebCacheRepository stores search queries and page content with expiry.
// All writes upsert on natural keys so concurrent writers converge;
// cached content is derivable, so last-writer-wins is acceptable.
type WebCacheRepository interface {
	// LookupResults returns the rank-ordered results linked to a
	// non-expired cached query, or nil on a miss.
	LookupResults(ctx context.Context, queryHash string, engine SearchEngine) ([]WebSearchResult, error)

	// StoreResults upserts the query row and each content row, linking
	// them by rank.
	StoreResults(ctx context.Context, query CachedSearchQuery, results []WebSearchResult) error

	// CleanupExpired deletes expired query and content rows and returns
	// the number deleted.
	CleanupExpired(ctx context.Context) (int64, error)

	Stats(ctx context.Context) (CacheStats, error)
}

// HashQuery derives the deterministic cache key for a search request.
func HashQuery(query string, engine SearchEngine, maxResults int) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d", normalized, engine, maxResults)))
	return hex.EncodeToString(sum[:])
}

// HashContent fingerprints extracted page content.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
