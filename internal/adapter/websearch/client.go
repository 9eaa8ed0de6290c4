package websearch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"rag-gateway/internal/domain"

	"golang.org/x/sync/singleflight"
)

const defaultMaxResults = 5

// Client is the cache-aware WebSearcher. A search resolves in order:
// cached results, the requested engine, then (for the default engine
// only) locally synthesized fallback results. Concurrent identical
// searches are collapsed into one upstream call.
type Client struct {
	engines       map[domain.SearchEngine]engine
	defaultEngine domain.SearchEngine
	cache         domain.WebCacheRepository
	tx            domain.TransactionManager
	fetcher       ContentFetcher
	log           *slog.Logger
	queryTTL      time.Duration

	group singleflight.Group
}

type ClientConfig struct {
	DefaultEngine domain.SearchEngine
	QueryTTL      time.Duration
}

func NewClient(
	engines map[domain.SearchEngine]engine,
	cache domain.WebCacheRepository,
	tx domain.TransactionManager,
	fetcher ContentFetcher,
	log *slog.Logger,
	cfg ClientConfig,
) *Client {
	if cfg.DefaultEngine == "" {
		cfg.DefaultEngine = domain.EngineDuckDuckGo
	}
	if cfg.QueryTTL <= 0 {
		cfg.QueryTTL = 30 * time.Minute
	}
	return &Client{
		engines:       engines,
		defaultEngine: cfg.DefaultEngine,
		cache:         cache,
		tx:            tx,
		fetcher:       fetcher,
		log:           log,
		queryTTL:      cfg.QueryTTL,
	}
}

// Engines builds the full engine set from the available credentials.
// Engines without a key still register; they fail with ErrNotConfigured
// at call time.
func Engines(braveKey, serperKey string, timeout time.Duration) map[domain.SearchEngine]engine {
	return map[domain.SearchEngine]engine{
		domain.EngineDuckDuckGo: NewDuckDuckGo(timeout),
		domain.EngineBrave:      NewBrave(braveKey, timeout),
		domain.EngineSerper:     NewSerper(serperKey, timeout),
	}
}

func (c *Client) Search(ctx context.Context, opts domain.WebSearchOptions) ([]domain.WebSearchResult, error) {
	if opts.MaxResults <= 0 {
		opts.MaxResults = defaultMaxResults
	}
	if opts.SearchEngine == "" {
		opts.SearchEngine = c.defaultEngine
	}

	queryHash := domain.HashQuery(opts.Query, opts.SearchEngine, opts.MaxResults)

	if !opts.BypassCache {
		cached, err := c.cache.LookupResults(ctx, queryHash, opts.SearchEngine)
		if err != nil {
			c.log.Warn("cache lookup failed", slog.String("error", err.Error()))
		} else if len(cached) > 0 {
			c.log.Info("web search cache hit",
				slog.String("engine", string(opts.SearchEngine)),
				slog.Int("results", len(cached)))
			return truncateResults(cached, opts.MaxResults), nil
		}
	}

	out, err, shared := c.group.Do(queryHash, func() (interface{}, error) {
		return c.searchFresh(ctx, queryHash, opts)
	})
	if err != nil {
		return nil, err
	}
	results := out.([]domain.WebSearchResult)
	if shared {
		c.log.Debug("web search coalesced", slog.String("query_hash", queryHash))
	}
	return truncateResults(results, opts.MaxResults), nil
}

func (c *Client) searchFresh(ctx context.Context, queryHash string, opts domain.WebSearchOptions) ([]domain.WebSearchResult, error) {
	start := time.Now()

	eng, ok := c.engines[opts.SearchEngine]
	if !ok {
		return nil, fmt.Errorf("unknown search engine %q", opts.SearchEngine)
	}

	results, primaryErr := eng.search(ctx, opts.Query, opts.MaxResults, opts.TimeRange)
	if primaryErr != nil {
		// Explicitly requested engines fail loudly so the caller knows
		// the credentials or service are broken. Only the default path
		// degrades to synthesized results.
		if opts.SearchEngine != c.defaultEngine {
			return nil, fmt.Errorf("search engine %s failed: %w", opts.SearchEngine, primaryErr)
		}
		c.log.Warn("primary engine failed, using fallback results",
			slog.String("engine", string(opts.SearchEngine)),
			slog.String("error", primaryErr.Error()))
		results = fallbackResults(opts.Query, opts.MaxResults)
		if len(results) == 0 {
			return nil, &domain.SearchExhaustedError{
				Primary:  primaryErr,
				Fallback: fmt.Errorf("no fallback results"),
			}
		}
		return results, nil
	}

	if opts.IncludeContent {
		c.attachContent(ctx, results)
	}

	c.persist(ctx, queryHash, opts, results)

	c.log.Info("web search completed",
		slog.String("engine", string(opts.SearchEngine)),
		slog.Int("results", len(results)),
		slog.Duration("elapsed", time.Since(start)))
	return results, nil
}

// attachContent fetches each hit's page and fills in extracted text.
// A failed fetch degrades that hit to its snippet.
func (c *Client) attachContent(ctx context.Context, results []domain.WebSearchResult) {
	for i := range results {
		page := domain.BestEffort(ctx, c.log, "fetch page content", Page{}, func(ctx context.Context) (Page, error) {
			return c.fetcher.Fetch(ctx, results[i].URL)
		})
		if page.Content != "" {
			results[i].Content = page.Content
			if results[i].Title == "" && page.Title != "" {
				results[i].Title = page.Title
			}
		} else {
			results[i].Content = results[i].Snippet
		}
	}
}

func (c *Client) persist(ctx context.Context, queryHash string, opts domain.WebSearchOptions, results []domain.WebSearchResult) {
	ttl := c.queryTTL
	if opts.CacheMaxAge > 0 {
		ttl = time.Duration(opts.CacheMaxAge) * time.Minute
	}

	query := domain.CachedSearchQuery{
		QueryText:      opts.Query,
		QueryHash:      queryHash,
		SearchEngine:   opts.SearchEngine,
		MaxResults:     opts.MaxResults,
		TimeRange:      opts.TimeRange,
		CacheExpiresAt: time.Now().Add(ttl),
	}

	domain.BestEffortRun(ctx, c.log, "persist search results", func(ctx context.Context) error {
		return c.tx.RunInTx(ctx, func(ctx context.Context) error {
			return c.cache.StoreResults(ctx, query, results)
		})
	})
}

func truncateResults(results []domain.WebSearchResult, limit int) []domain.WebSearchResult {
	if len(results) > limit {
		return results[:limit]
	}
	return results
}

var _ domain.WebSearcher = (*Client)(nil)
