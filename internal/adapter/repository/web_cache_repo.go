package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rag-gateway/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type webCacheRepository struct {
	pool       *pgxpool.Pool
	contentTTL time.Duration
}

// NewWebCacheRepository creates a WebCacheRepository on top of the
// web_search_queries, web_content and web_query_results tables.
// Content rows carry their own TTL, independent of the query TTL, so a
// page fetched once can serve several distinct queries.
func NewWebCacheRepository(pool *pgxpool.Pool, contentTTL time.Duration) domain.WebCacheRepository {
	if contentTTL <= 0 {
		contentTTL = time.Hour
	}
	return &webCacheRepository{pool: pool, contentTTL: contentTTL}
}

func (r *webCacheRepository) getExecutor(ctx context.Context) dbExecutor {
	tx := ExtractTx(ctx)
	if tx != nil {
		return tx
	}
	return r.pool
}

func (r *webCacheRepository) LookupResults(ctx context.Context, queryHash string, engine domain.SearchEngine) ([]domain.WebSearchResult, error) {
	exec := r.getExecutor(ctx)

	// A hit bumps the usage counters; an expired or missing row returns
	// no id and the lookup is a miss.
	var queryID int64
	err := exec.QueryRow(ctx, `
		UPDATE web_search_queries
		SET search_count = search_count + 1, last_searched_at = now()
		WHERE query_hash = $1 AND search_engine = $2 AND cache_expires_at > now()
		RETURNING id
	`, queryHash, string(engine)).Scan(&queryID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to look up cached query: %w", err)
	}

	rows, err := exec.Query(ctx, `
		SELECT c.title, c.url, c.snippet, c.content, c.published_date, c.source
		FROM web_query_results qr
		JOIN web_content c ON c.id = qr.content_id
		WHERE qr.query_id = $1
		ORDER BY qr.rank ASC
	`, queryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cached results: %w", err)
	}
	defer rows.Close()

	var results []domain.WebSearchResult
	for rows.Next() {
		var res domain.WebSearchResult
		if err := rows.Scan(&res.Title, &res.URL, &res.Snippet, &res.Content, &res.PublishedDate, &res.Source); err != nil {
			return nil, fmt.Errorf("failed to scan cached result: %w", err)
		}
		res.Cached = true
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return results, nil
}

func (r *webCacheRepository) StoreResults(ctx context.Context, query domain.CachedSearchQuery, results []domain.WebSearchResult) error {
	exec := r.getExecutor(ctx)

	var queryID int64
	err := exec.QueryRow(ctx, `
		INSERT INTO web_search_queries
			(query_text, query_hash, search_engine, max_results, time_range,
			 results_count, search_count, last_searched_at, cache_expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, 1, now(), $7)
		ON CONFLICT (query_hash, search_engine) DO UPDATE SET
			query_text = EXCLUDED.query_text,
			max_results = EXCLUDED.max_results,
			time_range = EXCLUDED.time_range,
			results_count = EXCLUDED.results_count,
			search_count = web_search_queries.search_count + 1,
			last_searched_at = now(),
			cache_expires_at = EXCLUDED.cache_expires_at
		RETURNING id
	`, query.QueryText, query.QueryHash, string(query.SearchEngine),
		query.MaxResults, string(query.TimeRange), len(results), query.CacheExpiresAt).Scan(&queryID)
	if err != nil {
		return fmt.Errorf("failed to upsert search query: %w", err)
	}

	if _, err := exec.Exec(ctx, `DELETE FROM web_query_results WHERE query_id = $1`, queryID); err != nil {
		return fmt.Errorf("failed to clear previous result links: %w", err)
	}

	for rank, res := range results {
		var contentID int64
		err := exec.QueryRow(ctx, `
			INSERT INTO web_content
				(url, title, content, snippet, source, published_date,
				 content_hash, fetch_count, last_fetched_at, cache_expires_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, 1, now(), $8)
			ON CONFLICT (url) DO UPDATE SET
				title = EXCLUDED.title,
				content = EXCLUDED.content,
				snippet = EXCLUDED.snippet,
				source = EXCLUDED.source,
				published_date = EXCLUDED.published_date,
				content_hash = EXCLUDED.content_hash,
				fetch_count = web_content.fetch_count + 1,
				last_fetched_at = now(),
				cache_expires_at = EXCLUDED.cache_expires_at
			RETURNING id
		`, res.URL, res.Title, res.Content, res.Snippet, res.Source,
			res.PublishedDate, domain.HashContent(res.Content), time.Now().Add(r.contentTTL)).Scan(&contentID)
		if err != nil {
			return fmt.Errorf("failed to upsert web content: %w", err)
		}

		if _, err := exec.Exec(ctx, `
			INSERT INTO web_query_results (query_id, content_id, rank)
			VALUES ($1, $2, $3)
		`, queryID, contentID, rank); err != nil {
			return fmt.Errorf("failed to link result: %w", err)
		}
	}

	return nil
}

func (r *webCacheRepository) CleanupExpired(ctx context.Context) (int64, error) {
	exec := r.getExecutor(ctx)

	queryTag, err := exec.Exec(ctx, `DELETE FROM web_search_queries WHERE cache_expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired queries: %w", err)
	}

	// Content rows outlive their query rows (longer TTL); orphans with a
	// valid TTL are kept for re-linking by later searches.
	contentTag, err := exec.Exec(ctx, `DELETE FROM web_content WHERE cache_expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired content: %w", err)
	}

	return queryTag.RowsAffected() + contentTag.RowsAffected(), nil
}

func (r *webCacheRepository) Stats(ctx context.Context) (domain.CacheStats, error) {
	var stats domain.CacheStats
	err := r.getExecutor(ctx).QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM web_search_queries),
			(SELECT count(*) FROM web_content),
			(SELECT count(*) FROM web_search_queries WHERE cache_expires_at <= now()),
			(SELECT count(*) FROM web_content WHERE cache_expires_at <= now())
	`).Scan(&stats.Queries, &stats.ContentEntries, &stats.ExpiredQueries, &stats.ExpiredContent)
	if err != nil {
		return domain.CacheStats{}, fmt.Errorf("failed to read cache stats: %w", err)
	}
	return stats, nil
}
