package repository

import (
	"context"
	"fmt"
	"strings"

	"rag-gateway/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

type dbExecutor interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type vectorStoreRepository struct {
	pool    *pgxpool.Pool
	encoder domain.VectorEncoder
}

// NewVectorStoreRepository creates a VectorStore backed by pgvector
// cosine similarity over the document_chunks and structured_data tables.
func NewVectorStoreRepository(pool *pgxpool.Pool, encoder domain.VectorEncoder) domain.VectorStore {
	return &vectorStoreRepository{pool: pool, encoder: encoder}
}

func (r *vectorStoreRepository) getExecutor(ctx context.Context) dbExecutor {
	tx := ExtractTx(ctx)
	if tx != nil {
		return tx
	}
	return r.pool
}

func (r *vectorStoreRepository) UnifiedSearch(ctx context.Context, query string, opts domain.VectorSearchOptions) ([]domain.RetrievedItem, error) {
	return r.search(ctx, query, opts, nil)
}

func (r *vectorStoreRepository) ExpandedSearch(ctx context.Context, query string, opts domain.VectorSearchOptions, excludeIDs []string) ([]domain.RetrievedItem, error) {
	return r.search(ctx, query, opts, excludeIDs)
}

func (r *vectorStoreRepository) SimilaritySearch(ctx context.Context, query string, limit int, threshold float64) ([]domain.RetrievedItem, error) {
	return r.search(ctx, query, domain.VectorSearchOptions{
		MatchThreshold:    threshold,
		MatchCount:        limit,
		IncludeChunks:     true,
		IncludeStructured: false,
	}, nil)
}

// unifiedQuerySQL assembles the UNION ALL query over the enabled sources.
// Structured rows are part of the user's uploaded corpus, so they carry
// the document source type and rank with the chunks. excludeArg and
// limitArg are 1-based placeholder positions; excludeArg 0 means no
// exclusion clause.
func unifiedQuerySQL(opts domain.VectorSearchOptions, excludeArg, limitArg int) string {
	exclusion := ""
	if excludeArg > 0 {
		exclusion = fmt.Sprintf("AND NOT (id::text = ANY($%d))", excludeArg)
	}

	var branches []string
	if opts.IncludeChunks {
		branches = append(branches, fmt.Sprintf(`
			SELECT
				dc.id::text,
				dc.content,
				1 - (dc.embedding <=> $1) AS similarity,
				'document' AS source_type,
				dc.document_id::text AS origin_id,
				COALESCE(d.title, '') AS origin_title,
				dc.ordinal AS position_hint
			FROM document_chunks dc
			JOIN documents d ON d.id = dc.document_id
			WHERE 1 - (dc.embedding <=> $1) >= $2
			%s`, strings.ReplaceAll(exclusion, "id::text", "dc.id::text")))
	}
	if opts.IncludeStructured {
		branches = append(branches, fmt.Sprintf(`
			SELECT
				sd.id::text,
				sd.content,
				1 - (sd.embedding <=> $1) AS similarity,
				'document' AS source_type,
				sd.id::text AS origin_id,
				COALESCE(sd.title, '') AS origin_title,
				-1 AS position_hint
			FROM structured_data sd
			WHERE 1 - (sd.embedding <=> $1) >= $2
			%s`, strings.ReplaceAll(exclusion, "id::text", "sd.id::text")))
	}

	return fmt.Sprintf(`
		SELECT id, content, similarity, source_type, origin_id, origin_title, position_hint
		FROM (%s) AS unified
		ORDER BY similarity DESC
		LIMIT $%d
	`, strings.Join(branches, "\n\t\t\tUNION ALL\n"), limitArg)
}

func (r *vectorStoreRepository) search(ctx context.Context, query string, opts domain.VectorSearchOptions, excludeIDs []string) ([]domain.RetrievedItem, error) {
	if !opts.IncludeChunks && !opts.IncludeStructured {
		return nil, nil
	}
	if opts.MatchCount <= 0 {
		return nil, nil
	}

	embeddings, err := r.encoder.Encode(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}
	if len(embeddings) == 0 {
		return nil, fmt.Errorf("encoder returned no embedding")
	}
	vec := pgvector.NewVector(embeddings[0])

	args := []interface{}{vec, opts.MatchThreshold}
	excludeArg := 0
	if len(excludeIDs) > 0 {
		args = append(args, excludeIDs)
		excludeArg = len(args)
	}
	args = append(args, opts.MatchCount)

	sql := unifiedQuerySQL(opts, excludeArg, len(args))

	rows, err := r.getExecutor(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query vector store: %w", err)
	}
	defer rows.Close()

	var items []domain.RetrievedItem
	for rows.Next() {
		var item domain.RetrievedItem
		var sourceType string
		if err := rows.Scan(&item.ID, &item.Content, &item.Similarity, &sourceType, &item.OriginID, &item.OriginTitle, &item.PositionHint); err != nil {
			return nil, fmt.Errorf("failed to scan retrieved item: %w", err)
		}
		item.SourceType = domain.SourceType(sourceType)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return items, nil
}
