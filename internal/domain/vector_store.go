package domain

import "context"

// VectorSearchOptions parameterizes a nearest-neighbor query.
type VectorSearchOptions struct {
	MatchThreshold    float64
	MatchCount        int
	IncludeChunks     bool
	IncludeStructured bool
}

// VectorStore answers similarity queries over embedded content: uploaded
// document chunks and structured-data rows.
type VectorStore interface {
	// UnifiedSearch returns items above the threshold across both content
	// kinds, ordered by similarity descending.
	UnifiedSearch(ctx context.Context, query string, opts VectorSearchOptions) ([]RetrievedItem, error)

	// ExpandedSearch is a relaxed second pass that excludes already
	// selected item ids.
	ExpandedSearch(ctx context.Context, query string, opts VectorSearchOptions, excludeIDs []string) ([]RetrievedItem, error)

	// SimilaritySearch is the degraded single-pass search over document
	// chunks only, used when the unified path errors.
	SimilaritySearch(ctx context.Context, query string, limit int, threshold float64) ([]RetrievedItem, error)
}

// VectorEncoder turns text into fixed-length embedding vectors.
type VectorEncoder interface {
	Encode(ctx context.Context, texts []string) ([][]float32, error)
	Version() string
}
