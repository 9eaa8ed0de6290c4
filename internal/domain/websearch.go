package domain

import (
	"context"
	"fmt"
)

// SearchEngine names a web search backend.
type SearchEngine string

const (
	EngineDuckDuckGo SearchEngine = "duckduckgo"
	EngineBrave      SearchEngine = "brave"
	EngineSerper     SearchEngine = "serper"
)

// TimeRange restricts search results by recency.
type TimeRange string

const (
	TimeRangeDay   TimeRange = "day"
	TimeRangeWeek  TimeRange = "week"
	TimeRangeMonth TimeRange = "month"
	TimeRangeYear  TimeRange = "year"
)

// WebSearchResult is one search hit, optionally carrying the extracted
// full page content.
type WebSearchResult struct {
	Title         string
	URL           string
	Snippet       string
	Content       string
	PublishedDate string
	Source        string
	Cached        bool
}

// WebSearchOptions parameterizes one search call.
type WebSearchOptions struct {
	Query          string
	MaxResults     int
	IncludeContent bool
	TimeRange      TimeRange
	SearchEngine   SearchEngine
	CacheMaxAge    int // minutes; 0 means the configured default
	BypassCache    bool
}

// WebSearcher performs cache-aware web searches. Results preserve the
// order returned by the engine; ranking happens one layer up.
type WebSearcher interface {
	Search(ctx context.Context, opts WebSearchOptions) ([]WebSearchResult, error)
}

// SearchExhaustedError is raised only when both the primary engine and the
// fallback strategy fail; it carries both underlying causes.
type SearchExhaustedError struct {
	Primary  error
	Fallback error
}

func (e *SearchExhaustedError) Error() string {
	return fmt.Sprintf("all search methods failed: primary: %v, fallback: %v", e.Primary, e.Fallback)
}

func (e *SearchExhaustedError) Unwrap() error { return e.Primary }
