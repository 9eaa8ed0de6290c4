package sports

import (
	"context"
	"fmt"
	"strings"

	"rag-gateway/internal/domain"
)

// analysisTerms boost the relevance of hits that look like expert
// analysis rather than box scores or shop pages.
var analysisTerms = []string{"prediction", "analysis", "preview", "injury", "odds", "expert", "pick"}

// NewsClient sources sports news through the web search layer instead of
// a dedicated news API, reusing its cache and fallback behavior.
type NewsClient struct {
	searcher domain.WebSearcher
}

func NewNewsClient(searcher domain.WebSearcher) *NewsClient {
	return &NewsClient{searcher: searcher}
}

func (c *NewsClient) News(ctx context.Context, query string, maxResults int) ([]domain.SportsNewsItem, error) {
	if maxResults <= 0 {
		maxResults = 3
	}

	results, err := c.searcher.Search(ctx, domain.WebSearchOptions{
		Query:      query,
		MaxResults: maxResults,
		TimeRange:  domain.TimeRangeWeek,
	})
	if err != nil {
		return nil, fmt.Errorf("news search failed: %w", err)
	}

	items := make([]domain.SportsNewsItem, 0, len(results))
	for i, res := range results {
		items = append(items, domain.SportsNewsItem{
			Title:          res.Title,
			Summary:        res.Snippet,
			URL:            res.URL,
			PublishedDate:  res.PublishedDate,
			Source:         res.Source,
			RelevanceScore: relevance(i, res),
		})
	}
	return items, nil
}

// relevance decays with rank and gains a bonus per analysis term found in
// the title or snippet, clamped to [0,1].
func relevance(rank int, res domain.WebSearchResult) float64 {
	score := 1.0 - 0.15*float64(rank)
	text := strings.ToLower(res.Title + " " + res.Snippet)
	for _, term := range analysisTerms {
		if strings.Contains(text, term) {
			score += 0.05
		}
	}
	if score > 1 {
		return 1
	}
	if score < 0 {
		return 0
	}
	return score
}

var _ domain.SportsNewsClient = (*NewsClient)(nil)
