package websearch

import (
	"fmt"
	"net/url"
	"strings"

	"rag-gateway/internal/domain"
)

// fallbackSource marks results synthesized locally when every engine
// failed. They point the model at well-known portals for the detected
// topic instead of returning an empty context.
const fallbackSource = "fallback"

type fallbackEntry struct {
	keywords []string
	title    string
	site     string
	snippet  string
}

var fallbackCatalog = []fallbackEntry{
	{
		keywords: []string{"nba", "nfl", "mlb", "nhl", "game", "match", "odds", "prediction", "vs", "score"},
		title:    "ESPN - Scores, Schedules and Analysis",
		site:     "https://www.espn.com/search/_/q/%s",
		snippet:  "Latest scores, schedules, odds and expert analysis for major league sports.",
	},
	{
		keywords: []string{"nba", "nfl", "mlb", "nhl", "injury", "roster", "stats"},
		title:    "CBS Sports - Team News and Injury Reports",
		site:     "https://www.cbssports.com/search/?q=%s",
		snippet:  "Team news, injury reports and statistics across professional leagues.",
	},
	{
		keywords: []string{"news", "today", "latest", "update", "current"},
		title:    "Reuters - Latest News",
		site:     "https://www.reuters.com/site-search/?query=%s",
		snippet:  "Breaking news and current events from an international wire service.",
	},
	{
		keywords: []string{"weather", "forecast", "temperature"},
		title:    "Weather.com - Forecasts",
		site:     "https://weather.com/search/enhancedlocalsearch?where=%s",
		snippet:  "Current conditions and forecasts by location.",
	},
}

// fallbackResults synthesizes results matching the query's topic keywords.
// A query matching nothing still gets one generic entry so the caller is
// never handed an empty slice.
func fallbackResults(query string, maxResults int) []domain.WebSearchResult {
	lower := strings.ToLower(query)
	escaped := url.QueryEscape(query)

	var results []domain.WebSearchResult
	for _, entry := range fallbackCatalog {
		if len(results) >= maxResults {
			break
		}
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				results = append(results, domain.WebSearchResult{
					Title:   entry.title,
					URL:     fmt.Sprintf(entry.site, escaped),
					Snippet: entry.snippet,
					Source:  fallbackSource,
				})
				break
			}
		}
	}

	if len(results) == 0 {
		results = append(results, domain.WebSearchResult{
			Title:   "Search: " + query,
			URL:     "https://duckduckgo.com/?q=" + escaped,
			Snippet: "No live search results were available for this query.",
			Source:  fallbackSource,
		})
	}
	return results
}
