package websearch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"rag-gateway/internal/domain"
	"rag-gateway/internal/infra/httpclient"

	"github.com/PuerkitoBio/goquery"
)

// engine is one search backend. Implementations return at most maxResults
// hits in the engine's own ranking order, without page content.
type engine interface {
	name() domain.SearchEngine
	search(ctx context.Context, query string, maxResults int, timeRange domain.TimeRange) ([]domain.WebSearchResult, error)
}

// DuckDuckGo scrapes the HTML (non-JS) result page. It needs no API key,
// which makes it the default engine.
type DuckDuckGo struct {
	BaseURL string
	Client  *http.Client
}

func NewDuckDuckGo(timeout time.Duration) *DuckDuckGo {
	return &DuckDuckGo{
		BaseURL: "https://html.duckduckgo.com/html/",
		Client:  httpclient.NewPooledClient(timeout),
	}
}

func (d *DuckDuckGo) name() domain.SearchEngine { return domain.EngineDuckDuckGo }

var ddgFreshness = map[domain.TimeRange]string{
	domain.TimeRangeDay:   "d",
	domain.TimeRangeWeek:  "w",
	domain.TimeRangeMonth: "m",
	domain.TimeRangeYear:  "y",
}

func (d *DuckDuckGo) search(ctx context.Context, query string, maxResults int, timeRange domain.TimeRange) ([]domain.WebSearchResult, error) {
	params := url.Values{}
	params.Set("q", query)
	if df, ok := ddgFreshness[timeRange]; ok {
		params.Set("df", df)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; rag-gateway/1.0)")

	resp, err := d.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("duckduckgo returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse result page: %w", err)
	}

	var results []domain.WebSearchResult
	doc.Find("div.result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		link := sel.Find("a.result__a").First()
		href, ok := link.Attr("href")
		if !ok {
			return true
		}

		results = append(results, domain.WebSearchResult{
			Title:   strings.TrimSpace(link.Text()),
			URL:     resolveRedirect(href),
			Snippet: strings.TrimSpace(sel.Find(".result__snippet").First().Text()),
			Source:  string(domain.EngineDuckDuckGo),
		})
		return len(results) < maxResults
	})

	return results, nil
}

// resolveRedirect unwraps duckduckgo's /l/?uddg= redirect links to the
// target URL.
func resolveRedirect(href string) string {
	parsed, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := parsed.Query().Get("uddg"); target != "" {
		return target
	}
	if parsed.Scheme == "" {
		return "https:" + href
	}
	return href
}
