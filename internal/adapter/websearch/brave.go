package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"rag-gateway/internal/domain"
	"rag-gateway/internal/infra/httpclient"
)

// Brave calls the Brave Search API. Requires a subscription token.
type Brave struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewBrave(apiKey string, timeout time.Duration) *Brave {
	return &Brave{
		BaseURL: "https://api.search.brave.com/res/v1/web/search",
		APIKey:  apiKey,
		Client:  httpclient.NewPooledClient(timeout),
	}
}

func (b *Brave) name() domain.SearchEngine { return domain.EngineBrave }

var braveFreshness = map[domain.TimeRange]string{
	domain.TimeRangeDay:   "pd",
	domain.TimeRangeWeek:  "pw",
	domain.TimeRangeMonth: "pm",
	domain.TimeRangeYear:  "py",
}

type braveResponse struct {
	Web struct {
		Results []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			Description string `json:"description"`
			Age         string `json:"age"`
		} `json:"results"`
	} `json:"web"`
}

func (b *Brave) search(ctx context.Context, query string, maxResults int, timeRange domain.TimeRange) ([]domain.WebSearchResult, error) {
	if b.APIKey == "" {
		return nil, fmt.Errorf("brave: %w", domain.ErrNotConfigured)
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("count", strconv.Itoa(maxResults))
	if freshness, ok := braveFreshness[timeRange]; ok {
		params.Set("freshness", freshness)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", b.APIKey)

	resp, err := b.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("brave request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("brave returned status %d", resp.StatusCode)
	}

	var body braveResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode brave response: %w", err)
	}

	results := make([]domain.WebSearchResult, 0, len(body.Web.Results))
	for _, hit := range body.Web.Results {
		if len(results) >= maxResults {
			break
		}
		results = append(results, domain.WebSearchResult{
			Title:         hit.Title,
			URL:           hit.URL,
			Snippet:       hit.Description,
			PublishedDate: hit.Age,
			Source:        string(domain.EngineBrave),
		})
	}
	return results, nil
}
