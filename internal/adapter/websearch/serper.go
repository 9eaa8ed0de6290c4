package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"rag-gateway/internal/domain"
	"rag-gateway/internal/infra/httpclient"
)

// Serper calls the serper.dev Google search proxy. Requires an API key.
type Serper struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func NewSerper(apiKey string, timeout time.Duration) *Serper {
	return &Serper{
		BaseURL: "https://google.serper.dev/search",
		APIKey:  apiKey,
		Client:  httpclient.NewPooledClient(timeout),
	}
}

func (s *Serper) name() domain.SearchEngine { return domain.EngineSerper }

var serperFreshness = map[domain.TimeRange]string{
	domain.TimeRangeDay:   "qdr:d",
	domain.TimeRangeWeek:  "qdr:w",
	domain.TimeRangeMonth: "qdr:m",
	domain.TimeRangeYear:  "qdr:y",
}

type serperRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
	TBS string `json:"tbs,omitempty"`
}

type serperResponse struct {
	Organic []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
		Date    string `json:"date"`
	} `json:"organic"`
}

func (s *Serper) search(ctx context.Context, query string, maxResults int, timeRange domain.TimeRange) ([]domain.WebSearchResult, error) {
	if s.APIKey == "" {
		return nil, fmt.Errorf("serper: %w", domain.ErrNotConfigured)
	}

	payload, err := json.Marshal(serperRequest{
		Q:   query,
		Num: maxResults,
		TBS: serperFreshness[timeRange],
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", s.APIKey)

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serper request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serper returned status %d", resp.StatusCode)
	}

	var body serperResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode serper response: %w", err)
	}

	results := make([]domain.WebSearchResult, 0, len(body.Organic))
	for _, hit := range body.Organic {
		if len(results) >= maxResults {
			break
		}
		results = append(results, domain.WebSearchResult{
			Title:         hit.Title,
			URL:           hit.Link,
			Snippet:       hit.Snippet,
			PublishedDate: hit.Date,
			Source:        string(domain.EngineSerper),
		})
	}
	return results, nil
}
