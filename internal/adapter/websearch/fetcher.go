package websearch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"rag-gateway/internal/htmlextract"
	"rag-gateway/internal/infra/httpclient"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

// maxFetchBytes bounds how much of a page body is read. Article content
// lives near the top; the rest is not worth the bandwidth.
const maxFetchBytes = 2 << 20

// Page is fetched and extracted page content.
type Page struct {
	Title   string
	Content string
}

// ContentFetcher retrieves a URL and extracts its readable text.
type ContentFetcher interface {
	Fetch(ctx context.Context, pageURL string) (Page, error)
}

// Fetcher downloads pages politely: one request per host per interval,
// with an in-process memo so repeated URLs inside the TTL window skip the
// network entirely.
type Fetcher struct {
	client       *http.Client
	hostInterval time.Duration
	memo         *lru.LRU[string, Page]

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func NewFetcher(timeout, hostInterval time.Duration, memoSize int) *Fetcher {
	if memoSize <= 0 {
		memoSize = 256
	}
	return &Fetcher{
		client:       httpclient.NewPooledClient(timeout),
		hostInterval: hostInterval,
		memo:         lru.NewLRU[string, Page](memoSize, nil, 10*time.Minute),
		limiters:     make(map[string]*rate.Limiter),
	}
}

func (f *Fetcher) limiterFor(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()

	limiter, ok := f.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Every(f.hostInterval), 1)
		f.limiters[host] = limiter
	}
	return limiter
}

func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (Page, error) {
	if page, ok := f.memo.Get(pageURL); ok {
		return page, nil
	}

	parsed, err := url.Parse(pageURL)
	if err != nil || parsed.Host == "" {
		return Page{}, fmt.Errorf("invalid url %q", pageURL)
	}

	if f.hostInterval > 0 {
		if err := f.limiterFor(parsed.Host).Wait(ctx); err != nil {
			return Page{}, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return Page{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; rag-gateway/1.0)")
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return Page{}, fmt.Errorf("failed to fetch %s: %w", parsed.Host, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Page{}, fmt.Errorf("fetch %s returned status %d", parsed.Host, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return Page{}, fmt.Errorf("failed to read body: %w", err)
	}

	html := string(body)
	page := Page{
		Title:   htmlextract.ExtractTitle(html),
		Content: htmlextract.Extract(html),
	}
	f.memo.Add(pageURL, page)
	return page, nil
}

var _ ContentFetcher = (*Fetcher)(nil)
