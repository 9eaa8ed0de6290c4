package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"rag-gateway/internal/domain"
)

// Retrieval tier constants. Documents dominate the final prompt because
// they carry real similarity scores while web supplements get a capped
// proxy; the tiers below decide when supplements are consulted at all.
const (
	// thresholdFloor is the lowest threshold the primary store query
	// runs at, whatever the caller asked for.
	thresholdFloor = 0.2

	// highQualityThreshold marks items good enough to satisfy the limit
	// without any backfill.
	highQualityThreshold = 0.25

	// floorThreshold admits weaker document matches as backfill once the
	// high-quality tier has won.
	floorThreshold = 0.15

	// cachedWebSimilarity and freshWebSimilarity are the confidence
	// proxies assigned to web supplements. Cached pages rank slightly
	// higher: they were relevant enough to be fetched before.
	cachedWebSimilarity = 0.7
	freshWebSimilarity  = 0.6

	// expandedThresholdFloor bounds how far the relaxed second pass drops.
	expandedThresholdFloor = 0.1
)

// RetrieveContextInput defines the parameters for one retrieval pass.
type RetrieveContextInput struct {
	Query          string
	Limit          int
	Threshold      float64
	AllowWebSearch bool
	SearchEngine   domain.SearchEngine
	BypassCache    bool
}

// RetrieveContextOutput carries the ranked context selection.
type RetrieveContextOutput struct {
	Items         []domain.RetrievedItem
	UsedWebSearch bool
	Degraded      bool
}

// RetrieveContextUsecase selects the context items for a chat turn.
type RetrieveContextUsecase interface {
	Execute(ctx context.Context, input RetrieveContextInput) (*RetrieveContextOutput, error)
}

type retrieveContextUsecase struct {
	store    domain.VectorStore
	searcher domain.WebSearcher
	log      *slog.Logger
	webRatio float64
}

// NewRetrieveContextUsecase creates the document-priority retriever.
// webRatio is the fraction of the limit requested from web search during
// supplementation; zero or negative selects the 0.4 default.
func NewRetrieveContextUsecase(store domain.VectorStore, searcher domain.WebSearcher, log *slog.Logger, webRatio float64) RetrieveContextUsecase {
	if webRatio <= 0 {
		webRatio = 0.4
	}
	return &retrieveContextUsecase{store: store, searcher: searcher, log: log, webRatio: webRatio}
}

// Execute runs document-priority retrieval:
//
//  1. One unified vector search over documents and structured data at
//     max(threshold, 0.2) for up to limit candidates.
//  2. High-quality matches fill the limit when enough of them exist,
//     with floor-grade matches backfilling the free slots; otherwise the
//     selection is every candidate clearing the caller's threshold.
//  3. When fewer than half the limit is selected, web search supplements
//     with proxy-scored results (only if the caller allowed web search
//     or fewer than two items were found), and a relaxed re-query picks
//     up document matches the first pass rejected if still short.
//
// The unified search failing degrades to a single-pass chunk search
// rather than failing the turn.
func (u *retrieveContextUsecase) Execute(ctx context.Context, input RetrieveContextInput) (*RetrieveContextOutput, error) {
	if input.Query == "" {
		return nil, fmt.Errorf("query is empty")
	}
	if input.Limit <= 0 {
		input.Limit = 5
	}

	candidates, err := u.store.UnifiedSearch(ctx, input.Query, domain.VectorSearchOptions{
		MatchThreshold:    math.Max(input.Threshold, thresholdFloor),
		MatchCount:        input.Limit,
		IncludeChunks:     true,
		IncludeStructured: true,
	})
	if err != nil {
		u.log.Warn("unified search failed, degrading to single-pass search",
			slog.String("error", err.Error()))
		return u.degradedSearch(ctx, input.Query, input.Limit, input.Threshold)
	}

	selected := selectByQuality(candidates, input.Limit, input.Threshold)

	out := &RetrieveContextOutput{}
	if len(selected) < sufficiencyCount(input.Limit) {
		selected, out.UsedWebSearch = u.supplement(ctx, input, selected)
	}

	domain.SortBySimilarity(selected)
	if len(selected) > input.Limit {
		selected = selected[:input.Limit]
	}
	out.Items = selected

	u.log.Info("context retrieved",
		slog.Int("items", len(out.Items)),
		slog.Bool("web_supplemented", out.UsedWebSearch))
	return out, nil
}

// sufficiencyCount is the minimum selection size that skips
// supplementation: half the limit, rounded up.
func sufficiencyCount(limit int) int {
	return int(math.Ceil(float64(limit) * 0.5))
}

// selectByQuality keeps high-quality matches when they can cover 60% of
// the limit, backfilling free slots with floor-grade matches. Otherwise
// the selection is every candidate clearing the caller's threshold,
// however few that leaves.
func selectByQuality(candidates []domain.RetrievedItem, limit int, threshold float64) []domain.RetrievedItem {
	var high, low []domain.RetrievedItem
	for _, item := range candidates {
		if item.Similarity >= highQualityThreshold {
			high = append(high, item)
		} else if item.Similarity >= floorThreshold {
			low = append(low, item)
		}
	}

	needed := int(math.Ceil(float64(limit) * 0.6))
	if len(high) >= needed {
		selected := high
		if len(selected) > limit {
			selected = selected[:limit]
		}
		for _, item := range low {
			if len(selected) >= limit {
				break
			}
			selected = append(selected, item)
		}
		return selected
	}

	var selected []domain.RetrievedItem
	for _, item := range candidates {
		if item.Similarity >= threshold {
			selected = append(selected, item)
		}
	}
	return selected
}

// supplement adds web results and relaxed-threshold document matches when
// the primary selection is too thin. The web step runs only when the
// caller allowed it or fewer than two items were found; the expanded
// document pass runs only if the selection is still below sufficiency
// afterwards. Both steps are best-effort and capped to free slots.
func (u *retrieveContextUsecase) supplement(ctx context.Context, input RetrieveContextInput, selected []domain.RetrievedItem) ([]domain.RetrievedItem, bool) {
	usedWeb := false
	if input.AllowWebSearch || len(selected) < 2 {
		webCount := int(math.Ceil(float64(input.Limit) * u.webRatio))
		webResults := domain.BestEffort(ctx, u.log, "web supplement search", nil,
			func(ctx context.Context) ([]domain.WebSearchResult, error) {
				return u.searcher.Search(ctx, domain.WebSearchOptions{
					Query:          input.Query,
					MaxResults:     webCount,
					IncludeContent: true,
					SearchEngine:   input.SearchEngine,
					BypassCache:    input.BypassCache,
				})
			})
		free := input.Limit - len(selected)
		for i, res := range webResults {
			if i >= free {
				break
			}
			selected = append(selected, webResultToItem(res))
			usedWeb = true
		}
	}

	if len(selected) >= sufficiencyCount(input.Limit) {
		return selected, usedWeb
	}

	excludeIDs := make([]string, 0, len(selected))
	for _, item := range selected {
		if item.SourceType != domain.SourceWebContent {
			excludeIDs = append(excludeIDs, item.ID)
		}
	}

	expanded := domain.BestEffort(ctx, u.log, "expanded document search", nil,
		func(ctx context.Context) ([]domain.RetrievedItem, error) {
			return u.store.ExpandedSearch(ctx, input.Query, domain.VectorSearchOptions{
				MatchThreshold:    math.Max(input.Threshold*0.5, expandedThresholdFloor),
				MatchCount:        input.Limit * 2,
				IncludeChunks:     true,
				IncludeStructured: true,
			}, excludeIDs)
		})
	free := input.Limit - len(selected)
	for i, item := range expanded {
		if i >= free {
			break
		}
		selected = append(selected, item)
	}
	return selected, usedWeb
}

func (u *retrieveContextUsecase) degradedSearch(ctx context.Context, query string, limit int, threshold float64) (*RetrieveContextOutput, error) {
	items, err := u.store.SimilaritySearch(ctx, query, limit, threshold)
	if err != nil {
		return nil, fmt.Errorf("degraded search failed: %w", err)
	}
	domain.SortBySimilarity(items)
	return &RetrieveContextOutput{Items: items, Degraded: true}, nil
}

func webResultToItem(res domain.WebSearchResult) domain.RetrievedItem {
	similarity := freshWebSimilarity
	if res.Cached {
		similarity = cachedWebSimilarity
	}
	content := res.Content
	if content == "" {
		content = res.Snippet
	}
	return domain.RetrievedItem{
		ID:           res.URL,
		Content:      content,
		Similarity:   similarity,
		SourceType:   domain.SourceWebContent,
		OriginID:     res.URL,
		OriginTitle:  res.Title,
		PositionHint: -1,
	}
}
