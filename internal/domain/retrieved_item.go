package domain

import "sort"

// SourceType discriminates where a retrieved context item came from.
// Items from upstream SDKs are converted to this tagged shape at the
// ingestion boundary and never passed through unchecked.
type SourceType string

const (
	SourceDocument   SourceType = "document"
	SourceWebContent SourceType = "web_content"
	SourceSportsData SourceType = "sports_data"
)

// RetrievedItem is a unit of context handed to the generator. It exists
// only for the duration of one chat turn and is never persisted.
//
// Similarity is a float in [0,1]. For document items it is a real cosine
// similarity; for web and sports items it is an assigned confidence proxy.
// The values are comparable within one retrieval batch for sorting, which
// is the only guarantee callers may rely on.
type RetrievedItem struct {
	ID           string
	Content      string
	Similarity   float64
	SourceType   SourceType
	OriginID     string
	OriginTitle  string
	PositionHint int // chunk index within the origin document, -1 if not applicable
}

// SortBySimilarity orders items by similarity descending, in place.
// The sort is stable so engine-provided ordering survives ties.
func SortBySimilarity(items []RetrievedItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Similarity > items[j].Similarity
	})
}
