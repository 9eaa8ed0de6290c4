package usecase

import (
	"fmt"
	"strings"

	"rag-gateway/internal/domain"
)

// noContextSentinel is what the generator sees when retrieval found
// nothing; the system prompt tells it to answer from general knowledge
// and say so.
const noContextSentinel = "No relevant context found."

// FormatContext renders retrieved items into the prompt context block.
// Items are grouped by source, with uploaded documents first so the
// model reads them before anything from the open web.
func FormatContext(items []domain.RetrievedItem) string {
	if len(items) == 0 {
		return noContextSentinel
	}

	var docs, web, sportsData []domain.RetrievedItem
	for _, item := range items {
		switch item.SourceType {
		case domain.SourceWebContent:
			web = append(web, item)
		case domain.SourceSportsData:
			sportsData = append(sportsData, item)
		default:
			docs = append(docs, item)
		}
	}

	var b strings.Builder
	if len(docs) > 0 {
		b.WriteString("=== UPLOADED DOCUMENTS (HIGHEST PRIORITY) ===\n")
		writeSection(&b, docs)
	}
	if len(web) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("=== WEB SEARCH RESULTS ===\n")
		writeSection(&b, web)
	}
	if len(sportsData) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("=== LIVE SPORTS DATA ===\n")
		writeSection(&b, sportsData)
	}

	b.WriteString("\n")
	writeInstructions(&b, len(docs), len(web) > 0)
	return b.String()
}

func writeSection(b *strings.Builder, items []domain.RetrievedItem) {
	for i, item := range items {
		title := item.OriginTitle
		if title == "" {
			title = "untitled"
		}
		fmt.Fprintf(b, "[%d] %s (relevance: %.0f%%)\n%s\n", i+1, title, item.Similarity*100, item.Content)
	}
}

// writeInstructions appends usage guidance matching what is actually in
// the context, so the model is never told about sections it cannot see.
func writeInstructions(b *strings.Builder, docCount int, hasWeb bool) {
	b.WriteString("Instructions:\n")
	if docCount > 0 {
		b.WriteString("- Prefer information from UPLOADED DOCUMENTS over any other source and cite them.\n")
		if hasWeb {
			b.WriteString("- Use web results only to supplement the uploaded documents with current context.\n")
		}
		if docCount >= 3 {
			b.WriteString("- Multiple uploaded documents match; the question should be well covered by them.\n")
		} else {
			b.WriteString("- If the uploaded documents do not fully answer the question, supplement from the other sections.\n")
		}
	} else if hasWeb {
		b.WriteString("- No uploaded documents matched; rely on the web search results as the source of current information.\n")
	}
	b.WriteString("- If the context does not answer the question, say so rather than guessing.")
}

// SourceRefs projects items into the provenance list returned to clients.
func SourceRefs(items []domain.RetrievedItem) []SourceRef {
	refs := make([]SourceRef, 0, len(items))
	for _, item := range items {
		ref := SourceRef{
			ID:         item.ID,
			Type:       string(item.SourceType),
			Title:      item.OriginTitle,
			Similarity: item.Similarity,
		}
		if item.SourceType == domain.SourceWebContent {
			ref.URL = item.OriginID
		}
		refs = append(refs, ref)
	}
	return refs
}
