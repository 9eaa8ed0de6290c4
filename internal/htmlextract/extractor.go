package htmlextract

import (
	"strings"
	"unicode/utf8"

	"codeberg.org/readeck/go-readability/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

const (
	// maxContentLength caps extracted text so one page cannot dominate
	// the context window.
	maxContentLength = 3000

	// minReadableLength is the acceptance floor for the readability pass.
	// Below this the extraction usually caught only a title or metadata.
	minReadableLength = 200
)

// contentSelectors are tried in priority order by the fallback strategy.
var contentSelectors = []string{
	"article[role='main']",
	"div[role='main'] article",
	"article",
	"[role='main']",
	"main article",
	"main .content",
	".post-content",
	".entry-content",
	".article-content",
	".story-content",
	".news-article",
	"main",
	".content",
	".main-content",
	"#content",
	".article-body",
	".story-body",
}

// Extract converts raw page HTML into plain readable text.
//
// Two strategies run in order: a readability pass that identifies the main
// article node, accepted when it yields at least minReadableLength
// characters, then a selector-based pass that scores candidate containers
// and keeps the best one. If neither produces anything acceptable the
// whole body text is used. The result is whitespace-normalized and
// hard-truncated. Extract never fails; malformed input degrades to a
// short (possibly empty) string.
func Extract(html string) string {
	trimmed := strings.TrimSpace(html)
	if trimmed == "" {
		return ""
	}
	if !strings.Contains(trimmed, "<") {
		return truncate(normalizeWhitespace(trimmed))
	}

	cleaned := removeNoise(trimmed)

	if text := extractReadable(cleaned); text != "" {
		return truncate(text)
	}

	if text := extractBestCandidate(cleaned); text != "" {
		return truncate(text)
	}

	return truncate(bodyText(cleaned))
}

// ExtractTitle pulls the page title: <title> first, then og:title, then
// the first <h1>. Returns empty when nothing is found.
func ExtractTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	if og, ok := doc.Find("meta[property='og:title']").First().Attr("content"); ok {
		if t := strings.TrimSpace(og); t != "" {
			return t
		}
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}

// removeNoise strips script/style/navigation/ads/social/comment regions
// before either strategy scores anything.
func removeNoise(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}

	doc.Find("script, style, noscript, nav, header, footer, aside, iframe, embed, object, video, audio, canvas").Remove()
	doc.Find("[class*='advertisement'], [class*='ads'], [class*='social'], [class*='share'], [class*='sidebar'], [class*='menu'], [class*='navigation'], [class*='related']").Remove()
	doc.Find("[class*='comment'], [id*='comment'], [class*='discussion'], [id*='discussion']").Remove()

	cleaned, err := doc.Html()
	if err != nil || cleaned == "" {
		return html
	}
	return cleaned
}

func extractReadable(html string) string {
	article, err := readability.FromReader(strings.NewReader(html), nil)
	if err != nil {
		return ""
	}

	var buf strings.Builder
	if err := article.RenderText(&buf); err != nil {
		return ""
	}
	text := normalizeWhitespace(buf.String())
	if len(text) < minReadableLength {
		return ""
	}
	return text
}

// extractBestCandidate scores each selector's first match and keeps the
// highest-scoring text longer than 100 characters.
func extractBestCandidate(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	var best string
	bestScore := 0
	for _, selector := range contentSelectors {
		sel := doc.Find(selector)
		if sel.Length() == 0 {
			continue
		}
		text := sel.First().Text()
		score := scoreContent(text)
		if score > bestScore && len(text) > 100 {
			best = text
			bestScore = score
		}
	}

	normalized := normalizeWhitespace(best)
	if len(normalized) < minReadableLength {
		return ""
	}
	return normalized
}

// scoreContent is the fallback heuristic: length and sentence-count
// bonuses, a repetition penalty via unique-word ratio, and a paragraph
// structure bonus.
func scoreContent(text string) int {
	score := 0

	if len(text) > 500 {
		score += 10
	}
	if len(text) > 1000 {
		score += 10
	}
	if len(text) > 2000 {
		score += 5
	}

	sentences := 0
	for _, s := range strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	}) {
		if len(strings.TrimSpace(s)) > 10 {
			sentences++
		}
	}
	if sentences > 20 {
		sentences = 20
	}
	score += sentences

	words := strings.Fields(strings.ToLower(text))
	if len(words) > 0 {
		unique := make(map[string]struct{}, len(words))
		for _, w := range words {
			unique[w] = struct{}{}
		}
		if float64(len(unique))/float64(len(words)) < 0.3 {
			score -= 10
		}
	}

	paragraphs := 0
	for _, p := range strings.Split(text, "\n") {
		if len(strings.TrimSpace(p)) > 50 {
			paragraphs++
		}
	}
	bonus := paragraphs * 2
	if bonus > 10 {
		bonus = 10
	}
	score += bonus

	return score
}

func bodyText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return StripTags(html)
	}
	return normalizeWhitespace(doc.Find("body").Text())
}

// StripTags removes all HTML tags and returns plain text.
func StripTags(raw string) string {
	p := bluemonday.StrictPolicy()
	return normalizeWhitespace(p.Sanitize(raw))
}

func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string) string {
	if len(s) <= maxContentLength {
		return s
	}
	cut := maxContentLength
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
