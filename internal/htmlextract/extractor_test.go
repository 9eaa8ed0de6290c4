package htmlextract

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func articlePage(paragraphs int) string {
	var b strings.Builder
	b.WriteString(`<html><head><title>Season Preview</title></head><body>`)
	b.WriteString(`<nav>Home | Scores | <a href="/shop">Shop</a></nav>`)
	b.WriteString(`<div class="advertisement">Buy season tickets now!</div>`)
	b.WriteString(`<article>`)
	for i := 0; i < paragraphs; i++ {
		fmt.Fprintf(&b, `<p>Paragraph %d discusses the team's rotation depth, recent trades and how the coaching staff plans to manage minutes across a compressed schedule this season.</p>`, i)
	}
	b.WriteString(`</article>`)
	b.WriteString(`<footer>Copyright. All rights reserved.</footer>`)
	b.WriteString(`</body></html>`)
	return b.String()
}

func TestExtract_ArticleContent(t *testing.T) {
	out := Extract(articlePage(6))

	assert.Contains(t, out, "rotation depth")
	assert.NotContains(t, out, "Buy season tickets")
	assert.NotContains(t, out, "All rights reserved")
}

func TestExtract_CapsLength(t *testing.T) {
	out := Extract(articlePage(200))

	assert.LessOrEqual(t, len(out), 3000)
	assert.NotEmpty(t, out)
}

func TestExtract_CapDoesNotSplitRunes(t *testing.T) {
	// One leading ASCII byte puts the cap mid-rune for the 2-byte runes
	// that follow.
	out := Extract("x" + strings.Repeat("ä", 2000))

	assert.LessOrEqual(t, len(out), 3000)
	assert.True(t, utf8.ValidString(out))
}

func TestExtract_PlainTextPassthrough(t *testing.T) {
	out := Extract("  just   some\nplain text  ")
	assert.Equal(t, "just some plain text", out)
}

func TestExtract_EmptyAndMalformed(t *testing.T) {
	assert.Equal(t, "", Extract(""))
	assert.Equal(t, "", Extract("   "))

	// Malformed markup degrades, never panics.
	out := Extract("<div><p>broken<div></span>")
	assert.NotContains(t, out, "<")
}

func TestExtract_FallsBackToBodyText(t *testing.T) {
	html := `<html><body><div>short page with no article container but enough words to keep</div></body></html>`
	out := Extract(html)
	assert.Contains(t, out, "short page")
}

func TestExtractTitle(t *testing.T) {
	assert.Equal(t, "From Title Tag",
		ExtractTitle(`<html><head><title>From Title Tag</title></head><body><h1>H1</h1></body></html>`))

	assert.Equal(t, "From OG",
		ExtractTitle(`<html><head><meta property="og:title" content="From OG"></head><body><h1>H1</h1></body></html>`))

	assert.Equal(t, "From H1",
		ExtractTitle(`<html><body><h1>From H1</h1></body></html>`))

	assert.Equal(t, "", ExtractTitle(`<html><body><p>nothing</p></body></html>`))
}

func TestScoreContent_PrefersProse(t *testing.T) {
	prose := strings.Repeat("The offense runs through the second unit. Their perimeter defense collapsed late. ", 20)
	spam := strings.Repeat("buy buy buy buy ", 100)

	assert.Greater(t, scoreContent(prose), scoreContent(spam))
}

func TestStripTags(t *testing.T) {
	assert.Equal(t, "hello world", StripTags(`<p>hello <b>world</b></p>`))
}
