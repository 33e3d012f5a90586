package internal

import (
	"strings"
	"testing"

	"pdfrag/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTextShortContent(t *testing.T) {
	pieces := splitText("short page content", 1000, 100)
	require.Len(t, pieces, 1)
	assert.Equal(t, "short page content", pieces[0])
}

func TestSplitTextEmptyContent(t *testing.T) {
	assert.Nil(t, splitText("", 1000, 100))
	assert.Nil(t, splitText("   \n\n  ", 1000, 100))
}

func TestSplitTextRespectsSizeLimit(t *testing.T) {
	text := strings.Repeat("lorem ipsum dolor sit amet. ", 200)
	pieces := splitText(text, 1000, 100)

	require.Greater(t, len(pieces), 1)
	for _, p := range pieces {
		assert.LessOrEqual(t, len(p), 1000)
	}
}

func TestSplitTextOverlapsConsecutiveChunks(t *testing.T) {
	text := strings.Repeat("alpha beta gamma delta ", 120)
	pieces := splitText(text, 500, 100)

	require.Greater(t, len(pieces), 1)
	for i := 1; i < len(pieces); i++ {
		head := pieces[i]
		if len(head) > 50 {
			head = head[:50]
		}
		assert.Contains(t, pieces[i-1], head, "chunk %d should start inside chunk %d", i, i-1)
	}
}

func TestSplitTextPrefersParagraphBreaks(t *testing.T) {
	para := strings.Repeat("sentence one. sentence two. ", 20) // ~560 chars
	text := para + "\n\n" + para

	pieces := splitText(text, 1000, 0)

	require.Greater(t, len(pieces), 1)
	// the first cut lands on the paragraph break, not mid-sentence
	assert.Equal(t, strings.TrimSpace(para), pieces[0])
}

func TestSplitTextNeverCutsInsideAnnotationBlock(t *testing.T) {
	filler := strings.Repeat("filler text for the page body. ", 26) // ~800 chars
	block := "\n\n[IMAGES ON THIS PAGE]\n" +
		"Image: report_page1_img1.png (640x480 pixels) - Saved to: images/report_page1_img1.png\n" +
		"[/IMAGES]\n\n"
	tail := strings.Repeat("trailing commentary after the image section. ", 10)
	text := filler + block + tail

	pieces := splitText(text, 1000, 100)

	require.Greater(t, len(pieces), 1)
	for _, p := range pieces {
		opens := strings.Contains(p, "[IMAGES ON THIS PAGE]")
		closes := strings.Contains(p, "[/IMAGES]")
		assert.Equal(t, opens, closes, "chunk boundary fell inside the image section: %q", p)
	}
}

func TestSplitPagesCarriesPageAssociation(t *testing.T) {
	pages := []types.PageContent{
		{Page: 0, Content: "first page text", Meta: types.PageMeta{TablesFound: 1}},
		{Page: 1, Content: "second page text"},
	}

	chunks := SplitPages("docs/a.pdf", pages, 1000, 100)

	require.Len(t, chunks, 2)
	assert.Equal(t, "docs/a.pdf", chunks[0].Source)
	assert.Equal(t, 0, chunks[0].Page)
	assert.Equal(t, 1, chunks[0].Meta.TablesFound)
	assert.Equal(t, 1, chunks[1].Page)
}

func TestSplitPagesSkipsBlankPages(t *testing.T) {
	pages := []types.PageContent{
		{Page: 0, Content: ""},
		{Page: 1, Content: "real content"},
	}

	chunks := SplitPages("docs/a.pdf", pages, 1000, 100)

	require.Len(t, chunks, 1)
	assert.Equal(t, 1, chunks[0].Page)
}
