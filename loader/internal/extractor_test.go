package internal

import (
	"testing"

	"pdfrag/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridFromRowsDropsBlankRows(t *testing.T) {
	grid := gridFromRows([][]string{
		{"a", "b"},
		{"", "", ""},
		{"c", "d"},
	})

	require.Len(t, grid.Rows, 2)
	assert.Equal(t, []string{"a", "b"}, grid.Rows[0])
	assert.Equal(t, []string{"c", "d"}, grid.Rows[1])
}

func TestGridFromRowsKeepsPartiallyBlankRows(t *testing.T) {
	grid := gridFromRows([][]string{
		{"", "x"},
	})

	require.Len(t, grid.Rows, 1)
	assert.Equal(t, []string{"", "x"}, grid.Rows[0])
}

func TestPotentialTableSectionCapturesNumericLines(t *testing.T) {
	text := "Model evaluation summary\nAccuracy: 95%, Precision: 90%\nSome discussion follows."

	section := potentialTableSection(text)

	assert.Contains(t, section, "[POTENTIAL_TABLE_SECTION]\nAccuracy: 95%, Precision: 90%\n[/POTENTIAL_TABLE_SECTION]")
}

func TestPotentialTableSectionFirstMatchWins(t *testing.T) {
	text := "Results overview\nAccuracy: 95%\nmiddle text\nmore middle text\nmore filler here\nPerformance details\nRecall: 80%"

	section := potentialTableSection(text)

	assert.Contains(t, section, "Accuracy: 95%")
	assert.NotContains(t, section, "Recall: 80%")
}

func TestPotentialTableSectionRequiresDigitAndPercent(t *testing.T) {
	assert.Empty(t, potentialTableSection("The evaluation went well.\nNo numbers here."))
	assert.Empty(t, potentialTableSection("accuracy was 95 out of 100"))
}

func TestPotentialTableSectionWindowIsTwoLines(t *testing.T) {
	// the numeric line sits three lines below the keyword, outside the window
	text := "evaluation\nfiller\nfiller\n95% here"

	assert.Empty(t, potentialTableSection(text))
}

func TestBuildPageAppendsPotentialTableAnnotation(t *testing.T) {
	text := "Accuracy: 95%, Precision: 90%"

	page := buildPage(0, text, nil, nil)

	assert.Equal(t, text+"\n\n[POTENTIAL_TABLE_SECTION]\nAccuracy: 95%, Precision: 90%\n[/POTENTIAL_TABLE_SECTION]\n\n", page.Content)
	assert.True(t, page.Meta.HasTableKeywords)
	assert.Zero(t, page.Meta.TablesFound)
}

func TestBuildPageSkipsPotentialTableWhenStructuredTablesExist(t *testing.T) {
	text := "Accuracy: 95%"
	tables := []types.TableGrid{{Rows: [][]string{{"metric", "value"}, {"accuracy", "95%"}}}}

	page := buildPage(0, text, nil, tables)

	assert.NotContains(t, page.Content, "[POTENTIAL_TABLE_SECTION]")
	assert.Contains(t, page.Content, "[TABLE 1]\nmetric | value\naccuracy | 95%\n[/TABLE]")
	assert.Equal(t, 1, page.Meta.TablesFound)
}

func TestBuildPageCountsImages(t *testing.T) {
	images := []types.ImageDescriptor{
		{Filename: "a_page1_img1.png", Width: 640, Height: 480, Path: "images/a_page1_img1.png"},
		{Filename: "a_page1_img2_metadata_only", Width: 100, Height: 50},
	}

	page := buildPage(0, "plain text", images, nil)

	assert.Equal(t, 2, page.Meta.ImagesFound)
	assert.Equal(t, 1, page.Meta.ImagesExtracted)
	assert.Contains(t, page.Content, "Image: a_page1_img1.png (640x480 pixels) - Saved to: images/a_page1_img1.png")
	assert.Contains(t, page.Content, "Image detected: 100x50 pixels (metadata only)")
}

func TestSerializeImagesEmpty(t *testing.T) {
	assert.Empty(t, serializeImages(nil))
}

func TestContainsTableKeywordCaseInsensitive(t *testing.T) {
	assert.True(t, containsTableKeyword("F1-Score comparison"))
	assert.True(t, containsTableKeyword("overall PERFORMANCE"))
	assert.False(t, containsTableKeyword("nothing relevant"))
}

func TestDocumentBase(t *testing.T) {
	assert.Equal(t, "report", documentBase("content/report.pdf"))
	assert.Equal(t, "archive.v2", documentBase("archive.v2.PDF"))
}
