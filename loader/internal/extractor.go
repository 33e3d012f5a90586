package internal

import (
	"fmt"
	"log"
	"strings"

	"pdfrag/types"

	"github.com/tsawler/tabula"
	tabmodel "github.com/tsawler/tabula/model"
)

// tableKeywords mark pages likely to contain evaluation tables that the
// structured detector missed.
var tableKeywords = []string{
	"accuracy", "precision", "recall", "f1-score", "results", "evaluation", "performance",
}

// Extraction is the result of processing one PDF. Degraded means structured
// extraction failed for the whole document and plain text was used instead;
// ImagesDegraded means pixel extraction was unavailable and images were
// recorded metadata-only.
type Extraction struct {
	Source         string
	Pages          []types.PageContent
	Degraded       bool
	DegradedReason string
	ImagesDegraded bool
}

// ExtractDocument turns one PDF into an ordered sequence of per-page records.
// Structured extraction failures degrade the whole document to plain text
// rather than producing nothing for the file.
func ExtractDocument(path, imagesDir string) (*Extraction, error) {
	doc, warnings, err := tabula.Open(path).Document()
	if err != nil {
		log.Printf("[EXTRACT] structured extraction failed for %s: %v, falling back to plain text", path, err)
		return extractFallback(path, err)
	}
	if len(warnings) > 0 {
		log.Printf("[EXTRACT] %s: %s", path, tabula.FormatWarnings(warnings))
	}

	images, imagesDegraded := extractImages(path, imagesDir, doc)

	pages := make([]types.PageContent, 0, len(doc.Pages))
	for i, p := range doc.Pages {
		pages = append(pages, buildPage(i, pageText(p), images[i], pageGrids(p)))
	}

	return &Extraction{
		Source:         path,
		Pages:          pages,
		ImagesDegraded: imagesDegraded,
	}, nil
}

func extractFallback(path string, cause error) (*Extraction, error) {
	texts, err := extractPlainText(path)
	if err != nil {
		return nil, fmt.Errorf("structured extraction failed (%v) and plain-text fallback failed: %w", cause, err)
	}

	pages := make([]types.PageContent, 0, len(texts))
	for i, text := range texts {
		pages = append(pages, types.PageContent{
			Page:    i,
			Text:    text,
			Content: text,
		})
	}

	return &Extraction{
		Source:         path,
		Pages:          pages,
		Degraded:       true,
		DegradedReason: cause.Error(),
	}, nil
}

// buildPage assembles one page's content string: text, then the image
// section, then table sections, then at most one potential-table section
// when no structured table was found but the text mentions evaluation terms.
func buildPage(idx int, text string, images []types.ImageDescriptor, tables []types.TableGrid) types.PageContent {
	hasKeywords := containsTableKeyword(text)

	tableContent := serializeTables(tables)
	if len(tables) == 0 && hasKeywords {
		tableContent += potentialTableSection(text)
	}

	extracted := 0
	for _, img := range images {
		if img.Saved() {
			extracted++
		}
	}

	return types.PageContent{
		Page:    idx,
		Text:    text,
		Images:  images,
		Tables:  tables,
		Content: text + serializeImages(images) + tableContent,
		Meta: types.PageMeta{
			ImagesFound:      len(images),
			ImagesExtracted:  extracted,
			TablesFound:      len(tables),
			HasTableKeywords: hasKeywords,
		},
	}
}

func pageText(p *tabmodel.Page) string {
	if p == nil {
		return ""
	}
	return p.ExtractText()
}

// pageGrids converts detected tables to cell grids, dropping rows whose
// cells are all blank while preserving the order of kept rows.
func pageGrids(p *tabmodel.Page) []types.TableGrid {
	if p == nil {
		return nil
	}

	var grids []types.TableGrid
	for _, t := range p.ExtractTables() {
		grids = append(grids, gridFromRows(cellTexts(t)))
	}
	return grids
}

func cellTexts(t *tabmodel.Table) [][]string {
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = strings.TrimSpace(cell.Text)
		}
		rows[i] = cells
	}
	return rows
}

func gridFromRows(rows [][]string) types.TableGrid {
	var kept [][]string
	for _, row := range rows {
		blank := true
		for _, cell := range row {
			if cell != "" {
				blank = false
				break
			}
		}
		if !blank {
			kept = append(kept, row)
		}
	}
	return types.TableGrid{Rows: kept}
}

func serializeImages(images []types.ImageDescriptor) string {
	if len(images) == 0 {
		return ""
	}

	descs := make([]string, len(images))
	for i, img := range images {
		if img.Saved() {
			descs[i] = fmt.Sprintf("Image: %s (%dx%d pixels) - Saved to: %s", img.Filename, img.Width, img.Height, img.Path)
		} else {
			descs[i] = fmt.Sprintf("Image detected: %dx%d pixels (metadata only)", img.Width, img.Height)
		}
	}

	return "\n\n[IMAGES ON THIS PAGE]\n" + strings.Join(descs, "\n") + "\n[/IMAGES]\n\n"
}

func serializeTables(tables []types.TableGrid) string {
	var b strings.Builder
	for i, t := range tables {
		b.WriteString(fmt.Sprintf("\n\n[TABLE %d]\n", i+1))
		for _, row := range t.Rows {
			b.WriteString(strings.Join(row, " | "))
			b.WriteString("\n")
		}
		b.WriteString("[/TABLE]\n\n")
	}
	return b.String()
}

func containsTableKeyword(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range tableKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// potentialTableSection scans ±2 lines around each keyword occurrence for
// lines holding both a digit and a percent sign. The first qualifying window
// wins and scanning stops; this mirrors the source behavior exactly.
func potentialTableSection(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lower := strings.ToLower(line)
		match := false
		for _, kw := range tableKeywords {
			if strings.Contains(lower, kw) {
				match = true
				break
			}
		}
		if !match {
			continue
		}

		start := i - 2
		if start < 0 {
			start = 0
		}
		end := i + 3
		if end > len(lines) {
			end = len(lines)
		}

		var numeric []string
		for _, l := range lines[start:end] {
			if strings.ContainsAny(l, "0123456789") && strings.Contains(l, "%") {
				numeric = append(numeric, l)
			}
		}

		if len(numeric) > 0 {
			return "\n\n[POTENTIAL_TABLE_SECTION]\n" + strings.Join(numeric, "\n") + "\n[/POTENTIAL_TABLE_SECTION]\n\n"
		}
	}
	return ""
}
