package internal

import (
	"strings"

	"pdfrag/types"
)

// separators order the split-boundary preference, highest priority first.
// The annotation end markers come before everything else so a chunk boundary
// never lands inside an image, table, or potential-table section as long as
// any larger boundary is available.
var separators = []string{
	"\n[/IMAGES]\n",
	"\n[/TABLE]\n",
	"\n[/POTENTIAL_TABLE_SECTION]\n",
	"\n\n",
	"\n",
	". ",
	" ",
}

// SplitPages splits every page's assembled content into chunks of at most
// size characters with overlap characters shared between consecutive chunks
// of the same page. Page and document association plus the page meta ride on
// every chunk; positions and identifiers are assigned afterwards.
func SplitPages(source string, pages []types.PageContent, size, overlap int) []types.Chunk {
	var chunks []types.Chunk
	for _, page := range pages {
		for _, piece := range splitText(page.Content, size, overlap) {
			chunks = append(chunks, types.Chunk{
				Source:  source,
				Page:    page.Page,
				Content: piece,
				Meta:    page.Meta,
			})
		}
	}
	return chunks
}

func splitText(text string, size, overlap int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if size <= 0 {
		return []string{strings.TrimSpace(text)}
	}
	if overlap >= size {
		overlap = size / 2
	}

	var pieces []string
	start := 0
	for start < len(text) {
		if len(text)-start <= size {
			appendPiece(&pieces, text[start:])
			break
		}

		cut := findSplit(text, start, start+size)
		appendPiece(&pieces, text[start:cut])

		next := cut - overlap
		if next <= start || insideAnnotationBlock(text, next) {
			// the overlap would stall the walk or restart mid-annotation;
			// advance without it
			next = cut
		}
		start = next
	}
	return pieces
}

// findSplit picks the best boundary in text[start:limit], walking the
// separator preference order and taking the last occurrence of the first
// separator kind present. Character position limit is the last resort.
func findSplit(text string, start, limit int) int {
	window := text[start:limit]
	for _, sep := range separators {
		idx := strings.LastIndex(window, sep)
		if idx <= 0 {
			continue
		}
		return start + idx + len(sep)
	}
	return limit
}

var (
	blockOpeners = []string{"[IMAGES ON THIS PAGE]", "[TABLE", "[POTENTIAL_TABLE_SECTION]"}
	blockClosers = []string{"[/IMAGES]", "[/TABLE]", "[/POTENTIAL_TABLE_SECTION]"}
)

// insideAnnotationBlock reports whether pos sits inside an annotation
// section, meaning the nearest opener before pos has no closer between them.
func insideAnnotationBlock(text string, pos int) bool {
	prefix := text[:pos]

	open := -1
	for _, m := range blockOpeners {
		if i := strings.LastIndex(prefix, m); i > open {
			open = i
		}
	}
	if open == -1 {
		return false
	}

	closed := -1
	for _, m := range blockClosers {
		if i := strings.LastIndex(prefix, m); i > closed {
			closed = i
		}
	}
	return closed < open
}

func appendPiece(pieces *[]string, piece string) {
	piece = strings.TrimSpace(piece)
	if piece != "" {
		*pieces = append(*pieces, piece)
	}
}
