package internal

import (
	"fmt"

	"github.com/ledongthuc/pdf"
)

// extractPlainText is the degraded whole-document path: one text string per
// page, no image or table annotations. A page that yields no text becomes an
// empty string, never an error.
func extractPlainText(path string) ([]string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer f.Close()

	pages := make([]string, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			text = ""
		}
		pages = append(pages, text)
	}
	return pages, nil
}
