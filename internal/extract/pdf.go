package extract

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/sevap8/ai-platform/internal/chunking"
)

// loadPDF extracts text page by page, one record per page with a
// zero-based page number. Pages that fail text extraction become empty
// records rather than shifting the numbering of later pages.
func loadPDF(path, source string) ([]chunking.Record, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF %s: %w", source, err)
	}
	defer f.Close()

	records := make([]chunking.Record, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		text := ""
		if !page.V.IsNull() {
			fonts := make(map[string]*pdf.Font)
			if extracted, err := page.GetPlainText(fonts); err == nil {
				text = normalizePageText(extracted)
			}
		}
		records = append(records, chunking.Record{
			Text:   text,
			Page:   chunking.PageOf(i - 1),
			Source: source,
		})
	}
	return records, nil
}

// normalizePageText collapses the double newlines the PDF text layer
// produces between lines, so paragraph boundaries added later by the
// merge pass stay unambiguous.
func normalizePageText(text string) string {
	return strings.ReplaceAll(text, "\n\n", "\n")
}
