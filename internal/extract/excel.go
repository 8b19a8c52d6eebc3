package extract

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/sevap8/ai-platform/internal/chunking"
)

// loadExcel renders every sheet of a workbook as a markdown table and
// returns the whole rendition as a single record. Blank lines between
// sheets are the boundaries the tabular resplitter later cuts on.
func loadExcel(path, source string) ([]chunking.Record, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", source, err)
	}
	defer f.Close()

	var sb strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q of %s: %w", sheet, source, err)
		}
		if md := sheetToMarkdown(sheet, rows); md != "" {
			sb.WriteString(md)
			sb.WriteString("\n")
		}
	}

	return []chunking.Record{{
		Text:   sb.String(),
		Source: source,
	}}, nil
}

// sheetToMarkdown renders one sheet as a pipe table with the first row
// as the header. Rows with no values at all are dropped.
func sheetToMarkdown(name string, rows [][]string) string {
	rows = dropEmptyRows(rows)
	if len(rows) == 0 {
		return ""
	}

	header := rows[0]
	width := len(header)

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Sheet: %s\n\n", name)
	sb.WriteString("| " + strings.Join(header, " | ") + " |\n")

	dashes := make([]string, width)
	for i := range dashes {
		dashes[i] = "---"
	}
	sb.WriteString("| " + strings.Join(dashes, " | ") + " |\n")

	for _, row := range rows[1:] {
		cells := make([]string, width)
		for i := 0; i < width && i < len(row); i++ {
			cells[i] = row[i]
		}
		sb.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return sb.String()
}

func dropEmptyRows(rows [][]string) [][]string {
	out := rows[:0:0]
	for _, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				out = append(out, row)
				break
			}
		}
	}
	return out
}
