package chunking

import (
	"path/filepath"
	"regexp"
	"strings"
)

// blanklineRegex tokenizes text into blocks separated by one or more
// blank lines (lines containing only whitespace count as blank).
var blanklineRegex = regexp.MustCompile(`\n[ \t]*\n+`)

// Normalize merges small adjacent records into fewer, larger units so
// the final splitter works on well-sized inputs. A pending "carry"
// record accumulates consecutive records whose merged text is still
// below chunkLen; once the merge reaches chunkLen the result is
// emitted. A trailing carry with no successor is emitted as-is.
func Normalize(records []Record, chunkLen int) []Record {
	out := make([]Record, 0, len(records))
	var carry *Record

	for i := range records {
		rec := records[i]
		if carry != nil {
			merged := mergeRecords(*carry, rec)
			if len(merged.Text) < chunkLen {
				carry = &merged
				continue
			}
			out = append(out, merged)
			carry = nil
			continue
		}
		if len(rec.Text) < chunkLen {
			carry = &rec
			continue
		}
		out = append(out, rec)
	}

	if carry != nil {
		out = append(out, *carry)
	}
	return out
}

// mergeRecords joins two records with a blank-line separator. The
// merged page number is the floor of the average of both pages, a
// deliberate tie-break rule kept for reproducibility.
func mergeRecords(a, b Record) Record {
	return Record{
		Text:   a.Text + "\n\n" + b.Text,
		Page:   averagePage(a.Page, b.Page),
		Source: a.Source,
	}
}

func averagePage(a, b *int) *int {
	switch {
	case a == nil && b == nil:
		return nil
	case a == nil:
		return b
	case b == nil:
		return a
	}
	avg := floorDiv(*a+*b, 2)
	return &avg
}

// floorDiv rounds toward negative infinity, matching integer floor
// division rather than Go's truncated division.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// ResplitTabular replaces length-based merging for spreadsheet-derived
// records: each record's text is split on blank-line boundaries into
// independent units that keep the parent's source and page number.
// Rendered tables lose meaning when merged across row groups, so the
// resulting units are never combined regardless of size.
func ResplitTabular(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		for _, block := range blanklineRegex.Split(rec.Text, -1) {
			if strings.TrimSpace(block) == "" {
				continue
			}
			out = append(out, Record{
				Text:   block,
				Page:   rec.Page,
				Source: rec.Source,
			})
		}
	}
	return out
}

// IsTabularSource reports whether a source file should go through
// blank-line resplitting instead of the merge pass. Classification is
// by extension, the only rule the loaders guarantee.
func IsTabularSource(source string) (bool, error) {
	ext := strings.ToLower(filepath.Ext(source))
	if ext == "" {
		return false, ErrUnsupportedSource
	}
	return ext == ".xlsx" || ext == ".xls", nil
}
