package chunking

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalizeMergesSmallRecords(t *testing.T) {
	records := []Record{
		{Text: strings.Repeat("A", 50), Page: PageOf(1), Source: "doc.txt"},
		{Text: strings.Repeat("B", 50), Page: PageOf(2), Source: "doc.txt"},
	}

	out := Normalize(records, 1000)
	if len(out) != 1 {
		t.Fatalf("expected 1 merged record, got %d", len(out))
	}

	want := strings.Repeat("A", 50) + "\n\n" + strings.Repeat("B", 50)
	if out[0].Text != want {
		t.Errorf("merged text mismatch:\ngot  %q\nwant %q", out[0].Text, want)
	}
	if out[0].Page == nil || *out[0].Page != 1 {
		t.Errorf("merged page = %v, want 1 (floor average of 1 and 2)", out[0].Page)
	}
}

func TestNormalizePassesThroughLargeRecords(t *testing.T) {
	big := Record{Text: strings.Repeat("X", 1200), Page: PageOf(3), Source: "doc.txt"}
	out := Normalize([]Record{big}, 1000)
	if len(out) != 1 || out[0].Text != big.Text {
		t.Fatalf("large leading record should be emitted untouched")
	}
	if out[0].Page == nil || *out[0].Page != 3 {
		t.Errorf("page changed on passthrough: %v", out[0].Page)
	}
}

func TestNormalizeEmitsTrailingCarry(t *testing.T) {
	records := []Record{
		{Text: strings.Repeat("X", 1200), Page: PageOf(1), Source: "doc.txt"},
		{Text: "tail", Page: PageOf(2), Source: "doc.txt"},
	}
	out := Normalize(records, 1000)
	if len(out) != 2 {
		t.Fatalf("expected 2 records, got %d", len(out))
	}
	if out[1].Text != "tail" {
		t.Errorf("trailing small record dropped, got %q", out[1].Text)
	}
}

func TestNormalizeMergesCarryWithLargeRecord(t *testing.T) {
	// A pending carry merges with whatever record comes next, even one
	// already at or above the target length.
	records := []Record{
		{Text: "small", Page: PageOf(0), Source: "doc.txt"},
		{Text: strings.Repeat("Y", 1000), Page: PageOf(4), Source: "doc.txt"},
	}
	out := Normalize(records, 1000)
	if len(out) != 1 {
		t.Fatalf("expected 1 record, got %d", len(out))
	}
	if !strings.HasPrefix(out[0].Text, "small\n\n") {
		t.Errorf("carry not merged in front: %q", out[0].Text[:20])
	}
	if out[0].Page == nil || *out[0].Page != 2 {
		t.Errorf("merged page = %v, want 2", out[0].Page)
	}
}

func TestNormalizeSingleSmallRecord(t *testing.T) {
	out := Normalize([]Record{{Text: "only", Source: "doc.txt"}}, 1000)
	if len(out) != 1 || out[0].Text != "only" {
		t.Fatalf("single small record must still be emitted, got %v", out)
	}
}

func TestAveragePage(t *testing.T) {
	tests := []struct {
		a, b *int
		want *int
	}{
		{PageOf(1), PageOf(2), PageOf(1)},
		{PageOf(2), PageOf(2), PageOf(2)},
		{PageOf(0), PageOf(5), PageOf(2)},
		{nil, PageOf(7), PageOf(7)},
		{PageOf(7), nil, PageOf(7)},
		{nil, nil, nil},
	}
	for _, tt := range tests {
		got := averagePage(tt.a, tt.b)
		if (got == nil) != (tt.want == nil) {
			t.Errorf("averagePage(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			continue
		}
		if got != nil && *got != *tt.want {
			t.Errorf("averagePage(%v, %v) = %d, want %d", *tt.a, *tt.b, *got, *tt.want)
		}
	}
}

func TestFloorDivRoundsTowardNegativeInfinity(t *testing.T) {
	if got := floorDiv(3, 2); got != 1 {
		t.Errorf("floorDiv(3,2) = %d, want 1", got)
	}
	if got := floorDiv(-3, 2); got != -2 {
		t.Errorf("floorDiv(-3,2) = %d, want -2", got)
	}
}

func TestResplitTabular(t *testing.T) {
	rec := Record{
		Text:   "row1\n\nrow2\n\nrow3",
		Page:   PageOf(0),
		Source: "sheet.xlsx",
	}
	out := ResplitTabular([]Record{rec})
	if len(out) != 3 {
		t.Fatalf("expected 3 blocks, got %d", len(out))
	}
	want := []string{"row1", "row2", "row3"}
	for i, r := range out {
		if r.Text != want[i] {
			t.Errorf("block %d = %q, want %q", i, r.Text, want[i])
		}
		if r.Source != rec.Source {
			t.Errorf("block %d lost source: %q", i, r.Source)
		}
		if r.Page == nil || *r.Page != 0 {
			t.Errorf("block %d lost page: %v", i, r.Page)
		}
	}
}

func TestResplitTabularOrderPreserving(t *testing.T) {
	rec := Record{Text: "c\n\na\n\nb", Source: "s.xls"}
	out := ResplitTabular([]Record{rec})
	got := make([]string, len(out))
	for i, r := range out {
		got[i] = r.Text
	}
	if strings.Join(got, ",") != "c,a,b" {
		t.Errorf("blocks reordered: %v", got)
	}
}

func TestResplitTabularSkipsBlankBlocks(t *testing.T) {
	rec := Record{Text: "\n\nrow1\n\n  \n\nrow2\n\n", Source: "s.xlsx"}
	out := ResplitTabular([]Record{rec})
	if len(out) != 2 {
		t.Fatalf("expected 2 non-blank blocks, got %d: %v", len(out), out)
	}
}

func TestIsTabularSource(t *testing.T) {
	for src, want := range map[string]bool{
		"report.xlsx": true,
		"REPORT.XLS":  true,
		"notes.txt":   false,
		"scan.pdf":    false,
	} {
		got, err := IsTabularSource(src)
		if err != nil {
			t.Fatalf("IsTabularSource(%q): %v", src, err)
		}
		if got != want {
			t.Errorf("IsTabularSource(%q) = %v, want %v", src, got, want)
		}
	}

	if _, err := IsTabularSource("noextension"); !errors.Is(err, ErrUnsupportedSource) {
		t.Errorf("extensionless source: got err %v, want ErrUnsupportedSource", err)
	}
}
