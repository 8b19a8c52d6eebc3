package chunking

import (
	"errors"
	"strings"
	"testing"
)

func newTestPipeline(t *testing.T, cfg Config) *Pipeline {
	t.Helper()
	p, err := NewPipeline(cfg)
	if err != nil {
		t.Fatalf("NewPipeline: %v", err)
	}
	return p
}

func TestPipelineMergeScenario(t *testing.T) {
	p := newTestPipeline(t, DefaultConfig())

	records := []Record{
		{Text: strings.Repeat("A", 50), Page: PageOf(1), Source: "doc.txt"},
		{Text: strings.Repeat("B", 50), Page: PageOf(2), Source: "doc.txt"},
	}

	chunks, err := p.Process(records)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}

	c := chunks[0]
	want := strings.Repeat("A", 50) + "\n\n" + strings.Repeat("B", 50)
	if c.Content != want {
		t.Errorf("content mismatch:\ngot  %q\nwant %q", c.Content, want)
	}
	if c.Page == nil || *c.Page != 1 {
		t.Errorf("page = %v, want 1", c.Page)
	}
	if c.ChunkNum != 1 {
		t.Errorf("chunk_num = %d, want 1", c.ChunkNum)
	}
	if c.ID != "doc.txt_0" {
		t.Errorf("id = %q, want doc.txt_0", c.ID)
	}
}

func TestPipelineHardCutScenario(t *testing.T) {
	p := newTestPipeline(t, Config{ChunkSize: 1000, ChunkOverlap: 200, Separator: "\n"})

	text := strings.Repeat("X", 1500)
	chunks, err := p.Process([]Record{{Text: text, Source: "big.txt"}})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Content != text[:1000] || chunks[1].Content != text[800:] {
		t.Errorf("hard cut boundaries wrong: lens %d, %d", len(chunks[0].Content), len(chunks[1].Content))
	}
	if chunks[0].ChunkNum != 1 || chunks[1].ChunkNum != 2 {
		t.Errorf("chunk numbers = %d, %d", chunks[0].ChunkNum, chunks[1].ChunkNum)
	}
}

func TestPipelineTabularScenario(t *testing.T) {
	p := newTestPipeline(t, DefaultConfig())

	chunks, err := p.Process([]Record{
		{Text: "row1\n\nrow2\n\nrow3", Page: PageOf(0), Source: "sheet.xlsx"},
	})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	want := []string{"row1", "row2", "row3"}
	for i, c := range chunks {
		if c.Content != want[i] {
			t.Errorf("chunk %d = %q, want %q", i, c.Content, want[i])
		}
		if c.Source != "sheet.xlsx" {
			t.Errorf("chunk %d lost source", i)
		}
	}
}

func TestPipelineInvalidConfigFailsFast(t *testing.T) {
	_, err := NewPipeline(Config{ChunkSize: 500, ChunkOverlap: 1000})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("got err %v, want ErrInvalidConfig", err)
	}
}

func TestPipelineChunkNumsGlobalAcrossSources(t *testing.T) {
	p := newTestPipeline(t, Config{ChunkSize: 100, ChunkOverlap: 10, Separator: "\n"})

	records := []Record{
		{Text: strings.Repeat("a", 250), Source: "one.txt"},
		{Text: "r1\n\nr2", Source: "two.xlsx"},
		{Text: strings.Repeat("b", 150), Source: "three.txt"},
	}

	chunks, err := p.Process(records)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(chunks) < 4 {
		t.Fatalf("expected chunks from all three sources, got %d", len(chunks))
	}
	for i, c := range chunks {
		if c.ChunkNum != i+1 {
			t.Fatalf("chunk %d has chunk_num %d, numbering must be gapless and global", i, c.ChunkNum)
		}
	}

	seen := map[string]bool{}
	for _, c := range chunks {
		if seen[c.ID] {
			t.Errorf("duplicate chunk id %q", c.ID)
		}
		seen[c.ID] = true
	}
}

func TestPipelineUnsupportedSourcePropagates(t *testing.T) {
	p := newTestPipeline(t, DefaultConfig())
	_, err := p.Process([]Record{{Text: "data", Source: "noextension"}})
	if !errors.Is(err, ErrUnsupportedSource) {
		t.Fatalf("got err %v, want ErrUnsupportedSource", err)
	}
}

func TestPipelineDropsEmptyChunks(t *testing.T) {
	p := newTestPipeline(t, DefaultConfig())
	chunks, err := p.Process([]Record{{Text: "", Source: "empty.txt"}})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("zero-length content must not produce chunks, got %d", len(chunks))
	}
}

func TestPipelineDeterministic(t *testing.T) {
	p := newTestPipeline(t, Config{ChunkSize: 80, ChunkOverlap: 16, Separator: "\n"})
	records := []Record{
		{Text: strings.Repeat("lorem ipsum dolor\n", 12), Page: PageOf(1), Source: "a.txt"},
		{Text: "h1 | h2\n\nv1 | v2", Source: "b.xls"},
	}

	first, err := p.Process(records)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	for run := 0; run < 3; run++ {
		again, err := p.Process(records)
		if err != nil {
			t.Fatalf("run %d: %v", run, err)
		}
		if len(again) != len(first) {
			t.Fatalf("run %d: chunk count changed", run)
		}
		for i := range first {
			if again[i].ID != first[i].ID || again[i].Content != first[i].Content ||
				again[i].ChunkNum != first[i].ChunkNum || again[i].Source != first[i].Source {
				t.Fatalf("run %d: chunk %d differs", run, i)
			}
		}
	}
}

func TestChunkMetadata(t *testing.T) {
	c := Chunk{ID: "a_0", Content: "x", Source: "a.txt", Page: PageOf(2), ChunkNum: 1}
	meta := c.Metadata()
	if meta["source"] != "a.txt" || meta["chunk_num"] != 1 || meta["page"] != 2 {
		t.Errorf("metadata mismatch: %v", meta)
	}

	noPage := Chunk{ID: "b_0", Content: "y", Source: "b.txt", ChunkNum: 2}
	if _, ok := noPage.Metadata()["page"]; ok {
		t.Errorf("nil page must be omitted from metadata")
	}
}
