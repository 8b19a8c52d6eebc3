package chunking

import (
	"strings"
	"testing"
)

func TestSplitTextHardCutNoSeparator(t *testing.T) {
	cfg := Config{ChunkSize: 1000, ChunkOverlap: 200, Separator: "\n"}
	text := strings.Repeat("X", 1500)

	chunks := SplitText(text, cfg)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0] != text[:1000] {
		t.Errorf("chunk 1 is not the first 1000 chars (len %d)", len(chunks[0]))
	}
	if chunks[1] != text[800:] {
		t.Errorf("chunk 2 is not chars [800:1500] (len %d)", len(chunks[1]))
	}
}

func TestSplitTextRespectsSizeBound(t *testing.T) {
	cfg := Config{ChunkSize: 100, ChunkOverlap: 20, Separator: "\n"}

	var sb strings.Builder
	for i := 0; i < 40; i++ {
		sb.WriteString(strings.Repeat("w", 7+i%13))
		sb.WriteString("\n")
	}
	sb.WriteString(strings.Repeat("Z", 350)) // one irreducible oversize unit

	for i, chunk := range SplitText(sb.String(), cfg) {
		if len(chunk) > cfg.ChunkSize {
			t.Errorf("chunk %d exceeds size bound: len %d > %d", i, len(chunk), cfg.ChunkSize)
		}
	}
}

func TestSplitTextSmallInputSingleChunk(t *testing.T) {
	cfg := DefaultConfig()
	chunks := SplitText("hello\nworld", cfg)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "hello\nworld" {
		t.Errorf("small input altered: %q", chunks[0])
	}
}

func TestSplitTextEmptyInput(t *testing.T) {
	if chunks := SplitText("", DefaultConfig()); chunks != nil {
		t.Errorf("empty input should yield no chunks, got %v", chunks)
	}
}

func TestSplitTextZeroOverlapRoundTrip(t *testing.T) {
	// With zero overlap no content is duplicated: rejoining the chunks
	// with the separator reproduces the input exactly.
	cfg := Config{ChunkSize: 30, ChunkOverlap: 0, Separator: "\n"}
	words := []string{"alpha", "bravo", "charlie", "delta", "echo", "foxtrot", "golf", "hotel"}
	text := strings.Join(words, "\n")

	chunks := SplitText(text, cfg)
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	if got := strings.Join(chunks, "\n"); got != text {
		t.Errorf("round trip mismatch:\ngot  %q\nwant %q", got, text)
	}
}

func TestSplitTextOverlapSharedBetweenChunks(t *testing.T) {
	cfg := Config{ChunkSize: 12, ChunkOverlap: 6, Separator: "\n"}
	chunks := SplitText("aaaa\nbbbb\ncccc", cfg)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d: %v", len(chunks), chunks)
	}
	if chunks[0] != "aaaa\nbbbb" {
		t.Errorf("chunk 1 = %q", chunks[0])
	}
	// The trailing unit of chunk 1 is carried into chunk 2 as overlap.
	if chunks[1] != "bbbb\ncccc" {
		t.Errorf("chunk 2 = %q, want overlap tail carried forward", chunks[1])
	}
}

func TestSplitTextStableAcrossRuns(t *testing.T) {
	cfg := Config{ChunkSize: 50, ChunkOverlap: 10, Separator: "\n"}
	text := strings.Repeat("line one\nline two\nline three\n", 20)

	first := SplitText(text, cfg)
	for run := 0; run < 5; run++ {
		again := SplitText(text, cfg)
		if len(again) != len(first) {
			t.Fatalf("run %d: chunk count changed %d -> %d", run, len(first), len(again))
		}
		for i := range first {
			if first[i] != again[i] {
				t.Fatalf("run %d: chunk %d differs", run, i)
			}
		}
	}
}

func TestSplitTextIdempotentOnOwnOutput(t *testing.T) {
	cfg := Config{ChunkSize: 100, ChunkOverlap: 20, Separator: "\n"}
	text := strings.Repeat("some words here\n", 30)

	for i, chunk := range SplitText(text, cfg) {
		again := SplitText(chunk, cfg)
		if len(again) != 1 || again[0] != chunk {
			t.Errorf("chunk %d not stable under re-splitting", i)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", DefaultConfig(), false},
		{"overlap equals size", Config{ChunkSize: 500, ChunkOverlap: 500}, true},
		{"overlap exceeds size", Config{ChunkSize: 500, ChunkOverlap: 1000}, true},
		{"zero size", Config{ChunkSize: 0, ChunkOverlap: 0}, true},
		{"negative size", Config{ChunkSize: -1, ChunkOverlap: 0}, true},
		{"negative overlap", Config{ChunkSize: 100, ChunkOverlap: -1}, true},
		{"zero overlap ok", Config{ChunkSize: 100, ChunkOverlap: 0}, false},
	}
	for _, tt := range tests {
		err := tt.cfg.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: Validate() err = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}
