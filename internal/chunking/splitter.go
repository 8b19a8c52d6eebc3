package chunking

import (
	"fmt"
	"strings"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
	DefaultSeparator    = "\n"
)

// Config holds the splitter parameters shared by the whole pipeline.
type Config struct {
	ChunkSize    int
	ChunkOverlap int
	Separator    string
}

// DefaultConfig returns the standard pipeline parameters.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    DefaultChunkSize,
		ChunkOverlap: DefaultChunkOverlap,
		Separator:    DefaultSeparator,
	}
}

// Validate rejects configurations that cannot produce a terminating
// split. It must be called before any record is processed.
func (c Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidConfig, c.ChunkSize)
	}
	if c.ChunkOverlap < 0 {
		return fmt.Errorf("%w: chunk overlap must be non-negative, got %d", ErrInvalidConfig, c.ChunkOverlap)
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: chunk overlap %d must be smaller than chunk size %d",
			ErrInvalidConfig, c.ChunkOverlap, c.ChunkSize)
	}
	return nil
}

func (c Config) separator() string {
	if c.Separator == "" {
		return DefaultSeparator
	}
	return c.Separator
}

// SplitText divides text into pieces of at most ChunkSize characters,
// preferring separator boundaries. Separator-delimited units larger
// than ChunkSize are hard-cut at character boundaries with a stride of
// ChunkSize-ChunkOverlap, so neighboring cuts share a fixed overlap.
// Smaller units are reassembled up to ChunkSize, carrying a tail of
// whole units no longer than ChunkOverlap into the next piece.
func SplitText(text string, cfg Config) []string {
	if text == "" {
		return nil
	}
	sep := cfg.separator()

	var pieces []string
	for _, p := range strings.Split(text, sep) {
		if len(p) > cfg.ChunkSize {
			pieces = append(pieces, hardCut(p, cfg.ChunkSize, cfg.ChunkOverlap)...)
		} else {
			pieces = append(pieces, p)
		}
	}

	return mergePieces(pieces, sep, cfg.ChunkSize, cfg.ChunkOverlap)
}

// hardCut slices an unbroken unit into overlapping windows. Fidelity
// to the size bound takes priority over separator alignment here.
func hardCut(text string, size, overlap int) []string {
	stride := size - overlap
	var out []string
	for start := 0; ; start += stride {
		end := start + size
		if end >= len(text) {
			out = append(out, text[start:])
			return out
		}
		out = append(out, text[start:end])
	}
}

// mergePieces reassembles separator-delimited pieces into chunks of at
// most `size` characters, joined by the separator. When a chunk is
// emitted, trailing pieces totalling at most `overlap` characters stay
// in the window so consecutive chunks share context.
func mergePieces(pieces []string, sep string, size, overlap int) []string {
	sepLen := len(sep)

	var chunks []string
	var window []string
	total := 0

	flush := func() {
		if len(window) == 0 {
			return
		}
		joined := strings.TrimSpace(strings.Join(window, sep))
		if joined != "" {
			chunks = append(chunks, joined)
		}
	}

	for _, piece := range pieces {
		l := len(piece)
		join := 0
		if len(window) > 0 {
			join = sepLen
		}
		if total+l+join > size && len(window) > 0 {
			flush()
			for total > overlap || (total+l+sepLen > size && total > 0) {
				total -= len(window[0])
				if len(window) > 1 {
					total -= sepLen
				}
				window = window[1:]
			}
		}
		window = append(window, piece)
		total += l
		if len(window) > 1 {
			total += sepLen
		}
	}
	flush()

	return chunks
}
