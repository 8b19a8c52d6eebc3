package chunking

import "fmt"

// Pipeline turns an ordered batch of extracted records into the final
// numbered chunk list. It is purely synchronous and holds no shared
// state, so a single instance is safe to use from concurrent batches.
type Pipeline struct {
	cfg Config
}

// NewPipeline validates the configuration up front and returns a
// ready-to-use pipeline. Invalid parameters fail fast here, before any
// record is touched.
func NewPipeline(cfg Config) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Pipeline{cfg: cfg}, nil
}

// Config returns the pipeline parameters.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Process normalizes and splits a batch of records spanning one or
// more source files. Records are grouped by source in input order;
// spreadsheet sources are resplit on blank lines while everything else
// goes through the merge pass, and the overlap splitter runs last.
// Chunk numbers are 1-based and increase across the whole batch.
// Zero-length chunks are dropped: they carry no embedding value.
//
// The call is all-or-nothing: on error no partial chunk list is
// returned.
func (p *Pipeline) Process(records []Record) ([]Chunk, error) {
	normalized, err := p.normalize(records)
	if err != nil {
		return nil, err
	}

	var chunks []Chunk
	for _, rec := range normalized {
		for _, content := range SplitText(rec.Text, p.cfg) {
			chunks = append(chunks, Chunk{
				ID:       fmt.Sprintf("%s_%d", rec.Source, len(chunks)),
				Content:  content,
				Source:   rec.Source,
				Page:     rec.Page,
				ChunkNum: len(chunks) + 1,
			})
		}
	}
	return chunks, nil
}

// normalize dispatches each per-source run of records to the tabular
// resplitter or the merge pass, preserving batch order.
func (p *Pipeline) normalize(records []Record) ([]Record, error) {
	var out []Record
	for start := 0; start < len(records); {
		end := start
		for end < len(records) && records[end].Source == records[start].Source {
			end++
		}
		group := records[start:end]

		tabular, err := IsTabularSource(group[0].Source)
		if err != nil {
			return nil, fmt.Errorf("source %q: %w", group[0].Source, err)
		}
		if tabular {
			out = append(out, ResplitTabular(group)...)
		} else {
			out = append(out, Normalize(group, p.cfg.ChunkSize)...)
		}
		start = end
	}
	return out, nil
}
