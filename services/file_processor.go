package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/sevap8/ai-platform/internal/chunking"
	"github.com/sevap8/ai-platform/internal/extract"
	"github.com/sevap8/ai-platform/internal/logger"
)

// FileInput names one file to ingest: the path on disk and the logical
// source name (usually the original filename) used for chunk identity.
type FileInput struct {
	Path   string
	Source string
}

// FileProcessor loads a batch of files with bounded concurrency and
// runs the chunking pipeline over the combined record stream.
type FileProcessor struct {
	loader       *extract.Loader
	pipeline     *chunking.Pipeline
	concurrency  int
	silentErrors bool
}

// NewFileProcessor builds a processor. concurrency bounds how many
// files are extracted at once; silentErrors controls whether a failing
// file is skipped or aborts the whole batch.
func NewFileProcessor(cfg chunking.Config, concurrency int, silentErrors bool) (*FileProcessor, error) {
	pipeline, err := chunking.NewPipeline(cfg)
	if err != nil {
		return nil, err
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &FileProcessor{
		loader:       extract.NewLoader(),
		pipeline:     pipeline,
		concurrency:  concurrency,
		silentErrors: silentErrors,
	}, nil
}

// LoadAll extracts records from every input concurrently. The returned
// records follow the input order regardless of completion order. With
// silent errors enabled a failing file is logged and skipped; otherwise
// the first failure aborts the batch and no partial results are
// returned.
func (fp *FileProcessor) LoadAll(ctx context.Context, inputs []FileInput) ([]chunking.Record, error) {
	perFile := make([][]chunking.Record, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(fp.concurrency)

	for i, input := range inputs {
		g.Go(func() error {
			records, err := fp.loader.Load(input.Path, input.Source)
			if err != nil {
				if fp.silentErrors {
					logger.Warn("Skipping file after extraction failure", "source", input.Source, "error", err)
					return nil
				}
				return fmt.Errorf("failed to load %s: %w", input.Source, err)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			perFile[i] = records
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var records []chunking.Record
	for _, part := range perFile {
		records = append(records, part...)
	}
	return records, nil
}

// ProcessFiles loads every input and chunks the combined batch. Chunk
// numbering is continuous across all files in the batch.
func (fp *FileProcessor) ProcessFiles(ctx context.Context, inputs []FileInput) ([]chunking.Chunk, error) {
	records, err := fp.LoadAll(ctx, inputs)
	if err != nil {
		return nil, err
	}
	return fp.pipeline.Process(records)
}

// ProcessRecords chunks an already-extracted record batch.
func (fp *FileProcessor) ProcessRecords(records []chunking.Record) ([]chunking.Chunk, error) {
	return fp.pipeline.Process(records)
}

// ProcessFile is the single-file path used by uploads.
func (fp *FileProcessor) ProcessFile(ctx context.Context, path, source string) ([]chunking.Chunk, error) {
	return fp.ProcessFiles(ctx, []FileInput{{Path: path, Source: source}})
}
