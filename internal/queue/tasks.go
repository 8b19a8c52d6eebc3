// Package queue defines the asynq task types and handlers for
// asynchronous document ingestion.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/sevap8/ai-platform/internal/chunking"
	"github.com/sevap8/ai-platform/internal/logger"
	"github.com/sevap8/ai-platform/models"
	"github.com/sevap8/ai-platform/services"
)

const (
	TaskDocumentIngest = "document:ingest"
	TaskRecordsIngest  = "records:ingest"
)

type DocumentIngestPayload struct {
	DocumentID string `json:"document_id"`
}

// RecordPayload is the wire form of a record. Text is a pointer so a
// JSON null is distinguishable from an empty string and can be
// rejected as malformed.
type RecordPayload struct {
	Text   *string `json:"text"`
	Page   *int    `json:"page"`
	Source string  `json:"source"`
}

type RecordsIngestPayload struct {
	DocumentID string          `json:"document_id"`
	Source     string          `json:"source"`
	Records    []RecordPayload `json:"records"`
}

// DecodeRecords validates wire records and converts them to pipeline
// records. A null text field fails the whole batch.
func DecodeRecords(payloads []RecordPayload) ([]chunking.Record, error) {
	records := make([]chunking.Record, len(payloads))
	for i, p := range payloads {
		if p.Text == nil {
			return nil, fmt.Errorf("record %d (source %q): %w", i, p.Source, chunking.ErrMalformedRecord)
		}
		records[i] = chunking.Record{Text: *p.Text, Page: p.Page, Source: p.Source}
	}
	return records, nil
}

// Task creators

func NewDocumentIngestTask(documentID string) (*asynq.Task, error) {
	payload, err := json.Marshal(DocumentIngestPayload{DocumentID: documentID})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskDocumentIngest,
		payload,
		asynq.MaxRetry(3),
		asynq.Timeout(10*time.Minute),
		asynq.Queue("critical"),
	), nil
}

func NewRecordsIngestTask(documentID, source string, records []RecordPayload) (*asynq.Task, error) {
	payload, err := json.Marshal(RecordsIngestPayload{
		DocumentID: documentID,
		Source:     source,
		Records:    records,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskRecordsIngest,
		payload,
		asynq.MaxRetry(3),
		asynq.Timeout(5*time.Minute),
		asynq.Queue("default"),
	), nil
}

// TaskProcessor handles ingestion tasks using the document service.
type TaskProcessor struct {
	docs *services.DocumentService
}

func NewTaskProcessor(docs *services.DocumentService) *TaskProcessor {
	return &TaskProcessor{docs: docs}
}

func (p *TaskProcessor) HandleDocumentIngest(ctx context.Context, t *asynq.Task) error {
	var payload DocumentIngestPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}

	doc, err := p.docs.GetDocument(ctx, payload.DocumentID)
	if err != nil {
		if errors.Is(err, services.ErrDocumentNotFound) {
			return fmt.Errorf("document %s vanished: %w", payload.DocumentID, asynq.SkipRetry)
		}
		return err
	}
	if doc.Status == models.StatusCompleted {
		logger.Info("Document already ingested, skipping task", "document_id", doc.DocumentID)
		return nil
	}

	return p.docs.Ingest(ctx, doc)
}

func (p *TaskProcessor) HandleRecordsIngest(ctx context.Context, t *asynq.Task) error {
	var payload RecordsIngestPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal failed: %v: %w", err, asynq.SkipRetry)
	}

	records, err := DecodeRecords(payload.Records)
	if err != nil {
		// Malformed input never becomes well-formed on retry
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	count, err := p.docs.IngestRecords(ctx, payload.DocumentID, payload.Source, records)
	if err != nil {
		return err
	}

	logger.Info("Record batch ingested", "document_id", payload.DocumentID, "source", payload.Source, "chunks", count)
	return nil
}
