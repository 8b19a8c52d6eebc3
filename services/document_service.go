package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sevap8/ai-platform/internal/ai"
	"github.com/sevap8/ai-platform/internal/chunking"
	"github.com/sevap8/ai-platform/internal/config"
	"github.com/sevap8/ai-platform/internal/logger"
	"github.com/sevap8/ai-platform/internal/vectorstore"
	"github.com/sevap8/ai-platform/models"
)

var (
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrExtensionNotAllowed = errors.New("file extension not allowed")
	ErrDuplicateDocument   = errors.New("document with identical content already ingested")
	ErrDocumentNotFound    = errors.New("document not found")
)

// DocumentService owns the document lifecycle: upload validation,
// storage, extraction, chunking, embedding, vector upsert and the
// MongoDB record tracking it all.
type DocumentService struct {
	cfg       *config.Config
	db        *mongo.Database
	storage   *FileStorage
	processor *FileProcessor
	embedder  *ai.Embedder
	vectors   *vectorstore.Client
	cache     *RetrievalCache
}

func NewDocumentService(cfg *config.Config, db *mongo.Database, embedder *ai.Embedder, vectors *vectorstore.Client, rdb *redis.Client) (*DocumentService, error) {
	storage, err := NewFileStorage(cfg.FileStorageDir)
	if err != nil {
		return nil, err
	}

	var cache *RetrievalCache
	if rdb != nil {
		cache = NewRetrievalCache(rdb, 5*time.Minute)
	}

	processor, err := NewFileProcessor(chunking.Config{
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
		Separator:    cfg.ChunkSeparator,
	}, cfg.LoadConcurrency, cfg.SilentErrors)
	if err != nil {
		return nil, err
	}

	return &DocumentService{
		cfg:       cfg,
		db:        db,
		storage:   storage,
		processor: processor,
		embedder:  embedder,
		vectors:   vectors,
		cache:     cache,
	}, nil
}

func (s *DocumentService) documents() *mongo.Collection {
	return s.db.Collection("documents")
}

// ValidateUpload enforces the extension allow-list and size limit
// before any bytes hit disk.
func (s *DocumentService) ValidateUpload(filename string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" || !slices.Contains(s.cfg.AllowedExtensions, ext) {
		return fmt.Errorf("%w: %q", ErrExtensionNotAllowed, ext)
	}
	if size > s.cfg.MaxFileSize {
		return fmt.Errorf("%w: %d > %d bytes", ErrFileTooLarge, size, s.cfg.MaxFileSize)
	}
	return nil
}

// CreateDocument stores the uploaded content and registers a pending
// document record. Re-uploads of identical content are rejected with
// ErrDuplicateDocument carrying the existing document.
func (s *DocumentService) CreateDocument(ctx context.Context, src io.Reader, originalName string) (*models.Document, error) {
	stored, err := s.storage.Save(src, originalName)
	if err != nil {
		return nil, err
	}

	var existing models.Document
	err = s.documents().FindOne(ctx, bson.M{"file_hash": stored.Hash}).Decode(&existing)
	if err == nil {
		s.storage.Remove(stored.Name)
		return &existing, ErrDuplicateDocument
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		s.storage.Remove(stored.Name)
		return nil, fmt.Errorf("dedup lookup failed: %w", err)
	}

	doc := &models.Document{
		DocumentID:   uuid.NewString(),
		Filename:     stored.Name,
		OriginalName: originalName,
		FilePath:     stored.Path,
		FileHash:     stored.Hash,
		Status:       models.StatusPending,
		UploadedAt:   time.Now(),
		Metadata:     models.DocumentMetadata{Size: stored.Size},
	}

	if _, err := s.documents().InsertOne(ctx, doc); err != nil {
		s.storage.Remove(stored.Name)
		// Unique index on file_hash: concurrent identical upload
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateDocument
		}
		return nil, fmt.Errorf("failed to insert document: %w", err)
	}
	return doc, nil
}

// Ingest runs the full pipeline for a stored document and records the
// outcome on its MongoDB record.
func (s *DocumentService) Ingest(ctx context.Context, doc *models.Document) error {
	started := time.Now()
	s.setStatus(ctx, doc.DocumentID, models.StatusProcessing, 10, "")

	chunks, err := s.processor.ProcessFile(ctx, doc.FilePath, doc.OriginalName)
	if err != nil {
		s.setStatus(ctx, doc.DocumentID, models.StatusFailed, 0, err.Error())
		return fmt.Errorf("processing %s failed: %w", doc.OriginalName, err)
	}
	s.setStatus(ctx, doc.DocumentID, models.StatusProcessing, 50, "")

	if len(chunks) > 0 {
		texts := make([]string, len(chunks))
		for i, chunk := range chunks {
			texts[i] = chunk.Content
		}

		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			s.setStatus(ctx, doc.DocumentID, models.StatusFailed, 50, err.Error())
			return fmt.Errorf("embedding %s failed: %w", doc.OriginalName, err)
		}
		s.setStatus(ctx, doc.DocumentID, models.StatusProcessing, 80, "")

		if err := s.vectors.UpsertChunks(ctx, doc.DocumentID, chunks, vectors); err != nil {
			s.setStatus(ctx, doc.DocumentID, models.StatusFailed, 80, err.Error())
			return fmt.Errorf("vector upsert for %s failed: %w", doc.OriginalName, err)
		}
	}

	characters := 0
	pages := 0
	for _, chunk := range chunks {
		characters += len(chunk.Content)
		if chunk.Page != nil && *chunk.Page+1 > pages {
			pages = *chunk.Page + 1
		}
	}

	now := time.Now()
	_, err = s.documents().UpdateOne(ctx,
		bson.M{"document_id": doc.DocumentID},
		bson.M{"$set": bson.M{
			"status":                   models.StatusCompleted,
			"progress":                 100,
			"chunk_count":              len(chunks),
			"processed_at":             now,
			"error_message":            "",
			"metadata.pages":           pages,
			"metadata.character_count": characters,
			"metadata.processing_time": time.Since(started),
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to finalize document: %w", err)
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}

	logger.Info("Document ingested",
		"document_id", doc.DocumentID,
		"source", doc.OriginalName,
		"chunks", len(chunks),
		"duration", time.Since(started).String())
	return nil
}

// IngestRecords chunks and indexes pre-extracted records, tracking
// them as a file-less document.
func (s *DocumentService) IngestRecords(ctx context.Context, documentID, source string, records []chunking.Record) (int, error) {
	chunks, err := s.processor.ProcessRecords(records)
	if err != nil {
		return 0, err
	}

	if len(chunks) > 0 {
		texts := make([]string, len(chunks))
		for i, chunk := range chunks {
			texts[i] = chunk.Content
		}
		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return 0, fmt.Errorf("embedding records from %s failed: %w", source, err)
		}
		if err := s.vectors.UpsertChunks(ctx, documentID, chunks, vectors); err != nil {
			return 0, err
		}
	}

	now := time.Now()
	_, err = s.documents().UpdateOne(ctx,
		bson.M{"document_id": documentID},
		bson.M{
			"$set": bson.M{
				"original_name": source,
				"status":        models.StatusCompleted,
				"progress":      100,
				"chunk_count":   len(chunks),
				"processed_at":  now,
			},
			"$setOnInsert": bson.M{
				"document_id": documentID,
				"uploaded_at": now,
			},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to record ingestion: %w", err)
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	return len(chunks), nil
}

// Retrieve embeds the query and returns the topK most similar chunks.
// Responses are cached; the cache is flushed whenever the index
// changes.
func (s *DocumentService) Retrieve(ctx context.Context, query string, topK int) (*models.RetrieveResponse, error) {
	if s.cache != nil {
		if cached, ok := s.cache.Get(ctx, query, topK); ok {
			return cached, nil
		}
	}

	vector, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results, err := s.vectors.Search(ctx, vector, topK)
	if err != nil {
		return nil, err
	}

	response := &models.RetrieveResponse{Query: query, Results: results}
	if s.cache != nil {
		s.cache.Set(ctx, query, topK, response)
	}
	return response, nil
}

// GetDocument fetches one document record by its public id.
func (s *DocumentService) GetDocument(ctx context.Context, documentID string) (*models.Document, error) {
	var doc models.Document
	err := s.documents().FindOne(ctx, bson.M{"document_id": documentID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListDocuments returns a page of document records, newest first,
// with the total count.
func (s *DocumentService) ListDocuments(ctx context.Context, page, limit int) ([]models.Document, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	skip := int64((page - 1) * limit)

	cursor, err := s.documents().Find(ctx, bson.M{},
		options.Find().
			SetSort(bson.M{"uploaded_at": -1}).
			SetSkip(skip).
			SetLimit(int64(limit)),
	)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var docs []models.Document
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, err
	}

	total, err := s.documents().CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// DeleteDocument removes a document everywhere: vectors, the stored
// file and the MongoDB record.
func (s *DocumentService) DeleteDocument(ctx context.Context, documentID string) error {
	doc, err := s.GetDocument(ctx, documentID)
	if err != nil {
		return err
	}

	if err := s.vectors.DeleteDocument(ctx, documentID); err != nil {
		return err
	}
	// Record-only documents have no stored file
	if doc.Filename != "" {
		if err := s.storage.Remove(doc.Filename); err != nil {
			logger.Warn("Failed to remove stored file", "filename", doc.Filename, "error", err)
		}
	}

	if _, err := s.documents().DeleteOne(ctx, bson.M{"document_id": documentID}); err != nil {
		return err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
	return nil
}

func (s *DocumentService) setStatus(ctx context.Context, documentID, status string, progress int, errMsg string) {
	update := bson.M{
		"status":   status,
		"progress": progress,
	}
	if errMsg != "" {
		update["error_message"] = errMsg
	}

	_, err := s.documents().UpdateOne(ctx,
		bson.M{"document_id": documentID},
		bson.M{"$set": update},
	)
	if err != nil {
		logger.Error("Failed to update document status", "document_id", documentID, "status", status, "error", err)
	}
}
