package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Document represents an uploaded file tracked through ingestion.
type Document struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DocumentID   string             `bson:"document_id" json:"document_id"` // stable public id
	Filename     string             `bson:"filename" json:"filename"`       // secure stored name
	OriginalName string             `bson:"original_name" json:"original_name"`
	FilePath     string             `bson:"file_path" json:"file_path"` // storage path
	FileHash     string             `bson:"file_hash" json:"file_hash"` // for deduplication
	ChunkCount   int                `bson:"chunk_count" json:"chunk_count"`
	Status       string             `bson:"status" json:"status"` // pending, processing, completed, failed
	Progress     int                `bson:"progress" json:"progress"`
	ErrorMessage string             `bson:"error_message,omitempty" json:"error_message,omitempty"`
	UploadedAt   time.Time          `bson:"uploaded_at" json:"uploaded_at"`
	ProcessedAt  *time.Time         `bson:"processed_at,omitempty" json:"processed_at,omitempty"`
	Metadata     DocumentMetadata   `bson:"metadata" json:"metadata"`
}

// DocumentMetadata contains processing metadata
type DocumentMetadata struct {
	Size           int64         `bson:"size" json:"size"`
	Pages          int           `bson:"pages" json:"pages"`
	ProcessingTime time.Duration `bson:"processing_time" json:"processing_time"`
	CharacterCount int           `bson:"character_count" json:"character_count"`
}

// UploadResponse represents the response after a successful upload
type UploadResponse struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	Status     string `json:"status"`
	ChunkCount int    `json:"chunk_count,omitempty"`
	Message    string `json:"message"`
	TaskID     string `json:"task_id,omitempty"` // for async processing
}

// QueryResult is one similarity-search hit.
type QueryResult struct {
	ChunkID    string         `json:"chunk_id"`
	DocumentID string         `json:"document_id"`
	Content    string         `json:"content"`
	Score      float64        `json:"score"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// RetrieveResponse wraps the results of a retrieval query.
type RetrieveResponse struct {
	Query   string        `json:"query"`
	Results []QueryResult `json:"results"`
}

// Processing status constants
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)
