package routes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/sevap8/ai-platform/internal/chunking"
	"github.com/sevap8/ai-platform/internal/config"
	"github.com/sevap8/ai-platform/internal/logger"
	"github.com/sevap8/ai-platform/internal/queue"
	"github.com/sevap8/ai-platform/models"
	"github.com/sevap8/ai-platform/services"
	"github.com/sevap8/ai-platform/utils"
)

// SetupDocumentRoutes registers the ingestion and retrieval endpoints.
func SetupDocumentRoutes(router *gin.Engine, cfg *config.Config, docs *services.DocumentService, queueClient *asynq.Client) {
	router.POST("/upload", HandleUpload(cfg, docs, queueClient))
	router.POST("/retrieve", HandleRetrieve(docs))
	router.POST("/ingest/records", HandleIngestRecords(queueClient))
	router.GET("/documents", HandleListDocuments(docs))
	router.GET("/documents/:id/status", HandleDocumentStatus(docs))
	router.DELETE("/documents/:id", HandleDeleteDocument(docs))
}

// HandleUpload accepts a multipart file upload. Small files are
// processed synchronously; larger ones are queued and the client polls
// the status endpoint.
func HandleUpload(cfg *config.Config, docs *services.DocumentService, queueClient *asynq.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		file, header, err := c.Request.FormFile("file")
		if err != nil {
			utils.RespondWithBadRequest(c, "No file provided", nil)
			return
		}
		defer file.Close()

		if err := docs.ValidateUpload(header.Filename, header.Size); err != nil {
			utils.RespondWithBadRequest(c, err.Error(), gin.H{"filename": header.Filename})
			return
		}

		doc, err := docs.CreateDocument(c.Request.Context(), file, header.Filename)
		if err != nil {
			if errors.Is(err, services.ErrDuplicateDocument) {
				var details gin.H
				if doc != nil {
					details = gin.H{"document_id": doc.DocumentID}
				}
				utils.RespondWithConflict(c, "Identical content already ingested", details)
				return
			}
			logger.Error("Upload failed", "filename", header.Filename, "error", err)
			utils.RespondWithInternalError(c, "Failed to store upload", nil)
			return
		}

		// Small files are worth the synchronous wait
		if header.Size <= cfg.SyncProcessingLimit {
			if err := docs.Ingest(c.Request.Context(), doc); err != nil {
				utils.RespondWithError(c, http.StatusUnprocessableEntity,
					"processing_failed",
					"Failed to process "+header.Filename,
					gin.H{"document_id": doc.DocumentID, "reason": err.Error()})
				return
			}

			processed, err := docs.GetDocument(c.Request.Context(), doc.DocumentID)
			if err != nil {
				utils.RespondWithInternalError(c, "Failed to load processed document", nil)
				return
			}
			c.JSON(http.StatusOK, models.UploadResponse{
				DocumentID: processed.DocumentID,
				Filename:   header.Filename,
				Status:     processed.Status,
				ChunkCount: processed.ChunkCount,
				Message:    "Document processed",
			})
			return
		}

		task, err := queue.NewDocumentIngestTask(doc.DocumentID)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to create processing task", nil)
			return
		}
		info, err := queueClient.Enqueue(task)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to enqueue processing task", nil)
			return
		}

		c.JSON(http.StatusAccepted, models.UploadResponse{
			DocumentID: doc.DocumentID,
			Filename:   header.Filename,
			Status:     models.StatusPending,
			Message:    "Document accepted for processing",
			TaskID:     info.ID,
		})
	}
}

// HandleRetrieve embeds the query and returns the most similar chunks.
func HandleRetrieve(docs *services.DocumentService) gin.HandlerFunc {
	type retrieveRequest struct {
		Query string `json:"query" binding:"required"`
		TopK  int    `json:"top_k"`
	}

	return func(c *gin.Context) {
		var req retrieveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "query is required", nil)
			return
		}

		response, err := docs.Retrieve(c.Request.Context(), req.Query, req.TopK)
		if err != nil {
			logger.Error("Retrieval failed", "query", req.Query, "error", err)
			utils.RespondWithInternalError(c, "Retrieval failed", nil)
			return
		}
		c.JSON(http.StatusOK, response)
	}
}

// HandleIngestRecords queues pre-extracted records for ingestion.
// Records arrive as JSON where text may be null; such batches are
// rejected before anything is enqueued.
func HandleIngestRecords(queueClient *asynq.Client) gin.HandlerFunc {
	type ingestRequest struct {
		Source  string                `json:"source" binding:"required"`
		Records []queue.RecordPayload `json:"records" binding:"required"`
	}

	return func(c *gin.Context) {
		var req ingestRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "source and records are required", nil)
			return
		}

		if _, err := queue.DecodeRecords(req.Records); err != nil {
			if errors.Is(err, chunking.ErrMalformedRecord) {
				utils.RespondWithBadRequest(c, err.Error(), nil)
				return
			}
			utils.RespondWithBadRequest(c, "invalid records", nil)
			return
		}

		documentID := uuid.NewString()
		task, err := queue.NewRecordsIngestTask(documentID, req.Source, req.Records)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to create ingestion task", nil)
			return
		}
		info, err := queueClient.Enqueue(task)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to enqueue ingestion task", nil)
			return
		}

		c.JSON(http.StatusAccepted, gin.H{
			"document_id": documentID,
			"task_id":     info.ID,
			"records":     len(req.Records),
			"status":      models.StatusPending,
		})
	}
}

// HandleListDocuments returns a paginated listing of documents.
func HandleListDocuments(docs *services.DocumentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

		documents, total, err := docs.ListDocuments(c.Request.Context(), page, limit)
		if err != nil {
			utils.RespondWithInternalError(c, "Failed to list documents", nil)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"documents": documents,
			"pagination": gin.H{
				"page":  page,
				"limit": limit,
				"total": total,
			},
		})
	}
}

// HandleDocumentStatus reports ingestion progress for one document.
func HandleDocumentStatus(docs *services.DocumentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := docs.GetDocument(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, services.ErrDocumentNotFound) {
				utils.RespondWithNotFound(c, "Document not found")
				return
			}
			utils.RespondWithInternalError(c, "Failed to retrieve document status", nil)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"document_id":   doc.DocumentID,
			"filename":      doc.OriginalName,
			"status":        doc.Status,
			"progress":      doc.Progress,
			"chunk_count":   doc.ChunkCount,
			"error_message": doc.ErrorMessage,
			"uploaded_at":   doc.UploadedAt,
			"processed_at":  doc.ProcessedAt,
		})
	}
}

// HandleDeleteDocument removes a document and its indexed chunks.
func HandleDeleteDocument(docs *services.DocumentService) gin.HandlerFunc {
	return func(c *gin.Context) {
		documentID := c.Param("id")
		if err := docs.DeleteDocument(c.Request.Context(), documentID); err != nil {
			if errors.Is(err, services.ErrDocumentNotFound) {
				utils.RespondWithNotFound(c, "Document not found")
				return
			}
			logger.Error("Delete failed", "document_id", documentID, "error", err)
			utils.RespondWithInternalError(c, "Failed to delete document", nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "document deleted", "document_id": documentID})
	}
}
