package handlers

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"demanddraft-backend/models"
	"demanddraft-backend/repository"
	"demanddraft-backend/service"
	"demanddraft-backend/storage"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DocumentHandler handles HTTP requests for source document operations
type DocumentHandler struct {
	docRepo          *repository.DocumentRepository
	storage          storage.Storage
	analyzer         *service.AnalyzerService
	logger           *zap.Logger
	maxFileSize      int64
	allowedMimeTypes map[string]bool
}

// NewDocumentHandler creates a new document handler
func NewDocumentHandler(docRepo *repository.DocumentRepository, store storage.Storage, analyzer *service.AnalyzerService, logger *zap.Logger) *DocumentHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocumentHandler{
		docRepo:     docRepo,
		storage:     store,
		analyzer:    analyzer,
		logger:      logger,
		maxFileSize: 10 * 1024 * 1024, // 10MB
		allowedMimeTypes: map[string]bool{
			"application/pdf":    true,
			"text/plain":         true,
			"application/msword": true, // .doc
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true, // .docx
		},
	}
}

// UploadDocument handles POST /api/documents/upload
func (h *DocumentHandler) UploadDocument(c *gin.Context) {
	firmIDStr := c.PostForm("firm_id")
	userIDStr := c.PostForm("user_id")
	if firmIDStr == "" || userIDStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FIELDS",
				"message": "firm_id and user_id form fields are required",
			},
		})
		return
	}

	firmID, err := uuid.Parse(firmIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_FIRM_ID",
				"message": "Invalid firm_id format",
			},
		})
		return
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_USER_ID",
				"message": "Invalid user_id format",
			},
		})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "File is required",
			},
		})
		return
	}

	if fileHeader.Size > h.maxFileSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_TOO_LARGE",
				"message": fmt.Sprintf("File size exceeds maximum of %d bytes", h.maxFileSize),
			},
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FILE_OPEN_ERROR",
				"message": err.Error(),
			},
		})
		return
	}
	defer file.Close()

	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = mimeTypeFromFilename(fileHeader.Filename)
	}

	if !h.allowedMimeTypes[mimeType] && !strings.HasPrefix(mimeType, "text/") {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_FILE_TYPE",
				"message": "File type not allowed. Allowed types: PDF, TXT, DOC, DOCX",
			},
		})
		return
	}

	documentID := uuid.New()

	storagePath, err := h.storage.Upload(c.Request.Context(), firmID, documentID, fileHeader.Filename, file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_FAILED",
				"message": fmt.Sprintf("Failed to upload document: %v", err),
			},
		})
		return
	}

	doc := &models.Document{
		ID:              documentID,
		FirmID:          firmID,
		UploadedBy:      userID,
		Filename:        fileHeader.Filename,
		FileType:        mimeType,
		FileSize:        fileHeader.Size,
		StoragePath:     storagePath,
		VirusScanStatus: models.ScanPending,
		Metadata:        models.DocumentMeta{},
	}
	if documentType := c.PostForm("document_type"); documentType != "" {
		doc.DocumentType = &documentType
	}

	if err := h.docRepo.Create(c.Request.Context(), doc); err != nil {
		// Clean up the stored object before failing
		h.storage.Delete(c.Request.Context(), storagePath)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": fmt.Sprintf("Failed to save document record: %v", err),
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"id":                doc.ID,
			"filename":          doc.Filename,
			"file_type":         doc.FileType,
			"file_size":         doc.FileSize,
			"virus_scan_status": doc.VirusScanStatus,
			"created_at":        doc.CreatedAt,
		},
	})
}

// GetDocument handles GET /api/documents/:id
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	doc, ok := h.loadDocument(c)
	if !ok {
		return
	}

	reader, err := h.storage.Download(c.Request.Context(), doc.StoragePath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DOWNLOAD_FAILED",
				"message": fmt.Sprintf("Failed to download document: %v", err),
			},
		})
		return
	}
	defer reader.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	c.DataFromReader(http.StatusOK, doc.FileSize, doc.FileType, reader, nil)
}

// ListDocuments handles GET /api/documents
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	firmID, err := uuid.Parse(c.Query("firm_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_FIRM_ID",
				"message": "firm_id query parameter is required",
			},
		})
		return
	}

	var documentType *string
	if dt := c.Query("document_type"); dt != "" {
		documentType = &dt
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	documents, err := h.docRepo.ListByFirmID(c.Request.Context(), firmID, documentType, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "LIST_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    documents,
	})
}

// AnalyzeDocument handles POST /api/documents/:id/analyze. Downloads the
// stored PDF, extracts its text, and runs structured extraction.
func (h *DocumentHandler) AnalyzeDocument(c *gin.Context) {
	doc, ok := h.loadDocument(c)
	if !ok {
		return
	}

	if doc.VirusScanStatus == models.ScanInfected {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DOCUMENT_INFECTED",
				"message": "Document failed virus scanning and cannot be analyzed",
			},
		})
		return
	}

	reader, err := h.storage.Download(c.Request.Context(), doc.StoragePath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DOWNLOAD_FAILED",
				"message": fmt.Sprintf("Failed to download document: %v", err),
			},
		})
		return
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "READ_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	documentType := ""
	if doc.DocumentType != nil {
		documentType = *doc.DocumentType
	}

	result, err := h.analyzer.AnalyzePDF(c.Request.Context(), service.AnalyzePDFRequest{
		DocumentID:   doc.ID.String(),
		Reader:       bytes.NewReader(data),
		Size:         int64(len(data)),
		DocumentType: documentType,
		FirmID:       doc.FirmID.String(),
	})
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EXTRACTION_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	// Persist the extraction summary on the document record
	doc.Metadata["extraction_summary"] = h.analyzer.ExtractionSummary(result)
	if err := h.docRepo.UpdateMetadata(c.Request.Context(), doc.ID, doc.Metadata); err != nil {
		h.logger.Warn("failed to persist extraction summary",
			zap.String("documentId", doc.ID.String()),
			zap.Error(err),
		)
	}

	status := http.StatusOK
	if !result.Success {
		status = http.StatusInternalServerError
	}
	c.JSON(status, result)
}

// DeleteDocument handles DELETE /api/documents/:id
func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	doc, ok := h.loadDocument(c)
	if !ok {
		return
	}

	if err := h.storage.Delete(c.Request.Context(), doc.StoragePath); err != nil {
		h.logger.Warn("failed to delete stored document",
			zap.String("documentId", doc.ID.String()),
			zap.Error(err),
		)
	}

	if err := h.docRepo.Delete(c.Request.Context(), doc.ID, doc.FirmID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DELETE_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"id": doc.ID,
		},
	})
}

// loadDocument parses the path/query identifiers and fetches the firm-scoped
// document, writing the error response itself when anything is off
func (h *DocumentHandler) loadDocument(c *gin.Context) (*models.Document, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid document ID format",
			},
		})
		return nil, false
	}

	firmID, err := uuid.Parse(c.Query("firm_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_FIRM_ID",
				"message": "firm_id query parameter is required",
			},
		})
		return nil, false
	}

	doc, err := h.docRepo.GetByID(c.Request.Context(), id, firmID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Document not found",
			},
		})
		return nil, false
	}

	return doc, true
}

// mimeTypeFromFilename infers a MIME type from the file extension
func mimeTypeFromFilename(filename string) string {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".pdf"):
		return "application/pdf"
	case strings.HasSuffix(lower, ".txt"):
		return "text/plain"
	case strings.HasSuffix(lower, ".doc"):
		return "application/msword"
	case strings.HasSuffix(lower, ".docx"):
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}
