package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"
	"strings"

	"demanddraft-backend/models"
	"demanddraft-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CorrelationIDHeader carries the request correlation ID
const CorrelationIDHeader = "X-Correlation-ID"

// CorrelationMiddleware takes the correlation ID from the request header or
// generates one, and echoes it back on the response
func CorrelationMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationID := c.GetHeader(CorrelationIDHeader)
		if correlationID == "" {
			correlationID = uuid.New().String()
		}
		c.Set("correlationId", correlationID)
		c.Header(CorrelationIDHeader, correlationID)
		c.Next()
	}
}

// AIHandler handles HTTP requests for document analysis, letter generation,
// and refinement sessions
type AIHandler struct {
	analyzer *service.AnalyzerService
	letters  *service.LetterService
	feedback *service.FeedbackService
	logger   *zap.Logger
}

// NewAIHandler creates a new AI handler
func NewAIHandler(analyzer *service.AnalyzerService, letters *service.LetterService, feedback *service.FeedbackService, logger *zap.Logger) *AIHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AIHandler{
		analyzer: analyzer,
		letters:  letters,
		feedback: feedback,
		logger:   logger,
	}
}

// missingFields returns the required keys absent from the raw request body
func missingFields(raw map[string]json.RawMessage, required ...string) []string {
	var missing []string
	for _, field := range required {
		if _, ok := raw[field]; !ok {
			missing = append(missing, field)
		}
	}
	return missing
}

// requireFields binds the raw body and rejects the request with a 400 when
// any required field is absent. Returns false when the request was rejected.
func requireFields(c *gin.Context, required ...string) bool {
	var raw map[string]json.RawMessage
	if err := c.ShouldBindBodyWith(&raw, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return false
	}

	if missing := missingFields(raw, required...); len(missing) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FIELDS",
				"message": "Missing required fields: " + strings.Join(missing, ", "),
			},
		})
		return false
	}

	return true
}

// AnalyzeRequest represents the request body for document analysis
type AnalyzeRequest struct {
	DocumentID   string `json:"document_id"`
	DocumentText string `json:"document_text"`
	DocumentType string `json:"document_type"`
	FirmID       string `json:"firm_id"`
	UserID       string `json:"user_id"`
}

// Analyze handles POST /api/ai/analyze
func (h *AIHandler) Analyze(c *gin.Context) {
	if !requireFields(c, "document_id", "document_text", "firm_id") {
		return
	}

	var req AnalyzeRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	result := h.analyzer.AnalyzeDocument(c.Request.Context(), service.AnalyzeDocumentRequest{
		DocumentID:   req.DocumentID,
		DocumentText: req.DocumentText,
		DocumentType: req.DocumentType,
		FirmID:       req.FirmID,
		UserID:       req.UserID,
	})

	status := http.StatusOK
	if !result.Success {
		status = http.StatusInternalServerError
	}
	c.JSON(status, result)
}

// GenerateRequest represents the request body for letter generation
type GenerateRequest struct {
	models.LetterGenerationRequest
	FirmID string `json:"firm_id"`
	UserID string `json:"user_id"`
}

// Generate handles POST /api/ai/generate
func (h *AIHandler) Generate(c *gin.Context) {
	if !requireFields(c, "case_id", "extracted_data", "template_variables") {
		return
	}

	var req GenerateRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	result := h.letters.GenerateLetter(c.Request.Context(), req.LetterGenerationRequest, req.FirmID, req.UserID)

	status := http.StatusOK
	if !result.Success {
		status = http.StatusInternalServerError
	}
	c.JSON(status, result)
}

// RefineRequest represents the request body for letter refinement
type RefineRequest struct {
	LetterID            string                      `json:"letter_id"`
	CurrentLetter       models.GeneratedLetter      `json:"current_letter"`
	Feedback            models.RefinementFeedback   `json:"feedback"`
	ConversationHistory *models.ConversationHistory `json:"conversation_history"`
	CurrentVersion      int                         `json:"current_version"`
	FirmID              string                      `json:"firm_id"`
	UserID              string                      `json:"user_id"`
}

// Refine handles POST /api/ai/refine
func (h *AIHandler) Refine(c *gin.Context) {
	if !requireFields(c, "letter_id", "current_letter", "feedback", "firm_id") {
		return
	}

	var req RefineRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	history := req.ConversationHistory
	if history == nil {
		history = &models.ConversationHistory{}
	}

	result, err := h.letters.RefineLetter(c.Request.Context(), service.RefineLetterRequest{
		CurrentLetter:  req.CurrentLetter,
		Feedback:       req.Feedback,
		History:        history,
		CurrentVersion: req.CurrentVersion,
		FirmID:         req.FirmID,
		UserID:         req.UserID,
	})
	if err != nil {
		h.logger.Error("letter refinement failed",
			zap.String("letterId", req.LetterID),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":       false,
			"error_message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":              true,
		"refined_letter":       result.RefinedLetter,
		"changes_summary":      result.ChangesSummary,
		"sections_modified":    result.SectionsModified,
		"conversation_history": history,
	})
}

// BatchRefineRequest represents the request body for batch refinement
type BatchRefineRequest struct {
	SessionID     string                      `json:"session_id"`
	CurrentLetter models.GeneratedLetter      `json:"current_letter"`
	FeedbackList  []models.RefinementFeedback `json:"feedback_list"`
	FirmID        string                      `json:"firm_id"`
	UserID        string                      `json:"user_id"`
}

// RefineBatch handles POST /api/ai/refine/batch
func (h *AIHandler) RefineBatch(c *gin.Context) {
	if !requireFields(c, "session_id", "current_letter", "feedback_list", "firm_id") {
		return
	}

	var req BatchRefineRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	result, err := h.feedback.ApplyBatchFeedback(c.Request.Context(), req.SessionID, req.CurrentLetter, req.FeedbackList, req.FirmID, req.UserID)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "SESSION_NOT_FOUND",
					"message": err.Error(),
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":       false,
			"error_message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"refined_letter":    result.RefinedLetter,
		"changes_summary":   result.ChangesSummary,
		"sections_modified": result.SectionsModified,
	})
}

// CreateSessionRequest represents the request body for starting a session
type CreateSessionRequest struct {
	CaseID string                 `json:"case_id"`
	Letter models.GeneratedLetter `json:"letter"`
}

// CreateSession handles POST /api/ai/sessions
func (h *AIHandler) CreateSession(c *gin.Context) {
	if !requireFields(c, "case_id", "letter") {
		return
	}

	var req CreateSessionRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	sessionID := h.feedback.StartRefinementSession(req.CaseID, req.Letter)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"session_id": sessionID,
		},
	})
}

// SessionFeedbackRequest represents a single feedback item for a session
type SessionFeedbackRequest struct {
	CurrentLetter models.GeneratedLetter    `json:"current_letter"`
	Feedback      models.RefinementFeedback `json:"feedback"`
	FirmID        string                    `json:"firm_id"`
	UserID        string                    `json:"user_id"`
}

// SessionFeedback handles POST /api/ai/sessions/:id/feedback
func (h *AIHandler) SessionFeedback(c *gin.Context) {
	sessionID := c.Param("id")

	if !requireFields(c, "current_letter", "feedback", "firm_id") {
		return
	}

	var req SessionFeedbackRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	result, err := h.feedback.ApplyFeedback(c.Request.Context(), sessionID, req.CurrentLetter, req.Feedback, req.FirmID, req.UserID)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "SESSION_NOT_FOUND",
					"message": err.Error(),
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":       false,
			"error_message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"refined_letter":    result.RefinedLetter,
		"changes_summary":   result.ChangesSummary,
		"sections_modified": result.SectionsModified,
	})
}

// SessionHistory handles GET /api/ai/sessions/:id/history
func (h *AIHandler) SessionHistory(c *gin.Context) {
	sessionID := c.Param("id")

	history, err := h.feedback.VersionHistory(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SESSION_NOT_FOUND",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    history,
	})
}

// RollbackRequest represents the request body for a version rollback
type RollbackRequest struct {
	Version int `json:"version"`
}

// SessionRollback handles POST /api/ai/sessions/:id/rollback
func (h *AIHandler) SessionRollback(c *gin.Context) {
	sessionID := c.Param("id")

	if !requireFields(c, "version") {
		return
	}

	var req RollbackRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	letter, err := h.feedback.RollbackToVersion(sessionID, req.Version)
	if err != nil {
		code := "VERSION_NOT_FOUND"
		if errors.Is(err, service.ErrSessionNotFound) {
			code = "SESSION_NOT_FOUND"
		}
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    code,
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"version": req.Version,
			"letter":  letter,
		},
	})
}

// SessionCompare handles GET /api/ai/sessions/:id/compare
func (h *AIHandler) SessionCompare(c *gin.Context) {
	sessionID := c.Param("id")

	versionA, errA := strconv.Atoi(c.Query("version_a"))
	versionB, errB := strconv.Atoi(c.Query("version_b"))
	if errA != nil || errB != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "version_a and version_b query parameters are required integers",
			},
		})
		return
	}

	comparison, err := h.feedback.CompareVersions(sessionID, versionA, versionB)
	if err != nil {
		code := "VERSION_NOT_FOUND"
		if errors.Is(err, service.ErrSessionNotFound) {
			code = "SESSION_NOT_FOUND"
		}
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    code,
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    comparison,
	})
}

// SessionStats handles GET /api/ai/sessions/:id/stats
func (h *AIHandler) SessionStats(c *gin.Context) {
	sessionID := c.Param("id")

	stats, err := h.feedback.RefinementStats(sessionID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "SESSION_NOT_FOUND",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    stats,
	})
}

// DeleteSession handles DELETE /api/ai/sessions/:id
func (h *AIHandler) DeleteSession(c *gin.Context) {
	sessionID := c.Param("id")
	h.feedback.ClearSession(sessionID)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"session_id": sessionID,
		},
	})
}

// SuggestionsRequest represents the request body for letter suggestions
type SuggestionsRequest struct {
	Letter models.GeneratedLetter `json:"letter"`
}

// Suggestions handles POST /api/ai/suggestions
func (h *AIHandler) Suggestions(c *gin.Context) {
	if !requireFields(c, "letter") {
		return
	}

	var req SuggestionsRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	suggestions := h.feedback.SuggestImprovements(&req.Letter)
	if suggestions == nil {
		suggestions = []string{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"suggestions": suggestions,
		},
	})
}

// Health handles GET /health
func (h *AIHandler) Health(c *gin.Context) {
	version := os.Getenv("SERVICE_VERSION")
	if version == "" {
		version = "unknown"
	}
	environment := os.Getenv("ENVIRONMENT")
	if environment == "" {
		environment = "development"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":      "healthy",
		"service":     "demanddraft-backend",
		"version":     version,
		"environment": environment,
	})
}
