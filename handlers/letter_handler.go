package handlers

import (
	"net/http"
	"strconv"
	"time"

	"demanddraft-backend/models"
	"demanddraft-backend/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LetterHandler handles HTTP requests for persisted demand letters
type LetterHandler struct {
	letterRepo *repository.DemandLetterRepository
}

// NewLetterHandler creates a new letter handler
func NewLetterHandler(letterRepo *repository.DemandLetterRepository) *LetterHandler {
	return &LetterHandler{letterRepo: letterRepo}
}

// CreateLetterRequest represents the request body for creating a letter record
type CreateLetterRequest struct {
	FirmID        string                `json:"firm_id" binding:"required"`
	CreatedBy     string                `json:"created_by" binding:"required"`
	CaseID        *string               `json:"case_id"`
	Title         string                `json:"title" binding:"required"`
	ExtractedData *models.ExtractedData `json:"extracted_data"`
}

// CreateLetter handles POST /api/letters
func (h *LetterHandler) CreateLetter(c *gin.Context) {
	var req CreateLetterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	firmID, err := uuid.Parse(req.FirmID)
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
	createdBy, err := uuid.Parse(req.CreatedBy)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_USER_ID",
				"message": "Invalid created_by format",
			},
		})
		return
	}

	letter := &models.DemandLetter{
		FirmID:             firmID,
		CreatedBy:          createdBy,
		CaseID:             req.CaseID,
		Title:              req.Title,
		Status:             models.LetterDraft,
		CurrentVersion:     0,
		ExtractedData:      req.ExtractedData,
		GenerationMetadata: models.GenerationMetadata{},
	}

	if err := h.letterRepo.Create(c.Request.Context(), letter); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CREATE_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    letter,
	})
}

// GetLetter handles GET /api/letters/:id
func (h *LetterHandler) GetLetter(c *gin.Context) {
	letter, ok := h.loadLetter(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    letter,
	})
}

// ListLetters handles GET /api/letters
func (h *LetterHandler) ListLetters(c *gin.Context) {
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

	var status *models.LetterStatus
	if s := c.Query("status"); s != "" {
		ls := models.LetterStatus(s)
		status = &ls
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	letters, err := h.letterRepo.ListByFirmID(c.Request.Context(), firmID, status, limit, offset)
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
		"data":    letters,
	})
}

// UpdateLetterContentRequest represents the request body for saving content
type UpdateLetterContentRequest struct {
	Content        string  `json:"content" binding:"required"`
	ChangesSummary string  `json:"changes_summary"`
	UpdatedBy      string  `json:"updated_by" binding:"required"`
	Status         *string `json:"status"`
}

// UpdateLetterContent handles PUT /api/letters/:id/content. Saves new
// content, bumps the version, and records a version snapshot.
func (h *LetterHandler) UpdateLetterContent(c *gin.Context) {
	letter, ok := h.loadLetter(c)
	if !ok {
		return
	}

	var req UpdateLetterContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	updatedBy, err := uuid.Parse(req.UpdatedBy)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_USER_ID",
				"message": "Invalid updated_by format",
			},
		})
		return
	}

	newVersion := letter.CurrentVersion + 1
	if err := h.letterRepo.UpdateContent(c.Request.Context(), letter.ID, req.Content, newVersion); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPDATE_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	changesSummary := req.ChangesSummary
	if changesSummary == "" {
		changesSummary = "Content updated"
	}
	version := &models.LetterVersion{
		LetterID:       letter.ID,
		Version:        newVersion,
		Content:        req.Content,
		ChangesSummary: changesSummary,
		CreatedBy:      updatedBy,
	}
	if err := h.letterRepo.AddVersion(c.Request.Context(), version); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VERSION_SAVE_FAILED",
				"message": err.Error(),
			},
		})
		return
	}

	if req.Status != nil {
		status := models.LetterStatus(*req.Status)
		if err := h.letterRepo.UpdateStatus(c.Request.Context(), letter.ID, status); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "STATUS_UPDATE_FAILED",
					"message": err.Error(),
				},
			})
			return
		}
		if status == models.LetterComplete {
			now := time.Now().UTC()
			letter.CompletedAt = &now
			letter.Status = status
			letter.CurrentContent = &req.Content
			letter.CurrentVersion = newVersion
			if err := h.letterRepo.Update(c.Request.Context(), letter); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "UPDATE_FAILED",
						"message": err.Error(),
					},
				})
				return
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"id":      letter.ID,
			"version": newVersion,
		},
	})
}

// ListLetterVersions handles GET /api/letters/:id/versions
func (h *LetterHandler) ListLetterVersions(c *gin.Context) {
	letter, ok := h.loadLetter(c)
	if !ok {
		return
	}

	versions, err := h.letterRepo.ListVersions(c.Request.Context(), letter.ID)
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
		"data":    versions,
	})
}

// DeleteLetter handles DELETE /api/letters/:id
func (h *LetterHandler) DeleteLetter(c *gin.Context) {
	letter, ok := h.loadLetter(c)
	if !ok {
		return
	}

	if err := h.letterRepo.Delete(c.Request.Context(), letter.ID, letter.FirmID); err != nil {
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
			"id": letter.ID,
		},
	})
}

// loadLetter parses the path/query identifiers and fetches the firm-scoped
// letter, writing the error response itself when anything is off
func (h *LetterHandler) loadLetter(c *gin.Context) (*models.DemandLetter, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_ID",
				"message": "Invalid letter ID format",
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

	letter, err := h.letterRepo.GetByID(c.Request.Context(), id, firmID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "Letter not found",
			},
		})
		return nil, false
	}

	return letter, true
}
