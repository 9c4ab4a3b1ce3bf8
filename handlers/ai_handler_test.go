package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"demanddraft-backend/models"
	"demanddraft-backend/service"
)

func newTestRouter(t *testing.T) (*gin.Engine, *service.FeedbackService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	analyzer := service.NewAnalyzerService()
	letters := service.NewLetterService()
	feedback := service.NewFeedbackService(service.WithFeedbackRefiner(letters))
	h := NewAIHandler(analyzer, letters, feedback, zap.NewNop())

	r := gin.New()
	r.Use(CorrelationMiddleware())
	r.GET("/health", h.Health)

	ai := r.Group("/api/ai")
	ai.POST("/analyze", h.Analyze)
	ai.POST("/generate", h.Generate)
	ai.POST("/refine", h.Refine)
	ai.POST("/refine/batch", h.RefineBatch)
	ai.POST("/suggestions", h.Suggestions)
	ai.POST("/sessions", h.CreateSession)
	ai.POST("/sessions/:id/feedback", h.SessionFeedback)
	ai.GET("/sessions/:id/history", h.SessionHistory)
	ai.POST("/sessions/:id/rollback", h.SessionRollback)
	ai.GET("/sessions/:id/compare", h.SessionCompare)
	ai.GET("/sessions/:id/stats", h.SessionStats)
	ai.DELETE("/sessions/:id", h.DeleteSession)

	return r, feedback
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var decoded map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &decoded))
	}
	return w, decoded
}

func errorCode(t *testing.T, body map[string]interface{}) string {
	t.Helper()
	errObj, ok := body["error"].(map[string]interface{})
	require.True(t, ok, "response has no error object: %v", body)
	code, _ := errObj["code"].(string)
	return code
}

func completeLetter() models.GeneratedLetter {
	deadline := "2024-03-15"
	return models.GeneratedLetter{
		Header: models.LetterHeader{
			Date:             "January 15, 2024",
			RecipientName:    "Jordan Reyes",
			RecipientAddress: "100 Insurance Way",
			SubjectLine:      "Re: Claim #AC-2024-0042",
			Salutation:       "Dear Mr. Reyes:",
		},
		Introduction: models.LetterIntroduction{
			Content:    "This firm represents Maria Santos in connection with the collision of January 2, 2024.",
			ClientName: "Maria Santos",
		},
		Facts: models.LetterFacts{
			Content: strings.Repeat("Your insured ran a red light and struck our client's vehicle at speed. ", 3),
		},
		Liability: models.LetterLiability{
			Content:       strings.Repeat("Failure to obey the signal constitutes negligence per se under state law. ", 3),
			LegalTheories: []string{"negligence"},
		},
		Damages: models.LetterDamages{
			Content:      "Our client incurred medical expenses and lost wages totaling $45,000.00 as itemized below.",
			TotalDamages: 45000,
		},
		Demand: models.LetterDemand{
			Content:          "We demand payment of $60,000.00 within thirty days to resolve this matter without litigation.",
			DemandAmount:     60000,
			ResponseDeadline: &deadline,
		},
		Closing: models.LetterClosing{
			Content:        "We look forward to your prompt response.",
			SignatureBlock: "Alex Chen, Esq.",
			ClosingPhrase:  "Sincerely,",
		},
	}
}

func TestHealthEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	w, body := doJSON(t, r, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "demanddraft-backend", body["service"])
	assert.NotEmpty(t, body["version"])
	assert.NotEmpty(t, body["environment"])
}

func TestCorrelationIDGenerated(t *testing.T) {
	r, _ := newTestRouter(t)

	w, _ := doJSON(t, r, http.MethodGet, "/health", nil)
	assert.NotEmpty(t, w.Header().Get(CorrelationIDHeader))
}

func TestCorrelationIDEchoed(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(CorrelationIDHeader, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get(CorrelationIDHeader))
}

func TestAnalyzeMissingFields(t *testing.T) {
	r, _ := newTestRouter(t)

	w, body := doJSON(t, r, http.MethodPost, "/api/ai/analyze", gin.H{"document_id": "doc-1"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "MISSING_FIELDS", errorCode(t, body))

	errObj := body["error"].(map[string]interface{})
	assert.Equal(t, "Missing required fields: document_text, firm_id", errObj["message"])
}

func TestAnalyzeInvalidJSON(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/ai/analyze", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzeFailureReturns500(t *testing.T) {
	r, _ := newTestRouter(t)

	// No model caller is configured, so analysis fails but still returns a
	// well-formed result body
	w, body := doJSON(t, r, http.MethodPost, "/api/ai/analyze", gin.H{
		"document_id":   "doc-1",
		"document_text": "POLICE REPORT",
		"firm_id":       "firm-1",
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "doc-1", body["document_id"])
	assert.NotEmpty(t, body["error_message"])
}

func TestGenerateMissingFields(t *testing.T) {
	r, _ := newTestRouter(t)

	w, body := doJSON(t, r, http.MethodPost, "/api/ai/generate", gin.H{"case_id": "CASE-1"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	errObj := body["error"].(map[string]interface{})
	assert.Equal(t, "Missing required fields: extracted_data, template_variables", errObj["message"])
}

func TestRefineFailureShape(t *testing.T) {
	r, _ := newTestRouter(t)

	w, body := doJSON(t, r, http.MethodPost, "/api/ai/refine", gin.H{
		"letter_id":      "letter-1",
		"current_letter": completeLetter(),
		"feedback":       gin.H{"instruction": "shorten the facts"},
		"firm_id":        "firm-1",
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, false, body["success"])
	assert.NotEmpty(t, body["error_message"])
}

func TestCreateSession(t *testing.T) {
	r, _ := newTestRouter(t)

	w, body := doJSON(t, r, http.MethodPost, "/api/ai/sessions", gin.H{
		"case_id": "CASE-1",
		"letter":  completeLetter(),
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "CASE-1_refinement", data["session_id"])
}

func TestSessionHistoryAfterCreate(t *testing.T) {
	r, _ := newTestRouter(t)

	doJSON(t, r, http.MethodPost, "/api/ai/sessions", gin.H{
		"case_id": "CASE-1",
		"letter":  completeLetter(),
	})

	w, body := doJSON(t, r, http.MethodGet, "/api/ai/sessions/CASE-1_refinement/history", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	versions := body["data"].([]interface{})
	require.Len(t, versions, 1)
	first := versions[0].(map[string]interface{})
	assert.Equal(t, float64(1), first["version"])
	assert.Equal(t, "Initial generation", first["changes_summary"])
}

func TestSessionHistoryUnknownSession(t *testing.T) {
	r, _ := newTestRouter(t)

	w, body := doJSON(t, r, http.MethodGet, "/api/ai/sessions/nope/history", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "SESSION_NOT_FOUND", errorCode(t, body))
}

func TestSessionRollback(t *testing.T) {
	r, _ := newTestRouter(t)

	doJSON(t, r, http.MethodPost, "/api/ai/sessions", gin.H{
		"case_id": "CASE-1",
		"letter":  completeLetter(),
	})

	w, body := doJSON(t, r, http.MethodPost, "/api/ai/sessions/CASE-1_refinement/rollback", gin.H{"version": 1})

	assert.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["version"])
	assert.NotNil(t, data["letter"])
}

func TestSessionRollbackMissingVersionField(t *testing.T) {
	r, _ := newTestRouter(t)

	w, body := doJSON(t, r, http.MethodPost, "/api/ai/sessions/CASE-1_refinement/rollback", gin.H{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	errObj := body["error"].(map[string]interface{})
	assert.Equal(t, "Missing required fields: version", errObj["message"])
}

func TestSessionRollbackUnknownVersion(t *testing.T) {
	r, _ := newTestRouter(t)

	doJSON(t, r, http.MethodPost, "/api/ai/sessions", gin.H{
		"case_id": "CASE-1",
		"letter":  completeLetter(),
	})

	w, body := doJSON(t, r, http.MethodPost, "/api/ai/sessions/CASE-1_refinement/rollback", gin.H{"version": 42})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "VERSION_NOT_FOUND", errorCode(t, body))
}

func TestSessionRollbackUnknownSession(t *testing.T) {
	r, _ := newTestRouter(t)

	w, body := doJSON(t, r, http.MethodPost, "/api/ai/sessions/nope/rollback", gin.H{"version": 1})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "SESSION_NOT_FOUND", errorCode(t, body))
}

func TestSessionCompareInvalidQuery(t *testing.T) {
	r, _ := newTestRouter(t)

	w, body := doJSON(t, r, http.MethodGet, "/api/ai/sessions/CASE-1_refinement/compare?version_a=x", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", errorCode(t, body))
}

func TestSessionCompareSameVersion(t *testing.T) {
	r, _ := newTestRouter(t)

	doJSON(t, r, http.MethodPost, "/api/ai/sessions", gin.H{
		"case_id": "CASE-1",
		"letter":  completeLetter(),
	})

	w, body := doJSON(t, r, http.MethodGet, "/api/ai/sessions/CASE-1_refinement/compare?version_a=1&version_b=1", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, float64(0), data["section_count_modified"])
}

func TestSessionStats(t *testing.T) {
	r, _ := newTestRouter(t)

	doJSON(t, r, http.MethodPost, "/api/ai/sessions", gin.H{
		"case_id": "CASE-1",
		"letter":  completeLetter(),
	})

	w, body := doJSON(t, r, http.MethodGet, "/api/ai/sessions/CASE-1_refinement/stats", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "CASE-1_refinement", data["session_id"])
	assert.Equal(t, float64(1), data["total_versions"])
	assert.Equal(t, float64(1), data["current_version"])
	assert.Equal(t, float64(0), data["total_messages"])
}

func TestDeleteSession(t *testing.T) {
	r, _ := newTestRouter(t)

	doJSON(t, r, http.MethodPost, "/api/ai/sessions", gin.H{
		"case_id": "CASE-1",
		"letter":  completeLetter(),
	})

	w, _ := doJSON(t, r, http.MethodDelete, "/api/ai/sessions/CASE-1_refinement", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = doJSON(t, r, http.MethodGet, "/api/ai/sessions/CASE-1_refinement/history", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRefineBatchUnknownSession(t *testing.T) {
	r, _ := newTestRouter(t)

	w, body := doJSON(t, r, http.MethodPost, "/api/ai/refine/batch", gin.H{
		"session_id":     "nope",
		"current_letter": completeLetter(),
		"feedback_list":  []gin.H{{"instruction": "fix it", "priority": "high"}},
		"firm_id":        "firm-1",
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "SESSION_NOT_FOUND", errorCode(t, body))
}

func TestSuggestionsEmptyLetter(t *testing.T) {
	r, _ := newTestRouter(t)

	w, body := doJSON(t, r, http.MethodPost, "/api/ai/suggestions", gin.H{
		"letter": models.EmptyLetter(),
	})

	assert.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]interface{})
	suggestions := data["suggestions"].([]interface{})
	assert.Contains(t, suggestions, "Header section is incomplete or missing")
	assert.Contains(t, suggestions, "Consider adding a response deadline to the demand")
}

func TestSuggestionsCompleteLetter(t *testing.T) {
	r, _ := newTestRouter(t)

	w, body := doJSON(t, r, http.MethodPost, "/api/ai/suggestions", gin.H{
		"letter": completeLetter(),
	})

	assert.Equal(t, http.StatusOK, w.Code)
	data := body["data"].(map[string]interface{})
	suggestions := data["suggestions"].([]interface{})
	assert.Empty(t, suggestions)
}
