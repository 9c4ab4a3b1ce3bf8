package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"demanddraft-backend/bedrock"
	"demanddraft-backend/metrics"
	"demanddraft-backend/models"
	"demanddraft-backend/prompts"
)

const extractionToolName = "extract_document_data"

// AnalyzerService extracts structured case data from legal documents
type AnalyzerService struct {
	caller    bedrock.Caller
	logger    *zap.Logger
	collector *metrics.Collector
}

// AnalyzerServiceOption is a functional option for AnalyzerService
type AnalyzerServiceOption func(*AnalyzerService)

// WithAnalyzerCaller sets the Bedrock caller
func WithAnalyzerCaller(caller bedrock.Caller) AnalyzerServiceOption {
	return func(s *AnalyzerService) {
		s.caller = caller
	}
}

// WithAnalyzerLogger sets the logger
func WithAnalyzerLogger(logger *zap.Logger) AnalyzerServiceOption {
	return func(s *AnalyzerService) {
		s.logger = logger
	}
}

// WithAnalyzerMetrics sets the metrics collector
func WithAnalyzerMetrics(collector *metrics.Collector) AnalyzerServiceOption {
	return func(s *AnalyzerService) {
		s.collector = collector
	}
}

// NewAnalyzerService creates a new analyzer service
func NewAnalyzerService(opts ...AnalyzerServiceOption) *AnalyzerService {
	s := &AnalyzerService{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AnalyzeDocumentRequest represents a request to analyze a document
type AnalyzeDocumentRequest struct {
	DocumentID   string
	DocumentText string
	DocumentType string
	FirmID       string
	UserID       string
}

// AnalyzeDocument extracts structured information from a document.
//
// Errors never propagate: any failure produces a well-formed result with
// Success=false, the error message, and placeholder data so callers always
// have usable metadata.
func (s *AnalyzerService) AnalyzeDocument(ctx context.Context, req AnalyzeDocumentRequest) *models.ExtractionResult {
	start := time.Now()

	data, usage, err := s.extract(ctx, req)
	elapsed := time.Since(start)

	if s.collector != nil {
		s.collector.RecordDocumentAnalysis(req.DocumentType, int64(len(req.DocumentText)), elapsed, err == nil, req.FirmID)
	}

	if err != nil {
		s.logger.Error("document extraction failed",
			zap.String("documentId", req.DocumentID),
			zap.String("firmId", req.FirmID),
			zap.Error(err),
		)
		return &models.ExtractionResult{
			DocumentID: req.DocumentID,
			ExtractedData: models.ExtractedData{
				Metadata: models.DocumentMetadata{DocumentType: orUnknown(req.DocumentType)},
				Summary:  "Extraction failed",
			},
			ProcessingTimeSeconds: roundSeconds(elapsed),
			TokenUsage:            models.TokenUsage{},
			ModelID:               s.modelID(),
			ExtractionTimestamp:   time.Now().UTC(),
			Success:               false,
			ErrorMessage:          err.Error(),
		}
	}

	s.logger.Info("document extraction completed",
		zap.String("documentId", req.DocumentID),
		zap.String("firmId", req.FirmID),
		zap.Float64("processingTime", elapsed.Seconds()),
		zap.Int("inputTokens", usage.InputTokens),
		zap.Int("outputTokens", usage.OutputTokens),
		zap.Int("partiesFound", len(data.Parties)),
		zap.Int("damagesFound", len(data.Damages)),
		zap.Int("factsFound", len(data.CaseFacts)),
	)

	return &models.ExtractionResult{
		DocumentID:            req.DocumentID,
		ExtractedData:         *data,
		ProcessingTimeSeconds: roundSeconds(elapsed),
		TokenUsage:            usage,
		ModelID:               s.modelID(),
		ExtractionTimestamp:   time.Now().UTC(),
		Success:               true,
	}
}

func (s *AnalyzerService) extract(ctx context.Context, req AnalyzeDocumentRequest) (*models.ExtractedData, models.TokenUsage, error) {
	if s.caller == nil {
		return nil, models.TokenUsage{}, errors.New("bedrock caller not set")
	}

	systemPrompt := prompts.ExtractionSystemPrompt
	if req.DocumentType != "" {
		if guidelines := prompts.DocumentTypeGuidelines(req.DocumentType); guidelines != "" {
			systemPrompt += "\n\n" + guidelines
		}
	}

	tool, err := bedrock.ToolSchema(&models.ExtractedData{}, extractionToolName, "Extract structured information from the legal document")
	if err != nil {
		return nil, models.TokenUsage{}, err
	}

	resp, err := s.caller.Invoke(ctx, bedrock.InvokeRequest{
		Messages:   []bedrock.Message{{Role: "user", Content: prompts.ExtractionPrompt(req.DocumentText, req.DocumentType)}},
		System:     systemPrompt,
		Tools:      bedrock.Tools(tool),
		ToolChoice: bedrock.ForceTool(extractionToolName),
		FirmID:     req.FirmID,
		UserID:     req.UserID,
	})
	if err != nil {
		return nil, models.TokenUsage{}, err
	}

	var data models.ExtractedData
	if err := bedrock.ExtractToolResult(resp.Content, &data); err != nil {
		return nil, resp.Usage, err
	}
	return &data, resp.Usage, nil
}

// ExtractTextFromPDF extracts text from a PDF page by page. Pages that fail
// keep their place with a failure marker; a PDF yielding no text at all is
// an error.
func (s *AnalyzerService) ExtractTextFromPDF(r io.ReaderAt, size int64) (string, error) {
	reader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("PDF extraction failed: %w", err)
	}

	var parts []string
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			s.logger.Warn("failed to extract text from page",
				zap.Int("page", pageNum),
				zap.Error(err),
			)
			parts = append(parts, fmt.Sprintf("--- Page %d ---\n[Text extraction failed]\n", pageNum))
			continue
		}
		if text != "" {
			parts = append(parts, fmt.Sprintf("--- Page %d ---\n%s\n", pageNum, text))
		}
	}

	if len(parts) == 0 {
		return "", errors.New("no text could be extracted from PDF")
	}

	return strings.Join(parts, "\n"), nil
}

// AnalyzePDFRequest represents a request to analyze a PDF document
type AnalyzePDFRequest struct {
	DocumentID   string
	Reader       io.ReaderAt
	Size         int64
	DocumentType string
	FirmID       string
	UserID       string
}

// AnalyzePDF extracts text from a PDF and analyzes it. PDF read failures
// propagate as errors; analysis failures are encoded in the result.
func (s *AnalyzerService) AnalyzePDF(ctx context.Context, req AnalyzePDFRequest) (*models.ExtractionResult, error) {
	s.logger.Info("extracting text from PDF", zap.String("documentId", req.DocumentID))

	text, err := s.ExtractTextFromPDF(req.Reader, req.Size)
	if err != nil {
		return nil, err
	}

	if len(strings.TrimSpace(text)) < 100 {
		s.logger.Warn("very short text extracted from PDF",
			zap.String("documentId", req.DocumentID),
			zap.Int("chars", len(text)),
		)
	}

	return s.AnalyzeDocument(ctx, AnalyzeDocumentRequest{
		DocumentID:   req.DocumentID,
		DocumentText: text,
		DocumentType: req.DocumentType,
		FirmID:       req.FirmID,
		UserID:       req.UserID,
	}), nil
}

// ExtractionSummary builds a human-readable summary of an extraction result
func (s *AnalyzerService) ExtractionSummary(result *models.ExtractionResult) map[string]interface{} {
	if !result.Success {
		return map[string]interface{}{
			"success":     false,
			"error":       result.ErrorMessage,
			"document_id": result.DocumentID,
		}
	}

	data := result.ExtractedData
	summary := map[string]interface{}{
		"success":               true,
		"document_id":           result.DocumentID,
		"document_type":         data.Metadata.DocumentType,
		"summary":               data.Summary,
		"parties_found":         len(data.Parties),
		"damages_found":         len(data.Damages),
		"facts_found":           len(data.CaseFacts),
		"high_confidence_items": data.HighConfidenceCounts(),
		"total_damages":         data.CalculateTotalDamages(),
		"processing_time":       result.ProcessingTimeSeconds,
		"tokens_used":           result.TokenUsage.Total(),
		"extraction_notes":      data.ExtractionNotes,
	}
	if data.Incident != nil && data.Incident.IncidentDate != nil && !data.Incident.IncidentDate.IsZero() {
		summary["incident_date"] = data.Incident.IncidentDate.Format("2006-01-02")
	} else {
		summary["incident_date"] = nil
	}
	return summary
}

func (s *AnalyzerService) modelID() string {
	if s.caller == nil {
		return ""
	}
	return s.caller.Config().ModelID
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func roundSeconds(d time.Duration) float64 {
	return float64(int(d.Seconds()*100)) / 100
}
