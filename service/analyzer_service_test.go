package service

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/document"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"demanddraft-backend/bedrock"
	"demanddraft-backend/models"
)

// fakeExtractionCaller returns a canned extraction payload or an error
type fakeExtractionCaller struct {
	data  models.ExtractedData
	err   error
	usage models.TokenUsage
	calls int
}

func (f *fakeExtractionCaller) Invoke(ctx context.Context, req bedrock.InvokeRequest) (*bedrock.InvokeResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}

	raw, err := json.Marshal(f.data)
	if err != nil {
		return nil, err
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}

	return &bedrock.InvokeResponse{
		Content: []types.ContentBlock{
			&types.ContentBlockMemberToolUse{
				Value: types.ToolUseBlock{
					Name:  aws.String("extract_document_data"),
					Input: document.NewLazyDocument(payload),
				},
			},
		},
		Usage: f.usage,
	}, nil
}

func (f *fakeExtractionCaller) Config() bedrock.Config {
	return bedrock.DefaultConfig()
}

func sampleExtraction() models.ExtractedData {
	incidentDate, _ := time.Parse("2006-01-02", "2024-01-02")
	location := "Main St and 5th Ave, Springfield, IL"
	amount := 30000.0
	return models.ExtractedData{
		Metadata: models.DocumentMetadata{
			DocumentType: "police_report",
		},
		Parties: []models.Party{
			{Name: "Maria Santos", PartyType: models.PartyPlaintiff, Confidence: models.ConfidenceHigh},
			{Name: "Dana Whitfield", PartyType: models.PartyDefendant, Confidence: models.ConfidenceMedium},
		},
		Incident: &models.Incident{
			IncidentDate:     &models.FlexDate{Time: incidentDate},
			IncidentLocation: &location,
			Description:      "Rear-end collision at a controlled intersection",
			Confidence:       models.ConfidenceHigh,
		},
		Damages: []models.Damage{
			{DamageType: models.DamageMedical, Description: "Emergency room treatment", Amount: &amount, Confidence: models.ConfidenceHigh},
			{DamageType: models.DamageProperty, Description: "Vehicle repair estimate pending", Confidence: models.ConfidenceLow},
		},
		CaseFacts: []models.CaseFact{
			{Fact: "Defendant admitted fault at the scene", Importance: "high", Confidence: models.ConfidenceHigh},
		},
		Summary: "Police report for a rear-end collision with admitted fault and documented ER treatment.",
	}
}

func TestAnalyzeDocumentSuccess(t *testing.T) {
	caller := &fakeExtractionCaller{
		data:  sampleExtraction(),
		usage: models.TokenUsage{InputTokens: 800, OutputTokens: 400},
	}
	svc := NewAnalyzerService(WithAnalyzerCaller(caller))

	result := svc.AnalyzeDocument(context.Background(), AnalyzeDocumentRequest{
		DocumentID:   "doc-1",
		DocumentText: "POLICE REPORT ...",
		DocumentType: "police_report",
		FirmID:       "firm-1",
		UserID:       "user-1",
	})

	assert.True(t, result.Success)
	assert.Equal(t, "doc-1", result.DocumentID)
	assert.Equal(t, sampleExtraction(), result.ExtractedData)
	assert.Equal(t, models.TokenUsage{InputTokens: 800, OutputTokens: 400}, result.TokenUsage)
	assert.Equal(t, "anthropic.claude-3-5-sonnet-20241022-v2:0", result.ModelID)
	assert.Empty(t, result.ErrorMessage)
	assert.Equal(t, 1, caller.calls)
}

func TestAnalyzeDocumentFailureReturnsPlaceholder(t *testing.T) {
	caller := &fakeExtractionCaller{
		err: &bedrock.ThrottlingError{Message: "rate exceeded"},
	}
	svc := NewAnalyzerService(WithAnalyzerCaller(caller))

	result := svc.AnalyzeDocument(context.Background(), AnalyzeDocumentRequest{
		DocumentID:   "doc-1",
		DocumentText: "some text",
		DocumentType: "medical_record",
		FirmID:       "firm-1",
	})

	assert.False(t, result.Success)
	assert.Equal(t, "Extraction failed", result.ExtractedData.Summary)
	assert.Equal(t, "medical_record", result.ExtractedData.Metadata.DocumentType)
	assert.NotEmpty(t, result.ErrorMessage)
	assert.Equal(t, models.TokenUsage{}, result.TokenUsage)
}

func TestAnalyzeDocumentFailureUnknownType(t *testing.T) {
	caller := &fakeExtractionCaller{
		err: &bedrock.ServerError{Message: "boom", StatusCode: 500},
	}
	svc := NewAnalyzerService(WithAnalyzerCaller(caller))

	result := svc.AnalyzeDocument(context.Background(), AnalyzeDocumentRequest{
		DocumentID:   "doc-1",
		DocumentText: "some text",
	})

	assert.False(t, result.Success)
	assert.Equal(t, "unknown", result.ExtractedData.Metadata.DocumentType)
}

func TestExtractionSummarySuccess(t *testing.T) {
	svc := NewAnalyzerService()

	result := &models.ExtractionResult{
		DocumentID:            "doc-1",
		ExtractedData:         sampleExtraction(),
		ProcessingTimeSeconds: 2.5,
		TokenUsage:            models.TokenUsage{InputTokens: 800, OutputTokens: 400},
		Success:               true,
	}

	summary := svc.ExtractionSummary(result)

	assert.Equal(t, true, summary["success"])
	assert.Equal(t, "doc-1", summary["document_id"])
	assert.Equal(t, "police_report", summary["document_type"])
	assert.Equal(t, 2, summary["parties_found"])
	assert.Equal(t, 2, summary["damages_found"])
	assert.Equal(t, 1, summary["facts_found"])
	assert.Equal(t, 30000.0, summary["total_damages"])
	assert.Equal(t, 1200, summary["tokens_used"])
	assert.Equal(t, "2024-01-02", summary["incident_date"])
	assert.Equal(t, map[string]int{"parties": 1, "damages": 1, "facts": 1, "incident": 1}, summary["high_confidence_items"])
}

func TestExtractionSummaryFailure(t *testing.T) {
	svc := NewAnalyzerService()

	result := &models.ExtractionResult{
		DocumentID:   "doc-1",
		Success:      false,
		ErrorMessage: "model unavailable",
	}

	summary := svc.ExtractionSummary(result)

	assert.Equal(t, map[string]interface{}{
		"success":     false,
		"error":       "model unavailable",
		"document_id": "doc-1",
	}, summary)
}

func TestExtractionSummaryNoIncidentDate(t *testing.T) {
	svc := NewAnalyzerService()

	data := sampleExtraction()
	data.Incident = nil
	result := &models.ExtractionResult{DocumentID: "doc-1", ExtractedData: data, Success: true}

	summary := svc.ExtractionSummary(result)
	assert.Nil(t, summary["incident_date"])
}

func TestExtractTextFromPDFInvalidData(t *testing.T) {
	svc := NewAnalyzerService()

	garbage := []byte("this is not a pdf")
	_, err := svc.ExtractTextFromPDF(bytes.NewReader(garbage), int64(len(garbage)))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "PDF extraction failed")
}

func TestOrUnknown(t *testing.T) {
	assert.Equal(t, "unknown", orUnknown(""))
	assert.Equal(t, "contract", orUnknown("contract"))
}

func TestRoundSeconds(t *testing.T) {
	assert.Equal(t, 1.23, roundSeconds(1234*time.Millisecond))
	assert.Equal(t, 0.0, roundSeconds(0))
}
