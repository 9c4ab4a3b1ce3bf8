package models

import "time"

// TokenUsage tracks model token consumption for a single operation
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Total returns combined input and output tokens
func (u TokenUsage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// ExtractionResult is the outcome of analyzing a document.
// Failures are encoded in the result rather than returned as errors so
// callers always receive usable metadata.
type ExtractionResult struct {
	DocumentID            string        `json:"document_id"`
	ExtractedData         ExtractedData `json:"extracted_data"`
	ProcessingTimeSeconds float64       `json:"processing_time_seconds"`
	TokenUsage            TokenUsage    `json:"token_usage"`
	ModelID               string        `json:"model_id"`
	ExtractionTimestamp   time.Time     `json:"extraction_timestamp"`
	Success               bool          `json:"success"`
	ErrorMessage          string        `json:"error_message,omitempty"`
}

// LetterGenerationRequest describes a demand letter to generate
type LetterGenerationRequest struct {
	CaseID                    string            `json:"case_id"`
	ExtractedData             ExtractedData     `json:"extracted_data"`
	TemplateVariables         TemplateVariables `json:"template_variables"`
	Tone                      ToneStyle         `json:"tone"`
	CustomInstructions        *string           `json:"custom_instructions,omitempty"`
	IncludeSettlementDeadline bool              `json:"include_settlement_deadline"`
	DeadlineDays              int               `json:"deadline_days"`
}

// LetterGenerationResult is the outcome of generating a demand letter
type LetterGenerationResult struct {
	CaseID                string          `json:"case_id"`
	Letter                GeneratedLetter `json:"letter"`
	GenerationTimestamp   time.Time       `json:"generation_timestamp"`
	ModelID               string          `json:"model_id"`
	TokenUsage            TokenUsage      `json:"token_usage"`
	ProcessingTimeSeconds float64         `json:"processing_time_seconds"`
	Version               int             `json:"version"`
	Success               bool            `json:"success"`
	ErrorMessage          string          `json:"error_message,omitempty"`
}

// RefinementResult is the outcome of refining a letter
type RefinementResult struct {
	RefinedLetter    GeneratedLetter `json:"refined_letter"`
	ChangesSummary   string          `json:"changes_summary"`
	SectionsModified []LetterSection `json:"sections_modified"`
}
