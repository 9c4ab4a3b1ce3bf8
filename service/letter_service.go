package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"go.uber.org/zap"

	"demanddraft-backend/bedrock"
	"demanddraft-backend/metrics"
	"demanddraft-backend/models"
	"demanddraft-backend/prompts"
)

const (
	generateToolName   = "generate_demand_letter"
	refineToolName     = "refine_demand_letter"
	regenerateToolName = "regenerate_letter_section"
	adjustToneToolName = "adjust_letter_tone"
)

// LetterService generates and refines demand letters
type LetterService struct {
	caller    bedrock.Caller
	logger    *zap.Logger
	collector *metrics.Collector
}

// LetterServiceOption is a functional option for LetterService
type LetterServiceOption func(*LetterService)

// WithLetterCaller sets the Bedrock caller
func WithLetterCaller(caller bedrock.Caller) LetterServiceOption {
	return func(s *LetterService) {
		s.caller = caller
	}
}

// WithLetterLogger sets the logger
func WithLetterLogger(logger *zap.Logger) LetterServiceOption {
	return func(s *LetterService) {
		s.logger = logger
	}
}

// WithLetterMetrics sets the metrics collector
func WithLetterMetrics(collector *metrics.Collector) LetterServiceOption {
	return func(s *LetterService) {
		s.collector = collector
	}
}

// NewLetterService creates a new letter service
func NewLetterService(opts ...LetterServiceOption) *LetterService {
	s := &LetterService{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateLetter generates a demand letter from extracted case data.
//
// Failures never propagate: the result carries Success=false, Version=0,
// zero token usage, and a structurally complete empty letter.
func (s *LetterService) GenerateLetter(ctx context.Context, req models.LetterGenerationRequest, firmID, userID string) *models.LetterGenerationResult {
	start := time.Now()

	s.logger.Info("starting letter generation",
		zap.String("caseId", req.CaseID),
		zap.String("firmId", firmID),
		zap.String("tone", string(req.Tone)),
	)

	letter, usage, err := s.generate(ctx, req, firmID, userID)
	elapsed := time.Since(start)

	if err != nil {
		s.logger.Error("letter generation failed",
			zap.String("caseId", req.CaseID),
			zap.Error(err),
		)
		if s.collector != nil {
			s.collector.RecordLetterGeneration(elapsed, false, firmID, 0)
		}
		return &models.LetterGenerationResult{
			CaseID:                req.CaseID,
			Letter:                models.EmptyLetter(),
			GenerationTimestamp:   time.Now().UTC(),
			ModelID:               s.modelID(),
			TokenUsage:            models.TokenUsage{},
			ProcessingTimeSeconds: roundSeconds(elapsed),
			Version:               0,
			Success:               false,
			ErrorMessage:          err.Error(),
		}
	}

	s.logger.Info("letter generation completed",
		zap.String("caseId", req.CaseID),
		zap.Float64("processingTime", elapsed.Seconds()),
		zap.Int("inputTokens", usage.InputTokens),
		zap.Int("outputTokens", usage.OutputTokens),
		zap.Int("version", 1),
	)
	if s.collector != nil {
		s.collector.RecordLetterGeneration(elapsed, true, firmID, len(letter.ToFullText()))
	}

	return &models.LetterGenerationResult{
		CaseID:                req.CaseID,
		Letter:                *letter,
		GenerationTimestamp:   time.Now().UTC(),
		ModelID:               s.modelID(),
		TokenUsage:            usage,
		ProcessingTimeSeconds: roundSeconds(elapsed),
		Version:               1,
		Success:               true,
	}
}

func (s *LetterService) generate(ctx context.Context, req models.LetterGenerationRequest, firmID, userID string) (*models.GeneratedLetter, models.TokenUsage, error) {
	if s.caller == nil {
		return nil, models.TokenUsage{}, errors.New("bedrock caller not set")
	}
	if req.DeadlineDays <= 0 {
		req.DeadlineDays = 30
	}
	if req.Tone == "" {
		req.Tone = models.ToneFormal
	}

	return s.invokeForLetter(ctx, invokeLetterParams{
		messages: []bedrock.Message{{Role: "user", Content: prompts.GenerationPrompt(req)}},
		toolName: generateToolName,
		toolDesc: "Generate a structured demand letter with all required sections",
		firmID:   firmID,
		userID:   userID,
	})
}

// RefineLetterRequest represents a request to refine an existing letter
type RefineLetterRequest struct {
	CurrentLetter  models.GeneratedLetter
	Feedback       models.RefinementFeedback
	History        *models.ConversationHistory
	CurrentVersion int
	FirmID         string
	UserID         string
}

// RefineLetter refines a letter based on attorney feedback. The conversation
// history gains the refinement exchange and a new version snapshot; the
// version is appended even when the model returned the letter unchanged so
// the audit trail always reflects every refinement request.
func (s *LetterService) RefineLetter(ctx context.Context, req RefineLetterRequest) (*models.RefinementResult, error) {
	if s.caller == nil {
		return nil, errors.New("bedrock caller not set")
	}

	history := req.History
	if history == nil {
		history = &models.ConversationHistory{}
	}
	currentVersion := req.CurrentVersion
	if currentVersion <= 0 {
		currentVersion = 1
	}

	s.logger.Info("starting letter refinement",
		zap.Int("currentVersion", currentVersion),
		zap.String("firmId", req.FirmID),
	)

	userMessage := prompts.RefinementPrompt(&req.CurrentLetter, req.Feedback.Instruction, req.Feedback.TargetSection, req.Feedback.Context)
	history.AddMessage("user", userMessage)

	letter, _, err := s.invokeForLetter(ctx, invokeLetterParams{
		messages: toBedrockMessages(history.Messages),
		toolName: refineToolName,
		toolDesc: "Refine the demand letter based on attorney feedback",
		firmID:   req.FirmID,
		userID:   req.UserID,
	})
	if err != nil {
		return nil, err
	}

	sectionsModified := s.CompareLetters(&req.CurrentLetter, letter)
	changesSummary := changeSummary(sectionsModified, req.Feedback.Instruction)

	history.AddMessage("assistant", fmt.Sprintf("Letter refined. Changes: %s", changesSummary))
	history.AddVersion(currentVersion+1, *letter, changesSummary)

	s.logger.Info("letter refinement completed",
		zap.Int("newVersion", currentVersion+1),
		zap.Int("sectionsModified", len(sectionsModified)),
	)

	return &models.RefinementResult{
		RefinedLetter:    *letter,
		ChangesSummary:   changesSummary,
		SectionsModified: sectionsModified,
	}, nil
}

// RegenerateSection regenerates a single section. The model returns the
// full letter so unchanged sections stay consistent.
func (s *LetterService) RegenerateSection(ctx context.Context, current models.GeneratedLetter, section models.LetterSection, instruction string, caseData *models.ExtractedData, firmID, userID string) (*models.GeneratedLetter, error) {
	if s.caller == nil {
		return nil, errors.New("bedrock caller not set")
	}

	s.logger.Info("regenerating section", zap.String("section", string(section)), zap.String("firmId", firmID))

	letter, _, err := s.invokeForLetter(ctx, invokeLetterParams{
		messages: []bedrock.Message{{Role: "user", Content: prompts.SectionRegenerationPrompt(&current, section, instruction, caseData)}},
		toolName: regenerateToolName,
		toolDesc: fmt.Sprintf("Regenerate the %s section of the demand letter", section),
		firmID:   firmID,
		userID:   userID,
	})
	if err != nil {
		return nil, err
	}
	return letter, nil
}

// AdjustTone rewrites the letter in a different tone, keeping all facts
// and amounts unchanged
func (s *LetterService) AdjustTone(ctx context.Context, current models.GeneratedLetter, newTone models.ToneStyle, reason *string, firmID, userID string) (*models.GeneratedLetter, error) {
	if s.caller == nil {
		return nil, errors.New("bedrock caller not set")
	}

	s.logger.Info("adjusting letter tone", zap.String("newTone", string(newTone)), zap.String("firmId", firmID))

	letter, _, err := s.invokeForLetter(ctx, invokeLetterParams{
		messages: []bedrock.Message{{Role: "user", Content: prompts.ToneAdjustmentPrompt(&current, newTone, reason)}},
		toolName: adjustToneToolName,
		toolDesc: fmt.Sprintf("Adjust the letter tone to %s", newTone),
		firmID:   firmID,
		userID:   userID,
	})
	if err != nil {
		return nil, err
	}
	return letter, nil
}

type invokeLetterParams struct {
	messages []bedrock.Message
	toolName string
	toolDesc string
	firmID   string
	userID   string
}

func (s *LetterService) invokeForLetter(ctx context.Context, p invokeLetterParams) (*models.GeneratedLetter, models.TokenUsage, error) {
	tool, err := bedrock.ToolSchema(&models.GeneratedLetter{}, p.toolName, p.toolDesc)
	if err != nil {
		return nil, models.TokenUsage{}, err
	}

	temperature := s.caller.Config().TemperatureGeneration
	resp, err := s.caller.Invoke(ctx, bedrock.InvokeRequest{
		Messages:    p.messages,
		System:      prompts.GenerationSystemPrompt,
		Temperature: &temperature,
		Tools:       bedrock.Tools(tool),
		ToolChoice:  bedrock.ForceTool(p.toolName),
		FirmID:      p.firmID,
		UserID:      p.userID,
	})
	if err != nil {
		return nil, models.TokenUsage{}, err
	}

	var letter models.GeneratedLetter
	if err := bedrock.ExtractToolResult(resp.Content, &letter); err != nil {
		return nil, resp.Usage, err
	}
	return &letter, resp.Usage, nil
}

// CompareLetters returns the sections that differ between two letters.
// The header is compared as a whole struct; all other sections compare
// their content field only.
func (s *LetterService) CompareLetters(original, modified *models.GeneratedLetter) []models.LetterSection {
	var sections []models.LetterSection

	if !reflect.DeepEqual(original.Header, modified.Header) {
		sections = append(sections, models.SectionHeader)
	}
	if original.Introduction.Content != modified.Introduction.Content {
		sections = append(sections, models.SectionIntroduction)
	}
	if original.Facts.Content != modified.Facts.Content {
		sections = append(sections, models.SectionFacts)
	}
	if original.Liability.Content != modified.Liability.Content {
		sections = append(sections, models.SectionLiability)
	}
	if original.Damages.Content != modified.Damages.Content {
		sections = append(sections, models.SectionDamages)
	}
	if original.Demand.Content != modified.Demand.Content {
		sections = append(sections, models.SectionDemand)
	}
	if original.Closing.Content != modified.Closing.Content {
		sections = append(sections, models.SectionClosing)
	}

	return sections
}

// ValidateLetterCompleteness checks that every section carries substantive
// content. The thresholds reflect the minimum a sendable letter needs.
func (s *LetterService) ValidateLetterCompleteness(letter *models.GeneratedLetter) map[string]bool {
	checks := map[string]bool{
		"has_header":       letter.Header.RecipientName != "" && letter.Header.SubjectLine != "",
		"has_introduction": len(strings.TrimSpace(letter.Introduction.Content)) > 50,
		"has_facts":        len(strings.TrimSpace(letter.Facts.Content)) > 100,
		"has_liability":    len(strings.TrimSpace(letter.Liability.Content)) > 100,
		"has_damages":      len(strings.TrimSpace(letter.Damages.Content)) > 50 && letter.Damages.TotalDamages > 0,
		"has_demand":       len(strings.TrimSpace(letter.Demand.Content)) > 50 && letter.Demand.DemandAmount > 0,
		"has_closing":      letter.Closing.Content != "" && letter.Closing.SignatureBlock != "",
	}

	complete := true
	for _, ok := range checks {
		if !ok {
			complete = false
			break
		}
	}
	checks["is_complete"] = complete

	return checks
}

// LetterPreview returns the letter's full text truncated to maxLength
func (s *LetterService) LetterPreview(letter *models.GeneratedLetter, maxLength int) string {
	fullText := letter.ToFullText()
	if len(fullText) <= maxLength {
		return fullText
	}
	return fullText[:maxLength] + "..."
}

func changeSummary(sectionsModified []models.LetterSection, instruction string) string {
	if len(sectionsModified) == 0 {
		return "No changes made (letter unchanged)"
	}

	names := make([]string, 0, len(sectionsModified))
	for _, s := range sectionsModified {
		names = append(names, s.DisplayName())
	}

	truncated := instruction
	if len(truncated) > 100 {
		truncated = truncated[:100]
	}

	return fmt.Sprintf("Modified %d section(s) based on feedback: '%s...'. Sections changed: %s.",
		len(sectionsModified), truncated, strings.Join(names, ", "))
}

func (s *LetterService) modelID() string {
	if s.caller == nil {
		return ""
	}
	return s.caller.Config().ModelID
}

func toBedrockMessages(messages []models.Message) []bedrock.Message {
	out := make([]bedrock.Message, 0, len(messages))
	for _, m := range messages {
		out = append(out, bedrock.Message{Role: m.Role, Content: m.Content})
	}
	return out
}

