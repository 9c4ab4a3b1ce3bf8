package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"demanddraft-backend/models"
)

// Sentinel errors for refinement session lookups
var (
	ErrSessionNotFound = errors.New("refinement session not found")
	ErrVersionNotFound = errors.New("version not found")
)

// letterRefiner is the subset of LetterService the feedback workflow needs
type letterRefiner interface {
	RefineLetter(ctx context.Context, req RefineLetterRequest) (*models.RefinementResult, error)
	CompareLetters(original, modified *models.GeneratedLetter) []models.LetterSection
	ValidateLetterCompleteness(letter *models.GeneratedLetter) map[string]bool
}

// FeedbackService manages iterative refinement sessions: conversation
// history, version tracking and rollback, and batch feedback application.
// Sessions live in memory and are keyed by case.
type FeedbackService struct {
	mu       sync.Mutex
	sessions map[string]*models.ConversationHistory
	refiner  letterRefiner
	logger   *zap.Logger
}

// FeedbackServiceOption is a functional option for FeedbackService
type FeedbackServiceOption func(*FeedbackService)

// WithFeedbackRefiner sets the letter refiner
func WithFeedbackRefiner(refiner letterRefiner) FeedbackServiceOption {
	return func(s *FeedbackService) {
		s.refiner = refiner
	}
}

// WithFeedbackLogger sets the logger
func WithFeedbackLogger(logger *zap.Logger) FeedbackServiceOption {
	return func(s *FeedbackService) {
		s.logger = logger
	}
}

// NewFeedbackService creates a new feedback service
func NewFeedbackService(opts ...FeedbackServiceOption) *FeedbackService {
	s := &FeedbackService{
		sessions: make(map[string]*models.ConversationHistory),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartRefinementSession starts a refinement session for a case, recording
// the initial letter as version 1. Returns the session ID.
func (s *FeedbackService) StartRefinementSession(caseID string, initialLetter models.GeneratedLetter) string {
	sessionID := caseID + "_refinement"

	history := &models.ConversationHistory{}
	history.AddVersion(1, initialLetter, "Initial generation")

	s.mu.Lock()
	s.sessions[sessionID] = history
	s.mu.Unlock()

	s.logger.Info("started refinement session",
		zap.String("caseId", caseID),
		zap.String("sessionId", sessionID),
	)

	return sessionID
}

// ApplyFeedback applies a single feedback item to the letter, advancing the
// session to a new version. The session lock is held across the refinement
// so concurrent feedback on the same store serializes.
func (s *FeedbackService) ApplyFeedback(ctx context.Context, sessionID string, currentLetter models.GeneratedLetter, feedback models.RefinementFeedback, firmID, userID string) (*models.RefinementResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyFeedback(ctx, sessionID, currentLetter, feedback, firmID, userID)
}

func (s *FeedbackService) applyFeedback(ctx context.Context, sessionID string, currentLetter models.GeneratedLetter, feedback models.RefinementFeedback, firmID, userID string) (*models.RefinementResult, error) {
	history, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	currentVersion := history.LatestVersion()

	s.logger.Info("applying feedback",
		zap.String("sessionId", sessionID),
		zap.Int("currentVersion", currentVersion),
		zap.String("priority", string(feedback.Priority)),
	)

	result, err := s.refiner.RefineLetter(ctx, RefineLetterRequest{
		CurrentLetter:  currentLetter,
		Feedback:       feedback,
		History:        history,
		CurrentVersion: currentVersion,
		FirmID:         firmID,
		UserID:         userID,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("feedback applied",
		zap.String("sessionId", sessionID),
		zap.Int("newVersion", currentVersion+1),
		zap.Int("sectionsModified", len(result.SectionsModified)),
	)

	return result, nil
}

// ApplyBatchFeedback applies multiple feedback items sequentially, ordered
// by priority (high, then medium, then low). Each item refines the output
// of the previous one. The combined result reports the union of modified
// sections in document order and the individual change summaries joined
// with " | ".
func (s *FeedbackService) ApplyBatchFeedback(ctx context.Context, sessionID string, currentLetter models.GeneratedLetter, feedbackList []models.RefinementFeedback, firmID, userID string) (*models.RefinementResult, error) {
	if len(feedbackList) == 0 {
		return nil, errors.New("feedback list is empty")
	}

	sorted := make([]models.RefinementFeedback, len(feedbackList))
	copy(sorted, feedbackList)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Priority.Rank() < sorted[j].Priority.Rank()
	})

	s.logger.Info("applying batch feedback",
		zap.String("sessionId", sessionID),
		zap.Int("feedbackCount", len(sorted)),
	)

	s.mu.Lock()
	defer s.mu.Unlock()

	workingLetter := currentLetter
	modified := make(map[models.LetterSection]bool)
	var summaries []string

	for i, feedback := range sorted {
		instruction := feedback.Instruction
		if len(instruction) > 50 {
			instruction = instruction[:50]
		}
		s.logger.Info("applying batch feedback item",
			zap.String("sessionId", sessionID),
			zap.Int("feedbackIndex", i+1),
			zap.String("instruction", instruction),
		)

		result, err := s.applyFeedback(ctx, sessionID, workingLetter, feedback, firmID, userID)
		if err != nil {
			return nil, err
		}

		workingLetter = result.RefinedLetter
		for _, section := range result.SectionsModified {
			modified[section] = true
		}
		summaries = append(summaries, result.ChangesSummary)
	}

	var allModified []models.LetterSection
	for _, section := range models.AllLetterSections {
		if modified[section] {
			allModified = append(allModified, section)
		}
	}

	s.logger.Info("batch feedback completed",
		zap.String("sessionId", sessionID),
		zap.Int("itemsApplied", len(sorted)),
		zap.Int("totalSectionsModified", len(allModified)),
	)

	return &models.RefinementResult{
		RefinedLetter:    workingLetter,
		ChangesSummary:   strings.Join(summaries, " | "),
		SectionsModified: allModified,
	}, nil
}

// VersionHistory returns the version history for a session
func (s *FeedbackService) VersionHistory(sessionID string) ([]models.VersionEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return history.VersionHistory, nil
}

// RollbackToVersion returns the letter snapshot from a previous version
func (s *FeedbackService) RollbackToVersion(sessionID string, targetVersion int) (*models.GeneratedLetter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rollbackToVersion(sessionID, targetVersion)
}

func (s *FeedbackService) rollbackToVersion(sessionID string, targetVersion int) (*models.GeneratedLetter, error) {
	history, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	for _, entry := range history.VersionHistory {
		if entry.Version == targetVersion {
			letter := entry.LetterSnapshot
			s.logger.Info("rolled back to version",
				zap.String("sessionId", sessionID),
				zap.Int("targetVersion", targetVersion),
			)
			return &letter, nil
		}
	}

	return nil, fmt.Errorf("%w: version %d in session %s", ErrVersionNotFound, targetVersion, sessionID)
}

// VersionComparison summarizes the differences between two letter versions
type VersionComparison struct {
	VersionA             int                    `json:"version_a"`
	VersionB             int                    `json:"version_b"`
	TimestampA           *string                `json:"timestamp_a"`
	TimestampB           *string                `json:"timestamp_b"`
	ChangesSummaryA      *string                `json:"changes_summary_a"`
	ChangesSummaryB      *string                `json:"changes_summary_b"`
	ModifiedSections     []models.LetterSection `json:"modified_sections"`
	SectionCountModified int                    `json:"section_count_modified"`
}

// CompareVersions compares two letter versions in a session
func (s *FeedbackService) CompareVersions(sessionID string, versionA, versionB int) (*VersionComparison, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	letterA, err := s.rollbackToVersion(sessionID, versionA)
	if err != nil {
		return nil, err
	}
	letterB, err := s.rollbackToVersion(sessionID, versionB)
	if err != nil {
		return nil, err
	}

	modified := s.refiner.CompareLetters(letterA, letterB)

	comparison := &VersionComparison{
		VersionA:             versionA,
		VersionB:             versionB,
		ModifiedSections:     modified,
		SectionCountModified: len(modified),
	}

	history := s.sessions[sessionID]
	for _, entry := range history.VersionHistory {
		if entry.Version == versionA {
			ts := entry.Timestamp.Format("2006-01-02T15:04:05Z07:00")
			summary := entry.ChangesSummary
			comparison.TimestampA = &ts
			comparison.ChangesSummaryA = &summary
		}
		if entry.Version == versionB {
			ts := entry.Timestamp.Format("2006-01-02T15:04:05Z07:00")
			summary := entry.ChangesSummary
			comparison.TimestampB = &ts
			comparison.ChangesSummaryB = &summary
		}
	}

	return comparison, nil
}

// ConversationContext returns the conversation messages for a session
func (s *FeedbackService) ConversationContext(sessionID string) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return history.Messages, nil
}

// ClearSession removes a session and frees its memory. Clearing an unknown
// session is a no-op.
func (s *FeedbackService) ClearSession(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; ok {
		delete(s.sessions, sessionID)
		s.logger.Info("cleared refinement session", zap.String("sessionId", sessionID))
	}
}

// RefinementStats returns statistics about a refinement session. The
// refinement count approximates user and assistant message pairs.
func (s *FeedbackService) RefinementStats(sessionID string) (map[string]interface{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	return map[string]interface{}{
		"session_id":       sessionID,
		"total_versions":   len(history.VersionHistory),
		"current_version":  history.LatestVersion(),
		"total_messages":   len(history.Messages),
		"refinement_count": len(history.Messages) / 2,
	}, nil
}

// SuggestImprovements runs a rule-based analysis of a letter and returns
// improvement suggestions. No model call is made.
func (s *FeedbackService) SuggestImprovements(letter *models.GeneratedLetter) []string {
	var suggestions []string

	completeness := s.refiner.ValidateLetterCompleteness(letter)
	if !completeness["is_complete"] {
		if !completeness["has_header"] {
			suggestions = append(suggestions, "Header section is incomplete or missing")
		}
		if !completeness["has_introduction"] {
			suggestions = append(suggestions, "Introduction section is too short or missing")
		}
		if !completeness["has_facts"] {
			suggestions = append(suggestions, "Facts section needs more detail")
		}
		if !completeness["has_liability"] {
			suggestions = append(suggestions, "Liability section needs more detail")
		}
		if !completeness["has_damages"] {
			suggestions = append(suggestions, "Damages section is incomplete or total is missing")
		}
		if !completeness["has_demand"] {
			suggestions = append(suggestions, "Demand section is incomplete or amount is missing")
		}
		if !completeness["has_closing"] {
			suggestions = append(suggestions, "Closing section is incomplete")
		}
	}

	if letter.Damages.TotalDamages > 0 {
		calculated := 0.0
		for _, amount := range []*float64{
			letter.Damages.MedicalExpenses,
			letter.Damages.LostWages,
			letter.Damages.PropertyDamage,
			letter.Damages.PainSuffering,
		} {
			if amount != nil {
				calculated += *amount
			}
		}

		// Allow $1 of rounding slack between itemized and total
		if calculated > 0 && abs(calculated-letter.Damages.TotalDamages) > 1.0 {
			suggestions = append(suggestions, fmt.Sprintf(
				"Itemized damages ($%s) don't match total damages ($%s)",
				formatMoney(calculated), formatMoney(letter.Damages.TotalDamages)))
		}
	}

	if letter.Demand.DemandAmount < letter.Damages.TotalDamages {
		suggestions = append(suggestions, fmt.Sprintf(
			"Demand amount ($%s) is less than total damages ($%s)",
			formatMoney(letter.Demand.DemandAmount), formatMoney(letter.Damages.TotalDamages)))
	}

	if letter.Demand.ResponseDeadline == nil || *letter.Demand.ResponseDeadline == "" {
		suggestions = append(suggestions, "Consider adding a response deadline to the demand")
	}

	if len(letter.Liability.LegalTheories) == 0 {
		suggestions = append(suggestions, "Liability section should identify legal theories (e.g., negligence)")
	}

	return suggestions
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// formatMoney renders an amount with thousands separators and two decimals
func formatMoney(amount float64) string {
	formatted := fmt.Sprintf("%.2f", amount)

	dot := strings.IndexByte(formatted, '.')
	intPart := formatted[:dot]
	fracPart := formatted[dot:]

	sign := ""
	if strings.HasPrefix(intPart, "-") {
		sign = "-"
		intPart = intPart[1:]
	}

	var groups []string
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)

	return sign + strings.Join(groups, ",") + fracPart
}
