package models

import (
	"fmt"
	"strings"
	"time"
)

// LetterSection identifies a section of a demand letter
type LetterSection string

const (
	SectionHeader       LetterSection = "header"
	SectionIntroduction LetterSection = "introduction"
	SectionFacts        LetterSection = "facts"
	SectionLiability    LetterSection = "liability"
	SectionDamages      LetterSection = "damages"
	SectionDemand       LetterSection = "demand"
	SectionClosing      LetterSection = "closing"
)

// AllLetterSections lists the sections of a demand letter in document order
var AllLetterSections = []LetterSection{
	SectionHeader,
	SectionIntroduction,
	SectionFacts,
	SectionLiability,
	SectionDamages,
	SectionDemand,
	SectionClosing,
}

// DisplayName returns the section name formatted for human-readable summaries
func (s LetterSection) DisplayName() string {
	parts := strings.Split(string(s), "_")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}

// ToneStyle represents the tone used when generating a letter
type ToneStyle string

const (
	ToneFormal     ToneStyle = "formal"
	ToneAssertive  ToneStyle = "assertive"
	ToneDiplomatic ToneStyle = "diplomatic"
	ToneAggressive ToneStyle = "aggressive"
)

// FeedbackPriority orders feedback items during batch refinement
type FeedbackPriority string

const (
	PriorityHigh   FeedbackPriority = "high"
	PriorityMedium FeedbackPriority = "medium"
	PriorityLow    FeedbackPriority = "low"
)

// Rank returns the sort rank for a priority (lower is applied first).
// Unknown priorities rank as medium.
func (p FeedbackPriority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityLow:
		return 2
	default:
		return 1
	}
}

// LetterHeader is the header section of a demand letter
type LetterHeader struct {
	Date             string  `json:"date" validate:"required" jsonschema:"description=Letter date (formatted)"`
	RecipientName    string  `json:"recipient_name" validate:"required" jsonschema:"description=Name of recipient"`
	RecipientAddress string  `json:"recipient_address" validate:"required" jsonschema:"description=Recipient's address"`
	RecipientTitle   *string `json:"recipient_title,omitempty" jsonschema:"description=Recipient's title (e.g., Claims Adjuster)"`
	SubjectLine      string  `json:"subject_line" validate:"required" jsonschema:"description=Subject line (e.g., Re: Claim #12345)"`
	Salutation       string  `json:"salutation" jsonschema:"description=Letter salutation"`
}

// LetterIntroduction establishes representation and purpose
type LetterIntroduction struct {
	Content      string  `json:"content" validate:"required" jsonschema:"description=Introduction paragraph(s)"`
	AttorneyName *string `json:"attorney_name,omitempty" jsonschema:"description=Attorney name mentioned"`
	LawFirm      *string `json:"law_firm,omitempty" jsonschema:"description=Law firm name mentioned"`
	ClientName   string  `json:"client_name" validate:"required" jsonschema:"description=Client being represented"`
}

// LetterFacts describes the incident
type LetterFacts struct {
	Content       string  `json:"content" validate:"required" jsonschema:"description=Facts paragraph(s)"`
	IncidentDate  *string `json:"incident_date,omitempty" jsonschema:"description=Incident date mentioned"`
	KeyFactsCount int     `json:"key_facts_count" jsonschema:"description=Number of key facts included"`
}

// LetterLiability establishes fault
type LetterLiability struct {
	Content           string   `json:"content" validate:"required" jsonschema:"description=Liability analysis paragraph(s)"`
	LegalTheories     []string `json:"legal_theories" jsonschema:"description=Legal theories mentioned (e.g., negligence)"`
	EvidenceCitations []string `json:"evidence_citations" jsonschema:"description=Evidence cited"`
}

// LetterDamages details losses by category
type LetterDamages struct {
	Content         string   `json:"content" validate:"required" jsonschema:"description=Damages paragraph(s)"`
	MedicalExpenses *float64 `json:"medical_expenses,omitempty" jsonschema:"description=Total medical expenses claimed"`
	LostWages       *float64 `json:"lost_wages,omitempty" jsonschema:"description=Total lost wages claimed"`
	PropertyDamage  *float64 `json:"property_damage,omitempty" jsonschema:"description=Total property damage claimed"`
	PainSuffering   *float64 `json:"pain_suffering,omitempty" jsonschema:"description=Pain and suffering amount claimed"`
	TotalDamages    float64  `json:"total_damages" jsonschema:"description=Total damages demanded"`
}

// LetterDemand states the settlement amount and deadline
type LetterDemand struct {
	Content            string  `json:"content" validate:"required" jsonschema:"description=Demand paragraph(s)"`
	DemandAmount       float64 `json:"demand_amount" jsonschema:"description=Settlement amount demanded"`
	ResponseDeadline   *string `json:"response_deadline,omitempty" jsonschema:"description=Deadline for response"`
	ConsequencesStated bool    `json:"consequences_stated" jsonschema:"description=Whether litigation consequences are stated"`
}

// LetterClosing is the closing section
type LetterClosing struct {
	Content        string `json:"content" validate:"required" jsonschema:"description=Closing paragraph"`
	SignatureBlock string `json:"signature_block" validate:"required" jsonschema:"description=Signature block with attorney info"`
	ClosingPhrase  string `json:"closing_phrase" jsonschema:"description=Closing phrase (e.g., Sincerely)"`
}

// GeneratedLetter is a complete structured demand letter
type GeneratedLetter struct {
	Header       LetterHeader       `json:"header" validate:"required" jsonschema:"description=Letter header section"`
	Introduction LetterIntroduction `json:"introduction" validate:"required" jsonschema:"description=Introduction section"`
	Facts        LetterFacts        `json:"facts" validate:"required" jsonschema:"description=Facts section"`
	Liability    LetterLiability    `json:"liability" validate:"required" jsonschema:"description=Liability section"`
	Damages      LetterDamages      `json:"damages" validate:"required" jsonschema:"description=Damages section"`
	Demand       LetterDemand       `json:"demand" validate:"required" jsonschema:"description=Demand section"`
	Closing      LetterClosing      `json:"closing" validate:"required" jsonschema:"description=Closing section"`
}

// EmptyLetter returns a structurally complete letter with empty content.
// Used as the placeholder in failed generation results.
func EmptyLetter() GeneratedLetter {
	return GeneratedLetter{
		Header:       LetterHeader{},
		Introduction: LetterIntroduction{},
		Facts:        LetterFacts{},
		Liability:    LetterLiability{},
		Damages:      LetterDamages{TotalDamages: 0},
		Demand:       LetterDemand{DemandAmount: 0},
		Closing:      LetterClosing{},
	}
}

// ToFullText converts the structured letter to plain text
func (l *GeneratedLetter) ToFullText() string {
	var sections []string

	var header strings.Builder
	header.WriteString(l.Header.Date + "\n\n")
	header.WriteString(l.Header.RecipientName + "\n")
	if l.Header.RecipientTitle != nil {
		header.WriteString(*l.Header.RecipientTitle + "\n")
	}
	header.WriteString(l.Header.RecipientAddress + "\n\n")
	header.WriteString(l.Header.SubjectLine + "\n\n")
	header.WriteString(l.Header.Salutation + "\n")
	sections = append(sections, header.String())

	sections = append(sections,
		l.Introduction.Content,
		l.Facts.Content,
		l.Liability.Content,
		l.Damages.Content,
		l.Demand.Content,
	)

	closing := fmt.Sprintf("%s\n\n%s\n\n%s", l.Closing.Content, l.Closing.ClosingPhrase, l.Closing.SignatureBlock)
	sections = append(sections, closing)

	return strings.Join(sections, "\n\n")
}

// SectionText returns the text of a specific section
func (l *GeneratedLetter) SectionText(section LetterSection) string {
	switch section {
	case SectionHeader:
		return fmt.Sprintf("%s\n%s\n%s\n%s", l.Header.Date, l.Header.RecipientName, l.Header.RecipientAddress, l.Header.SubjectLine)
	case SectionIntroduction:
		return l.Introduction.Content
	case SectionFacts:
		return l.Facts.Content
	case SectionLiability:
		return l.Liability.Content
	case SectionDamages:
		return l.Damages.Content
	case SectionDemand:
		return l.Demand.Content
	case SectionClosing:
		return fmt.Sprintf("%s\n%s\n%s", l.Closing.Content, l.Closing.ClosingPhrase, l.Closing.SignatureBlock)
	}
	return ""
}

// TemplateVariables are the attorney and firm details substituted into letters
type TemplateVariables struct {
	AttorneyName  string  `json:"attorney_name"`
	AttorneyTitle *string `json:"attorney_title,omitempty"`
	LawFirm       string  `json:"law_firm"`
	FirmAddress   string  `json:"firm_address"`
	FirmPhone     string  `json:"firm_phone"`
	FirmEmail     string  `json:"firm_email"`
	ClientName    string  `json:"client_name"`
	CaseNumber    *string `json:"case_number,omitempty"`
	ClaimNumber   *string `json:"claim_number,omitempty"`
}

// RefinementFeedback is a single attorney instruction for refining a letter
type RefinementFeedback struct {
	Instruction   string           `json:"instruction"`
	TargetSection *LetterSection   `json:"target_section,omitempty"`
	Priority      FeedbackPriority `json:"priority"`
	Context       *string          `json:"context,omitempty"`
}

// Message is a single conversation message in model format
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// VersionEntry is a snapshot of a letter version with its change summary
type VersionEntry struct {
	Version        int             `json:"version"`
	Timestamp      time.Time       `json:"timestamp"`
	ChangesSummary string          `json:"changes_summary"`
	LetterSnapshot GeneratedLetter `json:"letter_snapshot"`
}

// ConversationHistory tracks messages and letter versions for iterative refinement
type ConversationHistory struct {
	Messages       []Message      `json:"messages"`
	VersionHistory []VersionEntry `json:"version_history"`
}

// AddMessage appends a message to the conversation
func (h *ConversationHistory) AddMessage(role, content string) {
	h.Messages = append(h.Messages, Message{Role: role, Content: content})
}

// AddVersion appends a letter version snapshot to the history
func (h *ConversationHistory) AddVersion(version int, letter GeneratedLetter, changesSummary string) {
	h.VersionHistory = append(h.VersionHistory, VersionEntry{
		Version:        version,
		Timestamp:      time.Now().UTC(),
		ChangesSummary: changesSummary,
		LetterSnapshot: letter,
	})
}

// LatestVersion returns the highest version number, or 0 when no versions exist
func (h *ConversationHistory) LatestVersion() int {
	latest := 0
	for _, v := range h.VersionHistory {
		if v.Version > latest {
			latest = v.Version
		}
	}
	return latest
}
