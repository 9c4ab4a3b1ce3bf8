package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// LetterStatus represents the lifecycle state of a demand letter
type LetterStatus string

const (
	LetterDraft      LetterStatus = "draft"
	LetterAnalyzing  LetterStatus = "analyzing"
	LetterGenerating LetterStatus = "generating"
	LetterRefining   LetterStatus = "refining"
	LetterComplete   LetterStatus = "complete"
	LetterArchived   LetterStatus = "archived"
)

// GenerationMetadata holds generation bookkeeping stored as JSONB
// (model id, token usage, version, timing)
type GenerationMetadata map[string]interface{}

// Value implements driver.Valuer for JSONB
func (m GenerationMetadata) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// Scan implements sql.Scanner for JSONB
func (m *GenerationMetadata) Scan(value interface{}) error {
	if value == nil {
		*m = make(GenerationMetadata)
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}
	if len(bytes) == 0 {
		*m = make(GenerationMetadata)
		return nil
	}
	return json.Unmarshal(bytes, m)
}

// LetterVersion is a persisted snapshot of a demand letter revision
type LetterVersion struct {
	ID             uuid.UUID `json:"id"`
	LetterID       uuid.UUID `json:"letter_id"`
	Version        int       `json:"version"`
	Content        string    `json:"content"`
	ChangesSummary string    `json:"changes_summary"`
	CreatedBy      uuid.UUID `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
}

// DemandLetter represents a demand letter entity scoped to a firm
type DemandLetter struct {
	ID                 uuid.UUID          `json:"id"`
	FirmID             uuid.UUID          `json:"firm_id"`
	CreatedBy          uuid.UUID          `json:"created_by"`
	CaseID             *string            `json:"case_id,omitempty"`
	Title              string             `json:"title"`
	Status             LetterStatus       `json:"status"`
	CurrentContent     *string            `json:"current_content,omitempty"`
	CurrentVersion     int                `json:"current_version"`
	ExtractedData      *ExtractedData     `json:"extracted_data,omitempty"`
	GenerationMetadata GenerationMetadata `json:"generation_metadata"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
	CompletedAt        *time.Time         `json:"completed_at,omitempty"`
}
