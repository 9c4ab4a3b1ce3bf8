package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// VirusScanStatus represents the virus scan state of an uploaded document
type VirusScanStatus string

const (
	ScanPending  VirusScanStatus = "pending"
	ScanClean    VirusScanStatus = "clean"
	ScanInfected VirusScanStatus = "infected"
)

// DocumentMeta holds arbitrary document metadata stored as JSONB
// (extraction summaries, page counts, upload context)
type DocumentMeta map[string]interface{}

// Value implements driver.Valuer for JSONB
func (m DocumentMeta) Value() (driver.Value, error) {
	return json.Marshal(m)
}

// Scan implements sql.Scanner for JSONB
func (m *DocumentMeta) Scan(value interface{}) error {
	if value == nil {
		*m = make(DocumentMeta)
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
		*m = make(DocumentMeta)
		return nil
	}
	return json.Unmarshal(bytes, m)
}

// Document represents an uploaded source document (police report, medical
// record, etc.) scoped to a firm
type Document struct {
	ID              uuid.UUID       `json:"id"`
	FirmID          uuid.UUID       `json:"firm_id"`
	UploadedBy      uuid.UUID       `json:"uploaded_by"`
	Filename        string          `json:"filename"`
	FileType        string          `json:"file_type"`
	FileSize        int64           `json:"file_size"`
	StoragePath     string          `json:"storage_path"`
	VirusScanStatus VirusScanStatus `json:"virus_scan_status"`
	DocumentType    *string         `json:"document_type,omitempty"`
	Metadata        DocumentMeta    `json:"metadata"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
