package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/invopop/jsonschema"
)

// ConfidenceLevel represents how clearly a piece of information was stated
// in the source document
type ConfidenceLevel string

const (
	ConfidenceHigh      ConfidenceLevel = "high"
	ConfidenceMedium    ConfidenceLevel = "medium"
	ConfidenceLow       ConfidenceLevel = "low"
	ConfidenceUncertain ConfidenceLevel = "uncertain"
)

// PartyType represents the role of a party in a legal case
type PartyType string

const (
	PartyPlaintiff        PartyType = "plaintiff"
	PartyDefendant        PartyType = "defendant"
	PartyWitness          PartyType = "witness"
	PartyInsuranceCompany PartyType = "insurance_company"
	PartyOther            PartyType = "other"
)

// DamageType represents the category of damages claimed
type DamageType string

const (
	DamageMedical       DamageType = "medical"
	DamageProperty      DamageType = "property"
	DamageLostWages     DamageType = "lost_wages"
	DamagePainSuffering DamageType = "pain_and_suffering"
	DamagePunitive      DamageType = "punitive"
	DamageOther         DamageType = "other"
)

// flexDateFormats are the date layouts accepted when decoding model output.
// Dates come back from the model in whatever format the source document used.
var flexDateFormats = []string{
	"2006-01-02",
	"01/02/2006",
	"01-02-2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"02/01/2006",
}

// FlexDate is a date that tolerates multiple input formats. Unparseable
// values decode to the zero value rather than failing the whole extraction.
type FlexDate struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler
func (d *FlexDate) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		// Non-string date, treat as missing
		d.Time = time.Time{}
		return nil
	}
	if s == nil || *s == "" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range flexDateFormats {
		if t, err := time.Parse(layout, *s); err == nil {
			d.Time = t
			return nil
		}
	}
	d.Time = time.Time{}
	return nil
}

// MarshalJSON implements json.Marshaler
func (d FlexDate) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(d.Format("2006-01-02"))
}

// JSONSchema tells the schema reflector to describe FlexDate as a plain string
func (FlexDate) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:        "string",
		Description: "Date in a common format (e.g., 2024-01-15 or 01/15/2024)",
	}
}

// Party represents a party involved in the case
type Party struct {
	Name             string          `json:"name" validate:"required" jsonschema:"description=Full name of the party"`
	PartyType        PartyType       `json:"party_type" validate:"required" jsonschema:"description=Role of the party in the case (plaintiff/defendant/witness/insurance_company/other)"`
	ContactInfo      *string         `json:"contact_info,omitempty" jsonschema:"description=Contact information if available"`
	InsuranceCompany *string         `json:"insurance_company,omitempty" jsonschema:"description=Insurance company name if applicable"`
	PolicyNumber     *string         `json:"policy_number,omitempty" jsonschema:"description=Insurance policy number if available"`
	Confidence       ConfidenceLevel `json:"confidence" jsonschema:"description=Confidence level in this extraction"`
	SourceText       *string         `json:"source_text,omitempty" jsonschema:"description=Relevant text from the document that led to this extraction"`
}

// Incident represents the primary incident or event details
type Incident struct {
	IncidentDate       *FlexDate       `json:"incident_date,omitempty" jsonschema:"description=Date when the incident occurred"`
	IncidentLocation   *string         `json:"incident_location,omitempty" jsonschema:"description=Location where the incident occurred"`
	Description        string          `json:"description" validate:"required" jsonschema:"description=Description of what happened in the incident"`
	IncidentType       *string         `json:"incident_type,omitempty" jsonschema:"description=Type of incident (e.g., car accident, slip and fall)"`
	PoliceReportNumber *string         `json:"police_report_number,omitempty" jsonschema:"description=Police report number if available"`
	Confidence         ConfidenceLevel `json:"confidence" jsonschema:"description=Confidence level in this extraction"`
	SourceText         *string         `json:"source_text,omitempty"`
}

// Damage represents a damage or loss claimed
type Damage struct {
	DamageType       DamageType      `json:"damage_type" validate:"required" jsonschema:"description=Type of damage (medical/property/lost_wages/pain_and_suffering/punitive/other)"`
	Description      string          `json:"description" validate:"required" jsonschema:"description=Description of the damage"`
	Amount           *float64        `json:"amount,omitempty" jsonschema:"description=Monetary amount of damage if specified"`
	AmountIsEstimate bool            `json:"amount_is_estimate" jsonschema:"description=Whether the amount is an estimate or exact figure"`
	DateIncurred     *FlexDate       `json:"date_incurred,omitempty" jsonschema:"description=Date when the damage was incurred"`
	Provider         *string         `json:"provider,omitempty" jsonschema:"description=Provider of service (e.g., hospital name, repair shop)"`
	Confidence       ConfidenceLevel `json:"confidence" jsonschema:"description=Confidence level in this extraction"`
	SourceText       *string         `json:"source_text,omitempty"`
}

// CaseFact represents a factual statement relevant to the case
type CaseFact struct {
	Fact       string          `json:"fact" validate:"required" jsonschema:"description=The factual statement"`
	Category   *string         `json:"category,omitempty" jsonschema:"description=Category of fact (e.g., liability, causation, damages)"`
	Importance string          `json:"importance" jsonschema:"description=Importance level: high, medium, or low"`
	Confidence ConfidenceLevel `json:"confidence" jsonschema:"description=Confidence level in this extraction"`
	SourceText *string         `json:"source_text,omitempty"`
}

// DocumentMetadata represents metadata about the source document
type DocumentMetadata struct {
	DocumentType   string    `json:"document_type" validate:"required" jsonschema:"description=Type of document (e.g., police report, medical record)"`
	DocumentDate   *FlexDate `json:"document_date,omitempty" jsonschema:"description=Date of the document"`
	Author         *string   `json:"author,omitempty" jsonschema:"description=Author or issuer of the document"`
	DocumentNumber *string   `json:"document_number,omitempty" jsonschema:"description=Document ID or reference number"`
}

// ExtractedData represents the complete structured data extracted from a document
type ExtractedData struct {
	Metadata             DocumentMetadata `json:"metadata" validate:"required" jsonschema:"description=Document metadata"`
	Parties              []Party          `json:"parties" jsonschema:"description=All parties mentioned in the document"`
	Incident             *Incident        `json:"incident,omitempty" jsonschema:"description=Primary incident or event details"`
	Damages              []Damage         `json:"damages" jsonschema:"description=All damages claimed or identified"`
	CaseFacts            []CaseFact       `json:"case_facts" jsonschema:"description=Key facts from the document"`
	Summary              string           `json:"summary" validate:"required" jsonschema:"description=Brief summary of the document content (2-3 sentences)"`
	TotalDamagesEstimate *float64         `json:"total_damages_estimate,omitempty" jsonschema:"description=Estimated total monetary damages if calculable"`
	ExtractionNotes      *string          `json:"extraction_notes,omitempty" jsonschema:"description=Notes or caveats about the extraction"`
}

// CalculateTotalDamages sums all damage entries with a known amount
func (d *ExtractedData) CalculateTotalDamages() float64 {
	total := 0.0
	for _, damage := range d.Damages {
		if damage.Amount != nil {
			total += *damage.Amount
		}
	}
	return total
}

// HighConfidenceCounts returns the number of high-confidence extractions per category
func (d *ExtractedData) HighConfidenceCounts() map[string]int {
	counts := map[string]int{
		"parties":  0,
		"damages":  0,
		"facts":    0,
		"incident": 0,
	}
	for _, p := range d.Parties {
		if p.Confidence == ConfidenceHigh {
			counts["parties"]++
		}
	}
	for _, dm := range d.Damages {
		if dm.Confidence == ConfidenceHigh {
			counts["damages"]++
		}
	}
	for _, f := range d.CaseFacts {
		if f.Confidence == ConfidenceHigh {
			counts["facts"]++
		}
	}
	if d.Incident != nil && d.Incident.Confidence == ConfidenceHigh {
		counts["incident"] = 1
	}
	return counts
}

// Value implements driver.Valuer for JSONB
func (d ExtractedData) Value() (driver.Value, error) {
	return json.Marshal(d)
}

// Scan implements sql.Scanner for JSONB
func (d *ExtractedData) Scan(value interface{}) error {
	if value == nil {
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
		return nil
	}
	return json.Unmarshal(bytes, d)
}
