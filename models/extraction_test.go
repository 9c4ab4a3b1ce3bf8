package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 {
	return &v
}

func TestCalculateTotalDamagesSkipsUnknownAmounts(t *testing.T) {
	data := ExtractedData{
		Damages: []Damage{
			{DamageType: DamageMedical, Description: "ER visit", Amount: f64(100)},
			{DamageType: DamageProperty, Description: "bumper", Amount: nil},
			{DamageType: DamageLostWages, Description: "two days off work", Amount: f64(50)},
		},
	}

	assert.Equal(t, 150.0, data.CalculateTotalDamages())
}

func TestCalculateTotalDamagesEmpty(t *testing.T) {
	data := ExtractedData{}
	assert.Equal(t, 0.0, data.CalculateTotalDamages())
}

func TestFlexDateAcceptsCommonFormats(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{`"2024-01-15"`, "2024-01-15"},
		{`"01/15/2024"`, "2024-01-15"},
		{`"01-15-2024"`, "2024-01-15"},
		{`"January 15, 2024"`, "2024-01-15"},
		{`"Jan 15, 2024"`, "2024-01-15"},
	}

	for _, tc := range cases {
		var d FlexDate
		require.NoError(t, json.Unmarshal([]byte(tc.input), &d))
		assert.Equal(t, tc.want, d.Format("2006-01-02"), "input %s", tc.input)
	}
}

func TestFlexDateUnparseableBecomesZero(t *testing.T) {
	var d FlexDate
	require.NoError(t, json.Unmarshal([]byte(`"sometime last spring"`), &d))
	assert.True(t, d.IsZero())

	require.NoError(t, json.Unmarshal([]byte(`null`), &d))
	assert.True(t, d.IsZero())

	require.NoError(t, json.Unmarshal([]byte(`12345`), &d))
	assert.True(t, d.IsZero())
}

func TestFlexDateMarshal(t *testing.T) {
	var d FlexDate
	require.NoError(t, json.Unmarshal([]byte(`"03/02/2024"`), &d))

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-02"`, string(out))

	var zero FlexDate
	out, err = json.Marshal(zero)
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}

func TestHighConfidenceCounts(t *testing.T) {
	data := ExtractedData{
		Parties: []Party{
			{Name: "Jane Roe", Confidence: ConfidenceHigh},
			{Name: "John Doe", Confidence: ConfidenceMedium},
		},
		Incident: &Incident{Description: "rear-end collision", Confidence: ConfidenceHigh},
		Damages: []Damage{
			{Description: "ambulance", Confidence: ConfidenceHigh},
			{Description: "physical therapy", Confidence: ConfidenceHigh},
			{Description: "future care", Confidence: ConfidenceLow},
		},
		CaseFacts: []CaseFact{
			{Fact: "defendant ran a red light", Confidence: ConfidenceUncertain},
		},
	}

	counts := data.HighConfidenceCounts()
	assert.Equal(t, 1, counts["parties"])
	assert.Equal(t, 2, counts["damages"])
	assert.Equal(t, 0, counts["facts"])
	assert.Equal(t, 1, counts["incident"])
}

func TestHighConfidenceCountsNoIncident(t *testing.T) {
	data := ExtractedData{}
	assert.Equal(t, 0, data.HighConfidenceCounts()["incident"])
}

func TestExtractedDataJSONBRoundTrip(t *testing.T) {
	data := ExtractedData{
		Metadata: DocumentMetadata{DocumentType: "police_report"},
		Summary:  "Two vehicle collision at an intersection.",
		Damages: []Damage{
			{DamageType: DamageMedical, Description: "ER visit", Amount: f64(1200)},
		},
	}

	value, err := data.Value()
	require.NoError(t, err)

	var decoded ExtractedData
	require.NoError(t, decoded.Scan(value))
	assert.Equal(t, "police_report", decoded.Metadata.DocumentType)
	require.Len(t, decoded.Damages, 1)
	assert.Equal(t, 1200.0, *decoded.Damages[0].Amount)
}
