// Package prompts builds the system and user prompts for document
// extraction and demand letter generation.
package prompts

import (
	"fmt"
	"strings"
)

// ExtractionSystemPrompt guides the model when extracting structured data
// from legal documents
const ExtractionSystemPrompt = `You are an expert legal document analyst specialized in extracting structured information from various types of legal documents including:
- Police reports
- Medical records
- Insurance claims
- Contracts and agreements
- Correspondence
- Witness statements
- Accident reports

Your task is to carefully read the provided document and extract key information in a structured format.

Guidelines:
1. Extract information accurately - only include information explicitly stated in the document
2. Assign confidence levels based on how clearly information is stated
3. Include source text for important extractions to enable verification
4. If information is unclear or missing, note this rather than making assumptions
5. Pay special attention to:
   - Names and roles of all parties
   - Dates (incident date, document date, damage dates)
   - Monetary amounts and damages
   - Key facts relevant to liability and damages
   - Contact information and insurance details

Quality standards:
- HIGH confidence: Information clearly and explicitly stated
- MEDIUM confidence: Information implied or partially stated
- LOW confidence: Information inferred from context
- UNCERTAIN: Information unclear or contradictory

Be thorough but concise. Focus on information relevant to a demand letter or legal claim.`

// documentTypeGuidelines holds extraction guidance keyed by document type
var documentTypeGuidelines = map[string]string{
	"police_report": `
For police reports, pay special attention to:
- Report number and date
- Officer name and badge number
- All parties involved (drivers, witnesses, victims)
- Accident location and conditions
- Citations or violations issued
- Officer's narrative and diagrams
- Insurance information
- Vehicle information (make, model, license plates)
`,
	"medical_record": `
For medical records, pay special attention to:
- Patient name and date of birth
- Date of service
- Treating physician or facility
- Diagnosis and ICD codes
- Treatment provided
- Prescribed medications
- Follow-up appointments
- Total charges and amounts billed
- Causation statements (if injury is linked to an incident)
`,
	"insurance_claim": `
For insurance claims, pay special attention to:
- Claim number and date filed
- Policy number and coverage details
- Insurance company name and adjuster
- Claimant and insured party names
- Description of loss or damage
- Claimed amounts by category
- Coverage determinations
- Payment information
- Denial reasons (if applicable)
`,
	"medical_bill": `
For medical bills, pay special attention to:
- Provider name and billing information
- Patient name
- Date(s) of service
- CPT/HCPCS procedure codes
- Itemized charges
- Total amount billed
- Insurance payments
- Patient responsibility
- Payment due date
`,
	"wage_loss_statement": `
For wage loss statements, pay special attention to:
- Employee name and employer
- Period of absence from work
- Hourly rate or salary
- Hours or days missed
- Total wages lost
- Benefits lost
- Return to work date (if applicable)
- Employer contact information
`,
}

// DocumentTypeGuidelines returns extraction guidance for a document type,
// or empty string when no specific guidance exists
func DocumentTypeGuidelines(documentType string) string {
	return documentTypeGuidelines[strings.ToLower(documentType)]
}

// ExtractionPrompt builds the user prompt for extracting structured data
// from a document
func ExtractionPrompt(documentText, documentType string) string {
	docTypeContext := ""
	if documentType != "" {
		docTypeContext = fmt.Sprintf("\n\nDocument type: %s", documentType)
	}

	return fmt.Sprintf(`Please analyze the following document and extract all relevant structured information.%s

Document text:
---
%s
---

Extract the following information:
1. **Parties involved**: Names, roles, contact information, insurance details
2. **Incident details**: Date, location, description, incident type
3. **Damages**: Medical expenses, property damage, lost wages, pain and suffering, etc.
4. **Case facts**: Key factual statements relevant to the case
5. **Document metadata**: Document type, date, author, reference numbers

For each piece of extracted information:
- Assign an appropriate confidence level (high/medium/low/uncertain)
- Include relevant source text for verification
- Note any ambiguities or missing information

Provide a brief 2-3 sentence summary of the document's content.

If the document is difficult to parse or contains unclear information, note this in the extraction_notes field.`, docTypeContext, documentText)
}

// FocusedExtractionPrompt builds a prompt for a follow-up pass that targets
// a specific kind of information
func FocusedExtractionPrompt(documentText, focusArea, additionalContext string) string {
	contextSection := ""
	if additionalContext != "" {
		contextSection = fmt.Sprintf("\n\nAdditional context: %s", additionalContext)
	}

	return fmt.Sprintf(`Please analyze the following document with a specific focus on: %s%s

Document text:
---
%s
---

Extract all information related to %s, including:
- Specific details and amounts
- Dates and timeframes
- Parties or entities involved
- Supporting evidence or documentation mentioned
- Any caveats or conditions

For each piece of information:
- Assign confidence level
- Include source text for verification
- Note any gaps or ambiguities`, focusArea, contextSection, documentText, focusArea)
}
