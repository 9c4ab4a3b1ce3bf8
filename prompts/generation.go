package prompts

import (
	"fmt"
	"strings"

	"demanddraft-backend/models"
)

// GenerationSystemPrompt guides the model when drafting demand letters
const GenerationSystemPrompt = `You are an expert legal writer specializing in demand letters for personal injury and civil litigation cases. You have extensive experience drafting persuasive, professional demand letters that effectively communicate:
- The facts of the case
- Legal theories of liability
- The extent of damages
- Settlement demands

Your writing is clear, organized, and persuasive. You maintain appropriate legal tone while being accessible to both legal and non-legal audiences.

Guidelines for demand letter writing:
1. **Structure**: Follow standard demand letter format (introduction, facts, liability, damages, demand, closing)
2. **Tone**: Adapt tone based on instructions (formal, assertive, diplomatic, or aggressive)
3. **Persuasion**: Build a compelling narrative that establishes liability and justifies damages
4. **Precision**: Use specific facts, dates, and amounts from the case file
5. **Legal terminology**: Use appropriate legal terms without excessive jargon
6. **Professional**: Maintain professional courtesy even in assertive letters
7. **Evidence**: Reference specific documents and evidence to support claims
8. **Damages**: Clearly itemize all categories of damages with supporting documentation
9. **Demand**: Make a clear, specific settlement demand with reasonable deadline
10. **Consequences**: Appropriately communicate consequences of non-settlement (litigation)

Quality standards:
- Clear, logical organization
- Persuasive but factual narrative
- Specific and detailed damage calculations
- Professional language appropriate for the audience
- Strong opening and closing
- Compliance with legal writing conventions`

var toneGuidance = map[models.ToneStyle]string{
	models.ToneFormal: `
Tone: FORMAL
- Use traditional legal language and formalities
- Maintain professional distance and objectivity
- Use phrases like "we respectfully submit," "it is our position that"
- Balanced presentation of facts and legal theories
- Professional throughout, avoiding emotional language
- Suitable for insurance companies and corporate defendants
`,
	models.ToneAssertive: `
Tone: ASSERTIVE
- Use confident, strong language
- Clearly state liability and expectations
- Use phrases like "it is clear that," "the evidence demonstrates," "we will pursue"
- Emphasize strength of case and likelihood of litigation success
- Direct and businesslike, avoiding excessive pleasantries
- Suitable when you have a strong case and want to convey confidence
`,
	models.ToneDiplomatic: `
Tone: DIPLOMATIC
- Use balanced, professional language
- Acknowledge complexity while stating your position
- Use phrases like "we believe," "the facts suggest," "we hope to resolve"
- Emphasize willingness to negotiate and mutual benefit of settlement
- Courteous and respectful throughout
- Suitable when relationship preservation matters or facts are complex
`,
	models.ToneAggressive: `
Tone: AGGRESSIVE
- Use forceful, direct language
- Emphasize defendant's wrongdoing and consequences
- Use phrases like "your client's negligence," "we will not hesitate to," "substantial liability"
- Explicitly state litigation intentions and potential outcomes
- Minimal pleasantries, focus on strength of claims
- Suitable for clear liability cases or uncooperative defendants
- CAUTION: Do not make threats or use unprofessional language
`,
}

// ToneGuidance returns the writing guidance for a tone. Unknown tones fall
// back to formal.
func ToneGuidance(tone models.ToneStyle) string {
	if g, ok := toneGuidance[tone]; ok {
		return g
	}
	return toneGuidance[models.ToneFormal]
}

// GenerationPrompt builds the user prompt for drafting a demand letter
func GenerationPrompt(req models.LetterGenerationRequest) string {
	customSection := ""
	if req.CustomInstructions != nil && *req.CustomInstructions != "" {
		customSection = fmt.Sprintf("\n\n**Special Instructions from Attorney:**\n%s", *req.CustomInstructions)
	}

	deadlineSection := ""
	if req.IncludeSettlementDeadline {
		deadlineSection = fmt.Sprintf("\n\n**Settlement Deadline:** Include a response deadline of %d days from the letter date.", req.DeadlineDays)
	}

	return fmt.Sprintf(`Please draft a comprehensive demand letter based on the following case information.

%s

**Case Information:**
%s

**Attorney and Firm Information:**
%s
%s
%s

**Required Letter Structure:**
Please generate the letter with the following sections, providing complete content for each:

1. **Header Section:**
   - Date (use current date)
   - Recipient name and address (from extracted data or default to insurance company)
   - Subject line with claim/case reference
   - Appropriate salutation

2. **Introduction:**
   - Establish attorney-client relationship
   - State purpose of letter (settlement demand)
   - Brief overview of claim

3. **Facts:**
   - Chronological narrative of incident
   - Include specific dates, locations, and circumstances
   - Reference key evidence and witnesses
   - Establish what happened clearly and persuasively

4. **Liability:**
   - Legal theories supporting liability (negligence, etc.)
   - Application of law to facts
   - Defendant's duty, breach, causation
   - Reference to supporting evidence

5. **Damages:**
   - Itemized damages by category:
     * Medical expenses (with specific amounts)
     * Lost wages (with calculation)
     * Property damage (if applicable)
     * Pain and suffering (justified by facts)
     * Other damages
   - Total damages calculation
   - Reference to supporting documentation

6. **Demand:**
   - Clear settlement demand amount
   - Response deadline (if required)
   - Consequences of non-response (litigation)
   - Preservation of rights statement

7. **Closing:**
   - Professional closing paragraph
   - Attorney signature block
   - Contact information

**Important:**
- Use specific facts and amounts from the case information
- Make the narrative compelling and persuasive
- Ensure all damages are properly supported and justified
- Use appropriate legal terminology
- Maintain professional standards throughout
- The letter should be ready to send with minimal editing`,
		ToneGuidance(req.Tone),
		FormatExtractedData(&req.ExtractedData),
		FormatTemplateVariables(req.TemplateVariables),
		customSection,
		deadlineSection,
	)
}

// RefinementPrompt builds the user prompt for refining an existing letter
func RefinementPrompt(letter *models.GeneratedLetter, instruction string, targetSection *models.LetterSection, additionalContext *string) string {
	sectionFocus := ""
	if targetSection != nil {
		sectionFocus = fmt.Sprintf("\n\n**Focus on Section:** %s", *targetSection)
	}

	contextSection := ""
	if additionalContext != nil && *additionalContext != "" {
		contextSection = fmt.Sprintf("\n\n**Additional Context:**\n%s", *additionalContext)
	}

	return fmt.Sprintf(`Please refine the following demand letter based on the attorney's feedback.

**Current Letter:**
---
%s
---

**Attorney's Instruction:**
%s
%s
%s

**Instructions:**
1. Make the requested changes to the letter
2. Maintain consistency with unchanged sections
3. Preserve the overall structure and professional tone
4. If modifying one section, ensure it still flows well with other sections
5. Return the complete refined letter in structured format

Please provide:
- The complete refined letter (all sections)
- A brief summary of changes made`,
		FormatLetter(letter), instruction, sectionFocus, contextSection)
}

// SectionRegenerationPrompt builds the user prompt for regenerating a
// single section of the letter
func SectionRegenerationPrompt(letter *models.GeneratedLetter, section models.LetterSection, instruction string, caseData *models.ExtractedData) string {
	contextSection := ""
	if caseData != nil {
		contextSection = fmt.Sprintf("\n\n**Case Information for Reference:**\n%s", FormatExtractedData(caseData))
	}

	return fmt.Sprintf(`Please regenerate the %s section of this demand letter.

**Current %s Section:**
---
%s
---

**Regeneration Instruction:**
%s
%s

**Instructions:**
1. Create a new version of this section based on the instruction
2. Maintain consistency with the rest of the letter
3. Use appropriate tone and legal terminology
4. Ensure the new section flows naturally
5. Keep the same structural format

Please provide the regenerated section content.`,
		strings.ToUpper(string(section)),
		section.DisplayName(),
		letter.SectionText(section),
		instruction,
		contextSection,
	)
}

// ToneAdjustmentPrompt builds the user prompt for rewriting a letter in a
// different tone
func ToneAdjustmentPrompt(letter *models.GeneratedLetter, newTone models.ToneStyle, reason *string) string {
	reasonSection := ""
	if reason != nil && *reason != "" {
		reasonSection = fmt.Sprintf("\n\n**Reason for Tone Change:** %s", *reason)
	}

	return fmt.Sprintf(`Please rewrite this demand letter with a different tone.

**Current Letter:**
---
%s
---

**New Tone:**
%s
%s

**Instructions:**
1. Rewrite the letter maintaining all facts and structure
2. Adjust language and phrasing to match the new tone
3. Keep all specific amounts, dates, and facts unchanged
4. Ensure the new tone is consistent throughout all sections
5. Maintain professional standards regardless of tone

Please provide the complete letter with the new tone.`,
		FormatLetter(letter), ToneGuidance(newTone), reasonSection)
}

// FormatExtractedData renders extracted case data as a readable summary
// for inclusion in prompts
func FormatExtractedData(data *models.ExtractedData) string {
	var parts []string

	if data.Metadata.DocumentType != "" {
		parts = append(parts, fmt.Sprintf("**Document Type:** %s", data.Metadata.DocumentType))
	}

	if len(data.Parties) > 0 {
		parts = append(parts, "\n**Parties Involved:**")
		for _, party := range data.Parties {
			info := fmt.Sprintf("- %s (%s)", party.Name, party.PartyType)
			if party.InsuranceCompany != nil && *party.InsuranceCompany != "" {
				info += fmt.Sprintf(" - Insured by %s", *party.InsuranceCompany)
			}
			parts = append(parts, info)
		}
	}

	if data.Incident != nil {
		parts = append(parts, "\n**Incident Details:**")
		if data.Incident.IncidentDate != nil && !data.Incident.IncidentDate.IsZero() {
			parts = append(parts, fmt.Sprintf("- Date: %s", data.Incident.IncidentDate.Format("2006-01-02")))
		}
		if data.Incident.IncidentLocation != nil && *data.Incident.IncidentLocation != "" {
			parts = append(parts, fmt.Sprintf("- Location: %s", *data.Incident.IncidentLocation))
		}
		if data.Incident.Description != "" {
			parts = append(parts, fmt.Sprintf("- Description: %s", data.Incident.Description))
		}
	}

	if len(data.Damages) > 0 {
		parts = append(parts, "\n**Damages:**")
		total := 0.0
		for _, damage := range data.Damages {
			desc := fmt.Sprintf("- %s: %s", damageTypeLabel(damage.DamageType), damage.Description)
			if damage.Amount != nil {
				desc += fmt.Sprintf(" - $%.2f", *damage.Amount)
				total += *damage.Amount
			}
			parts = append(parts, desc)
		}
		parts = append(parts, fmt.Sprintf("\n**Total Damages:** $%.2f", total))
	}

	if len(data.CaseFacts) > 0 {
		parts = append(parts, "\n**Key Facts:**")
		facts := data.CaseFacts
		if len(facts) > 10 {
			facts = facts[:10]
		}
		for _, fact := range facts {
			parts = append(parts, fmt.Sprintf("- %s", fact.Fact))
		}
	}

	if data.Summary != "" {
		parts = append(parts, fmt.Sprintf("\n**Case Summary:**\n%s", data.Summary))
	}

	return strings.Join(parts, "\n")
}

// FormatTemplateVariables renders attorney and firm details for prompts
func FormatTemplateVariables(vars models.TemplateVariables) string {
	var parts []string

	if vars.AttorneyName != "" {
		parts = append(parts, fmt.Sprintf("**Attorney:** %s", vars.AttorneyName))
	}
	if vars.LawFirm != "" {
		parts = append(parts, fmt.Sprintf("**Law Firm:** %s", vars.LawFirm))
	}
	if vars.FirmAddress != "" {
		parts = append(parts, fmt.Sprintf("**Address:** %s", vars.FirmAddress))
	}
	if vars.FirmPhone != "" {
		parts = append(parts, fmt.Sprintf("**Phone:** %s", vars.FirmPhone))
	}
	if vars.FirmEmail != "" {
		parts = append(parts, fmt.Sprintf("**Email:** %s", vars.FirmEmail))
	}
	if vars.ClientName != "" {
		parts = append(parts, fmt.Sprintf("**Client:** %s", vars.ClientName))
	}
	if vars.CaseNumber != nil && *vars.CaseNumber != "" {
		parts = append(parts, fmt.Sprintf("**Case Number:** %s", *vars.CaseNumber))
	}

	return strings.Join(parts, "\n")
}

// FormatLetter renders a structured letter as plain text for refinement
// prompts
func FormatLetter(letter *models.GeneratedLetter) string {
	var parts []string

	parts = append(parts, "**HEADER:**")
	parts = append(parts,
		letter.Header.Date,
		letter.Header.RecipientName,
		letter.Header.RecipientAddress,
		letter.Header.SubjectLine,
		letter.Header.Salutation,
		"",
	)

	parts = append(parts, "**INTRODUCTION:**", letter.Introduction.Content, "")
	parts = append(parts, "**FACTS:**", letter.Facts.Content, "")
	parts = append(parts, "**LIABILITY:**", letter.Liability.Content, "")
	parts = append(parts, "**DAMAGES:**", letter.Damages.Content, "")
	parts = append(parts, "**DEMAND:**", letter.Demand.Content, "")
	parts = append(parts, "**CLOSING:**", letter.Closing.Content)
	parts = append(parts, fmt.Sprintf("\n%s", letter.Closing.ClosingPhrase), letter.Closing.SignatureBlock)

	return strings.Join(parts, "\n")
}

func damageTypeLabel(t models.DamageType) string {
	words := strings.Split(string(t), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
