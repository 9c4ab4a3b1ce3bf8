package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLatestVersion(t *testing.T) {
	h := &ConversationHistory{}
	assert.Equal(t, 0, h.LatestVersion())

	h.AddVersion(1, EmptyLetter(), "Initial generation")
	h.AddVersion(3, EmptyLetter(), "skip ahead")
	h.AddVersion(2, EmptyLetter(), "out of order")
	assert.Equal(t, 3, h.LatestVersion())
}

func TestAddMessage(t *testing.T) {
	h := &ConversationHistory{}
	h.AddMessage("user", "make it firmer")
	h.AddMessage("assistant", "done")

	assert.Len(t, h.Messages, 2)
	assert.Equal(t, "user", h.Messages[0].Role)
	assert.Equal(t, "assistant", h.Messages[1].Role)
}

func TestSectionDisplayName(t *testing.T) {
	assert.Equal(t, "Facts", SectionFacts.DisplayName())
	assert.Equal(t, "Introduction", SectionIntroduction.DisplayName())
}

func TestFeedbackPriorityRank(t *testing.T) {
	assert.Equal(t, 0, PriorityHigh.Rank())
	assert.Equal(t, 1, PriorityMedium.Rank())
	assert.Equal(t, 2, PriorityLow.Rank())
	assert.Equal(t, 1, FeedbackPriority("bogus").Rank())
}

func TestAllLetterSectionsOrder(t *testing.T) {
	assert.Equal(t, []LetterSection{
		SectionHeader,
		SectionIntroduction,
		SectionFacts,
		SectionLiability,
		SectionDamages,
		SectionDemand,
		SectionClosing,
	}, AllLetterSections)
}

func TestToFullTextIncludesAllSections(t *testing.T) {
	letter := EmptyLetter()
	letter.Header.Date = "January 2, 2025"
	letter.Header.RecipientName = "Claims Department"
	letter.Header.RecipientAddress = "1 Insurance Way"
	letter.Header.SubjectLine = "Re: Claim #555"
	letter.Header.Salutation = "Dear Adjuster:"
	letter.Introduction.Content = "This firm represents the claimant."
	letter.Facts.Content = "On the date in question a collision occurred."
	letter.Liability.Content = "Your insured was negligent."
	letter.Damages.Content = "Damages total $10,000."
	letter.Demand.Content = "We demand $15,000."
	letter.Closing.Content = "We await your response."
	letter.Closing.ClosingPhrase = "Sincerely,"
	letter.Closing.SignatureBlock = "A. Attorney"

	text := letter.ToFullText()
	for _, fragment := range []string{
		"Re: Claim #555",
		"This firm represents the claimant.",
		"a collision occurred",
		"negligent",
		"$10,000",
		"$15,000",
		"Sincerely,",
		"A. Attorney",
	} {
		assert.True(t, strings.Contains(text, fragment), "missing %q", fragment)
	}
}

func TestSectionText(t *testing.T) {
	letter := EmptyLetter()
	letter.Facts.Content = "the facts"
	letter.Demand.Content = "the demand"

	assert.Equal(t, "the facts", letter.SectionText(SectionFacts))
	assert.Equal(t, "the demand", letter.SectionText(SectionDemand))
	assert.Equal(t, "", letter.SectionText(LetterSection("bogus")))
}
