package compose

import (
	"strings"
	"testing"

	"crmmail/models"

	"github.com/stretchr/testify/assert"
)

func TestSplitRecipients(t *testing.T) {
	assert.Equal(t, []string{"a@b.co", "c@d.co"}, SplitRecipients("a@b.co, c@d.co"))
	assert.Equal(t, []string{"a@b.co"}, SplitRecipients(" a@b.co ,, "))
	assert.Empty(t, SplitRecipients(""))
}

func TestValidateCompositionValid(t *testing.T) {
	result := ValidateComposition("a@b.co, c@d.co", "Hi", "<p>body</p>", nil, DefaultLimits())
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestValidateCompositionAccumulatesAllErrors(t *testing.T) {
	result := ValidateComposition("", "", "", nil, DefaultLimits())

	assert.False(t, result.Valid)
	assert.Equal(t, []string{
		"recipient required",
		"subject required",
		"message body required",
	}, result.Errors)
}

func TestValidateCompositionAddresses(t *testing.T) {
	tests := []struct {
		name  string
		to    string
		valid bool
	}{
		{"simple address", "a@b.co", true},
		{"subdomain", "a@mail.b.co", true},
		{"missing at", "ab.co", false},
		{"missing dot in domain", "a@bco", false},
		{"space inside", "a b@c.co", false},
		{"one bad among good", "a@b.co, nope", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateComposition(tt.to, "Hi", "<p>x</p>", nil, DefaultLimits())
			assert.Equal(t, tt.valid, result.Valid)
			if !tt.valid {
				assert.Contains(t, strings.Join(result.Errors, "; "), "invalid recipient address")
			}
		})
	}
}

func TestValidateCompositionRecipientLimit(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxRecipients = 2

	result := ValidateComposition("a@b.co, c@d.co, e@f.co", "Hi", "<p>x</p>", nil, limits)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors, "too many recipients (max 2)")
}

func TestValidateCompositionSubjectLimit(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxSubjectLength = 5

	result := ValidateComposition("a@b.co", "too long here", "<p>x</p>", nil, limits)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors, "subject too long (max 5 characters)")
}

func TestValidateCompositionEmptyMarkupBody(t *testing.T) {
	// Markup that strips to nothing counts as no body.
	result := ValidateComposition("a@b.co", "Hi", "<p><br></p>", nil, DefaultLimits())
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors, "message body required")

	result = ValidateComposition("a@b.co", "Hi", "<div>&nbsp;</div>", nil, DefaultLimits())
	assert.False(t, result.Valid)
}

func TestValidateCompositionAttachments(t *testing.T) {
	limits := DefaultLimits()
	limits.MaxAttachments = 1
	limits.MaxAttachmentSize = 100

	atts := []models.Attachment{
		{Filename: "a.pdf", Size: 50},
		{Filename: "big.pdf", Size: 500},
	}

	result := ValidateComposition("a@b.co", "Hi", "<p>x</p>", atts, limits)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors, "too many attachments (max 1)")
	assert.Contains(t, result.Errors, "attachment too large: big.pdf")
}
