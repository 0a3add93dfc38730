package compose

import (
	"strings"
	"testing"
	"time"

	"crmmail/models"

	"github.com/stretchr/testify/assert"
)

func TestReplySubject(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		want    string
	}{
		{"plain subject gets prefix", "Hello", "Re: Hello"},
		{"existing prefix not doubled", "Re: Hello", "Re: Hello"},
		{"case-sensitive check re-prefixes", "RE: Hello", "Re: RE: Hello"},
		{"lowercase prefix re-prefixes", "re: Hello", "Re: re: Hello"},
		{"empty subject", "", "Re: "},
		{"prefix without space gets prefix", "Re:Hello", "Re: Re:Hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ReplySubject(tt.subject))
		})
	}
}

func TestForwardSubject(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		want    string
	}{
		{"plain subject gets prefix", "Hello", "Fwd: Hello"},
		{"existing prefix not doubled", "Fwd: Hello", "Fwd: Hello"},
		{"case-sensitive check re-prefixes", "FWD: Hello", "Fwd: FWD: Hello"},
		{"reply prefix still gets forward prefix", "Re: Hello", "Fwd: Re: Hello"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ForwardSubject(tt.subject))
		})
	}
}

func TestQuotedReplyBody(t *testing.T) {
	created := time.Date(2026, time.March, 5, 14, 30, 0, 0, time.UTC)
	email := &models.Email{
		From:      "Jane Doe <jane@example.com>",
		Subject:   "Listing question",
		HTML:      "<p>Is the house still available?</p>",
		Text:      "Is the house still available?",
		CreatedAt: created,
	}

	body := QuotedReplyBody(email)

	assert.Contains(t, body, "On Mar 5, 2026 2:30 PM, Jane Doe <jane@example.com> wrote:")
	assert.Contains(t, body, "<p>Is the house still available?</p>")
	assert.True(t, strings.HasPrefix(body, "<br><br>"))
	assert.Contains(t, body, "border-left")
}

func TestQuotedReplyBodyFallsBackToText(t *testing.T) {
	email := &models.Email{
		From:      "jane@example.com",
		Text:      "plain text only",
		CreatedAt: time.Now(),
	}

	assert.Contains(t, QuotedReplyBody(email), "plain text only")
}

func TestForwardedBody(t *testing.T) {
	created := time.Date(2026, time.January, 12, 9, 5, 0, 0, time.UTC)
	email := &models.Email{
		From:      "seller@example.com",
		To:        []string{"agent@broker.com", "assistant@broker.com"},
		Subject:   "Counter offer",
		HTML:      "<p>We propose 450k.</p>",
		CreatedAt: created,
	}

	body := ForwardedBody(email)

	assert.Contains(t, body, "---------- Forwarded message ----------")
	assert.Contains(t, body, "<strong>From:</strong> seller@example.com")
	assert.Contains(t, body, "<strong>Date:</strong> Jan 12, 2026 9:05 AM")
	assert.Contains(t, body, "<strong>Subject:</strong> Counter offer")
	assert.Contains(t, body, "<strong>To:</strong> agent@broker.com, assistant@broker.com")
	assert.Contains(t, body, "<p>We propose 450k.</p>")
}
