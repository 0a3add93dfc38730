package models

import (
	"strings"
	"time"
)

// Email represents a message as returned by the mail provider. The service
// never mutates it; per-user state lives in EmailMetadata.
type Email struct {
	ID             string       `json:"id"`
	To             []string     `json:"to"`
	From           string       `json:"from"`
	Subject        string       `json:"subject"`
	HTML           string       `json:"html,omitempty"`
	Text           string       `json:"text,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	Attachments    []Attachment `json:"attachments,omitempty"`
	HasAttachments bool         `json:"has_attachments"`

	// Preview is derived server-side for list views.
	Preview string `json:"preview,omitempty"`
}

// Attachment represents an email attachment
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Content     []byte `json:"-"` // Excluded from JSON
}

// FromAddress returns the bare address portion of the From field,
// unwrapping a `"Name <addr>"` form if present.
func (e *Email) FromAddress() string {
	return ExtractAddress(e.From)
}

// FromName returns the display-name portion of the From field, or the
// address itself when no display name is embedded.
func (e *Email) FromName() string {
	if i := strings.Index(e.From, "<"); i > 0 {
		name := strings.TrimSpace(e.From[:i])
		name = strings.Trim(name, `"`)
		if name != "" {
			return name
		}
	}
	return e.From
}

// ExtractAddress unwraps `"Name <addr>"` to addr. Plain addresses pass
// through unchanged.
func ExtractAddress(from string) string {
	if i := strings.Index(from, "<"); i >= 0 {
		if j := strings.Index(from[i:], ">"); j > 0 {
			return strings.TrimSpace(from[i+1 : i+j])
		}
	}
	return strings.TrimSpace(from)
}
