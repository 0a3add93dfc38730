package compose

import (
	"fmt"
	"strings"
	"time"

	"crmmail/models"
)

const (
	replyPrefix   = "Re: "
	forwardPrefix = "Fwd: "

	attributionTimeFormat = "Jan 2, 2006 3:04 PM"
)

// ReplySubject prepends "Re: " unless the subject already carries it. The
// prefix check is an exact, case-sensitive one: "RE: foo" gets a second
// prefix on purpose, matching the provider UI's behavior.
func ReplySubject(subject string) string {
	if strings.HasPrefix(subject, replyPrefix) {
		return subject
	}
	return replyPrefix + subject
}

// ForwardSubject prepends "Fwd: " under the same not-already-present rule.
func ForwardSubject(subject string) string {
	if strings.HasPrefix(subject, forwardPrefix) {
		return subject
	}
	return forwardPrefix + subject
}

// sourceBody picks the body to quote: HTML preferred, then plain text,
// else empty.
func sourceBody(e *models.Email) string {
	if e.HTML != "" {
		return e.HTML
	}
	return e.Text
}

// QuotedReplyBody wraps the source message in a left-bordered quote block
// headed by a timestamp and sender attribution line.
func QuotedReplyBody(e *models.Email) string {
	var sb strings.Builder

	sb.WriteString("<br><br>")
	sb.WriteString(`<div style="border-left: 2px solid #ccc; padding-left: 12px; margin-left: 8px; color: #666;">`)
	sb.WriteString(fmt.Sprintf(
		`<p style="margin: 0 0 8px 0;"><strong>On %s, %s wrote:</strong></p>`,
		e.CreatedAt.Format(attributionTimeFormat), e.From,
	))
	sb.WriteString(sourceBody(e))
	sb.WriteString("</div>")

	return sb.String()
}

// ForwardedBody wraps the source message in a framed block listing the
// original From/Date/Subject/To header lines above the original body.
func ForwardedBody(e *models.Email) string {
	var sb strings.Builder

	sb.WriteString("<br><br>")
	sb.WriteString(`<div style="border: 1px solid #ddd; border-radius: 8px; padding: 12px;">`)
	sb.WriteString(`<p style="margin: 0 0 8px 0; font-weight: bold;">---------- Forwarded message ----------</p>`)
	sb.WriteString(fmt.Sprintf(`<p style="margin: 4px 0;"><strong>From:</strong> %s</p>`, e.From))
	sb.WriteString(fmt.Sprintf(`<p style="margin: 4px 0;"><strong>Date:</strong> %s</p>`, e.CreatedAt.Format(attributionTimeFormat)))
	sb.WriteString(fmt.Sprintf(`<p style="margin: 4px 0;"><strong>Subject:</strong> %s</p>`, e.Subject))
	sb.WriteString(fmt.Sprintf(`<p style="margin: 4px 0;"><strong>To:</strong> %s</p>`, strings.Join(e.To, ", ")))
	sb.WriteString(`<hr style="margin: 12px 0; border: none; border-top: 1px solid #ddd;">`)
	sb.WriteString(sourceBody(e))
	sb.WriteString("</div>")

	return sb.String()
}

// AttributionTime formats a timestamp the way the quote headers do.
func AttributionTime(t time.Time) string {
	return t.Format(attributionTimeFormat)
}
