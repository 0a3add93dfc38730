package compose

import (
	"strings"

	"crmmail/models"
)

// Mode selects how a new composition is pre-filled from a source message.
type Mode string

const (
	ModeNew      Mode = "new"
	ModeReply    Mode = "reply"
	ModeReplyAll Mode = "reply_all"
	ModeForward  Mode = "forward"
)

// Composition is the draft being written. Exactly one compose surface owns
// a Composition at a time; mutations happen on user-input handlers only, so
// the struct is not guarded by a lock.
type Composition struct {
	Mode    Mode   `json:"mode"`
	To      string `json:"to"`
	Cc      string `json:"cc"`
	Bcc     string `json:"bcc"`
	Subject string `json:"subject"`
	Body    string `json:"body"` // HTML markup

	// ShowCc/ShowBcc mirror the collapsed state of the optional recipient
	// rows in the panel.
	ShowCc  bool `json:"show_cc"`
	ShowBcc bool `json:"show_bcc"`

	Attachments *AttachmentManager `json:"-"`
}

// NewComposition builds a draft for the given mode. Reply and forward modes
// derive recipients, subject prefix and a quoted body from the source
// message; source is treated as a read-only snapshot.
func NewComposition(mode Mode, source *models.Email, presetRecipient string, limits Limits) *Composition {
	c := &Composition{
		Mode:        mode,
		Attachments: NewAttachmentManager(limits),
	}

	if source == nil {
		if mode == ModeNew && presetRecipient != "" {
			c.To = presetRecipient
		}
		return c
	}

	switch mode {
	case ModeReply:
		c.To = source.From
		c.Subject = ReplySubject(source.Subject)
		c.Body = QuotedReplyBody(source)
	case ModeReplyAll:
		c.To = replyAllRecipients(source)
		c.Subject = ReplySubject(source.Subject)
		c.Body = QuotedReplyBody(source)
	case ModeForward:
		c.Subject = ForwardSubject(source.Subject)
		c.Body = ForwardedBody(source)
	default:
		if presetRecipient != "" {
			c.To = presetRecipient
		}
	}

	return c
}

// replyAllRecipients joins the original sender with every original
// recipient except the sender itself. Duplicates of the sender are dropped
// by exact value equality, not case-normalized.
func replyAllRecipients(source *models.Email) string {
	recipients := []string{source.From}
	for _, addr := range source.To {
		addr = strings.TrimSpace(addr)
		if addr == "" || addr == source.From {
			continue
		}
		recipients = append(recipients, addr)
	}
	return strings.Join(recipients, ", ")
}

// SetTo replaces the to field. No validation happens here; invalid states
// are caught at send time.
func (c *Composition) SetTo(v string) { c.To = v }

// SetCc replaces the cc field.
func (c *Composition) SetCc(v string) { c.Cc = v }

// SetBcc replaces the bcc field.
func (c *Composition) SetBcc(v string) { c.Bcc = v }

// SetSubject replaces the subject field.
func (c *Composition) SetSubject(v string) { c.Subject = v }

// SetBody replaces the body markup.
func (c *Composition) SetBody(v string) { c.Body = v }

// ApplyTemplate overwrites the subject only when the template provides a
// non-empty one, and always replaces the body. Templates replace, they do
// not merge.
func (c *Composition) ApplyTemplate(tpl models.EmailTemplate) {
	if tpl.Subject != "" {
		c.Subject = tpl.Subject
	}
	c.Body = tpl.Body
}

// Clear resets every field and collapses the cc/bcc rows.
func (c *Composition) Clear() {
	limits := DefaultLimits()
	if c.Attachments != nil {
		limits = c.Attachments.limits
	}
	*c = Composition{
		Mode:        ModeNew,
		Attachments: NewAttachmentManager(limits),
	}
}
