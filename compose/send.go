package compose

import (
	"context"
	"errors"
	"strings"

	"crmmail/mailapi"
	"crmmail/models"
	"crmmail/utils"
)

// SendState tracks the pipeline through idle -> sending -> success/error.
// The terminal states are sticky until the next Send call.
type SendState int

const (
	StateIdle SendState = iota
	StateSending
	StateSuccess
	StateError
)

// Generic messages for the two failure classes. Server-reported messages
// take precedence over genericSendError when present.
const (
	genericSendError      = "Failed to send email"
	genericTransportError = "An error occurred while sending"
)

// MessageSender is the slice of the provider client the pipeline needs.
type MessageSender interface {
	Send(ctx context.Context, msg mailapi.OutgoingMessage) error
}

// Sender validates a composition and submits it to the provider. One
// Sender backs one compose surface; the sending flag gates duplicate
// submission while a request is outstanding. There is no retry: a failed
// attempt is terminal and the user resubmits.
type Sender struct {
	api    MessageSender
	limits Limits
	log    *utils.Logger

	state   SendState
	errText string
}

// NewSender creates an idle send pipeline.
func NewSender(api MessageSender, limits Limits, log *utils.Logger) *Sender {
	return &Sender{api: api, limits: limits, log: log}
}

// State returns the current pipeline state.
func (s *Sender) State() SendState { return s.state }

// Sending reports whether a request is outstanding.
func (s *Sender) Sending() bool { return s.state == StateSending }

// Success reports whether the last attempt sent successfully. The flag is
// sticky until the next Send call.
func (s *Sender) Success() bool { return s.state == StateSuccess }

// Error returns the failure text of the last attempt, empty on success.
func (s *Sender) Error() string { return s.errText }

// Send validates the composition and, if it passes, serializes it and
// posts it to the send endpoint. Validation failures never reach the
// network; all accumulated errors are joined into the error text. The
// return value reports overall success.
func (s *Sender) Send(ctx context.Context, c *Composition) bool {
	if s.state == StateSending {
		return false
	}
	s.state = StateSending
	s.errText = ""

	var attachments []models.Attachment
	if c.Attachments != nil {
		attachments = c.Attachments.Files()
	}

	result := ValidateComposition(c.To, c.Subject, c.Body, attachments, s.limits)
	if !result.Valid {
		s.state = StateError
		s.errText = strings.Join(result.Errors, "; ")
		return false
	}

	err := s.api.Send(ctx, mailapi.OutgoingMessage{
		To:          c.To,
		Cc:          c.Cc,
		Bcc:         c.Bcc,
		Subject:     c.Subject,
		Body:        c.Body,
		Attachments: attachments,
	})
	if err != nil {
		s.state = StateError
		s.errText = sendFailureText(err)

		// The two failure classes are reported identically to the caller
		// but logged distinctly.
		var serverErr *mailapi.ServerError
		if errors.As(err, &serverErr) {
			s.log.Warn("Send rejected by provider: status=%d message=%q", serverErr.StatusCode, serverErr.Message)
		} else {
			s.log.Error("Send transport failure: %v", err)
		}
		return false
	}

	s.state = StateSuccess
	s.log.Info("Email sent: to=%s subject=%q attachments=%d", c.To, c.Subject, len(attachments))
	return true
}

// sendFailureText maps a provider error to the message shown inline in the
// compose panel.
func sendFailureText(err error) string {
	var serverErr *mailapi.ServerError
	if errors.As(err, &serverErr) {
		if serverErr.Message != "" {
			return serverErr.Message
		}
		return genericSendError
	}
	return genericTransportError
}
