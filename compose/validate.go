package compose

import (
	"fmt"
	"regexp"
	"strings"

	"crmmail/config"
	"crmmail/models"
	"crmmail/utils"
)

// Limits carries the send-time validation constants. They are injected
// rather than global so tests and callers can tighten them.
type Limits struct {
	MaxRecipients     int
	MaxSubjectLength  int
	MaxAttachmentSize int64 // per file, bytes
	MaxAttachments    int
	MaxTotalSize      int64 // all attachments combined, bytes
}

// DefaultLimits mirrors the configuration defaults.
func DefaultLimits() Limits {
	return Limits{
		MaxRecipients:     50,
		MaxSubjectLength:  200,
		MaxAttachmentSize: 10 << 20,
		MaxAttachments:    10,
		MaxTotalSize:      25 << 20,
	}
}

// LimitsFromConfig converts the config section into validation limits.
func LimitsFromConfig(cfg config.ComposeConfig) Limits {
	return Limits{
		MaxRecipients:     cfg.MaxRecipients,
		MaxSubjectLength:  cfg.MaxSubjectLength,
		MaxAttachmentSize: cfg.MaxAttachmentSize,
		MaxAttachments:    cfg.MaxAttachments,
		MaxTotalSize:      cfg.MaxTotalSize,
	}
}

// ValidationResult reports every problem found, not just the first.
type ValidationResult struct {
	Valid  bool
	Errors []string
}

// Loose shape check only: something@something.something with no spaces.
// Full RFC parsing is the provider's problem.
var addressPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// SplitRecipients breaks a comma-separated recipient field into trimmed
// addresses, dropping empties.
func SplitRecipients(field string) []string {
	parts := strings.Split(field, ",")
	addrs := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			addrs = append(addrs, p)
		}
	}
	return addrs
}

// ValidateComposition checks a draft before send. Attachment checks are
// deliberately repeated here even though AttachmentManager enforces the
// same limits: attachments can be set without going through Add, and the
// send path must not depend on that.
func ValidateComposition(to, subject, bodyHTML string, attachments []models.Attachment, limits Limits) ValidationResult {
	var errs []string

	if strings.TrimSpace(to) == "" {
		errs = append(errs, "recipient required")
	} else {
		addrs := SplitRecipients(to)
		for _, addr := range addrs {
			if !addressPattern.MatchString(addr) {
				errs = append(errs, fmt.Sprintf("invalid recipient address: %s", addr))
			}
		}
		if limits.MaxRecipients > 0 && len(addrs) > limits.MaxRecipients {
			errs = append(errs, fmt.Sprintf("too many recipients (max %d)", limits.MaxRecipients))
		}
	}

	if strings.TrimSpace(subject) == "" {
		errs = append(errs, "subject required")
	} else if limits.MaxSubjectLength > 0 && len(subject) > limits.MaxSubjectLength {
		errs = append(errs, fmt.Sprintf("subject too long (max %d characters)", limits.MaxSubjectLength))
	}

	// A body of nothing but empty tags counts as empty.
	if utils.HTMLToText(bodyHTML) == "" {
		errs = append(errs, "message body required")
	}

	if limits.MaxAttachments > 0 && len(attachments) > limits.MaxAttachments {
		errs = append(errs, fmt.Sprintf("too many attachments (max %d)", limits.MaxAttachments))
	}
	for _, att := range attachments {
		if limits.MaxAttachmentSize > 0 && att.Size > limits.MaxAttachmentSize {
			errs = append(errs, fmt.Sprintf("attachment too large: %s", att.Filename))
		}
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}
