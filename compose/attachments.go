package compose

import (
	"fmt"

	"crmmail/models"
)

// AttachmentManager holds the ordered set of files pending on a draft and
// enforces the size and count limits at add time. Errors from the last add
// attempt are kept as human-readable strings and replaced, never
// accumulated, on each attempt.
type AttachmentManager struct {
	limits Limits
	files  []models.Attachment
	errs   []string
}

// NewAttachmentManager creates an empty manager with the given limits.
func NewAttachmentManager(limits Limits) *AttachmentManager {
	return &AttachmentManager{limits: limits}
}

// Add appends the file if it fits within the per-file, count and total-size
// limits. On rejection it returns false and records why; on success prior
// errors are cleared. Re-adding a file with the same name is allowed.
func (m *AttachmentManager) Add(file models.Attachment) bool {
	m.errs = nil

	if m.limits.MaxAttachmentSize > 0 && file.Size > m.limits.MaxAttachmentSize {
		m.errs = append(m.errs, fmt.Sprintf("%s exceeds the %d byte limit", file.Filename, m.limits.MaxAttachmentSize))
		return false
	}
	if m.limits.MaxAttachments > 0 && len(m.files)+1 > m.limits.MaxAttachments {
		m.errs = append(m.errs, fmt.Sprintf("cannot attach more than %d files", m.limits.MaxAttachments))
		return false
	}
	if m.limits.MaxTotalSize > 0 && m.TotalSize()+file.Size > m.limits.MaxTotalSize {
		m.errs = append(m.errs, fmt.Sprintf("attachments exceed the %d byte total limit", m.limits.MaxTotalSize))
		return false
	}

	m.files = append(m.files, file)
	return true
}

// Remove drops the file at the given position. Out-of-range indexes are a
// no-op.
func (m *AttachmentManager) Remove(index int) {
	if index < 0 || index >= len(m.files) {
		return
	}
	m.files = append(m.files[:index], m.files[index+1:]...)
}

// Files returns the pending files in order.
func (m *AttachmentManager) Files() []models.Attachment {
	out := make([]models.Attachment, len(m.files))
	copy(out, m.files)
	return out
}

// Errors returns the messages recorded by the last add attempt.
func (m *AttachmentManager) Errors() []string {
	out := make([]string, len(m.errs))
	copy(out, m.errs)
	return out
}

// Count returns the number of pending files.
func (m *AttachmentManager) Count() int {
	return len(m.files)
}

// TotalSize returns the combined byte size of all pending files.
func (m *AttachmentManager) TotalSize() int64 {
	var total int64
	for _, f := range m.files {
		total += f.Size
	}
	return total
}
