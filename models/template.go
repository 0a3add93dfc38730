package models

// EmailTemplate is a canned subject/body pair offered in the compose panel.
// Applying one replaces the draft body; the subject is only taken when the
// template provides a non-empty one.
type EmailTemplate struct {
	Name    string `json:"name"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
