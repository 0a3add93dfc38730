package models

// Contact is an address-book entry returned by the CRM contact search,
// used for recipient autocomplete.
type Contact struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Photo string `json:"photo,omitempty"`
}
