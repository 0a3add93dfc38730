package models

import "time"

// EmailMetadata holds per-message client state tracked outside the
// provider: read/favorite/archive/delete flags and free-form tags, plus a
// cached snapshot of the matched CRM contact. Entries are created lazily on
// first fetch or first mutation and are only ever updated in place.
type EmailMetadata struct {
	EmailID    string   `json:"email_id"`
	Folder     string   `json:"folder,omitempty"`
	IsRead     bool     `json:"is_read"`
	IsFavorite bool     `json:"is_favorite"`
	IsArchived bool     `json:"is_archived"`
	IsDeleted  bool     `json:"is_deleted"`
	Tags       []string `json:"tags,omitempty"`

	ReadAt      *time.Time `json:"read_at,omitempty"`
	FavoritedAt *time.Time `json:"favorited_at,omitempty"`
	ArchivedAt  *time.Time `json:"archived_at,omitempty"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`

	ContactID         string `json:"contact_id,omitempty"`
	CachedSenderName  string `json:"cached_sender_name,omitempty"`
	CachedSenderEmail string `json:"cached_sender_email,omitempty"`
	CachedSenderPhoto string `json:"cached_sender_photo,omitempty"`
}

// HasTag reports whether the metadata carries the given tag.
func (m *EmailMetadata) HasTag(tag string) bool {
	if m == nil {
		return false
	}
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// MetadataUpdate is a partial update sent to the metadata endpoint. Nil
// pointer fields are left untouched server-side.
type MetadataUpdate struct {
	IsRead     *bool    `json:"is_read,omitempty"`
	IsFavorite *bool    `json:"is_favorite,omitempty"`
	IsArchived *bool    `json:"is_archived,omitempty"`
	IsDeleted  *bool    `json:"is_deleted,omitempty"`
	Tags       []string `json:"tags,omitempty"`

	// SenderEmail lets the server resolve and cache the matching contact.
	SenderEmail string `json:"sender_email,omitempty"`
}

// Bool is a convenience for building pointer fields of MetadataUpdate.
func Bool(v bool) *bool { return &v }
