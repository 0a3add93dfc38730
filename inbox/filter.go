package inbox

import (
	"sort"
	"strings"

	"crmmail/models"
)

// FilterType narrows the list to one metadata class.
type FilterType string

const (
	FilterAll         FilterType = "all"
	FilterUnread      FilterType = "unread"
	FilterRead        FilterType = "read"
	FilterFavorite    FilterType = "favorites"
	FilterAttachments FilterType = "attachments"
)

// SortKey selects the comparison field.
type SortKey string

const (
	SortByDate    SortKey = "date"
	SortBySender  SortKey = "sender"
	SortBySubject SortKey = "subject"
)

// SortDir is the sort direction.
type SortDir string

const (
	SortDesc SortDir = "desc"
	SortAsc  SortDir = "asc"
)

// FilterState is the full set of list controls: free-text search, type
// filter, tag filter, and sort order. The zero value is not useful; start
// from DefaultFilterState.
type FilterState struct {
	Search  string     `json:"search"`
	Type    FilterType `json:"type"`
	Tags    []string   `json:"tags,omitempty"`
	SortKey SortKey    `json:"sort_key"`
	SortDir SortDir    `json:"sort_dir"`
}

// DefaultFilterState shows everything, newest first.
func DefaultFilterState() FilterState {
	return FilterState{
		Type:    FilterAll,
		SortKey: SortByDate,
		SortDir: SortDesc,
	}
}

// Apply runs the pipeline over the fetched list: search narrows first, then
// the type filter, then tags, then the sort. The input slice is never
// mutated; repeated application with the same state yields the same result.
func (f FilterState) Apply(emails []models.Email, meta map[string]*models.EmailMetadata) []models.Email {
	out := make([]models.Email, len(emails))
	copy(out, emails)

	out = f.applySearch(out, meta)
	out = f.applyType(out, meta)
	out = f.applyTags(out, meta)
	f.applySort(out, meta)

	return out
}

// applySearch keeps messages whose sender, subject, or stripped body text
// contains the query, case-insensitively. The sender match covers both the
// raw From header and the cached CRM contact name. The body match runs over
// the full stripped text, not the truncated list preview.
func (f FilterState) applySearch(emails []models.Email, meta map[string]*models.EmailMetadata) []models.Email {
	q := strings.ToLower(strings.TrimSpace(f.Search))
	if q == "" {
		return emails
	}

	matched := emails[:0]
	for _, e := range emails {
		body := sourceText(e)
		if body == "" {
			body = e.Preview
		}
		haystack := strings.ToLower(e.From + " " + displayName(e, meta[e.ID]) + " " + e.Subject + " " + body)
		if strings.Contains(haystack, q) {
			matched = append(matched, e)
		}
	}
	return matched
}

func (f FilterState) applyType(emails []models.Email, meta map[string]*models.EmailMetadata) []models.Email {
	switch f.Type {
	case FilterUnread, FilterRead, FilterFavorite, FilterAttachments:
	default:
		// "all", empty, and unrecognized values filter nothing; an unknown
		// type must never blank the list.
		return emails
	}

	matched := emails[:0]
	for _, e := range emails {
		m := meta[e.ID]
		switch f.Type {
		case FilterUnread:
			// No metadata means never opened.
			if m == nil || !m.IsRead {
				matched = append(matched, e)
			}
		case FilterRead:
			if m != nil && m.IsRead {
				matched = append(matched, e)
			}
		case FilterFavorite:
			if m != nil && m.IsFavorite {
				matched = append(matched, e)
			}
		case FilterAttachments:
			if len(e.Attachments) > 0 || e.HasAttachments {
				matched = append(matched, e)
			}
		}
	}
	return matched
}

// applyTags keeps messages carrying any of the selected tags. Intersection
// with the selected set is enough; a message never needs all of them.
func (f FilterState) applyTags(emails []models.Email, meta map[string]*models.EmailMetadata) []models.Email {
	if len(f.Tags) == 0 {
		return emails
	}

	matched := emails[:0]
	for _, e := range emails {
		m := meta[e.ID]
		for _, tag := range f.Tags {
			if m.HasTag(tag) {
				matched = append(matched, e)
				break
			}
		}
	}
	return matched
}

// applySort orders in place. The sort is stable so equal keys keep the
// provider's ordering.
func (f FilterState) applySort(emails []models.Email, meta map[string]*models.EmailMetadata) {
	key := f.SortKey
	if key == "" {
		key = SortByDate
	}
	asc := f.SortDir == SortAsc

	sort.SliceStable(emails, func(i, j int) bool {
		c := compareEmails(key, emails[i], emails[j], meta)
		if asc {
			return c < 0
		}
		return c > 0
	})
}

// compareEmails is a three-way comparison on the selected key.
func compareEmails(key SortKey, a, b models.Email, meta map[string]*models.EmailMetadata) int {
	switch key {
	case SortBySender:
		return strings.Compare(
			strings.ToLower(displayName(a, meta[a.ID])),
			strings.ToLower(displayName(b, meta[b.ID])),
		)
	case SortBySubject:
		return strings.Compare(strings.ToLower(a.Subject), strings.ToLower(b.Subject))
	default:
		switch {
		case a.CreatedAt.Before(b.CreatedAt):
			return -1
		case a.CreatedAt.After(b.CreatedAt):
			return 1
		}
		return 0
	}
}

// displayName is the name shown for a sender: the cached CRM contact name
// when the message matched a contact, else the From header's display name.
func displayName(e models.Email, m *models.EmailMetadata) string {
	if m != nil && m.CachedSenderName != "" {
		return m.CachedSenderName
	}
	return e.FromName()
}
