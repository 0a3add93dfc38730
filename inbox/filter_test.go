package inbox

import (
	"strings"
	"testing"
	"time"

	"crmmail/models"
	"crmmail/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listFixture() ([]models.Email, map[string]*models.EmailMetadata) {
	base := time.Date(2026, time.April, 1, 12, 0, 0, 0, time.UTC)
	emails := []models.Email{
		{ID: "1", From: "Alice <alice@example.com>", Subject: "Open house", Preview: "Saturday at noon", CreatedAt: base.Add(3 * time.Hour)},
		{ID: "2", From: "bob@example.com", Subject: "Inspection report", Preview: "attached findings", CreatedAt: base.Add(1 * time.Hour)},
		{ID: "3", From: "Carol <carol@example.com>", Subject: "Re: Open house", Preview: "can we reschedule", CreatedAt: base.Add(2 * time.Hour)},
	}
	meta := map[string]*models.EmailMetadata{
		"1": {EmailID: "1", IsRead: true, IsFavorite: true, Tags: []string{"buyer"}},
		"3": {EmailID: "3", IsRead: false, Tags: []string{"buyer", "urgent"}},
	}
	return emails, meta
}

func ids(emails []models.Email) []string {
	out := make([]string, len(emails))
	for i, e := range emails {
		out[i] = e.ID
	}
	return out
}

func TestApplyDefaultSortsNewestFirst(t *testing.T) {
	emails, meta := listFixture()

	got := DefaultFilterState().Apply(emails, meta)

	assert.Equal(t, []string{"1", "3", "2"}, ids(got))
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	emails, meta := listFixture()

	DefaultFilterState().Apply(emails, meta)

	assert.Equal(t, []string{"1", "2", "3"}, ids(emails), "input order must survive")
}

func TestApplyIsIdempotent(t *testing.T) {
	emails, meta := listFixture()
	f := FilterState{Search: "open", Type: FilterAll, SortKey: SortByDate, SortDir: SortDesc}

	once := f.Apply(emails, meta)
	twice := f.Apply(once, meta)

	assert.Equal(t, ids(once), ids(twice))
}

func TestApplySearchMatchesSenderSubjectPreview(t *testing.T) {
	emails, meta := listFixture()

	bySubject := FilterState{Search: "inspection", SortKey: SortByDate}.Apply(emails, meta)
	assert.Equal(t, []string{"2"}, ids(bySubject))

	bySender := FilterState{Search: "ALICE", SortKey: SortByDate}.Apply(emails, meta)
	assert.Equal(t, []string{"1"}, ids(bySender))

	byPreview := FilterState{Search: "reschedule", SortKey: SortByDate}.Apply(emails, meta)
	assert.Equal(t, []string{"3"}, ids(byPreview))
}

func TestApplySearchMatchesCachedContactName(t *testing.T) {
	emails, meta := listFixture()
	meta["2"] = &models.EmailMetadata{EmailID: "2", CachedSenderName: "Bob Buyer"}

	got := FilterState{Search: "bob buyer", SortKey: SortByDate}.Apply(emails, meta)
	assert.Equal(t, []string{"2"}, ids(got))
}

func TestApplyTypeFilters(t *testing.T) {
	emails, meta := listFixture()

	unread := FilterState{Type: FilterUnread, SortKey: SortByDate, SortDir: SortDesc}.Apply(emails, meta)
	// Message 2 has no metadata at all, which counts as unread.
	assert.Equal(t, []string{"3", "2"}, ids(unread))

	read := FilterState{Type: FilterRead, SortKey: SortByDate}.Apply(emails, meta)
	assert.Equal(t, []string{"1"}, ids(read))

	favs := FilterState{Type: FilterFavorite, SortKey: SortByDate}.Apply(emails, meta)
	assert.Equal(t, []string{"1"}, ids(favs))
}

func TestApplyTypeAttachments(t *testing.T) {
	emails, meta := listFixture()
	// Both the inline list and the provider's summary flag count.
	emails[1].HasAttachments = true
	emails[2].Attachments = []models.Attachment{{Filename: "report.pdf", Size: 1024}}

	got := FilterState{Type: FilterAttachments, SortKey: SortByDate, SortDir: SortDesc}.Apply(emails, meta)
	assert.Equal(t, []string{"3", "2"}, ids(got))
}

func TestApplyUnknownTypeFiltersNothing(t *testing.T) {
	emails, meta := listFixture()

	got := FilterState{Type: FilterType("starred"), SortKey: SortByDate, SortDir: SortDesc}.Apply(emails, meta)
	assert.Equal(t, []string{"1", "3", "2"}, ids(got), "unrecognized type must not blank the list")
}

func TestApplyTagsMatchAnySelected(t *testing.T) {
	emails, meta := listFixture()

	buyers := FilterState{Tags: []string{"buyer"}, SortKey: SortByDate, SortDir: SortDesc}.Apply(emails, meta)
	assert.Equal(t, []string{"1", "3"}, ids(buyers))

	// A message carrying only one of the selected tags still matches.
	anyOf := FilterState{Tags: []string{"buyer", "urgent"}, SortKey: SortByDate, SortDir: SortDesc}.Apply(emails, meta)
	assert.Equal(t, []string{"1", "3"}, ids(anyOf))

	urgentOrLead := FilterState{Tags: []string{"urgent", "lead"}, SortKey: SortByDate}.Apply(emails, meta)
	assert.Equal(t, []string{"3"}, ids(urgentOrLead))
}

func TestApplySearchCoversFullBodyText(t *testing.T) {
	long := strings.Repeat("filler sentence to push the match far down the message. ", 8) +
		"escrow closes on Friday"
	email := models.Email{
		ID:        "long",
		From:      "title@example.com",
		Subject:   "Closing",
		HTML:      "<p>" + long + "</p>",
		Preview:   utils.Preview(long),
		CreatedAt: time.Now(),
	}
	require.False(t, strings.Contains(email.Preview, "escrow"), "fixture must put the match past the preview cut")

	got := FilterState{Search: "escrow", SortKey: SortByDate}.Apply([]models.Email{email}, nil)
	assert.Equal(t, []string{"long"}, ids(got))
}

func TestApplySortBySender(t *testing.T) {
	emails, meta := listFixture()

	asc := FilterState{SortKey: SortBySender, SortDir: SortAsc}.Apply(emails, meta)
	assert.Equal(t, []string{"1", "2", "3"}, ids(asc)) // Alice, bob, Carol

	desc := FilterState{SortKey: SortBySender, SortDir: SortDesc}.Apply(emails, meta)
	assert.Equal(t, []string{"3", "2", "1"}, ids(desc))
}

func TestApplySortBySenderUsesContactName(t *testing.T) {
	emails, meta := listFixture()
	// The cached contact name replaces the From header for ordering.
	meta["2"] = &models.EmailMetadata{EmailID: "2", CachedSenderName: "Zach"}

	asc := FilterState{SortKey: SortBySender, SortDir: SortAsc}.Apply(emails, meta)
	assert.Equal(t, []string{"1", "3", "2"}, ids(asc))
}

func TestApplySortStableOnEqualKeys(t *testing.T) {
	base := time.Date(2026, time.April, 1, 12, 0, 0, 0, time.UTC)
	emails := []models.Email{
		{ID: "a", Subject: "same", CreatedAt: base},
		{ID: "b", Subject: "same", CreatedAt: base},
		{ID: "c", Subject: "same", CreatedAt: base},
	}

	got := FilterState{SortKey: SortBySubject, SortDir: SortAsc}.Apply(emails, nil)
	require.Equal(t, []string{"a", "b", "c"}, ids(got))

	got = FilterState{SortKey: SortByDate, SortDir: SortDesc}.Apply(emails, nil)
	assert.Equal(t, []string{"a", "b", "c"}, ids(got))
}

func TestApplyStagesCompose(t *testing.T) {
	emails, meta := listFixture()
	f := FilterState{
		Search:  "open house",
		Type:    FilterUnread,
		Tags:    []string{"buyer"},
		SortKey: SortByDate,
		SortDir: SortDesc,
	}

	got := f.Apply(emails, meta)
	assert.Equal(t, []string{"3"}, ids(got))
}
