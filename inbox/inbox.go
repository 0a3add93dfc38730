package inbox

import (
	"context"
	"fmt"
	"sync"
	"time"

	"crmmail/models"
	"crmmail/utils"
)

// MailAPI is the slice of the provider client the inbox needs on top of
// MetadataAPI.
type MailAPI interface {
	MetadataAPI
	ListMessages(ctx context.Context, folder, domain string, limit int) ([]models.Email, error)
	GetMessage(ctx context.Context, id, folder string) (*models.Email, error)
}

// Options bounds fetches and caching for an Inbox.
type Options struct {
	FetchLimit int
	CacheTTL   time.Duration
}

// Inbox is the aggregate behind one mailbox view: the fetched list, the
// metadata store, the folder navigator, the filter state, and the bulk
// selection. Handler methods drive it; it owns no HTTP concerns.
//
// There is no request cancellation across folder switches: a refresh that
// loses the race simply overwrites with the latest completed fetch. The
// loading gate keeps concurrent refreshes from interleaving.
type Inbox struct {
	api   MailAPI
	meta  *MetadataStore
	nav   *Navigator
	sel   *Selection
	cache *utils.MemoryCache
	log   *utils.Logger
	opts  Options

	mu      sync.Mutex
	emails  []models.Email
	filter  FilterState
	loading bool
	lastErr string
}

// New assembles an inbox over the provider client.
func New(api MailAPI, meta *MetadataStore, nav *Navigator, cache *utils.MemoryCache, opts Options, log *utils.Logger) *Inbox {
	return &Inbox{
		api:    api,
		meta:   meta,
		nav:    nav,
		sel:    NewSelection(),
		cache:  cache,
		log:    log,
		opts:   opts,
		filter: DefaultFilterState(),
	}
}

// Metadata exposes the store for handlers that mutate flags directly.
func (in *Inbox) Metadata() *MetadataStore { return in.meta }

// Navigator exposes the folder state.
func (in *Inbox) Navigator() *Navigator { return in.nav }

// Selection exposes the bulk-selection state.
func (in *Inbox) Selection() *Selection { return in.sel }

// Loading reports whether a refresh is in flight.
func (in *Inbox) Loading() bool {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.loading
}

// LastError returns the user-facing text of the last failed refresh, empty
// after a success.
func (in *Inbox) LastError() string {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.lastErr
}

// Filter returns the current list controls.
func (in *Inbox) Filter() FilterState {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.filter
}

// SetFilter replaces the list controls. The pipeline is pure, so no refetch
// is needed; the next Visible call reflects the new state.
func (in *Inbox) SetFilter(f FilterState) {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.filter = f
}

func (in *Inbox) cacheKey() string {
	return fmt.Sprintf("%s:%s", in.nav.Folder(), in.nav.Subfolder())
}

// Refresh fetches the active folder's listing, serving from the memory
// cache when fresh. Metadata for the fetched ids is pulled best-effort: a
// metadata failure degrades the view to provider data but never fails the
// refresh. force bypasses the cache.
func (in *Inbox) Refresh(ctx context.Context, force bool) error {
	in.mu.Lock()
	if in.loading {
		in.mu.Unlock()
		return nil
	}
	in.loading = true
	in.mu.Unlock()

	defer func() {
		in.mu.Lock()
		in.loading = false
		in.mu.Unlock()
	}()

	key := in.cacheKey()
	if !force {
		if cached, ok := in.cache.Get(key); ok {
			if emails, ok := cached.([]models.Email); ok {
				in.setEmails(emails, "")
				return nil
			}
		}
	}

	emails, err := in.api.ListMessages(ctx, string(in.nav.Folder()), in.nav.ActiveDomain(), in.opts.FetchLimit)
	if err != nil {
		in.log.Error("Folder fetch failed for %s: %v", key, err)
		in.setError("Failed to load emails")
		return err
	}

	for i := range emails {
		if emails[i].Preview == "" {
			emails[i].Preview = utils.Preview(sourceText(emails[i]))
		}
	}

	ids := make([]string, len(emails))
	for i, e := range emails {
		ids[i] = e.ID
	}
	if err := in.meta.Fetch(ctx, ids); err != nil {
		in.log.Warn("Metadata fetch failed, rendering provider data only: %v", err)
	}

	in.cache.Set(key, emails, in.opts.CacheTTL)
	in.setEmails(emails, "")
	return nil
}

func (in *Inbox) setEmails(emails []models.Email, errText string) {
	in.mu.Lock()
	in.emails = emails
	in.lastErr = errText
	in.mu.Unlock()
}

func (in *Inbox) setError(text string) {
	in.mu.Lock()
	in.lastErr = text
	in.mu.Unlock()
}

// Emails returns the raw fetched list.
func (in *Inbox) Emails() []models.Email {
	in.mu.Lock()
	defer in.mu.Unlock()
	out := make([]models.Email, len(in.emails))
	copy(out, in.emails)
	return out
}

// Visible runs the filter pipeline over the fetched list.
func (in *Inbox) Visible() []models.Email {
	in.mu.Lock()
	emails := make([]models.Email, len(in.emails))
	copy(emails, in.emails)
	filter := in.filter
	in.mu.Unlock()

	return filter.Apply(emails, in.meta.Snapshot())
}

// ChangeFolder switches folders and refetches. The selection is cleared:
// checked messages from one folder must not leak into actions on another.
func (in *Inbox) ChangeFolder(ctx context.Context, folder Folder) error {
	in.nav.ChangeFolder(folder)
	in.sel.DeselectAll()
	return in.Refresh(ctx, true)
}

// ChangeSubfolder selects a sent-domain view. On the sent folder it
// refetches; on any other folder the choice is recorded but has no visible
// effect until the user returns to sent.
func (in *Inbox) ChangeSubfolder(ctx context.Context, id string) error {
	in.nav.ChangeSubfolder(id)
	if in.nav.Folder() != FolderSent {
		return nil
	}
	in.sel.DeselectAll()
	return in.Refresh(ctx, true)
}

// Open fetches the full message and marks it read. The read mark is
// best-effort: a metadata failure still returns the message.
func (in *Inbox) Open(ctx context.Context, id string) (*models.Email, error) {
	email, err := in.api.GetMessage(ctx, id, string(in.nav.Folder()))
	if err != nil {
		return nil, err
	}

	if err := in.meta.MarkRead(ctx, id, email.FromAddress()); err != nil {
		in.log.Warn("Mark-read failed for %s: %v", id, err)
	}
	return email, nil
}

// Archive toggles a single message's archived flag and invalidates the
// folder cache so the next refresh reflects the move. The id is also
// dropped from the bulk selection.
func (in *Inbox) Archive(ctx context.Context, id string) error {
	if err := in.meta.ToggleArchive(ctx, id); err != nil {
		return err
	}
	in.sel.Remove(id)
	in.cache.Delete(in.cacheKey())
	return nil
}

// Delete marks a single message deleted, moving it to trash. The id is
// dropped from the bulk selection.
func (in *Inbox) Delete(ctx context.Context, id string) error {
	if _, err := in.meta.Update(ctx, id, models.MetadataUpdate{IsDeleted: models.Bool(true)}); err != nil {
		return err
	}
	in.sel.Remove(id)
	in.cache.Delete(in.cacheKey())
	return nil
}

// BulkArchive archives every selected message.
func (in *Inbox) BulkArchive(ctx context.Context) error {
	return in.sel.ExecuteBulk(ctx, in.log, func(ctx context.Context, ids []string) error {
		_, err := in.meta.BulkUpdate(ctx, ids, models.MetadataUpdate{IsArchived: models.Bool(true)})
		if err == nil {
			in.cache.Delete(in.cacheKey())
		}
		return err
	})
}

// BulkDelete moves every selected message to trash.
func (in *Inbox) BulkDelete(ctx context.Context) error {
	return in.sel.ExecuteBulk(ctx, in.log, func(ctx context.Context, ids []string) error {
		_, err := in.meta.BulkUpdate(ctx, ids, models.MetadataUpdate{IsDeleted: models.Bool(true)})
		if err == nil {
			in.cache.Delete(in.cacheKey())
		}
		return err
	})
}

// BulkMarkRead marks every selected message read.
func (in *Inbox) BulkMarkRead(ctx context.Context) error {
	return in.sel.ExecuteBulk(ctx, in.log, func(ctx context.Context, ids []string) error {
		_, err := in.meta.BulkUpdate(ctx, ids, models.MetadataUpdate{IsRead: models.Bool(true)})
		return err
	})
}

// sourceText picks the body used for preview derivation.
func sourceText(e models.Email) string {
	if e.HTML != "" {
		return utils.HTMLToText(e.HTML)
	}
	return e.Text
}
