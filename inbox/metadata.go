package inbox

import (
	"context"
	"sync"

	"crmmail/models"
	"crmmail/storage"
	"crmmail/utils"
)

// MetadataAPI is the slice of the provider client the store needs.
type MetadataAPI interface {
	FetchMetadata(ctx context.Context, ids []string) (map[string]*models.EmailMetadata, error)
	UpdateMetadata(ctx context.Context, id string, update models.MetadataUpdate) (*models.EmailMetadata, error)
	BulkUpdateMetadata(ctx context.Context, ids []string, update models.MetadataUpdate) (int, error)
}

// MetadataStore keeps per-message state in memory, mirrored to BoltDB so a
// restart does not lose the cache. The in-memory map is additive: fetches
// merge new entries in but never evict ones fetched earlier, so state for
// messages outside the current folder stays available.
//
// All writes are confirmed writes: a mutation goes to the server first and
// the server's merged record replaces the local entry only after the call
// succeeds. A failed call leaves local state untouched.
type MetadataStore struct {
	api MetadataAPI
	db  *storage.MetadataStorage
	log *utils.Logger

	mu      sync.RWMutex
	entries map[string]*models.EmailMetadata
}

// NewMetadataStore builds a store warmed from the persistent cache. A nil
// db disables persistence.
func NewMetadataStore(api MetadataAPI, db *storage.MetadataStorage, log *utils.Logger) *MetadataStore {
	s := &MetadataStore{
		api:     api,
		db:      db,
		log:     log,
		entries: make(map[string]*models.EmailMetadata),
	}

	if db != nil {
		persisted, err := db.All()
		if err != nil {
			log.Warn("Failed to warm metadata cache: %v", err)
		} else {
			s.entries = persisted
			if s.entries == nil {
				s.entries = make(map[string]*models.EmailMetadata)
			}
			log.Debug("Metadata cache warmed with %d entries", len(persisted))
		}
	}

	return s
}

// Get returns a copy of the message's metadata. Messages the store has
// never seen get a default record: unread, unflagged, untagged.
func (s *MetadataStore) Get(emailID string) models.EmailMetadata {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if meta, ok := s.entries[emailID]; ok {
		return *meta
	}
	return models.EmailMetadata{EmailID: emailID}
}

// Snapshot returns a copy of the full cache keyed by message id, for the
// filter pipeline to consume without holding the lock.
func (s *MetadataStore) Snapshot() map[string]*models.EmailMetadata {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*models.EmailMetadata, len(s.entries))
	for id, meta := range s.entries {
		copied := *meta
		out[id] = &copied
	}
	return out
}

// IsUnread reports whether the message should render as unread. Missing
// metadata counts as unread.
func (s *MetadataStore) IsUnread(emailID string) bool {
	return !s.Get(emailID).IsRead
}

// Fetch pulls metadata for the given ids from the server and merges the
// result into the cache. Ids absent from the response are left alone rather
// than reset, since absence only means the server has no record yet.
func (s *MetadataStore) Fetch(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	fetched, err := s.api.FetchMetadata(ctx, ids)
	if err != nil {
		return err
	}

	s.mu.Lock()
	for id, meta := range fetched {
		if meta == nil {
			continue
		}
		s.entries[id] = meta
	}
	s.mu.Unlock()

	s.persist(fetched)
	return nil
}

// Update applies a partial update through the server and stores the
// authoritative merged record it returns. Local state changes only on
// success.
func (s *MetadataStore) Update(ctx context.Context, emailID string, update models.MetadataUpdate) (models.EmailMetadata, error) {
	merged, err := s.api.UpdateMetadata(ctx, emailID, update)
	if err != nil {
		s.log.Warn("Metadata update failed for %s: %v", emailID, err)
		return s.Get(emailID), err
	}

	s.mu.Lock()
	s.entries[emailID] = merged
	s.mu.Unlock()

	s.persist(map[string]*models.EmailMetadata{emailID: merged})
	return *merged, nil
}

// MarkRead marks a message read, recording the sender so the server can
// resolve the matching contact. Already-read messages are skipped without a
// network call.
func (s *MetadataStore) MarkRead(ctx context.Context, emailID, senderEmail string) error {
	if s.Get(emailID).IsRead {
		return nil
	}
	_, err := s.Update(ctx, emailID, models.MetadataUpdate{
		IsRead:      models.Bool(true),
		SenderEmail: senderEmail,
	})
	return err
}

// ToggleRead flips the read flag.
func (s *MetadataStore) ToggleRead(ctx context.Context, emailID string) error {
	current := s.Get(emailID)
	_, err := s.Update(ctx, emailID, models.MetadataUpdate{
		IsRead: models.Bool(!current.IsRead),
	})
	return err
}

// ToggleFavorite flips the favorite flag.
func (s *MetadataStore) ToggleFavorite(ctx context.Context, emailID string) error {
	current := s.Get(emailID)
	_, err := s.Update(ctx, emailID, models.MetadataUpdate{
		IsFavorite: models.Bool(!current.IsFavorite),
	})
	return err
}

// ToggleArchive flips the archived flag.
func (s *MetadataStore) ToggleArchive(ctx context.Context, emailID string) error {
	current := s.Get(emailID)
	_, err := s.Update(ctx, emailID, models.MetadataUpdate{
		IsArchived: models.Bool(!current.IsArchived),
	})
	return err
}

// AddTag appends a tag if the message does not already carry it. Adding an
// existing tag is a no-op with no network call.
func (s *MetadataStore) AddTag(ctx context.Context, emailID, tag string) error {
	current := s.Get(emailID)
	if current.HasTag(tag) {
		return nil
	}
	_, err := s.Update(ctx, emailID, models.MetadataUpdate{
		Tags: append(append([]string{}, current.Tags...), tag),
	})
	return err
}

// RemoveTag drops a tag. Removing an absent tag is a no-op.
func (s *MetadataStore) RemoveTag(ctx context.Context, emailID, tag string) error {
	current := s.Get(emailID)
	if !current.HasTag(tag) {
		return nil
	}

	tags := make([]string, 0, len(current.Tags))
	for _, t := range current.Tags {
		if t != tag {
			tags = append(tags, t)
		}
	}
	_, err := s.Update(ctx, emailID, models.MetadataUpdate{Tags: tags})
	return err
}

// BulkUpdate applies one shared update to many messages, then refetches
// their records so the cache reflects the server's merge for each.
func (s *MetadataStore) BulkUpdate(ctx context.Context, ids []string, update models.MetadataUpdate) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	updated, err := s.api.BulkUpdateMetadata(ctx, ids, update)
	if err != nil {
		return 0, err
	}

	if err := s.Fetch(ctx, ids); err != nil {
		// The writes landed; a stale cache self-heals on the next fetch.
		s.log.Warn("Refetch after bulk update failed: %v", err)
	}
	return updated, nil
}

func (s *MetadataStore) persist(entries map[string]*models.EmailMetadata) {
	if s.db == nil {
		return
	}
	for _, meta := range entries {
		if meta == nil {
			continue
		}
		if err := s.db.Put(meta); err != nil {
			s.log.Warn("Failed to persist metadata for %s: %v", meta.EmailID, err)
		}
	}
}
