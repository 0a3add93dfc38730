package storage

import (
	"encoding/json"
	"fmt"

	"crmmail/models"

	"go.etcd.io/bbolt"
)

// MetadataStorage persists the metadata cache across restarts using
// BoltDB. Writes are additive: entries are upserted, never evicted.
type MetadataStorage struct {
	db *bbolt.DB
}

// NewMetadataStorage wraps an open database.
func NewMetadataStorage(db *bbolt.DB) *MetadataStorage {
	return &MetadataStorage{db: db}
}

// Put upserts one metadata record keyed by message id.
func (s *MetadataStorage) Put(meta *models.EmailMetadata) error {
	if meta.EmailID == "" {
		return fmt.Errorf("metadata missing email id")
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(metadataBucket))

		data, err := json.Marshal(meta)
		if err != nil {
			return err
		}

		return b.Put([]byte(meta.EmailID), data)
	})
}

// Get retrieves one record, or nil when the message has never been seen.
func (s *MetadataStorage) Get(emailID string) (*models.EmailMetadata, error) {
	var meta *models.EmailMetadata

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(metadataBucket))
		data := b.Get([]byte(emailID))
		if data == nil {
			return nil
		}

		meta = &models.EmailMetadata{}
		return json.Unmarshal(data, meta)
	})
	if err != nil {
		return nil, err
	}

	return meta, nil
}

// All loads every persisted record, keyed by message id.
func (s *MetadataStorage) All() (map[string]*models.EmailMetadata, error) {
	entries := make(map[string]*models.EmailMetadata)

	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket([]byte(metadataBucket))

		return b.ForEach(func(k, v []byte) error {
			var meta models.EmailMetadata
			if err := json.Unmarshal(v, &meta); err != nil {
				return err
			}
			entries[string(k)] = &meta
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}
