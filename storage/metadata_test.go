package storage

import (
	"testing"

	"crmmail/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStorage(t *testing.T) *MetadataStorage {
	t.Helper()
	db, err := InitDB(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewMetadataStorage(db)
}

func TestMetadataPutGet(t *testing.T) {
	s := newTestStorage(t)

	meta := &models.EmailMetadata{EmailID: "1", IsRead: true, Tags: []string{"buyer"}}
	require.NoError(t, s.Put(meta))

	got, err := s.Get("1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.IsRead)
	assert.Equal(t, []string{"buyer"}, got.Tags)
}

func TestMetadataGetMissingReturnsNil(t *testing.T) {
	s := newTestStorage(t)

	got, err := s.Get("never")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMetadataPutUpserts(t *testing.T) {
	s := newTestStorage(t)

	require.NoError(t, s.Put(&models.EmailMetadata{EmailID: "1", IsRead: false}))
	require.NoError(t, s.Put(&models.EmailMetadata{EmailID: "1", IsRead: true}))

	got, err := s.Get("1")
	require.NoError(t, err)
	assert.True(t, got.IsRead)
}

func TestMetadataPutRejectsEmptyID(t *testing.T) {
	s := newTestStorage(t)
	assert.Error(t, s.Put(&models.EmailMetadata{}))
}

func TestMetadataAll(t *testing.T) {
	s := newTestStorage(t)

	require.NoError(t, s.Put(&models.EmailMetadata{EmailID: "1"}))
	require.NoError(t, s.Put(&models.EmailMetadata{EmailID: "2", IsFavorite: true}))

	all, err := s.All()
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.True(t, all["2"].IsFavorite)
}
