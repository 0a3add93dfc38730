package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"crmmail/models"

	"github.com/google/uuid"
)

// DraftStorage handles draft email persistence
type DraftStorage struct {
	baseDir string
}

// NewDraftStorage creates a new draft storage instance
func NewDraftStorage(baseDir string) *DraftStorage {
	return &DraftStorage{
		baseDir: baseDir,
	}
}

func (ds *DraftStorage) getDraftDir(userID string) string {
	return filepath.Join(ds.baseDir, "drafts", userID)
}

// SaveDraft saves or updates a draft
func (ds *DraftStorage) SaveDraft(userID, draftID string, draft *models.Draft) error {
	dir := ds.getDraftDir(userID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create draft directory: %w", err)
	}

	if draftID == "" {
		draftID = uuid.New().String()
		draft.CreatedAt = time.Now()
	}
	draft.ID = draftID
	draft.UserID = userID
	draft.UpdatedAt = time.Now()

	data, err := json.MarshalIndent(draft, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}

	filePath := filepath.Join(dir, draftID+".json")
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write draft file: %w", err)
	}

	return nil
}

// GetDraft retrieves a specific draft
func (ds *DraftStorage) GetDraft(userID, draftID string) (*models.Draft, error) {
	filePath := filepath.Join(ds.getDraftDir(userID), draftID+".json")

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("draft not found")
		}
		return nil, fmt.Errorf("failed to read draft: %w", err)
	}

	var draft models.Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft: %w", err)
	}

	return &draft, nil
}

// GetDrafts retrieves all drafts for a user, newest first
func (ds *DraftStorage) GetDrafts(userID string) ([]*models.Draft, error) {
	dir := ds.getDraftDir(userID)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create draft directory: %w", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read drafts directory: %w", err)
	}

	var drafts []*models.Draft
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		draftID := entry.Name()[:len(entry.Name())-5]
		draft, err := ds.GetDraft(userID, draftID)
		if err != nil {
			continue // Skip invalid drafts
		}

		drafts = append(drafts, draft)
	}

	sort.Slice(drafts, func(i, j int) bool {
		return drafts[i].UpdatedAt.After(drafts[j].UpdatedAt)
	})

	return drafts, nil
}

// DeleteDraft deletes a draft
func (ds *DraftStorage) DeleteDraft(userID, draftID string) error {
	filePath := filepath.Join(ds.getDraftDir(userID), draftID+".json")

	if err := os.Remove(filePath); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("draft not found")
		}
		return fmt.Errorf("failed to delete draft: %w", err)
	}

	return nil
}
