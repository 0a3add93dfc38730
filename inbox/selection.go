package inbox

import (
	"context"
	"sort"

	"crmmail/models"
	"crmmail/utils"
)

// Selection is the bulk-action checkbox state. Membership is by message id;
// ids survive refetches so a selection made before a refresh still applies
// after it.
type Selection struct {
	ids     map[string]struct{}
	working bool
}

// NewSelection returns an empty selection.
func NewSelection() *Selection {
	return &Selection{ids: make(map[string]struct{})}
}

// Toggle flips one message in or out of the selection.
func (s *Selection) Toggle(id string) {
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
		return
	}
	s.ids[id] = struct{}{}
}

// IsSelected reports membership.
func (s *Selection) IsSelected(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// SelectAll replaces the selection with every visible message. It operates
// on the filtered list, not the full fetch, so hidden messages are never
// swept into a bulk action.
func (s *Selection) SelectAll(visible []models.Email) {
	s.ids = make(map[string]struct{}, len(visible))
	for _, e := range visible {
		s.ids[e.ID] = struct{}{}
	}
}

// DeselectAll empties the selection.
func (s *Selection) DeselectAll() {
	s.ids = make(map[string]struct{})
}

// Remove drops one id without toggling, for single-item actions that
// consume a message out from under the selection.
func (s *Selection) Remove(id string) {
	delete(s.ids, id)
}

// IDs returns the selected ids in stable order.
func (s *Selection) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Count returns the selection size.
func (s *Selection) Count() int { return len(s.ids) }

// Working reports whether a bulk action is in flight.
func (s *Selection) Working() bool { return s.working }

// ExecuteBulk runs an action over the selected ids. Concurrent bulk actions
// are gated; the selection is cleared when the action returns, whether or
// not it succeeded, so a failed bulk never leaves phantom checkmarks over a
// changed list.
func (s *Selection) ExecuteBulk(ctx context.Context, log *utils.Logger, action func(ctx context.Context, ids []string) error) error {
	if s.working {
		return nil
	}
	if len(s.ids) == 0 {
		return nil
	}

	s.working = true
	ids := s.IDs()
	defer func() {
		s.working = false
		s.DeselectAll()
	}()

	if err := action(ctx, ids); err != nil {
		log.Error("Bulk action failed for %d messages: %v", len(ids), err)
		return err
	}

	log.Info("Bulk action applied to %d messages", len(ids))
	return nil
}
