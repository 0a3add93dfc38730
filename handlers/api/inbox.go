package api

import (
	"errors"

	"crmmail/inbox"
	"crmmail/mailapi"
	"crmmail/models"
	"crmmail/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// InboxHandler drives the mailbox view: listing, folders, filters, and the
// bulk selection.
type InboxHandler struct {
	store *session.Store
	inbox *inbox.Inbox
}

// NewInboxHandler creates a new inbox handler
func NewInboxHandler(store *session.Store, in *inbox.Inbox) *InboxHandler {
	return &InboxHandler{
		store: store,
		inbox: in,
	}
}

// emailListItem is one row of the list view: provider fields joined with
// the metadata the client renders badges from.
type emailListItem struct {
	models.Email
	Metadata models.EmailMetadata `json:"metadata"`
	Selected bool                 `json:"selected"`
}

// HandleList returns the visible (filtered, sorted) list for the active
// folder. ?refresh=true forces a provider fetch past the cache.
func (h *InboxHandler) HandleList(c *fiber.Ctx) error {
	force := c.Query("refresh") == "true"

	if err := h.inbox.Refresh(c.UserContext(), force); err != nil {
		return providerError("Failed to load emails", err)
	}

	return c.JSON(h.listPayload())
}

// HandleChangeFolder switches the active folder and refetches.
func (h *InboxHandler) HandleChangeFolder(c *fiber.Ctx) error {
	folder, ok := inbox.ValidFolder(c.Params("name"))
	if !ok {
		return utils.BadRequestError("Unknown folder", nil)
	}

	if err := h.inbox.ChangeFolder(c.UserContext(), folder); err != nil {
		return providerError("Failed to load emails", err)
	}

	return c.JSON(h.listPayload())
}

// HandleChangeSubfolder selects a sent-domain subfolder. Outside the sent
// folder the choice is stored and applies once the user returns to sent.
func (h *InboxHandler) HandleChangeSubfolder(c *fiber.Ctx) error {
	if err := h.inbox.ChangeSubfolder(c.UserContext(), c.Params("id")); err != nil {
		return providerError("Failed to load emails", err)
	}

	return c.JSON(h.listPayload())
}

// HandleSetFilter replaces the list controls. No refetch happens; the
// response is the current fetch run through the new pipeline.
func (h *InboxHandler) HandleSetFilter(c *fiber.Ctx) error {
	var req struct {
		Search  string   `json:"search"`
		Type    string   `json:"type"`
		Tags    []string `json:"tags"`
		SortKey string   `json:"sort_key"`
		SortDir string   `json:"sort_dir"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestError("Invalid request", err)
	}

	f := inbox.DefaultFilterState()
	f.Search = req.Search
	if req.Type != "" {
		f.Type = inbox.FilterType(req.Type)
	}
	f.Tags = req.Tags
	if req.SortKey != "" {
		f.SortKey = inbox.SortKey(req.SortKey)
	}
	if req.SortDir != "" {
		f.SortDir = inbox.SortDir(req.SortDir)
	}

	h.inbox.SetFilter(f)
	return c.JSON(h.listPayload())
}

// HandleOpen returns one message with full bodies and marks it read.
func (h *InboxHandler) HandleOpen(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return utils.BadRequestError("Email ID required", nil)
	}

	email, err := h.inbox.Open(c.UserContext(), id)
	if err != nil {
		return providerError("Failed to load email", err)
	}

	email.HTML = utils.SanitizeHTML(email.HTML)

	return c.JSON(fiber.Map{
		"success":  true,
		"email":    email,
		"metadata": h.inbox.Metadata().Get(id),
	})
}

// HandleArchive archives one message.
func (h *InboxHandler) HandleArchive(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return utils.BadRequestError("Email ID required", nil)
	}

	if err := h.inbox.Archive(c.UserContext(), id); err != nil {
		return providerError("Failed to archive email", err)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"metadata": h.inbox.Metadata().Get(id),
	})
}

// HandleDelete moves one message to trash.
func (h *InboxHandler) HandleDelete(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return utils.BadRequestError("Email ID required", nil)
	}

	if err := h.inbox.Delete(c.UserContext(), id); err != nil {
		return providerError("Failed to delete email", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}

// HandleToggleSelect flips one message in the bulk selection.
func (h *InboxHandler) HandleToggleSelect(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return utils.BadRequestError("Email ID required", nil)
	}

	h.inbox.Selection().Toggle(id)
	return c.JSON(fiber.Map{
		"success":  true,
		"selected": h.inbox.Selection().IsSelected(id),
		"count":    h.inbox.Selection().Count(),
	})
}

// HandleSelectAll selects every currently visible message.
func (h *InboxHandler) HandleSelectAll(c *fiber.Ctx) error {
	h.inbox.Selection().SelectAll(h.inbox.Visible())
	return c.JSON(fiber.Map{
		"success": true,
		"count":   h.inbox.Selection().Count(),
	})
}

// HandleDeselectAll empties the selection.
func (h *InboxHandler) HandleDeselectAll(c *fiber.Ctx) error {
	h.inbox.Selection().DeselectAll()
	return c.JSON(fiber.Map{
		"success": true,
		"count":   0,
	})
}

// HandleBulkArchive archives the selection.
func (h *InboxHandler) HandleBulkArchive(c *fiber.Ctx) error {
	if err := h.inbox.BulkArchive(c.UserContext()); err != nil {
		return providerError("Failed to archive emails", err)
	}
	return c.JSON(h.listPayload())
}

// HandleBulkDelete moves the selection to trash.
func (h *InboxHandler) HandleBulkDelete(c *fiber.Ctx) error {
	if err := h.inbox.BulkDelete(c.UserContext()); err != nil {
		return providerError("Failed to delete emails", err)
	}
	return c.JSON(h.listPayload())
}

// HandleBulkMarkRead marks the selection read.
func (h *InboxHandler) HandleBulkMarkRead(c *fiber.Ctx) error {
	if err := h.inbox.BulkMarkRead(c.UserContext()); err != nil {
		return providerError("Failed to mark emails read", err)
	}
	return c.JSON(h.listPayload())
}

func (h *InboxHandler) listPayload() fiber.Map {
	visible := h.inbox.Visible()
	sel := h.inbox.Selection()
	meta := h.inbox.Metadata()

	items := make([]emailListItem, len(visible))
	unread := 0
	for i, e := range visible {
		m := meta.Get(e.ID)
		if !m.IsRead {
			unread++
		}
		items[i] = emailListItem{
			Email:    e,
			Metadata: m,
			Selected: sel.IsSelected(e.ID),
		}
	}

	nav := h.inbox.Navigator()
	return fiber.Map{
		"success":        true,
		"emails":         items,
		"unread":         unread,
		"folder":         nav.Folder(),
		"subfolder":      nav.Subfolder(),
		"subfolders":     nav.Subfolders(),
		"selected_count": sel.Count(),
		"filter":         h.inbox.Filter(),
	}
}

// providerError maps a client error to the right HTTP class: the provider's
// failure becomes a 502, anything else a 500.
func providerError(message string, err error) error {
	var serverErr *mailapi.ServerError
	var transportErr *mailapi.TransportError
	if errors.As(err, &serverErr) || errors.As(err, &transportErr) {
		return utils.BadGatewayError(message, err)
	}
	return utils.InternalServerError(message, err)
}
