package api

import (
	"crmmail/inbox"
	"crmmail/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// MetadataHandler exposes the per-message flag and tag mutations.
type MetadataHandler struct {
	store *session.Store
	meta  *inbox.MetadataStore
}

// NewMetadataHandler creates a new metadata handler
func NewMetadataHandler(store *session.Store, meta *inbox.MetadataStore) *MetadataHandler {
	return &MetadataHandler{
		store: store,
		meta:  meta,
	}
}

// HandleToggleRead flips the read flag.
func (h *MetadataHandler) HandleToggleRead(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return utils.BadRequestError("Email ID required", nil)
	}

	if err := h.meta.ToggleRead(c.UserContext(), id); err != nil {
		return providerError("Failed to update email", err)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"metadata": h.meta.Get(id),
	})
}

// HandleToggleFavorite flips the favorite flag.
func (h *MetadataHandler) HandleToggleFavorite(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return utils.BadRequestError("Email ID required", nil)
	}

	if err := h.meta.ToggleFavorite(c.UserContext(), id); err != nil {
		return providerError("Failed to update email", err)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"metadata": h.meta.Get(id),
	})
}

// HandleAddTag appends a tag. Duplicate tags are accepted and ignored.
func (h *MetadataHandler) HandleAddTag(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return utils.BadRequestError("Email ID required", nil)
	}

	var req struct {
		Tag string `json:"tag"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestError("Invalid request", err)
	}
	if req.Tag == "" {
		return utils.BadRequestError("Tag required", nil)
	}

	if err := h.meta.AddTag(c.UserContext(), id, req.Tag); err != nil {
		return providerError("Failed to add tag", err)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"metadata": h.meta.Get(id),
	})
}

// HandleRemoveTag drops a tag.
func (h *MetadataHandler) HandleRemoveTag(c *fiber.Ctx) error {
	id := c.Params("id")
	tag := c.Params("tag")
	if id == "" || tag == "" {
		return utils.BadRequestError("Email ID and tag required", nil)
	}

	if err := h.meta.RemoveTag(c.UserContext(), id, tag); err != nil {
		return providerError("Failed to remove tag", err)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"metadata": h.meta.Get(id),
	})
}
