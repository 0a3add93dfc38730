package api

import (
	"context"

	"crmmail/models"
	"crmmail/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// ContactSearcher is the slice of the provider client autocomplete needs.
type ContactSearcher interface {
	SearchContacts(ctx context.Context, q string, limit int) ([]models.Contact, error)
}

// ContactsHandler proxies recipient autocomplete to the CRM's address book.
type ContactsHandler struct {
	store *session.Store
	api   ContactSearcher
}

// NewContactsHandler creates a new contacts handler
func NewContactsHandler(store *session.Store, api ContactSearcher) *ContactsHandler {
	return &ContactsHandler{
		store: store,
		api:   api,
	}
}

// HandleSearch returns autocomplete candidates for the recipient fields.
// Queries shorter than two characters return an empty list without hitting
// the CRM.
func (h *ContactsHandler) HandleSearch(c *fiber.Ctx) error {
	q := c.Query("q")
	if len(q) < 2 {
		return c.JSON(fiber.Map{
			"success":  true,
			"contacts": []models.Contact{},
		})
	}

	limit := c.QueryInt("limit", 10)
	contacts, err := h.api.SearchContacts(c.UserContext(), q, limit)
	if err != nil {
		utils.Log.Warn("Contact search failed for %q: %v", q, err)
		return providerError("Contact search failed", err)
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"contacts": contacts,
	})
}
