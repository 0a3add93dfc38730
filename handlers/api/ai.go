package api

import (
	"context"
	"strings"

	"crmmail/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// DraftGenerator is the slice of the provider client AI drafting needs.
type DraftGenerator interface {
	GenerateDraft(ctx context.Context, prompt string) (string, error)
}

// AIHandler proxies compose-panel draft generation to the provider's AI
// endpoint.
type AIHandler struct {
	store *session.Store
	api   DraftGenerator
}

// NewAIHandler creates a new AI handler
func NewAIHandler(store *session.Store, api DraftGenerator) *AIHandler {
	return &AIHandler{
		store: store,
		api:   api,
	}
}

// HandleGenerate turns a free-text prompt into HTML body content. The
// result is sanitized before it reaches the editor.
func (h *AIHandler) HandleGenerate(c *fiber.Ctx) error {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestError("Invalid request", err)
	}

	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return utils.BadRequestError("Prompt required", nil)
	}

	content, err := h.api.GenerateDraft(c.UserContext(), prompt)
	if err != nil {
		return providerError("Draft generation failed", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"content": utils.SanitizeHTML(content),
	})
}
