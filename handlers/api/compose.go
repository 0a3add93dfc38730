package api

import (
	"crmmail/compose"
	"crmmail/inbox"
	"crmmail/models"
	"crmmail/storage"
	"crmmail/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// draftOwner keys draft files. The dashboard is single-user behind the
// passcode gate, so the owner is fixed.
const draftOwner = "primary"

// ComposeHandler serves compose-panel prefills, canned templates, and
// saved drafts.
type ComposeHandler struct {
	store  *session.Store
	inbox  *inbox.Inbox
	drafts *storage.DraftStorage
	limits compose.Limits
}

// NewComposeHandler creates a new compose handler
func NewComposeHandler(store *session.Store, in *inbox.Inbox, drafts *storage.DraftStorage, limits compose.Limits) *ComposeHandler {
	return &ComposeHandler{
		store:  store,
		inbox:  in,
		drafts: drafts,
		limits: limits,
	}
}

// HandlePrefill builds the compose panel's initial state for a reply,
// reply-all, or forward of an existing message, or a blank draft with an
// optional preset recipient.
func (h *ComposeHandler) HandlePrefill(c *fiber.Ctx) error {
	mode := compose.Mode(c.Query("mode", string(compose.ModeNew)))
	switch mode {
	case compose.ModeNew, compose.ModeReply, compose.ModeReplyAll, compose.ModeForward:
	default:
		return utils.BadRequestError("Unknown compose mode", nil)
	}

	var source *models.Email
	if id := c.Query("id"); id != "" {
		email, err := h.inbox.Open(c.UserContext(), id)
		if err != nil {
			return providerError("Failed to load email", err)
		}
		source = email
	} else if mode != compose.ModeNew {
		return utils.BadRequestError("Email ID required for this mode", nil)
	}

	comp := compose.NewComposition(mode, source, c.Query("to"), h.limits)

	return c.JSON(fiber.Map{
		"success":     true,
		"composition": comp,
	})
}

// HandleTemplates lists the canned templates.
func (h *ComposeHandler) HandleTemplates(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success":   true,
		"templates": compose.BuiltinTemplates(),
	})
}

// HandleApplyTemplate applies a template to a submitted composition and
// returns the merged result: subject replaced only when the template sets
// one, body always replaced.
func (h *ComposeHandler) HandleApplyTemplate(c *fiber.Ctx) error {
	var req struct {
		Name    string `json:"name"`
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestError("Invalid request", err)
	}

	tpl, ok := compose.FindTemplate(req.Name)
	if !ok {
		return utils.NotFoundError("Template not found", nil)
	}

	comp := compose.NewComposition(compose.ModeNew, nil, "", h.limits)
	comp.SetSubject(req.Subject)
	comp.SetBody(req.Body)
	comp.ApplyTemplate(tpl)

	return c.JSON(fiber.Map{
		"success": true,
		"subject": comp.Subject,
		"body":    comp.Body,
	})
}

// HandleListDrafts lists saved drafts, newest first.
func (h *ComposeHandler) HandleListDrafts(c *fiber.Ctx) error {
	drafts, err := h.drafts.GetDrafts(draftOwner)
	if err != nil {
		return utils.InternalServerError("Failed to load drafts", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"drafts":  drafts,
	})
}

// HandleSaveDraft saves or updates a draft. A draft id in the body updates
// in place; without one a new draft is created.
func (h *ComposeHandler) HandleSaveDraft(c *fiber.Ctx) error {
	var req struct {
		ID      string `json:"id"`
		To      string `json:"to"`
		Cc      string `json:"cc"`
		Bcc     string `json:"bcc"`
		Subject string `json:"subject"`
		Body    string `json:"body"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestError("Invalid request", err)
	}

	draft := &models.Draft{
		To:      req.To,
		Cc:      req.Cc,
		Bcc:     req.Bcc,
		Subject: req.Subject,
		Body:    req.Body,
	}
	if err := h.drafts.SaveDraft(draftOwner, req.ID, draft); err != nil {
		return utils.InternalServerError("Failed to save draft", err)
	}

	return c.Status(201).JSON(fiber.Map{
		"success": true,
		"draft":   draft,
	})
}

// HandleGetDraft retrieves one draft.
func (h *ComposeHandler) HandleGetDraft(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return utils.BadRequestError("Draft ID required", nil)
	}

	draft, err := h.drafts.GetDraft(draftOwner, id)
	if err != nil {
		return utils.NotFoundError("Draft not found", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
		"draft":   draft,
	})
}

// HandleDeleteDraft deletes one draft.
func (h *ComposeHandler) HandleDeleteDraft(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return utils.BadRequestError("Draft ID required", nil)
	}

	if err := h.drafts.DeleteDraft(draftOwner, id); err != nil {
		return utils.NotFoundError("Draft not found", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}
