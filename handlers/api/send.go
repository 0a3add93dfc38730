package api

import (
	"io"
	"mime/multipart"

	"crmmail/compose"
	"crmmail/models"
	"crmmail/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

// SendHandler accepts a composed message as multipart form data, runs it
// through the validation and send pipeline, and reports the outcome. One
// pipeline instance is shared, so a second submit while one is in flight is
// rejected.
type SendHandler struct {
	store  *session.Store
	sender *compose.Sender
	limits compose.Limits
}

// NewSendHandler creates a new send handler
func NewSendHandler(store *session.Store, sender *compose.Sender, limits compose.Limits) *SendHandler {
	return &SendHandler{
		store:  store,
		sender: sender,
		limits: limits,
	}
}

// HandleSend validates and sends the message. Validation failures come back
// as 400 with the accumulated errors; provider failures as 502 with the
// user-facing message the compose panel shows inline.
func (h *SendHandler) HandleSend(c *fiber.Ctx) error {
	if h.sender.Sending() {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"success": false,
			"error":   "A send is already in progress",
		})
	}

	comp := compose.NewComposition(compose.ModeNew, nil, "", h.limits)
	comp.SetTo(c.FormValue("to"))
	comp.SetCc(c.FormValue("cc"))
	comp.SetBcc(c.FormValue("bcc"))
	comp.SetSubject(c.FormValue("subject"))
	comp.SetBody(c.FormValue("message"))

	form, err := c.MultipartForm()
	if err == nil && form != nil {
		for _, fh := range form.File["attachments"] {
			att, err := readAttachment(fh)
			if err != nil {
				return utils.BadRequestError("Failed to read attachment", err)
			}
			if !comp.Attachments.Add(att) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"success": false,
					"errors":  comp.Attachments.Errors(),
				})
			}
		}
	}

	if h.sender.Send(c.UserContext(), comp) {
		return c.JSON(fiber.Map{
			"success": true,
		})
	}

	status := fiber.StatusBadGateway
	result := compose.ValidateComposition(comp.To, comp.Subject, comp.Body, comp.Attachments.Files(), h.limits)
	if !result.Valid {
		status = fiber.StatusBadRequest
		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"errors":  result.Errors,
		})
	}

	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   h.sender.Error(),
	})
}

// HandleSendState reports the pipeline state for the compose panel's
// button and banners.
func (h *SendHandler) HandleSendState(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"sending": h.sender.Sending(),
		"sent":    h.sender.Success(),
		"error":   h.sender.Error(),
	})
}

func readAttachment(fh *multipart.FileHeader) (models.Attachment, error) {
	f, err := fh.Open()
	if err != nil {
		return models.Attachment{}, err
	}
	defer f.Close()

	content, err := io.ReadAll(f)
	if err != nil {
		return models.Attachment{}, err
	}

	return models.Attachment{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Content:     content,
	}, nil
}
