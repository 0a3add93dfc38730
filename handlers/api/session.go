package api

import (
	"crmmail/config"
	"crmmail/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler gates the dashboard behind a passcode
type AuthHandler struct {
	store  *session.Store
	config *config.Config
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(store *session.Store, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		store:  store,
		config: cfg,
	}
}

// HandleLogin checks the passcode and opens a session
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req struct {
		Passcode string `json:"passcode"`
	}
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequestError("Invalid request", err)
	}

	if req.Passcode == "" {
		return utils.BadRequestError("Passcode required", nil)
	}

	hash := h.config.Auth.PasscodeHash
	if hash == "" {
		return utils.InternalServerError("Login is not configured", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Passcode)); err != nil {
		utils.Log.Warn("Failed login attempt from %s", c.IP())
		return utils.UnauthorizedError("Invalid passcode", nil)
	}

	sess, err := h.store.Get(c)
	if err != nil {
		return utils.InternalServerError("Session error", err)
	}

	sess.Set("authenticated", true)
	if err := sess.Save(); err != nil {
		return utils.InternalServerError("Failed to save session", err)
	}

	utils.Log.Info("Login from %s", c.IP())
	return c.JSON(fiber.Map{
		"success": true,
	})
}

// HandleLogout destroys the session
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	sess, err := h.store.Get(c)
	if err != nil {
		return utils.InternalServerError("Session error", err)
	}

	if err := sess.Destroy(); err != nil {
		return utils.InternalServerError("Failed to destroy session", err)
	}

	return c.JSON(fiber.Map{
		"success": true,
	})
}

// SessionMiddleware rejects requests without an authenticated session
func SessionMiddleware(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := store.Get(c)
		if err != nil {
			return utils.UnauthorizedError("Invalid session", err)
		}

		authed, ok := sess.Get("authenticated").(bool)
		if !ok || !authed {
			return utils.UnauthorizedError("Not authenticated", nil)
		}

		return c.Next()
	}
}
