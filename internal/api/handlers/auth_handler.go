package handlers

import (
	"crypto/subtle"
	"time"

	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/colorpress/configs"
	"github.com/maheshrc27/colorpress/internal/transfer"
	"github.com/maheshrc27/colorpress/pkg/utils"
)

const sessionDuration = 24 * time.Hour

type AuthHandler struct {
	cfg config.Config
}

func NewAuthHandler(cfg config.Config) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

// IssueToken trades the operator API key for a signed session, returned both
// in the body and as an HTTP-only cookie.
func (h *AuthHandler) IssueToken(c *fiber.Ctx) error {
	if h.cfg.APIKey == "" || h.cfg.SecretKey == "" {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "token login is not configured",
		})
	}

	var req transfer.TokenRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}
	if subtle.ConstantTimeCompare([]byte(req.APIKey), []byte(h.cfg.APIKey)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid api key",
		})
	}

	expires := time.Now().Add(sessionDuration)
	token, err := utils.GenerateToken(h.cfg.SecretKey, "operator", sessionDuration)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "something went wrong",
		})
	}

	c.Cookie(&fiber.Cookie{
		Name:     h.cfg.CookieName,
		Value:    token,
		HTTPOnly: true,
		Secure:   false,
		SameSite: fiber.CookieSameSiteLaxMode,
		Path:     "/",
		Expires:  expires,
	})

	return c.JSON(transfer.TokenResponse{Token: token, ExpiresAt: expires.Unix()})
}
