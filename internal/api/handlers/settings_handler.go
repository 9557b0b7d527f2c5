package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/colorpress/internal/models"
	"github.com/maheshrc27/colorpress/internal/repository"
	"github.com/maheshrc27/colorpress/internal/service"
	"github.com/maheshrc27/colorpress/internal/transfer"
)

type SettingsHandler struct {
	s     service.SettingsService
	posts repository.ScheduledPostRepository
}

func NewSettingsHandler(service service.SettingsService, posts repository.ScheduledPostRepository) *SettingsHandler {
	return &SettingsHandler{s: service, posts: posts}
}

func (h *SettingsHandler) GetSettings(c *fiber.Ctx) error {
	settings, err := h.s.Get(c.Context())
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(settings)
}

func (h *SettingsHandler) UpdateSettings(c *fiber.Ctx) error {
	var req transfer.UpdateSettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	settings, err := h.s.Update(c.Context(), &req)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"settings": settings,
	})
}

func (h *SettingsHandler) ScheduledPosts(c *fiber.Ctx) error {
	posts, err := h.posts.ListPending(c.Context())
	if err != nil {
		return sendError(c, err)
	}
	if posts == nil {
		posts = []*models.ScheduledPost{}
	}
	return c.JSON(posts)
}
