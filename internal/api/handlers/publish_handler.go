package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/colorpress/internal/service"
	"github.com/maheshrc27/colorpress/internal/transfer"
)

type PublishHandler struct {
	s         service.PublishService
	publisher service.Publisher
}

func NewPublishHandler(service service.PublishService, publisher service.Publisher) *PublishHandler {
	return &PublishHandler{s: service, publisher: publisher}
}

func (h *PublishHandler) TestConnection(c *fiber.Ctx) error {
	return c.JSON(h.publisher.TestConnection(c.Context()))
}

func (h *PublishHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.publisher.ListCategories(c.Context())
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if categories == nil {
		categories = []transfer.Category{}
	}
	return c.JSON(fiber.Map{
		"categories": categories,
	})
}

func (h *PublishHandler) ListApprovedPages(c *fiber.Ctx) error {
	pages, err := h.s.ListUnpublished(c.Context())
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(pages)
}

func (h *PublishHandler) PublishPage(c *fiber.Ctx) error {
	var req transfer.PublishPageRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	postID, err := h.s.PublishOne(c.Context(), req.ApprovedPageID)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(transfer.PublishPageResponse{PostID: postID, Status: "published"})
}

func (h *PublishHandler) PublishBatch(c *fiber.Ctx) error {
	result, err := h.s.Sweep(c.Context())
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(result)
}
