package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/colorpress/internal/models"
	"github.com/maheshrc27/colorpress/internal/service"
	"github.com/maheshrc27/colorpress/internal/transfer"
)

type ReviewHandler struct {
	s service.ReviewService
}

func NewReviewHandler(service service.ReviewService) *ReviewHandler {
	return &ReviewHandler{s: service}
}

func (h *ReviewHandler) ApprovePage(c *fiber.Ctx) error {
	var req transfer.ApprovePageRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	approvedID, err := h.s.Approve(c.Context(), &req)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(transfer.ApprovePageResponse{
		ApprovedID: approvedID,
		Status:     models.PageStatusApproved,
	})
}

func (h *ReviewHandler) RejectPage(c *fiber.Ctx) error {
	var req transfer.RejectPageRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	if err := h.s.Reject(c.Context(), &req); err != nil {
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{
		"status": models.PageStatusRejected,
	})
}

func (h *ReviewHandler) GenerateSeo(c *fiber.Ctx) error {
	var req transfer.GenerateSeoRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	seo, err := h.s.GenerateSeo(c.Context(), &req)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(seo)
}
