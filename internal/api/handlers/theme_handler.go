package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/colorpress/internal/models"
	"github.com/maheshrc27/colorpress/internal/notify"
	"github.com/maheshrc27/colorpress/internal/service"
	"github.com/maheshrc27/colorpress/internal/transfer"
	"github.com/valyala/fasthttp"
)

var keepAliveInterval = 15 * time.Second

type ThemeHandler struct {
	s          service.ThemeService
	subscriber notify.Subscriber
}

func NewThemeHandler(service service.ThemeService, subscriber notify.Subscriber) *ThemeHandler {
	return &ThemeHandler{s: service, subscriber: subscriber}
}

func (h *ThemeHandler) GenerateIdeas(c *fiber.Ctx) error {
	var req transfer.GenerateIdeasRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	ideas, err := h.s.GenerateIdeas(c.Context(), &req)
	if err != nil {
		return sendError(c, err)
	}
	if ideas == nil {
		ideas = []string{}
	}
	return c.JSON(transfer.GenerateIdeasResponse{Ideas: ideas})
}

func (h *ThemeHandler) CreatePrompt(c *fiber.Ctx) error {
	var req transfer.CreatePromptRequest
	if err := c.BodyParser(&req); err != nil {
		return badJSON(c)
	}

	theme, err := h.s.Submit(c.Context(), &req)
	if err != nil {
		return sendError(c, err)
	}
	return c.Status(fiber.StatusOK).JSON(transfer.CreatePromptResponse{
		PromptID: theme.ID,
		Status:   theme.Status,
	})
}

func (h *ThemeHandler) GetPrompt(c *fiber.Ctx) error {
	view, err := h.s.Fetch(c.Context(), c.Params("promptId"))
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(view)
}

// Events streams a snapshot of the theme followed by live progress events as
// Server-Sent Events. The stream ends once the theme reaches a final status.
func (h *ThemeHandler) Events(c *fiber.Ctx) error {
	themeID := c.Params("promptId")

	events, cancel, err := h.subscriber.Subscribe(context.Background(), themeID)
	if err != nil {
		return sendError(c, err)
	}

	// Subscribe before the snapshot so nothing falls between the two.
	view, err := h.s.Fetch(c.Context(), themeID)
	if err != nil {
		cancel()
		return sendError(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer cancel()

		if err := writeEvent(w, "snapshot", view); err != nil {
			return
		}
		if themeFinished(view.Prompt.Status) {
			return
		}

		ticker := time.NewTicker(keepAliveInterval)
		defer ticker.Stop()

		for {
			select {
			case ev, ok := <-events:
				if !ok {
					return
				}
				if err := writeEvent(w, ev.Type, ev); err != nil {
					slog.Info("event stream closed", "theme_id", themeID, "error", err)
					return
				}
				if ev.Type == transfer.EventTheme && themeFinished(ev.Status) {
					return
				}
			case <-ticker.C:
				fmt.Fprint(w, ": keep-alive\n\n")
				if err := w.Flush(); err != nil {
					return
				}
			}
		}
	}))
	return nil
}

func writeEvent(w *bufio.Writer, name string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
	return w.Flush()
}

func themeFinished(status string) bool {
	return status == models.ThemeStatusGenerated || status == models.ThemeStatusError
}
