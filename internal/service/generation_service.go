package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/maheshrc27/colorpress/internal/models"
	"github.com/maheshrc27/colorpress/internal/repository"
	"github.com/maheshrc27/colorpress/internal/transfer"
)

const maxIdeaAttempts = 5

type GenerationService interface {
	Generate(ctx context.Context, themeID string, ideas []string) error
}

type generationService struct {
	tr       repository.ThemeRepository
	pr       repository.PageRepository
	ideas    IdeaGenerator
	images   ImageGenerator
	notifier Notifier
}

func NewGenerationService(
	tr repository.ThemeRepository,
	pr repository.PageRepository,
	ideas IdeaGenerator,
	images ImageGenerator,
	notifier Notifier) GenerationService {
	return &generationService{
		tr:       tr,
		pr:       pr,
		ideas:    ideas,
		images:   images,
		notifier: notifier,
	}
}

// Generate renders one page per idea, in order. A failed image marks only its
// own page; a store failure stops the run and flags the whole theme.
func (s *generationService) Generate(ctx context.Context, themeID string, ideas []string) error {
	theme, err := s.tr.GetByID(ctx, themeID)
	if err != nil {
		return err
	}
	if theme == nil {
		return fmt.Errorf("%w: theme %s", ErrNotFound, themeID)
	}

	if err := s.run(ctx, theme, ideas); err != nil {
		slog.Error("theme generation failed", "theme_id", themeID, "error", err)
		s.finish(ctx, themeID, models.ThemeStatusError)
		return err
	}

	s.finish(ctx, themeID, models.ThemeStatusGenerated)
	return nil
}

func (s *generationService) run(ctx context.Context, theme *models.Theme, ideas []string) error {
	if len(ideas) == 0 {
		generated, err := s.collectIdeas(ctx, theme)
		if err != nil {
			return err
		}
		ideas = generated
	}
	if len(ideas) > theme.Quantity {
		ideas = ideas[:theme.Quantity]
	}

	for i, idea := range ideas {
		if err := ctx.Err(); err != nil {
			return err
		}

		now := time.Now().UTC()
		page := &models.Page{
			ID:         uuid.NewString(),
			ThemeID:    theme.ID,
			PageNumber: i + 1,
			Idea:       idea,
			Status:     models.PageStatusPending,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.pr.Create(ctx, page); err != nil {
			return fmt.Errorf("saving page %d: %w", page.PageNumber, err)
		}
		s.notifier.Publish(ctx, transfer.ThemeEvent{
			ThemeID:    theme.ID,
			Type:       transfer.EventPageCreated,
			PageID:     page.ID,
			PageNumber: page.PageNumber,
			Status:     page.Status,
		})

		imageURL, err := s.images.GenerateImage(ctx, idea, theme.ID)
		status := models.PageStatusPendingReview
		if err != nil {
			slog.Error("image generation failed", "theme_id", theme.ID, "page", page.PageNumber, "error", err)
			imageURL, status = "", models.PageStatusImageFailed
		} else {
			slog.Info("generated image", "theme_id", theme.ID, "page", page.PageNumber, "total", len(ideas))
		}

		if err := s.pr.SetImage(ctx, page.ID, imageURL, status); err != nil {
			return fmt.Errorf("saving image of page %d: %w", page.PageNumber, err)
		}
		s.notifier.Publish(ctx, transfer.ThemeEvent{
			ThemeID:    theme.ID,
			Type:       transfer.EventPageUpdated,
			PageID:     page.ID,
			PageNumber: page.PageNumber,
			Status:     status,
			ImageURL:   imageURL,
		})
	}
	return nil
}

// collectIdeas asks the idea generator until it has theme.Quantity distinct
// ideas, passing what it already has as existing ideas. A generator that stops
// producing new ideas fails the run instead of yielding a short theme.
func (s *generationService) collectIdeas(ctx context.Context, theme *models.Theme) ([]string, error) {
	var ideas []string
	seen := make(map[string]bool)
	for attempt := 1; attempt <= maxIdeaAttempts && len(ideas) < theme.Quantity; attempt++ {
		generated, err := s.ideas.GenerateIdeas(ctx, theme.Quantity-len(ideas), theme.Style, ideas)
		if err != nil {
			return nil, fmt.Errorf("generating ideas: %w", err)
		}

		added := 0
		for _, idea := range generated {
			if idea == "" || seen[idea] {
				continue
			}
			seen[idea] = true
			ideas = append(ideas, idea)
			added++
		}
		if added == 0 {
			break
		}
	}

	if len(ideas) < theme.Quantity {
		return nil, fmt.Errorf("idea generator produced %d of %d ideas", len(ideas), theme.Quantity)
	}
	return ideas[:theme.Quantity], nil
}

func (s *generationService) finish(ctx context.Context, themeID, status string) {
	ctx = context.WithoutCancel(ctx)
	if err := s.tr.UpdateStatus(ctx, themeID, status); err != nil {
		slog.Error("updating theme status failed", "theme_id", themeID, "status", status, "error", err)
		return
	}
	s.notifier.Publish(ctx, transfer.ThemeEvent{ThemeID: themeID, Type: transfer.EventTheme, Status: status})
}
