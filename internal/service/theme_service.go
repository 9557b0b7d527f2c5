package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/maheshrc27/colorpress/internal/models"
	"github.com/maheshrc27/colorpress/internal/repository"
	"github.com/maheshrc27/colorpress/internal/transfer"
)

const MaxThemeQuantity = 100

// GenerationDispatcher hands a submitted theme to the background worker.
type GenerationDispatcher interface {
	Dispatch(ctx context.Context, themeID string, ideas []string) error
}

// Notifier pushes progress of a theme to whoever is watching it.
type Notifier interface {
	Publish(ctx context.Context, event transfer.ThemeEvent)
}

type ThemeService interface {
	GenerateIdeas(ctx context.Context, req *transfer.GenerateIdeasRequest) ([]string, error)
	Submit(ctx context.Context, req *transfer.CreatePromptRequest) (*models.Theme, error)
	Fetch(ctx context.Context, themeID string) (*transfer.ThemeView, error)
}

type themeService struct {
	tr         repository.ThemeRepository
	pr         repository.PageRepository
	ar         repository.ApprovedPageRepository
	ideas      IdeaGenerator
	dispatcher GenerationDispatcher
}

func NewThemeService(
	tr repository.ThemeRepository,
	pr repository.PageRepository,
	ar repository.ApprovedPageRepository,
	ideas IdeaGenerator,
	dispatcher GenerationDispatcher) ThemeService {
	return &themeService{
		tr:         tr,
		pr:         pr,
		ar:         ar,
		ideas:      ideas,
		dispatcher: dispatcher,
	}
}

func (s *themeService) GenerateIdeas(ctx context.Context, req *transfer.GenerateIdeasRequest) ([]string, error) {
	if req.Quantity < 1 || req.Quantity > MaxThemeQuantity {
		return nil, fmt.Errorf("%w: quantity must be between 1 and %d", ErrInvalidInput, MaxThemeQuantity)
	}
	if strings.TrimSpace(req.Style) == "" {
		return nil, fmt.Errorf("%w: style is required", ErrInvalidInput)
	}

	ideas, err := s.ideas.GenerateIdeas(ctx, req.Quantity, req.Style, req.ExistingIdeas)
	if err != nil {
		return nil, err
	}
	return ideas, nil
}

func (s *themeService) Submit(ctx context.Context, req *transfer.CreatePromptRequest) (*models.Theme, error) {
	ideas, err := validateSubmission(req)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	theme := &models.Theme{
		ID:        uuid.NewString(),
		Title:     strings.TrimSpace(req.Title),
		Quantity:  req.Quantity,
		Style:     strings.TrimSpace(req.Style),
		Category:  strings.TrimSpace(req.Category),
		Status:    models.ThemeStatusGenerating,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.tr.Create(ctx, theme); err != nil {
		return nil, fmt.Errorf("saving theme: %w", err)
	}

	if err := s.dispatcher.Dispatch(ctx, theme.ID, ideas); err != nil {
		slog.Error("dispatching generation failed", "theme_id", theme.ID, "error", err)
		if uerr := s.tr.UpdateStatus(ctx, theme.ID, models.ThemeStatusError); uerr != nil {
			slog.Info(uerr.Error())
		}
		return nil, fmt.Errorf("starting generation: %w", err)
	}

	return theme, nil
}

// validateSubmission returns the ideas the worker should render: exactly
// quantity of them, or none when the worker has to come up with its own.
func validateSubmission(req *transfer.CreatePromptRequest) ([]string, error) {
	switch {
	case strings.TrimSpace(req.Title) == "":
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	case strings.TrimSpace(req.Style) == "":
		return nil, fmt.Errorf("%w: style is required", ErrInvalidInput)
	case strings.TrimSpace(req.Category) == "":
		return nil, fmt.Errorf("%w: category is required", ErrInvalidInput)
	case req.Quantity < 1 || req.Quantity > MaxThemeQuantity:
		return nil, fmt.Errorf("%w: quantity must be between 1 and %d", ErrInvalidInput, MaxThemeQuantity)
	}

	var ideas []string
	for _, idea := range req.Ideas {
		if idea = strings.TrimSpace(idea); idea != "" {
			ideas = append(ideas, idea)
		}
	}
	if len(req.Ideas) == 0 {
		return nil, nil
	}
	if len(ideas) < req.Quantity {
		return nil, fmt.Errorf("%w: %d ideas supplied for a quantity of %d", ErrInvalidInput, len(ideas), req.Quantity)
	}
	return ideas[:req.Quantity], nil
}

func (s *themeService) Fetch(ctx context.Context, themeID string) (*transfer.ThemeView, error) {
	theme, err := s.tr.GetByID(ctx, themeID)
	if err != nil {
		return nil, err
	}
	if theme == nil {
		return nil, fmt.Errorf("%w: theme %s", ErrNotFound, themeID)
	}

	pages, err := s.pr.ListByThemeID(ctx, themeID)
	if err != nil {
		return nil, err
	}
	approved, err := s.ar.ListByThemeID(ctx, themeID)
	if err != nil {
		return nil, err
	}

	byPage := make(map[string][]*models.ApprovedPage, len(approved))
	for _, ap := range approved {
		byPage[ap.PageID] = append(byPage[ap.PageID], ap)
	}

	view := &transfer.ThemeView{Prompt: theme, Pages: make([]transfer.PageView, 0, len(pages))}
	for _, p := range pages {
		approvals := byPage[p.ID]
		if approvals == nil {
			approvals = []*models.ApprovedPage{}
		}
		view.Pages = append(view.Pages, transfer.PageView{Page: p, Approvals: approvals})
	}
	return view, nil
}
