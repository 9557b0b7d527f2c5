package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	"time"

	"github.com/maheshrc27/colorpress/internal/models"
	"github.com/maheshrc27/colorpress/internal/repository"
	"github.com/maheshrc27/colorpress/internal/transfer"
)

// ClaimTTL is how long a publish claim blocks other sweeps. A claim older than
// this belongs to a sweep that died mid-item.
const ClaimTTL = 30 * time.Minute

var postContent = template.Must(template.New("post").Parse(`
<p>{{.Title}}</p>
<img src="{{.ImageURL}}" alt="{{.AltText}}" title="{{.Title}}" />
<p><a href="#download" class="coloring-download-btn" data-pdf-id="{{.ID}}" style="display: inline-block; padding: 12px 24px; background-color: #4CAF50; color: white; border-radius: 50px; text-decoration: none; font-weight: bold;">📥 Download Coloring Page</a></p>
`))

type PublishService interface {
	Sweep(ctx context.Context) (*transfer.SweepResult, error)
	PublishOne(ctx context.Context, approvedID string) (int64, error)
	ListUnpublished(ctx context.Context) ([]*models.ApprovedPage, error)
}

type publishService struct {
	ar                repository.ApprovedPageRepository
	sr                repository.SettingsRepository
	publisher         Publisher
	defaultCategoryID int64
	now               func() time.Time
}

func NewPublishService(
	ar repository.ApprovedPageRepository,
	sr repository.SettingsRepository,
	publisher Publisher,
	defaultCategoryID int64) PublishService {
	return &publishService{
		ar:                ar,
		sr:                sr,
		publisher:         publisher,
		defaultCategoryID: defaultCategoryID,
		now:               func() time.Time { return time.Now().UTC() },
	}
}

func (s *publishService) ListUnpublished(ctx context.Context) ([]*models.ApprovedPage, error) {
	pages, err := s.ar.ListUnpublished(ctx)
	if err != nil {
		return nil, err
	}
	if pages == nil {
		pages = []*models.ApprovedPage{}
	}
	return pages, nil
}

// Sweep publishes up to the configured daily limit of unpublished pages,
// oldest approval first. One item failing never stops the others.
func (s *publishService) Sweep(ctx context.Context) (*transfer.SweepResult, error) {
	limit := models.DefaultDailyLimit
	settings, err := s.sr.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading scheduler settings: %w", err)
	}
	if settings != nil && settings.DailyLimit > 0 {
		limit = settings.DailyLimit
	}

	now := s.now()
	pages, err := s.ar.ListPublishable(ctx, now.Add(-ClaimTTL), limit)
	if err != nil {
		return nil, fmt.Errorf("selecting pages to publish: %w", err)
	}

	result := &transfer.SweepResult{Selected: len(pages)}
	slog.Info("publication sweep started", "selected", len(pages), "limit", limit)

	categories := make(map[string]int64)
	for _, ap := range pages {
		if ctx.Err() != nil {
			break
		}

		claimed, err := s.ar.Claim(ctx, ap.ID, s.now(), s.now().Add(-ClaimTTL))
		if err != nil {
			slog.Error("claiming page failed", "approved_id", ap.ID, "error", err)
			result.Failed++
			continue
		}
		if !claimed {
			result.Skipped++
			continue
		}

		postID, err := s.publish(ctx, ap, categories)
		if err != nil {
			slog.Error("publishing page failed", "approved_id", ap.ID, "title", ap.Title, "error", err)
			result.Failed++
			continue
		}
		slog.Info("published page", "approved_id", ap.ID, "title", ap.Title, "post_id", postID)
		result.Published++
	}

	if err := s.sr.SetLastRun(context.WithoutCancel(ctx), now); err != nil {
		slog.Error("recording sweep run failed", "error", err)
	}

	slog.Info("publication sweep finished",
		"selected", result.Selected, "published", result.Published, "failed", result.Failed, "skipped", result.Skipped)
	return result, nil
}

func (s *publishService) PublishOne(ctx context.Context, approvedID string) (int64, error) {
	if approvedID == "" {
		return 0, fmt.Errorf("%w: approvedPageId is required", ErrInvalidInput)
	}

	ap, err := s.ar.GetByID(ctx, approvedID)
	if err != nil {
		return 0, err
	}
	if ap == nil {
		return 0, fmt.Errorf("%w: approved page %s", ErrNotFound, approvedID)
	}
	if ap.Published {
		return 0, ErrAlreadyPublished
	}

	now := s.now()
	claimed, err := s.ar.Claim(ctx, ap.ID, now, now.Add(-ClaimTTL))
	if err != nil {
		return 0, err
	}
	if !claimed {
		return 0, ErrPublishInProgress
	}

	return s.publish(ctx, ap, make(map[string]int64))
}

// publish runs the per-item steps on a claimed page. The claim is released
// when the remote post could not be created, and kept when only the local
// bookkeeping failed so the post is not created twice.
func (s *publishService) publish(ctx context.Context, ap *models.ApprovedPage, categories map[string]int64) (int64, error) {
	categoryID := s.resolveCategory(ctx, ap.Category, categories)

	var content bytes.Buffer
	if err := postContent.Execute(&content, ap); err != nil {
		s.release(ctx, ap.ID)
		return 0, fmt.Errorf("rendering content: %w", err)
	}

	postID, err := s.publisher.Publish(ctx, &Post{
		Title:          ap.Title,
		Content:        content.String(),
		Slug:           ap.Slug,
		CategoryID:     categoryID,
		SeoTitle:       ap.SeoTitle,
		SeoDescription: ap.SeoDescription,
	})
	if err != nil {
		s.release(ctx, ap.ID)
		return 0, err
	}

	seoTitle := ap.SeoTitle
	if seoTitle == "" {
		seoTitle = ap.Title
	}
	meta := map[string]string{
		metaSeoTitle:       seoTitle,
		metaSeoDescription: ap.SeoDescription,
	}
	if err := s.publisher.SetPostMeta(ctx, postID, meta); err != nil {
		slog.Warn("setting seo meta failed", "approved_id", ap.ID, "post_id", postID, "error", err)
	}

	if err := ap.MarkPublished(postID, s.now()); err != nil {
		return 0, err
	}
	if err := s.ar.MarkPublished(context.WithoutCancel(ctx), ap); err != nil {
		slog.Error("post created but not recorded", "approved_id", ap.ID, "post_id", postID, "error", err)
		return 0, fmt.Errorf("recording post %d: %w", postID, err)
	}
	return postID, nil
}

func (s *publishService) resolveCategory(ctx context.Context, name string, cache map[string]int64) int64 {
	key := strings.ToLower(name)
	if id, ok := cache[key]; ok {
		return id
	}

	id, err := s.publisher.ResolveCategory(ctx, name)
	if err != nil {
		slog.Warn("resolving category failed, using default", "category", name, "default_id", s.defaultCategoryID, "error", err)
		id = s.defaultCategoryID
	}
	cache[key] = id
	return id
}

func (s *publishService) release(ctx context.Context, id string) {
	if err := s.ar.Release(context.WithoutCancel(ctx), id); err != nil {
		slog.Error("releasing publish claim failed", "approved_id", id, "error", err)
	}
}
