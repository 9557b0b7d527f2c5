package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/maheshrc27/colorpress/internal/models"
	"github.com/maheshrc27/colorpress/internal/repository"
	"github.com/maheshrc27/colorpress/internal/transfer"
	"github.com/maheshrc27/colorpress/pkg/utils"
)

type ReviewService interface {
	Approve(ctx context.Context, req *transfer.ApprovePageRequest) (string, error)
	Reject(ctx context.Context, req *transfer.RejectPageRequest) error
	GenerateSeo(ctx context.Context, req *transfer.GenerateSeoRequest) (*transfer.SeoContent, error)
}

type reviewService struct {
	db       *sql.DB
	pr       repository.PageRepository
	ar       repository.ApprovedPageRepository
	seo      SeoGenerator
	notifier Notifier
}

func NewReviewService(
	db *sql.DB,
	pr repository.PageRepository,
	ar repository.ApprovedPageRepository,
	seo SeoGenerator,
	notifier Notifier) ReviewService {
	return &reviewService{
		db:       db,
		pr:       pr,
		ar:       ar,
		seo:      seo,
		notifier: notifier,
	}
}

// Approve records a new approved page and flips the page to approved in one
// transaction. Every call creates a new approval, repeats included.
func (s *reviewService) Approve(ctx context.Context, req *transfer.ApprovePageRequest) (approvedID string, err error) {
	title := strings.TrimSpace(req.Title)
	category := strings.TrimSpace(req.Category)
	if req.PageID == "" || title == "" || category == "" {
		return "", fmt.Errorf("%w: pageId, title and category are required", ErrInvalidInput)
	}

	page, err := s.pr.GetByID(ctx, req.PageID)
	if err != nil {
		return "", err
	}
	if page == nil {
		return "", fmt.Errorf("%w: page %s", ErrNotFound, req.PageID)
	}
	if !page.Approvable() {
		return "", fmt.Errorf("%w: page %s has no image to approve", ErrInvalidInput, req.PageID)
	}

	ap := &models.ApprovedPage{
		ID:             uuid.NewString(),
		PageID:         page.ID,
		Title:          title,
		Slug:           utils.Slugify(title),
		SeoTitle:       req.SeoTitle,
		SeoDescription: req.SeoDescription,
		AltText:        req.AltText,
		Category:       category,
		CreatedAt:      time.Now().UTC(),
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		}
	}()

	if err = s.ar.Create(ctx, tx, ap); err != nil {
		return "", fmt.Errorf("error creating approved page: %w", err)
	}
	if err = s.pr.UpdateStatus(ctx, tx, page.ID, models.PageStatusApproved); err != nil {
		return "", fmt.Errorf("error updating page status: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.notifier.Publish(ctx, transfer.ThemeEvent{
		ThemeID:    page.ThemeID,
		Type:       transfer.EventPageUpdated,
		PageID:     page.ID,
		PageNumber: page.PageNumber,
		Status:     models.PageStatusApproved,
		ImageURL:   page.ImageURL,
	})

	return ap.ID, nil
}

func (s *reviewService) Reject(ctx context.Context, req *transfer.RejectPageRequest) error {
	if req.PageID == "" {
		return fmt.Errorf("%w: pageId is required", ErrInvalidInput)
	}

	// An unpublished approval would still go out with the next sweep.
	pending, err := s.ar.CountUnpublishedByPage(ctx, req.PageID)
	if err != nil {
		return err
	}
	if pending > 0 {
		return fmt.Errorf("%w: page %s", ErrApprovalPending, req.PageID)
	}

	found, err := s.pr.Reject(ctx, req.PageID, req.Feedback)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: page %s", ErrNotFound, req.PageID)
	}

	page, err := s.pr.GetByID(ctx, req.PageID)
	if err != nil || page == nil {
		slog.Info("rejected page could not be reloaded", "page_id", req.PageID)
		return nil
	}
	s.notifier.Publish(ctx, transfer.ThemeEvent{
		ThemeID:    page.ThemeID,
		Type:       transfer.EventPageUpdated,
		PageID:     page.ID,
		PageNumber: page.PageNumber,
		Status:     page.Status,
		ImageURL:   page.ImageURL,
	})
	return nil
}

func (s *reviewService) GenerateSeo(ctx context.Context, req *transfer.GenerateSeoRequest) (*transfer.SeoContent, error) {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Idea) == "" {
		return nil, fmt.Errorf("%w: title and idea are required", ErrInvalidInput)
	}
	return s.seo.GenerateSeo(ctx, req.Title, req.Idea)
}
