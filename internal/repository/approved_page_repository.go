package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/maheshrc27/colorpress/internal/models"
)

type ApprovedPageRepository interface {
	Create(ctx context.Context, tx *sql.Tx, ap *models.ApprovedPage) error
	GetByID(ctx context.Context, id string) (*models.ApprovedPage, error)
	ListByThemeID(ctx context.Context, themeID string) ([]*models.ApprovedPage, error)
	ListUnpublished(ctx context.Context) ([]*models.ApprovedPage, error)
	ListPublishable(ctx context.Context, staleBefore time.Time, limit int) ([]*models.ApprovedPage, error)
	Claim(ctx context.Context, id string, now, staleBefore time.Time) (bool, error)
	MarkPublished(ctx context.Context, ap *models.ApprovedPage) error
	Release(ctx context.Context, id string) error
	CountUnpublishedByPage(ctx context.Context, pageID string) (int, error)
}

type approvedPageRepository struct {
	db *sql.DB
}

func NewApprovedPageRepository(db *sql.DB) ApprovedPageRepository {
	return &approvedPageRepository{db: db}
}

const approvedColumns = `ap.id, ap.page_id, ap.title, ap.slug, ap.seo_title, ap.seo_description, ap.alt_text,
	ap.category, ap.published, ap.wp_post_id, ap.published_at, ap.claimed_at, ap.created_at, gp.image_url`

func scanApprovedPage(row interface{ Scan(dest ...any) error }) (*models.ApprovedPage, error) {
	var ap models.ApprovedPage
	err := row.Scan(
		&ap.ID,
		&ap.PageID,
		&ap.Title,
		&ap.Slug,
		&ap.SeoTitle,
		&ap.SeoDescription,
		&ap.AltText,
		&ap.Category,
		&ap.Published,
		&ap.WpPostID,
		&ap.PublishedAt,
		&ap.ClaimedAt,
		&ap.CreatedAt,
		&ap.ImageURL,
	)
	if err != nil {
		return nil, err
	}
	if err := ap.Validate(); err != nil {
		slog.Warn("approved page violates publish invariant", "id", ap.ID, "error", err)
	}
	return &ap, nil
}

func (r *approvedPageRepository) list(ctx context.Context, query string, args ...any) ([]*models.ApprovedPage, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var pages []*models.ApprovedPage
	for rows.Next() {
		ap, err := scanApprovedPage(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		pages = append(pages, ap)
	}
	return pages, rows.Err()
}

func (r *approvedPageRepository) Create(ctx context.Context, tx *sql.Tx, ap *models.ApprovedPage) error {
	query := `
		INSERT INTO approved_pages (id, page_id, title, slug, seo_title, seo_description, alt_text, category, published, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, FALSE, $9)
	`
	args := []any{ap.ID, ap.PageID, ap.Title, ap.Slug, ap.SeoTitle, ap.SeoDescription, ap.AltText, ap.Category, ap.CreatedAt}

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, args...)
	} else {
		_, err = r.db.ExecContext(ctx, query, args...)
	}
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *approvedPageRepository) GetByID(ctx context.Context, id string) (*models.ApprovedPage, error) {
	query := `
		SELECT ` + approvedColumns + `
		FROM approved_pages ap
		JOIN generated_pages gp ON ap.page_id = gp.id
		WHERE ap.id = $1
	`
	ap, err := scanApprovedPage(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return ap, nil
}

func (r *approvedPageRepository) ListByThemeID(ctx context.Context, themeID string) ([]*models.ApprovedPage, error) {
	query := `
		SELECT ` + approvedColumns + `
		FROM approved_pages ap
		JOIN generated_pages gp ON ap.page_id = gp.id
		WHERE gp.theme_id = $1
		ORDER BY ap.created_at, ap.id
	`
	return r.list(ctx, query, themeID)
}

// ListUnpublished is the operator's queue view, newest first.
func (r *approvedPageRepository) ListUnpublished(ctx context.Context) ([]*models.ApprovedPage, error) {
	query := `
		SELECT ` + approvedColumns + `
		FROM approved_pages ap
		JOIN generated_pages gp ON ap.page_id = gp.id
		WHERE ap.published = FALSE
		ORDER BY ap.created_at DESC, ap.id DESC
	`
	return r.list(ctx, query)
}

// ListPublishable selects the sweep batch: oldest approvals first, skipping
// rows another sweep holds a live claim on.
func (r *approvedPageRepository) ListPublishable(ctx context.Context, staleBefore time.Time, limit int) ([]*models.ApprovedPage, error) {
	query := `
		SELECT ` + approvedColumns + `
		FROM approved_pages ap
		JOIN generated_pages gp ON ap.page_id = gp.id
		WHERE ap.published = FALSE
			AND (ap.claimed_at IS NULL OR ap.claimed_at < $1)
		ORDER BY ap.created_at, ap.id
		LIMIT $2
	`
	return r.list(ctx, query, staleBefore, limit)
}

// Claim marks the row as being published by the caller. It returns false when
// the row is already published or claimed by someone else.
func (r *approvedPageRepository) Claim(ctx context.Context, id string, now, staleBefore time.Time) (bool, error) {
	query := `
		UPDATE approved_pages
		SET claimed_at = $1
		WHERE id = $2
			AND published = FALSE
			AND (claimed_at IS NULL OR claimed_at < $3)
	`
	res, err := r.db.ExecContext(ctx, query, now, id, staleBefore)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return n == 1, nil
}

func (r *approvedPageRepository) MarkPublished(ctx context.Context, ap *models.ApprovedPage) error {
	if err := ap.Validate(); err != nil {
		return err
	}
	query := `
		UPDATE approved_pages
		SET published = TRUE,
			wp_post_id = $1,
			published_at = $2,
			claimed_at = NULL
		WHERE id = $3
	`
	_, err := r.db.ExecContext(ctx, query, ap.WpPostID.Int64, ap.PublishedAt.Time, ap.ID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *approvedPageRepository) Release(ctx context.Context, id string) error {
	query := `UPDATE approved_pages SET claimed_at = NULL WHERE id = $1 AND published = FALSE`
	_, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *approvedPageRepository) CountUnpublishedByPage(ctx context.Context, pageID string) (int, error) {
	query := `SELECT COUNT(*) FROM approved_pages WHERE page_id = $1 AND published = FALSE`
	var n int
	if err := r.db.QueryRowContext(ctx, query, pageID).Scan(&n); err != nil {
		slog.Info(err.Error())
		return 0, err
	}
	return n, nil
}
