package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/maheshrc27/colorpress/internal/models"
)

type PageRepository interface {
	Create(ctx context.Context, page *models.Page) error
	GetByID(ctx context.Context, id string) (*models.Page, error)
	ListByThemeID(ctx context.Context, themeID string) ([]*models.Page, error)
	SetImage(ctx context.Context, id, imageURL, status string) error
	UpdateStatus(ctx context.Context, tx *sql.Tx, id, status string) error
	Reject(ctx context.Context, id, feedback string) (bool, error)
}

type pageRepository struct {
	db *sql.DB
}

func NewPageRepository(db *sql.DB) PageRepository {
	return &pageRepository{db: db}
}

const pageColumns = `id, theme_id, page_number, idea, image_url, status, feedback, created_at, updated_at`

func scanPage(row interface{ Scan(dest ...any) error }) (*models.Page, error) {
	var p models.Page
	err := row.Scan(&p.ID, &p.ThemeID, &p.PageNumber, &p.Idea, &p.ImageURL, &p.Status, &p.Feedback, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *pageRepository) Create(ctx context.Context, page *models.Page) error {
	query := `
		INSERT INTO generated_pages (id, theme_id, page_number, idea, image_url, status, feedback, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		page.ID, page.ThemeID, page.PageNumber, page.Idea, page.ImageURL, page.Status, page.Feedback, page.CreatedAt, page.UpdatedAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *pageRepository) GetByID(ctx context.Context, id string) (*models.Page, error) {
	query := `SELECT ` + pageColumns + ` FROM generated_pages WHERE id = $1`

	page, err := scanPage(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return page, nil
}

func (r *pageRepository) ListByThemeID(ctx context.Context, themeID string) ([]*models.Page, error) {
	query := `SELECT ` + pageColumns + ` FROM generated_pages WHERE theme_id = $1 ORDER BY page_number`

	rows, err := r.db.QueryContext(ctx, query, themeID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var pages []*models.Page
	for rows.Next() {
		page, err := scanPage(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, rows.Err()
}

func (r *pageRepository) SetImage(ctx context.Context, id, imageURL, status string) error {
	query := `
		UPDATE generated_pages
		SET image_url = $1,
			status = $2,
			updated_at = $3
		WHERE id = $4
	`
	_, err := r.db.ExecContext(ctx, query, imageURL, status, time.Now().UTC(), id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *pageRepository) UpdateStatus(ctx context.Context, tx *sql.Tx, id, status string) error {
	query := `UPDATE generated_pages SET status = $1, updated_at = $2 WHERE id = $3`

	var err error
	if tx != nil {
		_, err = tx.ExecContext(ctx, query, status, time.Now().UTC(), id)
	} else {
		_, err = r.db.ExecContext(ctx, query, status, time.Now().UTC(), id)
	}
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

// Reject reports false when no page has the given id. Repeating the same
// rejection leaves the row untouched, updated_at included.
func (r *pageRepository) Reject(ctx context.Context, id, feedback string) (bool, error) {
	query := `
		UPDATE generated_pages
		SET updated_at = CASE WHEN status = $1 AND feedback = $2 THEN updated_at ELSE $3 END,
			status = $1,
			feedback = $2
		WHERE id = $4
	`
	res, err := r.db.ExecContext(ctx, query, models.PageStatusRejected, feedback, time.Now().UTC(), id)
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return false, err
	}
	return n > 0, nil
}
