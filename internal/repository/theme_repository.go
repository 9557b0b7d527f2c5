package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/maheshrc27/colorpress/internal/models"
)

type ThemeRepository interface {
	Create(ctx context.Context, theme *models.Theme) error
	GetByID(ctx context.Context, id string) (*models.Theme, error)
	UpdateStatus(ctx context.Context, id, status string) error
}

type themeRepository struct {
	db *sql.DB
}

func NewThemeRepository(db *sql.DB) ThemeRepository {
	return &themeRepository{db: db}
}

func (r *themeRepository) Create(ctx context.Context, theme *models.Theme) error {
	query := `
		INSERT INTO themes (id, title, quantity, style, category, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		theme.ID, theme.Title, theme.Quantity, theme.Style, theme.Category, theme.Status, theme.CreatedAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *themeRepository) GetByID(ctx context.Context, id string) (*models.Theme, error) {
	query := `SELECT id, title, quantity, style, category, status, created_at FROM themes WHERE id = $1`
	row := r.db.QueryRowContext(ctx, query, id)

	var theme models.Theme
	err := row.Scan(&theme.ID, &theme.Title, &theme.Quantity, &theme.Style, &theme.Category, &theme.Status, &theme.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &theme, nil
}

func (r *themeRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE themes SET status = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
