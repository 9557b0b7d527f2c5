package repository

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/maheshrc27/colorpress/internal/models"
)

type ScheduledPostRepository interface {
	ListPending(ctx context.Context) ([]*models.ScheduledPost, error)
}

type scheduledPostRepository struct {
	db *sql.DB
}

func NewScheduledPostRepository(db *sql.DB) ScheduledPostRepository {
	return &scheduledPostRepository{db: db}
}

func (r *scheduledPostRepository) ListPending(ctx context.Context) ([]*models.ScheduledPost, error) {
	query := `
		SELECT sp.id, sp.approved_page_id, ap.title, sp.scheduled_for, sp.status, sp.published, sp.published_at
		FROM scheduled_posts sp
		JOIN approved_pages ap ON sp.approved_page_id = ap.id
		WHERE sp.published = FALSE
		ORDER BY sp.scheduled_for
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var posts []*models.ScheduledPost
	for rows.Next() {
		var p models.ScheduledPost
		err := rows.Scan(&p.ID, &p.ApprovedPageID, &p.Title, &p.ScheduledFor, &p.Status, &p.Published, &p.PublishedAt)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		posts = append(posts, &p)
	}
	return posts, rows.Err()
}
