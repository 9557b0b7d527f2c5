package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/maheshrc27/colorpress/internal/models"
)

type SettingsRepository interface {
	Get(ctx context.Context) (*models.SchedulerSettings, error)
	Create(ctx context.Context, s *models.SchedulerSettings) error
	Update(ctx context.Context, s *models.SchedulerSettings) error
	SetLastRun(ctx context.Context, at time.Time) error
}

type settingsRepository struct {
	db *sql.DB
}

func NewSettingsRepository(db *sql.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

func (r *settingsRepository) Get(ctx context.Context) (*models.SchedulerSettings, error) {
	query := `
		SELECT id, daily_limit, publish_hour, publish_minute, enabled, last_run, updated_at
		FROM scheduler_settings
		WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, query, models.SchedulerSettingsID)

	var s models.SchedulerSettings
	err := row.Scan(&s.ID, &s.DailyLimit, &s.PublishHour, &s.PublishMinute, &s.Enabled, &s.LastRun, &s.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}

	return &s, nil
}

// Create inserts the singleton row. A concurrent first access may have won the
// race already, in which case the existing row is kept.
func (r *settingsRepository) Create(ctx context.Context, s *models.SchedulerSettings) error {
	query := `
		INSERT INTO scheduler_settings (id, daily_limit, publish_hour, publish_minute, enabled, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING
	`
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, query,
		models.SchedulerSettingsID, s.DailyLimit, s.PublishHour, s.PublishMinute, s.Enabled, s.UpdatedAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *settingsRepository) Update(ctx context.Context, s *models.SchedulerSettings) error {
	query := `
		UPDATE scheduler_settings
		SET daily_limit = $1,
			publish_hour = $2,
			publish_minute = $3,
			enabled = $4,
			updated_at = $5
		WHERE id = $6
	`
	s.UpdatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, query,
		s.DailyLimit, s.PublishHour, s.PublishMinute, s.Enabled, s.UpdatedAt, models.SchedulerSettingsID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *settingsRepository) SetLastRun(ctx context.Context, at time.Time) error {
	query := `UPDATE scheduler_settings SET last_run = $1 WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, at, models.SchedulerSettingsID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
