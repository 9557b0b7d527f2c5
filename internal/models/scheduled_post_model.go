package models

import (
	"database/sql"
	"time"
)

// ScheduledPost is a future-dated publication record. Nothing creates these
// yet; the API only lists them.
type ScheduledPost struct {
	ID             string       `db:"id" json:"id"`
	ApprovedPageID string       `db:"approved_page_id" json:"approved_page_id"`
	Title          string       `db:"title" json:"title"`
	ScheduledFor   time.Time    `db:"scheduled_for" json:"scheduled_for"`
	Status         string       `db:"status" json:"status"`
	Published      bool         `db:"published" json:"published"`
	PublishedAt    sql.NullTime `db:"published_at" json:"-"`
}

const (
	ScheduledPostStatusPending   = "pending"
	ScheduledPostStatusPublished = "published"
	ScheduledPostStatusFailed    = "failed"
)
