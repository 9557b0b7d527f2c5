package models

import "time"

// Page is one generated coloring-page candidate of a theme.
type Page struct {
	ID         string    `db:"id" json:"id"`
	ThemeID    string    `db:"theme_id" json:"prompt_id"`
	PageNumber int       `db:"page_number" json:"page_number"`
	Idea       string    `db:"idea" json:"idea"`
	ImageURL   string    `db:"image_url" json:"image_url"`
	Status     string    `db:"status" json:"status"` // pending, pending_review, image_failed, approved, rejected
	Feedback   string    `db:"feedback" json:"feedback"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

const (
	PageStatusPending       = "pending"
	PageStatusPendingReview = "pending_review"
	PageStatusImageFailed   = "image_failed"
	PageStatusApproved      = "approved"
	PageStatusRejected      = "rejected"
)

// Approvable reports whether an operator may approve the page. A page without
// an image is either still generating or failed for good.
func (p *Page) Approvable() bool {
	if p.ImageURL == "" {
		return false
	}
	switch p.Status {
	case PageStatusPendingReview, PageStatusApproved, PageStatusRejected:
		return true
	}
	return false
}
