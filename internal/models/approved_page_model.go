package models

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

var (
	ErrPublishedWithoutPost = errors.New("published page is missing its post id or timestamp")
	ErrInvalidPostID        = errors.New("post id must be positive")
)

// ApprovedPage is the SEO-enriched, publishable version of a Page.
type ApprovedPage struct {
	ID             string        `db:"id" json:"id"`
	PageID         string        `db:"page_id" json:"page_id"`
	Title          string        `db:"title" json:"title"`
	Slug           string        `db:"slug" json:"slug"`
	SeoTitle       string        `db:"seo_title" json:"seo_title"`
	SeoDescription string        `db:"seo_description" json:"seo_description"`
	AltText        string        `db:"alt_text" json:"alt_text"`
	Category       string        `db:"category" json:"category"`
	Published      bool          `db:"published" json:"published"`
	WpPostID       sql.NullInt64 `db:"wp_post_id" json:"-"`
	PublishedAt    sql.NullTime  `db:"published_at" json:"-"`
	ClaimedAt      sql.NullTime  `db:"claimed_at" json:"-"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`

	// ImageURL is joined from the generated page; not a column of approved_pages.
	ImageURL string `db:"image_url" json:"image_url,omitempty"`
}

// Validate checks the publish invariant on a row read back from the store.
func (a *ApprovedPage) Validate() error {
	if a.Published && (!a.WpPostID.Valid || !a.PublishedAt.Valid) {
		return ErrPublishedWithoutPost
	}
	return nil
}

// MarkPublished records a successful publish. The post id and timestamp are
// set together with the flag so the invariant cannot be half applied.
func (a *ApprovedPage) MarkPublished(postID int64, at time.Time) error {
	if postID <= 0 {
		return ErrInvalidPostID
	}
	a.Published = true
	a.WpPostID = sql.NullInt64{Int64: postID, Valid: true}
	a.PublishedAt = sql.NullTime{Time: at, Valid: true}
	a.ClaimedAt = sql.NullTime{}
	return nil
}

// PostID returns the external post id, or nil while unpublished.
func (a *ApprovedPage) PostID() *int64 {
	if !a.WpPostID.Valid {
		return nil
	}
	id := a.WpPostID.Int64
	return &id
}

func (a ApprovedPage) MarshalJSON() ([]byte, error) {
	type alias ApprovedPage
	var publishedAt *time.Time
	if a.PublishedAt.Valid {
		t := a.PublishedAt.Time
		publishedAt = &t
	}
	return json.Marshal(struct {
		alias
		WpPostID    *int64     `json:"wp_post_id"`
		PublishedAt *time.Time `json:"published_at"`
	}{
		alias:       alias(a),
		WpPostID:    a.PostID(),
		PublishedAt: publishedAt,
	})
}
