package models

import "time"

// Theme is one operator request for a batch of coloring pages.
type Theme struct {
	ID        string    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Quantity  int       `db:"quantity" json:"quantity"`
	Style     string    `db:"style" json:"style"`
	Category  string    `db:"category" json:"category"`
	Status    string    `db:"status" json:"status"` // pending, generating, generated, error
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

const (
	ThemeStatusPending    = "pending"
	ThemeStatusGenerating = "generating"
	ThemeStatusGenerated  = "generated"
	ThemeStatusError      = "error"
)
