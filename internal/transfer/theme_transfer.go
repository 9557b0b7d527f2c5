package transfer

import "github.com/maheshrc27/colorpress/internal/models"

type GenerateIdeasRequest struct {
	Quantity      int      `json:"quantity"`
	Style         string   `json:"style"`
	ExistingIdeas []string `json:"existingIdeas"`
}

type GenerateIdeasResponse struct {
	Ideas []string `json:"ideas"`
}

type CreatePromptRequest struct {
	Title    string   `json:"title"`
	Quantity int      `json:"quantity"`
	Style    string   `json:"style"`
	Category string   `json:"category"`
	Ideas    []string `json:"ideas"`
}

type CreatePromptResponse struct {
	PromptID string `json:"promptId"`
	Status   string `json:"status"`
}

// PageView is a generated page together with every approval recorded for it.
type PageView struct {
	*models.Page
	Approvals []*models.ApprovedPage `json:"approvals"`
}

type ThemeView struct {
	Prompt *models.Theme `json:"prompt"`
	Pages  []PageView    `json:"pages"`
}

// ThemeEvent is pushed to progress subscribers whenever a theme or one of its
// pages changes.
type ThemeEvent struct {
	ThemeID    string `json:"promptId"`
	Type       string `json:"type"`
	PageID     string `json:"pageId,omitempty"`
	PageNumber int    `json:"pageNumber,omitempty"`
	Status     string `json:"status"`
	ImageURL   string `json:"imageUrl,omitempty"`
}

const (
	EventPageCreated = "page_created"
	EventPageUpdated = "page_updated"
	EventTheme       = "theme_status"
)
