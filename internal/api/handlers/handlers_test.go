package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/colorpress/configs"
	"github.com/maheshrc27/colorpress/internal/models"
	"github.com/maheshrc27/colorpress/internal/service"
	"github.com/maheshrc27/colorpress/internal/transfer"
	"github.com/maheshrc27/colorpress/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeThemes struct {
	themes map[string]*transfer.ThemeView
}

func (f *fakeThemes) GenerateIdeas(_ context.Context, req *transfer.GenerateIdeasRequest) ([]string, error) {
	if req.Quantity < 1 {
		return nil, fmt.Errorf("%w: quantity", service.ErrInvalidInput)
	}
	return []string{"Dolfijn", "Walvis"}[:req.Quantity], nil
}

func (f *fakeThemes) Submit(_ context.Context, req *transfer.CreatePromptRequest) (*models.Theme, error) {
	if req.Title == "" {
		return nil, fmt.Errorf("%w: title is required", service.ErrInvalidInput)
	}
	return &models.Theme{ID: "theme-1", Title: req.Title, Status: models.ThemeStatusGenerating}, nil
}

func (f *fakeThemes) Fetch(_ context.Context, id string) (*transfer.ThemeView, error) {
	view, ok := f.themes[id]
	if !ok {
		return nil, fmt.Errorf("%w: theme %s", service.ErrNotFound, id)
	}
	return view, nil
}

type fakeReview struct{}

func (fakeReview) Approve(_ context.Context, req *transfer.ApprovePageRequest) (string, error) {
	if req.PageID == "missing" {
		return "", fmt.Errorf("%w: page missing", service.ErrNotFound)
	}
	return "approved-1", nil
}

func (fakeReview) Reject(_ context.Context, req *transfer.RejectPageRequest) error {
	if req.PageID == "approved" {
		return fmt.Errorf("%w: page approved", service.ErrApprovalPending)
	}
	return nil
}

func (fakeReview) GenerateSeo(_ context.Context, req *transfer.GenerateSeoRequest) (*transfer.SeoContent, error) {
	return &transfer.SeoContent{SeoTitle: req.Title + " - Gratis Kleurplaat"}, nil
}

type fakePublishing struct{}

func (fakePublishing) Sweep(context.Context) (*transfer.SweepResult, error) {
	return &transfer.SweepResult{Selected: 2, Published: 1, Failed: 1}, nil
}

func (fakePublishing) PublishOne(_ context.Context, id string) (int64, error) {
	switch id {
	case "done":
		return 0, service.ErrAlreadyPublished
	case "busy":
		return 0, service.ErrPublishInProgress
	}
	return 42, nil
}

func (fakePublishing) ListUnpublished(context.Context) ([]*models.ApprovedPage, error) {
	return []*models.ApprovedPage{{ID: "a1", Title: "Dolfijn"}}, nil
}

type fakeWordPress struct{}

func (fakeWordPress) ResolveCategory(context.Context, string) (int64, error)      { return 1, nil }
func (fakeWordPress) Publish(context.Context, *service.Post) (int64, error)        { return 1, nil }
func (fakeWordPress) SetPostMeta(context.Context, int64, map[string]string) error { return nil }
func (fakeWordPress) ListCategories(context.Context) ([]transfer.Category, error) {
	return []transfer.Category{{ID: 7, Name: "Dieren", Slug: "dieren"}}, nil
}
func (fakeWordPress) TestConnection(context.Context) *transfer.ConnectionStatus {
	return &transfer.ConnectionStatus{Status: true, Message: "Connected to WordPress"}
}

type fakeSettings struct {
	current *models.SchedulerSettings
}

func (f *fakeSettings) Get(context.Context) (*models.SchedulerSettings, error) { return f.current, nil }

func (f *fakeSettings) Update(_ context.Context, req *transfer.UpdateSettingsRequest) (*models.SchedulerSettings, error) {
	if req.DailyLimit == nil || req.PublishHour == nil {
		return nil, fmt.Errorf("%w: dailyLimit and publishHour are required", service.ErrInvalidInput)
	}
	updated := *f.current
	updated.DailyLimit = *req.DailyLimit
	updated.PublishHour = *req.PublishHour
	f.current = &updated
	return f.current, nil
}

type fakeScheduled struct{}

func (fakeScheduled) ListPending(context.Context) ([]*models.ScheduledPost, error) { return nil, nil }

type fakeSubscriber struct {
	events []transfer.ThemeEvent
}

func (f *fakeSubscriber) Subscribe(context.Context, string) (<-chan transfer.ThemeEvent, func(), error) {
	ch := make(chan transfer.ThemeEvent, len(f.events))
	for _, ev := range f.events {
		ch <- ev
	}
	return ch, func() {}, nil
}

func testApp(t *testing.T, subscriber *fakeSubscriber) *fiber.App {
	t.Helper()
	themes := &fakeThemes{themes: map[string]*transfer.ThemeView{
		"done": {Prompt: &models.Theme{ID: "done", Status: models.ThemeStatusGenerated}, Pages: []transfer.PageView{}},
		"live": {Prompt: &models.Theme{ID: "live", Status: models.ThemeStatusGenerating}, Pages: []transfer.PageView{}},
	}}
	settings := &fakeSettings{current: models.DefaultSchedulerSettings(8)}
	cfg := config.Config{SecretKey: "secret", APIKey: "operator-key", CookieName: "session"}

	app := fiber.New()
	app.Post("/auth/token", NewAuthHandler(cfg).IssueToken)

	theme := NewThemeHandler(themes, subscriber)
	app.Post("/api/ai/generate-ideas", theme.GenerateIdeas)
	app.Post("/api/ai/create-prompt", theme.CreatePrompt)
	app.Get("/api/ai/prompt/:promptId", theme.GetPrompt)
	app.Get("/api/ai/prompt/:promptId/events", theme.Events)

	review := NewReviewHandler(fakeReview{})
	app.Post("/api/ai/approve-page", review.ApprovePage)
	app.Post("/api/ai/reject-page", review.RejectPage)
	app.Post("/api/ai/generate-seo", review.GenerateSeo)

	publish := NewPublishHandler(fakePublishing{}, fakeWordPress{})
	app.Get("/api/wordpress/test-connection", publish.TestConnection)
	app.Get("/api/wordpress/categories", publish.ListCategories)
	app.Get("/api/wordpress/approved-pages", publish.ListApprovedPages)
	app.Post("/api/wordpress/publish-page", publish.PublishPage)
	app.Post("/api/wordpress/publish-batch", publish.PublishBatch)

	sh := NewSettingsHandler(settings, fakeScheduled{})
	app.Get("/api/scheduler/settings", sh.GetSettings)
	app.Post("/api/scheduler/settings", sh.UpdateSettings)
	app.Get("/api/scheduler/scheduled-posts", sh.ScheduledPosts)
	return app
}

func call(t *testing.T, app *fiber.App, method, target, body string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(data)
}

func TestThemeRoutes(t *testing.T) {
	app := testApp(t, &fakeSubscriber{})

	code, body := call(t, app, "POST", "/api/ai/generate-ideas", `{"quantity":2,"style":"oceaan"}`)
	assert.Equal(t, fiber.StatusOK, code)
	assert.JSONEq(t, `{"ideas":["Dolfijn","Walvis"]}`, body)

	code, body = call(t, app, "POST", "/api/ai/create-prompt", `{"title":"Oceaan Vrienden","quantity":2,"style":"cartoon","category":"Dieren"}`)
	assert.Equal(t, fiber.StatusOK, code)
	assert.JSONEq(t, `{"promptId":"theme-1","status":"generating"}`, body)

	code, body = call(t, app, "POST", "/api/ai/create-prompt", `{"quantity":2}`)
	assert.Equal(t, fiber.StatusBadRequest, code)
	assert.Contains(t, body, "title is required")

	code, _ = call(t, app, "POST", "/api/ai/create-prompt", `{not json`)
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, _ = call(t, app, "GET", "/api/ai/prompt/nope", "")
	assert.Equal(t, fiber.StatusNotFound, code)

	code, body = call(t, app, "GET", "/api/ai/prompt/done", "")
	assert.Equal(t, fiber.StatusOK, code)
	assert.Contains(t, body, `"prompt"`)
}

func TestEvents_FinishedThemeSendsSnapshotOnly(t *testing.T) {
	app := testApp(t, &fakeSubscriber{})

	req := httptest.NewRequest("GET", "/api/ai/prompt/done/events", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "event: "))
	assert.Contains(t, string(data), "event: snapshot\ndata: ")
}

func TestEvents_StreamsUntilThemeFinishes(t *testing.T) {
	app := testApp(t, &fakeSubscriber{events: []transfer.ThemeEvent{
		{ThemeID: "live", Type: transfer.EventPageCreated, PageID: "p1", PageNumber: 1, Status: models.PageStatusPending},
		{ThemeID: "live", Type: transfer.EventPageUpdated, PageID: "p1", PageNumber: 1, Status: models.PageStatusPendingReview},
		{ThemeID: "live", Type: transfer.EventTheme, Status: models.ThemeStatusGenerated},
	}})

	code, body := call(t, app, "GET", "/api/ai/prompt/live/events", "")
	assert.Equal(t, fiber.StatusOK, code)

	snapshot := strings.Index(body, "event: snapshot")
	created := strings.Index(body, "event: page_created")
	finished := strings.Index(body, "event: theme_status")
	require.True(t, snapshot >= 0 && created > snapshot && finished > created, body)
	assert.Contains(t, body, `"status":"generated"`)
}

func TestEvents_UnknownTheme(t *testing.T) {
	app := testApp(t, &fakeSubscriber{})
	code, _ := call(t, app, "GET", "/api/ai/prompt/nope/events", "")
	assert.Equal(t, fiber.StatusNotFound, code)
}

func TestReviewRoutes(t *testing.T) {
	app := testApp(t, &fakeSubscriber{})

	code, body := call(t, app, "POST", "/api/ai/approve-page", `{"pageId":"p1","title":"Dolfijn","category":"Dieren"}`)
	assert.Equal(t, fiber.StatusOK, code)
	assert.JSONEq(t, `{"approvedId":"approved-1","status":"approved"}`, body)

	code, _ = call(t, app, "POST", "/api/ai/approve-page", `{"pageId":"missing"}`)
	assert.Equal(t, fiber.StatusNotFound, code)

	code, body = call(t, app, "POST", "/api/ai/reject-page", `{"pageId":"p1","feedback":"te druk"}`)
	assert.Equal(t, fiber.StatusOK, code)
	assert.JSONEq(t, `{"status":"rejected"}`, body)

	code, _ = call(t, app, "POST", "/api/ai/reject-page", `{"pageId":"approved"}`)
	assert.Equal(t, fiber.StatusConflict, code)

	code, body = call(t, app, "POST", "/api/ai/generate-seo", `{"title":"Dolfijn","idea":"a dolphin"}`)
	assert.Equal(t, fiber.StatusOK, code)
	assert.Contains(t, body, `"seoTitle":"Dolfijn - Gratis Kleurplaat"`)
}

func TestPublishRoutes(t *testing.T) {
	app := testApp(t, &fakeSubscriber{})

	code, body := call(t, app, "GET", "/api/wordpress/categories", "")
	assert.Equal(t, fiber.StatusOK, code)
	assert.JSONEq(t, `{"categories":[{"id":7,"name":"Dieren","slug":"dieren","description":""}]}`, body)

	code, body = call(t, app, "GET", "/api/wordpress/test-connection", "")
	assert.Equal(t, fiber.StatusOK, code)
	assert.Contains(t, body, `"status":true`)

	code, body = call(t, app, "POST", "/api/wordpress/publish-page", `{"approvedPageId":"a1"}`)
	assert.Equal(t, fiber.StatusOK, code)
	assert.JSONEq(t, `{"postId":42,"status":"published"}`, body)

	code, _ = call(t, app, "POST", "/api/wordpress/publish-page", `{"approvedPageId":"done"}`)
	assert.Equal(t, fiber.StatusConflict, code)
	code, _ = call(t, app, "POST", "/api/wordpress/publish-page", `{"approvedPageId":"busy"}`)
	assert.Equal(t, fiber.StatusConflict, code)

	code, body = call(t, app, "POST", "/api/wordpress/publish-batch", "")
	assert.Equal(t, fiber.StatusOK, code)
	assert.JSONEq(t, `{"selected":2,"published":1,"failed":1,"skipped":0}`, body)

	code, body = call(t, app, "GET", "/api/wordpress/approved-pages", "")
	assert.Equal(t, fiber.StatusOK, code)
	var pages []map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &pages))
	assert.Len(t, pages, 1)
}

func TestSettingsRoutes(t *testing.T) {
	app := testApp(t, &fakeSubscriber{})

	code, body := call(t, app, "GET", "/api/scheduler/settings", "")
	assert.Equal(t, fiber.StatusOK, code)
	assert.Contains(t, body, `"daily_limit":50`)

	code, body = call(t, app, "POST", "/api/scheduler/settings", `{"dailyLimit":10,"publishHour":14}`)
	assert.Equal(t, fiber.StatusOK, code)
	assert.Contains(t, body, `"success":true`)
	assert.Contains(t, body, `"publish_hour":14`)

	code, _ = call(t, app, "POST", "/api/scheduler/settings", `{"dailyLimit":10}`)
	assert.Equal(t, fiber.StatusBadRequest, code)

	code, body = call(t, app, "GET", "/api/scheduler/scheduled-posts", "")
	assert.Equal(t, fiber.StatusOK, code)
	assert.JSONEq(t, `[]`, body)
}

func TestIssueToken(t *testing.T) {
	app := testApp(t, &fakeSubscriber{})

	code, _ := call(t, app, "POST", "/auth/token", `{"apiKey":"wrong"}`)
	assert.Equal(t, fiber.StatusUnauthorized, code)

	req := httptest.NewRequest("POST", "/auth/token", strings.NewReader(`{"apiKey":"operator-key"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out transfer.TokenResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	claims, err := utils.ValidateToken("secret", out.Token)
	require.NoError(t, err)
	assert.Equal(t, "operator", claims.Subject)

	var cookie string
	for _, c := range resp.Cookies() {
		if c.Name == "session" {
			cookie = c.Value
		}
	}
	assert.Equal(t, out.Token, cookie)
}
