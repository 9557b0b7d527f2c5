package repository

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/maheshrc27/colorpress/internal/database"
	"github.com/maheshrc27/colorpress/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(database.DriverSQLite, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, database.DriverSQLite))
	t.Cleanup(func() { db.Close() })
	return db
}

var base = time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

func seedTheme(t *testing.T, db *sql.DB, id string) *models.Theme {
	t.Helper()
	theme := &models.Theme{
		ID:        id,
		Title:     "Oceaan Vrienden",
		Quantity:  2,
		Style:     "cartoon",
		Category:  "Dieren",
		Status:    models.ThemeStatusPending,
		CreatedAt: base,
	}
	require.NoError(t, NewThemeRepository(db).Create(context.Background(), theme))
	return theme
}

func seedPage(t *testing.T, db *sql.DB, themeID, id string, n int) *models.Page {
	t.Helper()
	page := &models.Page{
		ID:         id,
		ThemeID:    themeID,
		PageNumber: n,
		Idea:       fmt.Sprintf("idea %d", n),
		Status:     models.PageStatusPending,
		CreatedAt:  base,
		UpdatedAt:  base,
	}
	require.NoError(t, NewPageRepository(db).Create(context.Background(), page))
	return page
}

func seedApproved(t *testing.T, db *sql.DB, pageID, id string, createdAt time.Time) *models.ApprovedPage {
	t.Helper()
	ap := &models.ApprovedPage{
		ID:        id,
		PageID:    pageID,
		Title:     "Dolfijn " + id,
		Slug:      "dolfijn-" + id,
		Category:  "Dieren",
		CreatedAt: createdAt,
	}
	require.NoError(t, NewApprovedPageRepository(db).Create(context.Background(), nil, ap))
	return ap
}

func TestThemeRepository(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewThemeRepository(db)

	seedTheme(t, db, "t1")

	got, err := repo.GetByID(ctx, "t1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Oceaan Vrienden", got.Title)
	assert.Equal(t, 2, got.Quantity)

	require.NoError(t, repo.UpdateStatus(ctx, "t1", models.ThemeStatusGenerated))
	got, err = repo.GetByID(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, models.ThemeStatusGenerated, got.Status)

	missing, err := repo.GetByID(ctx, "nope")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPageRepository_ListAndSetImage(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewPageRepository(db)

	seedTheme(t, db, "t1")
	seedPage(t, db, "t1", "p2", 2)
	seedPage(t, db, "t1", "p1", 1)

	require.NoError(t, repo.SetImage(ctx, "p1", "/images/p1.png", models.PageStatusPendingReview))
	require.NoError(t, repo.SetImage(ctx, "p2", "", models.PageStatusImageFailed))

	pages, err := repo.ListByThemeID(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, "p1", pages[0].ID)
	assert.Equal(t, "/images/p1.png", pages[0].ImageURL)
	assert.Equal(t, models.PageStatusPendingReview, pages[0].Status)
	assert.Equal(t, models.PageStatusImageFailed, pages[1].Status)

	none, err := repo.ListByThemeID(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestPageRepository_RejectIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewPageRepository(db)

	seedTheme(t, db, "t1")
	seedPage(t, db, "t1", "p1", 1)

	ok, err := repo.Reject(ctx, "p1", "te donker")
	require.NoError(t, err)
	assert.True(t, ok)

	first, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, models.PageStatusRejected, first.Status)
	assert.Equal(t, "te donker", first.Feedback)

	ok, err = repo.Reject(ctx, "p1", "te donker")
	require.NoError(t, err)
	assert.True(t, ok)

	second, err := repo.GetByID(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, first.UpdatedAt.Equal(second.UpdatedAt))

	ok, err = repo.Reject(ctx, "missing", "x")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestApprovedPageRepository_CreateInTransaction(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewApprovedPageRepository(db)

	seedTheme(t, db, "t1")
	seedPage(t, db, "t1", "p1", 1)
	require.NoError(t, NewPageRepository(db).SetImage(ctx, "p1", "/images/p1.png", models.PageStatusPendingReview))

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, tx, &models.ApprovedPage{
		ID: "a1", PageID: "p1", Title: "Dolfijn", Slug: "dolfijn", Category: "Dieren", CreatedAt: base,
	}))
	require.NoError(t, tx.Rollback())

	got, err := repo.GetByID(ctx, "a1")
	require.NoError(t, err)
	assert.Nil(t, got)

	seedApproved(t, db, "p1", "a1", base)
	got, err = repo.GetByID(ctx, "a1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "/images/p1.png", got.ImageURL)
	assert.False(t, got.Published)
	assert.Nil(t, got.PostID())
}

func TestApprovedPageRepository_ListPublishableIsFIFO(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewApprovedPageRepository(db)

	seedTheme(t, db, "t1")
	seedPage(t, db, "t1", "p1", 1)
	seedApproved(t, db, "p1", "a3", base.Add(3*time.Minute))
	seedApproved(t, db, "p1", "a1", base.Add(1*time.Minute))
	seedApproved(t, db, "p1", "a2", base.Add(2*time.Minute))

	now := base.Add(time.Hour)
	stale := now.Add(-30 * time.Minute)

	batch, err := repo.ListPublishable(ctx, stale, 2)
	require.NoError(t, err)
	require.Len(t, batch, 2)
	assert.Equal(t, "a1", batch[0].ID)
	assert.Equal(t, "a2", batch[1].ID)

	queue, err := repo.ListUnpublished(ctx)
	require.NoError(t, err)
	require.Len(t, queue, 3)
	assert.Equal(t, "a3", queue[0].ID)
}

func TestApprovedPageRepository_ClaimPublishRelease(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewApprovedPageRepository(db)

	seedTheme(t, db, "t1")
	seedPage(t, db, "t1", "p1", 1)
	seedApproved(t, db, "p1", "a1", base)
	seedApproved(t, db, "p1", "a2", base.Add(time.Minute))

	now := base.Add(time.Hour)
	stale := now.Add(-30 * time.Minute)

	ok, err := repo.Claim(ctx, "a1", now, stale)
	require.NoError(t, err)
	assert.True(t, ok)

	// A second sweep cannot take the same row while the claim is live.
	ok, err = repo.Claim(ctx, "a1", now, stale)
	require.NoError(t, err)
	assert.False(t, ok)

	batch, err := repo.ListPublishable(ctx, stale, 10)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, "a2", batch[0].ID)

	// Once the claim is older than the expiry it can be taken over.
	later := now.Add(time.Hour)
	ok, err = repo.Claim(ctx, "a1", later, later.Add(-30*time.Minute))
	require.NoError(t, err)
	assert.True(t, ok)

	ap, err := repo.GetByID(ctx, "a1")
	require.NoError(t, err)
	require.NoError(t, ap.MarkPublished(101, later))
	require.NoError(t, repo.MarkPublished(ctx, ap))

	ap, err = repo.GetByID(ctx, "a1")
	require.NoError(t, err)
	assert.True(t, ap.Published)
	assert.Equal(t, int64(101), *ap.PostID())
	assert.False(t, ap.ClaimedAt.Valid)

	ok, err = repo.Claim(ctx, "a1", later, later)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = repo.Claim(ctx, "a2", now, stale)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, repo.Release(ctx, "a2"))
	ap, err = repo.GetByID(ctx, "a2")
	require.NoError(t, err)
	assert.False(t, ap.ClaimedAt.Valid)
}

func TestApprovedPageRepository_CountUnpublishedByPage(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewApprovedPageRepository(db)

	seedTheme(t, db, "t1")
	seedPage(t, db, "t1", "p1", 1)
	seedPage(t, db, "t1", "p2", 2)
	seedApproved(t, db, "p1", "a1", base)
	a2 := seedApproved(t, db, "p1", "a2", base.Add(time.Minute))

	n, err := repo.CountUnpublishedByPage(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, a2.MarkPublished(7, base.Add(time.Hour)))
	require.NoError(t, repo.MarkPublished(ctx, a2))
	n, err = repo.CountUnpublishedByPage(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = repo.CountUnpublishedByPage(ctx, "p2")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestApprovedPageRepository_MarkPublishedRequiresPostID(t *testing.T) {
	repo := NewApprovedPageRepository(nil)
	err := repo.MarkPublished(context.Background(), &models.ApprovedPage{ID: "a1", Published: true})
	assert.ErrorIs(t, err, models.ErrPublishedWithoutPost)
}

func TestSettingsRepository(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	repo := NewSettingsRepository(db)

	got, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, repo.Create(ctx, models.DefaultSchedulerSettings(6)))
	// Creating again keeps the first row.
	require.NoError(t, repo.Create(ctx, models.DefaultSchedulerSettings(9)))

	got, err = repo.Get(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 6, got.PublishHour)
	assert.Equal(t, models.DefaultDailyLimit, got.DailyLimit)
	assert.True(t, got.Enabled)
	assert.False(t, got.LastRun.Valid)

	got.DailyLimit = 10
	got.PublishMinute = 45
	got.Enabled = false
	require.NoError(t, repo.Update(ctx, got))
	require.NoError(t, repo.SetLastRun(ctx, base))

	got, err = repo.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, got.DailyLimit)
	assert.Equal(t, 45, got.PublishMinute)
	assert.False(t, got.Enabled)
	assert.True(t, got.LastRun.Valid)
	assert.True(t, base.Equal(got.LastRun.Time))
}

func TestScheduledPostRepository_ListPending(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	seedTheme(t, db, "t1")
	seedPage(t, db, "t1", "p1", 1)
	seedApproved(t, db, "p1", "a1", base)

	_, err := db.ExecContext(ctx,
		`INSERT INTO scheduled_posts (id, approved_page_id, scheduled_for, status, published) VALUES ($1, $2, $3, $4, FALSE)`,
		"s1", "a1", base.Add(24*time.Hour), models.ScheduledPostStatusPending)
	require.NoError(t, err)

	posts, err := NewScheduledPostRepository(db).ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Dolfijn a1", posts[0].Title)
	assert.False(t, posts[0].Published)
}
