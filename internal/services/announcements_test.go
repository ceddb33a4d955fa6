package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"lotus/internal/auth"
	"lotus/internal/database"
	"lotus/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnnouncementLifecycle(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	accounts := newTestAccounts(t, db)
	admin, err := accounts.Create(ctx, "U1", "admin#0")
	require.NoError(t, err)
	name := "Wakanda"
	admin.NationName = &name

	svc := NewAnnouncementService(db, accounts)

	first, err := svc.Create(ctx, admin, "Welcome", "Hello members")
	require.NoError(t, err)
	assert.NotZero(t, first.ID)
	assert.Equal(t, "Wakanda", first.Author)

	second, err := svc.Create(ctx, admin, "War", "Prepare")
	require.NoError(t, err)

	recent, err := svc.Recent(ctx, 5)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, second.ID, recent[0].ID)

	updated, err := svc.Update(ctx, admin, first.ID, strPtr("Welcome!"), nil)
	require.NoError(t, err)
	assert.Equal(t, "Welcome!", updated.Title)
	assert.Equal(t, "Hello members", updated.Content)

	got, err := svc.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Welcome!", got.Title)

	require.NoError(t, svc.Delete(ctx, admin, second.ID))
	_, err = svc.Get(ctx, second.ID)
	assert.ErrorIs(t, err, ErrAnnouncementNotFound)

	logs, err := accounts.RecentActivity(ctx, admin.ID, 10)
	require.NoError(t, err)
	var actions []string
	for _, l := range logs {
		actions = append(actions, l.Action+"|"+l.Details)
	}
	assert.ElementsMatch(t, []string{
		"Announcement Created|Title: Welcome",
		"Announcement Created|Title: War",
		"Announcement Updated|Updated: Welcome!",
		"Announcement Deleted|Deleted: War",
	}, actions)
}

func TestAnnouncementMissing(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	accounts := newTestAccounts(t, db)
	admin, err := accounts.Create(ctx, "U1", "admin#0")
	require.NoError(t, err)
	svc := NewAnnouncementService(db, accounts)

	_, err = svc.Update(ctx, admin, 404, strPtr("x"), nil)
	assert.ErrorIs(t, err, ErrAnnouncementNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, admin, 404), ErrAnnouncementNotFound)

	logs, err := accounts.RecentActivity(ctx, admin.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, logs)

	recent, err := svc.Recent(ctx, 5)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func TestAnnouncementUpdateSurvivesActivityFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db := database.Wrap(sqlDB)
	c, err := auth.NewCipher(auth.DeriveKey("test-secret"))
	require.NoError(t, err)
	svc := NewAnnouncementService(db, auth.NewAccountService(db, c))

	created := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, content, author, created_at, updated_at FROM announcements WHERE id = $1")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "content", "author", "created_at", "updated_at"}).
			AddRow(int64(3), "Old", "Body", "Wakanda", created, created))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE announcements SET title = $1, content = $2, updated_at = $3 WHERE id = $4")).
		WithArgs("New", "Body", sqlmock.AnyArg(), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO activity_logs")).
		WillReturnError(errors.New("disk full"))

	updated, err := svc.Update(context.Background(), &models.Account{ID: 1}, 3, strPtr("New"), nil)
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
	assert.True(t, updated.UpdatedAt.After(created))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnnouncementCreateFailureSkipsActivity(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	activity := &fakeActivity{}
	svc := NewAnnouncementService(database.Wrap(sqlDB), activity)

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO announcements")).
		WillReturnError(errors.New("connection reset"))

	_, err = svc.Create(context.Background(), &models.Account{ID: 1, DiscordUsername: "admin#0"}, "T", "C")
	assert.ErrorContains(t, err, "connection reset")
	assert.Empty(t, activity.entries)
	assert.NoError(t, mock.ExpectationsWereMet())
}
