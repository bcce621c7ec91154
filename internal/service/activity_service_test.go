package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"stocktrack/internal/model"
	"stocktrack/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivityService_Record_NilActorSkipped(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewActivityService(repository.NewActivityRepository(db))

	svc.Record(context.Background(), nil, model.ActionLogin, "should not be stored")

	assert.Zero(t, countActivity(t, db, ""))
}

func TestActivityService_Record_OneRowPerCall(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	actor := seedUser(t, db, "root", "rootpass", model.RoleAdmin, model.StatusActive)
	svc := NewActivityService(repository.NewActivityRepository(db))
	ctx := context.Background()

	svc.Record(ctx, actor, model.ActionCreateItem, "Created item \"Gear\"")
	svc.Record(ctx, actor, model.ActionDeleteItem, "")

	assert.Equal(t, int64(2), countActivity(t, db, ""))

	var entry model.ActivityLog
	require.NoError(t, db.Where("action = ?", model.ActionCreateItem).First(&entry).Error)
	require.NotNil(t, entry.UserID)
	assert.Equal(t, actor.ID, *entry.UserID)
	assert.Equal(t, "root", entry.Username)
	assert.False(t, entry.LoggedAt.IsZero())

	// Empty details are stored as null, not as an empty string. A fresh
	// struct keeps the previous row's primary key out of the query.
	var second model.ActivityLog
	require.NoError(t, db.Where("action = ?", model.ActionDeleteItem).First(&second).Error)
	assert.Nil(t, second.Details)
}

func TestActivityService_WriteCSV_QuotingRoundTrip(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	actor := seedUser(t, db, "root", "rootpass", model.RoleAdmin, model.StatusActive)
	svc := NewActivityService(repository.NewActivityRepository(db))
	ctx := context.Background()

	awkward := "renamed \"Gear, v2\"\nsecond line"
	svc.Record(ctx, actor, model.ActionUpdateItem, awkward)

	var buf bytes.Buffer
	require.NoError(t, svc.WriteCSV(ctx, &buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, []string{"id", "user_id", "username", "action", "details", "logged_at"}, records[0])
	assert.Equal(t, "root", records[1][2])
	assert.Equal(t, model.ActionUpdateItem, records[1][3])
	assert.Equal(t, awkward, records[1][4])
}

func TestActivityService_ExportFilename(t *testing.T) {
	t.Parallel()

	svc := NewActivityService(nil)
	now := time.Date(2025, time.March, 7, 23, 59, 0, 0, time.Local)

	assert.Equal(t, "activity-log-2025-03-07.csv", svc.ExportFilename(now))
}

func TestActivityService_List_NewestFirst(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	actor := seedUser(t, db, "root", "rootpass", model.RoleAdmin, model.StatusActive)
	svc := NewActivityService(repository.NewActivityRepository(db))
	ctx := context.Background()

	first := &model.ActivityLog{UserID: &actor.ID, Username: actor.Username, Action: model.ActionLogin, LoggedAt: time.Now().Add(-time.Hour)}
	require.NoError(t, db.Create(first).Error)
	second := &model.ActivityLog{UserID: &actor.ID, Username: actor.Username, Action: model.ActionCreateItem, LoggedAt: time.Now()}
	require.NoError(t, db.Create(second).Error)

	entries, total, err := svc.List(ctx, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, entries, 2)
	assert.Equal(t, model.ActionCreateItem, entries[0].Action)
	assert.Equal(t, model.ActionLogin, entries[1].Action)
}
