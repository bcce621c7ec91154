package service

import (
	"testing"

	"stocktrack/internal/database"
	"stocktrack/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var testSecret = []byte("test-session-secret-at-least-32-bytes!!")

// newTestDB opens a private in-memory database with foreign keys enforced and
// the full schema migrated.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_pragma=foreign_keys(1)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	return db
}

func seedUser(t *testing.T, db *gorm.DB, username, password, role, status string) *model.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	user := &model.User{
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
		Status:       status,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func countActivity(t *testing.T, db *gorm.DB, action string) int64 {
	t.Helper()

	var n int64
	q := db.Model(&model.ActivityLog{})
	if action != "" {
		q = q.Where("action = ?", action)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}
