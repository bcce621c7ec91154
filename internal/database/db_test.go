package database

import (
	"testing"

	"stocktrack/internal/model"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_pragma=foreign_keys(1)"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	return db
}

func adminCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()

	var n int64
	require.NoError(t, db.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&n).Error)
	return n
}

func TestBootstrap_SeedsDefaultAdminOnce(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)

	require.NoError(t, Bootstrap(db))
	require.Equal(t, int64(1), adminCount(t, db))

	var admin model.User
	require.NoError(t, db.Where("username = ?", DefaultAdminUsername).First(&admin).Error)
	assert.Equal(t, model.StatusActive, admin.Status)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(DefaultAdminPassword)))

	// A second run is a no-op.
	require.NoError(t, Bootstrap(db))
	assert.Equal(t, int64(1), adminCount(t, db))
}

func TestBootstrap_SkipsWhenAdminExists(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("irrelevant"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, db.Create(&model.User{
		Username:     "existing",
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		Status:       model.StatusSuspended,
	}).Error)

	require.NoError(t, Bootstrap(db))

	// Even a suspended admin row suppresses the seed.
	assert.Equal(t, int64(1), adminCount(t, db))
	err = db.Where("username = ?", DefaultAdminUsername).First(&model.User{}).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
