package service

import (
	"context"
	"testing"

	"stocktrack/internal/model"
	"stocktrack/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newUserService(db *gorm.DB) UserService {
	users := repository.NewUserRepository(db)
	activity := NewActivityService(repository.NewActivityRepository(db))
	return NewUserService(users, activity, repository.NewTransactionManager(db))
}

func activeAdminCount(t *testing.T, db *gorm.DB) int64 {
	t.Helper()

	var n int64
	require.NoError(t, db.Model(&model.User{}).
		Where("role = ? AND status = ?", model.RoleAdmin, model.StatusActive).
		Count(&n).Error)
	return n
}

func TestUserService_CreateUser_ForcesEmployeeRole(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	admin := seedUser(t, db, "root", "rootpass", model.RoleAdmin, model.StatusActive)
	svc := newUserService(db)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, admin, CreateUserRequest{
		Username: "budi",
		Password: "secret1",
		Role:     model.RoleAdmin, // must be ignored
		Status:   model.StatusActive,
	})
	require.NoError(t, err)
	assert.Equal(t, model.RoleEmployee, created.Role)
	assert.Equal(t, model.StatusActive, created.Status)

	// The new credentials work and yield the forced role.
	auth := newAuthService(db)
	res, err := auth.Login(ctx, LoginRequest{Username: "budi", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, model.RoleEmployee, res.User.Role)
}

func TestUserService_CreateUser_DuplicateUsername(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	admin := seedUser(t, db, "root", "rootpass", model.RoleAdmin, model.StatusActive)
	svc := newUserService(db)
	ctx := context.Background()

	_, err := svc.CreateUser(ctx, admin, CreateUserRequest{Username: "budi", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, admin, CreateUserRequest{Username: "budi", Password: "other66"})
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestUserService_CreateUser_Validation(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	admin := seedUser(t, db, "root", "rootpass", model.RoleAdmin, model.StatusActive)
	svc := newUserService(db)
	ctx := context.Background()

	tests := []struct {
		name string
		req  CreateUserRequest
	}{
		{name: "username too short", req: CreateUserRequest{Username: "ab", Password: "secret1"}},
		{name: "password too short", req: CreateUserRequest{Username: "valid", Password: "short"}},
		{name: "bad status", req: CreateUserRequest{Username: "valid", Password: "secret1", Status: "frozen"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateUser(ctx, admin, tt.req)
			require.Error(t, err)
		})
	}
}

func TestUserService_SetStatus_LastActiveAdminRejected(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	admin := seedUser(t, db, "root", "rootpass", model.RoleAdmin, model.StatusActive)
	svc := newUserService(db)

	_, err := svc.SetStatus(context.Background(), admin, admin.ID, SetStatusRequest{Status: model.StatusSuspended})
	require.ErrorIs(t, err, ErrLastActiveAdmin)
	assert.Equal(t, int64(1), activeAdminCount(t, db))
}

func TestUserService_SetStatus_SuspendAdminWithBackup(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	first := seedUser(t, db, "root", "rootpass", model.RoleAdmin, model.StatusActive)
	second := seedUser(t, db, "root2", "rootpass", model.RoleAdmin, model.StatusActive)
	svc := newUserService(db)
	ctx := context.Background()

	// With two active admins either one may be suspended.
	res, err := svc.SetStatus(ctx, first, second.ID, SetStatusRequest{Status: model.StatusSuspended})
	require.NoError(t, err)
	assert.Equal(t, model.StatusSuspended, res.Status)

	// The remaining active admin is now protected again.
	_, err = svc.SetStatus(ctx, first, first.ID, SetStatusRequest{Status: model.StatusSuspended})
	require.ErrorIs(t, err, ErrLastActiveAdmin)
	assert.Equal(t, int64(1), activeAdminCount(t, db))
}

func TestUserService_SetStatus_ReactivateAndAudit(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	admin := seedUser(t, db, "root", "rootpass", model.RoleAdmin, model.StatusActive)
	emp := seedUser(t, db, "worker", "workpass", model.RoleEmployee, model.StatusSuspended)
	svc := newUserService(db)

	res, err := svc.SetStatus(context.Background(), admin, emp.ID, SetStatusRequest{Status: model.StatusActive})
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, res.Status)
	assert.Equal(t, int64(1), countActivity(t, db, model.ActionSetUserState))
}

func TestUserService_DeleteUser_SelfRejected(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	first := seedUser(t, db, "root", "rootpass", model.RoleAdmin, model.StatusActive)
	seedUser(t, db, "root2", "rootpass", model.RoleAdmin, model.StatusActive)
	svc := newUserService(db)

	// Rejected even though another active admin exists.
	err := svc.DeleteUser(context.Background(), first, first.ID)
	require.ErrorIs(t, err, ErrSelfDelete)
}

func TestUserService_DeleteUser_LastActiveAdminRejected(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	admin := seedUser(t, db, "root", "rootpass", model.RoleAdmin, model.StatusActive)
	other := seedUser(t, db, "boss", "bosspass", model.RoleAdmin, model.StatusSuspended)
	svc := newUserService(db)

	// Acting as the suspended admin's peer: target is the only ACTIVE admin.
	err := svc.DeleteUser(context.Background(), other, admin.ID)
	require.ErrorIs(t, err, ErrLastActiveAdmin)

	var still model.User
	require.NoError(t, db.First(&still, admin.ID).Error)
}

func TestUserService_DeleteUser_EmployeeAndAudit(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	admin := seedUser(t, db, "root", "rootpass", model.RoleAdmin, model.StatusActive)
	emp := seedUser(t, db, "worker", "workpass", model.RoleEmployee, model.StatusActive)
	svc := newUserService(db)

	require.NoError(t, svc.DeleteUser(context.Background(), admin, emp.ID))

	err := db.First(&model.User{}, emp.ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.Equal(t, int64(1), countActivity(t, db, model.ActionDeleteUser))
}

func TestUserService_UpdateUsername_Conflict(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	admin := seedUser(t, db, "root", "rootpass", model.RoleAdmin, model.StatusActive)
	emp := seedUser(t, db, "worker", "workpass", model.RoleEmployee, model.StatusActive)
	svc := newUserService(db)

	_, err := svc.UpdateUsername(context.Background(), admin, emp.ID, UpdateUsernameRequest{Username: "root"})
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestUserService_ChangePassword_NewCredentialsWork(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	admin := seedUser(t, db, "root", "rootpass", model.RoleAdmin, model.StatusActive)
	emp := seedUser(t, db, "worker", "workpass", model.RoleEmployee, model.StatusActive)
	svc := newUserService(db)
	ctx := context.Background()

	require.NoError(t, svc.ChangePassword(ctx, admin, emp.ID, ChangePasswordRequest{Password: "freshpass"}))

	auth := newAuthService(db)
	_, err := auth.Login(ctx, LoginRequest{Username: "worker", Password: "workpass"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = auth.Login(ctx, LoginRequest{Username: "worker", Password: "freshpass"})
	require.NoError(t, err)
}
