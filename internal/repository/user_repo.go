package repository

import (
	"context"
	"time"

	"stocktrack/internal/model"

	"gorm.io/gorm"
)

// UserRepository defines the interface for data access of User entities
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id uint) (*model.User, error)
	GetActiveByID(ctx context.Context, id uint) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	List(ctx context.Context, page, limit int) ([]model.User, int64, error)
	Update(ctx context.Context, user *model.User) error
	CountActiveAdmins(ctx context.Context) (int64, error)
	SuspendUnlessLastActiveAdmin(ctx context.Context, id uint) (int64, error)
	DeleteUnlessLastActiveAdmin(ctx context.Context, id uint) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new instance of UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return GetDB(ctx, r.db).Create(user).Error
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := GetDB(ctx, r.db).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetActiveByID resolves a user only while their account is active. Session
// verification goes through here on every request so suspension takes effect
// immediately.
func (r *userRepository) GetActiveByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	err := GetDB(ctx, r.db).First(&user, "id = ? AND status = ?", id, model.StatusActive).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := GetDB(ctx, r.db).First(&user, "username = ?", username).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, page, limit int) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("id").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	return GetDB(ctx, r.db).Save(user).Error
}

func (r *userRepository) CountActiveAdmins(ctx context.Context) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.User{}).
		Where("role = ? AND status = ?", model.RoleAdmin, model.StatusActive).
		Count(&count).Error
	return count, err
}

// SuspendUnlessLastActiveAdmin flips a user to suspended with a single guarded
// statement: the row is only touched when the target is not the last remaining
// active admin, so concurrent requests cannot race past a separate count check.
// Returns the number of affected rows (0 = missing row or guard refused).
func (r *userRepository) SuspendUnlessLastActiveAdmin(ctx context.Context, id uint) (int64, error) {
	res := GetDB(ctx, r.db).Exec(`
		UPDATE users SET status = ?, updated_at = ?
		WHERE id = ?
		  AND NOT (
			role = ? AND status = ?
			AND (SELECT COUNT(*) FROM users u
			     WHERE u.role = ? AND u.status = ? AND u.id <> users.id) = 0
		  )`,
		model.StatusSuspended, time.Now(), id,
		model.RoleAdmin, model.StatusActive,
		model.RoleAdmin, model.StatusActive,
	)
	return res.RowsAffected, res.Error
}

// DeleteUnlessLastActiveAdmin hard-deletes a user under the same guard as
// SuspendUnlessLastActiveAdmin.
func (r *userRepository) DeleteUnlessLastActiveAdmin(ctx context.Context, id uint) (int64, error) {
	res := GetDB(ctx, r.db).Exec(`
		DELETE FROM users
		WHERE id = ?
		  AND NOT (
			role = ? AND status = ?
			AND (SELECT COUNT(*) FROM users u
			     WHERE u.role = ? AND u.status = ? AND u.id <> users.id) = 0
		  )`,
		id,
		model.RoleAdmin, model.StatusActive,
		model.RoleAdmin, model.StatusActive,
	)
	return res.RowsAffected, res.Error
}
