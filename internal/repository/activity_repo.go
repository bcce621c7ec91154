package repository

import (
	"context"

	"stocktrack/internal/model"

	"gorm.io/gorm"
)

// ActivityRepository appends and reads the audit trail. Entries are never
// updated or deleted by the application.
type ActivityRepository interface {
	Log(ctx context.Context, entry *model.ActivityLog) error
	List(ctx context.Context, page, limit int) ([]model.ActivityLog, int64, error)
	ListAll(ctx context.Context) ([]model.ActivityLog, error)
}

type activityRepository struct {
	db *gorm.DB
}

// NewActivityRepository returns a new instance of ActivityRepository
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Log(ctx context.Context, entry *model.ActivityLog) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *activityRepository) List(ctx context.Context, page, limit int) ([]model.ActivityLog, int64, error) {
	var entries []model.ActivityLog
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.ActivityLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("logged_at desc").Offset(offset).Limit(limit).Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

// ListAll returns the full trail, newest first, for export.
func (r *activityRepository) ListAll(ctx context.Context) ([]model.ActivityLog, error) {
	var entries []model.ActivityLog
	if err := GetDB(ctx, r.db).Order("logged_at desc").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
