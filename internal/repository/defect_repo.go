package repository

import (
	"context"

	"stocktrack/internal/model"

	"gorm.io/gorm"
)

// DefectRepository defines the interface for data access of DefectiveItemLog entities
type DefectRepository interface {
	Create(ctx context.Context, entry *model.DefectiveItemLog) error
	GetByID(ctx context.Context, id uint) (*model.DefectiveItemLog, error)
	List(ctx context.Context, page, limit int) ([]model.DefectiveItemLog, int64, error)
	Update(ctx context.Context, entry *model.DefectiveItemLog) error
	Delete(ctx context.Context, id uint) (int64, error)
}

type defectRepository struct {
	db *gorm.DB
}

// NewDefectRepository returns a new instance of DefectRepository
func NewDefectRepository(db *gorm.DB) DefectRepository {
	return &defectRepository{db: db}
}

func (r *defectRepository) Create(ctx context.Context, entry *model.DefectiveItemLog) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *defectRepository) GetByID(ctx context.Context, id uint) (*model.DefectiveItemLog, error) {
	var entry model.DefectiveItemLog
	if err := GetDB(ctx, r.db).First(&entry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *defectRepository) List(ctx context.Context, page, limit int) ([]model.DefectiveItemLog, int64, error) {
	var entries []model.DefectiveItemLog
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.DefectiveItemLog{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("logged_at desc").Offset(offset).Limit(limit).Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

func (r *defectRepository) Update(ctx context.Context, entry *model.DefectiveItemLog) error {
	return GetDB(ctx, r.db).Save(entry).Error
}

func (r *defectRepository) Delete(ctx context.Context, id uint) (int64, error) {
	res := GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.DefectiveItemLog{})
	return res.RowsAffected, res.Error
}
