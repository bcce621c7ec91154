package repository

import (
	"context"

	"stocktrack/internal/model"

	"gorm.io/gorm"
)

// InventoryRepository defines the interface for data access of InventoryItem entities
type InventoryRepository interface {
	Create(ctx context.Context, item *model.InventoryItem) error
	GetByID(ctx context.Context, id uint) (*model.InventoryItem, error)
	List(ctx context.Context, page, limit int, search string) ([]model.InventoryItem, int64, error)
	Update(ctx context.Context, item *model.InventoryItem) error
	Delete(ctx context.Context, id uint) (int64, error)
}

type inventoryRepository struct {
	db *gorm.DB
}

// NewInventoryRepository returns a new instance of InventoryRepository
func NewInventoryRepository(db *gorm.DB) InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) Create(ctx context.Context, item *model.InventoryItem) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *inventoryRepository) GetByID(ctx context.Context, id uint) (*model.InventoryItem, error) {
	var item model.InventoryItem
	if err := GetDB(ctx, r.db).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *inventoryRepository) List(ctx context.Context, page, limit int, search string) ([]model.InventoryItem, int64, error) {
	var items []model.InventoryItem
	var total int64

	db := GetDB(ctx, r.db).Model(&model.InventoryItem{})
	if search != "" {
		db = db.Where("name LIKE ?", "%"+search+"%")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Order("id").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *inventoryRepository) Update(ctx context.Context, item *model.InventoryItem) error {
	return GetDB(ctx, r.db).Save(item).Error
}

// Delete hard-deletes an item. A foreign-key violation bubbles up untranslated
// so the service layer can map it to a domain conflict.
func (r *inventoryRepository) Delete(ctx context.Context, id uint) (int64, error) {
	res := GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.InventoryItem{})
	return res.RowsAffected, res.Error
}
