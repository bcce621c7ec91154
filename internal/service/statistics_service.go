package service

import (
	"context"

	"stocktrack/internal/model"

	"gorm.io/gorm"
)

// LowStockThreshold marks items the dashboard flags for reordering.
const LowStockThreshold = 5

type DashboardStatistics struct {
	TotalItems          int64            `json:"total_items"`
	TotalStockQuantity  int64            `json:"total_stock_quantity"`
	LowStockItems       int64            `json:"low_stock_items"`
	DefectsByStatus     map[string]int64 `json:"defects_by_status"`
	TotalDefectiveUnits int64            `json:"total_defective_units"`
	ActiveUsers         int64            `json:"active_users"`
	SuspendedUsers      int64            `json:"suspended_users"`
	ActivityEntries     int64            `json:"activity_entries"`
}

// StatisticsService serves the read-only dashboard aggregates. Everything is
// recomputed per request; the dashboard poll is a convenience, not a
// correctness mechanism.
type StatisticsService interface {
	GetDashboard(ctx context.Context) (DashboardStatistics, error)
}

type statisticsService struct {
	db *gorm.DB
}

func NewStatisticsService(db *gorm.DB) StatisticsService {
	return &statisticsService{db: db}
}

func (s *statisticsService) GetDashboard(ctx context.Context) (DashboardStatistics, error) {
	var stats DashboardStatistics
	db := s.db.WithContext(ctx)

	if err := db.Model(&model.InventoryItem{}).Count(&stats.TotalItems).Error; err != nil {
		return stats, err
	}

	var totalStock struct {
		Value int64
	}
	if err := db.Model(&model.InventoryItem{}).
		Select("COALESCE(SUM(quantity), 0) as value").
		Scan(&totalStock).Error; err != nil {
		return stats, err
	}
	stats.TotalStockQuantity = totalStock.Value

	if err := db.Model(&model.InventoryItem{}).
		Where("quantity < ?", LowStockThreshold).
		Count(&stats.LowStockItems).Error; err != nil {
		return stats, err
	}

	var defectCounts []struct {
		Status string
		Total  int64
	}
	if err := db.Model(&model.DefectiveItemLog{}).
		Select("status, COUNT(*) as total").
		Group("status").
		Scan(&defectCounts).Error; err != nil {
		return stats, err
	}
	stats.DefectsByStatus = make(map[string]int64, len(defectCounts))
	for _, row := range defectCounts {
		stats.DefectsByStatus[row.Status] = row.Total
	}

	var defectUnits struct {
		Value int64
	}
	if err := db.Model(&model.DefectiveItemLog{}).
		Select("COALESCE(SUM(quantity_defective), 0) as value").
		Scan(&defectUnits).Error; err != nil {
		return stats, err
	}
	stats.TotalDefectiveUnits = defectUnits.Value

	if err := db.Model(&model.User{}).
		Where("status = ?", model.StatusActive).
		Count(&stats.ActiveUsers).Error; err != nil {
		return stats, err
	}
	if err := db.Model(&model.User{}).
		Where("status = ?", model.StatusSuspended).
		Count(&stats.SuspendedUsers).Error; err != nil {
		return stats, err
	}

	if err := db.Model(&model.ActivityLog{}).Count(&stats.ActivityEntries).Error; err != nil {
		return stats, err
	}

	return stats, nil
}
