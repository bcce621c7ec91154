package model

import (
	"time"
)

// Defect status constants. Transitions are unrestricted; any status may move
// to any other.
const (
	DefectStatusPendingReview      = "pending_review"
	DefectStatusReturnedToSupplier = "returned_to_supplier"
	DefectStatusDisposed           = "disposed"
	DefectStatusRepaired           = "repaired"
	DefectStatusAwaitingParts      = "awaiting_parts"
)

// ValidDefectStatus reports whether status is one of the known defect states.
func ValidDefectStatus(status string) bool {
	switch status {
	case DefectStatusPendingReview,
		DefectStatusReturnedToSupplier,
		DefectStatusDisposed,
		DefectStatusRepaired,
		DefectStatusAwaitingParts:
		return true
	}
	return false
}

// DefectiveItemLog records defective units of an inventory item. ItemName is
// captured at log time so the record stays readable after the item is renamed.
// The foreign key restricts item deletion while defect records reference it.
type DefectiveItemLog struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	InventoryItemID   *uint          `gorm:"index" json:"inventory_item_id"`
	InventoryItem     *InventoryItem `gorm:"foreignKey:InventoryItemID;constraint:OnDelete:RESTRICT" json:"-"`
	ItemName          string         `gorm:"type:varchar(255);not null" json:"item_name"`
	QuantityDefective int            `gorm:"type:int;not null;check:quantity_defective > 0" json:"quantity_defective"`
	Reason            string         `gorm:"type:text;not null" json:"reason"`
	Status            string         `gorm:"type:varchar(30);not null;default:'pending_review'" json:"status"`
	Notes             *string        `gorm:"type:text" json:"notes"`
	LoggedAt          time.Time      `gorm:"autoCreateTime" json:"logged_at"`
	UpdatedAt         time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName keeps the historical table name used by the schema.
func (DefectiveItemLog) TableName() string {
	return "defective_items_log"
}
