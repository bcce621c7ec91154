package model

import (
	"time"
)

// InventoryItem represents a tracked stock item. Quantity is a plain count
// and never goes negative.
type InventoryItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Quantity  int       `gorm:"type:int;not null;default:0;check:quantity >= 0" json:"quantity"`
	Category  string    `gorm:"type:varchar(100);not null" json:"category"`
	Location  *string   `gorm:"type:varchar(255)" json:"location"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
