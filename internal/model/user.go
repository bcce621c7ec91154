package model

import (
	"time"
)

// Role constants
const (
	RoleAdmin    = "admin"
	RoleEmployee = "employee"
)

// Account status constants
const (
	StatusActive    = "active"
	StatusSuspended = "suspended"
)

// User represents the central account entity for authentication and authorization.
// At least one active admin must exist at all times; the repository enforces
// this with guarded status/delete statements.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"` // Omit hash from JSON requests/responses
	Role         string    `gorm:"type:varchar(20);not null;default:'employee'" json:"role"`
	Status       string    `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsActive reports whether the account may hold a live session.
func (u *User) IsActive() bool {
	return u.Status == StatusActive
}

// ValidStatus reports whether status is one of the known account states.
func ValidStatus(status string) bool {
	return status == StatusActive || status == StatusSuspended
}
