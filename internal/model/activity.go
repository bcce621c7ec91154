package model

import (
	"time"
)

// Action label constants for the activity log.
const (
	ActionLogin        = "LOGIN"
	ActionCreateItem   = "CREATE_ITEM"
	ActionUpdateItem   = "UPDATE_ITEM"
	ActionDeleteItem   = "DELETE_ITEM"
	ActionCreateDefect = "CREATE_DEFECT_LOG"
	ActionUpdateDefect = "UPDATE_DEFECT_LOG"
	ActionDeleteDefect = "DELETE_DEFECT_LOG"
	ActionCreateUser   = "CREATE_USER"
	ActionUpdateUser   = "UPDATE_USER"
	ActionSetUserState = "SET_USER_STATUS"
	ActionSetPassword  = "CHANGE_PASSWORD"
	ActionDeleteUser   = "DELETE_USER"
)

// ActivityLog tracks who did what and when. Rows are append-only: the
// application never updates or deletes them. Username is a point-in-time
// snapshot so the trail survives user deletion; UserID goes null when the
// referenced user is removed.
type ActivityLog struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UserID   *uint     `gorm:"index" json:"user_id"`
	User     *User     `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"-"`
	Username string    `gorm:"type:varchar(50);not null" json:"username"`
	Action   string    `gorm:"type:varchar(50);not null;index" json:"action"`
	Details  *string   `gorm:"type:text" json:"details"`
	LoggedAt time.Time `gorm:"autoCreateTime;index" json:"logged_at"`
}

// TableName keeps the historical table name used by the schema.
func (ActivityLog) TableName() string {
	return "activity_log"
}
