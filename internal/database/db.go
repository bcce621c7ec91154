package database

import (
	"log"

	"stocktrack/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Default admin credentials seeded when no admin account exists yet.
const (
	DefaultAdminUsername = "admin"
	DefaultAdminPassword = "admin123"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}

// Migrate self-provisions the schema for all core models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.InventoryItem{},
		&model.DefectiveItemLog{},
		&model.ActivityLog{},
	)
}

// Bootstrap seeds one default admin account if and only if zero admin-role
// rows exist, so a fresh deployment is never locked out.
func Bootstrap(db *gorm.DB) error {
	var admins int64
	if err := db.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&admins).Error; err != nil {
		return err
	}
	if admins > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := &model.User{
		Username:     DefaultAdminUsername,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		Status:       model.StatusActive,
	}
	if err := db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("Seeded default admin account %q, change its password immediately", DefaultAdminUsername)
	return nil
}
