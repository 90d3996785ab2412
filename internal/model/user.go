package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role constants for the three actor types
const (
	RoleSupervisor = "supervisor"
	RoleAdmin      = "admin"
	RoleVendor     = "vendor"
)

// User represents any actor account: supervisors request orders, admins
// approve and complete them, vendors fulfil them.
type User struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string         `gorm:"type:varchar(255);not null" json:"name"`
	Email      string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password   string         `gorm:"type:varchar(255);not null" json:"-"` // Omit password from JSON requests/responses
	Role       string         `gorm:"type:varchar(20);not null;index" json:"role"`
	LocationID *uuid.UUID     `gorm:"type:uuid;index" json:"location_id"` // Required for supervisors and vendors, nil for admins
	Location   *Location      `gorm:"foreignKey:LocationID" json:"location,omitempty"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"` // GORM soft delete
}

// BeforeCreate assigns a UUID so the model also works on engines without
// gen_random_uuid (the sqlite test driver in particular).
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// ValidRole reports whether role is one of the three known actor roles.
func ValidRole(role string) bool {
	return role == RoleSupervisor || role == RoleAdmin || role == RoleVendor
}
