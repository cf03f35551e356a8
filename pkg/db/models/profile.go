package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/danielcastellanos/peptidehub-backend/pkg/enums"
)

// Profile maps an external identity to its storefront account and role.
type Profile struct {
	ID         uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ExternalID string         `gorm:"column:external_id;type:text;not null;uniqueIndex"`
	Email      string         `gorm:"type:text;not null"`
	FirstName  string         `gorm:"column:first_name;not null;default:''"`
	LastName   string         `gorm:"column:last_name;not null;default:''"`
	Role       enums.UserRole `gorm:"column:role;type:text;not null;default:'customer'"`
	IsActive   bool           `gorm:"column:is_active;not null;default:true"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}
