package models

import (
	"time"

	"github.com/google/uuid"
)

// SubGroup is a regional buying collective run by a host.
type SubGroup struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Region         string     `gorm:"type:text;not null"`
	City           string     `gorm:"type:text;not null"`
	ContactChannel string     `gorm:"column:contact_channel;not null;default:''"`
	IsActive       bool       `gorm:"column:is_active;not null;default:true"`
	HostProfileID  *uuid.UUID `gorm:"column:host_profile_id;type:uuid"`
	Host           *Profile   `gorm:"foreignKey:HostProfileID"`
	CreatedAt      time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
