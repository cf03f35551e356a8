package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/danielcastellanos/peptidehub-backend/pkg/enums"
)

// SubGroupBatch is one pooled purchase window for a sub-group.
//
// CurrentVials only moves through the guarded aggregation update in the
// group-buy service; it is monotonically non-decreasing while the batch is
// active.
type SubGroupBatch struct {
	ID           uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SubGroupID   uuid.UUID         `gorm:"column:sub_group_id;type:uuid;not null"`
	SubGroup     *SubGroup         `gorm:"foreignKey:SubGroupID"`
	Name         string            `gorm:"type:text;not null"`
	TargetVials  int               `gorm:"column:target_vials;not null"`
	CurrentVials int               `gorm:"column:current_vials;not null;default:0"`
	Status       enums.BatchStatus `gorm:"column:status;type:text;not null;default:'active'"`
	OpensAt      time.Time         `gorm:"column:opens_at;not null"`
	ClosesAt     *time.Time        `gorm:"column:closes_at"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
