package subgroups

import (
	"time"

	"github.com/danielcastellanos/peptidehub-backend/pkg/db/models"
	"github.com/danielcastellanos/peptidehub-backend/pkg/enums"
	"github.com/google/uuid"
)

// RegionDTO is one active sub-group enriched with its host and, when the host
// has one, the single open batch.
type RegionDTO struct {
	ID             uuid.UUID `json:"id"`
	Region         string    `json:"region"`
	City           string    `json:"city"`
	ContactChannel string    `json:"contact_channel"`
	Host           *HostDTO  `json:"host"`
	ActiveBatch    *BatchDTO `json:"active_batch"`
}

// HostDTO is the host identity shown on the regions page.
type HostDTO struct {
	ProfileID uuid.UUID `json:"profile_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
}

// BatchDTO is the API-facing view of a pooled-order batch.
type BatchDTO struct {
	ID           uuid.UUID         `json:"id"`
	SubGroupID   uuid.UUID         `json:"sub_group_id"`
	Name         string            `json:"name"`
	TargetVials  int               `json:"target_vials"`
	CurrentVials int               `json:"current_vials"`
	Status       enums.BatchStatus `json:"status"`
	OpensAt      time.Time         `json:"opens_at"`
	ClosesAt     *time.Time        `json:"closes_at,omitempty"`
}

func toBatchDTO(m *models.SubGroupBatch) *BatchDTO {
	if m == nil {
		return nil
	}
	return &BatchDTO{
		ID:           m.ID,
		SubGroupID:   m.SubGroupID,
		Name:         m.Name,
		TargetVials:  m.TargetVials,
		CurrentVials: m.CurrentVials,
		Status:       m.Status,
		OpensAt:      m.OpensAt,
		ClosesAt:     m.ClosesAt,
	}
}

func toRegionDTO(m *models.SubGroup, batch *models.SubGroupBatch) RegionDTO {
	dto := RegionDTO{
		ID:             m.ID,
		Region:         m.Region,
		City:           m.City,
		ContactChannel: m.ContactChannel,
		ActiveBatch:    toBatchDTO(batch),
	}
	if m.HostProfileID != nil {
		host := &HostDTO{ProfileID: *m.HostProfileID}
		if m.Host != nil {
			host.FirstName = m.Host.FirstName
			host.LastName = m.Host.LastName
		}
		dto.Host = host
	}
	return dto
}
