package profiles

import (
	"time"

	"github.com/danielcastellanos/peptidehub-backend/pkg/db/models"
	"github.com/danielcastellanos/peptidehub-backend/pkg/enums"
	"github.com/google/uuid"
)

// ProfileDTO is the API-facing view of a stored profile.
type ProfileDTO struct {
	ID         uuid.UUID      `json:"id"`
	ExternalID string         `json:"external_id"`
	Email      string         `json:"email"`
	FirstName  string         `json:"first_name"`
	LastName   string         `json:"last_name"`
	Role       enums.UserRole `json:"role"`
	IsActive   bool           `json:"is_active"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// IsHost reports whether the profile can manage sub-group batches.
func (p *ProfileDTO) IsHost() bool {
	return p.Role == enums.UserRoleHost || p.Role == enums.UserRoleAdmin
}

// IsAdmin reports whether the profile holds the admin role.
func (p *ProfileDTO) IsAdmin() bool {
	return p.Role == enums.UserRoleAdmin
}

func toDTO(m *models.Profile) *ProfileDTO {
	if m == nil {
		return nil
	}
	return &ProfileDTO{
		ID:         m.ID,
		ExternalID: m.ExternalID,
		Email:      m.Email,
		FirstName:  m.FirstName,
		LastName:   m.LastName,
		Role:       m.Role,
		IsActive:   m.IsActive,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
