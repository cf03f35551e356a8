package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pkgauth "github.com/danielcastellanos/peptidehub-backend/pkg/auth"
	"github.com/danielcastellanos/peptidehub-backend/pkg/db"
	"github.com/danielcastellanos/peptidehub-backend/pkg/db/models"
	"github.com/danielcastellanos/peptidehub-backend/pkg/enums"
	pkgerrors "github.com/danielcastellanos/peptidehub-backend/pkg/errors"
	"github.com/danielcastellanos/peptidehub-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProfileRepository is the persistence surface the service depends on.
type ProfileRepository interface {
	FindByExternalID(ctx context.Context, externalID string) (*models.Profile, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	Create(ctx context.Context, profile *models.Profile) (*models.Profile, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role enums.UserRole) error
}

// Service resolves identities to profiles and manages role assignments.
type Service interface {
	Resolve(ctx context.Context, identity pkgauth.Identity) (*ProfileDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*ProfileDTO, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role enums.UserRole) (*ProfileDTO, error)
}

type service struct {
	repo ProfileRepository
	logg *logger.Logger
}

// NewService builds a profiles service backed by the provided repository.
func NewService(repo ProfileRepository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("profile repository required")
	}
	return &service{repo: repo, logg: logg}, nil
}

// Resolve returns the profile for an identity, creating it with the default
// customer role on first sight. A concurrent first-resolve loses the insert
// to a unique violation and re-reads the winner's row.
func (s *service) Resolve(ctx context.Context, identity pkgauth.Identity) (*ProfileDTO, error) {
	externalID := strings.TrimSpace(identity.ExternalID)
	if externalID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "external id is required")
	}

	existing, err := s.repo.FindByExternalID(ctx, externalID)
	if err == nil {
		return toDTO(existing), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load profile")
	}

	created, err := s.repo.Create(ctx, &models.Profile{
		ExternalID: externalID,
		Email:      identity.Email,
		FirstName:  identity.FirstName,
		LastName:   identity.LastName,
		Role:       enums.DefaultUserRole,
		IsActive:   true,
	})
	if err == nil {
		if s.logg != nil {
			s.logg.Info(s.logg.WithProfileID(ctx, created.ID.String()), "profile created")
		}
		return toDTO(created), nil
	}

	if db.IsUniqueViolation(err, "profiles_external_id_key") {
		winner, readErr := s.repo.FindByExternalID(ctx, externalID)
		if readErr != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, readErr, "re-read profile after insert race")
		}
		return toDTO(winner), nil
	}

	return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create profile")
}

// GetByID loads a single profile.
func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*ProfileDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "profile id is required")
	}
	profile, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load profile")
	}
	return toDTO(profile), nil
}

// UpdateRole assigns a new role and returns the refreshed profile.
func (s *service) UpdateRole(ctx context.Context, id uuid.UUID, role enums.UserRole) (*ProfileDTO, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "profile id is required")
	}
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid role %q", role))
	}

	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load profile")
	}

	if err := s.repo.UpdateRole(ctx, id, role); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update profile role")
	}

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload profile")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"profile_id": id.String(),
			"new_role":   string(role),
		}), "profile role updated")
	}
	return toDTO(updated), nil
}
