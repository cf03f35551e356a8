package subgroups

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danielcastellanos/peptidehub-backend/pkg/db/models"
	"github.com/danielcastellanos/peptidehub-backend/pkg/enums"
	pkgerrors "github.com/danielcastellanos/peptidehub-backend/pkg/errors"
	"github.com/danielcastellanos/peptidehub-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SubGroupRepository is the persistence surface the service depends on.
type SubGroupRepository interface {
	ListActive(ctx context.Context) ([]models.SubGroup, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.SubGroup, error)
	FindByHost(ctx context.Context, hostProfileID uuid.UUID) (*models.SubGroup, error)
	FindOpenBatch(ctx context.Context, subGroupID uuid.UUID) (*models.SubGroupBatch, error)
	FindBatch(ctx context.Context, id uuid.UUID) (*models.SubGroupBatch, error)
	CountBatchesByStatus(ctx context.Context, subGroupID uuid.UUID, status enums.BatchStatus) (int64, error)
	CreateBatch(ctx context.Context, batch *models.SubGroupBatch) (*models.SubGroupBatch, error)
	TransitionBatchStatus(ctx context.Context, batchID uuid.UUID, from []enums.BatchStatus, to enums.BatchStatus) (int64, error)
}

// CreateBatchInput is the payload for opening a new pooled-order window.
type CreateBatchInput struct {
	Name        string
	TargetVials int
	OpensAt     time.Time
	ClosesAt    *time.Time
}

// Service serves the regions listing and the host batch tools.
type Service interface {
	ListRegions(ctx context.Context) ([]RegionDTO, error)
	CreateBatch(ctx context.Context, hostProfileID uuid.UUID, input CreateBatchInput) (*BatchDTO, error)
	CloseBatch(ctx context.Context, hostProfileID, batchID uuid.UUID) (*BatchDTO, error)
	CancelBatch(ctx context.Context, hostProfileID, batchID uuid.UUID) (*BatchDTO, error)
}

type service struct {
	repo SubGroupRepository
	logg *logger.Logger
}

// NewService builds a sub-groups service backed by the provided repository.
func NewService(repo SubGroupRepository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sub-group repository required")
	}
	return &service{repo: repo, logg: logg}, nil
}

// ListRegions returns every active sub-group with its host and open batch.
// A sub-group without a host is listed with a nil batch and no batch lookup
// is issued for it.
func (s *service) ListRegions(ctx context.Context) ([]RegionDTO, error) {
	subGroups, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list sub-groups")
	}

	regions := make([]RegionDTO, 0, len(subGroups))
	for i := range subGroups {
		sg := &subGroups[i]

		var batch *models.SubGroupBatch
		if sg.HostProfileID != nil {
			batch, err = s.repo.FindOpenBatch(ctx, sg.ID)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load open batch")
			}
		}
		regions = append(regions, toRegionDTO(sg, batch))
	}
	return regions, nil
}

// CreateBatch opens a new pooled-order window for the host's sub-group. A
// host may only run one active batch at a time.
func (s *service) CreateBatch(ctx context.Context, hostProfileID uuid.UUID, input CreateBatchInput) (*BatchDTO, error) {
	if hostProfileID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "host profile id is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "batch name is required")
	}
	if input.TargetVials < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "target vials must be at least 1")
	}
	if input.ClosesAt != nil && !input.ClosesAt.After(input.OpensAt) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "closes_at must be after opens_at")
	}

	subGroup, err := s.hostSubGroup(ctx, hostProfileID)
	if err != nil {
		return nil, err
	}

	active, err := s.repo.CountBatchesByStatus(ctx, subGroup.ID, enums.BatchStatusActive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count active batches")
	}
	if active > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "host already has an active batch")
	}

	opensAt := input.OpensAt
	if opensAt.IsZero() {
		opensAt = time.Now().UTC()
	}

	batch, err := s.repo.CreateBatch(ctx, &models.SubGroupBatch{
		SubGroupID:  subGroup.ID,
		Name:        strings.TrimSpace(input.Name),
		TargetVials: input.TargetVials,
		Status:      enums.BatchStatusActive,
		OpensAt:     opensAt,
		ClosesAt:    input.ClosesAt,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create batch")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithBatchID(ctx, batch.ID.String()), "batch opened")
	}
	return toBatchDTO(batch), nil
}

// CloseBatch completes an open batch owned by the host.
func (s *service) CloseBatch(ctx context.Context, hostProfileID, batchID uuid.UUID) (*BatchDTO, error) {
	return s.transition(ctx, hostProfileID, batchID,
		[]enums.BatchStatus{enums.BatchStatusActive, enums.BatchStatusPaymentCollection},
		enums.BatchStatusCompleted, "batch is not open")
}

// CancelBatch cancels an open batch owned by the host.
func (s *service) CancelBatch(ctx context.Context, hostProfileID, batchID uuid.UUID) (*BatchDTO, error) {
	return s.transition(ctx, hostProfileID, batchID,
		[]enums.BatchStatus{enums.BatchStatusActive, enums.BatchStatusPaymentCollection},
		enums.BatchStatusCancelled, "batch is not open")
}

func (s *service) transition(ctx context.Context, hostProfileID, batchID uuid.UUID, from []enums.BatchStatus, to enums.BatchStatus, conflictMsg string) (*BatchDTO, error) {
	if batchID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "batch id is required")
	}

	subGroup, err := s.hostSubGroup(ctx, hostProfileID)
	if err != nil {
		return nil, err
	}

	batch, err := s.repo.FindBatch(ctx, batchID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "batch not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load batch")
	}
	if batch.SubGroupID != subGroup.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "batch belongs to another sub-group")
	}

	affected, err := s.repo.TransitionBatchStatus(ctx, batchID, from, to)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "transition batch")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, conflictMsg)
	}

	updated, err := s.repo.FindBatch(ctx, batchID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload batch")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"batch_id":     batchID.String(),
			"batch_status": string(to),
		}), "batch transition applied")
	}
	return toBatchDTO(updated), nil
}

func (s *service) hostSubGroup(ctx context.Context, hostProfileID uuid.UUID) (*models.SubGroup, error) {
	if hostProfileID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "host profile id is required")
	}
	subGroup, err := s.repo.FindByHost(ctx, hostProfileID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no sub-group is assigned to this host")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load host sub-group")
	}
	return subGroup, nil
}
