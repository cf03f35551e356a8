package subgroups

import (
	"context"

	"github.com/danielcastellanos/peptidehub-backend/pkg/db/models"
	"github.com/danielcastellanos/peptidehub-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes sub-group and batch persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a sub-groups repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListActive loads every active sub-group with its host preloaded.
func (r *Repository) ListActive(ctx context.Context) ([]models.SubGroup, error) {
	var rows []models.SubGroup
	err := r.db.WithContext(ctx).
		Preload("Host").
		Where("is_active = ?", true).
		Order("region ASC, city ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByID loads a sub-group with its host.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.SubGroup, error) {
	var subGroup models.SubGroup
	if err := r.db.WithContext(ctx).Preload("Host").First(&subGroup, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &subGroup, nil
}

// FindByHost loads the sub-group a host runs.
func (r *Repository) FindByHost(ctx context.Context, hostProfileID uuid.UUID) (*models.SubGroup, error) {
	var subGroup models.SubGroup
	err := r.db.WithContext(ctx).
		Where("host_profile_id = ? AND is_active = ?", hostProfileID, true).
		First(&subGroup).Error
	if err != nil {
		return nil, err
	}
	return &subGroup, nil
}

// FindOpenBatch returns the newest batch for a sub-group whose status still
// accepts or collects orders, or gorm.ErrRecordNotFound.
func (r *Repository) FindOpenBatch(ctx context.Context, subGroupID uuid.UUID) (*models.SubGroupBatch, error) {
	var batch models.SubGroupBatch
	err := r.db.WithContext(ctx).
		Where("sub_group_id = ? AND status IN ?", subGroupID,
			[]enums.BatchStatus{enums.BatchStatusActive, enums.BatchStatusPaymentCollection}).
		Order("opens_at DESC").
		First(&batch).Error
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

// FindBatch loads a batch by id.
func (r *Repository) FindBatch(ctx context.Context, id uuid.UUID) (*models.SubGroupBatch, error) {
	var batch models.SubGroupBatch
	if err := r.db.WithContext(ctx).First(&batch, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &batch, nil
}

// CountBatchesByStatus counts a sub-group's batches in the given status.
func (r *Repository) CountBatchesByStatus(ctx context.Context, subGroupID uuid.UUID, status enums.BatchStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.SubGroupBatch{}).
		Where("sub_group_id = ? AND status = ?", subGroupID, status).
		Count(&count).Error
	return count, err
}

// CreateBatch inserts a new batch.
func (r *Repository) CreateBatch(ctx context.Context, batch *models.SubGroupBatch) (*models.SubGroupBatch, error) {
	if err := r.db.WithContext(ctx).Create(batch).Error; err != nil {
		return nil, err
	}
	return batch, nil
}

// TransitionBatchStatus moves a batch between statuses, guarded on the
// expected current one.
func (r *Repository) TransitionBatchStatus(ctx context.Context, batchID uuid.UUID, from []enums.BatchStatus, to enums.BatchStatus) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.SubGroupBatch{}).
		Where("id = ? AND status IN ?", batchID, from).
		UpdateColumn("status", to)
	return result.RowsAffected, result.Error
}
