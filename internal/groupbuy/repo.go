package groupbuy

import (
	"context"

	"github.com/danielcastellanos/peptidehub-backend/pkg/db/models"
	"github.com/danielcastellanos/peptidehub-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository exposes batch and order persistence for group-buy submissions.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a group-buy repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx rebinds the repo to a transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) BatchRepository {
	return &Repository{db: tx}
}

// FindBatch loads a batch by id.
func (r *Repository) FindBatch(ctx context.Context, id uuid.UUID) (*models.SubGroupBatch, error) {
	var batch models.SubGroupBatch
	if err := r.db.WithContext(ctx).First(&batch, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &batch, nil
}

// FindSubGroup loads a sub-group by id.
func (r *Repository) FindSubGroup(ctx context.Context, id uuid.UUID) (*models.SubGroup, error) {
	var subGroup models.SubGroup
	if err := r.db.WithContext(ctx).First(&subGroup, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &subGroup, nil
}

// IncrementVials adds vials to a batch only while it is still active and
// returns the post-update total via RETURNING, so concurrent submissions each
// observe the value their own increment produced. Zero affected rows means
// the batch left the active state between the caller's read and this update.
func (r *Repository) IncrementVials(ctx context.Context, batchID uuid.UUID, vials int) (int, int64, error) {
	var updated models.SubGroupBatch
	result := r.db.WithContext(ctx).
		Model(&updated).
		Clauses(clause.Returning{Columns: []clause.Column{{Name: "current_vials"}}}).
		Where("id = ? AND status = ?", batchID, enums.BatchStatusActive).
		UpdateColumn("current_vials", gorm.Expr("current_vials + ?", vials))
	return updated.CurrentVials, result.RowsAffected, result.Error
}

// TransitionStatus moves a batch from one status to another, guarded on the
// expected current status.
func (r *Repository) TransitionStatus(ctx context.Context, batchID uuid.UUID, from, to enums.BatchStatus) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.SubGroupBatch{}).
		Where("id = ? AND status = ?", batchID, from).
		UpdateColumn("status", to)
	return result.RowsAffected, result.Error
}

// CreateOrder inserts an order with its line items.
func (r *Repository) CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}
