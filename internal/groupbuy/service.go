package groupbuy

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danielcastellanos/peptidehub-backend/pkg/db/models"
	"github.com/danielcastellanos/peptidehub-backend/pkg/enums"
	pkgerrors "github.com/danielcastellanos/peptidehub-backend/pkg/errors"
	"github.com/danielcastellanos/peptidehub-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BatchRepository is the persistence surface the service depends on.
type BatchRepository interface {
	WithTx(tx *gorm.DB) BatchRepository
	FindBatch(ctx context.Context, id uuid.UUID) (*models.SubGroupBatch, error)
	FindSubGroup(ctx context.Context, id uuid.UUID) (*models.SubGroup, error)
	IncrementVials(ctx context.Context, batchID uuid.UUID, vials int) (int, int64, error)
	TransitionStatus(ctx context.Context, batchID uuid.UUID, from, to enums.BatchStatus) (int64, error)
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// SubmitLine is one product line in a pooled-order submission.
type SubmitLine struct {
	ProductID *uuid.UUID
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
	Vials     int
}

// SubmitInput is the payload for a pooled-order submission.
type SubmitInput struct {
	ProfileID     *uuid.UUID
	CustomerName  string
	ContactNumber string
	SubGroupID    uuid.UUID
	BatchID       uuid.UUID
	Lines         []SubmitLine
}

// SubmitResult reports the created order and the batch state after aggregation.
type SubmitResult struct {
	OrderID      uuid.UUID         `json:"order_id"`
	OrderCode    string            `json:"order_code"`
	TotalAmount  decimal.Decimal   `json:"total_amount"`
	TotalVials   int               `json:"total_vials"`
	BatchStatus  enums.BatchStatus `json:"batch_status"`
	CurrentVials int               `json:"current_vials"`
	TargetVials  int               `json:"target_vials"`
}

// Service accepts pooled-order submissions against sub-group batches.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*SubmitResult, error)
}

type service struct {
	repo BatchRepository
	tx   txRunner
	logg *logger.Logger
}

// NewService builds a group-buy service backed by the provided stack.
func NewService(repo BatchRepository, tx txRunner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("batch repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, logg: logg}, nil
}

// Submit runs the whole pooled-order flow in one transaction: validate the
// batch and sub-group, add the submission's vials to the batch through a
// guarded update, create the order with its lines, and move the batch to
// payment collection once the target is reached. A batch that leaves the
// active state mid-flight fails the submission; nothing is retried.
func (s *service) Submit(ctx context.Context, input SubmitInput) (*SubmitResult, error) {
	if err := validateSubmitInput(input); err != nil {
		return nil, err
	}

	totalVials := 0
	totalAmount := decimal.Zero
	items := make([]models.OrderItem, 0, len(input.Lines))
	for _, line := range input.Lines {
		lineVials := line.Vials * line.Quantity
		lineTotal := line.UnitPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
		totalVials += lineVials
		totalAmount = totalAmount.Add(lineTotal)
		items = append(items, models.OrderItem{
			ProductID:   line.ProductID,
			Name:        line.Name,
			UnitPrice:   line.UnitPrice,
			Quantity:    line.Quantity,
			Vials:       lineVials,
			TotalAmount: lineTotal,
		})
	}

	var result *SubmitResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		subGroup, err := repo.FindSubGroup(ctx, input.SubGroupID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "sub-group not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load sub-group")
		}
		if !subGroup.IsActive {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "sub-group is not active")
		}

		batch, err := repo.FindBatch(ctx, input.BatchID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "batch not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load batch")
		}
		if batch.SubGroupID != input.SubGroupID {
			return pkgerrors.New(pkgerrors.CodeValidation, "batch does not belong to the sub-group")
		}
		if batch.Status != enums.BatchStatusActive {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("batch is %s and no longer accepts orders", batch.Status))
		}

		currentVials, affected, err := repo.IncrementVials(ctx, batch.ID, totalVials)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "aggregate batch vials")
		}
		if affected == 0 {
			// Lost the race with a close/cancel between the read and the update.
			return pkgerrors.New(pkgerrors.CodeStateConflict, "batch is no longer accepting orders")
		}

		order := &models.Order{
			OrderCode:     newOrderCode(),
			ProfileID:     input.ProfileID,
			CustomerName:  strings.TrimSpace(input.CustomerName),
			ContactNumber: strings.TrimSpace(input.ContactNumber),
			PurchaseMode:  enums.PurchaseModeGroupBuy,
			SubGroupID:    &subGroup.ID,
			BatchID:       &batch.ID,
			TotalAmount:   totalAmount,
			PaymentStatus: enums.PaymentStatusPending,
			Status:        enums.OrderStatusPending,
			Items:         items,
		}
		created, err := repo.CreateOrder(ctx, order)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create pooled order")
		}

		// currentVials came back from the guarded UPDATE itself, so it
		// reflects every increment committed before ours.
		status := batch.Status
		if currentVials >= batch.TargetVials {
			if _, err := repo.TransitionStatus(ctx, batch.ID, enums.BatchStatusActive, enums.BatchStatusPaymentCollection); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "transition batch to payment collection")
			}
			status = enums.BatchStatusPaymentCollection
		}

		result = &SubmitResult{
			OrderID:      created.ID,
			OrderCode:    created.OrderCode,
			TotalAmount:  totalAmount,
			TotalVials:   totalVials,
			BatchStatus:  status,
			CurrentVials: currentVials,
			TargetVials:  batch.TargetVials,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"order_code":    result.OrderCode,
			"batch_id":      input.BatchID.String(),
			"total_vials":   result.TotalVials,
			"current_vials": result.CurrentVials,
			"batch_status":  string(result.BatchStatus),
		}), "pooled order accepted")
	}
	return result, nil
}

func validateSubmitInput(input SubmitInput) error {
	if strings.TrimSpace(input.CustomerName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	if strings.TrimSpace(input.ContactNumber) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "contact number is required")
	}
	if input.SubGroupID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "sub-group id is required")
	}
	if input.BatchID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "batch id is required")
	}
	if len(input.Lines) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one line")
	}
	for _, line := range input.Lines {
		if strings.TrimSpace(line.Name) == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "line name is required")
		}
		if line.Quantity < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "line quantity must be at least 1")
		}
		if line.Vials < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "line vials must be at least 1")
		}
		if line.UnitPrice.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "line unit price must be non-negative")
		}
	}
	return nil
}

// newOrderCode produces codes like GB-20260901-3F2A9C.
func newOrderCode() string {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		// Timestamp-only fallback keeps orders flowing if entropy fails.
		return fmt.Sprintf("GB-%s", time.Now().UTC().Format("20060102-150405.000"))
	}
	return fmt.Sprintf("GB-%s-%s", time.Now().UTC().Format("20060102"), strings.ToUpper(hex.EncodeToString(buf)))
}
