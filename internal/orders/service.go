package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/danielcastellanos/peptidehub-backend/pkg/db/models"
	"github.com/danielcastellanos/peptidehub-backend/pkg/enums"
	pkgerrors "github.com/danielcastellanos/peptidehub-backend/pkg/errors"
	"github.com/danielcastellanos/peptidehub-backend/pkg/logger"
	"github.com/danielcastellanos/peptidehub-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderRepository is the persistence surface the service depends on.
type OrderRepository interface {
	ListByProfile(ctx context.Context, profileID uuid.UUID, params pagination.Params) ([]models.Order, error)
	ListForSummary(ctx context.Context, profileID uuid.UUID) ([]models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status enums.PaymentStatus) error
}

// Service reads a profile's order history and applies status transitions.
type Service interface {
	ListForProfile(ctx context.Context, profileID uuid.UUID, params pagination.Params) (*PageDTO, error)
	Summary(ctx context.Context, profileID uuid.UUID) (*SummaryDTO, error)
	GetByID(ctx context.Context, id uuid.UUID) (*OrderDTO, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (*OrderDTO, error)
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status enums.PaymentStatus) (*OrderDTO, error)
}

type service struct {
	repo OrderRepository
	logg *logger.Logger
}

// NewService builds an orders service backed by the provided repository.
func NewService(repo OrderRepository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	return &service{repo: repo, logg: logg}, nil
}

// ListForProfile pages a profile's orders newest-first.
func (s *service) ListForProfile(ctx context.Context, profileID uuid.UUID, params pagination.Params) (*PageDTO, error) {
	if profileID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "profile id is required")
	}

	rows, err := s.repo.ListByProfile(ctx, profileID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	page := &PageDTO{Orders: make([]OrderDTO, 0, len(rows))}
	for i := range rows {
		if i == limit {
			last := rows[limit-1]
			page.NextCursor = pagination.EncodeCursor(last.CreatedAt, last.ID)
			break
		}
		page.Orders = append(page.Orders, toOrderDTO(&rows[i]))
	}
	return page, nil
}

// Summary derives the dashboard figures: all orders count toward the total,
// but only paid orders count toward the spend.
func (s *service) Summary(ctx context.Context, profileID uuid.UUID) (*SummaryDTO, error) {
	if profileID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "profile id is required")
	}

	rows, err := s.repo.ListForSummary(ctx, profileID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order summary")
	}

	spent := decimal.Zero
	for _, row := range rows {
		if row.PaymentStatus == enums.PaymentStatusPaid {
			spent = spent.Add(row.TotalAmount)
		}
	}
	return &SummaryDTO{TotalOrders: len(rows), TotalSpent: spent}, nil
}

// GetByID loads a single order.
func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	order, err := s.loadOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toOrderDTO(order)
	return &dto, nil
}

// UpdateStatus applies a fulfillment-status transition.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (*OrderDTO, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid order status %q", status))
	}
	if _, err := s.loadOrder(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order status")
	}
	return s.reload(ctx, id, "status", string(status))
}

// UpdatePaymentStatus applies a payment-status transition.
func (s *service) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status enums.PaymentStatus) (*OrderDTO, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment status %q", status))
	}
	if _, err := s.loadOrder(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.UpdatePaymentStatus(ctx, id, status); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update payment status")
	}
	return s.reload(ctx, id, "payment_status", string(status))
}

func (s *service) loadOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	return order, nil
}

func (s *service) reload(ctx context.Context, id uuid.UUID, field, value string) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload order")
	}
	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"order_id": id.String(),
			field:      value,
		}), "order transition applied")
	}
	dto := toOrderDTO(order)
	return &dto, nil
}
