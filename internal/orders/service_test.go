package orders

import (
	"context"
	"testing"
	"time"

	"github.com/danielcastellanos/peptidehub-backend/pkg/db/models"
	"github.com/danielcastellanos/peptidehub-backend/pkg/enums"
	pkgerrors "github.com/danielcastellanos/peptidehub-backend/pkg/errors"
	"github.com/danielcastellanos/peptidehub-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func TestSummaryCountsAllOrdersButSumsPaidOnly(t *testing.T) {
	t.Parallel()

	profileID := uuid.New()
	repo := &stubOrderRepo{
		summaryRows: []models.Order{
			{ID: uuid.New(), TotalAmount: decimal.NewFromInt(100), PaymentStatus: enums.PaymentStatusPaid},
			{ID: uuid.New(), TotalAmount: decimal.NewFromInt(50), PaymentStatus: enums.PaymentStatusPending},
			{ID: uuid.New(), TotalAmount: decimal.NewFromInt(25), PaymentStatus: enums.PaymentStatusPaid},
		},
	}
	svc := newTestOrderService(t, repo)

	summary, err := svc.Summary(context.Background(), profileID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.TotalOrders != 3 {
		t.Fatalf("expected 3 total orders, got %d", summary.TotalOrders)
	}
	if !summary.TotalSpent.Equal(decimal.NewFromInt(125)) {
		t.Fatalf("expected total spent 125, got %s", summary.TotalSpent)
	}
}

func TestSummaryExcludesFailedAndRefunded(t *testing.T) {
	t.Parallel()

	repo := &stubOrderRepo{
		summaryRows: []models.Order{
			{ID: uuid.New(), TotalAmount: decimal.NewFromInt(80), PaymentStatus: enums.PaymentStatusFailed},
			{ID: uuid.New(), TotalAmount: decimal.NewFromInt(60), PaymentStatus: enums.PaymentStatusRefunded},
		},
	}
	svc := newTestOrderService(t, repo)

	summary, err := svc.Summary(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.TotalOrders != 2 {
		t.Fatalf("expected 2 total orders, got %d", summary.TotalOrders)
	}
	if !summary.TotalSpent.IsZero() {
		t.Fatalf("expected zero spend, got %s", summary.TotalSpent)
	}
}

func TestListForProfileMapsBatchAffiliation(t *testing.T) {
	t.Parallel()

	batch := &models.SubGroupBatch{ID: uuid.New(), Name: "September Batch", Status: enums.BatchStatusPaymentCollection}
	repo := &stubOrderRepo{
		listRows: []models.Order{
			{
				ID:        uuid.New(),
				OrderCode: "GB-20260901-AB12CD",
				Batch:     batch,
				Items: []models.OrderItem{
					{Name: "BPC-157 5mg", Quantity: 2, Vials: 10},
				},
				CreatedAt: time.Now(),
			},
			{ID: uuid.New(), OrderCode: "GB-20260830-EF34AB", CreatedAt: time.Now().Add(-time.Hour)},
		},
	}
	svc := newTestOrderService(t, repo)

	page, err := svc.ListForProfile(context.Background(), uuid.New(), pagination.Params{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(page.Orders))
	}
	if page.Orders[0].Batch == nil || page.Orders[0].Batch.Name != "September Batch" {
		t.Fatalf("expected batch affiliation mapped, got %+v", page.Orders[0].Batch)
	}
	if page.Orders[1].Batch != nil {
		t.Fatalf("expected nil batch for unaffiliated order, got %+v", page.Orders[1].Batch)
	}
	if page.NextCursor != "" {
		t.Fatalf("expected no next cursor for short page, got %q", page.NextCursor)
	}
}

func TestListForProfileEmitsCursorOnFullPage(t *testing.T) {
	t.Parallel()

	rows := make([]models.Order, 0, 3)
	base := time.Now()
	for i := 0; i < 3; i++ {
		rows = append(rows, models.Order{ID: uuid.New(), CreatedAt: base.Add(-time.Duration(i) * time.Minute)})
	}
	repo := &stubOrderRepo{listRows: rows}
	svc := newTestOrderService(t, repo)

	page, err := svc.ListForProfile(context.Background(), uuid.New(), pagination.Params{Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Orders) != 2 {
		t.Fatalf("expected page of 2, got %d", len(page.Orders))
	}
	if page.NextCursor == "" {
		t.Fatal("expected next cursor for overflowing page")
	}

	cursor, err := pagination.ParseCursor(page.NextCursor)
	if err != nil {
		t.Fatalf("expected parseable cursor: %v", err)
	}
	if cursor.ID != rows[1].ID {
		t.Fatalf("expected cursor to point at last returned row")
	}
}

func TestUpdateStatusUnknownOrder(t *testing.T) {
	t.Parallel()

	svc := newTestOrderService(t, &stubOrderRepo{})

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), enums.OrderStatusConfirmed)
	if err == nil {
		t.Fatal("expected error for unknown order")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("unexpected error code: %v", err)
	}
}

func TestUpdatePaymentStatusRejectsInvalidValue(t *testing.T) {
	t.Parallel()

	svc := newTestOrderService(t, &stubOrderRepo{})

	_, err := svc.UpdatePaymentStatus(context.Background(), uuid.New(), enums.PaymentStatus("comped"))
	if err == nil {
		t.Fatal("expected error for invalid payment status")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error code: %v", err)
	}
}

func newTestOrderService(t *testing.T, repo OrderRepository) Service {
	t.Helper()
	svc, err := NewService(repo, nil)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

type stubOrderRepo struct {
	listRows    []models.Order
	summaryRows []models.Order
	byID        map[uuid.UUID]*models.Order
}

func (s *stubOrderRepo) ListByProfile(ctx context.Context, profileID uuid.UUID, params pagination.Params) ([]models.Order, error) {
	return s.listRows, nil
}

func (s *stubOrderRepo) ListForSummary(ctx context.Context, profileID uuid.UUID) ([]models.Order, error) {
	return s.summaryRows, nil
}

func (s *stubOrderRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	if order, ok := s.byID[id]; ok {
		return order, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) error {
	if order, ok := s.byID[id]; ok {
		order.Status = status
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (s *stubOrderRepo) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status enums.PaymentStatus) error {
	if order, ok := s.byID[id]; ok {
		order.PaymentStatus = status
		return nil
	}
	return gorm.ErrRecordNotFound
}
