package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/danielcastellanos/peptidehub-backend/api/middleware"
	"github.com/danielcastellanos/peptidehub-backend/internal/groupbuy"
	"github.com/danielcastellanos/peptidehub-backend/pkg/enums"
	pkgerrors "github.com/danielcastellanos/peptidehub-backend/pkg/errors"
	"github.com/danielcastellanos/peptidehub-backend/pkg/logger"
)

func TestGroupOrderSubmit(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
	subGroupID := uuid.New()
	batchID := uuid.New()

	validBody := `{
		"customer_name": "Maria Santos",
		"contact_number": "+639171234567",
		"sub_group_id": "` + subGroupID.String() + `",
		"batch_id": "` + batchID.String() + `",
		"lines": [{"name": "TB-500 10mg", "unit_price": "120.00", "quantity": 2, "vials": 4}]
	}`

	t.Run("created", func(t *testing.T) {
		stub := &stubGroupBuyService{
			result: &groupbuy.SubmitResult{
				OrderID:      uuid.New(),
				OrderCode:    "GB-20260901-A1B2C3",
				TotalAmount:  decimal.RequireFromString("240.00"),
				TotalVials:   8,
				BatchStatus:  enums.BatchStatusActive,
				CurrentVials: 48,
				TargetVials:  100,
			},
		}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/group-orders", strings.NewReader(validBody))
		rec := httptest.NewRecorder()
		GroupOrderSubmit(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}

		var envelope struct {
			Data groupbuy.SubmitResult `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if envelope.Data.OrderCode != "GB-20260901-A1B2C3" {
			t.Fatalf("unexpected order code %q", envelope.Data.OrderCode)
		}
		if stub.lastInput.ProfileID != nil {
			t.Fatalf("expected anonymous submission to carry no profile id")
		}
	})

	t.Run("signed-in caller attaches profile id", func(t *testing.T) {
		profileID := uuid.New()
		stub := &stubGroupBuyService{result: &groupbuy.SubmitResult{OrderCode: "GB-20260901-D4E5F6"}}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/group-orders", strings.NewReader(validBody))
		ctx := middleware.WithProfile(req.Context(), profileID.String(), "customer")
		rec := httptest.NewRecorder()
		GroupOrderSubmit(stub, logg).ServeHTTP(rec, req.WithContext(ctx))
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
		if stub.lastInput.ProfileID == nil || *stub.lastInput.ProfileID != profileID {
			t.Fatalf("expected profile id %s on input", profileID)
		}
	})

	t.Run("closed batch surfaces state conflict", func(t *testing.T) {
		stub := &stubGroupBuyService{err: pkgerrors.New(pkgerrors.CodeStateConflict, "batch is no longer accepting orders")}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/group-orders", strings.NewReader(validBody))
		rec := httptest.NewRecorder()
		GroupOrderSubmit(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("expected 422, got %d", rec.Code)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		stub := &stubGroupBuyService{}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/group-orders", strings.NewReader(`{"customer_name":`))
		rec := httptest.NewRecorder()
		GroupOrderSubmit(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if stub.calls != 0 {
			t.Fatalf("expected no service call, got %d", stub.calls)
		}
	})
}

type stubGroupBuyService struct {
	result    *groupbuy.SubmitResult
	err       error
	calls     int
	lastInput groupbuy.SubmitInput
}

func (s *stubGroupBuyService) Submit(ctx context.Context, input groupbuy.SubmitInput) (*groupbuy.SubmitResult, error) {
	s.calls++
	s.lastInput = input
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}
