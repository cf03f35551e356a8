package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/danielcastellanos/peptidehub-backend/api/middleware"
	cartsvc "github.com/danielcastellanos/peptidehub-backend/internal/cart"
	pkgauth "github.com/danielcastellanos/peptidehub-backend/pkg/auth"
	"github.com/danielcastellanos/peptidehub-backend/pkg/enums"
	"github.com/danielcastellanos/peptidehub-backend/pkg/logger"
)

func TestCartAddItem(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
	productID := uuid.New()

	body := `{"product_id":"` + productID.String() + `","name":"BPC-157 5mg","unit_price":"45.00","vials":1,"mode":"individual"}`

	t.Run("anonymous without session header", func(t *testing.T) {
		stub := &stubCartService{}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body))
		rec := httptest.NewRecorder()
		CartAddItem(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 without session, got %d", rec.Code)
		}
		if stub.addCalls != 0 {
			t.Fatalf("expected no service call, got %d", stub.addCalls)
		}
	})

	t.Run("anonymous session header", func(t *testing.T) {
		stub := &stubCartService{}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body))
		req.Header.Set("X-Cart-Session", "guest-abc123")
		rec := httptest.NewRecorder()
		CartAddItem(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.lastSession != "guest-abc123" {
			t.Fatalf("expected header session, got %q", stub.lastSession)
		}
	})

	t.Run("identity wins over header", func(t *testing.T) {
		stub := &stubCartService{}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(body))
		req.Header.Set("X-Cart-Session", "guest-abc123")
		ctx := middleware.WithIdentity(req.Context(), pkgauth.Identity{ExternalID: "ext-42"})
		rec := httptest.NewRecorder()
		CartAddItem(stub, logg).ServeHTTP(rec, req.WithContext(ctx))
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if stub.lastSession != "ext-42" {
			t.Fatalf("expected identity session, got %q", stub.lastSession)
		}
	})

	t.Run("invalid purchase mode", func(t *testing.T) {
		stub := &stubCartService{}
		bad := `{"product_id":"` + productID.String() + `","name":"BPC-157 5mg","unit_price":"45.00","vials":1,"mode":"wholesale"}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(bad))
		req.Header.Set("X-Cart-Session", "guest-abc123")
		rec := httptest.NewRecorder()
		CartAddItem(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for bad mode, got %d", rec.Code)
		}
		if stub.addCalls != 0 {
			t.Fatalf("expected no service call, got %d", stub.addCalls)
		}
	})
}

func TestCartClearModeQuery(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})

	t.Run("no mode clears everything", func(t *testing.T) {
		stub := &stubCartService{}
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/cart", nil)
		req.Header.Set("X-Cart-Session", "guest-abc123")
		rec := httptest.NewRecorder()
		CartClear(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !stub.clearAllCalled {
			t.Fatalf("expected ClearAll to be invoked")
		}
	})

	t.Run("mode clears one namespace", func(t *testing.T) {
		stub := &stubCartService{}
		req := httptest.NewRequest(http.MethodDelete, "/api/v1/cart?mode=group_buy", nil)
		req.Header.Set("X-Cart-Session", "guest-abc123")
		rec := httptest.NewRecorder()
		CartClear(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if stub.clearAllCalled {
			t.Fatalf("ClearAll should not run when a mode is given")
		}
		if stub.lastMode != enums.PurchaseModeGroupBuy {
			t.Fatalf("expected group_buy namespace, got %q", stub.lastMode)
		}
	})
}

type stubCartService struct {
	addCalls       int
	clearAllCalled bool
	lastSession    string
	lastMode       enums.PurchaseMode
}

func (s *stubCartService) Get(ctx context.Context, sessionID string) (cartsvc.State, error) {
	s.lastSession = sessionID
	return cartsvc.NewState(), nil
}

func (s *stubCartService) AddItem(ctx context.Context, sessionID string, line cartsvc.Line) (cartsvc.State, error) {
	s.addCalls++
	s.lastSession = sessionID
	return cartsvc.NewState().AddItem(line), nil
}

func (s *stubCartService) RemoveItem(ctx context.Context, sessionID string, mode enums.PurchaseMode, productID uuid.UUID) (cartsvc.State, error) {
	s.lastSession = sessionID
	s.lastMode = mode
	return cartsvc.NewState(), nil
}

func (s *stubCartService) UpdateQuantity(ctx context.Context, sessionID string, mode enums.PurchaseMode, productID uuid.UUID, quantity int) (cartsvc.State, error) {
	s.lastSession = sessionID
	s.lastMode = mode
	return cartsvc.NewState(), nil
}

func (s *stubCartService) Clear(ctx context.Context, sessionID string, mode enums.PurchaseMode) (cartsvc.State, error) {
	s.lastSession = sessionID
	s.lastMode = mode
	return cartsvc.NewState(), nil
}

func (s *stubCartService) ClearAll(ctx context.Context, sessionID string) error {
	s.lastSession = sessionID
	s.clearAllCalled = true
	return nil
}
