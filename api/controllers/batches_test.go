package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/danielcastellanos/peptidehub-backend/api/middleware"
	"github.com/danielcastellanos/peptidehub-backend/internal/subgroups"
	"github.com/danielcastellanos/peptidehub-backend/pkg/enums"
	pkgerrors "github.com/danielcastellanos/peptidehub-backend/pkg/errors"
	"github.com/danielcastellanos/peptidehub-backend/pkg/logger"
)

func TestHostBatchCreate(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
	hostID := uuid.New()

	body := `{"name": "September Run", "target_vials": 100}`

	t.Run("missing profile", func(t *testing.T) {
		stub := &stubBatchService{}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/host/batches", strings.NewReader(body))
		rec := httptest.NewRecorder()
		HostBatchCreate(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 without profile, got %d", rec.Code)
		}
	})

	t.Run("created", func(t *testing.T) {
		stub := &stubBatchService{batch: &subgroups.BatchDTO{ID: uuid.New(), Name: "September Run", Status: enums.BatchStatusActive}}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/host/batches", strings.NewReader(body))
		ctx := middleware.WithProfile(req.Context(), hostID.String(), "host")
		rec := httptest.NewRecorder()
		HostBatchCreate(stub, logg).ServeHTTP(rec, req.WithContext(ctx))
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.lastHostID != hostID {
			t.Fatalf("expected host %s, got %s", hostID, stub.lastHostID)
		}
	})

	t.Run("second active batch rejected", func(t *testing.T) {
		stub := &stubBatchService{err: pkgerrors.New(pkgerrors.CodeConflict, "host already has an active batch")}
		req := httptest.NewRequest(http.MethodPost, "/api/v1/host/batches", strings.NewReader(body))
		ctx := middleware.WithProfile(req.Context(), hostID.String(), "host")
		rec := httptest.NewRecorder()
		HostBatchCreate(stub, logg).ServeHTTP(rec, req.WithContext(ctx))
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rec.Code)
		}
	})
}

func TestHostBatchClose(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
	hostID := uuid.New()
	batchID := uuid.New()

	makeRequest := func(stub *stubBatchService, rawBatchID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/host/batches/"+rawBatchID+"/close", nil)
		routeCtx := chi.NewRouteContext()
		routeCtx.URLParams.Add("batchId", rawBatchID)
		ctx := context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx)
		ctx = middleware.WithProfile(ctx, hostID.String(), "host")
		rec := httptest.NewRecorder()
		HostBatchClose(stub, logg).ServeHTTP(rec, req.WithContext(ctx))
		return rec
	}

	t.Run("invalid batch id", func(t *testing.T) {
		rec := makeRequest(&stubBatchService{}, "not-a-uuid")
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("closed", func(t *testing.T) {
		stub := &stubBatchService{batch: &subgroups.BatchDTO{ID: batchID, Status: enums.BatchStatusCompleted}}
		rec := makeRequest(stub, batchID.String())
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.lastBatchID != batchID {
			t.Fatalf("expected batch %s, got %s", batchID, stub.lastBatchID)
		}
	})

	t.Run("foreign batch forbidden", func(t *testing.T) {
		stub := &stubBatchService{err: pkgerrors.New(pkgerrors.CodeForbidden, "batch belongs to another sub-group")}
		rec := makeRequest(stub, batchID.String())
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})
}

type stubBatchService struct {
	batch       *subgroups.BatchDTO
	err         error
	lastHostID  uuid.UUID
	lastBatchID uuid.UUID
}

func (s *stubBatchService) ListRegions(ctx context.Context) ([]subgroups.RegionDTO, error) {
	panic("unimplemented")
}

func (s *stubBatchService) CreateBatch(ctx context.Context, hostProfileID uuid.UUID, input subgroups.CreateBatchInput) (*subgroups.BatchDTO, error) {
	s.lastHostID = hostProfileID
	if s.err != nil {
		return nil, s.err
	}
	return s.batch, nil
}

func (s *stubBatchService) CloseBatch(ctx context.Context, hostProfileID, batchID uuid.UUID) (*subgroups.BatchDTO, error) {
	s.lastHostID = hostProfileID
	s.lastBatchID = batchID
	if s.err != nil {
		return nil, s.err
	}
	return s.batch, nil
}

func (s *stubBatchService) CancelBatch(ctx context.Context, hostProfileID, batchID uuid.UUID) (*subgroups.BatchDTO, error) {
	s.lastHostID = hostProfileID
	s.lastBatchID = batchID
	if s.err != nil {
		return nil, s.err
	}
	return s.batch, nil
}
