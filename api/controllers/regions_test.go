package controllers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/danielcastellanos/peptidehub-backend/internal/subgroups"
	pkgerrors "github.com/danielcastellanos/peptidehub-backend/pkg/errors"
	"github.com/danielcastellanos/peptidehub-backend/pkg/logger"
)

func TestRegionsList(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})

	t.Run("returns hosted and host-less regions", func(t *testing.T) {
		stub := &stubRegionService{
			regions: []subgroups.RegionDTO{
				{ID: uuid.New(), Region: "NCR", City: "Quezon City", Host: &subgroups.HostDTO{FirstName: "Ana"}},
				{ID: uuid.New(), Region: "Davao", City: "Davao City", Host: nil, ActiveBatch: nil},
			},
		}
		req := httptest.NewRequest(http.MethodGet, "/api/v1/regions", nil)
		rec := httptest.NewRecorder()
		RegionsList(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}

		var envelope struct {
			Data []subgroups.RegionDTO `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
		if len(envelope.Data) != 2 {
			t.Fatalf("expected 2 regions, got %d", len(envelope.Data))
		}
		if envelope.Data[1].Host != nil {
			t.Fatalf("expected host-less region to serialize host as null")
		}
		if envelope.Data[1].ActiveBatch != nil {
			t.Fatalf("expected host-less region to serialize active_batch as null")
		}
	})

	t.Run("propagates service failure", func(t *testing.T) {
		stub := &stubRegionService{err: pkgerrors.New(pkgerrors.CodeDependency, "regions are temporarily unavailable")}
		req := httptest.NewRequest(http.MethodGet, "/api/v1/regions", nil)
		rec := httptest.NewRecorder()
		RegionsList(stub, logg).ServeHTTP(rec, req)
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
	})
}

type stubRegionService struct {
	regions []subgroups.RegionDTO
	err     error
}

func (s *stubRegionService) ListRegions(ctx context.Context) ([]subgroups.RegionDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.regions, nil
}

func (s *stubRegionService) CreateBatch(ctx context.Context, hostProfileID uuid.UUID, input subgroups.CreateBatchInput) (*subgroups.BatchDTO, error) {
	panic("unimplemented")
}

func (s *stubRegionService) CloseBatch(ctx context.Context, hostProfileID, batchID uuid.UUID) (*subgroups.BatchDTO, error) {
	panic("unimplemented")
}

func (s *stubRegionService) CancelBatch(ctx context.Context, hostProfileID, batchID uuid.UUID) (*subgroups.BatchDTO, error) {
	panic("unimplemented")
}
