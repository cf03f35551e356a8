package subgroups

import (
	"context"
	"testing"
	"time"

	"github.com/danielcastellanos/peptidehub-backend/pkg/db/models"
	"github.com/danielcastellanos/peptidehub-backend/pkg/enums"
	pkgerrors "github.com/danielcastellanos/peptidehub-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func TestListRegionsSkipsBatchQueryForHostlessSubGroup(t *testing.T) {
	t.Parallel()

	hostID := uuid.New()
	hosted := models.SubGroup{
		ID:            uuid.New(),
		Region:        "Luzon",
		City:          "Manila",
		IsActive:      true,
		HostProfileID: &hostID,
		Host:          &models.Profile{ID: hostID, FirstName: "Ana", LastName: "Reyes"},
	}
	hostless := models.SubGroup{ID: uuid.New(), Region: "Visayas", City: "Cebu", IsActive: true}
	openBatch := &models.SubGroupBatch{
		ID:         uuid.New(),
		SubGroupID: hosted.ID,
		Name:       "September Batch",
		Status:     enums.BatchStatusActive,
	}
	repo := &stubSubGroupRepo{
		active:      []models.SubGroup{hosted, hostless},
		openBatches: map[uuid.UUID]*models.SubGroupBatch{hosted.ID: openBatch},
	}
	svc := newTestSubGroupService(t, repo)

	regions, err := svc.ListRegions(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(regions) != 2 {
		t.Fatalf("expected 2 regions, got %d", len(regions))
	}
	if regions[0].Host == nil || regions[0].Host.FirstName != "Ana" {
		t.Fatalf("expected host identity on hosted region, got %+v", regions[0].Host)
	}
	if regions[0].ActiveBatch == nil || regions[0].ActiveBatch.Name != "September Batch" {
		t.Fatalf("expected open batch on hosted region, got %+v", regions[0].ActiveBatch)
	}
	if regions[1].Host != nil || regions[1].ActiveBatch != nil {
		t.Fatalf("expected nil host and batch for hostless region, got %+v", regions[1])
	}
	if repo.openBatchQueries != 1 {
		t.Fatalf("expected exactly one batch query, got %d", repo.openBatchQueries)
	}
}

func TestListRegionsHostedWithoutOpenBatch(t *testing.T) {
	t.Parallel()

	hostID := uuid.New()
	hosted := models.SubGroup{ID: uuid.New(), IsActive: true, HostProfileID: &hostID}
	repo := &stubSubGroupRepo{active: []models.SubGroup{hosted}, openBatches: map[uuid.UUID]*models.SubGroupBatch{}}
	svc := newTestSubGroupService(t, repo)

	regions, err := svc.ListRegions(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if regions[0].ActiveBatch != nil {
		t.Fatalf("expected nil batch when none is open, got %+v", regions[0].ActiveBatch)
	}
}

func TestCreateBatchRejectsSecondActiveBatch(t *testing.T) {
	t.Parallel()

	hostID := uuid.New()
	subGroup := &models.SubGroup{ID: uuid.New(), IsActive: true, HostProfileID: &hostID}
	repo := &stubSubGroupRepo{
		byHost:      map[uuid.UUID]*models.SubGroup{hostID: subGroup},
		activeCount: 1,
	}
	svc := newTestSubGroupService(t, repo)

	_, err := svc.CreateBatch(context.Background(), hostID, CreateBatchInput{Name: "October Batch", TargetVials: 100})
	if err == nil {
		t.Fatal("expected error for second active batch")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("unexpected error code: %v", err)
	}
}

func TestCreateBatchSucceedsForIdleHost(t *testing.T) {
	t.Parallel()

	hostID := uuid.New()
	subGroup := &models.SubGroup{ID: uuid.New(), IsActive: true, HostProfileID: &hostID}
	repo := &stubSubGroupRepo{byHost: map[uuid.UUID]*models.SubGroup{hostID: subGroup}}
	svc := newTestSubGroupService(t, repo)

	batch, err := svc.CreateBatch(context.Background(), hostID, CreateBatchInput{Name: "October Batch", TargetVials: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if batch.Status != enums.BatchStatusActive {
		t.Fatalf("expected active status, got %s", batch.Status)
	}
	if batch.SubGroupID != subGroup.ID {
		t.Fatalf("expected batch bound to host's sub-group")
	}
	if batch.OpensAt.IsZero() {
		t.Fatal("expected opens_at defaulted")
	}
}

func TestCreateBatchRejectsInvertedWindow(t *testing.T) {
	t.Parallel()

	svc := newTestSubGroupService(t, &stubSubGroupRepo{})

	opens := time.Now()
	closes := opens.Add(-time.Hour)
	_, err := svc.CreateBatch(context.Background(), uuid.New(), CreateBatchInput{
		Name:        "Bad Window",
		TargetVials: 10,
		OpensAt:     opens,
		ClosesAt:    &closes,
	})
	if err == nil {
		t.Fatal("expected error for inverted window")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("unexpected error code: %v", err)
	}
}

func TestCloseBatchCompletesOpenBatch(t *testing.T) {
	t.Parallel()

	hostID := uuid.New()
	subGroup := &models.SubGroup{ID: uuid.New(), IsActive: true, HostProfileID: &hostID}
	batch := &models.SubGroupBatch{ID: uuid.New(), SubGroupID: subGroup.ID, Status: enums.BatchStatusPaymentCollection}
	repo := &stubSubGroupRepo{
		byHost:  map[uuid.UUID]*models.SubGroup{hostID: subGroup},
		batches: map[uuid.UUID]*models.SubGroupBatch{batch.ID: batch},
	}
	svc := newTestSubGroupService(t, repo)

	updated, err := svc.CloseBatch(context.Background(), hostID, batch.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != enums.BatchStatusCompleted {
		t.Fatalf("expected completed, got %s", updated.Status)
	}
}

func TestCancelBatchRejectsForeignBatch(t *testing.T) {
	t.Parallel()

	hostID := uuid.New()
	subGroup := &models.SubGroup{ID: uuid.New(), IsActive: true, HostProfileID: &hostID}
	batch := &models.SubGroupBatch{ID: uuid.New(), SubGroupID: uuid.New(), Status: enums.BatchStatusActive}
	repo := &stubSubGroupRepo{
		byHost:  map[uuid.UUID]*models.SubGroup{hostID: subGroup},
		batches: map[uuid.UUID]*models.SubGroupBatch{batch.ID: batch},
	}
	svc := newTestSubGroupService(t, repo)

	_, err := svc.CancelBatch(context.Background(), hostID, batch.ID)
	if err == nil {
		t.Fatal("expected error for foreign batch")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("unexpected error code: %v", err)
	}
}

func TestCloseBatchAlreadyClosed(t *testing.T) {
	t.Parallel()

	hostID := uuid.New()
	subGroup := &models.SubGroup{ID: uuid.New(), IsActive: true, HostProfileID: &hostID}
	batch := &models.SubGroupBatch{ID: uuid.New(), SubGroupID: subGroup.ID, Status: enums.BatchStatusCompleted}
	repo := &stubSubGroupRepo{
		byHost:  map[uuid.UUID]*models.SubGroup{hostID: subGroup},
		batches: map[uuid.UUID]*models.SubGroupBatch{batch.ID: batch},
	}
	svc := newTestSubGroupService(t, repo)

	_, err := svc.CloseBatch(context.Background(), hostID, batch.ID)
	if err == nil {
		t.Fatal("expected error for already closed batch")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("unexpected error code: %v", err)
	}
}

func newTestSubGroupService(t *testing.T, repo SubGroupRepository) Service {
	t.Helper()
	svc, err := NewService(repo, nil)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

type stubSubGroupRepo struct {
	active      []models.SubGroup
	byHost      map[uuid.UUID]*models.SubGroup
	batches     map[uuid.UUID]*models.SubGroupBatch
	openBatches map[uuid.UUID]*models.SubGroupBatch
	activeCount int64

	openBatchQueries int
}

func (s *stubSubGroupRepo) ListActive(ctx context.Context) ([]models.SubGroup, error) {
	return s.active, nil
}

func (s *stubSubGroupRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.SubGroup, error) {
	for i := range s.active {
		if s.active[i].ID == id {
			return &s.active[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubSubGroupRepo) FindByHost(ctx context.Context, hostProfileID uuid.UUID) (*models.SubGroup, error) {
	if sg, ok := s.byHost[hostProfileID]; ok {
		return sg, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubSubGroupRepo) FindOpenBatch(ctx context.Context, subGroupID uuid.UUID) (*models.SubGroupBatch, error) {
	s.openBatchQueries++
	if batch, ok := s.openBatches[subGroupID]; ok {
		return batch, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubSubGroupRepo) FindBatch(ctx context.Context, id uuid.UUID) (*models.SubGroupBatch, error) {
	if batch, ok := s.batches[id]; ok {
		return batch, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubSubGroupRepo) CountBatchesByStatus(ctx context.Context, subGroupID uuid.UUID, status enums.BatchStatus) (int64, error) {
	return s.activeCount, nil
}

func (s *stubSubGroupRepo) CreateBatch(ctx context.Context, batch *models.SubGroupBatch) (*models.SubGroupBatch, error) {
	batch.ID = uuid.New()
	if s.batches == nil {
		s.batches = map[uuid.UUID]*models.SubGroupBatch{}
	}
	s.batches[batch.ID] = batch
	return batch, nil
}

func (s *stubSubGroupRepo) TransitionBatchStatus(ctx context.Context, batchID uuid.UUID, from []enums.BatchStatus, to enums.BatchStatus) (int64, error) {
	batch, ok := s.batches[batchID]
	if !ok {
		return 0, nil
	}
	for _, f := range from {
		if batch.Status == f {
			batch.Status = to
			return 1, nil
		}
	}
	return 0, nil
}
