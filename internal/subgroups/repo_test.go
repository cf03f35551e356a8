package subgroups

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/danielcastellanos/peptidehub-backend/pkg/db/models"
	"github.com/danielcastellanos/peptidehub-backend/pkg/enums"
)

func setupSubGroupsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
  id TEXT PRIMARY KEY,
  external_id TEXT NOT NULL UNIQUE,
  email TEXT NOT NULL DEFAULT '',
  first_name TEXT NOT NULL DEFAULT '',
  last_name TEXT NOT NULL DEFAULT '',
  role TEXT NOT NULL DEFAULT 'customer',
  is_active INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS sub_groups (
  id TEXT PRIMARY KEY,
  region TEXT NOT NULL,
  city TEXT NOT NULL,
  contact_channel TEXT NOT NULL DEFAULT '',
  is_active INTEGER NOT NULL DEFAULT 1,
  host_profile_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS sub_group_batches (
  id TEXT PRIMARY KEY,
  sub_group_id TEXT NOT NULL,
  name TEXT NOT NULL,
  target_vials INTEGER NOT NULL,
  current_vials INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'active',
  opens_at DATETIME NOT NULL,
  closes_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
	}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}

	require.NoError(t, db.Exec("DELETE FROM sub_group_batches").Error)
	require.NoError(t, db.Exec("DELETE FROM sub_groups").Error)
	require.NoError(t, db.Exec("DELETE FROM profiles").Error)

	return db
}

func seedSubGroup(t *testing.T, db *gorm.DB, region, city string, hostProfileID *uuid.UUID, active bool) models.SubGroup {
	t.Helper()

	group := models.SubGroup{
		ID:            uuid.New(),
		Region:        region,
		City:          city,
		IsActive:      active,
		HostProfileID: hostProfileID,
	}
	require.NoError(t, db.Create(&group).Error)
	if !active {
		// GORM drops the zero value for a column tagged default:true, so an
		// inactive row has to be flipped after the insert.
		err := db.Model(&models.SubGroup{}).Where("id = ?", group.ID).UpdateColumn("is_active", false).Error
		require.NoError(t, err)
	}
	return group
}

func seedGroupBatch(t *testing.T, db *gorm.DB, subGroupID uuid.UUID, status enums.BatchStatus, opensAt time.Time) models.SubGroupBatch {
	t.Helper()

	batch := models.SubGroupBatch{
		ID:          uuid.New(),
		SubGroupID:  subGroupID,
		Name:        "Batch " + opensAt.Format("Jan 2"),
		TargetVials: 50,
		Status:      status,
		OpensAt:     opensAt,
	}
	require.NoError(t, db.Create(&batch).Error)
	return batch
}

func TestListActiveSortsByRegionAndPreloadsHost(t *testing.T) {
	db := setupSubGroupsTestDB(t)
	repo := NewRepository(db)

	host := models.Profile{ID: uuid.New(), ExternalID: "ext-host-1", FirstName: "Rhea", Role: enums.UserRoleHost, IsActive: true}
	require.NoError(t, db.Create(&host).Error)

	seedSubGroup(t, db, "Visayas", "Cebu", &host.ID, true)
	seedSubGroup(t, db, "Luzon", "Quezon City", nil, true)
	seedSubGroup(t, db, "Mindanao", "Davao", nil, false)

	rows, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "Luzon", rows[0].Region)
	require.Equal(t, "Visayas", rows[1].Region)
	require.Nil(t, rows[0].Host)
	require.NotNil(t, rows[1].Host)
	require.Equal(t, "Rhea", rows[1].Host.FirstName)
}

func TestFindByHostIgnoresInactiveGroups(t *testing.T) {
	db := setupSubGroupsTestDB(t)
	repo := NewRepository(db)
	hostID := uuid.New()

	seedSubGroup(t, db, "Luzon", "Manila", &hostID, false)

	_, err := repo.FindByHost(context.Background(), hostID)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	group := seedSubGroup(t, db, "Luzon", "Makati", &hostID, true)

	found, err := repo.FindByHost(context.Background(), hostID)
	require.NoError(t, err)
	require.Equal(t, group.ID, found.ID)
}

func TestFindOpenBatchPrefersNewestOpenWindow(t *testing.T) {
	db := setupSubGroupsTestDB(t)
	repo := NewRepository(db)
	group := seedSubGroup(t, db, "Luzon", "Manila", nil, true)
	base := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	seedGroupBatch(t, db, group.ID, enums.BatchStatusCompleted, base)
	seedGroupBatch(t, db, group.ID, enums.BatchStatusPaymentCollection, base.AddDate(0, 1, 0))
	newest := seedGroupBatch(t, db, group.ID, enums.BatchStatusActive, base.AddDate(0, 2, 0))
	seedGroupBatch(t, db, uuid.New(), enums.BatchStatusActive, base.AddDate(0, 3, 0))

	batch, err := repo.FindOpenBatch(context.Background(), group.ID)
	require.NoError(t, err)
	require.Equal(t, newest.ID, batch.ID)
}

func TestFindOpenBatchReturnsNotFoundWhenAllClosed(t *testing.T) {
	db := setupSubGroupsTestDB(t)
	repo := NewRepository(db)
	group := seedSubGroup(t, db, "Luzon", "Manila", nil, true)

	seedGroupBatch(t, db, group.ID, enums.BatchStatusCompleted, time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC))
	seedGroupBatch(t, db, group.ID, enums.BatchStatusCancelled, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))

	_, err := repo.FindOpenBatch(context.Background(), group.ID)
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestCountBatchesByStatus(t *testing.T) {
	db := setupSubGroupsTestDB(t)
	repo := NewRepository(db)
	group := seedSubGroup(t, db, "Luzon", "Manila", nil, true)
	base := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	seedGroupBatch(t, db, group.ID, enums.BatchStatusActive, base)
	seedGroupBatch(t, db, group.ID, enums.BatchStatusCompleted, base.AddDate(0, 1, 0))

	count, err := repo.CountBatchesByStatus(context.Background(), group.ID, enums.BatchStatusActive)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	count, err = repo.CountBatchesByStatus(context.Background(), group.ID, enums.BatchStatusCancelled)
	require.NoError(t, err)
	require.Zero(t, count)
}

func TestTransitionBatchStatusAcceptsAnyListedFromStatus(t *testing.T) {
	db := setupSubGroupsTestDB(t)
	repo := NewRepository(db)
	group := seedSubGroup(t, db, "Luzon", "Manila", nil, true)

	batch := seedGroupBatch(t, db, group.ID, enums.BatchStatusPaymentCollection, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))

	affected, err := repo.TransitionBatchStatus(context.Background(), batch.ID,
		[]enums.BatchStatus{enums.BatchStatusActive, enums.BatchStatusPaymentCollection},
		enums.BatchStatusCompleted)
	require.NoError(t, err)
	require.Equal(t, int64(1), affected)

	affected, err = repo.TransitionBatchStatus(context.Background(), batch.ID,
		[]enums.BatchStatus{enums.BatchStatusActive, enums.BatchStatusPaymentCollection},
		enums.BatchStatusCancelled)
	require.NoError(t, err)
	require.Zero(t, affected)

	reloaded, err := repo.FindBatch(context.Background(), batch.ID)
	require.NoError(t, err)
	require.Equal(t, enums.BatchStatusCompleted, reloaded.Status)
}
