package directory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/khetisathi/khetisathi-backend/pkg/db/models"
	dbtypes "github.com/khetisathi/khetisathi-backend/pkg/db/types"
	"github.com/khetisathi/khetisathi-backend/pkg/enums"
	"github.com/khetisathi/khetisathi-backend/pkg/pagination"
)

func setupDirectoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS labor_profiles (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  phone TEXT NOT NULL,
  role TEXT NOT NULL,
  status TEXT NOT NULL,
  readiness TEXT NOT NULL,
  gender TEXT,
  pincode TEXT NOT NULL,
  skills TEXT NOT NULL DEFAULT '{}',
  vehicle_skills TEXT NOT NULL DEFAULT '{}',
  working_days TEXT NOT NULL DEFAULT '{}',
  off_days TEXT NOT NULL DEFAULT '{}',
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedProfile(t *testing.T, db *gorm.DB, role enums.PartyRole, created time.Time) *models.LaborProfile {
	t.Helper()

	profile := &models.LaborProfile{
		ID:        uuid.New(),
		Name:      "Asha",
		Phone:     "9800000000",
		Role:      role,
		Status:    enums.ApprovalApproved,
		Readiness: enums.ReadinessReady,
		Pincode:   "413001",
		Skills:    pq.StringArray{"harvesting"},
		OffDays:   dbtypes.DateArray{time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)},
		CreatedAt: created,
		UpdatedAt: created,
	}
	require.NoError(t, db.Create(profile).Error)
	return profile
}

func TestRepositoryListPage_pagination(t *testing.T) {
	db := setupDirectoryTestDB(t)
	repo := NewRepository(db)
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	seeded := make([]*models.LaborProfile, 0, 5)
	for i := 0; i < 5; i++ {
		seeded = append(seeded, seedProfile(t, db, enums.PartyRoleWorker, base.Add(time.Duration(i)*time.Minute)))
	}
	seedProfile(t, db, enums.PartyRoleDriver, base)

	role := enums.PartyRoleWorker
	first, err := repo.ListPage(context.Background(), &role, pagination.Params{Limit: 3})
	require.NoError(t, err)
	require.Len(t, first.Profiles, 3)
	require.NotNil(t, first.NextCursor)
	assert.Equal(t, seeded[0].ID, first.Profiles[0].ID, "oldest first")

	rest, err := repo.ListPage(context.Background(), &role, pagination.Params{Limit: 3, Cursor: *first.NextCursor})
	require.NoError(t, err)
	assert.Len(t, rest.Profiles, 2)
	assert.Nil(t, rest.NextCursor)

	seen := map[uuid.UUID]bool{}
	for _, profile := range append(first.Profiles, rest.Profiles...) {
		assert.Equal(t, enums.PartyRoleWorker, profile.Role)
		assert.False(t, seen[profile.ID], "no duplicates across pages")
		seen[profile.ID] = true
	}
}

func TestRepositoryListPage_allRoles(t *testing.T) {
	db := setupDirectoryTestDB(t)
	repo := NewRepository(db)
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)

	seedProfile(t, db, enums.PartyRoleWorker, base)
	seedProfile(t, db, enums.PartyRoleDriver, base.Add(time.Minute))

	list, err := repo.ListPage(context.Background(), nil, pagination.Params{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, list.Profiles, 2)
	assert.Nil(t, list.NextCursor)
}

func TestRepositoryListPage_badCursor(t *testing.T) {
	db := setupDirectoryTestDB(t)
	repo := NewRepository(db)

	_, err := repo.ListPage(context.Background(), nil, pagination.Params{Limit: 10, Cursor: "not-base64!"})
	require.Error(t, err)
}

func TestRepositoryFindByID(t *testing.T) {
	db := setupDirectoryTestDB(t)
	repo := NewRepository(db)
	created := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	seeded := seedProfile(t, db, enums.PartyRoleWorker, created)

	profile, err := repo.FindByID(context.Background(), seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, profile.ID)
	assert.Equal(t, pq.StringArray{"harvesting"}, profile.Skills)
	assert.True(t, profile.OffDays.Contains(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)))

	_, err = repo.FindByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
