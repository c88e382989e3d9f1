package repository

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/steinhorstbr/d-shop-craft/internal/audit"
	"github.com/steinhorstbr/d-shop-craft/internal/models"
)

func testRepo(t *testing.T) (*Repo[models.Printer, *models.Printer], *audit.Writer, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Printer{}, &models.AuditLogEntry{}))

	aw := audit.NewWriter(db, logrus.New())
	repo := NewRepo[models.Printer, *models.Printer](db, NewViewCache(), aw)
	return repo, aw, db
}

func TestInsertStampsTenantOverCallerValue(t *testing.T) {
	repo, aw, _ := testRepo(t)

	p := &models.Printer{Name: "Ender 3", StoreID: "someone-elses-store"}
	require.NoError(t, repo.Insert("store-a", "user-1", p))
	aw.Flush()

	assert.Equal(t, "store-a", p.StoreID)

	got, err := repo.Get("store-a", p.ID)
	require.NoError(t, err)
	assert.Equal(t, "store-a", got.StoreID)
}

func TestListIsTenantScoped(t *testing.T) {
	repo, aw, _ := testRepo(t)

	require.NoError(t, repo.Insert("store-a", "u", &models.Printer{Name: "A1"}))
	require.NoError(t, repo.Insert("store-a", "u", &models.Printer{Name: "A2"}))
	require.NoError(t, repo.Insert("store-b", "u", &models.Printer{Name: "B1"}))
	aw.Flush()

	listA, err := repo.List("store-a")
	require.NoError(t, err)
	assert.Len(t, listA, 2)

	listB, err := repo.List("store-b")
	require.NoError(t, err)
	require.Len(t, listB, 1)
	assert.Equal(t, "B1", listB[0].Name)
}

func TestUnresolvedTenantIsRejected(t *testing.T) {
	repo, _, _ := testRepo(t)

	_, err := repo.List("")
	assert.ErrorIs(t, err, ErrNoTenant)

	err = repo.Insert("", "u", &models.Printer{Name: "X"})
	assert.ErrorIs(t, err, ErrNoTenant)

	err = repo.Delete("", "u", "any")
	assert.ErrorIs(t, err, ErrNoTenant)
}

func TestCrossTenantAccessIsInvisible(t *testing.T) {
	repo, aw, _ := testRepo(t)

	p := &models.Printer{Name: "Mine"}
	require.NoError(t, repo.Insert("store-a", "u", p))
	aw.Flush()

	_, err := repo.Get("store-b", p.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = repo.Delete("store-b", "u", p.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	// still there for the owner
	_, err = repo.Get("store-a", p.ID)
	assert.NoError(t, err)
}

func TestMutationInvalidatesCachedList(t *testing.T) {
	repo, aw, _ := testRepo(t)

	require.NoError(t, repo.Insert("store-a", "u", &models.Printer{Name: "P1"}))

	first, err := repo.List("store-a")
	require.NoError(t, err)
	require.Len(t, first, 1)

	// Cached: a second read returns the same view.
	again, err := repo.List("store-a")
	require.NoError(t, err)
	assert.Len(t, again, 1)

	require.NoError(t, repo.Insert("store-a", "u", &models.Printer{Name: "P2"}))
	refreshed, err := repo.List("store-a")
	require.NoError(t, err)
	assert.Len(t, refreshed, 2)
	aw.Flush()
}

func TestMutationsEmitAuditEntries(t *testing.T) {
	repo, aw, db := testRepo(t)

	p := &models.Printer{Name: "P1"}
	require.NoError(t, repo.Insert("store-a", "user-1", p))
	p.Name = "P1 renamed"
	require.NoError(t, repo.Update("store-a", "user-1", p))
	require.NoError(t, repo.Delete("store-a", "user-1", p.ID))
	aw.Flush()

	var entries []models.AuditLogEntry
	require.NoError(t, db.Order("created_at asc").Find(&entries).Error)
	require.Len(t, entries, 3)

	actions := []models.AuditAction{entries[0].Action, entries[1].Action, entries[2].Action}
	assert.ElementsMatch(t,
		[]models.AuditAction{models.AuditCreated, models.AuditUpdated, models.AuditDeleted},
		actions)
	for _, e := range entries {
		assert.Equal(t, "printer", e.EntityType)
		assert.Equal(t, "store-a", e.StoreID)
		assert.Equal(t, "user-1", e.UserID)
	}
}
