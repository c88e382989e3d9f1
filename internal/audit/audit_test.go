package audit

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/steinhorstbr/d-shop-craft/internal/models"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.AuditLogEntry{}))
	return db
}

func TestRecordWritesEntry(t *testing.T) {
	db := testDB(t)
	w := NewWriter(db, logrus.New())

	w.Record(Entry{
		StoreID:    "store-1",
		UserID:     "user-1",
		EntityType: "filament",
		EntityID:   "fil-1",
		Action:     models.AuditStatusChanged,
		Details:    map[string]any{"from": "awaiting", "to": "done"},
	})
	w.Flush()

	var rows []models.AuditLogEntry
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, "filament", rows[0].EntityType)
	assert.Equal(t, models.AuditStatusChanged, rows[0].Action)
	assert.Contains(t, rows[0].Details, `"to":"done"`)
	assert.NotEmpty(t, rows[0].ID)
}

func TestWriteFailureIsSwallowed(t *testing.T) {
	db := testDB(t)
	// Drop the table so the insert fails.
	require.NoError(t, db.Migrator().DropTable(&models.AuditLogEntry{}))

	log := logrus.New()
	w := NewWriter(db, log)

	assert.NotPanics(t, func() {
		w.Record(Entry{EntityType: "order", Action: models.AuditCreated})
		w.Flush()
	})
}
