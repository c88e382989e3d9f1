// Package audit appends best-effort entries to the audit_log table. A failed
// write is logged and dropped; it must never abort or roll back the mutation
// that triggered it.
package audit

import (
	"encoding/json"
	"sync"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/steinhorstbr/d-shop-craft/internal/models"
)

type Entry struct {
	StoreID    string
	UserID     string
	EntityType string
	EntityID   string
	Action     models.AuditAction
	Details    map[string]any
}

type Writer struct {
	db  *gorm.DB
	log logrus.FieldLogger
	wg  sync.WaitGroup
}

func NewWriter(db *gorm.DB, log logrus.FieldLogger) *Writer {
	return &Writer{db: db, log: log}
}

// Record fires the write off the caller's critical path. Callers never see
// the outcome.
func (w *Writer) Record(e Entry) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.write(e)
	}()
}

func (w *Writer) write(e Entry) {
	var details string
	if len(e.Details) > 0 {
		raw, err := json.Marshal(e.Details)
		if err != nil {
			w.log.WithError(err).Warn("audit: dropping unencodable details")
		} else {
			details = string(raw)
		}
	}

	row := models.AuditLogEntry{
		StoreID:    e.StoreID,
		UserID:     e.UserID,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		Action:     e.Action,
		Details:    details,
	}
	if err := w.db.Create(&row).Error; err != nil {
		w.log.WithError(err).WithFields(logrus.Fields{
			"entity_type": e.EntityType,
			"entity_id":   e.EntityID,
			"action":      e.Action,
		}).Warn("audit: write failed")
	}
}

// Flush waits for in-flight writes. Used on shutdown and in tests.
func (w *Writer) Flush() {
	w.wg.Wait()
}
