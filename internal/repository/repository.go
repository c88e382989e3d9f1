// Package repository provides the tenant-scoped data access used by every
// store-admin handler. Reads always filter by the caller's store id, writes
// always stamp it, and successful mutations invalidate the cached list view
// and emit a best-effort audit entry.
package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/steinhorstbr/d-shop-craft/internal/audit"
	"github.com/steinhorstbr/d-shop-craft/internal/models"
)

// ErrNoTenant is returned when a call arrives before a store id was
// resolved. Handlers translate it to 401.
var ErrNoTenant = errors.New("no tenant resolved for request")

// ErrNotFound wraps gorm's record-not-found so handlers don't import gorm.
var ErrNotFound = gorm.ErrRecordNotFound

// Repo is one typed repository per entity; the closed set of instantiations
// lives in New. PT ties the pointer type to the tenant interface so records
// can be stamped in place.
type Repo[T any, PT interface {
	*T
	models.TenantEntity
}] struct {
	db    *gorm.DB
	cache *ViewCache
	audit *audit.Writer
}

func NewRepo[T any, PT interface {
	*T
	models.TenantEntity
}](db *gorm.DB, cache *ViewCache, aw *audit.Writer) *Repo[T, PT] {
	return &Repo[T, PT]{db: db, cache: cache, audit: aw}
}

func (r *Repo[T, PT]) entityName() string {
	return PT(new(T)).EntityName()
}

// List returns the tenant's rows, newest first. The result is memoized per
// entity+store until the next mutation.
func (r *Repo[T, PT]) List(storeID string) ([]T, error) {
	if storeID == "" {
		return nil, ErrNoTenant
	}
	key := viewKey(r.entityName(), storeID)
	if cached, ok := r.cache.Get(key); ok {
		return cached.([]T), nil
	}
	var out []T
	err := r.db.Where("store_id = ?", storeID).Order("created_at desc").Find(&out).Error
	if err != nil {
		return nil, err
	}
	r.cache.Put(key, out)
	return out, nil
}

func (r *Repo[T, PT]) Get(storeID, id string) (PT, error) {
	if storeID == "" {
		return nil, ErrNoTenant
	}
	rec := PT(new(T))
	err := r.db.Where("store_id = ? AND id = ?", storeID, id).First(rec).Error
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Insert stamps the tenant onto the record, overriding whatever the caller
// supplied.
func (r *Repo[T, PT]) Insert(storeID, userID string, rec PT) error {
	if storeID == "" {
		return ErrNoTenant
	}
	rec.StampStore(storeID)
	if err := r.db.Create(rec).Error; err != nil {
		return err
	}
	r.afterMutation(storeID, userID, rec, models.AuditCreated)
	return nil
}

func (r *Repo[T, PT]) Update(storeID, userID string, rec PT) error {
	if storeID == "" {
		return ErrNoTenant
	}
	rec.StampStore(storeID)
	res := r.db.Model(rec).Where("store_id = ?", storeID).Select("*").Omit("id", "created_at").Updates(rec)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	r.afterMutation(storeID, userID, rec, models.AuditUpdated)
	return nil
}

func (r *Repo[T, PT]) Delete(storeID, userID, id string) error {
	if storeID == "" {
		return ErrNoTenant
	}
	rec := PT(new(T))
	res := r.db.Where("store_id = ? AND id = ?", storeID, id).Delete(rec)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	r.cache.InvalidateEntity(r.entityName(), storeID)
	r.audit.Record(audit.Entry{
		StoreID:    storeID,
		UserID:     userID,
		EntityType: r.entityName(),
		EntityID:   id,
		Action:     models.AuditDeleted,
	})
	return nil
}

func (r *Repo[T, PT]) afterMutation(storeID, userID string, rec PT, action models.AuditAction) {
	r.cache.InvalidateEntity(r.entityName(), storeID)
	r.audit.Record(audit.Entry{
		StoreID:    storeID,
		UserID:     userID,
		EntityType: r.entityName(),
		EntityID:   rec.RecordID(),
		Action:     action,
	})
}

// DB exposes the underlying handle for the few flows that need raw queries
// or transactions (order items, fulfillment).
func (r *Repo[T, PT]) DB() *gorm.DB { return r.db }
