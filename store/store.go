package store

import (
	"time"

	"gorm.io/gorm"
)

// Store wraps a gorm handle with soft-delete aware query surfaces for one
// model type. Deletion is a flag flip; hard deletes have their own method
// so call sites can never remove rows by accident.
type Store[T any] struct {
	db *gorm.DB
}

// New returns a Store for model type T.
func New[T any](db *gorm.DB) *Store[T] {
	return &Store[T]{db: db}
}

// Query is the default view: non-deleted records only. Everything chained
// onto it (filters, ordering, pagination) composes with the predicate.
func (s *Store[T]) Query() *gorm.DB {
	return s.db.Model(new(T)).Where("is_deleted = ?", false)
}

// QueryAll returns every record, tombstones included.
func (s *Store[T]) QueryAll() *gorm.DB {
	return s.db.Model(new(T))
}

// QueryDeleted returns tombstoned records only.
func (s *Store[T]) QueryDeleted() *gorm.DB {
	return s.db.Model(new(T)).Where("is_deleted = ?", true)
}

// SoftDelete marks the record deleted. Only is_deleted, deleted_at and
// updated_at are written, so concurrent changes to other columns are not
// clobbered. The struct is reloaded to reflect the stored row.
func (s *Store[T]) SoftDelete(rec *T) error {
	now := time.Now()
	err := s.db.Model(rec).
		Select("is_deleted", "deleted_at", "updated_at").
		Updates(map[string]interface{}{"is_deleted": true, "deleted_at": &now}).Error
	if err != nil {
		return err
	}
	return s.db.First(rec).Error
}

// Restore clears the tombstone and bumps updated_at.
func (s *Store[T]) Restore(rec *T) error {
	err := s.db.Model(rec).
		Select("is_deleted", "deleted_at", "updated_at").
		Updates(map[string]interface{}{"is_deleted": false, "deleted_at": nil}).Error
	if err != nil {
		return err
	}
	return s.db.First(rec).Error
}

// HardDelete permanently removes the row. Cannot be undone.
func (s *Store[T]) HardDelete(rec *T) error {
	return s.db.Unscoped().Delete(rec).Error
}

// SoftDeleteAll flag-flips every record matched by q in a single UPDATE
// and reports the number of rows affected.
func (s *Store[T]) SoftDeleteAll(q *gorm.DB) (int64, error) {
	now := time.Now()
	res := q.Updates(map[string]interface{}{"is_deleted": true, "deleted_at": &now})
	return res.RowsAffected, res.Error
}

// RestoreAll clears the tombstone on every record matched by q in a single
// UPDATE and reports the number of rows affected.
func (s *Store[T]) RestoreAll(q *gorm.DB) (int64, error) {
	res := q.Updates(map[string]interface{}{"is_deleted": false, "deleted_at": nil})
	return res.RowsAffected, res.Error
}
