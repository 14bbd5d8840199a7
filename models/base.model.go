package models

import "time"

// Model provides the primary key and automatic timestamp tracking.
// CreatedAt is set once on insert, UpdatedAt refreshed on every write.
type Model struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SoftDeleteModel marks records as deleted instead of removing them.
// Invariant: IsDeleted is true exactly when DeletedAt is non-nil.
// Query and mutation surfaces live in the store package.
type SoftDeleteModel struct {
	Model
	IsDeleted bool       `json:"is_deleted" gorm:"default:false;index"`
	DeletedAt *time.Time `json:"deleted_at"`
}
