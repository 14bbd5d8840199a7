package models

import "gorm.io/datatypes"

// Lesson is the atomic unit of content a student consumes. OrderIndex is
// unique within the module.
type Lesson struct {
	SoftDeleteModel
	ModuleID    uint           `json:"module_id" gorm:"not null;index;uniqueIndex:idx_lesson_order_per_module"`
	Title       string         `json:"title" gorm:"size:200;not null"`
	Content     string         `json:"content" gorm:"type:text"`
	VideoURL    string         `json:"video_url"`
	Attachments datatypes.JSON `json:"attachments,omitempty"`
	OrderIndex  int            `json:"order_index" gorm:"default:0;uniqueIndex:idx_lesson_order_per_module"`
}
