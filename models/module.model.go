package models

import (
	"gorm.io/gorm"

	"lms/store"
)

// Module groups lessons into a chapter of a course. OrderIndex is unique
// within the course.
type Module struct {
	SoftDeleteModel
	CourseID   uint     `json:"course_id" gorm:"not null;index;uniqueIndex:idx_module_order_per_course"`
	Title      string   `json:"title" gorm:"size:200;not null"`
	OrderIndex int      `json:"order_index" gorm:"default:0;uniqueIndex:idx_module_order_per_course"`
	Lessons    []Lesson `json:"lessons,omitempty" gorm:"foreignKey:ModuleID"`
}

// ModuleWithCounts is a Module row annotated by ModulesWithLessonsCount.
type ModuleWithCounts struct {
	Module
	LessonsCount int64 `json:"lessons_count" gorm:"column:lessons_count"`
}

// ModulesWithLessonsCount returns the default module view annotated with a
// distinct lesson count.
func ModulesWithLessonsCount(db *gorm.DB) *gorm.DB {
	q := db.Model(&Module{}).Where("modules.is_deleted = ?", false)
	return store.WithCounts(q, "modules",
		store.Path{{Name: "lessons", Table: "lessons", FK: "module_id"}},
	)
}
