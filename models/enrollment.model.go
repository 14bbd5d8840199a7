package models

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment ties a student to a course, one row per pair. The unique
// index is what makes the enroll endpoint safely idempotent under
// concurrent requests.
type Enrollment struct {
	SoftDeleteModel
	StudentID  uint      `json:"student_id" gorm:"not null;uniqueIndex:idx_enrollment_per_student"`
	CourseID   uint      `json:"course_id" gorm:"not null;uniqueIndex:idx_enrollment_per_student"`
	EnrolledAt time.Time `json:"enrolled_at" gorm:"autoCreateTime;<-:create"`
	Course     *Course   `json:"course,omitempty" gorm:"foreignKey:CourseID"`
}

// LessonProgress tracks completion of one lesson under one enrollment.
type LessonProgress struct {
	SoftDeleteModel
	EnrollmentID uint       `json:"enrollment_id" gorm:"not null;uniqueIndex:idx_progress_per_lesson"`
	LessonID     uint       `json:"lesson_id" gorm:"not null;uniqueIndex:idx_progress_per_lesson"`
	IsCompleted  bool       `json:"is_completed" gorm:"default:false"`
	CompletedAt  *time.Time `json:"completed_at"`
}

// TableName avoids the awkward default pluralization of "progress".
func (LessonProgress) TableName() string {
	return "lesson_progress"
}

// BeforeSave keeps CompletedAt in lockstep with IsCompleted: stamped when
// the lesson is completed, cleared when marked incomplete again.
func (p *LessonProgress) BeforeSave(tx *gorm.DB) error {
	if p.IsCompleted && p.CompletedAt == nil {
		now := time.Now()
		p.CompletedAt = &now
	} else if !p.IsCompleted {
		p.CompletedAt = nil
	}
	return nil
}
