package models

import (
	"gorm.io/gorm"

	"lms/store"
)

// Course is the top level of the content hierarchy: Course → Module → Lesson.
type Course struct {
	SoftDeleteModel
	Slug         string   `json:"slug" gorm:"size:255;uniqueIndex"`
	Title        string   `json:"title" gorm:"size:200;not null"`
	Description  string   `json:"description" gorm:"type:text"`
	InstructorID uint     `json:"instructor_id" gorm:"index;not null"`
	Modules      []Module `json:"modules,omitempty" gorm:"foreignKey:CourseID"`
}

// BeforeSave assigns the slug on first persist only. Later title edits
// never regenerate it, so published URLs stay stable.
func (c *Course) BeforeSave(tx *gorm.DB) error {
	if c.Slug != "" {
		return nil
	}
	slug, err := store.UniqueSlug(tx, "courses", c.Title, c.ID)
	if err != nil {
		return err
	}
	c.Slug = slug
	return nil
}

// CourseWithCounts is a Course row annotated by CoursesWithFullCounts.
type CourseWithCounts struct {
	Course
	ModulesCount        int64 `json:"modules_count" gorm:"column:modules_count"`
	ModulesLessonsCount int64 `json:"lessons_count" gorm:"column:modules_lessons_count"`
	EnrollmentsCount    int64 `json:"enrollments_count" gorm:"column:enrollments_count"`
}

// CoursesWithFullCounts returns the default course view annotated with
// module, lesson and enrollment counts in a single query. Listing screens
// chain ordering and pagination onto the result.
func CoursesWithFullCounts(db *gorm.DB) *gorm.DB {
	q := db.Model(&Course{}).Where("courses.is_deleted = ?", false)
	return store.WithCounts(q, "courses",
		store.Path{{Name: "modules", Table: "modules", FK: "course_id"}},
		store.Path{
			{Name: "modules", Table: "modules", FK: "course_id"},
			{Name: "lessons", Table: "lessons", FK: "module_id"},
		},
		store.Path{{Name: "enrollments", Table: "enrollments", FK: "course_id"}},
	)
}
