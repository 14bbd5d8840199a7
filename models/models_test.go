package models_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"lms/database"
	"lms/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxIdleConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func TestCourseSlugAssignedOnFirstSave(t *testing.T) {
	db := newTestDB(t)

	course := models.Course{Title: "Advanced Networking", InstructorID: 1}
	require.NoError(t, db.Create(&course).Error)

	assert.Equal(t, "advanced-networking", course.Slug)
	assert.NotEmpty(t, course.Slug)
}

func TestCourseSlugImmutableAfterTitleChange(t *testing.T) {
	db := newTestDB(t)

	course := models.Course{Title: "Advanced Networking", InstructorID: 1}
	require.NoError(t, db.Create(&course).Error)
	original := course.Slug

	course.Title = "Completely Different Title"
	require.NoError(t, db.Save(&course).Error)

	var reloaded models.Course
	require.NoError(t, db.First(&reloaded, course.ID).Error)
	assert.Equal(t, original, reloaded.Slug)
	assert.Equal(t, "Completely Different Title", reloaded.Title)
}

func TestCourseSlugBlankTitleFallsBackToRandomToken(t *testing.T) {
	db := newTestDB(t)

	course := models.Course{Title: "!!!", InstructorID: 1}
	require.NoError(t, db.Create(&course).Error)

	assert.Len(t, course.Slug, 8)
}

func TestCourseSlugUniquePerType(t *testing.T) {
	db := newTestDB(t)

	a := models.Course{Title: "Same Name", InstructorID: 1}
	b := models.Course{Title: "Same Name", InstructorID: 2}
	require.NoError(t, db.Create(&a).Error)
	require.NoError(t, db.Create(&b).Error)

	assert.NotEqual(t, a.Slug, b.Slug)
	assert.Equal(t, a.Slug+"-2", b.Slug)
}

func TestLessonProgressStampsAndClearsCompletedAt(t *testing.T) {
	db := newTestDB(t)

	progress := models.LessonProgress{EnrollmentID: 1, LessonID: 1, IsCompleted: true}
	require.NoError(t, db.Create(&progress).Error)
	require.NotNil(t, progress.CompletedAt)

	progress.IsCompleted = false
	require.NoError(t, db.Save(&progress).Error)
	assert.Nil(t, progress.CompletedAt)

	var reloaded models.LessonProgress
	require.NoError(t, db.First(&reloaded, progress.ID).Error)
	assert.False(t, reloaded.IsCompleted)
	assert.Nil(t, reloaded.CompletedAt)

	reloaded.IsCompleted = true
	require.NoError(t, db.Save(&reloaded).Error)
	assert.NotNil(t, reloaded.CompletedAt)
}

func TestEnrollmentUniquePerStudentCourse(t *testing.T) {
	db := newTestDB(t)

	first := models.Enrollment{StudentID: 1, CourseID: 1}
	require.NoError(t, db.Create(&first).Error)
	assert.False(t, first.EnrolledAt.IsZero())

	dup := models.Enrollment{StudentID: 1, CourseID: 1}
	err := db.Create(&dup).Error
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))
}

func TestModuleOrderUniqueWithinCourse(t *testing.T) {
	db := newTestDB(t)

	first := models.Module{CourseID: 1, Title: "Intro", OrderIndex: 0}
	require.NoError(t, db.Create(&first).Error)

	dup := models.Module{CourseID: 1, Title: "Also Intro", OrderIndex: 0}
	err := db.Create(&dup).Error
	require.Error(t, err)
	assert.True(t, errors.Is(err, gorm.ErrDuplicatedKey))

	// Same position in another course is fine.
	other := models.Module{CourseID: 2, Title: "Intro", OrderIndex: 0}
	assert.NoError(t, db.Create(&other).Error)
}
