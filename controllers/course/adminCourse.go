package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"lms/database"
	"lms/middleware"
	"lms/models"
	"lms/store"
	validators "lms/validators/course"
)

// slugCreateAttempts bounds the retry loop when two first-saves race to
// the same derived slug and the unique index rejects the loser.
const slugCreateAttempts = 3

// CreateCourse creates a course owned by the calling instructor. The slug
// is derived from the title on this first save and never changes again.
func CreateCourse(c *fiber.Ctx) error {
	db := database.Database.Db

	user, ok := c.Locals("user").(*models.User)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedCourse").(*validators.CreateCoursePayload)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	instructor, err := getOrCreateInstructor(db, user.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create course!", nil)
	}

	course := models.Course{
		Title:        reqData.Title,
		Description:  reqData.Description,
		InstructorID: instructor.ID,
	}

	for attempt := 0; attempt < slugCreateAttempts; attempt++ {
		err = db.Create(&course).Error
		if err == nil {
			break
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Slug race: clear it so BeforeSave picks a fresh suffix.
			course.Slug = ""
			continue
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create course!", nil)
	}
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Course slug conflict, please retry!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", course)
}

// UpdateCourse edits title/description. The slug stays untouched so
// published URLs keep working.
func UpdateCourse(c *fiber.Ctx) error {
	db := database.Database.Db

	course, respErr := ownedCourse(c, db)
	if course == nil {
		return respErr
	}

	reqData, ok := c.Locals("validatedCourseUpdate").(*validators.UpdateCoursePayload)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	// Update only provided fields
	if reqData.Title != "" {
		course.Title = reqData.Title
	}
	if reqData.Description != "" {
		course.Description = reqData.Description
	}

	if err := db.Save(course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully!", course)
}

// DeleteCourse soft-deletes a course and cascades the flag to its modules
// and lessons in one transaction.
func DeleteCourse(c *fiber.Ctx) error {
	db := database.Database.Db

	course, respErr := ownedCourse(c, db)
	if course == nil {
		return respErr
	}

	var lessonsFlipped, modulesFlipped int64
	err := db.Transaction(func(tx *gorm.DB) error {
		lessonStore := store.New[models.Lesson](tx)
		moduleStore := store.New[models.Module](tx)

		var err error
		lessonsFlipped, err = lessonStore.SoftDeleteAll(
			lessonStore.Query().Where(
				"module_id IN (?)",
				tx.Model(&models.Module{}).Select("id").Where("course_id = ?", course.ID),
			),
		)
		if err != nil {
			return err
		}

		modulesFlipped, err = moduleStore.SoftDeleteAll(
			moduleStore.Query().Where("course_id = ?", course.ID),
		)
		if err != nil {
			return err
		}

		return store.New[models.Course](tx).SoftDelete(course)
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course deleted successfully!", fiber.Map{
		"modules_deleted": modulesFlipped,
		"lessons_deleted": lessonsFlipped,
	})
}

// RestoreCourse clears the course's tombstone. Children stay deleted
// until restored explicitly.
func RestoreCourse(c *fiber.Ctx) error {
	db := database.Database.Db

	user, ok := c.Locals("user").(*models.User)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(uint)

	courseStore := store.New[models.Course](db)

	var course models.Course
	err := courseStore.QueryDeleted().Where("id = ?", courseID).First(&course).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Deleted course not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch course!", nil)
	}

	if !ownsCourse(db, user, &course) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not own this course!", nil)
	}

	if err := courseStore.Restore(&course); err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to restore course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course restored successfully!", course)
}

// GetDeletedCourses lists the caller's tombstoned courses (the trash view).
func GetDeletedCourses(c *fiber.Ctx) error {
	db := database.Database.Db

	user, ok := c.Locals("user").(*models.User)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	q := store.New[models.Course](db).QueryDeleted()
	if user.Role != "ADMIN" {
		var instructor models.Instructor
		if err := db.Where("user_id = ? AND is_deleted = ?", user.ID, false).First(&instructor).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusOK, true, "Deleted courses fetched successfully!", fiber.Map{"courses": []models.Course{}})
		}
		q = q.Where("instructor_id = ?", instructor.ID)
	}

	var courses []models.Course
	if err := q.Order("deleted_at desc").Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch deleted courses!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Deleted courses fetched successfully!", fiber.Map{
		"courses": courses,
	})
}

// HardDeleteCourse permanently removes a course and its content. Rejected
// while any enrollment still references the course (live or tombstoned),
// so student history is never cascaded away silently.
func HardDeleteCourse(c *fiber.Ctx) error {
	db := database.Database.Db

	user, ok := c.Locals("user").(*models.User)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(uint)

	courseStore := store.New[models.Course](db)

	var course models.Course
	err := courseStore.QueryAll().Where("id = ?", courseID).First(&course).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch course!", nil)
	}

	if !ownsCourse(db, user, &course) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not own this course!", nil)
	}

	var enrollmentRefs int64
	if err := db.Model(&models.Enrollment{}).Where("course_id = ?", course.ID).Count(&enrollmentRefs).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete course!", nil)
	}
	if enrollmentRefs > 0 {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Course still has enrollments and cannot be permanently deleted!", nil)
	}

	var progressRefs int64
	err = db.Model(&models.LessonProgress{}).
		Joins("JOIN lessons ON lessons.id = lesson_progress.lesson_id").
		Joins("JOIN modules ON modules.id = lessons.module_id").
		Where("modules.course_id = ?", course.ID).
		Count(&progressRefs).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete course!", nil)
	}
	if progressRefs > 0 {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Course lessons still have progress records and cannot be permanently deleted!", nil)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().
			Where("module_id IN (?)", tx.Model(&models.Module{}).Select("id").Where("course_id = ?", course.ID)).
			Delete(&models.Lesson{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("course_id = ?", course.ID).Delete(&models.Module{}).Error; err != nil {
			return err
		}
		return store.New[models.Course](tx).HardDelete(&course)
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course permanently deleted!", nil)
}

// GetInstructorCourses lists the caller's own courses with counts,
// including drafts nobody is enrolled in yet.
func GetInstructorCourses(c *fiber.Ctx) error {
	db := database.Database.Db

	user, ok := c.Locals("user").(*models.User)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	q := models.CoursesWithFullCounts(db)
	if user.Role != "ADMIN" {
		var instructor models.Instructor
		if err := db.Where("user_id = ? AND is_deleted = ?", user.ID, false).First(&instructor).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", fiber.Map{"courses": []models.CourseWithCounts{}})
		}
		q = q.Where("courses.instructor_id = ?", instructor.ID)
	}

	var courses []models.CourseWithCounts
	if err := q.Order("courses.created_at desc").Scan(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", fiber.Map{
		"courses": courses,
	})
}

// getOrCreateInstructor lazily provisions a teaching profile.
func getOrCreateInstructor(db *gorm.DB, userID uint) (*models.Instructor, error) {
	var instructor models.Instructor
	err := db.Where("user_id = ? AND is_deleted = ?", userID, false).First(&instructor).Error
	if err == nil {
		return &instructor, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	instructor = models.Instructor{UserID: userID}
	if err := db.Create(&instructor).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if err := db.Where("user_id = ?", userID).First(&instructor).Error; err != nil {
				return nil, err
			}
			return &instructor, nil
		}
		return nil, err
	}
	return &instructor, nil
}

// ownsCourse reports whether the user may mutate the course: admins
// always, instructors only for their own courses.
func ownsCourse(db *gorm.DB, user *models.User, course *models.Course) bool {
	if user.Role == "ADMIN" {
		return true
	}
	var instructor models.Instructor
	if err := db.Where("user_id = ? AND is_deleted = ?", user.ID, false).First(&instructor).Error; err != nil {
		return false
	}
	return course.InstructorID == instructor.ID
}

// ownedCourse loads the course from :id and enforces ownership. On
// failure the response is already written and course is nil.
func ownedCourse(c *fiber.Ctx, db *gorm.DB) (*models.Course, error) {
	user, ok := c.Locals("user").(*models.User)
	if !ok {
		return nil, middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID, ok := c.Locals("courseID").(uint)
	if !ok {
		return nil, middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
	}

	var course models.Course
	err := store.New[models.Course](db).Query().Where("id = ?", courseID).First(&course).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
		}
		return nil, middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch course!", nil)
	}

	if !ownsCourse(db, user, &course) {
		return nil, middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not own this course!", nil)
	}

	return &course, nil
}
