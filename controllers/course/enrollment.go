package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"lms/database"
	"lms/middleware"
	"lms/models"
	"lms/store"
	"lms/utils"
	validators "lms/validators/course"
)

// EnrollInCourse enrolls the caller in a course by slug. The operation is
// idempotent: a second call returns the existing enrollment, and the
// unique (student, course) index resolves concurrent first calls to a
// single row.
func EnrollInCourse(c *fiber.Ctx) error {
	db := database.Database.Db

	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	slug := c.Locals("courseSlug").(string)

	var course models.Course
	err := store.New[models.Course](db).Query().Where("slug = ?", slug).First(&course).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch course!", nil)
	}

	student, err := getOrCreateStudent(db, userID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to enroll in course!", nil)
	}

	var enrollment models.Enrollment
	err = db.Where("student_id = ? AND course_id = ?", student.ID, course.ID).First(&enrollment).Error
	if err == nil {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Already enrolled in this course!", enrollment)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to enroll in course!", nil)
	}

	enrollment = models.Enrollment{StudentID: student.ID, CourseID: course.ID}
	if err := db.Create(&enrollment).Error; err != nil {
		// Lost the race against a concurrent enroll; the existing row wins.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if err := db.Where("student_id = ? AND course_id = ?", student.ID, course.ID).
				First(&enrollment).Error; err != nil {
				return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to enroll in course!", nil)
			}
			return middleware.JsonResponse(c, fiber.StatusOK, true, "Already enrolled in this course!", enrollment)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to enroll in course!", nil)
	}

	utils.SendEnrollmentEmail(user.Email, user.Name, course.Title)
	go utils.NotifyEnrollment(utils.EnrollmentEvent{
		EnrollmentID: enrollment.ID,
		StudentID:    student.ID,
		CourseID:     course.ID,
		CourseSlug:   course.Slug,
		EnrolledAt:   enrollment.EnrolledAt,
	})

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Enrolled in course successfully!", enrollment)
}

// GetEnrollments lists the caller's enrollments with their courses.
func GetEnrollments(c *fiber.Ctx) error {
	db := database.Database.Db

	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var student models.Student
	if err := db.Where("user_id = ? AND is_deleted = ?", userID, false).First(&student).Error; err != nil {
		// No student profile yet means no enrollments.
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", fiber.Map{
			"enrollments": []models.Enrollment{},
			"pagination":  fiber.Map{"total": 0, "page": 1, "limit": 0},
		})
	}

	reqData, _ := c.Locals("validatedEnrollmentList").(*validators.ListPayload)

	page := 1
	limit := 10
	if reqData != nil && reqData.Page != nil {
		page = *reqData.Page
	}
	if reqData != nil && reqData.Limit != nil {
		limit = *reqData.Limit
	}
	offset := (page - 1) * limit

	q := store.New[models.Enrollment](db).Query().Where("student_id = ?", student.ID)

	var total int64
	q.Count(&total)

	var enrollments []models.Enrollment
	err := q.Preload("Course").
		Offset(offset).Limit(limit).
		Order("enrolled_at desc").
		Find(&enrollments).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	response := map[string]interface{}{
		"enrollments": enrollments,
		"pagination": map[string]interface{}{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", response)
}

// GetCourseProgress reports completed/total lessons for the caller's
// enrollment. A course with zero live lessons reports 0%, not an error.
func GetCourseProgress(c *fiber.Ctx) error {
	db := database.Database.Db

	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	slug := c.Locals("courseSlug").(string)

	course, enrollment, respErr := findEnrollment(c, db, userID, slug)
	if course == nil || enrollment == nil {
		return respErr // response already written by findEnrollment
	}

	completed, total, err := courseProgress(db, enrollment.ID, course.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to compute progress!", nil)
	}

	percent := 0.0
	if total > 0 {
		percent = float64(completed) / float64(total) * 100
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", fiber.Map{
		"course_id":         course.ID,
		"completed_lessons": completed,
		"total_lessons":     total,
		"percent":           percent,
	})
}

// ToggleLessonProgress marks a lesson complete or incomplete for the
// caller's enrollment. Completion stamps completed_at; un-completing
// clears it.
func ToggleLessonProgress(c *fiber.Ctx) error {
	db := database.Database.Db

	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	slug := c.Locals("courseSlug").(string)
	lessonID := c.Locals("lessonID").(uint)

	reqData, ok := c.Locals("validatedProgress").(*validators.ProgressTogglePayload)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	course, enrollment, respErr := findEnrollment(c, db, userID, slug)
	if course == nil || enrollment == nil {
		return respErr // response already written by findEnrollment
	}

	// The lesson must be a live lesson of this course.
	var lesson models.Lesson
	err := db.Model(&models.Lesson{}).
		Joins("JOIN modules ON modules.id = lessons.module_id AND modules.is_deleted = ?", false).
		Where("lessons.id = ? AND lessons.is_deleted = ? AND modules.course_id = ?", lessonID, false, course.ID).
		First(&lesson).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found in this course!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch lesson!", nil)
	}

	var progress models.LessonProgress
	err = db.Where("enrollment_id = ? AND lesson_id = ?", enrollment.ID, lesson.ID).First(&progress).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		progress = models.LessonProgress{
			EnrollmentID: enrollment.ID,
			LessonID:     lesson.ID,
			IsCompleted:  reqData.IsCompleted,
		}
		if err := db.Create(&progress).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Concurrent first toggle; fall through to the update path.
				if err := db.Where("enrollment_id = ? AND lesson_id = ?", enrollment.ID, lesson.ID).
					First(&progress).Error; err != nil {
					return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update progress!", nil)
				}
			} else {
				return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update progress!", nil)
			}
		} else {
			return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress updated successfully!", progress)
		}
	} else if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update progress!", nil)
	}

	progress.IsCompleted = reqData.IsCompleted
	if err := db.Save(&progress).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update progress!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress updated successfully!", progress)
}

// getOrCreateStudent lazily provisions the learner profile on first use.
func getOrCreateStudent(db *gorm.DB, userID uint) (*models.Student, error) {
	var student models.Student
	err := db.Where("user_id = ? AND is_deleted = ?", userID, false).First(&student).Error
	if err == nil {
		return &student, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	student = models.Student{UserID: userID}
	if err := db.Create(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if err := db.Where("user_id = ?", userID).First(&student).Error; err != nil {
				return nil, err
			}
			return &student, nil
		}
		return nil, err
	}
	return &student, nil
}

// findEnrollment resolves the course by slug and the caller's enrollment
// in it, writing the error response itself when either is missing.
func findEnrollment(c *fiber.Ctx, db *gorm.DB, userID uint, slug string) (*models.Course, *models.Enrollment, error) {
	var course models.Course
	err := store.New[models.Course](db).Query().Where("slug = ?", slug).First(&course).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
		}
		return nil, nil, middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch course!", nil)
	}

	var student models.Student
	if err := db.Where("user_id = ? AND is_deleted = ?", userID, false).First(&student).Error; err != nil {
		return nil, nil, middleware.JsonResponse(c, fiber.StatusNotFound, false, "Not enrolled in this course!", nil)
	}

	var enrollment models.Enrollment
	err = store.New[models.Enrollment](db).Query().
		Where("student_id = ? AND course_id = ?", student.ID, course.ID).
		First(&enrollment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, middleware.JsonResponse(c, fiber.StatusNotFound, false, "Not enrolled in this course!", nil)
		}
		return nil, nil, middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollment!", nil)
	}

	return &course, &enrollment, nil
}

// courseProgress counts completed vs. total live lessons of a course for
// one enrollment.
func courseProgress(db *gorm.DB, enrollmentID, courseID uint) (completed, total int64, err error) {
	err = db.Model(&models.Lesson{}).
		Joins("JOIN modules ON modules.id = lessons.module_id AND modules.is_deleted = ?", false).
		Where("modules.course_id = ? AND lessons.is_deleted = ?", courseID, false).
		Count(&total).Error
	if err != nil {
		return 0, 0, err
	}

	err = db.Model(&models.LessonProgress{}).
		Joins("JOIN lessons ON lessons.id = lesson_progress.lesson_id AND lessons.is_deleted = ?", false).
		Joins("JOIN modules ON modules.id = lessons.module_id AND modules.is_deleted = ?", false).
		Where("lesson_progress.enrollment_id = ? AND lesson_progress.is_completed = ? AND lesson_progress.is_deleted = ?", enrollmentID, true, false).
		Where("modules.course_id = ?", courseID).
		Count(&completed).Error
	if err != nil {
		return 0, 0, err
	}

	return completed, total, nil
}
