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

// GetAllCourses lists non-deleted courses, newest first, each annotated
// with module/lesson/enrollment counts in a single query.
func GetAllCourses(c *fiber.Ctx) error {
	db := database.Database.Db

	reqData, _ := c.Locals("validatedList").(*validators.ListPayload)

	page := 1
	limit := 12
	if reqData != nil && reqData.Page != nil {
		page = *reqData.Page
	}
	if reqData != nil && reqData.Limit != nil {
		limit = *reqData.Limit
	}
	offset := (page - 1) * limit

	var total int64
	store.New[models.Course](db).Query().Count(&total)

	var courses []models.CourseWithCounts
	err := models.CoursesWithFullCounts(db).
		Order("courses.created_at desc").
		Offset(offset).Limit(limit).
		Scan(&courses).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	response := map[string]interface{}{
		"courses": courses,
		"pagination": map[string]interface{}{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", response)
}

// GetCourseDetails returns one course by slug with its ordered modules
// (each carrying a lessons count), their lessons, the caller's enrollment
// flag and the first lesson for a "continue learning" link.
func GetCourseDetails(c *fiber.Ctx) error {
	db := database.Database.Db
	slug := c.Locals("courseSlug").(string)

	var course models.Course
	err := store.New[models.Course](db).Query().Where("slug = ?", slug).First(&course).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch course!", nil)
	}

	var modules []models.ModuleWithCounts
	err = models.ModulesWithLessonsCount(db).
		Where("modules.course_id = ?", course.ID).
		Order("modules.order_index asc").
		Scan(&modules).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch course modules!", nil)
	}

	// One lessons query for all modules, grouped afterwards.
	moduleIDs := make([]uint, 0, len(modules))
	for _, m := range modules {
		moduleIDs = append(moduleIDs, m.ID)
	}

	lessonsByModule := make(map[uint][]models.Lesson)
	if len(moduleIDs) > 0 {
		var lessons []models.Lesson
		err = store.New[models.Lesson](db).Query().
			Where("module_id IN ?", moduleIDs).
			Order("module_id asc, order_index asc").
			Find(&lessons).Error
		if err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch lessons!", nil)
		}
		for _, l := range lessons {
			lessonsByModule[l.ModuleID] = append(lessonsByModule[l.ModuleID], l)
		}
	}
	for i := range modules {
		modules[i].Lessons = lessonsByModule[modules[i].ID]
	}

	isEnrolled := false
	if userID, ok := c.Locals("userId").(uint); ok {
		var student models.Student
		if err := db.Where("user_id = ? AND is_deleted = ?", userID, false).First(&student).Error; err == nil {
			var n int64
			store.New[models.Enrollment](db).Query().
				Where("student_id = ? AND course_id = ?", student.ID, course.ID).
				Count(&n)
			isEnrolled = n > 0
		}
	}

	var firstLesson *models.Lesson
	for _, m := range modules {
		if lessons := lessonsByModule[m.ID]; len(lessons) > 0 {
			firstLesson = &lessons[0]
			break
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully!", fiber.Map{
		"course":       course,
		"modules":      modules,
		"is_enrolled":  isEnrolled,
		"first_lesson": firstLesson,
	})
}

// GetLessonDetail returns one lesson of a course together with its
// previous and next lessons, computed over the course's ordered
// module → lesson flattening.
func GetLessonDetail(c *fiber.Ctx) error {
	db := database.Database.Db
	slug := c.Locals("courseSlug").(string)
	lessonID := c.Locals("lessonID").(uint)

	var course models.Course
	err := store.New[models.Course](db).Query().Where("slug = ?", slug).First(&course).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch course!", nil)
	}

	lessons, err := orderedCourseLessons(db, course.ID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch lessons!", nil)
	}

	currentIndex := -1
	for i, l := range lessons {
		if l.ID == lessonID {
			currentIndex = i
			break
		}
	}
	if currentIndex < 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found in this course!", nil)
	}

	var previous, next *models.Lesson
	if currentIndex > 0 {
		previous = &lessons[currentIndex-1]
	}
	if currentIndex < len(lessons)-1 {
		next = &lessons[currentIndex+1]
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson fetched successfully!", fiber.Map{
		"course":          course,
		"lesson":          lessons[currentIndex],
		"previous_lesson": previous,
		"next_lesson":     next,
	})
}

// orderedCourseLessons flattens a course's non-deleted lessons in module
// order, then lesson order.
func orderedCourseLessons(db *gorm.DB, courseID uint) ([]models.Lesson, error) {
	var lessons []models.Lesson
	err := db.Model(&models.Lesson{}).
		Joins("JOIN modules ON modules.id = lessons.module_id AND modules.is_deleted = ?", false).
		Where("modules.course_id = ? AND lessons.is_deleted = ?", courseID, false).
		Order("modules.order_index asc, lessons.order_index asc").
		Find(&lessons).Error
	return lessons, err
}
