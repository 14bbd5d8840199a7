package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"lms/config"
	"lms/database"
	"lms/middleware"
	"lms/models"
	"lms/store"
	"lms/utils"
	validators "lms/validators/course"
)

// CreateLesson adds a lesson to a module of an owned course.
func CreateLesson(c *fiber.Ctx) error {
	db := database.Database.Db

	course, respErr := ownedCourse(c, db)
	if course == nil {
		return respErr
	}

	module, respErr := courseModule(c, db, course)
	if module == nil {
		return respErr
	}

	reqData, ok := c.Locals("validatedLesson").(*validators.LessonPayload)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	lesson := models.Lesson{
		ModuleID: module.ID,
		Title:    reqData.Title,
		Content:  reqData.Content,
	}
	if reqData.OrderIndex != nil {
		lesson.OrderIndex = *reqData.OrderIndex
	} else {
		var maxOrder int
		db.Model(&models.Lesson{}).
			Where("module_id = ?", module.ID).
			Select("COALESCE(MAX(order_index), -1)").
			Scan(&maxOrder)
		lesson.OrderIndex = maxOrder + 1
	}

	if err := db.Create(&lesson).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "A lesson already uses this position in the module!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Lesson created successfully!", lesson)
}

// UpdateLesson edits a lesson located by :lesson_id; ownership is derived
// through the lesson's module and course.
func UpdateLesson(c *fiber.Ctx) error {
	db := database.Database.Db

	lesson, respErr := ownedLesson(c, db)
	if lesson == nil {
		return respErr
	}

	reqData, ok := c.Locals("validatedLesson").(*validators.LessonPayload)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	lesson.Title = reqData.Title
	lesson.Content = reqData.Content
	if reqData.OrderIndex != nil {
		lesson.OrderIndex = *reqData.OrderIndex
	}

	if err := db.Save(lesson).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "A lesson already uses this position in the module!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson updated successfully!", lesson)
}

// DeleteLesson soft-deletes a lesson.
func DeleteLesson(c *fiber.Ctx) error {
	db := database.Database.Db

	lesson, respErr := ownedLesson(c, db)
	if lesson == nil {
		return respErr
	}

	if err := store.New[models.Lesson](db).SoftDelete(lesson); err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson deleted successfully!", nil)
}

// HardDeleteLesson permanently removes a lesson. Rejected while progress
// rows still reference it.
func HardDeleteLesson(c *fiber.Ctx) error {
	db := database.Database.Db

	lesson, respErr := ownedLesson(c, db)
	if lesson == nil {
		return respErr
	}

	var refs int64
	if err := db.Model(&models.LessonProgress{}).Where("lesson_id = ?", lesson.ID).Count(&refs).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete lesson!", nil)
	}
	if refs > 0 {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Lesson still has progress records and cannot be permanently deleted!", nil)
	}

	if err := store.New[models.Lesson](db).HardDelete(lesson); err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson permanently deleted!", nil)
}

// UploadLessonVideo attaches a video file to a lesson. Oversized uploads
// are rejected before anything touches disk.
func UploadLessonVideo(c *fiber.Ctx) error {
	db := database.Database.Db

	lesson, respErr := ownedLesson(c, db)
	if lesson == nil {
		return respErr
	}

	file, err := c.FormFile("video")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Video file is required!", nil)
	}

	if err := utils.ValidateVideoUpload(file); err != nil {
		return middleware.JsonResponse(c, fiber.StatusRequestEntityTooLarge, false, err.Error(), nil)
	}

	filePath, err := utils.SaveUploadedFile(file, config.AppConfig.UploadDir)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save video!", nil)
	}

	lesson.VideoURL = utils.GetFileURL(filePath)
	if err := db.Model(lesson).Update("video_url", lesson.VideoURL).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Video uploaded successfully!", lesson)
}

// ownedLesson loads the lesson from :lesson_id and enforces course
// ownership through its module. On failure the response is written and
// lesson is nil.
func ownedLesson(c *fiber.Ctx, db *gorm.DB) (*models.Lesson, error) {
	user, ok := c.Locals("user").(*models.User)
	if !ok {
		return nil, middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	lessonID, ok := c.Locals("lessonID").(uint)
	if !ok {
		return nil, middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Lesson ID!", nil)
	}

	var lesson models.Lesson
	err := store.New[models.Lesson](db).Query().Where("id = ?", lessonID).First(&lesson).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
		}
		return nil, middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch lesson!", nil)
	}

	var module models.Module
	if err := db.Where("id = ?", lesson.ModuleID).First(&module).Error; err != nil {
		return nil, middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch lesson's module!", nil)
	}

	var course models.Course
	if err := db.Where("id = ?", module.CourseID).First(&course).Error; err != nil {
		return nil, middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch lesson's course!", nil)
	}

	if !ownsCourse(db, user, &course) {
		return nil, middleware.JsonResponse(c, fiber.StatusForbidden, false, "You do not own this course!", nil)
	}

	return &lesson, nil
}
