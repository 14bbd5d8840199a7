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

// CreateModule adds a module to an owned course. The (course, order)
// unique index turns duplicate positions into a conflict.
func CreateModule(c *fiber.Ctx) error {
	db := database.Database.Db

	course, respErr := ownedCourse(c, db)
	if course == nil {
		return respErr
	}

	reqData, ok := c.Locals("validatedModule").(*validators.ModulePayload)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	module := models.Module{
		CourseID: course.ID,
		Title:    reqData.Title,
	}
	if reqData.OrderIndex != nil {
		module.OrderIndex = *reqData.OrderIndex
	} else {
		// Append after the current last position, tombstones included so a
		// restored module never collides.
		var maxOrder int
		db.Model(&models.Module{}).
			Where("course_id = ?", course.ID).
			Select("COALESCE(MAX(order_index), -1)").
			Scan(&maxOrder)
		module.OrderIndex = maxOrder + 1
	}

	if err := db.Create(&module).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "A module already uses this position in the course!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Module created successfully!", module)
}

// UpdateModule edits title and position of a module of an owned course.
func UpdateModule(c *fiber.Ctx) error {
	db := database.Database.Db

	course, respErr := ownedCourse(c, db)
	if course == nil {
		return respErr
	}

	module, respErr := courseModule(c, db, course)
	if module == nil {
		return respErr
	}

	reqData, ok := c.Locals("validatedModule").(*validators.ModulePayload)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	module.Title = reqData.Title
	if reqData.OrderIndex != nil {
		module.OrderIndex = *reqData.OrderIndex
	}

	if err := db.Save(module).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "A module already uses this position in the course!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module updated successfully!", module)
}

// DeleteModule soft-deletes a module and cascades the flag to its lessons.
func DeleteModule(c *fiber.Ctx) error {
	db := database.Database.Db

	course, respErr := ownedCourse(c, db)
	if course == nil {
		return respErr
	}

	module, respErr := courseModule(c, db, course)
	if module == nil {
		return respErr
	}

	var lessonsFlipped int64
	err := db.Transaction(func(tx *gorm.DB) error {
		lessonStore := store.New[models.Lesson](tx)

		var err error
		lessonsFlipped, err = lessonStore.SoftDeleteAll(
			lessonStore.Query().Where("module_id = ?", module.ID),
		)
		if err != nil {
			return err
		}

		return store.New[models.Module](tx).SoftDelete(module)
	})
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete module!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module deleted successfully!", fiber.Map{
		"lessons_deleted": lessonsFlipped,
	})
}

// ListModules returns an owned course's modules with lesson counts.
func ListModules(c *fiber.Ctx) error {
	db := database.Database.Db

	course, respErr := ownedCourse(c, db)
	if course == nil {
		return respErr
	}

	var modules []models.ModuleWithCounts
	err := models.ModulesWithLessonsCount(db).
		Where("modules.course_id = ?", course.ID).
		Order("modules.order_index asc").
		Scan(&modules).Error
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch modules!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Modules fetched successfully!", fiber.Map{
		"modules": modules,
	})
}

// courseModule loads the module from :module_id and checks it belongs to
// the course. On failure the response is written and module is nil.
func courseModule(c *fiber.Ctx, db *gorm.DB, course *models.Course) (*models.Module, error) {
	moduleID, ok := c.Locals("moduleID").(uint)
	if !ok {
		return nil, middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Module ID!", nil)
	}

	var module models.Module
	err := store.New[models.Module](db).Query().
		Where("id = ? AND course_id = ?", moduleID, course.ID).
		First(&module).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, middleware.JsonResponse(c, fiber.StatusNotFound, false, "Module not found in this course!", nil)
		}
		return nil, middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch module!", nil)
	}

	return &module, nil
}
