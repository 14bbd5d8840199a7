package courseValidator

import (
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"lms/middleware"
)

var validate = validator.New()

// CreateCoursePayload is the validated course creation body.
type CreateCoursePayload struct {
	Title       string `json:"title" validate:"required,min=3,max=200"`
	Description string `json:"description"`
}

// UpdateCoursePayload is the validated course update body. Empty fields
// are left unchanged; the slug is never part of it.
type UpdateCoursePayload struct {
	Title       string `json:"title" validate:"omitempty,min=3,max=200"`
	Description string `json:"description"`
}

// ModulePayload is the validated module create/update body.
type ModulePayload struct {
	Title      string `json:"title" validate:"required,min=2,max=200"`
	OrderIndex *int   `json:"order_index" validate:"omitempty,min=0"`
}

// LessonPayload is the validated lesson create/update body.
type LessonPayload struct {
	Title      string `json:"title" validate:"required,min=2,max=200"`
	Content    string `json:"content"`
	OrderIndex *int   `json:"order_index" validate:"omitempty,min=0"`
}

func CreateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateCoursePayload)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.Title = strings.TrimSpace(reqData.Title)
		reqData.Description = strings.TrimSpace(reqData.Description)

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, fieldErrors(err))
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

func UpdateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := parseCourseID(c); err != nil {
			return err
		}

		reqData := new(UpdateCoursePayload)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.Title = strings.TrimSpace(reqData.Title)
		reqData.Description = strings.TrimSpace(reqData.Description)

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, fieldErrors(err))
		}

		c.Locals("validatedCourseUpdate", reqData)
		return c.Next()
	}
}

// CourseID validates the :id path parameter for course operations.
func CourseID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := parseCourseID(c); err != nil {
			return err
		}
		return c.Next()
	}
}

func CreateModule() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := parseCourseID(c); err != nil {
			return err
		}

		reqData := new(ModulePayload)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.Title = strings.TrimSpace(reqData.Title)

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, fieldErrors(err))
		}

		c.Locals("validatedModule", reqData)
		return c.Next()
	}
}

func UpdateModule() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := parseCourseID(c); err != nil {
			return err
		}
		if err := parseModuleID(c); err != nil {
			return err
		}

		reqData := new(ModulePayload)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.Title = strings.TrimSpace(reqData.Title)

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, fieldErrors(err))
		}

		c.Locals("validatedModule", reqData)
		return c.Next()
	}
}

// ModuleID validates the :id and :module_id path parameters.
func ModuleID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := parseCourseID(c); err != nil {
			return err
		}
		if err := parseModuleID(c); err != nil {
			return err
		}
		return c.Next()
	}
}

func CreateLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := parseCourseID(c); err != nil {
			return err
		}
		if err := parseModuleID(c); err != nil {
			return err
		}

		reqData := new(LessonPayload)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.Title = strings.TrimSpace(reqData.Title)

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, fieldErrors(err))
		}

		c.Locals("validatedLesson", reqData)
		return c.Next()
	}
}

func UpdateLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := parseLessonID(c); err != nil {
			return err
		}

		reqData := new(LessonPayload)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.Title = strings.TrimSpace(reqData.Title)

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, fieldErrors(err))
		}

		c.Locals("validatedLesson", reqData)
		return c.Next()
	}
}

// LessonID validates the :lesson_id path parameter.
func LessonID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := parseLessonID(c); err != nil {
			return err
		}
		return c.Next()
	}
}

func parseCourseID(c *fiber.Ctx) error {
	id, err := strconv.Atoi(strings.TrimSpace(c.Params("id")))
	if err != nil || id <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Course ID!", nil)
	}
	c.Locals("courseID", uint(id))
	return nil
}

func parseModuleID(c *fiber.Ctx) error {
	id, err := strconv.Atoi(strings.TrimSpace(c.Params("module_id")))
	if err != nil || id <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Module ID!", nil)
	}
	c.Locals("moduleID", uint(id))
	return nil
}

func parseLessonID(c *fiber.Ctx) error {
	id, err := strconv.Atoi(strings.TrimSpace(c.Params("lesson_id")))
	if err != nil || id <= 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Lesson ID!", nil)
	}
	c.Locals("lessonID", uint(id))
	return nil
}

// fieldErrors flattens validator.v10 errors into a field -> message map.
func fieldErrors(err error) map[string]string {
	errors := make(map[string]string)
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		errors["request"] = "Invalid request data!"
		return errors
	}
	for _, fe := range validationErrors {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			errors[field] = field + " is required!"
		case "min":
			errors[field] = field + " must be at least " + fe.Param() + " characters long!"
		case "max":
			errors[field] = field + " must be at most " + fe.Param() + " characters long!"
		default:
			errors[field] = field + " is invalid!"
		}
	}
	return errors
}
