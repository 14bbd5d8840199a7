package courseRoutes

import (
	"github.com/gofiber/fiber/v2"

	controllers "lms/controllers/course"
	"lms/middleware"
	validators "lms/validators/course"
)

// SetupAdminCourseRoutes sets up all instructor/admin course management routes
func SetupAdminCourseRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin/course", middleware.JWTMiddleware, middleware.RequireRole("INSTRUCTOR", "ADMIN"))

	// Course CRUD
	adminGroup.Post("/create", validators.CreateCourse(), controllers.CreateCourse)
	adminGroup.Get("/list", controllers.GetInstructorCourses)
	adminGroup.Get("/trash", controllers.GetDeletedCourses)
	adminGroup.Put("/:id", validators.UpdateCourse(), controllers.UpdateCourse)
	adminGroup.Delete("/:id", validators.CourseID(), controllers.DeleteCourse)
	adminGroup.Post("/:id/restore", validators.CourseID(), controllers.RestoreCourse)
	adminGroup.Delete("/:id/permanent", validators.CourseID(), controllers.HardDeleteCourse)

	// Module Management
	adminGroup.Post("/:id/module", validators.CreateModule(), controllers.CreateModule)
	adminGroup.Get("/:id/modules", validators.CourseID(), controllers.ListModules)
	adminGroup.Put("/:id/module/:module_id", validators.UpdateModule(), controllers.UpdateModule)
	adminGroup.Delete("/:id/module/:module_id", validators.ModuleID(), controllers.DeleteModule)

	// Lesson Management
	adminGroup.Post("/:id/module/:module_id/lesson", validators.CreateLesson(), controllers.CreateLesson)

	lessonGroup := app.Group("/admin/lesson", middleware.JWTMiddleware, middleware.RequireRole("INSTRUCTOR", "ADMIN"))
	lessonGroup.Put("/:lesson_id", validators.UpdateLesson(), controllers.UpdateLesson)
	lessonGroup.Delete("/:lesson_id", validators.LessonID(), controllers.DeleteLesson)
	lessonGroup.Delete("/:lesson_id/permanent", validators.LessonID(), controllers.HardDeleteLesson)
	lessonGroup.Post("/:lesson_id/video", validators.LessonID(), controllers.UploadLessonVideo)
}
