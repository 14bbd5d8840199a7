package courseRoutes

import (
	"github.com/gofiber/fiber/v2"

	controllers "lms/controllers/course"
	"lms/middleware"
	validators "lms/validators/course"
)

// SetupCourseRoutes sets up all user-facing course routes
func SetupCourseRoutes(app *fiber.App) {
	courseGroup := app.Group("/course")

	// Catalog browsing
	courseGroup.Get("/list", middleware.JWTMiddleware, validators.CourseList(), controllers.GetAllCourses)
	courseGroup.Get("/:slug", middleware.JWTMiddleware, validators.CourseSlug(), controllers.GetCourseDetails)
	courseGroup.Get("/:slug/lesson/:lesson_id", middleware.JWTMiddleware, validators.LessonLookup(), controllers.GetLessonDetail)

	// Enrollment (idempotent)
	courseGroup.Post("/:slug/enroll", middleware.JWTMiddleware, validators.CourseSlug(), controllers.EnrollInCourse)

	// Progress tracking
	courseGroup.Get("/:slug/progress", middleware.JWTMiddleware, validators.CourseSlug(), controllers.GetCourseProgress)
	courseGroup.Post("/:slug/lesson/:lesson_id/progress", middleware.JWTMiddleware, validators.ToggleLessonProgress(), controllers.ToggleLessonProgress)

	// User enrollments
	userGroup := app.Group("/user")
	userGroup.Get("/enrollments", middleware.JWTMiddleware, validators.GetUserEnrollments(), controllers.GetEnrollments)
}
