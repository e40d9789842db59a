package courseRoutes

import (
	controllers "lms/controllers/course"
	userControllers "lms/controllers/user"
	"lms/middleware"
	validators "lms/validators/course"
	userValidators "lms/validators/user"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up all student-facing course routes
func SetupCourseRoutes(app *fiber.App) {
	courseGroup := app.Group("/course")

	// Course catalog
	courseGroup.Get("/list", middleware.JWTMiddleware, validators.CourseList(), controllers.GetAllCourses)
	courseGroup.Get("/:id", middleware.JWTMiddleware, validators.GetCourseDetail(), controllers.GetCourseDetails)

	// Enrollment lifecycle
	courseGroup.Post("/:course_id/enroll", middleware.JWTMiddleware, validators.EnrollCourse(), controllers.EnrollInCourse)
	courseGroup.Delete("/:course_id/enroll", middleware.JWTMiddleware, validators.CourseAction(), controllers.CancelEnrollment)

	// Lessons and completion toggling
	courseGroup.Get("/:course_id/lessons", middleware.JWTMiddleware, validators.CourseAction(), controllers.GetCourseLessons)
	courseGroup.Post("/:course_id/lesson/:lesson_id/complete", middleware.JWTMiddleware, validators.LessonToggle(), controllers.MarkLessonComplete)
	courseGroup.Delete("/:course_id/lesson/:lesson_id/complete", middleware.JWTMiddleware, validators.LessonToggle(), controllers.MarkLessonIncomplete)

	// Quiz
	courseGroup.Get("/:course_id/quiz", middleware.JWTMiddleware, validators.CourseAction(), controllers.GetCourseQuiz)
	courseGroup.Post("/:course_id/quiz/start", middleware.JWTMiddleware, validators.CourseAction(), controllers.StartQuizAttempt)
	courseGroup.Post("/:course_id/quiz/submit", middleware.JWTMiddleware, validators.SubmitQuiz(), controllers.SubmitQuiz)
	courseGroup.Get("/:course_id/quiz/attempts", middleware.JWTMiddleware, validators.CourseAction(), controllers.GetQuizAttempts)

	// Short questions
	courseGroup.Get("/:course_id/short-questions", middleware.JWTMiddleware, validators.CourseAction(), controllers.GetCourseShortQuestions)
	courseGroup.Post("/:course_id/short-questions/submit", middleware.JWTMiddleware, validators.SubmitShortQuestions(), controllers.SubmitShortQuestions)
	courseGroup.Get("/:course_id/short-questions/submission", middleware.JWTMiddleware, validators.CourseAction(), controllers.GetMyShortQuestionSubmission)

	// Progress tracking
	courseGroup.Get("/:course_id/progress", middleware.JWTMiddleware, validators.CourseAction(), controllers.GetCourseProgress)

	// User-scoped listings
	userGroup := app.Group("/user")
	userGroup.Get("/enrollments", middleware.JWTMiddleware, controllers.GetUserEnrollmentsList)
	userGroup.Get("/certificates", middleware.JWTMiddleware, controllers.GetUserCertificates)
	userGroup.Get("/notifications", middleware.JWTMiddleware, userControllers.GetNotifications)
	userGroup.Patch("/notifications/:notification_id/read", middleware.JWTMiddleware, userValidators.NotificationAction(), userControllers.MarkNotificationRead)
}
