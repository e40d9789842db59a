package courseRoutes

import (
	controllers "lms/controllers/course"
	"lms/middleware"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupInstructorRoutes sets up course authoring, enrollment management,
// grading and certificate routes. Role checks live in the controllers.
func SetupInstructorRoutes(app *fiber.App) {
	instructorGroup := app.Group("/instructor", middleware.JWTMiddleware)

	// Course authoring
	instructorGroup.Post("/course", validators.CreateCourse(), controllers.CreateCourse)
	instructorGroup.Get("/courses", controllers.ListMyCourses)
	instructorGroup.Patch("/course/:id", validators.UpdateCourse(), controllers.UpdateCourse)
	instructorGroup.Delete("/course/:id", validators.GetCourseDetail(), controllers.DeleteCourse)
	instructorGroup.Post("/course/:id/publish", validators.GetCourseDetail(), controllers.PublishCourse)

	// Modules and lessons
	instructorGroup.Post("/course/:id/module", validators.CreateModule(), controllers.CreateModule)
	instructorGroup.Get("/course/:id/modules", validators.GetCourseDetail(), controllers.ListModules)
	instructorGroup.Post("/course/:course_id/module/:module_id/lesson", validators.CreateLesson(), controllers.CreateLesson)
	instructorGroup.Post("/lesson/:lesson_id/publish", validators.LessonParam(), controllers.PublishLesson)
	instructorGroup.Delete("/lesson/:lesson_id", validators.LessonParam(), controllers.DeleteLesson)

	// Assessments
	instructorGroup.Post("/course/:id/quiz", validators.CreateQuiz(), controllers.InstructorCreateQuiz)
	instructorGroup.Patch("/quiz/:quiz_id", validators.UpdateQuiz(), controllers.InstructorUpdateQuiz)
	instructorGroup.Post("/course/:id/short-questions", validators.CreateShortQuestionSet(), controllers.InstructorCreateShortQuestionSet)

	// Enrollment management
	instructorGroup.Get("/course/:course_id/enrollments", validators.CourseAction(), controllers.InstructorGetCourseEnrollments)
	instructorGroup.Post("/enrollment/:enrollment_id/approve", validators.EnrollmentAction(), controllers.ApproveEnrollment)
	instructorGroup.Post("/enrollment/:enrollment_id/reject", validators.EnrollmentAction(), controllers.RejectEnrollment)
	instructorGroup.Post("/enrollment/:enrollment_id/approve-completion", validators.EnrollmentAction(), controllers.ApproveCompletion)

	// Grading workflow
	instructorGroup.Get("/short-questions/:set_id/submissions", validators.SetParam(), controllers.InstructorListSubmissions)
	instructorGroup.Post("/submission/:submission_id/grade", validators.GradeSubmission(), controllers.GradeSubmission)

	// Certificates
	instructorGroup.Post("/certificate/issue", validators.IssueCertificate(), controllers.IssueCertificate)

	// Dashboards
	instructorGroup.Get("/dashboard", controllers.InstructorDashboardStats)

	adminGroup := app.Group("/admin", middleware.JWTMiddleware, middleware.RequireRole("ADMIN"))
	adminGroup.Get("/dashboard", controllers.AdminDashboardStats)
	adminGroup.Get("/certificates", controllers.AdminGetIssuedCertificates)
	adminGroup.Delete("/certificates/:cert_id", validators.CertificateAction(), controllers.RevokeCertificate)
}
