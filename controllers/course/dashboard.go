package controllers

import (
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"

	"github.com/gofiber/fiber/v2"
	"github.com/jinzhu/now"
)

// InstructorDashboardStats summarizes the instructor's courses: enrollments,
// completions this month and the grading queue
func InstructorDashboardStats(c *fiber.Ctx) error {
	user, err := requireInstructor(c)
	if user == nil {
		return err
	}

	db := database.Database.Db

	var courseIDs []uint
	courseQuery := db.Model(&courseModels.Course{}).Where("is_deleted = ?", false)
	if user.Role != "ADMIN" {
		courseQuery = courseQuery.Where("instructor_id = ?", user.ID)
	}
	courseQuery.Pluck("id", &courseIDs)

	if len(courseIDs) == 0 {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard stats fetched!", fiber.Map{
			"total_courses":       0,
			"total_enrollments":   0,
			"pending_enrollments": 0,
			"pending_grading":     0,
			"completed_this_month": 0,
		})
	}

	var totalEnrollments int64
	db.Model(&courseModels.Enrollment{}).Where("course_id IN ? AND is_deleted = ?", courseIDs, false).Count(&totalEnrollments)

	var pendingEnrollments int64
	db.Model(&courseModels.Enrollment{}).Where("course_id IN ? AND status = ? AND is_deleted = ?", courseIDs, "PENDING", false).Count(&pendingEnrollments)

	var pendingGrading int64
	db.Model(&courseModels.ShortQuestionSubmission{}).Where("course_id IN ? AND status = ? AND is_deleted = ?", courseIDs, courseModels.SubmissionPending, false).Count(&pendingGrading)

	monthStart := now.BeginningOfMonth()
	monthEnd := now.EndOfMonth()

	var completedThisMonth int64
	db.Model(&courseModels.Enrollment{}).
		Where("course_id IN ? AND completed = ? AND is_deleted = ?", courseIDs, true, false).
		Where("completed_at BETWEEN ? AND ?", monthStart, monthEnd).
		Count(&completedThisMonth)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard stats fetched!", fiber.Map{
		"total_courses":        len(courseIDs),
		"total_enrollments":    totalEnrollments,
		"pending_enrollments":  pendingEnrollments,
		"pending_grading":      pendingGrading,
		"completed_this_month": completedThisMonth,
	})
}

// AdminDashboardStats summarizes the whole platform (admin only)
func AdminDashboardStats(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	if user.Role != "ADMIN" {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Admin only.", nil)
	}

	db := database.Database.Db

	var totalStudents int64
	db.Model(&models.User{}).Where("role = ? AND is_deleted = ?", "STUDENT", false).Count(&totalStudents)

	var totalInstructors int64
	db.Model(&models.User{}).Where("role = ? AND is_deleted = ?", "INSTRUCTOR", false).Count(&totalInstructors)

	var totalCourses int64
	db.Model(&courseModels.Course{}).Where("is_deleted = ?", false).Count(&totalCourses)

	var totalEnrollments int64
	db.Model(&courseModels.Enrollment{}).Where("is_deleted = ?", false).Count(&totalEnrollments)

	var totalCertificates int64
	db.Model(&courseModels.Certificate{}).Where("is_deleted = ?", false).Count(&totalCertificates)

	var totalRevenue int64
	db.Model(&models.CoursePayment{}).Where("status = ? AND is_deleted = ?", "VERIFIED", false).
		Select("COALESCE(SUM(amount), 0)").Scan(&totalRevenue)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard stats fetched!", fiber.Map{
		"total_students":     totalStudents,
		"total_instructors":  totalInstructors,
		"total_courses":      totalCourses,
		"total_enrollments":  totalEnrollments,
		"total_certificates": totalCertificates,
		"total_revenue":      totalRevenue,
	})
}
