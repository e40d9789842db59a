package controllers

import (
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/utils"

	"github.com/gofiber/fiber/v2"
)

// EnrollInCourse requests enrollment in a course. Paid courses require a
// payment reference verified against the gateway before the enrollment is
// created.
func EnrollInCourse(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID := c.Locals("courseID").(int)

	// Check if course exists and is active
	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ? AND status = ? AND is_published = ?", courseID, false, "ACTIVE", true).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found or not active!", nil)
	}

	// Check if user is already enrolled
	var existingEnrollment courseModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&existingEnrollment).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "User already enrolled in this course!", nil)
	}

	// Paid courses need a verified payment before enrollment
	if course.Price > 0 {
		reqData, ok := c.Locals("validatedEnrollPayment").(*struct {
			PaymentID string `json:"payment_id"`
			Gateway   string `json:"gateway"`
		})
		if !ok || reqData.PaymentID == "" {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Payment reference is required for paid courses!", nil)
		}

		// Duplicate payment reference
		var existingPayment models.CoursePayment
		if err := database.Database.Db.Where("payment_id = ? AND is_deleted = ?", reqData.PaymentID, false).First(&existingPayment).Error; err == nil {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Payment already processed!", nil)
		}

		if err := utils.VerifyPayment(reqData.PaymentID, course.Price); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Payment verification failed!", nil)
		}

		payment := models.CoursePayment{
			UserID:    userID,
			CourseID:  uint(courseID),
			Amount:    course.Price,
			Gateway:   reqData.Gateway,
			PaymentID: reqData.PaymentID,
			Status:    "VERIFIED",
		}
		if err := database.Database.Db.Create(&payment).Error; err != nil {
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to record payment!", nil)
		}
	}

	// Create enrollment
	enrollment := courseModels.Enrollment{
		UserID:   userID,
		CourseID: uint(courseID),
		Status:   "PENDING",
	}

	// Save to database with transaction
	tx := database.Database.Db.Begin()
	if err := tx.Create(&enrollment).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to enroll in course!", nil)
	}
	tx.Commit()

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment requested successfully!", enrollment)
}

// CancelEnrollment cancels a pending enrollment. Approved enrollments are
// kept; only the pending request can be withdrawn.
func CancelEnrollment(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	var enrollment courseModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Enrollment not found!", nil)
	}

	if enrollment.Status == "APPROVED" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Approved enrollments cannot be cancelled!", nil)
	}

	enrollment.IsDeleted = true
	if err := database.Database.Db.Save(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to cancel enrollment!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment cancelled successfully!", nil)
}

// GetUserEnrollmentsList gets all enrollments for the current user
func GetUserEnrollmentsList(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	type EnrollmentWithCourse struct {
		courseModels.Enrollment
		CourseName        string `json:"course_name"`
		CourseDescription string `json:"course_description"`
		CourseDuration    int64  `json:"course_duration"`
	}

	var enrollments []courseModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND is_deleted = ?", userID, false).Order("created_at desc").Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	result := make([]EnrollmentWithCourse, len(enrollments))
	for i, e := range enrollments {
		var course courseModels.Course
		database.Database.Db.Where("id = ?", e.CourseID).First(&course)
		result[i] = EnrollmentWithCourse{
			Enrollment:        e,
			CourseName:        course.Title,
			CourseDescription: course.Description,
			CourseDuration:    course.Duration,
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", fiber.Map{
		"enrollments": result,
		"total":       len(result),
	})
}

// InstructorGetCourseEnrollments lists enrollments of a course for its instructor
func InstructorGetCourseEnrollments(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", courseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if user.Role != "ADMIN" && course.InstructorID != userID {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Not your course.", nil)
	}

	type EnrollmentWithStudent struct {
		courseModels.Enrollment
		StudentName  string `json:"student_name"`
		StudentEmail string `json:"student_email"`
	}

	var enrollments []courseModels.Enrollment
	if err := database.Database.Db.Where("course_id = ? AND is_deleted = ?", courseID, false).Order("created_at desc").Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	result := make([]EnrollmentWithStudent, len(enrollments))
	for i, e := range enrollments {
		var student models.User
		database.Database.Db.Where("id = ?", e.UserID).First(&student)
		result[i] = EnrollmentWithStudent{
			Enrollment:   e,
			StudentName:  student.Name,
			StudentEmail: student.Email,
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", fiber.Map{
		"enrollments": result,
		"total":       len(result),
	})
}

// ApproveEnrollment approves a pending enrollment (course instructor or admin)
func ApproveEnrollment(c *fiber.Ctx) error {
	_, enrollment, err := loadInstructorEnrollment(c)
	if enrollment == nil {
		return err
	}

	if enrollment.Status == "APPROVED" {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Enrollment already approved!", nil)
	}

	enrollment.Status = "APPROVED"
	if err := database.Database.Db.Save(enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to approve enrollment!", nil)
	}

	var course courseModels.Course
	database.Database.Db.Where("id = ?", enrollment.CourseID).First(&course)

	var student models.User
	if err := database.Database.Db.Where("id = ?", enrollment.UserID).First(&student).Error; err == nil {
		utils.NotifyEnrollmentApproved(student, course.Title)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment approved successfully!", enrollment)
}

// RejectEnrollment rejects a pending enrollment, removing the request
func RejectEnrollment(c *fiber.Ctx) error {
	_, enrollment, err := loadInstructorEnrollment(c)
	if enrollment == nil {
		return err
	}

	if enrollment.Status == "APPROVED" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Approved enrollments cannot be rejected!", nil)
	}

	enrollment.IsDeleted = true
	if err := database.Database.Db.Save(enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to reject enrollment!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment rejected!", nil)
}

// ApproveCompletion marks the enrollment as instructor-approved, unlocking
// certificate issuance. Requires the aggregate progress to be exactly 100.
func ApproveCompletion(c *fiber.Ctx) error {
	_, enrollment, err := loadInstructorEnrollment(c)
	if enrollment == nil {
		return err
	}

	// Re-validate against fresh inputs, not the stored percentage
	summary, err := RecalculateCourseProgress(enrollment.UserID, enrollment.CourseID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to recompute progress!", nil)
	}
	if summary.TotalProgress < 100 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course is not fully completed yet!", fiber.Map{
			"progress": summary,
		})
	}

	// The recompute rewrote the enrollment row; reload before flagging so this
	// save does not clobber the fresh progress values with the stale struct.
	if err := database.Database.Db.Where("id = ?", enrollment.ID).First(enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to approve completion!", nil)
	}

	enrollment.InstructorApproved = true
	if err := database.Database.Db.Save(enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to approve completion!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course completion approved!", enrollment)
}

// loadInstructorEnrollment loads the enrollment addressed by :enrollment_id and
// checks that the caller is the course instructor or an admin. On failure the
// response has already been written.
func loadInstructorEnrollment(c *fiber.Ctx) (*models.User, *courseModels.Enrollment, error) {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return nil, nil, middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return nil, nil, middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	if user.Role != "INSTRUCTOR" && user.Role != "ADMIN" {
		return nil, nil, middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Instructor only.", nil)
	}

	enrollmentID := c.Locals("enrollmentID").(int)

	var enrollment courseModels.Enrollment
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", enrollmentID, false).First(&enrollment).Error; err != nil {
		return nil, nil, middleware.JsonResponse(c, fiber.StatusNotFound, false, "Enrollment not found!", nil)
	}

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", enrollment.CourseID, false).First(&course).Error; err != nil {
		return nil, nil, middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if user.Role != "ADMIN" && course.InstructorID != userID {
		return nil, nil, middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Not your course.", nil)
	}

	return &user, &enrollment, nil
}
