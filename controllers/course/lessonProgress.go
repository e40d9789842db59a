package controllers

import (
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetCourseLessons lists published lessons of a course with the student's
// per-lesson completion state
func GetCourseLessons(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID := c.Locals("courseID").(int)

	var enrollment courseModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "User not enrolled in this course!", nil)
	}

	var lessons []courseModels.Lesson
	if err := database.Database.Db.Where("course_id = ? AND is_deleted = ? AND is_published = ?", courseID, false, true).
		Order("order_index asc").Find(&lessons).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch lessons!", nil)
	}

	var progress []courseModels.LessonProgress
	database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).Find(&progress)

	completedByLesson := make(map[uint]courseModels.LessonProgress)
	for _, p := range progress {
		completedByLesson[p.LessonID] = p
	}

	type LessonWithProgress struct {
		courseModels.Lesson
		Completed   bool       `json:"completed"`
		CompletedAt *time.Time `json:"completed_at"`
	}

	result := make([]LessonWithProgress, len(lessons))
	for i, lesson := range lessons {
		item := LessonWithProgress{Lesson: lesson}
		if p, found := completedByLesson[lesson.ID]; found {
			item.Completed = p.Completed
			item.CompletedAt = p.CompletedAt
		}
		result[i] = item
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lessons fetched successfully!", fiber.Map{
		"lessons": result,
		"total":   len(result),
	})
}

// MarkLessonComplete marks a lesson as completed for the student
func MarkLessonComplete(c *fiber.Ctx) error {
	return toggleLesson(c, true)
}

// MarkLessonIncomplete reverts a lesson to incomplete. This is the only
// path through which the aggregate progress can decrease.
func MarkLessonIncomplete(c *fiber.Ctx) error {
	return toggleLesson(c, false)
}

func toggleLesson(c *fiber.Ctx, completed bool) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID := c.Locals("courseID").(int)
	lessonID := c.Locals("lessonID").(int)

	// Toggling requires an APPROVED enrollment
	var enrollment courseModels.Enrollment
	if err := database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&enrollment).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "User not enrolled in this course!", nil)
	}
	if enrollment.Status != "APPROVED" {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Enrollment not approved yet!", nil)
	}

	var lesson courseModels.Lesson
	if err := database.Database.Db.Where("id = ? AND course_id = ? AND is_deleted = ? AND is_published = ?", lessonID, courseID, false, true).First(&lesson).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	now := time.Now()

	// Upsert the per-lesson record; every toggle bumps LastAccessedAt
	var record courseModels.LessonProgress
	err := database.Database.Db.Where("user_id = ? AND lesson_id = ? AND is_deleted = ?", userID, lessonID, false).First(&record).Error
	if err == gorm.ErrRecordNotFound {
		record = courseModels.LessonProgress{
			UserID:   userID,
			LessonID: uint(lessonID),
			CourseID: uint(courseID),
			ModuleID: lesson.ModuleID,
		}
	} else if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch lesson progress!", nil)
	}

	record.Completed = completed
	record.LastAccessedAt = now
	if completed {
		record.CompletedAt = &now
	} else {
		record.CompletedAt = nil
	}

	if err := database.Database.Db.Save(&record).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update lesson progress!", nil)
	}

	summary, err := RecalculateCourseProgress(userID, uint(courseID))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to recompute progress!", nil)
	}

	message := "Lesson marked as completed!"
	if !completed {
		message = "Lesson marked as incomplete!"
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, message, fiber.Map{
		"lesson_progress": record,
		"progress":        summary,
	})
}
