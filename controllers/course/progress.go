package controllers

import (
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"math"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Weighted split of the course completion percentage
const (
	lessonWeight        = 60
	quizWeight          = 20
	shortQuestionWeight = 20
)

// ProgressSummary is the aggregate returned to clients after every
// recomputation, so they never need to re-fetch and recompute.
type ProgressSummary struct {
	LessonProgress struct {
		Percentage int   `json:"percentage"`
		Completed  int64 `json:"completed"`
		Total      int64 `json:"total"`
	} `json:"lesson_progress"`
	QuizProgress struct {
		Percentage int  `json:"percentage"`
		Passed     bool `json:"passed"`
		Attempted  bool `json:"attempted"`
	} `json:"quiz_progress"`
	ShortQuestionProgress struct {
		Percentage int    `json:"percentage"`
		Passed     bool   `json:"passed"`
		Status     string `json:"status"`
	} `json:"short_question_progress"`
	TotalProgress int `json:"total_progress"`
}

// lessonWeightedPct returns the lesson term of the weighted total.
// A course with no published lessons contributes 0.
func lessonWeightedPct(completed, total int64) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * lessonWeight))
}

// weightedTotal combines the three terms and clamps to [0, 100]
func weightedTotal(lessonPct int, quizPassed, shortPassed bool) int {
	total := lessonPct
	if quizPassed {
		total += quizWeight
	}
	if shortPassed {
		total += shortQuestionWeight
	}
	if total > 100 {
		total = 100
	}
	if total < 0 {
		total = 0
	}
	return total
}

// RecalculateCourseProgress recomputes the weighted completion percentage for
// a student and writes it back onto the enrollment. Idempotent: unchanged
// inputs always yield the same output. Called synchronously after every
// lesson toggle, quiz submission and grading action.
func RecalculateCourseProgress(userID, courseID uint) (*ProgressSummary, error) {
	db := database.Database.Db
	summary := &ProgressSummary{}

	// Lesson term: published lessons only
	var totalLessons int64
	db.Model(&courseModels.Lesson{}).
		Where("course_id = ? AND is_deleted = ? AND is_published = ?", courseID, false, true).
		Count(&totalLessons)

	var completedLessons int64
	db.Model(&courseModels.LessonProgress{}).
		Joins("JOIN lessons ON lessons.id = lesson_progresses.lesson_id").
		Where("lesson_progresses.user_id = ? AND lesson_progresses.course_id = ? AND lesson_progresses.completed = ? AND lesson_progresses.is_deleted = ?", userID, courseID, true, false).
		Where("lessons.is_deleted = ? AND lessons.is_published = ?", false, true).
		Count(&completedLessons)

	summary.LessonProgress.Total = totalLessons
	summary.LessonProgress.Completed = completedLessons
	summary.LessonProgress.Percentage = lessonWeightedPct(completedLessons, totalLessons)

	// Quiz term: best submitted attempt; absence counts as not passed
	quizPassed := false
	var quiz courseModels.Quiz
	if err := db.Where("course_id = ? AND is_deleted = ?", courseID, false).First(&quiz).Error; err == nil {
		var bestAttempt courseModels.QuizAttempt
		if err := db.Where("user_id = ? AND quiz_id = ? AND status = ? AND is_deleted = ?", userID, quiz.ID, courseModels.AttemptSubmitted, false).
			Order("percentage desc").First(&bestAttempt).Error; err == nil {
			summary.QuizProgress.Attempted = true
			summary.QuizProgress.Percentage = bestAttempt.Percentage
			quizPassed = bestAttempt.Passed
		}
	}
	summary.QuizProgress.Passed = quizPassed

	// Short-question term: the graded submission; pending ones count as not passed
	shortPassed := false
	var set courseModels.ShortQuestionSet
	if err := db.Where("course_id = ? AND is_deleted = ?", courseID, false).First(&set).Error; err == nil {
		var submission courseModels.ShortQuestionSubmission
		if err := db.Where("user_id = ? AND set_id = ? AND is_deleted = ?", userID, set.ID, false).
			Order("created_at desc").First(&submission).Error; err == nil {
			summary.ShortQuestionProgress.Status = submission.Status
			if submission.Status != courseModels.SubmissionPending {
				summary.ShortQuestionProgress.Percentage = submission.Percentage
				shortPassed = submission.Passed
			}
		}
	}
	summary.ShortQuestionProgress.Passed = shortPassed

	summary.TotalProgress = weightedTotal(summary.LessonProgress.Percentage, quizPassed, shortPassed)

	// Write the aggregate back onto the enrollment
	var enrollment courseModels.Enrollment
	if err := db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).First(&enrollment).Error; err != nil {
		return nil, err
	}

	enrollment.Progress = summary.TotalProgress
	if summary.TotalProgress >= 100 {
		if !enrollment.Completed {
			enrollment.Completed = true
			completedAt := time.Now()
			enrollment.CompletedAt = &completedAt
		}
	} else {
		// Lesson regression is the only path back below 100
		enrollment.Completed = false
		enrollment.CompletedAt = nil
	}

	if err := db.Save(&enrollment).Error; err != nil {
		return nil, err
	}

	return summary, nil
}

// GetCourseProgress returns the student's aggregated progress in a course
func GetCourseProgress(c *fiber.Ctx) error {
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

	summary, err := RecalculateCourseProgress(userID, uint(courseID))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to compute progress!", nil)
	}

	// Re-read so the response reflects the freshly written aggregate
	database.Database.Db.Where("id = ?", enrollment.ID).First(&enrollment)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress fetched successfully!", fiber.Map{
		"enrollment": enrollment,
		"progress":   summary,
	})
}
