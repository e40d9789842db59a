package controllers

import (
	"encoding/json"
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"math"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

// scoreQuizAnswers counts answers matching the correct option index.
// Questions and answers are aligned by position.
func scoreQuizAnswers(questions []courseModels.QuizQuestion, answers []int) int {
	score := 0
	for i, q := range questions {
		if i < len(answers) && answers[i] == q.CorrectIndex {
			score++
		}
	}
	return score
}

// quizPercentage converts a raw score to a rounded percentage in [0, 100]
func quizPercentage(score, totalQuestions int) int {
	if totalQuestions == 0 {
		return 0
	}
	return int(math.Round(float64(score) / float64(totalQuestions) * 100))
}

// GetCourseQuiz returns the course quiz with its questions for an enrolled
// student. Correct indices are never serialized.
func GetCourseQuiz(c *fiber.Ctx) error {
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

	var quiz courseModels.Quiz
	if err := database.Database.Db.Where("course_id = ? AND is_deleted = ? AND is_published = ?", courseID, false, true).First(&quiz).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}

	var questions []courseModels.QuizQuestion
	database.Database.Db.Where("quiz_id = ? AND is_deleted = ?", quiz.ID, false).Order("order_index asc").Find(&questions)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz fetched successfully!", fiber.Map{
		"quiz":      quiz,
		"questions": questions,
	})
}

// StartQuizAttempt opens a new attempt, enforcing the attempt cap when the
// quiz defines one (MaxAttempts 0 means unlimited).
func StartQuizAttempt(c *fiber.Ctx) error {
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
	if enrollment.Status != "APPROVED" {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Enrollment not approved yet!", nil)
	}

	var quiz courseModels.Quiz
	if err := database.Database.Db.Where("course_id = ? AND is_deleted = ? AND is_published = ?", courseID, false, true).First(&quiz).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}

	var attemptCount int64
	database.Database.Db.Model(&courseModels.QuizAttempt{}).
		Where("user_id = ? AND quiz_id = ? AND is_deleted = ?", userID, quiz.ID, false).
		Count(&attemptCount)

	if quiz.MaxAttempts > 0 && int(attemptCount) >= quiz.MaxAttempts {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Maximum quiz attempts reached!", nil)
	}

	var totalQuestions int64
	database.Database.Db.Model(&courseModels.QuizQuestion{}).Where("quiz_id = ? AND is_deleted = ?", quiz.ID, false).Count(&totalQuestions)
	if totalQuestions == 0 {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Quiz has no questions yet!", nil)
	}

	attempt := courseModels.QuizAttempt{
		UserID:         userID,
		QuizID:         quiz.ID,
		CourseID:       uint(courseID),
		TotalQuestions: int(totalQuestions),
		AttemptNumber:  int(attemptCount) + 1,
		Status:         courseModels.AttemptStarted,
	}

	if err := database.Database.Db.Create(&attempt).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to start attempt!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Quiz attempt started!", attempt)
}

// SubmitQuiz scores and stores a quiz submission, then recomputes the
// weighted course progress.
func SubmitQuiz(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	courseID := c.Locals("courseID").(int)

	reqData, ok := c.Locals("validatedQuizSubmit").(*struct {
		AttemptID uint  `json:"attempt_id"`
		Answers   []int `json:"answers"`
		TimeSpent int   `json:"time_spent"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	// The attempt must be one this student started
	var attempt courseModels.QuizAttempt
	if err := database.Database.Db.Where("id = ? AND user_id = ? AND course_id = ? AND is_deleted = ?", reqData.AttemptID, userID, courseID, false).First(&attempt).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Attempt not found!", nil)
	}
	if attempt.Status == courseModels.AttemptSubmitted {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Attempt already submitted!", nil)
	}

	var quiz courseModels.Quiz
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", attempt.QuizID, false).First(&quiz).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}

	var questions []courseModels.QuizQuestion
	database.Database.Db.Where("quiz_id = ? AND is_deleted = ?", quiz.ID, false).Order("order_index asc").Find(&questions)

	// Every question must be answered
	if len(reqData.Answers) != len(questions) {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "All questions must be answered!", nil)
	}
	for _, answer := range reqData.Answers {
		if answer < 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "All questions must be answered!", nil)
		}
	}

	score := scoreQuizAnswers(questions, reqData.Answers)
	percentage := quizPercentage(score, len(questions))
	passed := percentage >= quiz.PassingScore

	answersJSON, _ := json.Marshal(reqData.Answers)
	now := time.Now()

	attempt.Answers = datatypes.JSON(answersJSON)
	attempt.Score = score
	attempt.TotalQuestions = len(questions)
	attempt.Percentage = percentage
	attempt.Passed = passed
	attempt.TimeSpent = reqData.TimeSpent
	attempt.Status = courseModels.AttemptSubmitted
	attempt.SubmittedAt = &now

	if err := database.Database.Db.Save(&attempt).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit quiz!", nil)
	}

	summary, err := RecalculateCourseProgress(userID, uint(courseID))
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to recompute progress!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz submitted successfully!", fiber.Map{
		"score":           score,
		"total_questions": len(questions),
		"percentage":      percentage,
		"passed":          passed,
		"attempt":         attempt,
		"progress":        summary,
	})
}

// GetQuizAttempts lists the student's attempts for the course quiz
func GetQuizAttempts(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	var attempts []courseModels.QuizAttempt
	if err := database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).
		Order("attempt_number desc").Find(&attempts).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch attempts!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Attempts fetched successfully!", fiber.Map{
		"attempts": attempts,
		"total":    len(attempts),
	})
}
