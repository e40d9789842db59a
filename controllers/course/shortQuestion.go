package controllers

import (
	"encoding/json"
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/utils"
	"math"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// suggestAnswerPoints precomputes a grading suggestion for a free-text answer.
// Exact-match questions score all-or-nothing against the reference answer;
// otherwise keyword coverage drives the suggestion, scaled when partial
// credit is allowed. The instructor revises these values while grading.
func suggestAnswerPoints(q courseModels.ShortQuestion, answer string) (int, bool) {
	reference := q.CorrectAnswer
	given := strings.TrimSpace(answer)
	if !q.CaseSensitive {
		reference = strings.ToLower(reference)
		given = strings.ToLower(given)
	}

	if q.ExactMatch {
		if given == strings.TrimSpace(reference) {
			return q.Points, true
		}
		return 0, false
	}

	var keywords []string
	if len(q.Keywords) > 0 {
		_ = json.Unmarshal(q.Keywords, &keywords)
	}

	if len(keywords) == 0 {
		// No keywords to match against; fall back to the reference answer
		if given == strings.TrimSpace(reference) {
			return q.Points, true
		}
		return 0, false
	}

	matched := 0
	for _, kw := range keywords {
		k := strings.TrimSpace(kw)
		if !q.CaseSensitive {
			k = strings.ToLower(k)
		}
		if k != "" && strings.Contains(given, k) {
			matched++
		}
	}

	if matched == len(keywords) {
		return q.Points, true
	}
	if q.PartialCredit && matched > 0 {
		points := int(math.Round(float64(matched) / float64(len(keywords)) * float64(q.Points)))
		return points, false
	}
	return 0, false
}

// shortQuestionPercentage converts summed points to a rounded percentage
func shortQuestionPercentage(totalScore, maxScore int) int {
	if maxScore == 0 {
		return 0
	}
	return int(math.Round(float64(totalScore) / float64(maxScore) * 100))
}

// GetCourseShortQuestions returns the course question set for an enrolled
// student. Reference answers and keywords are never serialized.
func GetCourseShortQuestions(c *fiber.Ctx) error {
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

	var set courseModels.ShortQuestionSet
	if err := database.Database.Db.Where("course_id = ? AND is_deleted = ? AND is_published = ?", courseID, false, true).First(&set).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Short question set not found!", nil)
	}

	var questions []courseModels.ShortQuestion
	database.Database.Db.Where("set_id = ? AND is_deleted = ?", set.ID, false).Order("order_index asc").Find(&questions)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Short questions fetched successfully!", fiber.Map{
		"set":       set,
		"questions": questions,
	})
}

// SubmitShortQuestions stores a student's free-text answers as a PENDING
// submission awaiting instructor grading. Keyword suggestions are stored as
// the initial per-answer points.
func SubmitShortQuestions(c *fiber.Ctx) error {
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

	var set courseModels.ShortQuestionSet
	if err := database.Database.Db.Where("course_id = ? AND is_deleted = ? AND is_published = ?", courseID, false, true).First(&set).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Short question set not found!", nil)
	}

	// One open submission at a time
	var existing courseModels.ShortQuestionSubmission
	if err := database.Database.Db.Where("user_id = ? AND set_id = ? AND status = ? AND is_deleted = ?", userID, set.ID, courseModels.SubmissionPending, false).First(&existing).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "A submission is already awaiting grading!", nil)
	}

	reqData, ok := c.Locals("validatedShortSubmit").(*struct {
		Answers []struct {
			QuestionID uint   `json:"question_id"`
			Answer     string `json:"answer"`
		} `json:"answers"`
		TimeSpent int `json:"time_spent"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var questions []courseModels.ShortQuestion
	database.Database.Db.Where("set_id = ? AND is_deleted = ?", set.ID, false).Order("order_index asc").Find(&questions)

	if len(reqData.Answers) != len(questions) {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "All questions must be answered!", nil)
	}

	answerByQuestion := make(map[uint]string)
	for _, a := range reqData.Answers {
		answerByQuestion[a.QuestionID] = a.Answer
	}

	// Length bounds per question
	errors := make(map[string]string)
	maxScore := 0
	for _, q := range questions {
		answer, found := answerByQuestion[q.ID]
		if !found || strings.TrimSpace(answer) == "" {
			errors[q.Text] = "Answer is required!"
			continue
		}
		if q.MinLength > 0 && len(strings.TrimSpace(answer)) < q.MinLength {
			errors[q.Text] = "Answer is too short!"
		}
		if q.MaxLength > 0 && len(answer) > q.MaxLength {
			errors[q.Text] = "Answer is too long!"
		}
		maxScore += q.Points
	}
	if len(errors) > 0 {
		return middleware.ValidationErrorResponse(c, errors)
	}

	submission := courseModels.ShortQuestionSubmission{
		UserID:   userID,
		SetID:    set.ID,
		CourseID: uint(courseID),
		Status:   courseModels.SubmissionPending,
		MaxScore: maxScore,
	}

	tx := database.Database.Db.Begin()
	if err := tx.Create(&submission).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit answers!", nil)
	}

	for _, q := range questions {
		suggested, isCorrect := suggestAnswerPoints(q, answerByQuestion[q.ID])
		answer := courseModels.ShortQuestionAnswer{
			SubmissionID:  submission.ID,
			QuestionID:    q.ID,
			StudentAnswer: answerByQuestion[q.ID],
			Points:        suggested,
			IsCorrect:     isCorrect,
		}
		if err := tx.Create(&answer).Error; err != nil {
			tx.Rollback()
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to submit answers!", nil)
		}
	}
	tx.Commit()

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Answers submitted! Awaiting instructor grading.", submission)
}

// GetMyShortQuestionSubmission returns the student's latest submission with
// its graded answers
func GetMyShortQuestionSubmission(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID := c.Locals("courseID").(int)

	var submission courseModels.ShortQuestionSubmission
	if err := database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).
		Order("created_at desc").First(&submission).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "No submission found!", nil)
	}

	var answers []courseModels.ShortQuestionAnswer
	database.Database.Db.Where("submission_id = ? AND is_deleted = ?", submission.ID, false).Find(&answers)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Submission fetched successfully!", fiber.Map{
		"submission": submission,
		"answers":    answers,
	})
}

// InstructorListSubmissions lists submissions of a question set for grading
func InstructorListSubmissions(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	if user.Role != "INSTRUCTOR" && user.Role != "ADMIN" {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Instructor only.", nil)
	}

	setID := c.Locals("setID").(int)

	var set courseModels.ShortQuestionSet
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", setID, false).First(&set).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Short question set not found!", nil)
	}

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", set.CourseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}
	if user.Role != "ADMIN" && course.InstructorID != userID {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Not your course.", nil)
	}

	status := c.Query("status") // optional PENDING/GRADED/COMPLETED filter

	db := database.Database.Db.Where("set_id = ? AND is_deleted = ?", setID, false)
	if status != "" {
		db = db.Where("status = ?", status)
	}

	var submissions []courseModels.ShortQuestionSubmission
	if err := db.Order("created_at asc").Find(&submissions).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch submissions!", nil)
	}

	type SubmissionWithStudent struct {
		courseModels.ShortQuestionSubmission
		StudentName string `json:"student_name"`
	}

	result := make([]SubmissionWithStudent, len(submissions))
	for i, s := range submissions {
		var student models.User
		database.Database.Db.Where("id = ?", s.UserID).First(&student)
		result[i] = SubmissionWithStudent{ShortQuestionSubmission: s, StudentName: student.Name}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Submissions fetched successfully!", fiber.Map{
		"submissions": result,
		"total":       len(result),
	})
}

// GradeSubmission persists the instructor's per-answer grading and recomputes
// the submission aggregate. With finalize=true the submission becomes
// COMPLETED and can no longer be graded.
func GradeSubmission(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	if user.Role != "INSTRUCTOR" && user.Role != "ADMIN" {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Instructor only.", nil)
	}

	submissionID := c.Locals("submissionID").(int)

	var submission courseModels.ShortQuestionSubmission
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", submissionID, false).First(&submission).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Submission not found!", nil)
	}

	if submission.Status == courseModels.SubmissionCompleted {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Submission already finalized!", nil)
	}

	var set courseModels.ShortQuestionSet
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", submission.SetID, false).First(&set).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Short question set not found!", nil)
	}

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", set.CourseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}
	if user.Role != "ADMIN" && course.InstructorID != userID {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Not your course.", nil)
	}

	reqData, ok := c.Locals("validatedGrading").(*struct {
		Answers []struct {
			QuestionID uint   `json:"question_id"`
			Points     int    `json:"points"`
			IsCorrect  bool   `json:"is_correct"`
			Feedback   string `json:"feedback"`
		} `json:"answers"`
		OverallFeedback string `json:"overall_feedback"`
		InstructorNotes string `json:"instructor_notes"`
		Finalize        bool   `json:"finalize"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var answers []courseModels.ShortQuestionAnswer
	database.Database.Db.Where("submission_id = ? AND is_deleted = ?", submission.ID, false).Find(&answers)

	answerByQuestion := make(map[uint]*courseModels.ShortQuestionAnswer)
	for i := range answers {
		answerByQuestion[answers[i].QuestionID] = &answers[i]
	}

	// Points must stay within each question's maximum
	errors := make(map[string]string)
	for _, graded := range reqData.Answers {
		answer, found := answerByQuestion[graded.QuestionID]
		if !found {
			errors["answers"] = "Graded answer does not belong to this submission!"
			continue
		}
		var question courseModels.ShortQuestion
		if err := database.Database.Db.Where("id = ?", answer.QuestionID).First(&question).Error; err != nil {
			errors["answers"] = "Question not found!"
			continue
		}
		if graded.Points < 0 || graded.Points > question.Points {
			errors["points"] = "Points must be between 0 and the question maximum!"
		}
	}
	if len(errors) > 0 {
		return middleware.ValidationErrorResponse(c, errors)
	}

	tx := database.Database.Db.Begin()

	totalScore := 0
	for _, graded := range reqData.Answers {
		answer := answerByQuestion[graded.QuestionID]
		answer.Points = graded.Points
		answer.IsCorrect = graded.IsCorrect
		answer.Feedback = graded.Feedback
		if err := tx.Save(answer).Error; err != nil {
			tx.Rollback()
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save grading!", nil)
		}
	}
	for _, answer := range answers {
		totalScore += answer.Points
	}

	now := time.Now()
	submission.TotalScore = totalScore
	submission.Percentage = shortQuestionPercentage(totalScore, submission.MaxScore)
	submission.Passed = submission.Percentage >= set.PassingScore
	submission.OverallFeedback = reqData.OverallFeedback
	submission.InstructorNotes = reqData.InstructorNotes
	submission.GradedAt = &now
	submission.GradedBy = &userID
	if reqData.Finalize {
		submission.Status = courseModels.SubmissionCompleted
	} else {
		submission.Status = courseModels.SubmissionGraded
	}

	if err := tx.Save(&submission).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to save grading!", nil)
	}
	tx.Commit()

	summary, err := RecalculateCourseProgress(submission.UserID, submission.CourseID)
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to recompute progress!", nil)
	}

	var student models.User
	if err := database.Database.Db.Where("id = ?", submission.UserID).First(&student).Error; err == nil {
		utils.NotifySubmissionGraded(student, course.Title, submission.Percentage, submission.Passed)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Submission graded successfully!", fiber.Map{
		"submission": submission,
		"progress":   summary,
	})
}
