package controllers

import (
	"encoding/json"
	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	courseValidator "lms/validators/course"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
)

// InstructorCreateQuiz creates the quiz of a course with its questions.
// A course carries at most one quiz.
func InstructorCreateQuiz(c *fiber.Ctx) error {
	user, err := requireInstructor(c)
	if user == nil {
		return err
	}

	course, err := requireOwnCourse(c, user)
	if course == nil {
		return err
	}

	reqData, ok := c.Locals("validatedQuiz").(*courseValidator.CreateQuizRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var existing courseModels.Quiz
	if err := database.Database.Db.Where("course_id = ? AND is_deleted = ?", course.ID, false).First(&existing).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Course already has a quiz!", nil)
	}

	quiz := courseModels.Quiz{
		CourseID:     course.ID,
		Title:        reqData.Title,
		PassingScore: reqData.PassingScore,
		TimeLimit:    reqData.TimeLimit,
		MaxAttempts:  reqData.MaxAttempts,
		IsPublished:  true,
	}

	tx := database.Database.Db.Begin()
	if err := tx.Create(&quiz).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create quiz!", nil)
	}

	for i, q := range reqData.Questions {
		optionsJSON, _ := json.Marshal(q.Options)
		question := courseModels.QuizQuestion{
			QuizID:       quiz.ID,
			Text:         q.Text,
			Options:      datatypes.JSON(optionsJSON),
			CorrectIndex: q.CorrectIndex,
			Points:       q.Points,
			OrderIndex:   i,
		}
		if err := tx.Create(&question).Error; err != nil {
			tx.Rollback()
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create quiz questions!", nil)
		}
	}
	tx.Commit()

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Quiz created successfully!", quiz)
}

// InstructorUpdateQuiz updates quiz settings (not its questions)
func InstructorUpdateQuiz(c *fiber.Ctx) error {
	user, err := requireInstructor(c)
	if user == nil {
		return err
	}

	quizID := c.Locals("quizID").(int)

	var quiz courseModels.Quiz
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", quizID, false).First(&quiz).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Quiz not found!", nil)
	}

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", quiz.CourseID, false).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}
	if user.Role != "ADMIN" && course.InstructorID != user.ID {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Access denied! Not your course.", nil)
	}

	reqData, ok := c.Locals("validatedQuizUpdate").(*courseValidator.UpdateQuizRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if reqData.Title != "" {
		quiz.Title = reqData.Title
	}
	if reqData.PassingScore != nil {
		quiz.PassingScore = *reqData.PassingScore
	}
	if reqData.TimeLimit != nil {
		quiz.TimeLimit = *reqData.TimeLimit
	}
	if reqData.MaxAttempts != nil {
		quiz.MaxAttempts = *reqData.MaxAttempts
	}

	if err := database.Database.Db.Save(&quiz).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update quiz!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz updated successfully!", quiz)
}

// InstructorCreateShortQuestionSet creates the free-text question set of a
// course. A course carries at most one set.
func InstructorCreateShortQuestionSet(c *fiber.Ctx) error {
	user, err := requireInstructor(c)
	if user == nil {
		return err
	}

	course, err := requireOwnCourse(c, user)
	if course == nil {
		return err
	}

	reqData, ok := c.Locals("validatedShortQuestionSet").(*courseValidator.CreateShortQuestionSetRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var existing courseModels.ShortQuestionSet
	if err := database.Database.Db.Where("course_id = ? AND is_deleted = ?", course.ID, false).First(&existing).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Course already has a short question set!", nil)
	}

	set := courseModels.ShortQuestionSet{
		CourseID:     course.ID,
		Title:        reqData.Title,
		PassingScore: reqData.PassingScore,
		TimeLimit:    reqData.TimeLimit,
		IsPublished:  true,
	}

	tx := database.Database.Db.Begin()
	if err := tx.Create(&set).Error; err != nil {
		tx.Rollback()
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create short question set!", nil)
	}

	for i, q := range reqData.Questions {
		keywordsJSON, _ := json.Marshal(q.Keywords)
		question := courseModels.ShortQuestion{
			SetID:         set.ID,
			Text:          q.Text,
			CorrectAnswer: q.CorrectAnswer,
			Keywords:      datatypes.JSON(keywordsJSON),
			MinLength:     q.MinLength,
			MaxLength:     q.MaxLength,
			CaseSensitive: q.CaseSensitive,
			ExactMatch:    q.ExactMatch,
			PartialCredit: q.PartialCredit,
			Points:        q.Points,
			OrderIndex:    i,
		}
		if err := tx.Create(&question).Error; err != nil {
			tx.Rollback()
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create short questions!", nil)
		}
	}
	tx.Commit()

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Short question set created successfully!", set)
}
