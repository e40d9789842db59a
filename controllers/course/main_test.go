package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"lms/config"
	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	courseValidators "lms/validators/course"
	"log"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gofiber/fiber/v2"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var app *fiber.App

func TestMain(m *testing.M) {
	config.LoadConfig()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		log.Fatalf("Failed to open test database: %v", err)
	}
	database.RunMigrations(db)
	database.Database = database.DbInstance{Db: db}

	app = setupTestApp()

	os.Exit(m.Run())
}

// setupTestApp registers the routes under test. Mirrors the router packages,
// which cannot be imported from here.
func setupTestApp() *fiber.App {
	testApp := fiber.New()

	courseGroup := testApp.Group("/course")
	courseGroup.Post("/:course_id/enroll", middleware.JWTMiddleware, courseValidators.EnrollCourse(), EnrollInCourse)
	courseGroup.Delete("/:course_id/enroll", middleware.JWTMiddleware, courseValidators.CourseAction(), CancelEnrollment)
	courseGroup.Get("/:course_id/lessons", middleware.JWTMiddleware, courseValidators.CourseAction(), GetCourseLessons)
	courseGroup.Post("/:course_id/lesson/:lesson_id/complete", middleware.JWTMiddleware, courseValidators.LessonToggle(), MarkLessonComplete)
	courseGroup.Delete("/:course_id/lesson/:lesson_id/complete", middleware.JWTMiddleware, courseValidators.LessonToggle(), MarkLessonIncomplete)
	courseGroup.Post("/:course_id/quiz/start", middleware.JWTMiddleware, courseValidators.CourseAction(), StartQuizAttempt)
	courseGroup.Post("/:course_id/quiz/submit", middleware.JWTMiddleware, courseValidators.SubmitQuiz(), SubmitQuiz)
	courseGroup.Post("/:course_id/short-questions/submit", middleware.JWTMiddleware, courseValidators.SubmitShortQuestions(), SubmitShortQuestions)
	courseGroup.Get("/:course_id/progress", middleware.JWTMiddleware, courseValidators.CourseAction(), GetCourseProgress)

	instructorGroup := testApp.Group("/instructor", middleware.JWTMiddleware)
	instructorGroup.Post("/enrollment/:enrollment_id/approve", courseValidators.EnrollmentAction(), ApproveEnrollment)
	instructorGroup.Post("/enrollment/:enrollment_id/approve-completion", courseValidators.EnrollmentAction(), ApproveCompletion)
	instructorGroup.Post("/submission/:submission_id/grade", courseValidators.GradeSubmission(), GradeSubmission)
	instructorGroup.Post("/certificate/issue", courseValidators.IssueCertificate(), IssueCertificate)

	adminGroup := testApp.Group("/admin", middleware.JWTMiddleware, middleware.RequireRole("ADMIN"))
	adminGroup.Delete("/certificates/:cert_id", courseValidators.CertificateAction(), RevokeCertificate)

	return testApp
}

// doRequest performs a JSON request against the test app and decodes the
// response envelope
func doRequest(t *testing.T, method, url, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewBuffer(payload)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&result)
	return resp.StatusCode, result
}

var userSeq int

func createTestUser(t *testing.T, role string) (models.User, string) {
	t.Helper()
	userSeq++
	user := models.User{
		Name:     fmt.Sprintf("Test User %d", userSeq),
		Email:    fmt.Sprintf("user%d@test.local", userSeq),
		Password: "not-a-real-hash",
		Role:     role,
	}
	if err := database.Database.Db.Create(&user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	token, err := middleware.GenerateJWT(user.ID, user.Name, user.Role, user.Email)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return user, "Bearer " + token
}

func createTestCourse(t *testing.T, instructorID uint) courseModels.Course {
	t.Helper()
	course := courseModels.Course{
		Title:        "Distributed Systems 101",
		Description:  "From logical clocks to consensus",
		InstructorID: instructorID,
		Status:       "ACTIVE",
		IsPublished:  true,
	}
	if err := database.Database.Db.Create(&course).Error; err != nil {
		t.Fatalf("failed to create course: %v", err)
	}
	return course
}

func createTestLessons(t *testing.T, courseID uint, count int) []courseModels.Lesson {
	t.Helper()
	lessons := make([]courseModels.Lesson, count)
	for i := 0; i < count; i++ {
		lesson := courseModels.Lesson{
			CourseID:    courseID,
			Title:       fmt.Sprintf("Lesson %d", i+1),
			Content:     "lesson body",
			OrderIndex:  i,
			IsPublished: true,
		}
		if err := database.Database.Db.Create(&lesson).Error; err != nil {
			t.Fatalf("failed to create lesson: %v", err)
		}
		lessons[i] = lesson
	}
	return lessons
}

func createTestEnrollment(t *testing.T, userID, courseID uint, status string) courseModels.Enrollment {
	t.Helper()
	enrollment := courseModels.Enrollment{
		UserID:   userID,
		CourseID: courseID,
		Status:   status,
	}
	if err := database.Database.Db.Create(&enrollment).Error; err != nil {
		t.Fatalf("failed to create enrollment: %v", err)
	}
	return enrollment
}

// createTestQuiz seeds a quiz whose every question is worth one point with
// correct option index 0
func createTestQuiz(t *testing.T, courseID uint, passingScore, maxAttempts, questionCount int) (courseModels.Quiz, []courseModels.QuizQuestion) {
	t.Helper()
	quiz := courseModels.Quiz{
		CourseID:     courseID,
		Title:        "Final Quiz",
		PassingScore: passingScore,
		MaxAttempts:  maxAttempts,
		IsPublished:  true,
	}
	if err := database.Database.Db.Create(&quiz).Error; err != nil {
		t.Fatalf("failed to create quiz: %v", err)
	}

	options, _ := json.Marshal([]string{"right", "wrong", "also wrong"})
	questions := make([]courseModels.QuizQuestion, questionCount)
	for i := 0; i < questionCount; i++ {
		question := courseModels.QuizQuestion{
			QuizID:       quiz.ID,
			Text:         fmt.Sprintf("Question %d", i+1),
			Options:      datatypes.JSON(options),
			CorrectIndex: 0,
			Points:       1,
			OrderIndex:   i,
		}
		if err := database.Database.Db.Create(&question).Error; err != nil {
			t.Fatalf("failed to create quiz question: %v", err)
		}
		questions[i] = question
	}
	return quiz, questions
}

func createTestShortQuestionSet(t *testing.T, courseID uint, passingScore int, points []int) (courseModels.ShortQuestionSet, []courseModels.ShortQuestion) {
	t.Helper()
	set := courseModels.ShortQuestionSet{
		CourseID:     courseID,
		Title:        "Essay Questions",
		PassingScore: passingScore,
		IsPublished:  true,
	}
	if err := database.Database.Db.Create(&set).Error; err != nil {
		t.Fatalf("failed to create short question set: %v", err)
	}

	keywords, _ := json.Marshal([]string{"latency", "throughput"})
	questions := make([]courseModels.ShortQuestion, len(points))
	for i, p := range points {
		question := courseModels.ShortQuestion{
			SetID:         set.ID,
			Text:          fmt.Sprintf("Explain topic %d", i+1),
			CorrectAnswer: "latency and throughput trade off",
			Keywords:      datatypes.JSON(keywords),
			PartialCredit: true,
			Points:        p,
			OrderIndex:    i,
		}
		if err := database.Database.Db.Create(&question).Error; err != nil {
			t.Fatalf("failed to create short question: %v", err)
		}
		questions[i] = question
	}
	return set, questions
}
