package controllers

import (
	"fmt"
	"lms/database"
	courseModels "lms/models/course"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestEnrollInFreeCourse(t *testing.T) {
	instructor, _ := createTestUser(t, "INSTRUCTOR")
	student, token := createTestUser(t, "STUDENT")
	course := createTestCourse(t, instructor.ID)

	url := fmt.Sprintf("/course/%d/enroll", course.ID)
	status, result := doRequest(t, "POST", url, token, nil)
	assert.Equal(t, fiber.StatusOK, status)

	data := result["data"].(map[string]interface{})
	assert.Equal(t, "PENDING", data["status"])

	// Double enrollment is rejected
	status, result = doRequest(t, "POST", url, token, nil)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "User already enrolled in this course!", result["message"])

	var enrollment courseModels.Enrollment
	database.Database.Db.Where("user_id = ? AND course_id = ?", student.ID, course.ID).First(&enrollment)
	assert.Equal(t, "PENDING", enrollment.Status)
	assert.Equal(t, 0, enrollment.Progress)
}

func TestEnrollInUnpublishedCourseRejected(t *testing.T) {
	instructor, _ := createTestUser(t, "INSTRUCTOR")
	_, token := createTestUser(t, "STUDENT")

	course := courseModels.Course{
		Title:        "Unreleased Course",
		Description:  "still a draft",
		InstructorID: instructor.ID,
		Status:       "DRAFT",
	}
	assert.NoError(t, database.Database.Db.Create(&course).Error)

	status, _ := doRequest(t, "POST", fmt.Sprintf("/course/%d/enroll", course.ID), token, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestPaidCourseRequiresPaymentReference(t *testing.T) {
	instructor, _ := createTestUser(t, "INSTRUCTOR")
	_, token := createTestUser(t, "STUDENT")

	course := courseModels.Course{
		Title:        "Premium Course",
		Description:  "paid content",
		InstructorID: instructor.ID,
		Price:        4900,
		Status:       "ACTIVE",
		IsPublished:  true,
	}
	assert.NoError(t, database.Database.Db.Create(&course).Error)

	status, result := doRequest(t, "POST", fmt.Sprintf("/course/%d/enroll", course.ID), token, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Payment reference is required for paid courses!", result["message"])
}

func TestApproveEnrollmentFlow(t *testing.T) {
	instructor, instructorToken := createTestUser(t, "INSTRUCTOR")
	student, _ := createTestUser(t, "STUDENT")
	course := createTestCourse(t, instructor.ID)
	enrollment := createTestEnrollment(t, student.ID, course.ID, "PENDING")

	url := fmt.Sprintf("/instructor/enrollment/%d/approve", enrollment.ID)
	status, result := doRequest(t, "POST", url, instructorToken, nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "APPROVED", result["data"].(map[string]interface{})["status"])

	// Approving twice is flagged
	status, _ = doRequest(t, "POST", url, instructorToken, nil)
	assert.Equal(t, fiber.StatusConflict, status)

	// The approval left an in-app notification for the student
	var count int64
	database.Database.Db.Table("notifications").
		Where("user_id = ? AND type = ?", student.ID, "ENROLLMENT").Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestApproveEnrollmentOwnershipEnforced(t *testing.T) {
	instructor, _ := createTestUser(t, "INSTRUCTOR")
	_, otherToken := createTestUser(t, "INSTRUCTOR")
	student, _ := createTestUser(t, "STUDENT")
	course := createTestCourse(t, instructor.ID)
	enrollment := createTestEnrollment(t, student.ID, course.ID, "PENDING")

	status, _ := doRequest(t, "POST", fmt.Sprintf("/instructor/enrollment/%d/approve", enrollment.ID), otherToken, nil)
	assert.Equal(t, fiber.StatusForbidden, status)
}

func TestApproveCompletionRevalidatesProgress(t *testing.T) {
	instructor, instructorToken := createTestUser(t, "INSTRUCTOR")
	student, _ := createTestUser(t, "STUDENT")
	course := createTestCourse(t, instructor.ID)
	enrollment := createTestEnrollment(t, student.ID, course.ID, "APPROVED")
	lessons := createTestLessons(t, course.ID, 2)

	// A stale stored percentage must not be trusted
	database.Database.Db.Model(&enrollment).Update("progress", 100)

	url := fmt.Sprintf("/instructor/enrollment/%d/approve-completion", enrollment.ID)
	status, result := doRequest(t, "POST", url, instructorToken, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Course is not fully completed yet!", result["message"])

	database.Database.Db.Where("id = ?", enrollment.ID).First(&enrollment)
	assert.False(t, enrollment.InstructorApproved)

	// Complete everything for real: no quiz or question set here, so the
	// lesson term alone cannot reach 100
	now := time.Now()
	for _, lesson := range lessons {
		record := courseModels.LessonProgress{
			UserID:         student.ID,
			LessonID:       lesson.ID,
			CourseID:       course.ID,
			Completed:      true,
			CompletedAt:    &now,
			LastAccessedAt: now,
		}
		assert.NoError(t, database.Database.Db.Create(&record).Error)
	}

	status, _ = doRequest(t, "POST", url, instructorToken, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestApproveCompletionAtFullProgress(t *testing.T) {
	instructor, instructorToken := createTestUser(t, "INSTRUCTOR")
	student, _ := createTestUser(t, "STUDENT")
	course := createTestCourse(t, instructor.ID)
	enrollment := createTestEnrollment(t, student.ID, course.ID, "APPROVED")
	lessons := createTestLessons(t, course.ID, 1)
	quiz, _ := createTestQuiz(t, course.ID, 70, 0, 2)
	set, _ := createTestShortQuestionSet(t, course.ID, 70, []int{10})

	now := time.Now()
	record := courseModels.LessonProgress{
		UserID:         student.ID,
		LessonID:       lessons[0].ID,
		CourseID:       course.ID,
		Completed:      true,
		CompletedAt:    &now,
		LastAccessedAt: now,
	}
	assert.NoError(t, database.Database.Db.Create(&record).Error)

	attempt := courseModels.QuizAttempt{
		UserID: student.ID, QuizID: quiz.ID, CourseID: course.ID,
		Score: 2, TotalQuestions: 2, Percentage: 100, Passed: true,
		AttemptNumber: 1, Status: courseModels.AttemptSubmitted, SubmittedAt: &now,
	}
	assert.NoError(t, database.Database.Db.Create(&attempt).Error)

	submission := courseModels.ShortQuestionSubmission{
		UserID: student.ID, SetID: set.ID, CourseID: course.ID,
		Status: courseModels.SubmissionCompleted, TotalScore: 9, MaxScore: 10,
		Percentage: 90, Passed: true, GradedAt: &now,
	}
	assert.NoError(t, database.Database.Db.Create(&submission).Error)

	url := fmt.Sprintf("/instructor/enrollment/%d/approve-completion", enrollment.ID)
	status, result := doRequest(t, "POST", url, instructorToken, nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, result["data"].(map[string]interface{})["instructor_approved"])

	// Fresh read: approval must not clobber the recomputed progress values
	var approved courseModels.Enrollment
	database.Database.Db.Where("id = ?", enrollment.ID).First(&approved)
	assert.True(t, approved.InstructorApproved)
	assert.Equal(t, 100, approved.Progress)
	assert.True(t, approved.Completed)
	assert.NotNil(t, approved.CompletedAt)
}

func TestReEnrollAfterCancellation(t *testing.T) {
	instructor, _ := createTestUser(t, "INSTRUCTOR")
	student, token := createTestUser(t, "STUDENT")
	course := createTestCourse(t, instructor.ID)

	url := fmt.Sprintf("/course/%d/enroll", course.ID)
	status, _ := doRequest(t, "POST", url, token, nil)
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = doRequest(t, "DELETE", url, token, nil)
	assert.Equal(t, fiber.StatusOK, status)

	// The cancelled row must not block a new enrollment
	status, result := doRequest(t, "POST", url, token, nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "PENDING", result["data"].(map[string]interface{})["status"])

	var live int64
	database.Database.Db.Model(&courseModels.Enrollment{}).
		Where("user_id = ? AND course_id = ? AND is_deleted = ?", student.ID, course.ID, false).Count(&live)
	assert.Equal(t, int64(1), live)
}
