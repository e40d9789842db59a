package controllers

import (
	"fmt"
	"lms/database"
	courseModels "lms/models/course"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestToggleRequiresApprovedEnrollment(t *testing.T) {
	instructor, _ := createTestUser(t, "INSTRUCTOR")
	student, token := createTestUser(t, "STUDENT")
	course := createTestCourse(t, instructor.ID)
	lessons := createTestLessons(t, course.ID, 1)
	createTestEnrollment(t, student.ID, course.ID, "PENDING")

	url := fmt.Sprintf("/course/%d/lesson/%d/complete", course.ID, lessons[0].ID)
	status, result := doRequest(t, "POST", url, token, nil)

	assert.Equal(t, fiber.StatusForbidden, status)
	assert.Equal(t, "Enrollment not approved yet!", result["message"])

	// No progress record must have been written
	var count int64
	database.Database.Db.Model(&courseModels.LessonProgress{}).
		Where("user_id = ? AND lesson_id = ?", student.ID, lessons[0].ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestToggleUnpublishedLessonRejected(t *testing.T) {
	instructor, _ := createTestUser(t, "INSTRUCTOR")
	student, token := createTestUser(t, "STUDENT")
	course := createTestCourse(t, instructor.ID)
	createTestEnrollment(t, student.ID, course.ID, "APPROVED")

	lesson := courseModels.Lesson{CourseID: course.ID, Title: "Draft lesson", IsPublished: false}
	assert.NoError(t, database.Database.Db.Create(&lesson).Error)

	url := fmt.Sprintf("/course/%d/lesson/%d/complete", course.ID, lesson.ID)
	status, _ := doRequest(t, "POST", url, token, nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

func TestToggleLessonRoundTrip(t *testing.T) {
	instructor, _ := createTestUser(t, "INSTRUCTOR")
	student, token := createTestUser(t, "STUDENT")
	course := createTestCourse(t, instructor.ID)
	lessons := createTestLessons(t, course.ID, 5)
	createTestEnrollment(t, student.ID, course.ID, "APPROVED")

	// Complete one of five lessons: 1/5 of the 60% lesson weight
	url := fmt.Sprintf("/course/%d/lesson/%d/complete", course.ID, lessons[0].ID)
	status, result := doRequest(t, "POST", url, token, nil)
	assert.Equal(t, fiber.StatusOK, status)

	progress := result["data"].(map[string]interface{})["progress"].(map[string]interface{})
	assert.Equal(t, float64(12), progress["total_progress"])

	var record courseModels.LessonProgress
	database.Database.Db.Where("user_id = ? AND lesson_id = ?", student.ID, lessons[0].ID).First(&record)
	assert.True(t, record.Completed)
	assert.NotNil(t, record.CompletedAt)

	// Toggling back down reverts the aggregate
	status, result = doRequest(t, "DELETE", url, token, nil)
	assert.Equal(t, fiber.StatusOK, status)

	progress = result["data"].(map[string]interface{})["progress"].(map[string]interface{})
	assert.Equal(t, float64(0), progress["total_progress"])

	// Fresh struct: a NULL column leaves a populated pointer field untouched
	var reverted courseModels.LessonProgress
	database.Database.Db.Where("user_id = ? AND lesson_id = ?", student.ID, lessons[0].ID).First(&reverted)
	assert.False(t, reverted.Completed)
	assert.Nil(t, reverted.CompletedAt)

	var enrollment courseModels.Enrollment
	database.Database.Db.Where("user_id = ? AND course_id = ?", student.ID, course.ID).First(&enrollment)
	assert.Equal(t, 0, enrollment.Progress)
}

func TestToggleIsIdempotent(t *testing.T) {
	instructor, _ := createTestUser(t, "INSTRUCTOR")
	student, token := createTestUser(t, "STUDENT")
	course := createTestCourse(t, instructor.ID)
	lessons := createTestLessons(t, course.ID, 2)
	createTestEnrollment(t, student.ID, course.ID, "APPROVED")

	url := fmt.Sprintf("/course/%d/lesson/%d/complete", course.ID, lessons[0].ID)
	status, _ := doRequest(t, "POST", url, token, nil)
	assert.Equal(t, fiber.StatusOK, status)
	status, result := doRequest(t, "POST", url, token, nil)
	assert.Equal(t, fiber.StatusOK, status)

	progress := result["data"].(map[string]interface{})["progress"].(map[string]interface{})
	assert.Equal(t, float64(30), progress["total_progress"])

	// Still a single record for the pair
	var count int64
	database.Database.Db.Model(&courseModels.LessonProgress{}).
		Where("user_id = ? AND lesson_id = ?", student.ID, lessons[0].ID).Count(&count)
	assert.Equal(t, int64(1), count)
}
