package controllers

import (
	"encoding/json"
	"fmt"
	"lms/database"
	courseModels "lms/models/course"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func shortQuestionFixture(points int, keywords []string, exact, caseSensitive, partial bool) courseModels.ShortQuestion {
	kw, _ := json.Marshal(keywords)
	return courseModels.ShortQuestion{
		CorrectAnswer: "Raft elects a leader",
		Keywords:      datatypes.JSON(kw),
		CaseSensitive: caseSensitive,
		ExactMatch:    exact,
		PartialCredit: partial,
		Points:        points,
	}
}

func TestSuggestAnswerPoints(t *testing.T) {
	// Exact match, case-insensitive
	q := shortQuestionFixture(10, nil, true, false, false)
	points, correct := suggestAnswerPoints(q, "raft elects a LEADER")
	assert.Equal(t, 10, points)
	assert.True(t, correct)

	points, correct = suggestAnswerPoints(q, "something else")
	assert.Equal(t, 0, points)
	assert.False(t, correct)

	// Exact match, case-sensitive
	q = shortQuestionFixture(10, nil, true, true, false)
	points, correct = suggestAnswerPoints(q, "raft elects a leader")
	assert.Equal(t, 0, points)
	assert.False(t, correct)

	// All keywords present yields full points
	q = shortQuestionFixture(10, []string{"leader", "election"}, false, false, true)
	points, correct = suggestAnswerPoints(q, "Raft runs a leader election among peers")
	assert.Equal(t, 10, points)
	assert.True(t, correct)

	// Half the keywords with partial credit
	points, correct = suggestAnswerPoints(q, "the leader appends entries")
	assert.Equal(t, 5, points)
	assert.False(t, correct)

	// Half the keywords without partial credit
	q = shortQuestionFixture(10, []string{"leader", "election"}, false, false, false)
	points, correct = suggestAnswerPoints(q, "the leader appends entries")
	assert.Equal(t, 0, points)
	assert.False(t, correct)
}

func TestShortQuestionSubmitCreatesPending(t *testing.T) {
	instructor, _ := createTestUser(t, "INSTRUCTOR")
	student, token := createTestUser(t, "STUDENT")
	course := createTestCourse(t, instructor.ID)
	createTestEnrollment(t, student.ID, course.ID, "APPROVED")
	_, questions := createTestShortQuestionSet(t, course.ID, 70, []int{10, 10, 10})

	answers := make([]map[string]interface{}, len(questions))
	for i, q := range questions {
		answers[i] = map[string]interface{}{
			"question_id": q.ID,
			"answer":      "latency dominates at the tail",
		}
	}

	url := fmt.Sprintf("/course/%d/short-questions/submit", course.ID)
	status, result := doRequest(t, "POST", url, token, map[string]interface{}{"answers": answers})
	assert.Equal(t, fiber.StatusCreated, status)

	data := result["data"].(map[string]interface{})
	assert.Equal(t, courseModels.SubmissionPending, data["status"])
	assert.Equal(t, float64(30), data["max_score"])

	// Per-answer rows carry the keyword suggestions
	var stored []courseModels.ShortQuestionAnswer
	database.Database.Db.Where("submission_id = ?", uint(data["ID"].(float64))).Find(&stored)
	assert.Len(t, stored, 3)
	for _, a := range stored {
		// One of two keywords matched: half of 10, not correct
		assert.Equal(t, 5, a.Points)
		assert.False(t, a.IsCorrect)
	}

	// A second submission while one is pending is rejected
	status, result = doRequest(t, "POST", url, token, map[string]interface{}{"answers": answers})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "A submission is already awaiting grading!", result["message"])
}

func TestGradeSubmissionWorkflow(t *testing.T) {
	instructor, instructorToken := createTestUser(t, "INSTRUCTOR")
	student, studentToken := createTestUser(t, "STUDENT")
	course := createTestCourse(t, instructor.ID)
	createTestEnrollment(t, student.ID, course.ID, "APPROVED")
	_, questions := createTestShortQuestionSet(t, course.ID, 70, []int{10, 10, 10})

	answers := make([]map[string]interface{}, len(questions))
	for i, q := range questions {
		answers[i] = map[string]interface{}{
			"question_id": q.ID,
			"answer":      "latency and throughput both matter",
		}
	}
	status, result := doRequest(t, "POST", fmt.Sprintf("/course/%d/short-questions/submit", course.ID), studentToken,
		map[string]interface{}{"answers": answers})
	assert.Equal(t, fiber.StatusCreated, status)
	submissionID := uint(result["data"].(map[string]interface{})["ID"].(float64))

	// Instructor grades 8 + 10 + 5 of 30: 77%, above the 70% bar
	graded := []map[string]interface{}{
		{"question_id": questions[0].ID, "points": 8, "is_correct": true, "feedback": "good"},
		{"question_id": questions[1].ID, "points": 10, "is_correct": true},
		{"question_id": questions[2].ID, "points": 5, "is_correct": false, "feedback": "missed the key point"},
	}

	gradeURL := fmt.Sprintf("/instructor/submission/%d/grade", submissionID)
	status, result = doRequest(t, "POST", gradeURL, instructorToken, map[string]interface{}{
		"answers":          graded,
		"overall_feedback": "solid work",
	})
	assert.Equal(t, fiber.StatusOK, status)

	data := result["data"].(map[string]interface{})
	submission := data["submission"].(map[string]interface{})
	assert.Equal(t, courseModels.SubmissionGraded, submission["status"])
	assert.Equal(t, float64(23), submission["total_score"])
	assert.Equal(t, float64(77), submission["percentage"])
	assert.Equal(t, true, submission["passed"])

	// Short-question term only
	progress := data["progress"].(map[string]interface{})
	assert.Equal(t, float64(20), progress["total_progress"])

	var enrollment courseModels.Enrollment
	database.Database.Db.Where("user_id = ? AND course_id = ?", student.ID, course.ID).First(&enrollment)
	assert.Equal(t, 20, enrollment.Progress)

	// Regrading while GRADED is allowed; finalize makes it terminal
	status, result = doRequest(t, "POST", gradeURL, instructorToken, map[string]interface{}{
		"answers":  graded,
		"finalize": true,
	})
	assert.Equal(t, fiber.StatusOK, status)
	submission = result["data"].(map[string]interface{})["submission"].(map[string]interface{})
	assert.Equal(t, courseModels.SubmissionCompleted, submission["status"])

	status, result = doRequest(t, "POST", gradeURL, instructorToken, map[string]interface{}{
		"answers": graded,
	})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "Submission already finalized!", result["message"])
}

func TestGradePointsBoundedByQuestionMax(t *testing.T) {
	instructor, instructorToken := createTestUser(t, "INSTRUCTOR")
	student, studentToken := createTestUser(t, "STUDENT")
	course := createTestCourse(t, instructor.ID)
	createTestEnrollment(t, student.ID, course.ID, "APPROVED")
	_, questions := createTestShortQuestionSet(t, course.ID, 70, []int{10})

	status, result := doRequest(t, "POST", fmt.Sprintf("/course/%d/short-questions/submit", course.ID), studentToken,
		map[string]interface{}{"answers": []map[string]interface{}{
			{"question_id": questions[0].ID, "answer": "low latency"},
		}})
	assert.Equal(t, fiber.StatusCreated, status)
	submissionID := uint(result["data"].(map[string]interface{})["ID"].(float64))

	status, _ = doRequest(t, "POST", fmt.Sprintf("/instructor/submission/%d/grade", submissionID), instructorToken,
		map[string]interface{}{"answers": []map[string]interface{}{
			{"question_id": questions[0].ID, "points": 15},
		}})
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)

	var submission courseModels.ShortQuestionSubmission
	database.Database.Db.Where("id = ?", submissionID).First(&submission)
	assert.Equal(t, courseModels.SubmissionPending, submission.Status)
}

func TestGradeRequiresCourseOwnership(t *testing.T) {
	instructor, _ := createTestUser(t, "INSTRUCTOR")
	_, otherToken := createTestUser(t, "INSTRUCTOR")
	student, studentToken := createTestUser(t, "STUDENT")
	course := createTestCourse(t, instructor.ID)
	createTestEnrollment(t, student.ID, course.ID, "APPROVED")
	_, questions := createTestShortQuestionSet(t, course.ID, 70, []int{10})

	status, result := doRequest(t, "POST", fmt.Sprintf("/course/%d/short-questions/submit", course.ID), studentToken,
		map[string]interface{}{"answers": []map[string]interface{}{
			{"question_id": questions[0].ID, "answer": "low latency"},
		}})
	assert.Equal(t, fiber.StatusCreated, status)
	submissionID := uint(result["data"].(map[string]interface{})["ID"].(float64))

	status, _ = doRequest(t, "POST", fmt.Sprintf("/instructor/submission/%d/grade", submissionID), otherToken,
		map[string]interface{}{"answers": []map[string]interface{}{
			{"question_id": questions[0].ID, "points": 10},
		}})
	assert.Equal(t, fiber.StatusForbidden, status)
}
