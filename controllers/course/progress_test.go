package controllers

import (
	"lms/database"
	courseModels "lms/models/course"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLessonWeightedPct(t *testing.T) {
	assert.Equal(t, 0, lessonWeightedPct(0, 0), "course without lessons contributes nothing")
	assert.Equal(t, 0, lessonWeightedPct(0, 10))
	assert.Equal(t, 36, lessonWeightedPct(6, 10))
	assert.Equal(t, 60, lessonWeightedPct(10, 10))
	assert.Equal(t, 20, lessonWeightedPct(1, 3))
}

func TestWeightedTotal(t *testing.T) {
	assert.Equal(t, 0, weightedTotal(0, false, false))
	assert.Equal(t, 36, weightedTotal(36, false, false))
	assert.Equal(t, 56, weightedTotal(36, true, false))
	assert.Equal(t, 100, weightedTotal(60, true, true))
	// Out-of-range lesson input still clamps
	assert.Equal(t, 100, weightedTotal(90, true, true))
	assert.Equal(t, 0, weightedTotal(-5, false, false))
}

func TestQuizPercentage(t *testing.T) {
	assert.Equal(t, 0, quizPercentage(0, 0))
	assert.Equal(t, 80, quizPercentage(4, 5))
	assert.Equal(t, 67, quizPercentage(2, 3))
	assert.Equal(t, 100, quizPercentage(5, 5))
}

func TestShortQuestionPercentage(t *testing.T) {
	assert.Equal(t, 0, shortQuestionPercentage(0, 0))
	assert.Equal(t, 77, shortQuestionPercentage(23, 30))
	assert.Equal(t, 100, shortQuestionPercentage(30, 30))
}

func TestRecalculateEmptyCourse(t *testing.T) {
	instructor, _ := createTestUser(t, "INSTRUCTOR")
	student, _ := createTestUser(t, "STUDENT")
	course := createTestCourse(t, instructor.ID)
	createTestEnrollment(t, student.ID, course.ID, "APPROVED")

	summary, err := RecalculateCourseProgress(student.ID, course.ID)
	assert.NoError(t, err)
	assert.Equal(t, 0, summary.TotalProgress)
	assert.Equal(t, int64(0), summary.LessonProgress.Total)
	assert.False(t, summary.QuizProgress.Attempted)

	var enrollment courseModels.Enrollment
	database.Database.Db.Where("user_id = ? AND course_id = ?", student.ID, course.ID).First(&enrollment)
	assert.Equal(t, 0, enrollment.Progress)
	assert.False(t, enrollment.Completed)
}

func TestRecalculateLessonsOnly(t *testing.T) {
	instructor, _ := createTestUser(t, "INSTRUCTOR")
	student, _ := createTestUser(t, "STUDENT")
	course := createTestCourse(t, instructor.ID)
	createTestEnrollment(t, student.ID, course.ID, "APPROVED")
	lessons := createTestLessons(t, course.ID, 10)

	now := time.Now()
	for i := 0; i < 6; i++ {
		record := courseModels.LessonProgress{
			UserID:         student.ID,
			LessonID:       lessons[i].ID,
			CourseID:       course.ID,
			Completed:      true,
			CompletedAt:    &now,
			LastAccessedAt: now,
		}
		assert.NoError(t, database.Database.Db.Create(&record).Error)
	}

	summary, err := RecalculateCourseProgress(student.ID, course.ID)
	assert.NoError(t, err)
	assert.Equal(t, int64(6), summary.LessonProgress.Completed)
	assert.Equal(t, 36, summary.LessonProgress.Percentage)
	assert.Equal(t, 36, summary.TotalProgress)

	var enrollment courseModels.Enrollment
	database.Database.Db.Where("user_id = ? AND course_id = ?", student.ID, course.ID).First(&enrollment)
	assert.Equal(t, 36, enrollment.Progress)
}

func TestRecalculatePendingSubmissionDoesNotCount(t *testing.T) {
	instructor, _ := createTestUser(t, "INSTRUCTOR")
	student, _ := createTestUser(t, "STUDENT")
	course := createTestCourse(t, instructor.ID)
	createTestEnrollment(t, student.ID, course.ID, "APPROVED")
	set, _ := createTestShortQuestionSet(t, course.ID, 70, []int{10})

	submission := courseModels.ShortQuestionSubmission{
		UserID:   student.ID,
		SetID:    set.ID,
		CourseID: course.ID,
		Status:   courseModels.SubmissionPending,
		MaxScore: 10,
	}
	assert.NoError(t, database.Database.Db.Create(&submission).Error)

	summary, err := RecalculateCourseProgress(student.ID, course.ID)
	assert.NoError(t, err)
	assert.Equal(t, courseModels.SubmissionPending, summary.ShortQuestionProgress.Status)
	assert.False(t, summary.ShortQuestionProgress.Passed)
	assert.Equal(t, 0, summary.TotalProgress)
}

func TestRecalculateFullCompletionAndRegression(t *testing.T) {
	instructor, _ := createTestUser(t, "INSTRUCTOR")
	student, _ := createTestUser(t, "STUDENT")
	course := createTestCourse(t, instructor.ID)
	createTestEnrollment(t, student.ID, course.ID, "APPROVED")
	lessons := createTestLessons(t, course.ID, 2)
	quiz, _ := createTestQuiz(t, course.ID, 70, 0, 5)
	set, _ := createTestShortQuestionSet(t, course.ID, 70, []int{10, 10, 10})

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

	attempt := courseModels.QuizAttempt{
		UserID:         student.ID,
		QuizID:         quiz.ID,
		CourseID:       course.ID,
		Score:          4,
		TotalQuestions: 5,
		Percentage:     80,
		Passed:         true,
		AttemptNumber:  1,
		Status:         courseModels.AttemptSubmitted,
		SubmittedAt:    &now,
	}
	assert.NoError(t, database.Database.Db.Create(&attempt).Error)

	gradedAt := time.Now()
	submission := courseModels.ShortQuestionSubmission{
		UserID:     student.ID,
		SetID:      set.ID,
		CourseID:   course.ID,
		Status:     courseModels.SubmissionGraded,
		TotalScore: 23,
		MaxScore:   30,
		Percentage: 77,
		Passed:     true,
		GradedAt:   &gradedAt,
	}
	assert.NoError(t, database.Database.Db.Create(&submission).Error)

	summary, err := RecalculateCourseProgress(student.ID, course.ID)
	assert.NoError(t, err)
	assert.Equal(t, 100, summary.TotalProgress)

	var enrollment courseModels.Enrollment
	database.Database.Db.Where("user_id = ? AND course_id = ?", student.ID, course.ID).First(&enrollment)
	assert.Equal(t, 100, enrollment.Progress)
	assert.True(t, enrollment.Completed)
	assert.NotNil(t, enrollment.CompletedAt)

	// Un-completing a lesson is the only path back below 100
	database.Database.Db.Model(&courseModels.LessonProgress{}).
		Where("user_id = ? AND lesson_id = ?", student.ID, lessons[0].ID).
		Updates(map[string]interface{}{"completed": false, "completed_at": nil})

	summary, err = RecalculateCourseProgress(student.ID, course.ID)
	assert.NoError(t, err)
	assert.Equal(t, 70, summary.TotalProgress)

	// Fresh struct: a NULL completed_at leaves a populated pointer untouched
	var regressed courseModels.Enrollment
	database.Database.Db.Where("user_id = ? AND course_id = ?", student.ID, course.ID).First(&regressed)
	assert.Equal(t, 70, regressed.Progress)
	assert.False(t, regressed.Completed)
	assert.Nil(t, regressed.CompletedAt)
}

func TestRecalculateIsIdempotent(t *testing.T) {
	instructor, _ := createTestUser(t, "INSTRUCTOR")
	student, _ := createTestUser(t, "STUDENT")
	course := createTestCourse(t, instructor.ID)
	createTestEnrollment(t, student.ID, course.ID, "APPROVED")
	lessons := createTestLessons(t, course.ID, 4)

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

	first, err := RecalculateCourseProgress(student.ID, course.ID)
	assert.NoError(t, err)
	second, err := RecalculateCourseProgress(student.ID, course.ID)
	assert.NoError(t, err)

	assert.Equal(t, first.TotalProgress, second.TotalProgress)
	assert.Equal(t, first.LessonProgress, second.LessonProgress)
	assert.Equal(t, 15, second.TotalProgress)
}
