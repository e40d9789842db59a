package course

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Quiz attempt statuses
const (
	AttemptStarted   = "STARTED"
	AttemptSubmitted = "SUBMITTED"
)

// Quiz represents the quiz of a course. At most one quiz per course,
// enforced with a unique index on CourseID.
type Quiz struct {
	gorm.Model
	CourseID     uint   `json:"course_id" gorm:"uniqueIndex;not null"`
	Title        string `json:"title"`
	PassingScore int    `json:"passing_score" gorm:"default:70"` // percent
	TimeLimit    int    `json:"time_limit" gorm:"default:0"`     // minutes, 0 = none
	MaxAttempts  int    `json:"max_attempts" gorm:"default:0"`   // 0 = unlimited
	IsPublished  bool   `json:"is_published" gorm:"default:false"`
	IsDeleted    bool   `gorm:"default:false"`
}

// QuizQuestion represents a multiple choice question within a quiz
type QuizQuestion struct {
	gorm.Model
	QuizID       uint           `json:"quiz_id" gorm:"index;not null"`
	Text         string         `json:"text" gorm:"type:text"`
	Options      datatypes.JSON `json:"options"` // JSON array of option strings
	CorrectIndex int            `json:"-"`       // Never serialized to students
	Points       int            `json:"points" gorm:"default:1"`
	OrderIndex   int            `json:"order_index" gorm:"default:0"`
	IsDeleted    bool           `gorm:"default:false"`
}

// QuizAttempt represents one instance of a student taking a quiz
type QuizAttempt struct {
	gorm.Model
	UserID         uint           `json:"user_id" gorm:"index;not null"`
	QuizID         uint           `json:"quiz_id" gorm:"index;not null"`
	CourseID       uint           `json:"course_id" gorm:"index;not null"`
	Answers        datatypes.JSON `json:"answers"` // JSON array of selected option indices
	Score          int            `json:"score"`
	TotalQuestions int            `json:"total_questions"`
	Percentage     int            `json:"percentage"`
	Passed         bool           `json:"passed" gorm:"default:false"`
	TimeSpent      int            `json:"time_spent"` // seconds
	AttemptNumber  int            `json:"attempt_number" gorm:"default:1"`
	Status         string         `json:"status" gorm:"default:'STARTED'"` // STARTED, SUBMITTED
	SubmittedAt    *time.Time     `json:"submitted_at"`
	IsDeleted      bool           `gorm:"default:false"`
}
