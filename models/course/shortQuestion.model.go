package course

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Short question submission statuses
const (
	SubmissionPending   = "PENDING"
	SubmissionGraded    = "GRADED"
	SubmissionCompleted = "COMPLETED"
)

// ShortQuestionSet represents the free-text question set of a course.
// At most one set per course, enforced with a unique index on CourseID.
type ShortQuestionSet struct {
	gorm.Model
	CourseID     uint   `json:"course_id" gorm:"uniqueIndex;not null"`
	Title        string `json:"title"`
	PassingScore int    `json:"passing_score" gorm:"default:70"` // percent
	TimeLimit    int    `json:"time_limit" gorm:"default:0"`     // minutes, 0 = none
	IsPublished  bool   `json:"is_published" gorm:"default:false"`
	IsDeleted    bool   `gorm:"default:false"`
}

// ShortQuestion represents a free-text question graded by the instructor
type ShortQuestion struct {
	gorm.Model
	SetID         uint           `json:"set_id" gorm:"index;not null"`
	Text          string         `json:"text" gorm:"type:text"`
	CorrectAnswer string         `json:"-" gorm:"type:text"` // Reference answer, never serialized to students
	Keywords      datatypes.JSON `json:"-"`                  // JSON array of expected keywords
	MinLength     int            `json:"min_length" gorm:"default:0"`
	MaxLength     int            `json:"max_length" gorm:"default:0"` // 0 = unlimited
	CaseSensitive bool           `json:"case_sensitive" gorm:"default:false"`
	ExactMatch    bool           `json:"exact_match" gorm:"default:false"`
	PartialCredit bool           `json:"partial_credit" gorm:"default:true"`
	Points        int            `json:"points" gorm:"default:10"`
	OrderIndex    int            `json:"order_index" gorm:"default:0"`
	IsDeleted     bool           `gorm:"default:false"`
}

// ShortQuestionSubmission represents a student's submission of a question set
// moving through the PENDING -> GRADED -> COMPLETED grading workflow.
type ShortQuestionSubmission struct {
	gorm.Model
	UserID          uint       `json:"user_id" gorm:"index;not null"`
	SetID           uint       `json:"set_id" gorm:"index;not null"`
	CourseID        uint       `json:"course_id" gorm:"index;not null"`
	Status          string     `json:"status" gorm:"default:'PENDING'"` // PENDING, GRADED, COMPLETED
	TotalScore      int        `json:"total_score"`
	MaxScore        int        `json:"max_score"`
	Percentage      int        `json:"percentage"`
	Passed          bool       `json:"passed" gorm:"default:false"`
	OverallFeedback string     `json:"overall_feedback" gorm:"type:text"`
	InstructorNotes string     `json:"instructor_notes" gorm:"type:text"`
	GradedAt        *time.Time `json:"graded_at"`
	GradedBy        *uint      `json:"graded_by"`
	IsDeleted       bool       `gorm:"default:false"`
}

// ShortQuestionAnswer is one free-text answer within a submission
type ShortQuestionAnswer struct {
	gorm.Model
	SubmissionID  uint   `json:"submission_id" gorm:"index;not null"`
	QuestionID    uint   `json:"question_id" gorm:"index;not null"`
	StudentAnswer string `json:"student_answer" gorm:"type:text"`
	Points        int    `json:"points"` // Suggested on submit, revised by the instructor
	IsCorrect     bool   `json:"is_correct" gorm:"default:false"`
	Feedback      string `json:"feedback" gorm:"type:text"`
	IsDeleted     bool   `gorm:"default:false"`
}
