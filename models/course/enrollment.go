package course

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment tracks a student's relationship to a course.
// Progress is the weighted aggregate (lessons 60, quiz 20, short questions 20)
// recomputed after every input mutation.
type Enrollment struct {
	gorm.Model
	// No unique index on (user, course): cancelled and rejected enrollments
	// are soft-deleted and must not block a later re-enrollment. Uniqueness of
	// live rows is enforced by the enroll handler.
	UserID             uint       `json:"user_id" gorm:"index:idx_user_course;not null"`
	CourseID           uint       `json:"course_id" gorm:"index:idx_user_course;not null"`
	Status             string     `json:"status" gorm:"default:'PENDING'"` // PENDING, APPROVED
	Progress           int        `json:"progress" gorm:"default:0"`       // Completion percentage (0-100)
	Completed          bool       `json:"completed" gorm:"default:false"`
	InstructorApproved bool       `json:"instructor_approved" gorm:"default:false"`
	CompletedAt        *time.Time `json:"completed_at"`
	IsDeleted          bool       `gorm:"default:false"`
}
