package course

import (
	"time"

	"gorm.io/gorm"
)

// Certificate represents an issued certificate for course completion.
// One live certificate per (user, course); issuing again returns the
// existing record. Revoked certificates keep their row so the serial
// number stays burned.
type Certificate struct {
	gorm.Model
	UserID            uint      `json:"user_id" gorm:"index;not null"`
	CourseID          uint      `json:"course_id" gorm:"index;not null"`
	CertificateNumber string    `json:"certificate_number" gorm:"unique"`
	IssuedAt          time.Time `json:"issued_at"`
	IssuedBy          uint      `json:"issued_by"`
	IsDeleted         bool      `gorm:"default:false"`
}
