package models

import "gorm.io/gorm"

// CoursePayment records a verified payment backing a paid-course enrollment
type CoursePayment struct {
	gorm.Model
	UserID    uint   `json:"user_id" gorm:"index;not null"`
	CourseID  uint   `json:"course_id" gorm:"index;not null"`
	Amount    uint   `json:"amount" gorm:"not null"`
	Gateway   string `json:"gateway"`
	PaymentID string `json:"payment_id" gorm:"unique;not null"`
	Status    string `json:"status" gorm:"default:'VERIFIED'"` // VERIFIED, FAILED
	IsDeleted bool   `gorm:"default:false"`
}
