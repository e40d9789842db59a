package models

import "gorm.io/gorm"

// Notification is an in-app notification, written alongside the email trigger
type Notification struct {
	gorm.Model
	UserID    uint   `json:"user_id" gorm:"index;not null"`
	Type      string `json:"type"` // ENROLLMENT, GRADING, CERTIFICATE
	Title     string `json:"title"`
	Body      string `json:"body" gorm:"type:text"`
	IsRead    bool   `json:"is_read" gorm:"default:false"`
	IsDeleted bool   `gorm:"default:false"`
}
