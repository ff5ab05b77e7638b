package course

import (
	"time"

	"gorm.io/gorm"
)

// CertificateRequest tracks a student's request for a course certificate
type CertificateRequest struct {
	gorm.Model
	UserID       uint       `json:"user_id" gorm:"index;not null"`
	CourseID     uint       `json:"course_id" gorm:"index;not null"`
	EnrollmentID uint       `json:"enrollment_id" gorm:"index;not null"`
	Status       string     `json:"status" gorm:"default:'PENDING'"` // PENDING, APPROVED, REJECTED
	RequestedAt  time.Time  `json:"requested_at"`
	ReviewedAt   *time.Time `json:"reviewed_at"`
	RejectReason string     `json:"reject_reason"`
	IsDeleted    bool       `gorm:"default:false"`
}

// Certificate represents an issued course completion certificate
type Certificate struct {
	gorm.Model
	UserID       uint      `json:"user_id" gorm:"index;not null"`
	CourseID     uint      `json:"course_id" gorm:"index;not null"`
	EnrollmentID uint      `json:"enrollment_id" gorm:"index;not null"`
	SerialNumber string    `json:"serial_number" gorm:"uniqueIndex;not null"`
	IssuedAt     time.Time `json:"issued_at"`
	IsDeleted    bool      `gorm:"default:false"`
}
