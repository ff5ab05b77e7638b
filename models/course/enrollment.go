package course

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Enrollment statuses
const (
	StatusEnrolled   = "ENROLLED"
	StatusInProgress = "IN_PROGRESS"
	StatusCompleted  = "COMPLETED"
	StatusDropped    = "DROPPED"
)

var (
	// ErrNotCompleted is returned when a rating is submitted before the course is completed
	ErrNotCompleted = errors.New("course is not completed yet")
	// ErrInvalidRating is returned when a rating falls outside 1-5
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	// ErrNegativeTime is returned when a negative time increment is applied
	ErrNegativeTime = errors.New("time spent must not be negative")
	// ErrAlreadyFinished is returned when dropping an enrollment that already finished
	ErrAlreadyFinished = errors.New("enrollment is already completed or dropped")
)

// Enrollment tracks a user's enrollment in a course with progress.
// Status and timestamps are mutated only through the transition methods
// below; there are no ORM hooks stamping them implicitly.
type Enrollment struct {
	gorm.Model
	UserID         uint       `json:"user_id" gorm:"not null;uniqueIndex:idx_user_course"`
	CourseID       uint       `json:"course_id" gorm:"not null;uniqueIndex:idx_user_course"`
	Status         string     `json:"status" gorm:"default:'ENROLLED'"` // ENROLLED, IN_PROGRESS, COMPLETED, DROPPED
	Progress       int        `json:"progress" gorm:"default:0"`        // Completion percentage (0-100)
	EnrolledAt     time.Time  `json:"enrolled_at"`
	CompletedAt    *time.Time `json:"completed_at"`
	LastAccessedAt *time.Time `json:"last_accessed_at"`
	TimeSpent      int        `json:"time_spent" gorm:"default:0"` // Total minutes spent
	Rating         *int       `json:"rating"`                      // 1-5, set after completion
	Review         *string    `json:"review" gorm:"type:text"`
	IsDeleted      bool       `gorm:"default:false"`
}

// IsTerminal reports whether the enrollment stopped advancing
func (e *Enrollment) IsTerminal() bool {
	return e.Status == StatusCompleted || e.Status == StatusDropped
}

// ApplyProgress applies a recomputed progress percentage to the enrollment.
// A value of 100 transitions the enrollment to COMPLETED and stamps
// CompletedAt exactly once; a value above zero promotes a fresh enrollment
// to IN_PROGRESS. Completed and dropped enrollments are never reverted.
func (e *Enrollment) ApplyProgress(percentage int, now time.Time) {
	if percentage < 0 {
		percentage = 0
	}
	if percentage > 100 {
		percentage = 100
	}

	// Completed and dropped enrollments stop advancing; dropped ones keep
	// their historical progress.
	if e.IsTerminal() {
		return
	}

	e.Progress = percentage

	if percentage >= 100 {
		e.Status = StatusCompleted
		if e.CompletedAt == nil {
			completedAt := now
			e.CompletedAt = &completedAt
		}
	} else if percentage > 0 && e.Status == StatusEnrolled {
		e.Status = StatusInProgress
	}
}

// CompleteNow force-completes the enrollment, bypassing percentage
// derivation. Used by the manual completion path.
func (e *Enrollment) CompleteNow(now time.Time) {
	e.Status = StatusCompleted
	e.Progress = 100
	if e.CompletedAt == nil {
		completedAt := now
		e.CompletedAt = &completedAt
	}
}

// Drop marks the enrollment as dropped. Progress and chapter history are retained.
func (e *Enrollment) Drop() error {
	if e.IsTerminal() {
		return ErrAlreadyFinished
	}
	e.Status = StatusDropped
	return nil
}

// Rate sets the rating and optional review. The course must be completed first.
func (e *Enrollment) Rate(rating int, review string) error {
	if e.Status != StatusCompleted {
		return ErrNotCompleted
	}
	if rating < 1 || rating > 5 {
		return ErrInvalidRating
	}
	e.Rating = &rating
	if review != "" {
		e.Review = &review
	}
	return nil
}

// AddTimeSpent accumulates minutes spent on the course
func (e *Enrollment) AddTimeSpent(minutes int) error {
	if minutes < 0 {
		return ErrNegativeTime
	}
	e.TimeSpent += minutes
	return nil
}

// Touch stamps the last access time
func (e *Enrollment) Touch(now time.Time) {
	accessedAt := now
	e.LastAccessedAt = &accessedAt
}
