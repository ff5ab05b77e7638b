package course

import (
	"time"

	"gorm.io/gorm"
)

// ChapterProgress tracks a user's completion of one chapter within an
// enrollment. Rows are created lazily on the first progress-affecting
// action; the composite unique index makes concurrent creation safe.
type ChapterProgress struct {
	gorm.Model
	EnrollmentID uint       `json:"enrollment_id" gorm:"not null;uniqueIndex:idx_enrollment_chapter"`
	ChapterID    uint       `json:"chapter_id" gorm:"not null;uniqueIndex:idx_enrollment_chapter"`
	IsCompleted  bool       `json:"is_completed" gorm:"default:false"`
	CompletedAt  *time.Time `json:"completed_at"`
	TimeSpent    int        `json:"time_spent" gorm:"default:0"` // Minutes, monotonically non-decreasing

	Enrollment Enrollment `json:"-" gorm:"foreignKey:EnrollmentID;constraint:OnDelete:CASCADE"`
}

// MarkCompleted flips the record to completed, stamping CompletedAt once.
// Calling it on an already-completed record is a no-op.
func (p *ChapterProgress) MarkCompleted(now time.Time) {
	if p.IsCompleted {
		return
	}
	p.IsCompleted = true
	completedAt := now
	p.CompletedAt = &completedAt
}

// AddTimeSpent accumulates minutes spent on the chapter
func (p *ChapterProgress) AddTimeSpent(minutes int) error {
	if minutes < 0 {
		return ErrNegativeTime
	}
	p.TimeSpent += minutes
	return nil
}
