package services

import (
	"errors"
	"math"
	"strings"
	"time"

	courseModels "lms/models/course"
	"lms/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrNotFound is returned when the enrollment, course or chapter does not
	// exist or does not belong to the requesting user
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyEnrolled is returned when the user already has an enrollment for the course
	ErrAlreadyEnrolled = errors.New("user already enrolled in this course")
	// ErrCourseNotCompleted is returned when feedback is submitted before completion
	ErrCourseNotCompleted = errors.New("course must be completed before submitting feedback")
	// ErrConcurrencyConflict is returned when a write loses a race and cannot be recovered
	ErrConcurrencyConflict = errors.New("concurrent update detected, please retry")
)

// CompleteChapterResult is returned by CompleteChapter with the updated
// state and what the student should do next.
type CompleteChapterResult struct {
	ChapterProgress courseModels.ChapterProgress `json:"chapter_progress"`
	Enrollment      courseModels.Enrollment      `json:"enrollment"`
	NextChapter     *courseModels.Chapter        `json:"next_chapter,omitempty"`
	CourseCompleted bool                         `json:"course_completed"`
}

// ChapterProgression is one row of the read-only progression projection
type ChapterProgression struct {
	ChapterID    uint       `json:"chapter_id"`
	Title        string     `json:"title"`
	ChapterOrder int        `json:"chapter_order"`
	IsCompleted  bool       `json:"is_completed"`
	IsAccessible bool       `json:"is_accessible"`
	CompletedAt  *time.Time `json:"completed_at"`
	TimeSpent    int        `json:"time_spent"`
}

// ProgressionView is the full projection returned by GetProgression
type ProgressionView struct {
	Chapters           []ChapterProgression    `json:"chapters"`
	CompletedChapters  int                     `json:"completed_chapters"`
	TotalChapters      int                     `json:"total_chapters"`
	IsCourseCompleted  bool                    `json:"is_course_completed"`
	ProgressPercentage int                     `json:"progress_percentage"`
	Enrollment         courseModels.Enrollment `json:"enrollment"`
}

// lockForUpdate applies a row-level lock on the selected rows. SQLite (used
// by the test databases) has no FOR UPDATE syntax and runs single-writer,
// so the clause is applied for Postgres only.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// isUniqueViolation reports whether an insert lost a race on a unique index
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}

// loadEnrollment fetches and locks the user's enrollment row
func loadEnrollment(tx *gorm.DB, userID, enrollmentID uint) (*courseModels.Enrollment, error) {
	var enrollment courseModels.Enrollment
	if err := lockForUpdate(tx).
		Where("id = ? AND user_id = ? AND is_deleted = ?", enrollmentID, userID, false).
		First(&enrollment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &enrollment, nil
}

// orderedChapters returns the course's chapters ordered by chapter_order
func orderedChapters(tx *gorm.DB, courseID uint) ([]courseModels.Chapter, error) {
	var chapters []courseModels.Chapter
	if err := tx.Where("course_id = ? AND is_deleted = ?", courseID, false).
		Order("chapter_order asc").Find(&chapters).Error; err != nil {
		return nil, err
	}
	return chapters, nil
}

// completedChapterSet returns the IDs of completed chapters for an enrollment
func completedChapterSet(tx *gorm.DB, enrollmentID uint) (map[uint]bool, error) {
	var chapterIDs []uint
	if err := tx.Model(&courseModels.ChapterProgress{}).
		Where("enrollment_id = ? AND is_completed = ?", enrollmentID, true).
		Pluck("chapter_id", &chapterIDs).Error; err != nil {
		return nil, err
	}
	completed := make(map[uint]bool, len(chapterIDs))
	for _, id := range chapterIDs {
		completed[id] = true
	}
	return completed, nil
}

// findOrCreateProgress returns the progress row for (enrollment, chapter),
// creating it when absent. The loser of a concurrent create re-reads the
// winner's row instead of duplicating it.
func findOrCreateProgress(tx *gorm.DB, enrollmentID, chapterID uint) (*courseModels.ChapterProgress, error) {
	var progress courseModels.ChapterProgress
	err := tx.Where("enrollment_id = ? AND chapter_id = ?", enrollmentID, chapterID).
		First(&progress).Error
	if err == nil {
		return &progress, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	progress = courseModels.ChapterProgress{EnrollmentID: enrollmentID, ChapterID: chapterID}
	if err := tx.Create(&progress).Error; err != nil {
		if isUniqueViolation(err) {
			// Lost the race, pick up the existing row
			if err := tx.Where("enrollment_id = ? AND chapter_id = ?", enrollmentID, chapterID).
				First(&progress).Error; err != nil {
				return nil, ErrConcurrencyConflict
			}
			return &progress, nil
		}
		return nil, err
	}
	return &progress, nil
}

// countCompleted counts the completed chapters of an enrollment
func countCompleted(tx *gorm.DB, enrollmentID uint) (int, error) {
	var count int64
	if err := tx.Model(&courseModels.ChapterProgress{}).
		Where("enrollment_id = ? AND is_completed = ?", enrollmentID, true).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}

// CompleteChapter marks a chapter as completed for the user's enrollment.
// Chapters unlock sequentially: every prior chapter must already be
// completed, otherwise the call is rejected without mutating state.
// Re-completing a chapter is idempotent. The whole read-decide-write
// sequence runs in one transaction holding the enrollment row lock, so two
// concurrent calls for the same enrollment serialize.
func CompleteChapter(db *gorm.DB, userID, enrollmentID, chapterID uint) (*CompleteChapterResult, error) {
	var result CompleteChapterResult
	courseCompleted := false

	err := db.Transaction(func(tx *gorm.DB) error {
		enrollment, err := loadEnrollment(tx, userID, enrollmentID)
		if err != nil {
			return err
		}

		// Dropped enrollments keep their history but stop advancing
		if enrollment.Status == courseModels.StatusDropped {
			return courseModels.ErrAlreadyFinished
		}

		chapters, err := orderedChapters(tx, enrollment.CourseID)
		if err != nil {
			return err
		}

		completed, err := completedChapterSet(tx, enrollment.ID)
		if err != nil {
			return err
		}

		// Sequential gate
		if err := courseModels.CanComplete(chapters, chapterID, completed); err != nil {
			return err
		}

		progress, err := findOrCreateProgress(tx, enrollment.ID, chapterID)
		if err != nil {
			return err
		}

		now := time.Now()
		progress.MarkCompleted(now)
		if err := tx.Save(progress).Error; err != nil {
			return err
		}

		completedCount, err := countCompleted(tx, enrollment.ID)
		if err != nil {
			return err
		}

		pct := courseModels.ComputeProgress(len(chapters), completedCount)
		enrollment.ApplyProgress(pct, now)
		enrollment.Touch(now)
		if err := tx.Save(enrollment).Error; err != nil {
			return err
		}

		nextChapter, _ := courseModels.NextChapter(chapters, chapterID)
		courseCompleted = courseModels.IsCourseComplete(len(chapters), completedCount)

		result = CompleteChapterResult{
			ChapterProgress: *progress,
			Enrollment:      *enrollment,
			NextChapter:     nextChapter,
			CourseCompleted: courseCompleted,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if courseCompleted && result.Enrollment.CompletedAt != nil {
		go utils.NotifyCourseCompleted(result.Enrollment.UserID, result.Enrollment.CourseID,
			result.Enrollment.ID, *result.Enrollment.CompletedAt)
	}

	return &result, nil
}

// CompleteCourse force-completes the enrollment without checking the
// chapter gate. This is the manual path for courses without chapter gating;
// the gated variant is CompleteChapter on the last chapter.
func CompleteCourse(db *gorm.DB, userID, enrollmentID uint) (*courseModels.Enrollment, error) {
	var enrollment *courseModels.Enrollment

	err := db.Transaction(func(tx *gorm.DB) error {
		e, err := loadEnrollment(tx, userID, enrollmentID)
		if err != nil {
			return err
		}

		now := time.Now()
		e.CompleteNow(now)
		e.Touch(now)
		if err := tx.Save(e).Error; err != nil {
			return err
		}

		enrollment = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	if enrollment.CompletedAt != nil {
		go utils.NotifyCourseCompleted(enrollment.UserID, enrollment.CourseID,
			enrollment.ID, *enrollment.CompletedAt)
	}

	return enrollment, nil
}

// SubmitFeedback stores the student's rating and review on a completed
// enrollment and refreshes the course's aggregate rating.
func SubmitFeedback(db *gorm.DB, userID, enrollmentID uint, rating int, review string) (*courseModels.Enrollment, error) {
	var enrollment *courseModels.Enrollment

	err := db.Transaction(func(tx *gorm.DB) error {
		e, err := loadEnrollment(tx, userID, enrollmentID)
		if err != nil {
			return err
		}

		if err := e.Rate(rating, review); err != nil {
			if errors.Is(err, courseModels.ErrNotCompleted) {
				return ErrCourseNotCompleted
			}
			return err
		}
		if err := tx.Save(e).Error; err != nil {
			return err
		}

		if err := refreshCourseRating(tx, e.CourseID); err != nil {
			return err
		}

		enrollment = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return enrollment, nil
}

// refreshCourseRating recomputes the average rating across all rated
// enrollments of the course, rounded to 1 decimal place.
func refreshCourseRating(tx *gorm.DB, courseID uint) error {
	type ratingAgg struct {
		Avg   float64
		Total int64
	}
	var agg ratingAgg
	if err := tx.Model(&courseModels.Enrollment{}).
		Select("COALESCE(AVG(rating), 0) as avg, COUNT(rating) as total").
		Where("course_id = ? AND rating IS NOT NULL AND is_deleted = ?", courseID, false).
		Scan(&agg).Error; err != nil {
		return err
	}

	avg := math.Round(agg.Avg*10) / 10

	return tx.Model(&courseModels.Course{}).Where("id = ?", courseID).
		Updates(map[string]interface{}{
			"average_rating": avg,
			"total_ratings":  agg.Total,
		}).Error
}

// GetProgression builds the read-only per-chapter projection for an
// enrollment. Accessibility is derived from the full completed prefix, the
// same predicate the completion gate uses.
func GetProgression(db *gorm.DB, userID, enrollmentID uint) (*ProgressionView, error) {
	var view ProgressionView

	err := db.Transaction(func(tx *gorm.DB) error {
		enrollment, err := loadEnrollment(tx, userID, enrollmentID)
		if err != nil {
			return err
		}

		chapters, err := orderedChapters(tx, enrollment.CourseID)
		if err != nil {
			return err
		}

		var records []courseModels.ChapterProgress
		if err := tx.Where("enrollment_id = ?", enrollment.ID).Find(&records).Error; err != nil {
			return err
		}
		byChapter := make(map[uint]courseModels.ChapterProgress, len(records))
		completed := make(map[uint]bool, len(records))
		for _, r := range records {
			byChapter[r.ChapterID] = r
			if r.IsCompleted {
				completed[r.ChapterID] = true
			}
		}

		rows := make([]ChapterProgression, len(chapters))
		completedCount := 0
		for i, ch := range chapters {
			row := ChapterProgression{
				ChapterID:    ch.ID,
				Title:        ch.Title,
				ChapterOrder: ch.ChapterOrder,
				IsAccessible: courseModels.IsChapterAccessible(chapters, i, completed),
			}
			if record, ok := byChapter[ch.ID]; ok {
				row.IsCompleted = record.IsCompleted
				row.CompletedAt = record.CompletedAt
				row.TimeSpent = record.TimeSpent
			}
			if row.IsCompleted {
				completedCount++
			}
			rows[i] = row
		}

		enrollment.Touch(time.Now())
		if err := tx.Save(enrollment).Error; err != nil {
			return err
		}

		view = ProgressionView{
			Chapters:           rows,
			CompletedChapters:  completedCount,
			TotalChapters:      len(chapters),
			IsCourseCompleted:  courseModels.IsCourseComplete(len(chapters), completedCount),
			ProgressPercentage: courseModels.ComputeProgress(len(chapters), completedCount),
			Enrollment:         *enrollment,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// Enroll creates an enrollment for the user in a published course. A user
// has at most one enrollment per course.
func Enroll(db *gorm.DB, userID, courseID uint) (*courseModels.Enrollment, error) {
	var enrollment courseModels.Enrollment

	err := db.Transaction(func(tx *gorm.DB) error {
		var c courseModels.Course
		if err := tx.Where("id = ? AND is_deleted = ? AND is_published = ?", courseID, false, true).
			First(&c).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var existing courseModels.Enrollment
		if err := tx.Where("user_id = ? AND course_id = ? AND is_deleted = ?", userID, courseID, false).
			First(&existing).Error; err == nil {
			return ErrAlreadyEnrolled
		}

		enrollment = courseModels.Enrollment{
			UserID:     userID,
			CourseID:   courseID,
			Status:     courseModels.StatusEnrolled,
			EnrolledAt: time.Now(),
		}
		if err := tx.Create(&enrollment).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrAlreadyEnrolled
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// DropEnrollment marks the enrollment as dropped, keeping its history
func DropEnrollment(db *gorm.DB, userID, enrollmentID uint) (*courseModels.Enrollment, error) {
	var enrollment *courseModels.Enrollment

	err := db.Transaction(func(tx *gorm.DB) error {
		e, err := loadEnrollment(tx, userID, enrollmentID)
		if err != nil {
			return err
		}
		if err := e.Drop(); err != nil {
			return err
		}
		if err := tx.Save(e).Error; err != nil {
			return err
		}
		enrollment = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return enrollment, nil
}

// RecordTimeSpent accumulates minutes spent on a chapter, on both the
// chapter record and the enrollment total.
func RecordTimeSpent(db *gorm.DB, userID, enrollmentID, chapterID uint, minutes int) (*courseModels.ChapterProgress, error) {
	var progress *courseModels.ChapterProgress

	err := db.Transaction(func(tx *gorm.DB) error {
		enrollment, err := loadEnrollment(tx, userID, enrollmentID)
		if err != nil {
			return err
		}

		chapters, err := orderedChapters(tx, enrollment.CourseID)
		if err != nil {
			return err
		}
		found := false
		for _, ch := range chapters {
			if ch.ID == chapterID {
				found = true
				break
			}
		}
		if !found {
			return courseModels.ErrChapterNotInCourse
		}

		p, err := findOrCreateProgress(tx, enrollment.ID, chapterID)
		if err != nil {
			return err
		}
		if err := p.AddTimeSpent(minutes); err != nil {
			return err
		}
		if err := tx.Save(p).Error; err != nil {
			return err
		}

		now := time.Now()
		if err := enrollment.AddTimeSpent(minutes); err != nil {
			return err
		}
		enrollment.Touch(now)
		if err := tx.Save(enrollment).Error; err != nil {
			return err
		}

		progress = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return progress, nil
}
