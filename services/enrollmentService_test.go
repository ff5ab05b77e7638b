package services

import (
	"fmt"
	"testing"
	"time"

	"lms/models"
	courseModels "lms/models/course"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1) // single in-memory database

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&courseModels.Course{},
		&courseModels.Chapter{},
		&courseModels.Enrollment{},
		&courseModels.ChapterProgress{},
	))

	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	user := models.User{Name: "Student", Email: email, Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	return user
}

// seedCourse creates a published course with the given chapter titles in order
func seedCourse(t *testing.T, db *gorm.DB, chapterTitles ...string) (courseModels.Course, []courseModels.Chapter) {
	t.Helper()

	c := courseModels.Course{Title: "Go from Scratch", Author: "J. Doe", Duration: 600, IsPublished: true}
	require.NoError(t, db.Create(&c).Error)

	chapters := make([]courseModels.Chapter, 0, len(chapterTitles))
	for i, title := range chapterTitles {
		ch := courseModels.Chapter{CourseID: c.ID, Title: title, ChapterOrder: i + 1}
		require.NoError(t, db.Create(&ch).Error)
		chapters = append(chapters, ch)
	}
	return c, chapters
}

func seedEnrollment(t *testing.T, db *gorm.DB, userID, courseID uint) courseModels.Enrollment {
	t.Helper()
	e := courseModels.Enrollment{
		UserID:     userID,
		CourseID:   courseID,
		Status:     courseModels.StatusEnrolled,
		EnrolledAt: time.Now(),
	}
	require.NoError(t, db.Create(&e).Error)
	return e
}

func TestCompleteChapterSequentialScenario(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "a@test.dev")
	c, chapters := seedCourse(t, db, "A", "B", "C")
	enrollment := seedEnrollment(t, db, user.ID, c.ID)

	// Complete A: progress 33, status in-progress, next chapter B
	result, err := CompleteChapter(db, user.ID, enrollment.ID, chapters[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 33, result.Enrollment.Progress)
	assert.Equal(t, courseModels.StatusInProgress, result.Enrollment.Status)
	assert.False(t, result.CourseCompleted)
	require.NotNil(t, result.NextChapter)
	assert.Equal(t, chapters[1].ID, result.NextChapter.ID)

	// Complete C directly: rejected naming B, progress untouched
	_, err = CompleteChapter(db, user.ID, enrollment.ID, chapters[2].ID)
	var prereq *courseModels.PrerequisiteNotMetError
	require.ErrorAs(t, err, &prereq)
	assert.Equal(t, "B", prereq.ChapterTitle)

	var reloaded courseModels.Enrollment
	require.NoError(t, db.First(&reloaded, enrollment.ID).Error)
	assert.Equal(t, 33, reloaded.Progress)
	assert.Equal(t, courseModels.StatusInProgress, reloaded.Status)

	// Complete B: progress 67
	result, err = CompleteChapter(db, user.ID, enrollment.ID, chapters[1].ID)
	require.NoError(t, err)
	assert.Equal(t, 67, result.Enrollment.Progress)
	assert.Equal(t, courseModels.StatusInProgress, result.Enrollment.Status)

	// Complete C: course finished
	result, err = CompleteChapter(db, user.ID, enrollment.ID, chapters[2].ID)
	require.NoError(t, err)
	assert.Equal(t, 100, result.Enrollment.Progress)
	assert.Equal(t, courseModels.StatusCompleted, result.Enrollment.Status)
	assert.True(t, result.CourseCompleted)
	assert.Nil(t, result.NextChapter)
	require.NotNil(t, result.Enrollment.CompletedAt)
}

func TestCompleteChapterIdempotent(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "a@test.dev")
	c, chapters := seedCourse(t, db, "A", "B")
	enrollment := seedEnrollment(t, db, user.ID, c.ID)

	first, err := CompleteChapter(db, user.ID, enrollment.ID, chapters[0].ID)
	require.NoError(t, err)
	require.NotNil(t, first.ChapterProgress.CompletedAt)
	stamped := *first.ChapterProgress.CompletedAt

	second, err := CompleteChapter(db, user.ID, enrollment.ID, chapters[0].ID)
	require.NoError(t, err)

	// Re-completion neither errors nor moves anything
	require.NotNil(t, second.ChapterProgress.CompletedAt)
	assert.WithinDuration(t, stamped, *second.ChapterProgress.CompletedAt, time.Millisecond)
	assert.Equal(t, first.Enrollment.Progress, second.Enrollment.Progress)

	// Still exactly one progress row for the pair
	var count int64
	db.Model(&courseModels.ChapterProgress{}).
		Where("enrollment_id = ? AND chapter_id = ?", enrollment.ID, chapters[0].ID).
		Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCompleteChapterNotInCourse(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "a@test.dev")
	c, _ := seedCourse(t, db, "A")
	_, otherChapters := seedCourse(t, db, "X")
	enrollment := seedEnrollment(t, db, user.ID, c.ID)

	_, err := CompleteChapter(db, user.ID, enrollment.ID, otherChapters[0].ID)
	assert.ErrorIs(t, err, courseModels.ErrChapterNotInCourse)
}

func TestCompleteChapterNoChaptersDefined(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "a@test.dev")
	c, _ := seedCourse(t, db)
	enrollment := seedEnrollment(t, db, user.ID, c.ID)

	_, err := CompleteChapter(db, user.ID, enrollment.ID, 12345)
	assert.ErrorIs(t, err, courseModels.ErrNoChaptersDefined)
}

func TestCompleteChapterOwnership(t *testing.T) {
	db := setupTestDB(t)
	owner := seedUser(t, db, "owner@test.dev")
	intruder := seedUser(t, db, "intruder@test.dev")
	c, chapters := seedCourse(t, db, "A")
	enrollment := seedEnrollment(t, db, owner.ID, c.ID)

	_, err := CompleteChapter(db, intruder.ID, enrollment.ID, chapters[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCompleteChapterOnDroppedEnrollment(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "a@test.dev")
	c, chapters := seedCourse(t, db, "A", "B")
	enrollment := seedEnrollment(t, db, user.ID, c.ID)

	_, err := CompleteChapter(db, user.ID, enrollment.ID, chapters[0].ID)
	require.NoError(t, err)

	_, err = DropEnrollment(db, user.ID, enrollment.ID)
	require.NoError(t, err)

	// History survives the drop but nothing advances anymore
	_, err = CompleteChapter(db, user.ID, enrollment.ID, chapters[1].ID)
	assert.ErrorIs(t, err, courseModels.ErrAlreadyFinished)

	var reloaded courseModels.Enrollment
	require.NoError(t, db.First(&reloaded, enrollment.ID).Error)
	assert.Equal(t, courseModels.StatusDropped, reloaded.Status)
	assert.Equal(t, 50, reloaded.Progress)
}

func TestCompleteChapterReusesExistingProgressRow(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "a@test.dev")
	c, chapters := seedCourse(t, db, "A")
	enrollment := seedEnrollment(t, db, user.ID, c.ID)

	// A time-tracking call already created the row
	_, err := RecordTimeSpent(db, user.ID, enrollment.ID, chapters[0].ID, 15)
	require.NoError(t, err)

	result, err := CompleteChapter(db, user.ID, enrollment.ID, chapters[0].ID)
	require.NoError(t, err)
	assert.True(t, result.ChapterProgress.IsCompleted)
	assert.Equal(t, 15, result.ChapterProgress.TimeSpent)

	var count int64
	db.Model(&courseModels.ChapterProgress{}).Where("enrollment_id = ?", enrollment.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestCompleteCourseManualPath(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "a@test.dev")
	c, _ := seedCourse(t, db, "A", "B", "C")
	enrollment := seedEnrollment(t, db, user.ID, c.ID)

	// No chapter gate on the manual path
	completed, err := CompleteCourse(db, user.ID, enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, courseModels.StatusCompleted, completed.Status)
	assert.Equal(t, 100, completed.Progress)
	require.NotNil(t, completed.CompletedAt)
}

func TestSubmitFeedbackRequiresCompletion(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "a@test.dev")
	c, _ := seedCourse(t, db, "A")
	enrollment := seedEnrollment(t, db, user.ID, c.ID)

	_, err := SubmitFeedback(db, user.ID, enrollment.ID, 5, "brilliant")
	assert.ErrorIs(t, err, ErrCourseNotCompleted)

	// Nothing was stored
	var reloaded courseModels.Enrollment
	require.NoError(t, db.First(&reloaded, enrollment.ID).Error)
	assert.Nil(t, reloaded.Rating)
	assert.Nil(t, reloaded.Review)
}

func TestSubmitFeedbackAggregatesCourseRating(t *testing.T) {
	db := setupTestDB(t)
	c, _ := seedCourse(t, db, "A")

	ratings := []int{4, 5}
	for i, rating := range ratings {
		user := seedUser(t, db, fmt.Sprintf("user%d@test.dev", i))
		enrollment := seedEnrollment(t, db, user.ID, c.ID)

		_, err := CompleteCourse(db, user.ID, enrollment.ID)
		require.NoError(t, err)

		updated, err := SubmitFeedback(db, user.ID, enrollment.ID, rating, "nice")
		require.NoError(t, err)
		require.NotNil(t, updated.Rating)
		assert.Equal(t, rating, *updated.Rating)
	}

	var reloaded courseModels.Course
	require.NoError(t, db.First(&reloaded, c.ID).Error)
	assert.Equal(t, 4.5, reloaded.AverageRating)
	assert.Equal(t, 2, reloaded.TotalRatings)
}

func TestGetProgressionView(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "a@test.dev")
	c, chapters := seedCourse(t, db, "A", "B", "C")
	enrollment := seedEnrollment(t, db, user.ID, c.ID)

	_, err := CompleteChapter(db, user.ID, enrollment.ID, chapters[0].ID)
	require.NoError(t, err)

	view, err := GetProgression(db, user.ID, enrollment.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, view.TotalChapters)
	assert.Equal(t, 1, view.CompletedChapters)
	assert.Equal(t, 33, view.ProgressPercentage)
	assert.False(t, view.IsCourseCompleted)

	require.Len(t, view.Chapters, 3)
	assert.True(t, view.Chapters[0].IsCompleted)
	assert.True(t, view.Chapters[0].IsAccessible)
	assert.False(t, view.Chapters[1].IsCompleted)
	assert.True(t, view.Chapters[1].IsAccessible) // unlocked by A
	assert.False(t, view.Chapters[2].IsAccessible) // B still missing

	// The read stamps last access
	require.NotNil(t, view.Enrollment.LastAccessedAt)
}

func TestGetProgressionEmptyCourse(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "a@test.dev")
	c, _ := seedCourse(t, db)
	enrollment := seedEnrollment(t, db, user.ID, c.ID)

	view, err := GetProgression(db, user.ID, enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, view.TotalChapters)
	assert.Equal(t, 0, view.ProgressPercentage)
	assert.False(t, view.IsCourseCompleted)
	assert.Empty(t, view.Chapters)
}

func TestEnroll(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "a@test.dev")
	c, _ := seedCourse(t, db, "A")

	enrollment, err := Enroll(db, user.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, courseModels.StatusEnrolled, enrollment.Status)
	assert.Equal(t, 0, enrollment.Progress)

	// One enrollment per (user, course)
	_, err = Enroll(db, user.ID, c.ID)
	assert.ErrorIs(t, err, ErrAlreadyEnrolled)
}

func TestEnrollUnpublishedCourse(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "a@test.dev")

	c := courseModels.Course{Title: "Draft", IsPublished: false}
	require.NoError(t, db.Create(&c).Error)

	_, err := Enroll(db, user.ID, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecordTimeSpent(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "a@test.dev")
	c, chapters := seedCourse(t, db, "A", "B")
	enrollment := seedEnrollment(t, db, user.ID, c.ID)

	progress, err := RecordTimeSpent(db, user.ID, enrollment.ID, chapters[0].ID, 20)
	require.NoError(t, err)
	assert.Equal(t, 20, progress.TimeSpent)

	progress, err = RecordTimeSpent(db, user.ID, enrollment.ID, chapters[0].ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 30, progress.TimeSpent)

	var reloaded courseModels.Enrollment
	require.NoError(t, db.First(&reloaded, enrollment.ID).Error)
	assert.Equal(t, 30, reloaded.TimeSpent)
	require.NotNil(t, reloaded.LastAccessedAt)

	// Negative increments are rejected
	_, err = RecordTimeSpent(db, user.ID, enrollment.ID, chapters[0].ID, -5)
	assert.ErrorIs(t, err, courseModels.ErrNegativeTime)

	// Unknown chapter is rejected
	_, err = RecordTimeSpent(db, user.ID, enrollment.ID, 99999, 5)
	assert.ErrorIs(t, err, courseModels.ErrChapterNotInCourse)
}

func TestDropEnrollmentKeepsHistory(t *testing.T) {
	db := setupTestDB(t)
	user := seedUser(t, db, "a@test.dev")
	c, chapters := seedCourse(t, db, "A", "B")
	enrollment := seedEnrollment(t, db, user.ID, c.ID)

	_, err := CompleteChapter(db, user.ID, enrollment.ID, chapters[0].ID)
	require.NoError(t, err)

	dropped, err := DropEnrollment(db, user.ID, enrollment.ID)
	require.NoError(t, err)
	assert.Equal(t, courseModels.StatusDropped, dropped.Status)
	assert.Equal(t, 50, dropped.Progress)

	// Chapter history is still there
	var count int64
	db.Model(&courseModels.ChapterProgress{}).
		Where("enrollment_id = ? AND is_completed = ?", enrollment.ID, true).
		Count(&count)
	assert.Equal(t, int64(1), count)

	// Dropping twice fails
	_, err = DropEnrollment(db, user.ID, enrollment.ID)
	assert.ErrorIs(t, err, courseModels.ErrAlreadyFinished)
}
