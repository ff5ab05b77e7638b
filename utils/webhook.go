package utils

import (
	"log"
	"time"

	"lms/config"

	"github.com/go-resty/resty/v2"
)

// CourseCompletedEvent is the payload posted to the completion webhook
type CourseCompletedEvent struct {
	UserID       uint      `json:"user_id"`
	CourseID     uint      `json:"course_id"`
	EnrollmentID uint      `json:"enrollment_id"`
	CompletedAt  time.Time `json:"completed_at"`
}

// NotifyCourseCompleted posts a course-completed event to the configured
// webhook URL. Failures are logged, never surfaced to the caller; delivery
// is best effort.
func NotifyCourseCompleted(userID, courseID, enrollmentID uint, completedAt time.Time) {
	if config.AppConfig == nil || config.AppConfig.CompletionWebhookURL == "" {
		return
	}

	client := resty.New().SetTimeout(10 * time.Second)
	resp, err := client.R().
		SetHeader("Content-Type", "application/json").
		SetBody(CourseCompletedEvent{
			UserID:       userID,
			CourseID:     courseID,
			EnrollmentID: enrollmentID,
			CompletedAt:  completedAt,
		}).
		Post(config.AppConfig.CompletionWebhookURL)
	if err != nil {
		log.Printf("[WEBHOOK] Failed to deliver course-completed event: %v", err)
		return
	}
	if resp.StatusCode() >= 300 {
		log.Printf("[WEBHOOK] Course-completed event rejected with status %d", resp.StatusCode())
	}
}
