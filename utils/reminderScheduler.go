package utils

import (
	"log"
	"time"

	"lms/database"
	"lms/models"
	courseModels "lms/models/course"

	"github.com/robfig/cron/v3"
)

// InitializeReminderScheduler sets up the daily inactivity reminder job
func InitializeReminderScheduler() {
	log.Println("[REMINDER-SCHEDULER] Initializing reminder scheduler...")

	c := cron.New()

	// Run daily at 9 AM to nudge inactive learners
	c.AddFunc("0 9 * * *", func() {
		log.Println("[REMINDER-SCHEDULER] Running daily inactivity check...")
		SendInactivityReminders()
	})

	c.Start()
	log.Println("[REMINDER-SCHEDULER] Reminder scheduler started - runs daily at 9 AM")
}

// SendInactivityReminders emails learners whose in-progress enrollments
// went quiet 7 days ago. The window is one day wide so each lapse produces
// a single reminder; the job only reads enrollment state.
func SendInactivityReminders() {
	db := database.Database.Db
	now := time.Now()
	windowEnd := now.AddDate(0, 0, -7)
	windowStart := now.AddDate(0, 0, -8)

	var enrollments []courseModels.Enrollment
	if err := db.
		Where("status = ? AND is_deleted = ? AND last_accessed_at IS NOT NULL", courseModels.StatusInProgress, false).
		Where("last_accessed_at BETWEEN ? AND ?", windowStart, windowEnd).
		Find(&enrollments).Error; err != nil {
		log.Printf("[REMINDER-SCHEDULER] Failed to fetch inactive enrollments: %v", err)
		return
	}

	log.Printf("[REMINDER-SCHEDULER] Found %d inactive enrollments", len(enrollments))

	for _, enrollment := range enrollments {
		var user models.User
		if err := db.Where("id = ? AND is_deleted = ?", enrollment.UserID, false).First(&user).Error; err != nil {
			continue
		}

		var c courseModels.Course
		if err := db.Where("id = ?", enrollment.CourseID).First(&c).Error; err != nil {
			continue
		}

		if err := SendInactivityReminderEmail(user.Email, user.Name, c.Title, enrollment.Progress); err != nil {
			log.Printf("[REMINDER-SCHEDULER] Failed to email %s: %v", user.Email, err)
		}
	}
}
