package courseRoutes

import (
	controllers "lms/controllers/course"
	"lms/middleware"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupCourseRoutes sets up all student-facing course routes
func SetupCourseRoutes(app *fiber.App) {
	courseGroup := app.Group("/course")

	// Course browsing
	courseGroup.Get("/list", controllers.GetCourseList)
	courseGroup.Get("/:id", middleware.JWTMiddleware, validators.CourseID(), controllers.GetCourseDetails)
	courseGroup.Get("/:id/reviews", validators.CourseID(), controllers.GetCourseReviews)

	// Enrollment
	courseGroup.Post("/:id/enroll", middleware.JWTMiddleware, validators.CourseID(), controllers.EnrollInCourse)

	// Certificates
	courseGroup.Post("/:id/certificate/request", middleware.JWTMiddleware, validators.CourseID(), controllers.RequestCertificate)

	enrollmentGroup := app.Group("/enrollment")

	enrollmentGroup.Get("/list", middleware.JWTMiddleware, controllers.GetEnrollments)
	enrollmentGroup.Post("/:id/drop", middleware.JWTMiddleware, validators.EnrollmentID(), controllers.DropEnrollment)

	// Manual completion path, not gated on chapter completion
	enrollmentGroup.Post("/:id/complete", middleware.JWTMiddleware, validators.EnrollmentID(), controllers.CompleteCourse)

	// Chapter progression
	enrollmentGroup.Post("/:id/chapter/:chapter_id/complete", middleware.JWTMiddleware, validators.EnrollmentChapterIDs(), controllers.CompleteChapter)
	enrollmentGroup.Post("/:id/chapter/:chapter_id/time", middleware.JWTMiddleware, validators.EnrollmentChapterIDs(), validators.TimeSpent(), controllers.RecordTimeSpent)
	enrollmentGroup.Get("/:id/progression", middleware.JWTMiddleware, validators.EnrollmentID(), controllers.GetProgression)

	// Feedback
	enrollmentGroup.Post("/:id/feedback", middleware.JWTMiddleware, validators.EnrollmentID(), validators.Feedback(), controllers.SubmitFeedback)

	certificateGroup := app.Group("/certificate")
	certificateGroup.Get("/list", middleware.JWTMiddleware, controllers.GetUserCertificates)
}
