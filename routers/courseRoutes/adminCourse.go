package courseRoutes

import (
	controllers "lms/controllers/course"
	"lms/middleware"
	validators "lms/validators/course"

	"github.com/gofiber/fiber/v2"
)

// SetupAdminCourseRoutes sets up all admin course management routes
func SetupAdminCourseRoutes(app *fiber.App) {
	adminGroup := app.Group("/admin/course", middleware.JWTMiddleware, middleware.AdminOnly)

	// Course CRUD
	adminGroup.Post("/create", validators.CreateCourseAdmin(), controllers.AdminCreateCourse)
	adminGroup.Put("/:id", validators.UpdateCourseAdmin(), controllers.AdminUpdateCourse)
	adminGroup.Delete("/:id", validators.CourseID(), controllers.AdminDeleteCourse)
	adminGroup.Get("/list", controllers.AdminGetAllCourses)
	adminGroup.Post("/:id/publish", validators.CourseID(), controllers.AdminPublishCourse)

	// Chapter Management
	adminGroup.Post("/:id/chapter", validators.CourseID(), validators.ChapterBody(), controllers.AdminCreateChapter)
	adminGroup.Get("/:id/chapters", validators.CourseID(), controllers.AdminListChapters)
	adminGroup.Put("/:course_id/chapter/:chapter_id", validators.AdminChapterIDs(), validators.ChapterBody(), controllers.AdminUpdateChapter)
	adminGroup.Delete("/:course_id/chapter/:chapter_id", validators.AdminChapterIDs(), controllers.AdminDeleteChapter)

	// Enrollment & Progress Tracking
	adminGroup.Get("/:id/enrollments", validators.CourseID(), controllers.AdminGetCourseEnrollments)

	// Certificate Management
	certGroup := app.Group("/admin/certificates", middleware.JWTMiddleware, middleware.AdminOnly)
	certGroup.Get("/pending", controllers.AdminGetPendingCertificates)

	certRequestGroup := app.Group("/admin/certificate", middleware.JWTMiddleware, middleware.AdminOnly)
	certRequestGroup.Post("/:request_id/approve", validators.CertificateRequestID(), controllers.AdminApproveCertificate)
	certRequestGroup.Post("/:request_id/reject", validators.RejectCertificate(), controllers.AdminRejectCertificate)
}
