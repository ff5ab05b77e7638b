package controllers

import (
	"lms/database"
	"lms/middleware"
	courseModels "lms/models/course"
	"lms/services"

	"github.com/gofiber/fiber/v2"
)

// EnrollInCourse enrolls the authenticated user in a published course
func EnrollInCourse(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}

	courseID := c.Locals("courseID").(int)

	enrollment, err := services.Enroll(database.Database.Db, user.ID, uint(courseID))
	if err != nil {
		if err == services.ErrNotFound {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found or not published!", nil)
		}
		return serviceErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrolled in course successfully!", enrollment)
}

// GetEnrollments lists the authenticated user's enrollments
func GetEnrollments(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	db := database.Database.Db.Model(&courseModels.Enrollment{}).Where("user_id = ? AND is_deleted = ?", user.ID, false)

	// Get total count
	var total int64
	db.Count(&total)

	// Fetch paginated data
	var enrollments []courseModels.Enrollment
	if err := db.Offset(offset).Limit(limit).Order("created_at desc").Find(&enrollments).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch enrollments!", nil)
	}

	response := map[string]interface{}{
		"enrollments": enrollments,
		"pagination": map[string]interface{}{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", response)
}

// DropEnrollment marks the user's enrollment as dropped
func DropEnrollment(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}

	enrollmentID := c.Locals("enrollmentID").(int)

	enrollment, err := services.DropEnrollment(database.Database.Db, user.ID, uint(enrollmentID))
	if err != nil {
		return serviceErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment dropped successfully!", enrollment)
}

// CompleteCourse force-completes the enrollment without chapter gating.
// The gated path is CompleteChapter on the final chapter.
func CompleteCourse(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}

	enrollmentID := c.Locals("enrollmentID").(int)

	enrollment, err := services.CompleteCourse(database.Database.Db, user.ID, uint(enrollmentID))
	if err != nil {
		return serviceErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course completed successfully!", enrollment)
}
