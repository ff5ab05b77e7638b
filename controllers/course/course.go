package controllers

import (
	"errors"

	"lms/database"
	"lms/middleware"
	"lms/models"
	courseModels "lms/models/course"
	"lms/services"

	"github.com/gofiber/fiber/v2"
)

// serviceErrorResponse maps service and policy errors to HTTP responses
func serviceErrorResponse(c *fiber.Ctx, err error) error {
	var prereq *courseModels.PrerequisiteNotMetError

	switch {
	case errors.Is(err, services.ErrNotFound):
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Enrollment not found!", nil)
	case errors.As(err, &prereq):
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, prereq.Error(), nil)
	case errors.Is(err, courseModels.ErrChapterNotInCourse):
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Chapter does not belong to this course!", nil)
	case errors.Is(err, courseModels.ErrNoChaptersDefined):
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Course has no chapters defined!", nil)
	case errors.Is(err, services.ErrAlreadyEnrolled):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "User already enrolled in this course!", nil)
	case errors.Is(err, services.ErrCourseNotCompleted):
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Please complete the course before submitting feedback!", nil)
	case errors.Is(err, services.ErrConcurrencyConflict):
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Concurrent update detected, please retry!", nil)
	case errors.Is(err, courseModels.ErrInvalidRating):
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Rating must be between 1 and 5!", nil)
	case errors.Is(err, courseModels.ErrNegativeTime):
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Time spent must not be negative!", nil)
	case errors.Is(err, courseModels.ErrAlreadyFinished):
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Enrollment is already completed or dropped!", nil)
	default:
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Something went wrong!", nil)
	}
}

// requireUser resolves the authenticated, non-deleted user from the JWT context
func requireUser(c *fiber.Ctx) (*models.User, error) {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return nil, middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := database.Database.Db.Where("id = ? AND is_deleted = ?", userID, false).First(&user).Error; err != nil {
		return nil, middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}
	return &user, nil
}

// GetCourseList lists published courses
func GetCourseList(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 10)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit

	db := database.Database.Db.Model(&courseModels.Course{}).Where("is_deleted = ? AND is_published = ?", false, true)

	// Get total count
	var total int64
	db.Count(&total)

	// Fetch paginated data
	var courses []courseModels.Course
	if err := db.Offset(offset).Limit(limit).Order("created_at desc").Find(&courses).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	response := map[string]interface{}{
		"courses": courses,
		"pagination": map[string]interface{}{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", response)
}

// GetCourseDetails gets course details with ordered chapters for a student
func GetCourseDetails(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}

	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ? AND is_published = ?", courseID, false, true).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	// Get ordered chapters
	var chapters []courseModels.Chapter
	database.Database.Db.Where("course_id = ? AND is_deleted = ?", courseID, false).Order("chapter_order asc").Find(&chapters)

	// Check if user is enrolled
	var enrollment courseModels.Enrollment
	isEnrolled := database.Database.Db.Where("user_id = ? AND course_id = ? AND is_deleted = ?", user.ID, courseID, false).First(&enrollment).Error == nil

	result := fiber.Map{
		"course":      course,
		"chapters":    chapters,
		"is_enrolled": isEnrolled,
	}
	if isEnrolled {
		result["enrollment"] = enrollment
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course details fetched successfully!", result)
}

// GetCourseReviews lists ratings and reviews left on a course
func GetCourseReviews(c *fiber.Ctx) error {
	courseID := c.Locals("courseID").(int)

	var course courseModels.Course
	if err := database.Database.Db.Where("id = ? AND is_deleted = ? AND is_published = ?", courseID, false, true).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
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

	db := database.Database.Db.Model(&courseModels.Enrollment{}).
		Where("course_id = ? AND rating IS NOT NULL AND is_deleted = ?", courseID, false)

	var total int64
	db.Count(&total)

	var reviews []courseModels.Enrollment
	if err := db.Select("id", "user_id", "rating", "review", "completed_at").
		Order("updated_at desc").Offset(offset).Limit(limit).Find(&reviews).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch reviews!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Reviews fetched successfully!", fiber.Map{
		"average_rating": course.AverageRating,
		"total_ratings":  course.TotalRatings,
		"reviews":        reviews,
		"pagination": fiber.Map{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}
