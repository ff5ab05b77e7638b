package controllers

import (
	"lms/database"
	"lms/middleware"
	"lms/services"

	"github.com/gofiber/fiber/v2"
)

// CompleteChapter marks a chapter as completed for the user's enrollment.
// Chapters unlock sequentially, so the request is rejected while any prior
// chapter is still incomplete.
func CompleteChapter(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}

	enrollmentID := c.Locals("enrollmentID").(int)
	chapterID := c.Locals("chapterID").(int)

	result, err := services.CompleteChapter(database.Database.Db, user.ID, uint(enrollmentID), uint(chapterID))
	if err != nil {
		return serviceErrorResponse(c, err)
	}

	message := "Chapter completed successfully!"
	if result.CourseCompleted {
		message = "Chapter completed - congratulations, the course is finished!"
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, message, result)
}

// GetProgression returns the per-chapter progression view for an enrollment
func GetProgression(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}

	enrollmentID := c.Locals("enrollmentID").(int)

	view, err := services.GetProgression(database.Database.Db, user.ID, uint(enrollmentID))
	if err != nil {
		return serviceErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progression fetched successfully!", view)
}

// RecordTimeSpent adds study minutes to a chapter and the enrollment total
func RecordTimeSpent(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}

	enrollmentID := c.Locals("enrollmentID").(int)
	chapterID := c.Locals("chapterID").(int)

	reqData, ok := c.Locals("validatedTimeSpent").(*struct {
		Minutes int `json:"minutes"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	progress, err := services.RecordTimeSpent(database.Database.Db, user.ID, uint(enrollmentID), uint(chapterID), reqData.Minutes)
	if err != nil {
		return serviceErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Time recorded successfully!", progress)
}
