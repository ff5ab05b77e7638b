package controllers

import (
	"lms/database"
	"lms/middleware"
	"lms/services"

	"github.com/gofiber/fiber/v2"
)

// SubmitFeedback stores a rating and optional review for a completed
// enrollment and refreshes the course's aggregate rating
func SubmitFeedback(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}

	enrollmentID := c.Locals("enrollmentID").(int)

	reqData, ok := c.Locals("validatedFeedback").(*struct {
		Rating int    `json:"rating" validate:"required,min=1,max=5"`
		Review string `json:"review" validate:"max=2000"`
	})
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	enrollment, err := services.SubmitFeedback(database.Database.Db, user.ID, uint(enrollmentID), reqData.Rating, reqData.Review)
	if err != nil {
		return serviceErrorResponse(c, err)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Feedback submitted successfully!", enrollment)
}
