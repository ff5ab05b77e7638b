package courseValidator

import (
	"strconv"
	"strings"

	"lms/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// ============ Enrollment Validators ============

// EnrollmentID validates the :id route parameter and stores it as enrollmentID
func EnrollmentID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		enrollmentID, err := strconv.Atoi(strings.TrimSpace(c.Params("id")))
		if err != nil || enrollmentID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Enrollment ID!", nil)
		}

		c.Locals("enrollmentID", enrollmentID)
		return c.Next()
	}
}

// EnrollmentChapterIDs validates the :id and :chapter_id route parameters
func EnrollmentChapterIDs() fiber.Handler {
	return func(c *fiber.Ctx) error {
		enrollmentID, err := strconv.Atoi(strings.TrimSpace(c.Params("id")))
		if err != nil || enrollmentID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Enrollment ID!", nil)
		}

		chapterID, err := strconv.Atoi(strings.TrimSpace(c.Params("chapter_id")))
		if err != nil || chapterID <= 0 {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid Chapter ID!", nil)
		}

		c.Locals("enrollmentID", enrollmentID)
		c.Locals("chapterID", chapterID)
		return c.Next()
	}
}

// TimeSpent validates the study-time payload
func TimeSpent() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Minutes int `json:"minutes"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if reqData.Minutes < 0 {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"minutes": "Minutes must not be negative!",
			})
		}

		c.Locals("validatedTimeSpent", reqData)
		return c.Next()
	}
}

// Feedback validates the rating/review payload
func Feedback() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Rating int    `json:"rating" validate:"required,min=1,max=5"`
			Review string `json:"review" validate:"max=2000"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.Review = strings.TrimSpace(reqData.Review)

		if err := validate.Struct(reqData); err != nil {
			errors := make(map[string]string)
			for _, fieldErr := range err.(validator.ValidationErrors) {
				switch fieldErr.Field() {
				case "Rating":
					errors["rating"] = "Rating must be between 1 and 5!"
				case "Review":
					errors["review"] = "Review must be at most 2000 characters!"
				}
			}
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedFeedback", reqData)
		return c.Next()
	}
}
