package courseValidator

import (
	"lms/middleware"

	"github.com/gofiber/fiber/v2"
)

// EnrollCourse validates the enrollment route. The payment body is optional
// here; the controller requires it for paid courses.
func EnrollCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok, err := parseParamID(c, "course_id")
		if !ok {
			return err
		}
		c.Locals("courseID", courseID)

		reqData := new(struct {
			PaymentID string `json:"payment_id"`
			Gateway   string `json:"gateway"`
		})

		if len(c.Body()) > 0 {
			if err := c.BodyParser(reqData); err != nil {
				return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
			}
		}

		c.Locals("validatedEnrollPayment", reqData)
		return c.Next()
	}
}

func EnrollmentAction() fiber.Handler {
	return paramID("enrollment_id", "enrollmentID")
}
