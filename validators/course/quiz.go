package courseValidator

import (
	"fmt"
	"lms/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

type QuizQuestionPayload struct {
	Text         string   `json:"text" validate:"required,min=3"`
	Options      []string `json:"options" validate:"required,min=2"`
	CorrectIndex int      `json:"correct_index" validate:"min=0"`
	Points       int      `json:"points" validate:"min=1"`
}

type CreateQuizRequest struct {
	Title        string                `json:"title" validate:"required,min=3"`
	PassingScore int                   `json:"passing_score" validate:"min=0,max=100"`
	TimeLimit    int                   `json:"time_limit" validate:"min=0"`
	MaxAttempts  int                   `json:"max_attempts" validate:"min=0"`
	Questions    []QuizQuestionPayload `json:"questions" validate:"required,min=1,dive"`
}

type UpdateQuizRequest struct {
	Title        string `json:"title"`
	PassingScore *int   `json:"passing_score"`
	TimeLimit    *int   `json:"time_limit"`
	MaxAttempts  *int   `json:"max_attempts"`
}

// validationErrors flattens validator.ValidationErrors into a field map
func validationErrors(err error) map[string]string {
	errors := make(map[string]string)
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			errors[fe.Field()] = fmt.Sprintf("Failed validation on '%s'!", fe.Tag())
		}
	} else {
		errors["request"] = "Invalid request data!"
	}
	return errors
}

func CreateQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok, err := parseParamID(c, "id")
		if !ok {
			return err
		}
		c.Locals("courseID", courseID)

		reqData := new(CreateQuizRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validationErrors(err))
		}

		// Correct index must address an existing option
		errors := make(map[string]string)
		for i, q := range reqData.Questions {
			if q.CorrectIndex >= len(q.Options) {
				errors[fmt.Sprintf("questions[%d].correct_index", i)] = "Correct index is out of range!"
			}
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedQuiz", reqData)
		return c.Next()
	}
}

func UpdateQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		quizID, ok, err := parseParamID(c, "quiz_id")
		if !ok {
			return err
		}
		c.Locals("quizID", quizID)

		reqData := new(UpdateQuizRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)
		if reqData.PassingScore != nil && (*reqData.PassingScore < 0 || *reqData.PassingScore > 100) {
			errors["passing_score"] = "Passing score must be between 0 and 100!"
		}
		if reqData.MaxAttempts != nil && *reqData.MaxAttempts < 0 {
			errors["max_attempts"] = "Max attempts cannot be negative!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedQuizUpdate", reqData)
		return c.Next()
	}
}

func SubmitQuiz() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok, err := parseParamID(c, "course_id")
		if !ok {
			return err
		}
		c.Locals("courseID", courseID)

		reqData := new(struct {
			AttemptID uint  `json:"attempt_id"`
			Answers   []int `json:"answers"`
			TimeSpent int   `json:"time_spent"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.AttemptID == 0 {
			errors["attempt_id"] = "Attempt ID is required!"
		}
		if len(reqData.Answers) == 0 {
			errors["answers"] = "Answers are required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedQuizSubmit", reqData)
		return c.Next()
	}
}
