package courseValidator

import (
	"lms/middleware"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type ShortQuestionPayload struct {
	Text          string   `json:"text" validate:"required,min=3"`
	CorrectAnswer string   `json:"correct_answer" validate:"required"`
	Keywords      []string `json:"keywords"`
	MinLength     int      `json:"min_length" validate:"min=0"`
	MaxLength     int      `json:"max_length" validate:"min=0"`
	CaseSensitive bool     `json:"case_sensitive"`
	ExactMatch    bool     `json:"exact_match"`
	PartialCredit bool     `json:"partial_credit"`
	Points        int      `json:"points" validate:"min=1"`
}

type CreateShortQuestionSetRequest struct {
	Title        string                 `json:"title" validate:"required,min=3"`
	PassingScore int                    `json:"passing_score" validate:"min=0,max=100"`
	TimeLimit    int                    `json:"time_limit" validate:"min=0"`
	Questions    []ShortQuestionPayload `json:"questions" validate:"required,min=1,dive"`
}

func CreateShortQuestionSet() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok, err := parseParamID(c, "id")
		if !ok {
			return err
		}
		c.Locals("courseID", courseID)

		reqData := new(CreateShortQuestionSetRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, validationErrors(err))
		}

		errors := make(map[string]string)
		for _, q := range reqData.Questions {
			if q.MaxLength > 0 && q.MinLength > q.MaxLength {
				errors["questions"] = "Min length cannot exceed max length!"
				break
			}
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedShortQuestionSet", reqData)
		return c.Next()
	}
}

func SubmitShortQuestions() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok, err := parseParamID(c, "course_id")
		if !ok {
			return err
		}
		c.Locals("courseID", courseID)

		reqData := new(struct {
			Answers []struct {
				QuestionID uint   `json:"question_id"`
				Answer     string `json:"answer"`
			} `json:"answers"`
			TimeSpent int `json:"time_spent"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if len(reqData.Answers) == 0 {
			errors["answers"] = "Answers are required!"
		}
		for _, answer := range reqData.Answers {
			if answer.QuestionID == 0 {
				errors["answers"] = "Every answer needs a question ID!"
				break
			}
			if strings.TrimSpace(answer.Answer) == "" {
				errors["answers"] = "Answers cannot be empty!"
				break
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedShortSubmit", reqData)
		return c.Next()
	}
}

func SetParam() fiber.Handler {
	return paramID("set_id", "setID")
}

func GradeSubmission() fiber.Handler {
	return func(c *fiber.Ctx) error {
		submissionID, ok, err := parseParamID(c, "submission_id")
		if !ok {
			return err
		}
		c.Locals("submissionID", submissionID)

		reqData := new(struct {
			Answers []struct {
				QuestionID uint   `json:"question_id"`
				Points     int    `json:"points"`
				IsCorrect  bool   `json:"is_correct"`
				Feedback   string `json:"feedback"`
			} `json:"answers"`
			OverallFeedback string `json:"overall_feedback"`
			InstructorNotes string `json:"instructor_notes"`
			Finalize        bool   `json:"finalize"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if len(reqData.Answers) == 0 {
			errors["answers"] = "Graded answers are required!"
		}
		for _, answer := range reqData.Answers {
			if answer.QuestionID == 0 {
				errors["answers"] = "Every graded answer needs a question ID!"
				break
			}
			if answer.Points < 0 {
				errors["answers"] = "Points cannot be negative!"
				break
			}
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedGrading", reqData)
		return c.Next()
	}
}
