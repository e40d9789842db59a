package courseValidator

import (
	"lms/middleware"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// parseParamID reads a positive integer route parameter. On failure the
// error response is already written and ok is false.
func parseParamID(c *fiber.Ctx, param string) (int, bool, error) {
	idStr := strings.TrimSpace(c.Params(param))
	if idStr == "" {
		return 0, false, middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Missing route parameter!", nil)
	}

	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		return 0, false, middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid route parameter!", nil)
	}

	return id, true, nil
}

// paramID validates a positive integer route parameter and stores it in
// c.Locals under the given key
func paramID(param, localKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok, err := parseParamID(c, param)
		if !ok {
			return err
		}

		c.Locals(localKey, id)
		return c.Next()
	}
}

func GetCourseDetail() fiber.Handler {
	return paramID("id", "courseID")
}

func CourseAction() fiber.Handler {
	return paramID("course_id", "courseID")
}

func CourseList() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Page  *int `json:"page"`
			Limit *int `json:"limit"`
		})

		if err := c.QueryParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid query parameters!", nil)
		}

		errors := make(map[string]string)

		// Validate Page
		if reqData.Page == nil || *reqData.Page < 1 {
			errors["page"] = "Page must be greater than 0!"
		}

		// Validate Limit
		if reqData.Limit == nil || *reqData.Limit < 1 {
			errors["limit"] = "Limit must be greater than 0!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedList", reqData)
		return c.Next()
	}
}

func CreateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(struct {
			Title        string `json:"title"`
			Description  string `json:"description"`
			Duration     int64  `json:"duration"`
			Price        uint   `json:"price"`
			ThumbnailURL string `json:"thumbnail_url"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		// Validate Title
		if strings.TrimSpace(reqData.Title) == "" {
			errors["title"] = "Title is required!"
		} else if len(strings.TrimSpace(reqData.Title)) < 3 {
			errors["title"] = "Title must be at least 3 characters long!"
		}

		// Validate Description
		if strings.TrimSpace(reqData.Description) == "" {
			errors["description"] = "Description is required!"
		} else if len(strings.TrimSpace(reqData.Description)) < 5 {
			errors["description"] = "Description must be at least 5 characters long!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

func UpdateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok, err := parseParamID(c, "id")
		if !ok {
			return err
		}
		c.Locals("courseID", courseID)

		reqData := new(struct {
			Title        string `json:"title"`
			Description  string `json:"description"`
			Duration     int64  `json:"duration"`
			ThumbnailURL string `json:"thumbnail_url"`
			Status       string `json:"status"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if reqData.Status != "" && reqData.Status != "DRAFT" && reqData.Status != "ACTIVE" && reqData.Status != "INACTIVE" {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"status": "Status must be DRAFT, ACTIVE or INACTIVE!",
			})
		}

		c.Locals("validatedCourseUpdate", reqData)
		return c.Next()
	}
}

func CreateModule() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok, err := parseParamID(c, "id")
		if !ok {
			return err
		}
		c.Locals("courseID", courseID)

		reqData := new(struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			OrderIndex  int    `json:"order_index"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if strings.TrimSpace(reqData.Title) == "" {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"title": "Title is required!",
			})
		}

		c.Locals("validatedModule", reqData)
		return c.Next()
	}
}

func CreateLesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok, err := parseParamID(c, "course_id")
		if !ok {
			return err
		}
		c.Locals("courseID", courseID)

		moduleID, ok, err := parseParamID(c, "module_id")
		if !ok {
			return err
		}
		c.Locals("moduleID", moduleID)

		reqData := new(struct {
			Title      string `json:"title"`
			Content    string `json:"content"`
			VideoURL   string `json:"video_url"`
			OrderIndex int    `json:"order_index"`
		})

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if strings.TrimSpace(reqData.Title) == "" {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"title": "Title is required!",
			})
		}

		c.Locals("validatedLesson", reqData)
		return c.Next()
	}
}

func LessonParam() fiber.Handler {
	return paramID("lesson_id", "lessonID")
}

func LessonToggle() fiber.Handler {
	return func(c *fiber.Ctx) error {
		courseID, ok, err := parseParamID(c, "course_id")
		if !ok {
			return err
		}
		c.Locals("courseID", courseID)

		lessonID, ok, err := parseParamID(c, "lesson_id")
		if !ok {
			return err
		}
		c.Locals("lessonID", lessonID)

		return c.Next()
	}
}
