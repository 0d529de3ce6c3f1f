package handlers_fiber

import (
	"net/http"

	"grade-teams/internal/mapper"
	"grade-teams/internal/transport/http/dto"
	"grade-teams/internal/transport/http/middleware"

	"github.com/gofiber/fiber/v2"
)

// GetGrade returns the grade of ?username= (the caller when omitted) in ?course=.
func (h *Handler) GetGrade(c *fiber.Ctx) error {
	grade, err := h.uc.GetGrade(c.Context(), middleware.User(c), c.Query("username"), c.Query("course"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(mapper.ToDTOGrade(grade))
}

// PostGrade records the caller's score in a course.
func (h *Handler) PostGrade(c *fiber.Ctx) error {
	var body dto.LogGradeRequest
	if err := c.BodyParser(&body); err != nil || body.Score == nil {
		return invalidBody(c)
	}

	user := middleware.User(c)
	if err := h.uc.LogGrade(c.Context(), user, body.Course, *body.Score); err != nil {
		return h.writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(dto.Grade{Username: user, Course: body.Course, Score: *body.Score})
}
