package handlers_fiber

import (
	"net/http"

	"grade-teams/internal/mapper"
	"grade-teams/internal/transport/http/middleware"

	"github.com/gofiber/fiber/v2"
)

// GetTeamAverage returns the mean score of the caller's team in ?course=.
func (h *Handler) GetTeamAverage(c *fiber.Ctx) error {
	course := c.Query("course")
	avg, err := h.uc.GetAverageGrade(c.Context(), middleware.User(c), course)
	if err != nil {
		return h.writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(mapper.ToDTOAverage(course, avg))
}

// GetTeamTop returns the best grade on the caller's team in ?course=.
func (h *Handler) GetTeamTop(c *fiber.Ctx) error {
	top, err := h.uc.GetTopGrade(c.Context(), middleware.User(c), c.Query("course"))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(mapper.ToDTOGrade(top))
}
