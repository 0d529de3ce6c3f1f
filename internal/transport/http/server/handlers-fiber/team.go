package handlers_fiber

import (
	"net/http"

	"grade-teams/internal/mapper"
	"grade-teams/internal/transport/http/dto"
	"grade-teams/internal/transport/http/middleware"

	"github.com/gofiber/fiber/v2"
)

// PostTeamForm creates a team with the caller as its only member.
func (h *Handler) PostTeamForm(c *fiber.Ctx) error {
	var body dto.TeamNameRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}

	user := middleware.User(c)
	if err := h.uc.FormTeam(c.Context(), user, body.TeamName); err != nil {
		return h.writeError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(dto.Membership{Username: user, TeamName: body.TeamName})
}

// PostTeamJoin adds the caller to an existing team.
func (h *Handler) PostTeamJoin(c *fiber.Ctx) error {
	var body dto.TeamNameRequest
	if err := c.BodyParser(&body); err != nil {
		return invalidBody(c)
	}

	user := middleware.User(c)
	if err := h.uc.JoinTeam(c.Context(), user, body.TeamName); err != nil {
		return h.writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(dto.Membership{Username: user, TeamName: body.TeamName})
}

// PostTeamLeave removes the caller from their team.
func (h *Handler) PostTeamLeave(c *fiber.Ctx) error {
	if err := h.uc.LeaveTeam(c.Context(), middleware.User(c)); err != nil {
		return h.writeError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// GetMyTeam returns the caller's team with members.
func (h *Handler) GetMyTeam(c *fiber.Ctx) error {
	team, err := h.uc.MyTeam(c.Context(), middleware.User(c))
	if err != nil {
		return h.writeError(c, err)
	}
	return c.Status(http.StatusOK).JSON(mapper.ToDTOTeam(*team))
}
