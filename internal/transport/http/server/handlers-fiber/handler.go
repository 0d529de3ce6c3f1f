// Package handlers_fiber wires HTTP delivery components.
package handlers_fiber

import (
	"grade-teams/internal/transport/http/middleware"
	"grade-teams/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler maps each route onto one use case.
type Handler struct {
	log *zap.SugaredLogger
	uc  usecase.InterfaceUsecase
}

// NewHandler constructs an HTTP server with service dependencies.
func NewHandler(log *zap.SugaredLogger, usecase usecase.InterfaceUsecase) *Handler {
	return &Handler{
		log: log.Named("http"),
		uc:  usecase,
	}
}

// RegisterRoutes mounts all routes on router.
func (h *Handler) RegisterRoutes(router fiber.Router) {
	router.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	router.Use(middleware.Identity())
	router.Get("/grades", h.GetGrade)
	router.Post("/grades", h.PostGrade)

	teams := router.Group("/teams")
	teams.Post("/form", h.PostTeamForm)
	teams.Post("/join", h.PostTeamJoin)
	teams.Post("/leave", h.PostTeamLeave)
	teams.Get("/mine", h.GetMyTeam)
	teams.Get("/mine/average", h.GetTeamAverage)
	teams.Get("/mine/top", h.GetTeamTop)
}
