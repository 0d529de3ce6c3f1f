package handlers_fiber

import (
	"errors"
	"net/http"

	"grade-teams/internal/entities"
	"grade-teams/internal/transport/http/dto"

	"github.com/gofiber/fiber/v2"
)

// retryAfterSeconds is advertised with every 503.
const retryAfterSeconds = "1"

func (h *Handler) writeError(c *fiber.Ctx, err error) error {
	status := http.StatusInternalServerError
	code := dto.Internal
	msg := "internal error"

	switch {
	case errors.Is(err, entities.ErrInvalidArgument):
		status = http.StatusBadRequest
		code = dto.InvalidArgument
		msg = err.Error()
	case errors.Is(err, entities.ErrGradeNotFound):
		status = http.StatusNotFound
		code = dto.NotFound
		msg = "grade not found"
	case errors.Is(err, entities.ErrNotFound):
		status = http.StatusNotFound
		code = dto.NotFound
		msg = "team not found"
	case errors.Is(err, entities.ErrNameTaken):
		status = http.StatusConflict
		code = dto.NameTaken
		msg = "team name already taken"
	case errors.Is(err, entities.ErrAlreadyOnTeam):
		status = http.StatusConflict
		code = dto.AlreadyOnTeam
		msg = "user is already on a team"
	case errors.Is(err, entities.ErrNotOnTeam):
		status = http.StatusConflict
		code = dto.NotOnTeam
		msg = "user is not on a team"
	case errors.Is(err, entities.ErrNoData):
		status = http.StatusUnprocessableEntity
		code = dto.NoData
		msg = "no team member has a grade for this course"
	case errors.Is(err, entities.ErrTransientFailure):
		status = http.StatusServiceUnavailable
		code = dto.Unavailable
		msg = "temporarily unavailable, retry later"
		c.Set(fiber.HeaderRetryAfter, retryAfterSeconds)
	}

	if status >= http.StatusInternalServerError {
		h.log.Errorw("request failed", "error", err, "path", c.Path())
	}
	return c.Status(status).JSON(errorResponse(code, msg))
}

func errorResponse(code dto.ErrorCode, msg string) dto.ErrorResponse {
	return dto.ErrorResponse{Error: dto.ErrorBody{Code: code, Message: msg}}
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(http.StatusBadRequest).JSON(errorResponse(dto.InvalidArgument, "invalid body"))
}
