package usecase

import (
	"time"

	"grade-teams/internal/repository"
	"grade-teams/internal/usecase/domain"
)

// InterfaceUsecase aggregates all usecase interfaces.
type InterfaceUsecase interface {
	GradeUsecaseInterface
	TeamUsecaseInterface
	AggregateUsecaseInterface
}

// New constructs a new usecase layer with its dependencies.
func New(grades repository.GradeInterface, teams repository.TeamInterface, timeout time.Duration) InterfaceUsecase {
	return domain.New(grades, teams, timeout)
}
