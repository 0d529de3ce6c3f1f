package usecase

import (
	"context"

	"grade-teams/internal/entities"
)

// GradeUsecaseInterface abstracts single-grade operations for delivery layer.
type GradeUsecaseInterface interface {
	GetGrade(ctx context.Context, requestingUser, target, course string) (entities.Grade, error)
	LogGrade(ctx context.Context, requestingUser, course string, score int) error
}

// TeamUsecaseInterface abstracts team membership operations.
type TeamUsecaseInterface interface {
	FormTeam(ctx context.Context, requestingUser, name string) error
	JoinTeam(ctx context.Context, requestingUser, name string) error
	LeaveTeam(ctx context.Context, requestingUser string) error
	MyTeam(ctx context.Context, requestingUser string) (*entities.Team, error)
}

// AggregateUsecaseInterface abstracts statistics over the caller's team.
type AggregateUsecaseInterface interface {
	GetAverageGrade(ctx context.Context, requestingUser, course string) (float64, error)
	GetTopGrade(ctx context.Context, requestingUser, course string) (entities.Grade, error)
}
