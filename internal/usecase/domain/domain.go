package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"grade-teams/internal/entities"
	"grade-teams/internal/repository"
)

// Usecase struct implements all usecase interfaces. It keeps no state of its
// own; the repositories are the only shared mutable state.
type Usecase struct {
	grades  repository.GradeInterface
	teams   repository.TeamInterface
	timeout time.Duration
}

// New constructs a new usecase layer with its dependencies.
func New(
	grades repository.GradeInterface,
	teams repository.TeamInterface,
	timeout time.Duration,
) *Usecase {
	return &Usecase{
		grades:  grades,
		teams:   teams,
		timeout: timeout,
	}
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// classify turns an expired call deadline into ErrTransientFailure; every
// other error is returned as is.
func classify(err error) error {
	if err == nil || errors.Is(err, entities.ErrTransientFailure) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", entities.ErrTransientFailure, err)
	}
	return err
}

func requireUser(user string) error {
	if strings.TrimSpace(user) == "" {
		return fmt.Errorf("%w: requesting user is required", entities.ErrInvalidArgument)
	}
	return nil
}

func requireCourse(course string) error {
	if strings.TrimSpace(course) == "" {
		return fmt.Errorf("%w: course is required", entities.ErrInvalidArgument)
	}
	return nil
}
