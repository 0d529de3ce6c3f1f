// Package domain contains application Usecases orchestrating domain logic by grade.
package domain

import (
	"context"
	"fmt"

	"grade-teams/internal/entities"
)

// GetGrade returns target's grade for course; a blank target means the
// requesting user. Any user may read anyone's grade.
func (u *Usecase) GetGrade(ctx context.Context, requestingUser, target, course string) (entities.Grade, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if err := requireUser(requestingUser); err != nil {
		return entities.Grade{}, err
	}
	if err := requireCourse(course); err != nil {
		return entities.Grade{}, err
	}
	if target == "" {
		target = requestingUser
	}

	g, err := u.grades.GetGrade(ctx, target, course)
	if err != nil {
		return entities.Grade{}, classify(err)
	}
	return g, nil
}

// LogGrade records the requesting user's own score for course, replacing
// any previous one.
func (u *Usecase) LogGrade(ctx context.Context, requestingUser, course string, score int) error {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if err := requireUser(requestingUser); err != nil {
		return err
	}
	if err := requireCourse(course); err != nil {
		return err
	}
	if score < entities.MinScore || score > entities.MaxScore {
		return fmt.Errorf("%w: score %d outside %d..%d",
			entities.ErrInvalidArgument, score, entities.MinScore, entities.MaxScore)
	}

	return classify(u.grades.PutGrade(ctx, entities.Grade{
		Username: requestingUser,
		Course:   course,
		Score:    score,
	}))
}
