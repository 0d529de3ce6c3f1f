// Package domain contains application Usecases orchestrating domain logic by team statistics.
package domain

import (
	"context"
	"errors"
	"fmt"

	"grade-teams/internal/entities"
)

// GetAverageGrade returns the mean score for course over the members of the
// requesting user's team that have logged one.
func (u *Usecase) GetAverageGrade(ctx context.Context, requestingUser, course string) (float64, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	scored, err := u.teamGrades(ctx, requestingUser, course)
	if err != nil {
		return 0, err
	}

	sum := 0
	for _, g := range scored {
		sum += g.Score
	}
	return float64(sum) / float64(len(scored)), nil
}

// GetTopGrade returns the highest grade for course on the requesting user's
// team. Ties go to the lexicographically smallest username.
func (u *Usecase) GetTopGrade(ctx context.Context, requestingUser, course string) (entities.Grade, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	scored, err := u.teamGrades(ctx, requestingUser, course)
	if err != nil {
		return entities.Grade{}, err
	}

	top := scored[0]
	for _, g := range scored[1:] {
		if g.Score > top.Score || (g.Score == top.Score && g.Username < top.Username) {
			top = g
		}
	}
	return top, nil
}

// teamGrades collects the course grades of every scored team member. It never
// returns an empty slice without an error.
func (u *Usecase) teamGrades(ctx context.Context, requestingUser, course string) ([]entities.Grade, error) {
	if err := requireUser(requestingUser); err != nil {
		return nil, err
	}
	if err := requireCourse(course); err != nil {
		return nil, err
	}

	team, err := u.teamOf(ctx, requestingUser)
	if err != nil {
		return nil, err
	}

	scored := make([]entities.Grade, 0, len(team.Members))
	for _, member := range team.Members {
		g, err := u.grades.GetGrade(ctx, member, course)
		if errors.Is(err, entities.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, classify(err)
		}
		scored = append(scored, g)
	}

	if len(scored) == 0 {
		return nil, fmt.Errorf("%w: no member of %q has a grade for %s", entities.ErrNoData, team.Name, course)
	}
	return scored, nil
}
