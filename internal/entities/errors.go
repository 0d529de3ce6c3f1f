// Package entities contains core business entities and errors.
package entities

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument signals failed input validation.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound signals a missing grade or team.
	ErrNotFound = errors.New("not found")
	// ErrGradeNotFound signals no grade logged for a (user, course) pair.
	ErrGradeNotFound = fmt.Errorf("grade %w", ErrNotFound)
	// ErrTeamNotFound signals missing team.
	ErrTeamNotFound = fmt.Errorf("team %w", ErrNotFound)
	// ErrNameTaken signals team name conflict.
	ErrNameTaken = errors.New("team name taken")
	// ErrAlreadyOnTeam signals the user must leave the current team first.
	ErrAlreadyOnTeam = errors.New("already on a team")
	// ErrNotOnTeam signals the user has no team.
	ErrNotOnTeam = errors.New("not on a team")
	// ErrNoData signals aggregation over a team with no scored members.
	ErrNoData = errors.New("no data")
	// ErrTransientFailure signals backing store timeout or unavailability.
	ErrTransientFailure = errors.New("transient failure")
)

// IsRetryable reports whether the caller may retry the same request unchanged.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransientFailure)
}
