// Package domain contains application Usecases orchestrating domain logic by team.
package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"grade-teams/internal/entities"
)

// FormTeam creates team name with the requesting user as its only member.
func (u *Usecase) FormTeam(ctx context.Context, requestingUser, name string) error {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if err := requireUser(requestingUser); err != nil {
		return err
	}
	if err := requireTeamName(name); err != nil {
		return err
	}
	if err := u.ensureUnaffiliated(ctx, requestingUser); err != nil {
		return err
	}

	err := u.teams.CreateTeam(ctx, name, requestingUser)
	if errors.Is(err, entities.ErrNameTaken) {
		reclaimed, rerr := u.reclaimEmptyTeam(ctx, name)
		if rerr != nil {
			return classify(rerr)
		}
		if reclaimed {
			err = u.teams.CreateTeam(ctx, name, requestingUser)
		}
	}
	return classify(err)
}

// JoinTeam adds the requesting user to an existing team.
func (u *Usecase) JoinTeam(ctx context.Context, requestingUser, name string) error {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if err := requireUser(requestingUser); err != nil {
		return err
	}
	if err := requireTeamName(name); err != nil {
		return err
	}
	if err := u.ensureUnaffiliated(ctx, requestingUser); err != nil {
		return err
	}

	return classify(u.teams.AddMember(ctx, name, requestingUser))
}

// LeaveTeam takes the requesting user off their team. The team is deleted
// once its last member is gone.
func (u *Usecase) LeaveTeam(ctx context.Context, requestingUser string) error {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if err := requireUser(requestingUser); err != nil {
		return err
	}

	team, err := u.teamOf(ctx, requestingUser)
	if err != nil {
		return err
	}

	remaining, err := u.teams.RemoveMember(ctx, team.Name, requestingUser)
	if err != nil {
		return classify(err)
	}
	if remaining > 0 {
		return nil
	}

	// The membership change is already durable here; an empty team left
	// behind by a failure below is reclaimed by the next FormTeam of its name.
	if _, err := u.teams.DeleteTeam(ctx, team.Name); err != nil {
		return classify(fmt.Errorf("delete empty team %q: %w", team.Name, err))
	}
	return nil
}

// MyTeam returns the requesting user's team.
func (u *Usecase) MyTeam(ctx context.Context, requestingUser string) (*entities.Team, error) {
	ctx, cancel := withTimeout(ctx, u.timeout)
	defer cancel()

	if err := requireUser(requestingUser); err != nil {
		return nil, err
	}
	return u.teamOf(ctx, requestingUser)
}

// teamOf resolves the user's team, reporting ErrNotOnTeam when there is none.
func (u *Usecase) teamOf(ctx context.Context, username string) (*entities.Team, error) {
	team, err := u.teams.FindTeamOfUser(ctx, username)
	if errors.Is(err, entities.ErrNotFound) {
		return nil, entities.ErrNotOnTeam
	}
	if err != nil {
		return nil, classify(err)
	}
	return team, nil
}

func (u *Usecase) ensureUnaffiliated(ctx context.Context, username string) error {
	team, err := u.teams.FindTeamOfUser(ctx, username)
	switch {
	case errors.Is(err, entities.ErrNotFound):
		return nil
	case err != nil:
		return classify(err)
	default:
		return fmt.Errorf("%w: leave team %q first", entities.ErrAlreadyOnTeam, team.Name)
	}
}

// reclaimEmptyTeam deletes team name if it exists without members.
func (u *Usecase) reclaimEmptyTeam(ctx context.Context, name string) (bool, error) {
	team, err := u.teams.FindTeamByName(ctx, name)
	if errors.Is(err, entities.ErrNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	if len(team.Members) > 0 {
		return false, nil
	}
	if _, err := u.teams.DeleteTeam(ctx, name); err != nil {
		return false, err
	}
	return true, nil
}

func requireTeamName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: team name is required", entities.ErrInvalidArgument)
	}
	return nil
}
