package postgres

import (
	"context"
	"errors"
	"fmt"

	"grade-teams/internal/entities"

	"github.com/jackc/pgx/v5"
)

const (
	insertTeamQuery        = `INSERT INTO teams(name) VALUES($1)`
	insertMemberQuery      = `INSERT INTO team_members(username, team_name) VALUES ($1, $2)`
	insertMemberIfNewQuery = `INSERT INTO team_members(username, team_name) VALUES ($1, $2) ON CONFLICT (username) DO NOTHING`
	selectTeamOfUserQuery  = `SELECT team_name FROM team_members WHERE username=$1`
	lockTeamQuery          = `SELECT name FROM teams WHERE name=$1 FOR UPDATE`
	deleteMemberQuery      = `DELETE FROM team_members WHERE username=$1 AND team_name=$2`
	countMembersQuery      = `SELECT COUNT(*) FROM team_members WHERE team_name=$1`
	deleteTeamQuery        = `DELETE FROM teams WHERE name=$1`
	selectTeamByNameQuery  = `
SELECT t.name, m.username
FROM teams t
LEFT JOIN team_members m ON m.team_name = t.name
WHERE t.name = $1
ORDER BY m.username COLLATE "C"`
	selectTeamByMemberQuery = `
SELECT t.name, m.username
FROM teams t
LEFT JOIN team_members m ON m.team_name = t.name
WHERE t.name = (SELECT team_name FROM team_members WHERE username = $1)
ORDER BY m.username COLLATE "C"`
)

// FindTeamByName fetches team with members by name.
func (p *Postgres) FindTeamByName(ctx context.Context, name string) (*entities.Team, error) {
	return p.queryTeam(ctx, selectTeamByNameQuery, name)
}

// FindTeamOfUser fetches the team username belongs to.
func (p *Postgres) FindTeamOfUser(ctx context.Context, username string) (*entities.Team, error) {
	return p.queryTeam(ctx, selectTeamByMemberQuery, username)
}

// CreateTeam inserts a team together with its founder's membership.
func (p *Postgres) CreateTeam(ctx context.Context, name, founder string) error {
	tx, err := p.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return wrap("begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, insertTeamQuery, name); err != nil {
		if isUniqueViolation(err) {
			return entities.ErrNameTaken
		}
		return wrap("insert team", err)
	}
	if _, err := tx.Exec(ctx, insertMemberQuery, founder, name); err != nil {
		if isUniqueViolation(err) {
			return entities.ErrAlreadyOnTeam
		}
		return wrap("insert founder", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return wrap("commit", err)
	}

	p.log.Infow("team created", "team", name, "founder", founder)
	return nil
}

// AddMember inserts a membership while holding the team row lock.
func (p *Postgres) AddMember(ctx context.Context, teamName, username string) error {
	tx, err := p.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return wrap("begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	found, err := lockTeam(ctx, tx, teamName)
	if err != nil {
		return err
	}
	if !found {
		return entities.ErrTeamNotFound
	}

	tag, err := tx.Exec(ctx, insertMemberIfNewQuery, username, teamName)
	if err != nil {
		return wrap("insert member", err)
	}
	if tag.RowsAffected() == 0 {
		var current string
		if err := tx.QueryRow(ctx, selectTeamOfUserQuery, username).Scan(&current); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%w: membership of %s changed concurrently", entities.ErrTransientFailure, username)
			}
			return wrap("current team", err)
		}
		if current != teamName {
			return entities.ErrAlreadyOnTeam
		}
		return nil
	}

	if err := tx.Commit(ctx); err != nil {
		return wrap("commit", err)
	}

	p.log.Infow("member added", "team", teamName, "username", username)
	return nil
}

// RemoveMember deletes a membership and counts what is left under the team row lock.
func (p *Postgres) RemoveMember(ctx context.Context, teamName, username string) (int, error) {
	tx, err := p.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, wrap("begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	found, err := lockTeam(ctx, tx, teamName)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, entities.ErrNotOnTeam
	}

	tag, err := tx.Exec(ctx, deleteMemberQuery, username, teamName)
	if err != nil {
		return 0, wrap("delete member", err)
	}
	if tag.RowsAffected() == 0 {
		return 0, entities.ErrNotOnTeam
	}

	var remaining int
	if err := tx.QueryRow(ctx, countMembersQuery, teamName).Scan(&remaining); err != nil {
		return 0, wrap("count members", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, wrap("commit", err)
	}

	p.log.Infow("member removed", "team", teamName, "username", username, "remaining", remaining)
	return remaining, nil
}

// DeleteTeam removes the team if no member rows reference it.
func (p *Postgres) DeleteTeam(ctx context.Context, name string) (bool, error) {
	tx, err := p.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return false, wrap("begin", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	found, err := lockTeam(ctx, tx, name)
	if err != nil || !found {
		return false, err
	}

	var members int
	if err := tx.QueryRow(ctx, countMembersQuery, name).Scan(&members); err != nil {
		return false, wrap("count members", err)
	}
	if members > 0 {
		return false, nil
	}

	if _, err := tx.Exec(ctx, deleteTeamQuery, name); err != nil {
		return false, wrap("delete team", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return false, wrap("commit", err)
	}

	p.log.Infow("team deleted", "team", name)
	return true, nil
}

func lockTeam(ctx context.Context, tx pgx.Tx, name string) (bool, error) {
	var locked string
	if err := tx.QueryRow(ctx, lockTeamQuery, name).Scan(&locked); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, wrap("lock team", err)
	}
	return true, nil
}

// queryTeam reads a team and its members in a single statement so the
// member list is taken from one snapshot.
func (p *Postgres) queryTeam(ctx context.Context, query, arg string) (*entities.Team, error) {
	rows, err := p.db.Query(ctx, query, arg)
	if err != nil {
		p.log.Errorw("failed to get team", "error", err, "arg", arg)
		return nil, wrap("get team", err)
	}
	defer rows.Close()

	var team *entities.Team
	for rows.Next() {
		var name string
		var member *string
		if err := rows.Scan(&name, &member); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		if team == nil {
			team = &entities.Team{Name: name, Members: make([]string, 0)}
		}
		if member != nil {
			team.Members = append(team.Members, *member)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate team", err)
	}

	if team == nil {
		return nil, entities.ErrTeamNotFound
	}
	return team, nil
}
