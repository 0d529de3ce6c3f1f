// Package memory implements the repository with in-process maps.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"grade-teams/internal/entities"

	"go.uber.org/zap"
)

type gradeKey struct {
	username string
	course   string
}

// Memory keeps grades and teams in maps. Team mutations are serialized per
// team name and per username by keys: a check and the write that follows it
// run under the key locks only. mu is held just long enough for each map
// read or write, so work on unrelated teams and users proceeds in parallel.
type Memory struct {
	log  *zap.SugaredLogger
	keys *keyLocks

	mu       sync.RWMutex
	grades   map[gradeKey]int
	teams    map[string]map[string]struct{}
	memberOf map[string]string
}

// New creates an empty in-memory repository.
func New(log *zap.SugaredLogger) *Memory {
	return &Memory{
		log:      log.Named("repo.memory"),
		keys:     newKeyLocks(),
		grades:   make(map[gradeKey]int),
		teams:    make(map[string]map[string]struct{}),
		memberOf: make(map[string]string),
	}
}

// OnStart is a no-op.
func (m *Memory) OnStart(_ context.Context) error {
	m.log.Infow("memory store ready")
	return nil
}

// OnStop is a no-op.
func (m *Memory) OnStop(_ context.Context) error { return nil }

// GetGrade returns the stored grade for the pair.
func (m *Memory) GetGrade(ctx context.Context, username, course string) (entities.Grade, error) {
	if err := ctx.Err(); err != nil {
		return entities.Grade{}, transient(err)
	}

	m.mu.RLock()
	score, ok := m.grades[gradeKey{username: username, course: course}]
	m.mu.RUnlock()
	if !ok {
		return entities.Grade{}, entities.ErrGradeNotFound
	}
	return entities.Grade{Username: username, Course: course, Score: score}, nil
}

// PutGrade upserts the grade.
func (m *Memory) PutGrade(ctx context.Context, grade entities.Grade) error {
	if err := ctx.Err(); err != nil {
		return transient(err)
	}

	m.mu.Lock()
	m.grades[gradeKey{username: grade.Username, course: grade.Course}] = grade.Score
	m.mu.Unlock()

	m.log.Debugw("grade stored", "username", grade.Username, "course", grade.Course)
	return nil
}

// FindTeamByName returns the team with a sorted member list.
func (m *Memory) FindTeamByName(ctx context.Context, name string) (*entities.Team, error) {
	if err := ctx.Err(); err != nil {
		return nil, transient(err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot(name)
}

// FindTeamOfUser returns the team username belongs to.
func (m *Memory) FindTeamOfUser(ctx context.Context, username string) (*entities.Team, error) {
	if err := ctx.Err(); err != nil {
		return nil, transient(err)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	name, ok := m.memberOf[username]
	if !ok {
		return nil, entities.ErrTeamNotFound
	}
	return m.snapshot(name)
}

// CreateTeam creates the team with founder as the only member.
func (m *Memory) CreateTeam(ctx context.Context, name, founder string) error {
	release, err := m.keys.acquire(ctx, teamKey(name), userKey(founder))
	if err != nil {
		return transient(err)
	}
	defer release()

	m.mu.RLock()
	_, taken := m.teams[name]
	_, affiliated := m.memberOf[founder]
	m.mu.RUnlock()
	if taken {
		return entities.ErrNameTaken
	}
	if affiliated {
		return entities.ErrAlreadyOnTeam
	}

	m.mu.Lock()
	m.teams[name] = map[string]struct{}{founder: {}}
	m.memberOf[founder] = name
	m.mu.Unlock()

	m.log.Infow("team created", "team", name, "founder", founder)
	return nil
}

// AddMember puts username on the team.
func (m *Memory) AddMember(ctx context.Context, teamName, username string) error {
	release, err := m.keys.acquire(ctx, teamKey(teamName), userKey(username))
	if err != nil {
		return transient(err)
	}
	defer release()

	m.mu.RLock()
	members, exists := m.teams[teamName]
	current, affiliated := m.memberOf[username]
	m.mu.RUnlock()
	if !exists {
		return entities.ErrTeamNotFound
	}
	if affiliated {
		if current == teamName {
			return nil
		}
		return entities.ErrAlreadyOnTeam
	}

	m.mu.Lock()
	members[username] = struct{}{}
	m.memberOf[username] = teamName
	m.mu.Unlock()

	m.log.Infow("member added", "team", teamName, "username", username)
	return nil
}

// RemoveMember takes username off the team and returns how many remain.
func (m *Memory) RemoveMember(ctx context.Context, teamName, username string) (int, error) {
	release, err := m.keys.acquire(ctx, teamKey(teamName), userKey(username))
	if err != nil {
		return 0, transient(err)
	}
	defer release()

	m.mu.RLock()
	current, affiliated := m.memberOf[username]
	m.mu.RUnlock()
	if !affiliated || current != teamName {
		return 0, entities.ErrNotOnTeam
	}

	m.mu.Lock()
	members := m.teams[teamName]
	delete(members, username)
	delete(m.memberOf, username)
	remaining := len(members)
	m.mu.Unlock()

	m.log.Infow("member removed", "team", teamName, "username", username, "remaining", remaining)
	return remaining, nil
}

// DeleteTeam drops the team if it is empty.
func (m *Memory) DeleteTeam(ctx context.Context, name string) (bool, error) {
	release, err := m.keys.acquire(ctx, teamKey(name))
	if err != nil {
		return false, transient(err)
	}
	defer release()

	m.mu.Lock()
	members, ok := m.teams[name]
	empty := ok && len(members) == 0
	if empty {
		delete(m.teams, name)
	}
	m.mu.Unlock()
	if !empty {
		return false, nil
	}

	m.log.Infow("team deleted", "team", name)
	return true, nil
}

// snapshot copies the team out; m.mu must be held.
func (m *Memory) snapshot(name string) (*entities.Team, error) {
	members, ok := m.teams[name]
	if !ok {
		return nil, entities.ErrTeamNotFound
	}
	list := make([]string, 0, len(members))
	for u := range members {
		list = append(list, u)
	}
	slices.Sort(list)
	return &entities.Team{Name: name, Members: list}, nil
}

func transient(err error) error {
	return fmt.Errorf("%w: %v", entities.ErrTransientFailure, err)
}
