package domain

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"grade-teams/internal/entities"
	"grade-teams/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newInMemory(t *testing.T) (*Usecase, *memory.Memory) {
	t.Helper()

	repo := memory.New(zap.NewNop().Sugar())
	return New(repo, repo, time.Second), repo
}

func logGrades(t *testing.T, uc *Usecase, course string, scores map[string]int) {
	t.Helper()
	for user, score := range scores {
		require.NoError(t, uc.LogGrade(context.Background(), user, course, score))
	}
}

func formTeam(t *testing.T, uc *Usecase, name string, members ...string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, uc.FormTeam(ctx, members[0], name))
	for _, m := range members[1:] {
		require.NoError(t, uc.JoinTeam(ctx, m, name))
	}
}

func TestNoDoubleMembershipUnderChurn(t *testing.T) {
	uc, repo := newInMemory(t)
	ctx := context.Background()

	users := make([]string, 12)
	for i := range users {
		users[i] = fmt.Sprintf("user%02d", i)
	}
	teams := []string{"owls", "hawks", "crows"}

	var wg sync.WaitGroup
	for _, user := range users {
		wg.Add(1)
		go func(user string, seed int64) {
			defer wg.Done()
			rnd := rand.New(rand.NewSource(seed))
			for i := 0; i < 200; i++ {
				name := teams[rnd.Intn(len(teams))]
				switch rnd.Intn(3) {
				case 0:
					_ = uc.FormTeam(ctx, user, name)
				case 1:
					_ = uc.JoinTeam(ctx, user, name)
				default:
					_ = uc.LeaveTeam(ctx, user)
				}
			}
		}(user, int64(len(user))+time.Now().UnixNano())
	}
	wg.Wait()

	seen := make(map[string]string)
	for _, name := range teams {
		team, err := repo.FindTeamByName(ctx, name)
		if err != nil {
			require.ErrorIs(t, err, entities.ErrTeamNotFound)
			continue
		}
		for _, m := range team.Members {
			prev, dup := seen[m]
			require.False(t, dup, "%s is on %s and %s", m, prev, name)
			seen[m] = name
		}
	}

	for _, user := range users {
		team, err := repo.FindTeamOfUser(ctx, user)
		if err != nil {
			_, listed := seen[user]
			assert.False(t, listed, "%s listed on a team it does not belong to", user)
			continue
		}
		assert.Equal(t, seen[user], team.Name)
	}
}

func TestConcurrentFormTeamSameName(t *testing.T) {
	for round := 0; round < 50; round++ {
		uc, _ := newInMemory(t)
		ctx := context.Background()

		var wg sync.WaitGroup
		errs := make([]error, 2)
		for i, user := range []string{"alice", "bob"} {
			wg.Add(1)
			go func(i int, user string) {
				defer wg.Done()
				errs[i] = uc.FormTeam(ctx, user, "X")
			}(i, user)
		}
		wg.Wait()

		var ok, taken int
		for _, err := range errs {
			if err == nil {
				ok++
				continue
			}
			require.ErrorIs(t, err, entities.ErrNameTaken)
			taken++
		}
		require.Equal(t, 1, ok)
		require.Equal(t, 1, taken)
	}
}

func TestConcurrentJoinAndLeaveNoLostUpdate(t *testing.T) {
	uc, repo := newInMemory(t)
	ctx := context.Background()

	formTeam(t, uc, "owls", "founder", "leaver0", "leaver1", "leaver2")

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, uc.JoinTeam(ctx, fmt.Sprintf("joiner%d", i), "owls"))
		}(i)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, uc.LeaveTeam(ctx, fmt.Sprintf("leaver%d", i)))
		}(i)
	}
	wg.Wait()

	team, err := repo.FindTeamByName(ctx, "owls")
	require.NoError(t, err)
	assert.Equal(t, []string{"founder", "joiner0", "joiner1", "joiner2"}, team.Members)
}

func TestLastMemberDeletesTeam(t *testing.T) {
	uc, repo := newInMemory(t)
	ctx := context.Background()

	require.NoError(t, uc.FormTeam(ctx, "a", "T"))
	require.NoError(t, uc.LeaveTeam(ctx, "a"))

	_, err := repo.FindTeamByName(ctx, "T")
	require.ErrorIs(t, err, entities.ErrTeamNotFound)

	require.NoError(t, uc.FormTeam(ctx, "z", "T"))
	require.ErrorIs(t, uc.LeaveTeam(ctx, "a"), entities.ErrNotOnTeam)
}

func TestStateMachine(t *testing.T) {
	uc, _ := newInMemory(t)
	ctx := context.Background()

	require.ErrorIs(t, uc.JoinTeam(ctx, "alice", "ghosts"), entities.ErrTeamNotFound)
	require.NoError(t, uc.FormTeam(ctx, "alice", "owls"))
	require.ErrorIs(t, uc.FormTeam(ctx, "alice", "hawks"), entities.ErrAlreadyOnTeam)
	require.ErrorIs(t, uc.JoinTeam(ctx, "alice", "owls"), entities.ErrAlreadyOnTeam)
	require.ErrorIs(t, uc.FormTeam(ctx, "bob", "owls"), entities.ErrNameTaken)
	require.NoError(t, uc.FormTeam(ctx, "bob", "Owls"), "names are case-sensitive")

	team, err := uc.MyTeam(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, team.Members)

	require.NoError(t, uc.LeaveTeam(ctx, "bob"))
	require.NoError(t, uc.JoinTeam(ctx, "bob", "owls"))

	team, err = uc.MyTeam(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, &entities.Team{Name: "owls", Members: []string{"alice", "bob"}}, team)
}

func TestGradeOverwrite(t *testing.T) {
	uc, _ := newInMemory(t)
	ctx := context.Background()

	require.NoError(t, uc.LogGrade(ctx, "u", "CS101", 70))
	require.NoError(t, uc.LogGrade(ctx, "u", "CS101", 85))

	g, err := uc.GetGrade(ctx, "u", "", "CS101")
	require.NoError(t, err)
	assert.Equal(t, 85, g.Score)

	g, err = uc.GetGrade(ctx, "someone-else", "u", "CS101")
	require.NoError(t, err)
	assert.Equal(t, 85, g.Score)

	_, err = uc.GetGrade(ctx, "u", "", "CS102")
	require.ErrorIs(t, err, entities.ErrNotFound)
}

func TestAverageExcludesUnscoredMembers(t *testing.T) {
	uc, _ := newInMemory(t)
	ctx := context.Background()

	formTeam(t, uc, "owls", "a", "b", "c")
	logGrades(t, uc, "CS101", map[string]int{"a": 90, "b": 80})
	logGrades(t, uc, "CS102", map[string]int{"c": 10})

	for _, caller := range []string{"a", "b", "c"} {
		avg, err := uc.GetAverageGrade(ctx, caller, "CS101")
		require.NoError(t, err)
		assert.InDelta(t, 85.0, avg, 1e-9)
	}
}

func TestAggregationWithoutData(t *testing.T) {
	uc, _ := newInMemory(t)
	ctx := context.Background()

	formTeam(t, uc, "owls", "a", "b")
	logGrades(t, uc, "CS102", map[string]int{"a": 50})

	_, err := uc.GetAverageGrade(ctx, "a", "CS101")
	require.ErrorIs(t, err, entities.ErrNoData)
	_, err = uc.GetTopGrade(ctx, "b", "CS101")
	require.ErrorIs(t, err, entities.ErrNoData)
}

func TestTopGradeTieBreak(t *testing.T) {
	uc, _ := newInMemory(t)
	ctx := context.Background()

	formTeam(t, uc, "owls", "bob", "alice", "carol")
	logGrades(t, uc, "CS101", map[string]int{"bob": 90, "alice": 90, "carol": 40})

	top, err := uc.GetTopGrade(ctx, "carol", "CS101")
	require.NoError(t, err)
	assert.Equal(t, entities.Grade{Username: "alice", Course: "CS101", Score: 90}, top)

	require.NoError(t, uc.LogGrade(ctx, "carol", "CS101", 95))
	top, err = uc.GetTopGrade(ctx, "alice", "CS101")
	require.NoError(t, err)
	assert.Equal(t, "carol", top.Username)
}

func TestUnaffiliatedAggregation(t *testing.T) {
	uc, _ := newInMemory(t)
	ctx := context.Background()

	require.NoError(t, uc.LogGrade(ctx, "loner", "CS101", 99))

	_, err := uc.GetAverageGrade(ctx, "loner", "CS101")
	require.ErrorIs(t, err, entities.ErrNotOnTeam)
	_, err = uc.GetTopGrade(ctx, "loner", "CS101")
	require.ErrorIs(t, err, entities.ErrNotOnTeam)
}

func TestExpiredDeadlineSurfacesAsTransient(t *testing.T) {
	uc, _ := newInMemory(t)
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	require.ErrorIs(t, uc.FormTeam(ctx, "alice", "owls"), entities.ErrTransientFailure)
	_, err := uc.GetTopGrade(ctx, "alice", "CS101")
	require.ErrorIs(t, err, entities.ErrTransientFailure)
}
