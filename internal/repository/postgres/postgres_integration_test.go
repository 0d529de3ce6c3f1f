package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"strconv"
	"sync"
	"testing"
	"time"

	"grade-teams/config"
	"grade-teams/internal/entities"

	_ "github.com/lib/pq"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRepositoryIntegration(t *testing.T) {
	ctx := context.Background()
	repo := startRepo(t)

	_, err := repo.GetGrade(ctx, "alice", "CS101")
	require.ErrorIs(t, err, entities.ErrGradeNotFound)

	require.NoError(t, repo.PutGrade(ctx, entities.Grade{Username: "alice", Course: "CS101", Score: 70}))
	require.NoError(t, repo.PutGrade(ctx, entities.Grade{Username: "alice", Course: "CS101", Score: 85}))
	g, err := repo.GetGrade(ctx, "alice", "CS101")
	require.NoError(t, err)
	require.Equal(t, 85, g.Score)

	require.NoError(t, repo.CreateTeam(ctx, "backend", "alice"))
	require.ErrorIs(t, repo.CreateTeam(ctx, "backend", "bob"), entities.ErrNameTaken)
	require.ErrorIs(t, repo.CreateTeam(ctx, "frontend", "alice"), entities.ErrAlreadyOnTeam)

	_, err = repo.FindTeamByName(ctx, "frontend")
	require.ErrorIs(t, err, entities.ErrTeamNotFound, "failed create must not leave a team behind")

	require.NoError(t, repo.AddMember(ctx, "backend", "bob"))
	require.NoError(t, repo.AddMember(ctx, "backend", "bob"))
	require.ErrorIs(t, repo.AddMember(ctx, "frontend", "carol"), entities.ErrTeamNotFound)

	require.NoError(t, repo.CreateTeam(ctx, "frontend", "carol"))
	require.ErrorIs(t, repo.AddMember(ctx, "frontend", "bob"), entities.ErrAlreadyOnTeam)

	team, err := repo.FindTeamOfUser(ctx, "bob")
	require.NoError(t, err)
	require.Equal(t, &entities.Team{Name: "backend", Members: []string{"alice", "bob"}}, team)

	_, err = repo.FindTeamOfUser(ctx, "dave")
	require.ErrorIs(t, err, entities.ErrTeamNotFound)

	deleted, err := repo.DeleteTeam(ctx, "backend")
	require.NoError(t, err)
	require.False(t, deleted)

	_, err = repo.RemoveMember(ctx, "backend", "carol")
	require.ErrorIs(t, err, entities.ErrNotOnTeam)

	left, err := repo.RemoveMember(ctx, "backend", "alice")
	require.NoError(t, err)
	require.Equal(t, 1, left)
	left, err = repo.RemoveMember(ctx, "backend", "bob")
	require.NoError(t, err)
	require.Equal(t, 0, left)

	empty, err := repo.FindTeamByName(ctx, "backend")
	require.NoError(t, err)
	require.Empty(t, empty.Members)

	deleted, err = repo.DeleteTeam(ctx, "backend")
	require.NoError(t, err)
	require.True(t, deleted)

	require.NoError(t, repo.CreateTeam(ctx, "backend", "bob"))
}

func TestConcurrentCreateTeamIntegration(t *testing.T) {
	ctx := context.Background()
	repo := startRepo(t)

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.CreateTeam(ctx, "X", fmt.Sprintf("user%d", i))
		}(i)
	}
	wg.Wait()

	ok := 0
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		require.ErrorIs(t, err, entities.ErrNameTaken)
	}
	require.Equal(t, 1, ok)

	team, err := repo.FindTeamByName(ctx, "X")
	require.NoError(t, err)
	require.Len(t, team.Members, 1)
}

func TestConcurrentAddMemberIntegration(t *testing.T) {
	ctx := context.Background()
	repo := startRepo(t)

	require.NoError(t, repo.CreateTeam(ctx, "owls", "founder-a"))
	require.NoError(t, repo.CreateTeam(ctx, "hawks", "founder-b"))

	const n = 10
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		user := fmt.Sprintf("u%d", i)
		for _, team := range []string{"owls", "hawks"} {
			wg.Add(1)
			go func(team string) {
				defer wg.Done()
				_ = repo.AddMember(ctx, team, user)
			}(team)
		}
	}
	wg.Wait()

	owls, err := repo.FindTeamByName(ctx, "owls")
	require.NoError(t, err)
	hawks, err := repo.FindTeamByName(ctx, "hawks")
	require.NoError(t, err)
	require.Equal(t, n+2, len(owls.Members)+len(hawks.Members))
	for _, m := range owls.Members {
		require.False(t, hawks.HasMember(m))
	}
}

func startRepo(t *testing.T) *Postgres {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres integration test needs docker")
	}

	ctx := context.Background()
	cfg, cleanup := setupPostgres(t)
	t.Cleanup(cleanup)

	repo := New(ctx, testLogger(t), cfg)
	require.NoError(t, repo.OnStart(ctx))
	t.Cleanup(func() { _ = repo.OnStop(ctx) })
	return repo
}

func setupPostgres(t *testing.T) (*config.Config, func()) {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err)

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_PASSWORD=postgres",
			"POSTGRES_USER=postgres",
			"POSTGRES_DB=grade_teams_db",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
	})
	require.NoError(t, err)

	hostPort := resource.GetPort("5432/tcp")

	port, err := strconv.Atoi(hostPort)
	require.NoError(t, err)
	migrationsDir, err := filepath.Abs(filepath.Join("..", "..", "..", "db", "migrations"))
	require.NoError(t, err)
	require.DirExists(t, migrationsDir)

	cfg := &config.Config{
		Server:  config.ServerConfig{Host: "0.0.0.0", Port: 8080, ShutdownTimeout: 5 * time.Second},
		HTTP:    config.HTTPConfig{RequestTimeout: 5 * time.Second},
		Storage: config.StorageConfig{Backend: "postgres"},
		Postgres: config.PostgresConfig{
			Host:           "localhost",
			Port:           port,
			User:           "postgres",
			Password:       "postgres",
			DBName:         "grade_teams_db",
			SSLMode:        "disable",
			MigrationsDir:  migrationsDir,
			QueryTimeout:   10 * time.Second,
			MigrateTimeout: 20 * time.Second,
			MaxConns:       12,
			MinConns:       1,
		},
	}

	require.NoError(t, pool.Retry(func() error {
		db, err := sql.Open("postgres", cfg.Postgres.DSN())
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		return db.Ping()
	}))

	cleanup := func() {
		_ = pool.Purge(resource)
	}

	return cfg, cleanup
}

func testLogger(t *testing.T) *zap.SugaredLogger {
	t.Helper()

	l, _ := zap.NewDevelopment()
	t.Cleanup(func() { _ = l.Sync() })
	return l.Sugar()
}
