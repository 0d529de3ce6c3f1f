// Package postgres implements the repository against PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"grade-teams/config"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// Postgres wraps a pgx pool and configuration.
type Postgres struct {
	baseCtx context.Context
	log     *zap.SugaredLogger
	db      *pgxpool.Pool
	cfg     config.PostgresConfig
}

// New creates a Postgres repository instance.
func New(ctx context.Context, log *zap.SugaredLogger, cfg *config.Config) *Postgres {
	return &Postgres{
		baseCtx: ctx,
		log:     log.Named("repo.postgres"),
		cfg:     cfg.Postgres,
	}
}

// OnStart opens the pool and brings the schema up to date. The pool is
// only kept once migrations succeeded.
func (p *Postgres) OnStart(_ context.Context) (err error) {
	pool, err := p.openPool()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			pool.Close()
		}
	}()

	version, err := p.migrate()
	if err != nil {
		return err
	}

	p.db = pool
	p.log.Infow("postgres ready", "host", p.cfg.Host, "port", p.cfg.Port, "schema_version", version)
	return nil
}

func (p *Postgres) openPool() (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(p.cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}
	poolCfg.MaxConns = p.cfg.MaxConns
	poolCfg.MinConns = p.cfg.MinConns

	ctx, cancel := context.WithTimeout(p.baseCtx, p.cfg.QueryTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, wrap("ping pool", err)
	}
	return pool, nil
}

// migrate applies goose migrations over a short-lived database/sql handle
// and returns the resulting schema version.
func (p *Postgres) migrate() (int64, error) {
	sqlDB, err := sql.Open("postgres", p.cfg.DSN())
	if err != nil {
		return 0, fmt.Errorf("open sql: %w", err)
	}
	defer func() { _ = sqlDB.Close() }()

	ctx, cancel := context.WithTimeout(p.baseCtx, p.cfg.MigrateTimeout)
	defer cancel()

	if err := goose.UpContext(ctx, sqlDB, p.cfg.MigrationsDir); err != nil {
		return 0, fmt.Errorf("migrate: %w", err)
	}
	version, err := goose.GetDBVersionContext(ctx, sqlDB)
	if err != nil {
		return 0, fmt.Errorf("migrate version: %w", err)
	}
	return version, nil
}

// OnStop closes pool connections.
func (p *Postgres) OnStop(_ context.Context) error {
	if p.db != nil {
		p.db.Close()
	}
	return nil
}
