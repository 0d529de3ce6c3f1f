// Package mongo implements the repository against MongoDB.
//
// Teams live in the teams collection keyed by name with an embedded member
// list; memberships are keyed by username so the unique _id index enforces
// one team per user. Every write is a single-document operation.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"grade-teams/config"
	"grade-teams/internal/entities"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// undoTimeout bounds compensating writes issued after a failed step.
const undoTimeout = 5 * time.Second

const (
	gradesCollection      = "grades"
	teamsCollection       = "teams"
	membershipsCollection = "memberships"
)

// Mongo wraps a client and the collections it uses.
type Mongo struct {
	baseCtx context.Context
	log     *zap.SugaredLogger
	cfg     config.MongoConfig

	client      *mongo.Client
	grades      *mongo.Collection
	teams       *mongo.Collection
	memberships *mongo.Collection
}

// New creates a Mongo repository instance.
func New(ctx context.Context, log *zap.SugaredLogger, cfg *config.Config) *Mongo {
	return &Mongo{
		baseCtx: ctx,
		log:     log.Named("repo.mongo"),
		cfg:     cfg.Mongo,
	}
}

// OnStart connects and pings the primary.
func (m *Mongo) OnStart(_ context.Context) error {
	opts := options.Client().ApplyURI(m.cfg.URI)
	if m.cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(m.cfg.MaxPoolSize)
	}
	if m.cfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(m.cfg.ConnectTimeout)
		opts.SetServerSelectionTimeout(m.cfg.ConnectTimeout)
	}

	client, err := mongo.Connect(m.baseCtx, opts)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(m.baseCtx, m.connectTimeout())
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(m.baseCtx)
		return fmt.Errorf("ping: %w", err)
	}

	db := client.Database(m.cfg.Database)
	m.client = client
	m.grades = db.Collection(gradesCollection)
	m.teams = db.Collection(teamsCollection)
	m.memberships = db.Collection(membershipsCollection)

	m.log.Infow("mongo ready", "database", m.cfg.Database)
	return nil
}

// OnStop disconnects the client.
func (m *Mongo) OnStop(ctx context.Context) error {
	if m.client == nil {
		return nil
	}
	return m.client.Disconnect(ctx)
}

func (m *Mongo) connectTimeout() time.Duration {
	if m.cfg.ConnectTimeout > 0 {
		return m.cfg.ConnectTimeout
	}
	return 10 * time.Second
}

// undoContext detaches from ctx so compensation still runs when the
// caller's deadline is what made the forward step fail.
func (m *Mongo) undoContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), undoTimeout)
}

// wrap annotates err and marks timeouts and network failures as transient.
func wrap(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) ||
		mongo.IsTimeout(err) || mongo.IsNetworkError(err) ||
		errors.Is(err, mongo.ErrClientDisconnected) {
		return fmt.Errorf("%w: %s: %v", entities.ErrTransientFailure, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
