// Package repository provides factory for repositories.
package repository

import (
	"context"
	"fmt"

	"grade-teams/config"
	"grade-teams/internal/repository/memory"
	"grade-teams/internal/repository/mongo"
	"grade-teams/internal/repository/postgres"

	"go.uber.org/zap"
)

// Repository aggregates all persistence interfaces.
type Repository interface {
	LifecycleInterface
	GradeInterface
	TeamInterface
}

// New constructs repository backend by name.
func New(ctx context.Context, name string, log *zap.SugaredLogger, cfg *config.Config) (Repository, error) {
	switch name {
	case "memory":
		return memory.New(log), nil
	case "postgres":
		return postgres.New(ctx, log, cfg), nil
	case "mongo":
		return mongo.New(ctx, log, cfg), nil
	default:
		return nil, fmt.Errorf("unknown repo backend: %s", name)
	}
}
