// Package repository contains repository interfaces for persistence layers.
package repository

import (
	"context"

	"grade-teams/internal/entities"
)

// LifecycleInterface describes storage startup/shutdown hooks.
type LifecycleInterface interface {
	OnStart(_ context.Context) error
	OnStop(_ context.Context) error
}

// GradeInterface stores grades keyed by (username, course).
type GradeInterface interface {
	// GetGrade returns entities.ErrGradeNotFound when nothing was logged.
	GetGrade(ctx context.Context, username, course string) (entities.Grade, error)
	// PutGrade upserts the grade atomically for its key.
	PutGrade(ctx context.Context, grade entities.Grade) error
}

// TeamInterface stores teams and memberships.
//
// Every mutation is atomic with respect to the team name and the usernames
// it touches: a membership check followed by a membership write for one
// username is never interleaved by another writer for that username.
type TeamInterface interface {
	FindTeamByName(ctx context.Context, name string) (*entities.Team, error)
	FindTeamOfUser(ctx context.Context, username string) (*entities.Team, error)
	// CreateTeam creates the team with founder as its only member.
	// Fails with ErrNameTaken or ErrAlreadyOnTeam and then changes nothing.
	CreateTeam(ctx context.Context, name, founder string) error
	// AddMember is a no-op when username is already on teamName.
	AddMember(ctx context.Context, teamName, username string) error
	// RemoveMember returns the number of members left on the team.
	RemoveMember(ctx context.Context, teamName, username string) (int, error)
	// DeleteTeam removes the team only while it has no members.
	DeleteTeam(ctx context.Context, name string) (bool, error)
}
