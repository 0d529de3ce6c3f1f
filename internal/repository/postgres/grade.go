package postgres

import (
	"context"
	"errors"

	"grade-teams/internal/entities"

	"github.com/jackc/pgx/v5"
)

const (
	selectGradeQuery = `SELECT score FROM grades WHERE username=$1 AND course=$2`
	upsertGradeQuery = `
INSERT INTO grades(username, course, score)
VALUES ($1, $2, $3)
ON CONFLICT (username, course) DO UPDATE SET score = EXCLUDED.score, updated_at = NOW()
`
)

// GetGrade reads a single grade row.
func (p *Postgres) GetGrade(ctx context.Context, username, course string) (entities.Grade, error) {
	g := entities.Grade{Username: username, Course: course}
	if err := p.db.QueryRow(ctx, selectGradeQuery, username, course).Scan(&g.Score); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entities.Grade{}, entities.ErrGradeNotFound
		}
		p.log.Errorw("failed to get grade", "error", err, "username", username, "course", course)
		return entities.Grade{}, wrap("get grade", err)
	}
	return g, nil
}

// PutGrade upserts a grade in one statement.
func (p *Postgres) PutGrade(ctx context.Context, grade entities.Grade) error {
	if _, err := p.db.Exec(ctx, upsertGradeQuery, grade.Username, grade.Course, grade.Score); err != nil {
		p.log.Errorw("failed to put grade", "error", err, "username", grade.Username, "course", grade.Course)
		return wrap("put grade", err)
	}
	p.log.Debugw("grade stored", "username", grade.Username, "course", grade.Course)
	return nil
}
