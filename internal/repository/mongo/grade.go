package mongo

import (
	"context"
	"errors"

	"grade-teams/internal/entities"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type gradeID struct {
	Username string `bson:"username"`
	Course   string `bson:"course"`
}

type gradeDoc struct {
	ID    gradeID `bson:"_id"`
	Score int     `bson:"score"`
}

// GetGrade reads a single grade document.
func (m *Mongo) GetGrade(ctx context.Context, username, course string) (entities.Grade, error) {
	var doc gradeDoc
	err := m.grades.FindOne(ctx, bson.M{"_id": gradeID{Username: username, Course: course}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return entities.Grade{}, entities.ErrGradeNotFound
		}
		m.log.Errorw("failed to get grade", "error", err, "username", username, "course", course)
		return entities.Grade{}, wrap("get grade", err)
	}
	return entities.Grade{Username: username, Course: course, Score: doc.Score}, nil
}

// PutGrade upserts the grade document.
func (m *Mongo) PutGrade(ctx context.Context, grade entities.Grade) error {
	filter := bson.M{"_id": gradeID{Username: grade.Username, Course: grade.Course}}
	update := bson.M{"$set": bson.M{"score": grade.Score}}
	if _, err := m.grades.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		m.log.Errorw("failed to put grade", "error", err, "username", grade.Username, "course", grade.Course)
		return wrap("put grade", err)
	}
	m.log.Debugw("grade stored", "username", grade.Username, "course", grade.Course)
	return nil
}
