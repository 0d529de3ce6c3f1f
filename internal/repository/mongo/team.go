package mongo

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"grade-teams/internal/entities"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type teamDoc struct {
	Name    string   `bson:"_id"`
	Members []string `bson:"members"`
}

type membershipDoc struct {
	Username string `bson:"_id"`
	Team     string `bson:"team"`
}

// FindTeamByName fetches the team document.
func (m *Mongo) FindTeamByName(ctx context.Context, name string) (*entities.Team, error) {
	var doc teamDoc
	if err := m.teams.FindOne(ctx, bson.M{"_id": name}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, entities.ErrTeamNotFound
		}
		m.log.Errorw("failed to get team", "error", err, "team", name)
		return nil, wrap("get team", err)
	}
	return toEntity(doc), nil
}

// FindTeamOfUser resolves the membership and then the team.
func (m *Mongo) FindTeamOfUser(ctx context.Context, username string) (*entities.Team, error) {
	teamName, err := m.membershipOf(ctx, username)
	if err != nil {
		return nil, err
	}
	return m.FindTeamByName(ctx, teamName)
}

// CreateTeam inserts the team document, then the founder's membership. If
// the founder turns out to be taken, the founder is pulled back out and the
// team is dropped unless somebody joined in between.
func (m *Mongo) CreateTeam(ctx context.Context, name, founder string) error {
	if _, err := m.teams.InsertOne(ctx, teamDoc{Name: name, Members: []string{founder}}); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return entities.ErrNameTaken
		}
		return wrap("insert team", err)
	}

	err := m.claimMembership(ctx, founder, name)
	if err == nil {
		m.log.Infow("team created", "team", name, "founder", founder)
		return nil
	}

	undoCtx, cancel := m.undoContext(ctx)
	defer cancel()
	if _, undoErr := m.teams.UpdateOne(undoCtx, bson.M{"_id": name}, bson.M{"$pull": bson.M{"members": founder}}); undoErr != nil {
		m.log.Errorw("failed to undo team create", "error", undoErr, "team", name)
	} else if _, delErr := m.DeleteTeam(undoCtx, name); delErr != nil {
		m.log.Errorw("failed to drop team after failed create", "error", delErr, "team", name)
	}
	if mongo.IsDuplicateKeyError(err) {
		return entities.ErrAlreadyOnTeam
	}
	return wrap("insert founder", err)
}

// AddMember claims the membership and then adds username to the team. A
// membership already pointing at teamName is completed rather than skipped,
// so retrying after a partial failure converges.
func (m *Mongo) AddMember(ctx context.Context, teamName, username string) error {
	if err := m.claimMembership(ctx, username, teamName); err != nil {
		if !mongo.IsDuplicateKeyError(err) {
			return wrap("insert membership", err)
		}
		current, err := m.membershipOf(ctx, username)
		if errors.Is(err, entities.ErrTeamNotFound) {
			return fmt.Errorf("%w: membership of %s changed concurrently", entities.ErrTransientFailure, username)
		}
		if err != nil {
			return err
		}
		if current != teamName {
			return entities.ErrAlreadyOnTeam
		}
	}

	res, err := m.teams.UpdateOne(ctx, bson.M{"_id": teamName}, bson.M{"$addToSet": bson.M{"members": username}})
	if err != nil || res.MatchedCount == 0 {
		undoCtx, cancel := m.undoContext(ctx)
		defer cancel()
		if _, undoErr := m.memberships.DeleteOne(undoCtx, bson.M{"_id": username, "team": teamName}); undoErr != nil {
			m.log.Errorw("failed to undo membership", "error", undoErr, "team", teamName, "username", username)
		}
		if err != nil {
			return wrap("add member", err)
		}
		return entities.ErrTeamNotFound
	}

	if res.ModifiedCount > 0 {
		m.log.Infow("member added", "team", teamName, "username", username)
	}
	return nil
}

// RemoveMember pulls username from the team, then drops the membership,
// returning how many members the team document still lists. The membership
// goes last so a failed call can be retried: the user still resolves to the
// team and the second $pull is a no-op.
func (m *Mongo) RemoveMember(ctx context.Context, teamName, username string) (int, error) {
	current, err := m.membershipOf(ctx, username)
	if errors.Is(err, entities.ErrTeamNotFound) {
		return 0, entities.ErrNotOnTeam
	}
	if err != nil {
		return 0, err
	}
	if current != teamName {
		return 0, entities.ErrNotOnTeam
	}

	remaining := 0
	var doc teamDoc
	err = m.teams.FindOneAndUpdate(ctx,
		bson.M{"_id": teamName},
		bson.M{"$pull": bson.M{"members": username}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	switch {
	case err == nil:
		remaining = len(doc.Members)
	case !errors.Is(err, mongo.ErrNoDocuments):
		return 0, wrap("pull member", err)
	}

	res, err := m.memberships.DeleteOne(ctx, bson.M{"_id": username, "team": teamName})
	if err != nil {
		return 0, wrap("delete membership", err)
	}
	if res.DeletedCount == 0 {
		return 0, entities.ErrNotOnTeam
	}

	m.log.Infow("member removed", "team", teamName, "username", username, "remaining", remaining)
	return remaining, nil
}

// DeleteTeam removes the team only while its member list is empty.
func (m *Mongo) DeleteTeam(ctx context.Context, name string) (bool, error) {
	res, err := m.teams.DeleteOne(ctx, bson.M{"_id": name, "members": bson.M{"$size": 0}})
	if err != nil {
		return false, wrap("delete team", err)
	}
	if res.DeletedCount == 0 {
		return false, nil
	}
	m.log.Infow("team deleted", "team", name)
	return true, nil
}

// claimMembership inserts the membership of username. A membership left
// pointing at a team that no longer exists is stale and replaced once.
func (m *Mongo) claimMembership(ctx context.Context, username, teamName string) error {
	_, err := m.memberships.InsertOne(ctx, membershipDoc{Username: username, Team: teamName})
	if !mongo.IsDuplicateKeyError(err) {
		return err
	}

	current, lookupErr := m.membershipOf(ctx, username)
	if lookupErr != nil || current == teamName {
		return err
	}
	if n, countErr := m.teams.CountDocuments(ctx, bson.M{"_id": current}); countErr != nil || n > 0 {
		return err
	}
	res, delErr := m.memberships.DeleteOne(ctx, bson.M{"_id": username, "team": current})
	if delErr != nil || res.DeletedCount == 0 {
		return err
	}
	m.log.Warnw("dropped stale membership", "username", username, "team", current)

	_, err = m.memberships.InsertOne(ctx, membershipDoc{Username: username, Team: teamName})
	return err
}

func (m *Mongo) membershipOf(ctx context.Context, username string) (string, error) {
	var doc membershipDoc
	if err := m.memberships.FindOne(ctx, bson.M{"_id": username}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", entities.ErrTeamNotFound
		}
		return "", wrap("get membership", err)
	}
	return doc.Team, nil
}

func toEntity(doc teamDoc) *entities.Team {
	members := slices.Clone(doc.Members)
	if members == nil {
		members = make([]string, 0)
	}
	slices.Sort(members)
	return &entities.Team{Name: doc.Name, Members: members}
}
