// Package mapper converts between domain models and transport DTOs.
package mapper

import (
	"grade-teams/internal/entities"
	"grade-teams/internal/transport/http/dto"
)

// ToDTOGrade maps entities.Grade to transport model.
func ToDTOGrade(g entities.Grade) dto.Grade {
	return dto.Grade{
		Username: g.Username,
		Course:   g.Course,
		Score:    g.Score,
	}
}

// ToDTOTeam maps entities.Team to transport model. Members is never null
// in the output.
func ToDTOTeam(team entities.Team) dto.Team {
	members := make([]string, len(team.Members))
	copy(members, team.Members)

	return dto.Team{
		TeamName: team.Name,
		Members:  members,
	}
}

// ToDTOAverage maps a computed team average to transport model.
func ToDTOAverage(course string, avg float64) dto.Average {
	return dto.Average{Course: course, Average: avg}
}
