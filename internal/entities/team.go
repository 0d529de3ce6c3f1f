// Package entities contains core business entities.
package entities

import "slices"

// Team aggregates members under a team name.
type Team struct {
	Name    string
	Members []string
}

// HasMember reports whether username belongs to the team.
func (t Team) HasMember(username string) bool {
	return slices.Contains(t.Members, username)
}
