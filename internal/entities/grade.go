// Package entities contains core business entities.
package entities

// Accepted score range, inclusive.
const (
	MinScore = 0
	MaxScore = 100
)

// Grade is the score a user holds for a course.
type Grade struct {
	Username string
	Course   string
	Score    int
}
