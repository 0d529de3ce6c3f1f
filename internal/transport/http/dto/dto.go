// Package dto holds JSON request and response bodies of the HTTP adapter.
package dto

// ErrorCode is a machine-readable error kind.
type ErrorCode string

const (
	InvalidArgument ErrorCode = "INVALID_ARGUMENT"
	NotFound        ErrorCode = "NOT_FOUND"
	NameTaken       ErrorCode = "NAME_TAKEN"
	AlreadyOnTeam   ErrorCode = "ALREADY_ON_TEAM"
	NotOnTeam       ErrorCode = "NOT_ON_TEAM"
	NoData          ErrorCode = "NO_DATA"
	Unavailable     ErrorCode = "UNAVAILABLE"
	Internal        ErrorCode = "INTERNAL"
)

// ErrorBody is the payload of ErrorResponse.
type ErrorBody struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// LogGradeRequest is the body of POST /grades. Score is a pointer so a
// missing field is told apart from a zero score.
type LogGradeRequest struct {
	Course string `json:"course"`
	Score  *int   `json:"score"`
}

// TeamNameRequest is the body of POST /teams/form and POST /teams/join.
type TeamNameRequest struct {
	TeamName string `json:"team_name"`
}

// Grade is a single score of a user in a course.
type Grade struct {
	Username string `json:"username"`
	Course   string `json:"course"`
	Score    int    `json:"score"`
}

// Team lists members in byte-wise order.
type Team struct {
	TeamName string   `json:"team_name"`
	Members  []string `json:"members"`
}

// Membership confirms a form or join.
type Membership struct {
	Username string `json:"username"`
	TeamName string `json:"team_name"`
}

// Average is the mean score of the caller's team in Course.
type Average struct {
	Course  string  `json:"course"`
	Average float64 `json:"average"`
}
