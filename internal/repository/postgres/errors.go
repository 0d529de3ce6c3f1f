package postgres

import (
	"context"
	"errors"
	"fmt"

	"grade-teams/internal/entities"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// wrap annotates err and marks deadline, connection and server-availability
// failures as transient.
func wrap(op string, err error) error {
	if isTransient(err) {
		return fmt.Errorf("%w: %s: %v", entities.ErrTransientFailure, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || pgconn.Timeout(err) {
		return true
	}
	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code[:2] {
		case "08", "53", "57":
			// connection exception, insufficient resources, operator intervention
			return true
		case "40":
			// serialization failure, deadlock detected
			return true
		}
	}
	return false
}
