package repo

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pkordes/trip-companion/backend/internal/domain"
)

// Postgres SQLSTATE codes the repo translates into domain errors.
const (
	codeForeignKeyViolation = "23503"
	codeCheckViolation      = "23514"
	codeSerialization       = "40001"
	codeDeadlock            = "40P01"
	codeTooManyConnections  = "53300"
	codeAdminShutdown       = "57P01"
	codeCannotConnectNow    = "57P03"
)

// creatorConstraint guards creator_id = ANY(participants) on the trips table.
const creatorConstraint = "trips_creator_is_participant"

// classify wraps err with op and, where the cause is recognisable, with the
// domain sentinel the service and handler layers switch on.
func classify(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeForeignKeyViolation:
			return fmt.Errorf("%s: %w: %w", op, domain.ErrNotFound, err)
		case codeCheckViolation:
			if pgErr.ConstraintName == creatorConstraint {
				return fmt.Errorf("%s: %w: creator must remain a participant", op, domain.ErrForbidden)
			}
			return fmt.Errorf("%s: %w: %s", op, domain.ErrValidation, pgErr.ConstraintName)
		case codeSerialization, codeDeadlock, codeTooManyConnections, codeAdminShutdown, codeCannotConnectNow:
			return fmt.Errorf("%s: %w: %w", op, domain.ErrUnavailable, err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	var netErr net.Error
	if pgconn.Timeout(err) || pgconn.SafeToRetry(err) ||
		errors.Is(err, context.DeadlineExceeded) || errors.As(err, &netErr) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
