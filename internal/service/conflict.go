// Package service contains the business logic for the Trip Companion API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/trip-companion/backend/internal/calendar"
	"github.com/pkordes/trip-companion/backend/internal/domain"
	"github.com/pkordes/trip-companion/backend/internal/repo"
)

// Conflict is the outcome of a schedule check.
type Conflict struct {
	Found     bool
	TripID    uuid.UUID
	TripTitle string
}

// Err returns a *domain.ConflictError describing c, or nil when nothing collides.
func (c Conflict) Err() error {
	if !c.Found {
		return nil
	}
	return &domain.ConflictError{TripID: c.TripID, TripTitle: c.TripTitle}
}

// ConflictDetector answers whether a user already holds a trip on a given day.
//
// A check reads a snapshot of the user's trips and is not transactional: a
// write that lands between Check and the caller's own write is not seen.
type ConflictDetector struct {
	trips repo.TripRepo
}

// NewConflictDetector constructs a ConflictDetector reading from trips.
func NewConflictDetector(trips repo.TripRepo) *ConflictDetector {
	return &ConflictDetector{trips: trips}
}

// Check compares candidate against every trip userID participates in, skipping
// exclude (pass uuid.Nil to skip nothing). Trips whose dates cannot be
// normalized are ignored. When several trips collide, the first one in
// repo order (newest first) is reported.
//
// Returns domain.ErrValidation if candidate itself cannot be normalized.
func (d *ConflictDetector) Check(ctx context.Context, userID string, candidate any, exclude uuid.UUID) (Conflict, error) {
	day, ok := calendar.Normalize(candidate)
	if !ok {
		return Conflict{}, fmt.Errorf("service.ConflictDetector.Check: %w: date is not a calendar day", domain.ErrValidation)
	}

	held, err := d.trips.ListByParticipant(ctx, userID)
	if err != nil {
		return Conflict{}, fmt.Errorf("service.ConflictDetector.Check: %w", err)
	}

	for _, t := range held {
		if t.ID == exclude {
			continue
		}
		other, ok := calendar.Normalize(t.Date)
		if !ok {
			continue
		}
		if other == day {
			return Conflict{Found: true, TripID: t.ID, TripTitle: t.Title}, nil
		}
	}
	return Conflict{}, nil
}
