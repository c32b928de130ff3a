package feed

import (
	"context"

	"github.com/pkordes/trip-companion/backend/internal/domain"
)

// TripSource is the read side of the trip store a feed is loaded from.
// repo.TripRepo satisfies it.
type TripSource interface {
	List(ctx context.Context) ([]domain.Trip, error)
	ListByCreator(ctx context.Context, userID string) ([]domain.Trip, error)
	ListByParticipant(ctx context.Context, userID string) ([]domain.Trip, error)
}

// Load fetches the snapshot a scope is projected from: every trip for
// Browse, the user's own trips for Created, the user's memberships for Joined.
func (s Scope) Load(ctx context.Context, trips TripSource) ([]domain.Trip, error) {
	switch s.Mode {
	case Created:
		return trips.ListByCreator(ctx, s.UserID)
	case Joined:
		return trips.ListByParticipant(ctx, s.UserID)
	default:
		return trips.List(ctx)
	}
}
