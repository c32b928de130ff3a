package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/trip-companion/backend/internal/calendar"
	"github.com/pkordes/trip-companion/backend/internal/domain"
	"github.com/pkordes/trip-companion/backend/internal/repo"
)

// MembershipOptions toggles the stricter behaviours of MembershipService.
type MembershipOptions struct {
	// CheckConflictOnCreate rejects a new trip that lands on a day the creator
	// already holds.
	CheckConflictOnCreate bool

	// SerializeJoins runs the conflict check and the participant write of
	// Join inside one transaction holding a per-user lock, so two concurrent
	// joins by the same user cannot both pass the check.
	SerializeJoins bool
}

// MembershipService owns the trip lifecycle: create, edit, delete, and each
// user's join/leave transitions.
type MembershipService struct {
	trips    repo.TripRepo
	locker   repo.UserLocker
	conflict *ConflictDetector
	enricher *Enricher
	clock    calendar.Clock
	opts     MembershipOptions
}

// NewMembershipService constructs a MembershipService.
// locker may be nil when opts.SerializeJoins is false.
func NewMembershipService(trips repo.TripRepo, locker repo.UserLocker, enricher *Enricher, clock calendar.Clock, opts MembershipOptions) *MembershipService {
	if locker == nil {
		opts.SerializeJoins = false
	}
	return &MembershipService{
		trips:    trips,
		locker:   locker,
		conflict: NewConflictDetector(trips),
		enricher: enricher,
		clock:    clock,
		opts:     opts,
	}
}

// Create validates fields and writes a new trip with actor as creator and only participant.
// Returns domain.ErrValidation for missing fields or an unrecognisable date, and a
// *domain.ConflictError when CheckConflictOnCreate is set and the day is taken.
func (s *MembershipService) Create(ctx context.Context, actor domain.Account, fields domain.TripFields) (domain.Trip, error) {
	if err := requireActor(actor); err != nil {
		return domain.Trip{}, fmt.Errorf("service.MembershipService.Create: %w", err)
	}
	trip, err := applyFields(domain.Trip{}, fields)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.MembershipService.Create: %w", err)
	}

	if s.opts.CheckConflictOnCreate {
		c, err := s.conflict.Check(ctx, actor.ID, trip.Date, uuid.Nil)
		if err != nil {
			return domain.Trip{}, fmt.Errorf("service.MembershipService.Create: %w", err)
		}
		if err := c.Err(); err != nil {
			return domain.Trip{}, fmt.Errorf("service.MembershipService.Create: %w", err)
		}
	}

	trip.Image = s.enricher.Image(ctx, trip.City, trip.Image)
	trip.CreatorID = actor.ID
	trip.CreatorName = actor.Name()
	trip.CreatorPhoto = actor.Avatar()
	trip.Participants = []string{actor.ID}

	result, err := s.trips.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.MembershipService.Create: %w", err)
	}
	return result, nil
}

// Get returns a single trip by ID.
func (s *MembershipService) Get(ctx context.Context, tripID uuid.UUID) (domain.Trip, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.MembershipService.Get: %w", err)
	}
	return trip, nil
}

// Status returns the trip together with actor's relation to it.
func (s *MembershipService) Status(ctx context.Context, actor domain.Account, tripID uuid.UUID) (domain.TripStatus, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.TripStatus{}, fmt.Errorf("service.MembershipService.Status: %w", err)
	}
	return domain.TripStatus{
		Trip:      trip,
		IsMember:  trip.IsParticipant(actor.ID),
		IsCreator: trip.IsCreator(actor.ID),
		IsExpired: !s.clock.Active(trip.Date),
	}, nil
}

// CheckConflict reports whether joining tripID would collide with a trip actor already holds.
// It writes nothing.
func (s *MembershipService) CheckConflict(ctx context.Context, actor domain.Account, tripID uuid.UUID) (Conflict, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return Conflict{}, fmt.Errorf("service.MembershipService.CheckConflict: %w", err)
	}
	c, err := s.conflict.Check(ctx, actor.ID, trip.Date, trip.ID)
	if err != nil {
		return Conflict{}, fmt.Errorf("service.MembershipService.CheckConflict: %w", err)
	}
	return c, nil
}

// Join adds actor to the trip's participants.
//
// Joining a trip actor already belongs to is a no-op that returns the trip.
// Returns domain.ErrNotFound if the trip is gone, domain.ErrValidation if its
// day has passed, and a *domain.ConflictError naming the colliding trip if
// actor already holds a trip that day. On any error nothing is written.
func (s *MembershipService) Join(ctx context.Context, actor domain.Account, tripID uuid.UUID) (domain.Trip, error) {
	if err := requireActor(actor); err != nil {
		return domain.Trip{}, fmt.Errorf("service.MembershipService.Join: %w", err)
	}

	if !s.opts.SerializeJoins {
		trip, err := s.join(ctx, s.trips, s.conflict, actor.ID, tripID)
		if err != nil {
			return domain.Trip{}, fmt.Errorf("service.MembershipService.Join: %w", err)
		}
		return trip, nil
	}

	var trip domain.Trip
	err := s.locker.WithUserLock(ctx, actor.ID, func(trips repo.TripRepo) error {
		var err error
		trip, err = s.join(ctx, trips, NewConflictDetector(trips), actor.ID, tripID)
		return err
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.MembershipService.Join: %w", err)
	}
	return trip, nil
}

func (s *MembershipService) join(ctx context.Context, trips repo.TripRepo, conflict *ConflictDetector, userID string, tripID uuid.UUID) (domain.Trip, error) {
	trip, err := trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Trip{}, err
	}
	if trip.IsParticipant(userID) {
		return trip, nil
	}
	if !s.clock.Active(trip.Date) {
		return domain.Trip{}, fmt.Errorf("%w: trip day has passed", domain.ErrValidation)
	}

	c, err := conflict.Check(ctx, userID, trip.Date, trip.ID)
	if err != nil {
		return domain.Trip{}, err
	}
	if err := c.Err(); err != nil {
		return domain.Trip{}, err
	}

	return trips.AddParticipant(ctx, tripID, userID)
}

// Leave removes actor from the trip's participants.
// Returns domain.ErrForbidden for the creator and domain.ErrValidation if actor
// is not a participant.
func (s *MembershipService) Leave(ctx context.Context, actor domain.Account, tripID uuid.UUID) (domain.Trip, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.MembershipService.Leave: %w", err)
	}
	if trip.IsCreator(actor.ID) {
		return domain.Trip{}, fmt.Errorf("service.MembershipService.Leave: %w: the creator cannot leave", domain.ErrForbidden)
	}
	if !trip.IsParticipant(actor.ID) {
		return domain.Trip{}, fmt.Errorf("service.MembershipService.Leave: %w: not a member", domain.ErrValidation)
	}

	result, err := s.trips.RemoveParticipant(ctx, tripID, actor.ID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.MembershipService.Leave: %w", err)
	}
	return result, nil
}

// Edit overwrites the trip's mutable fields. Participants are untouched and
// their schedules are not re-checked against a new date.
// Returns domain.ErrForbidden unless actor created the trip, and
// domain.ErrValidation for invalid fields or a trip whose day has passed.
func (s *MembershipService) Edit(ctx context.Context, actor domain.Account, tripID uuid.UUID, fields domain.TripFields) (domain.Trip, error) {
	current, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.MembershipService.Edit: %w", err)
	}
	if !current.IsCreator(actor.ID) {
		return domain.Trip{}, fmt.Errorf("service.MembershipService.Edit: %w: only the creator can edit", domain.ErrForbidden)
	}
	if !s.clock.Active(current.Date) {
		return domain.Trip{}, fmt.Errorf("service.MembershipService.Edit: %w: trip day has passed", domain.ErrValidation)
	}

	updated, err := applyFields(current, fields)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.MembershipService.Edit: %w", err)
	}
	switch {
	case updated.Image != "":
	case updated.City != current.City:
		updated.Image = s.enricher.Image(ctx, updated.City, "")
	default:
		updated.Image = current.Image
	}

	result, err := s.trips.UpdateFields(ctx, updated)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.MembershipService.Edit: %w", err)
	}
	return result, nil
}

// Delete removes the trip and its chat permanently.
// Returns domain.ErrForbidden unless actor created the trip.
func (s *MembershipService) Delete(ctx context.Context, actor domain.Account, tripID uuid.UUID) error {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return fmt.Errorf("service.MembershipService.Delete: %w", err)
	}
	if !trip.IsCreator(actor.ID) {
		return fmt.Errorf("service.MembershipService.Delete: %w: only the creator can delete", domain.ErrForbidden)
	}
	if err := s.trips.Delete(ctx, tripID); err != nil {
		return fmt.Errorf("service.MembershipService.Delete: %w", err)
	}
	return nil
}

// applyFields validates fields and copies them onto trip.
//   - Title and City must be non-empty after trimming.
//   - Date must reduce to a calendar day.
func applyFields(trip domain.Trip, fields domain.TripFields) (domain.Trip, error) {
	title := strings.TrimSpace(fields.Title)
	city := strings.TrimSpace(fields.City)
	var missing []string
	if title == "" {
		missing = append(missing, "title")
	}
	if city == "" {
		missing = append(missing, "city")
	}
	if blankDate(fields.Date) {
		missing = append(missing, "date")
	}
	if len(missing) > 0 {
		return domain.Trip{}, fmt.Errorf("%w: %s required", domain.ErrValidation, strings.Join(missing, ", "))
	}

	day, ok := calendar.Normalize(fields.Date)
	if !ok {
		return domain.Trip{}, fmt.Errorf("%w: date is not a calendar day", domain.ErrValidation)
	}

	trip.Title = title
	trip.City = city
	trip.Date = day.Time()
	trip.Description = strings.TrimSpace(fields.Description)
	trip.Image = strings.TrimSpace(fields.Image)
	return trip, nil
}

func blankDate(v any) bool {
	switch d := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(d) == ""
	case calendar.Value:
		return d.IsZero()
	}
	return false
}

func requireActor(actor domain.Account) error {
	if actor.ID == "" {
		return fmt.Errorf("%w: sign in required", domain.ErrForbidden)
	}
	return nil
}
