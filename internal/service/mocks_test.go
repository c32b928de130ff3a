package service_test

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-companion/backend/internal/calendar"
	"github.com/pkordes/trip-companion/backend/internal/domain"
	"github.com/pkordes/trip-companion/backend/internal/repo"
)

// ---- mock repos ------------------------------------------------------------

// mockTripRepo is a hand-written test double for repo.TripRepo.
// Each method is a function field; set only the ones your test needs.
type mockTripRepo struct {
	create            func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID           func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	list              func(ctx context.Context) ([]domain.Trip, error)
	listByCreator     func(ctx context.Context, userID string) ([]domain.Trip, error)
	listByParticipant func(ctx context.Context, userID string) ([]domain.Trip, error)
	updateFields      func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	addParticipant    func(ctx context.Context, id uuid.UUID, userID string) (domain.Trip, error)
	removeParticipant func(ctx context.Context, id uuid.UUID, userID string) (domain.Trip, error)
	delete            func(ctx context.Context, id uuid.UUID) error
}

func (m *mockTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.create(ctx, trip)
}
func (m *mockTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripRepo) List(ctx context.Context) ([]domain.Trip, error) {
	return m.list(ctx)
}
func (m *mockTripRepo) ListByCreator(ctx context.Context, userID string) ([]domain.Trip, error) {
	return m.listByCreator(ctx, userID)
}
func (m *mockTripRepo) ListByParticipant(ctx context.Context, userID string) ([]domain.Trip, error) {
	return m.listByParticipant(ctx, userID)
}
func (m *mockTripRepo) UpdateFields(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.updateFields(ctx, trip)
}
func (m *mockTripRepo) AddParticipant(ctx context.Context, id uuid.UUID, userID string) (domain.Trip, error) {
	return m.addParticipant(ctx, id, userID)
}
func (m *mockTripRepo) RemoveParticipant(ctx context.Context, id uuid.UUID, userID string) (domain.Trip, error) {
	return m.removeParticipant(ctx, id, userID)
}
func (m *mockTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

// compile-time check: mockTripRepo must satisfy repo.TripRepo.
var _ repo.TripRepo = (*mockTripRepo)(nil)

// mockMessageRepo is a hand-written test double for repo.MessageRepo.
type mockMessageRepo struct {
	create     func(ctx context.Context, msg domain.ChatMessage) (domain.ChatMessage, error)
	listByTrip func(ctx context.Context, tripID uuid.UUID) ([]domain.ChatMessage, error)
}

func (m *mockMessageRepo) Create(ctx context.Context, msg domain.ChatMessage) (domain.ChatMessage, error) {
	return m.create(ctx, msg)
}
func (m *mockMessageRepo) ListByTrip(ctx context.Context, tripID uuid.UUID) ([]domain.ChatMessage, error) {
	return m.listByTrip(ctx, tripID)
}

var _ repo.MessageRepo = (*mockMessageRepo)(nil)

// mockLocker runs fn directly against trips and counts calls.
type mockLocker struct {
	trips repo.TripRepo
	calls []string
}

func (m *mockLocker) WithUserLock(_ context.Context, userID string, fn func(trips repo.TripRepo) error) error {
	m.calls = append(m.calls, userID)
	return fn(m.trips)
}

var _ repo.UserLocker = (*mockLocker)(nil)

// ---- in-memory store -------------------------------------------------------

// memStore keeps trips in memory and exposes them through a mockTripRepo whose
// fields behave like the Postgres implementation: newest-first listing, set
// semantics for participants, and the creator pinned in participants.
type memStore struct {
	mu    sync.Mutex
	trips map[uuid.UUID]domain.Trip
	seq   time.Time

	participantReads int
}

func newMemStore() *memStore {
	return &memStore{
		trips: map[uuid.UUID]domain.Trip{},
		seq:   time.Date(2024, 11, 1, 0, 0, 0, 0, time.UTC),
	}
}

// put stores t as if it had been created now, assigning an ID and createdAt.
func (s *memStore) put(t domain.Trip) domain.Trip {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	s.seq = s.seq.Add(time.Minute)
	t.CreatedAt = s.seq
	t.UpdatedAt = s.seq
	if t.Participants == nil {
		t.Participants = []string{t.CreatorID}
	}
	t.Participants = slices.Clone(t.Participants)
	s.trips[t.ID] = t
	return t
}

func (s *memStore) get(id uuid.UUID) (domain.Trip, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trips[id]
	t.Participants = slices.Clone(t.Participants)
	return t, ok
}

func (s *memStore) filter(keep func(domain.Trip) bool) []domain.Trip {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Trip{}
	for _, t := range s.trips {
		if keep(t) {
			t.Participants = slices.Clone(t.Participants)
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b domain.Trip) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return slices.Compare(a.ID[:], b.ID[:])
	})
	return out
}

func (s *memStore) update(id uuid.UUID, fn func(*domain.Trip) error) (domain.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trips[id]
	if !ok {
		return domain.Trip{}, domain.ErrNotFound
	}
	t.Participants = slices.Clone(t.Participants)
	if err := fn(&t); err != nil {
		return domain.Trip{}, err
	}
	s.trips[id] = t
	return t, nil
}

func (s *memStore) repo() *mockTripRepo {
	return &mockTripRepo{
		create: func(_ context.Context, t domain.Trip) (domain.Trip, error) {
			return s.put(t), nil
		},
		getByID: func(_ context.Context, id uuid.UUID) (domain.Trip, error) {
			t, ok := s.get(id)
			if !ok {
				return domain.Trip{}, domain.ErrNotFound
			}
			return t, nil
		},
		list: func(context.Context) ([]domain.Trip, error) {
			return s.filter(func(domain.Trip) bool { return true }), nil
		},
		listByCreator: func(_ context.Context, userID string) ([]domain.Trip, error) {
			return s.filter(func(t domain.Trip) bool { return t.CreatorID == userID }), nil
		},
		listByParticipant: func(_ context.Context, userID string) ([]domain.Trip, error) {
			s.mu.Lock()
			s.participantReads++
			s.mu.Unlock()
			return s.filter(func(t domain.Trip) bool { return t.IsParticipant(userID) }), nil
		},
		updateFields: func(_ context.Context, in domain.Trip) (domain.Trip, error) {
			return s.update(in.ID, func(t *domain.Trip) error {
				t.Title, t.City, t.Date = in.Title, in.City, in.Date
				t.Description, t.Image = in.Description, in.Image
				return nil
			})
		},
		addParticipant: func(_ context.Context, id uuid.UUID, userID string) (domain.Trip, error) {
			return s.update(id, func(t *domain.Trip) error {
				if !t.IsParticipant(userID) {
					t.Participants = append(t.Participants, userID)
				}
				return nil
			})
		},
		removeParticipant: func(_ context.Context, id uuid.UUID, userID string) (domain.Trip, error) {
			return s.update(id, func(t *domain.Trip) error {
				if t.CreatorID == userID {
					return domain.ErrForbidden
				}
				t.Participants = slices.DeleteFunc(t.Participants, func(p string) bool { return p == userID })
				return nil
			})
		},
		delete: func(_ context.Context, id uuid.UUID) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			if _, ok := s.trips[id]; !ok {
				return domain.ErrNotFound
			}
			delete(s.trips, id)
			return nil
		},
	}
}

// ---- helpers ---------------------------------------------------------------

// testNow is "today" for every service test: noon UTC on 2024-12-01.
var testNow = time.Date(2024, 12, 1, 12, 0, 0, 0, time.UTC)

func testClock() calendar.Clock {
	return calendar.NewClockAt(time.UTC, func() time.Time { return testNow })
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var (
	userA = domain.Account{ID: "user-a", DisplayName: "ada", Email: "ada@example.com"}
	userB = domain.Account{ID: "user-b", Email: "bora@example.com", PhotoURL: "https://example.com/bora.png"}
	userC = domain.Account{ID: "user-c", DisplayName: "Cem"}
)
