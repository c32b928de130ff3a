package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-companion/backend/internal/calendar"
	"github.com/pkordes/trip-companion/backend/internal/domain"
	"github.com/pkordes/trip-companion/backend/internal/handler"
	"github.com/pkordes/trip-companion/backend/internal/lookup"
	"github.com/pkordes/trip-companion/backend/internal/middleware"
	"github.com/pkordes/trip-companion/backend/internal/service"
)

// ---- mocks -----------------------------------------------------------------

// mockTripServicer is a test double for handler.TripServicer.
// Set only the method fields your test needs.
type mockTripServicer struct {
	create        func(ctx context.Context, actor domain.Account, f domain.TripFields) (domain.Trip, error)
	status        func(ctx context.Context, actor domain.Account, id uuid.UUID) (domain.TripStatus, error)
	checkConflict func(ctx context.Context, actor domain.Account, id uuid.UUID) (service.Conflict, error)
	join          func(ctx context.Context, actor domain.Account, id uuid.UUID) (domain.Trip, error)
	leave         func(ctx context.Context, actor domain.Account, id uuid.UUID) (domain.Trip, error)
	edit          func(ctx context.Context, actor domain.Account, id uuid.UUID, f domain.TripFields) (domain.Trip, error)
	delete        func(ctx context.Context, actor domain.Account, id uuid.UUID) error
}

func (m *mockTripServicer) Create(ctx context.Context, a domain.Account, f domain.TripFields) (domain.Trip, error) {
	return m.create(ctx, a, f)
}
func (m *mockTripServicer) Status(ctx context.Context, a domain.Account, id uuid.UUID) (domain.TripStatus, error) {
	return m.status(ctx, a, id)
}
func (m *mockTripServicer) CheckConflict(ctx context.Context, a domain.Account, id uuid.UUID) (service.Conflict, error) {
	return m.checkConflict(ctx, a, id)
}
func (m *mockTripServicer) Join(ctx context.Context, a domain.Account, id uuid.UUID) (domain.Trip, error) {
	return m.join(ctx, a, id)
}
func (m *mockTripServicer) Leave(ctx context.Context, a domain.Account, id uuid.UUID) (domain.Trip, error) {
	return m.leave(ctx, a, id)
}
func (m *mockTripServicer) Edit(ctx context.Context, a domain.Account, id uuid.UUID, f domain.TripFields) (domain.Trip, error) {
	return m.edit(ctx, a, id, f)
}
func (m *mockTripServicer) Delete(ctx context.Context, a domain.Account, id uuid.UUID) error {
	return m.delete(ctx, a, id)
}

// compile-time check: mockTripServicer must satisfy handler.TripServicer.
var _ handler.TripServicer = (*mockTripServicer)(nil)

type mockChatServicer struct {
	send func(ctx context.Context, actor domain.Account, id uuid.UUID, text string) (domain.ChatMessage, error)
	list func(ctx context.Context, id uuid.UUID) ([]domain.ChatMessage, error)
}

func (m *mockChatServicer) Send(ctx context.Context, a domain.Account, id uuid.UUID, text string) (domain.ChatMessage, error) {
	return m.send(ctx, a, id, text)
}
func (m *mockChatServicer) List(ctx context.Context, id uuid.UUID) ([]domain.ChatMessage, error) {
	return m.list(ctx, id)
}

var _ handler.ChatServicer = (*mockChatServicer)(nil)

type mockExportServicer struct {
	export func(ctx context.Context, userID string) ([]domain.ExportRow, error)
}

func (m *mockExportServicer) Export(ctx context.Context, userID string) ([]domain.ExportRow, error) {
	return m.export(ctx, userID)
}

var _ handler.ExportServicer = (*mockExportServicer)(nil)

// stubSource serves trip lists to the feed endpoints. It is safe for
// concurrent use so WebSocket subscriptions can reload from it.
type stubSource struct {
	mu  sync.Mutex
	all []domain.Trip
	err error
}

func (s *stubSource) add(t domain.Trip) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.all = append(s.all, t)
}

func (s *stubSource) filter(keep func(domain.Trip) bool) ([]domain.Trip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Trip
	for _, t := range s.all {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out, s.err
}

func (s *stubSource) List(context.Context) ([]domain.Trip, error) {
	return s.filter(func(domain.Trip) bool { return true })
}

func (s *stubSource) ListByCreator(_ context.Context, userID string) ([]domain.Trip, error) {
	return s.filter(func(t domain.Trip) bool { return t.IsCreator(userID) })
}

func (s *stubSource) ListByParticipant(_ context.Context, userID string) ([]domain.Trip, error) {
	return s.filter(func(t domain.Trip) bool { return t.IsParticipant(userID) })
}

type stubWeather struct {
	w *lookup.Weather
}

func (s stubWeather) Weather(context.Context, string) *lookup.Weather { return s.w }

// ---- helpers ---------------------------------------------------------------

var (
	ada  = domain.Account{ID: "user-a", DisplayName: "Ada"}
	bora = domain.Account{ID: "user-b", DisplayName: "Bora"}
)

// now is the fixed instant handler tests run at: 2024-12-01 12:00 UTC.
var now = time.Date(2024, 12, 1, 12, 0, 0, 0, time.UTC)

func testClock() calendar.Clock {
	return calendar.NewClockAt(time.UTC, func() time.Time { return now })
}

// asUser stands in for the authenticator: every request runs as acct.
func asUser(acct domain.Account) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(middleware.WithAccount(r.Context(), acct)))
		})
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newHTTPHandler wires a Server around deps at the test clock and routes every
// request as acct.
func newHTTPHandler(deps handler.Deps, acct domain.Account) http.Handler {
	deps.Clock = testClock()
	deps.Logger = discardLogger()
	return handler.NewServer(deps).Routes(asUser(acct))
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

// tripOn builds a trip created by creator on the given day of December 2024.
// Later days are created later, so they sort first.
func tripOn(day int, title string, creator domain.Account, others ...string) domain.Trip {
	date := time.Date(2024, 12, day, 0, 0, 0, 0, time.UTC)
	return domain.Trip{
		ID:           uuid.New(),
		Title:        title,
		City:         "Isparta",
		Date:         date,
		Image:        "https://example.com/isparta.jpg",
		CreatorID:    creator.ID,
		CreatorName:  creator.Name(),
		CreatorPhoto: creator.Avatar(),
		Participants: append([]string{creator.ID}, others...),
		CreatedAt:    date.Add(-48 * time.Hour),
		UpdatedAt:    date.Add(-48 * time.Hour),
	}
}

func tripPath(id uuid.UUID, suffix string) string {
	return fmt.Sprintf("/trips/%s%s", id, suffix)
}
