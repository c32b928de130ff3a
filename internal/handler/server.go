// Package handler implements the HTTP and WebSocket handlers for the Trip Companion API.
// All handlers are methods on Server. They are split into resource-specific files
// (trip.go, chat.go, export.go, ws.go) but share the same Server struct so they
// can access its dependencies.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/pkordes/trip-companion/backend/internal/calendar"
	"github.com/pkordes/trip-companion/backend/internal/domain"
	"github.com/pkordes/trip-companion/backend/internal/feed"
	"github.com/pkordes/trip-companion/backend/internal/lookup"
	"github.com/pkordes/trip-companion/backend/internal/service"
)

// TripServicer defines the membership operations the trip handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or service layer.
type TripServicer interface {
	Create(ctx context.Context, actor domain.Account, fields domain.TripFields) (domain.Trip, error)
	Status(ctx context.Context, actor domain.Account, tripID uuid.UUID) (domain.TripStatus, error)
	CheckConflict(ctx context.Context, actor domain.Account, tripID uuid.UUID) (service.Conflict, error)
	Join(ctx context.Context, actor domain.Account, tripID uuid.UUID) (domain.Trip, error)
	Leave(ctx context.Context, actor domain.Account, tripID uuid.UUID) (domain.Trip, error)
	Edit(ctx context.Context, actor domain.Account, tripID uuid.UUID, fields domain.TripFields) (domain.Trip, error)
	Delete(ctx context.Context, actor domain.Account, tripID uuid.UUID) error
}

// ChatServicer defines the chat operations used by the message handlers.
type ChatServicer interface {
	Send(ctx context.Context, actor domain.Account, tripID uuid.UUID, text string) (domain.ChatMessage, error)
	List(ctx context.Context, tripID uuid.UUID) ([]domain.ChatMessage, error)
}

// ExportServicer defines the export operation used by GET /me/export.
type ExportServicer interface {
	Export(ctx context.Context, userID string) ([]domain.ExportRow, error)
}

// WeatherReporter looks up the current weather for a trip's city.
// A nil result means no weather is available.
type WeatherReporter interface {
	Weather(ctx context.Context, city string) *lookup.Weather
}

// Deps are the collaborators a Server is built from. Weather and Hub may be
// nil: trip details then omit weather and the WebSocket routes are not mounted.
type Deps struct {
	Trips   TripServicer
	Chat    ChatServicer
	Export  ExportServicer
	Feed    feed.TripSource
	Weather WeatherReporter
	Hub     *feed.Hub
	Clock   calendar.Clock

	// PageSize is the number of trips per feed page.
	PageSize int

	// AllowedOrigins are the browser origins allowed to open WebSockets.
	// Requests without an Origin header are always accepted.
	AllowedOrigins []string

	Logger *slog.Logger
}

// Server serves every API endpoint.
type Server struct {
	trips    TripServicer
	chat     ChatServicer
	export   ExportServicer
	feed     feed.TripSource
	weather  WeatherReporter
	hub      *feed.Hub
	clock    calendar.Clock
	pageSize int
	log      *slog.Logger
	upgrader websocket.Upgrader

	sockets      context.Context
	closeSockets context.CancelFunc
}

// NewServer constructs the Server with all its dependencies.
func NewServer(d Deps) *Server {
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}
	pageSize := d.PageSize
	if pageSize < 1 {
		pageSize = domain.DefaultPageSize
	}
	sockets, closeSockets := context.WithCancel(context.Background())
	return &Server{
		trips:    d.Trips,
		chat:     d.Chat,
		export:   d.Export,
		feed:     d.Feed,
		weather:  d.Weather,
		hub:      d.Hub,
		clock:    d.Clock,
		pageSize: pageSize,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(d.AllowedOrigins),
		},
		sockets:      sockets,
		closeSockets: closeSockets,
	}
}

// CloseSockets ends every open WebSocket session. Register it with
// http.Server.RegisterOnShutdown, since Shutdown does not wait for or close
// hijacked connections.
func (s *Server) CloseSockets() {
	s.closeSockets()
}

// Routes returns the API router. Everything except /healthz and /openapi.yaml
// passes through authenticate, which must put the caller's account in the
// request context (see middleware.NewAuthenticator).
func (s *Server) Routes(authenticate func(http.Handler) http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.GetHealth)
	r.Get("/openapi.yaml", s.GetOpenAPI)

	r.Group(func(r chi.Router) {
		r.Use(authenticate)

		r.Route("/trips", func(r chi.Router) {
			r.Get("/", s.ListTrips)
			r.Post("/", s.CreateTrip)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.GetTrip)
				r.Put("/", s.UpdateTrip)
				r.Delete("/", s.DeleteTrip)
				r.Post("/join", s.JoinTrip)
				r.Post("/leave", s.LeaveTrip)
				r.Get("/conflict", s.GetConflict)
				r.Get("/messages", s.ListMessages)
				r.Post("/messages", s.SendMessage)
			})
		})

		r.Get("/me/trips/created", s.ListCreatedTrips)
		r.Get("/me/trips/joined", s.ListJoinedTrips)
		r.Get("/me/export", s.GetExport)

		if s.hub != nil {
			r.Get("/ws/feed", s.FeedSocket)
			r.Get("/ws/trips/{id}/messages", s.ChatSocket)
		}
	})

	return r
}

// originChecker accepts requests from allowed origins and requests that carry
// no Origin header at all (native clients). A "*" entry allows any origin.
func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set["*"] || set[origin]
	}
}
