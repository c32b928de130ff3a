package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/trip-companion/backend/internal/calendar"
	"github.com/pkordes/trip-companion/backend/internal/domain"
	"github.com/pkordes/trip-companion/backend/internal/feed"
	"github.com/pkordes/trip-companion/backend/internal/lookup"
)

// TripRequest is the body of POST /trips and PUT /trips/{id}.
// Date accepts "2006-01-02", RFC 3339, free text or a {"seconds": N} timestamp.
type TripRequest struct {
	Title       string         `json:"title"`
	City        string         `json:"city"`
	Date        calendar.Value `json:"date"`
	Description string         `json:"description"`
	Image       string         `json:"image"`
}

// Trip is a trip as rendered by the API.
type Trip struct {
	ID               uuid.UUID          `json:"id"`
	Title            string             `json:"title"`
	City             string             `json:"city"`
	Date             openapi_types.Date `json:"date"`
	Description      string             `json:"description,omitempty"`
	Image            string             `json:"image"`
	CreatorID        string             `json:"creator_id"`
	CreatorName      string             `json:"creator_name"`
	CreatorPhoto     string             `json:"creator_photo"`
	Participants     []string           `json:"participants"`
	ParticipantCount int                `json:"participant_count"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// TripDetail is a trip together with the caller's relation to it.
type TripDetail struct {
	Trip
	IsMember  bool            `json:"is_member"`
	IsCreator bool            `json:"is_creator"`
	IsExpired bool            `json:"is_expired"`
	Weather   *lookup.Weather `json:"weather,omitempty"`
}

// ConflictResponse is the body of GET /trips/{id}/conflict.
type ConflictResponse struct {
	Conflict  bool       `json:"conflict"`
	TripID    *uuid.UUID `json:"trip_id,omitempty"`
	TripTitle string     `json:"trip_title,omitempty"`
}

// FeedPage is one page of a trip feed.
type FeedPage struct {
	Items      []Trip `json:"items"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	TotalPages int    `json:"total_pages"`
	TotalItems int    `json:"total_items"`
	HasPrev    bool   `json:"has_prev"`
	HasNext    bool   `json:"has_next"`
	Filter     string `json:"filter,omitempty"`
}

// CreateTrip handles POST /trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	acct, ok := actor(w, r)
	if !ok {
		return
	}
	var body TripRequest
	if !decodeBody(w, r, &body) {
		return
	}

	created, err := s.trips.Create(r.Context(), acct, body.fields())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tripToResponse(created))
}

// ListTrips handles GET /trips: active trips from everyone, newest first.
// Supports ?q= (search title, city and creator) and ?page=.
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	s.listFeed(w, r, feed.Browse)
}

// ListCreatedTrips handles GET /me/trips/created, including expired trips.
func (s *Server) ListCreatedTrips(w http.ResponseWriter, r *http.Request) {
	s.listFeed(w, r, feed.Created)
}

// ListJoinedTrips handles GET /me/trips/joined, including expired trips.
func (s *Server) ListJoinedTrips(w http.ResponseWriter, r *http.Request) {
	s.listFeed(w, r, feed.Joined)
}

func (s *Server) listFeed(w http.ResponseWriter, r *http.Request, mode feed.Mode) {
	acct, ok := actor(w, r)
	if !ok {
		return
	}
	params, ok := bindFeedParams(w, r)
	if !ok {
		return
	}

	scope := feed.Scope{Mode: mode, UserID: acct.ID}
	trips, err := scope.Load(r.Context(), s.feed)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	p := feed.NewProjector(scope, s.clock, s.pageSize)
	p.Replace(trips)
	view := p.View()
	if params.Query != nil {
		view = p.SetFilter(*params.Query)
	}
	if params.Page != nil {
		view = p.PageAt(domain.NewPageParams(params.Page, s.pageSize).Page)
	}
	writeJSON(w, http.StatusOK, viewToResponse(view))
}

// GetTrip handles GET /trips/{id}. The response carries the caller's
// membership flags and, when available, the current weather in the trip's city.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	acct, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := tripID(w, r)
	if !ok {
		return
	}

	status, err := s.trips.Status(r.Context(), acct, id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	detail := TripDetail{
		Trip:      tripToResponse(status.Trip),
		IsMember:  status.IsMember,
		IsCreator: status.IsCreator,
		IsExpired: status.IsExpired,
	}
	if s.weather != nil {
		detail.Weather = s.weather.Weather(r.Context(), status.Trip.City)
	}
	writeJSON(w, http.StatusOK, detail)
}

// UpdateTrip handles PUT /trips/{id}. Only the creator may edit.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	acct, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := tripID(w, r)
	if !ok {
		return
	}
	var body TripRequest
	if !decodeBody(w, r, &body) {
		return
	}

	updated, err := s.trips.Edit(r.Context(), acct, id, body.fields())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(updated))
}

// DeleteTrip handles DELETE /trips/{id}. Only the creator may delete.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	acct, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := tripID(w, r)
	if !ok {
		return
	}

	if err := s.trips.Delete(r.Context(), acct, id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// JoinTrip handles POST /trips/{id}/join.
// Returns 409 naming the colliding trip when the caller is busy that day.
func (s *Server) JoinTrip(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.trips.Join)
}

// LeaveTrip handles POST /trips/{id}/leave.
func (s *Server) LeaveTrip(w http.ResponseWriter, r *http.Request) {
	s.transition(w, r, s.trips.Leave)
}

func (s *Server) transition(w http.ResponseWriter, r *http.Request, op func(context.Context, domain.Account, uuid.UUID) (domain.Trip, error)) {
	acct, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := tripID(w, r)
	if !ok {
		return
	}

	trip, err := op(r.Context(), acct, id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tripToResponse(trip))
}

// GetConflict handles GET /trips/{id}/conflict: would joining collide with
// another trip the caller holds that day? Nothing is written.
func (s *Server) GetConflict(w http.ResponseWriter, r *http.Request) {
	acct, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := tripID(w, r)
	if !ok {
		return
	}

	c, err := s.trips.CheckConflict(r.Context(), acct, id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	resp := ConflictResponse{Conflict: c.Found}
	if c.Found {
		resp.TripID = &c.TripID
		resp.TripTitle = c.TripTitle
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- mapping helpers --------------------------------------------------------

func (b TripRequest) fields() domain.TripFields {
	f := domain.TripFields{
		Title:       b.Title,
		City:        b.City,
		Description: b.Description,
		Image:       b.Image,
	}
	if !b.Date.IsZero() {
		f.Date = b.Date
	}
	return f
}

// tripToResponse converts a domain.Trip into its API shape.
func tripToResponse(t domain.Trip) Trip {
	participants := t.Participants
	if participants == nil {
		participants = []string{}
	}
	return Trip{
		ID:               t.ID,
		Title:            t.Title,
		City:             t.City,
		Date:             openapi_types.Date{Time: t.Date},
		Description:      t.Description,
		Image:            t.Image,
		CreatorID:        t.CreatorID,
		CreatorName:      t.CreatorName,
		CreatorPhoto:     t.CreatorPhoto,
		Participants:     participants,
		ParticipantCount: len(participants),
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}

func viewToResponse(v feed.View) FeedPage {
	items := make([]Trip, len(v.Items))
	for i, t := range v.Items {
		items[i] = tripToResponse(t)
	}
	return FeedPage{
		Items:      items,
		Page:       v.Page,
		PageSize:   v.PageSize,
		TotalPages: v.TotalPages,
		TotalItems: v.TotalItems,
		HasPrev:    v.HasPrev,
		HasNext:    v.HasNext,
		Filter:     v.Filter,
	}
}
