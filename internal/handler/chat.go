package handler

import (
	"net/http"

	"github.com/pkordes/trip-companion/backend/internal/domain"
)

// MessageRequest is the body of POST /trips/{id}/messages.
type MessageRequest struct {
	Text string `json:"text"`
}

// MessageList is the body of GET /trips/{id}/messages.
type MessageList struct {
	Messages []domain.ChatMessage `json:"messages"`
}

// ListMessages handles GET /trips/{id}/messages, oldest first.
func (s *Server) ListMessages(w http.ResponseWriter, r *http.Request) {
	id, ok := tripID(w, r)
	if !ok {
		return
	}

	msgs, err := s.chat.List(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageList{Messages: msgs})
}

// SendMessage handles POST /trips/{id}/messages.
func (s *Server) SendMessage(w http.ResponseWriter, r *http.Request) {
	acct, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := tripID(w, r)
	if !ok {
		return
	}
	var body MessageRequest
	if !decodeBody(w, r, &body) {
		return
	}

	msg, err := s.chat.Send(r.Context(), acct, id, body.Text)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}
