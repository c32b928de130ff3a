package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pkordes/trip-companion/backend/internal/domain"
	"github.com/pkordes/trip-companion/backend/internal/feed"
)

const (
	// Time allowed to write a frame to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum command size allowed from peer.
	maxCommandSize = 4096

	// Outbound frames buffered per connection.
	sendBuffer = 8
)

// Command is a frame sent by the client.
//
// Feed sockets accept "search" (Text), "page" (Page), "next" and "prev".
// Chat sockets accept "send" (Text).
type Command struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
	Page int    `json:"page,omitempty"`
}

// ViewFrame is pushed to feed sockets whenever the visible page changes.
type ViewFrame struct {
	Type string `json:"type"`
	FeedPage
}

// MessagesFrame is pushed to chat sockets with the full message list.
type MessagesFrame struct {
	Type     string               `json:"type"`
	Messages []domain.ChatMessage `json:"messages"`
}

// ErrorFrame reports a rejected command. The socket stays open.
type ErrorFrame struct {
	Type  string      `json:"type"`
	Error ErrorDetail `json:"error"`
}

// FeedSocket handles GET /ws/feed?view=browse|created|joined.
// The client receives the first page on connect and a fresh view after every
// trip change and every command. Trip changes keep the current page.
func (s *Server) FeedSocket(w http.ResponseWriter, r *http.Request) {
	acct, ok := actor(w, r)
	if !ok {
		return
	}
	mode := feed.Browse
	if v := r.URL.Query().Get("view"); v != "" {
		if mode, ok = feed.ParseMode(v); !ok {
			writeError(w, http.StatusBadRequest, "bad_request", "view must be browse, created or joined")
			return
		}
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		s.log.Debug("websocket upgrade failed", "error", err)
		return
	}

	scope := feed.Scope{Mode: mode, UserID: acct.ID}
	proj := feed.NewProjector(scope, s.clock, s.pageSize)
	sess := newSession(conn, s.sockets.Done(), s.log.With("socket", "feed", "view", mode.String(), "user_id", acct.ID))

	sess.run(r.Context(), func(ctx context.Context) func() {
		// Updates keep the reader on their page; a hub reset means changes may
		// have been missed, so the view starts over.
		epoch := s.hub.Epoch()
		return feed.Subscribe(ctx, s.hub, feed.TopicTrips,
			func(ctx context.Context) ([]domain.Trip, error) {
				return scope.Load(ctx, s.feed)
			},
			func(trips []domain.Trip) {
				if e := s.hub.Epoch(); e != epoch {
					epoch = e
					sess.push(viewFrame(proj.Replace(trips)))
					return
				}
				sess.push(viewFrame(proj.Refresh(trips)))
			})
	}, func(_ context.Context, cmd Command) {
		switch cmd.Type {
		case "search":
			sess.push(viewFrame(proj.SetFilter(cmd.Text)))
		case "page":
			proj.GoTo(cmd.Page)
			sess.push(viewFrame(proj.View()))
		case "next":
			proj.Next()
			sess.push(viewFrame(proj.View()))
		case "prev":
			proj.Prev()
			sess.push(viewFrame(proj.View()))
		default:
			sess.push(errorFrame("bad_request", "unknown command "+cmd.Type))
		}
	})
}

// ChatSocket handles GET /ws/trips/{id}/messages.
// The client receives the full message list on connect and after every new
// message, and may post with {"type":"send","text":"..."}.
func (s *Server) ChatSocket(w http.ResponseWriter, r *http.Request) {
	acct, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := tripID(w, r)
	if !ok {
		return
	}
	if _, err := s.chat.List(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("websocket upgrade failed", "error", err)
		return
	}

	sess := newSession(conn, s.sockets.Done(), s.log.With("socket", "chat", "trip_id", id, "user_id", acct.ID))

	sess.run(r.Context(), func(ctx context.Context) func() {
		return feed.Subscribe(ctx, s.hub, feed.MessagesTopic(id),
			func(ctx context.Context) ([]domain.ChatMessage, error) {
				return s.chat.List(ctx, id)
			},
			func(msgs []domain.ChatMessage) {
				sess.push(MessagesFrame{Type: "messages", Messages: msgs})
			})
	}, func(ctx context.Context, cmd Command) {
		if cmd.Type != "send" {
			sess.push(errorFrame("bad_request", "unknown command "+cmd.Type))
			return
		}
		if _, err := s.chat.Send(ctx, acct, id, cmd.Text); err != nil {
			sess.push(commandError(err))
		}
	})
}

func viewFrame(v feed.View) ViewFrame {
	return ViewFrame{Type: "view", FeedPage: viewToResponse(v)}
}

func errorFrame(code, message string) ErrorFrame {
	return ErrorFrame{Type: "error", Error: ErrorDetail{Code: code, Message: message}}
}

// commandError turns a rejected chat post into an error frame.
func commandError(err error) ErrorFrame {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return errorFrame("validation_error", unwrapMessage(err, domain.ErrValidation))
	case errors.Is(err, domain.ErrNotFound):
		return errorFrame("not_found", "trip not found")
	default:
		return errorFrame("internal_error", "message not sent, please try again")
	}
}

// session pumps frames between one WebSocket connection and a subscription.
type session struct {
	conn    *websocket.Conn
	send    chan []byte
	done    chan struct{}
	closing <-chan struct{}
	log     *slog.Logger
}

// newSession wraps conn. The connection is closed when closing is closed.
func newSession(conn *websocket.Conn, closing <-chan struct{}, log *slog.Logger) *session {
	return &session{
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		done:    make(chan struct{}),
		closing: closing,
		log:     log,
	}
}

// run subscribes, starts the write pump and reads commands until the peer
// goes away or ctx ends. It returns once the connection is closed.
func (c *session) run(ctx context.Context, subscribe func(context.Context) func(), handle func(context.Context, Command)) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go c.writePump()
	go func() {
		select {
		case <-ctx.Done():
		case <-c.closing:
		}
		c.conn.Close()
	}()
	stop := subscribe(ctx)
	defer stop()

	c.log.Debug("socket opened")
	c.readPump(ctx, handle)
	close(c.done)
	c.log.Debug("socket closed")
}

// push queues frame for the write pump. It drops the frame once the session
// is closing.
func (c *session) push(frame any) {
	b, err := json.Marshal(frame)
	if err != nil {
		c.log.Error("encode frame", "error", err)
		return
	}
	select {
	case c.send <- b:
	case <-c.done:
	}
}

// readPump decodes commands from the connection until it fails.
func (c *session) readPump(ctx context.Context, handle func(context.Context, Command)) {
	defer c.conn.Close()
	c.conn.SetReadLimit(maxCommandSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("socket read failed", "error", err)
			}
			return
		}
		if ctx.Err() != nil {
			return
		}

		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			c.push(errorFrame("bad_request", "command must be a JSON object"))
			continue
		}
		handle(ctx, cmd)
	}
}

// writePump writes queued frames and keeps the connection alive with pings.
func (c *session) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
