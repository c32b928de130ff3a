package feed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sethvargo/go-retry"
)

// Postgres channels written by the triggers in migrations/00003_notify_changes.sql.
const (
	ChannelTrips    = "trips_changed"
	ChannelMessages = "trip_messages_changed"
)

// Listener holds one dedicated connection that LISTENs for store changes and
// forwards them to a Hub.
type Listener struct {
	pool       *pgxpool.Pool
	hub        *Hub
	log        *slog.Logger
	minBackoff time.Duration
	maxBackoff time.Duration
}

// NewListener creates a Listener that takes its connection from pool.
func NewListener(pool *pgxpool.Pool, hub *Hub, log *slog.Logger) *Listener {
	if log == nil {
		log = slog.Default()
	}
	return &Listener{
		pool:       pool,
		hub:        hub,
		log:        log,
		minBackoff: 500 * time.Millisecond,
		maxBackoff: 30 * time.Second,
	}
}

// Run listens until ctx is done. A lost connection is re-established with
// capped exponential backoff. Every successful (re)connect notifies all
// topics, since changes made while disconnected were never announced.
// Run returns nil when ctx is cancelled.
func (l *Listener) Run(ctx context.Context) error {
	backoff := retry.WithCappedDuration(l.maxBackoff, retry.NewExponential(l.minBackoff))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		l.log.Warn("change listener disconnected", "error", err)
		return retry.RetryableError(err)
	})
	if ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("feed.Listener.Run: %w", err)
	}
	return nil
}

func (l *Listener) listen(ctx context.Context) error {
	pooled, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire: %w", err)
	}
	// The connection carries LISTEN state, so it never goes back to the pool.
	conn := pooled.Hijack()
	defer conn.Close(context.WithoutCancel(ctx))

	for _, channel := range []string{ChannelTrips, ChannelMessages} {
		if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{channel}.Sanitize()); err != nil {
			return fmt.Errorf("listen %s: %w", channel, err)
		}
	}
	l.log.Info("change listener connected")
	l.hub.Reset()

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait: %w", err)
		}
		l.dispatch(n)
	}
}

// dispatch maps one Postgres notification onto hub topics.
func (l *Listener) dispatch(n *pgconn.Notification) {
	switch n.Channel {
	case ChannelTrips:
		l.hub.Notify(TopicTrips)
	case ChannelMessages:
		tripID, err := uuid.Parse(n.Payload)
		if err != nil {
			l.log.Warn("bad message notification payload", "payload", n.Payload, "error", err)
			return
		}
		l.hub.Notify(MessagesTopic(tripID))
	default:
		l.log.Debug("ignoring notification", "channel", n.Channel)
	}
}
