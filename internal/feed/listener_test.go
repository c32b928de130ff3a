package feed

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-companion/backend/testutil"
)

// watch registers a bare subscription so a test can see whether it was woken.
func watch(hub *Hub, topic string) *subscription {
	s := &subscription{topic: topic, dirty: make(chan struct{}, 1)}
	hub.register(s)
	return s
}

func woken(s *subscription) bool {
	select {
	case <-s.dirty:
		return true
	default:
		return false
	}
}

func TestListener_Dispatch(t *testing.T) {
	hub := NewHub(nil)
	l := NewListener(nil, hub, nil)
	tripID := uuid.New()

	trips := watch(hub, TopicTrips)
	messages := watch(hub, MessagesTopic(tripID))
	otherChat := watch(hub, MessagesTopic(uuid.New()))

	l.dispatch(&pgconn.Notification{Channel: ChannelTrips, Payload: uuid.NewString()})
	l.dispatch(&pgconn.Notification{Channel: ChannelMessages, Payload: tripID.String()})
	l.dispatch(&pgconn.Notification{Channel: ChannelMessages, Payload: "not-a-uuid"})
	l.dispatch(&pgconn.Notification{Channel: "unrelated", Payload: "x"})

	assert.True(t, woken(trips))
	assert.True(t, woken(messages))
	assert.False(t, woken(otherChat))
}

func TestListener_Run(t *testing.T) {
	pool := testutil.NewPool(t)
	hub := NewHub(nil)
	l := NewListener(pool, hub, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tripID := uuid.New()
	got := make(chan struct{}, 10)
	stop := Subscribe(ctx, hub, MessagesTopic(tripID), func(context.Context) (int, error) { return 0, nil }, func(int) { got <- struct{}{} })
	defer stop()
	<-got

	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	// Connecting wakes every subscription once.
	select {
	case <-got:
	case <-time.After(5 * time.Second):
		t.Fatal("listener did not connect")
	}
	assert.Equal(t, uint64(1), hub.Epoch(), "connecting starts a new epoch")

	_, err := pool.Exec(ctx, "SELECT pg_notify($1, $2)", ChannelMessages, tripID.String())
	require.NoError(t, err)

	select {
	case <-got:
	case <-time.After(5 * time.Second):
		t.Fatal("notification was not forwarded")
	}

	cancel()
	assert.NoError(t, <-done)
}
