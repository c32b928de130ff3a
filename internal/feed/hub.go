// Package feed turns store changes into live, full-snapshot views.
//
// A Listener receives change notifications from Postgres and forwards them to
// a Hub. Each subscription on the Hub reloads its whole result set when its
// topic changes and hands the snapshot to a callback; a Projector then derives
// the filtered, paginated view from scratch.
package feed

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// TopicTrips changes whenever any trip is created, updated or deleted.
const TopicTrips = "trips"

// MessagesTopic changes whenever a message is added to tripID's chat.
func MessagesTopic(tripID uuid.UUID) string {
	return "messages:" + tripID.String()
}

// Hub maintains the set of active subscriptions and wakes them when their
// topic changes.
type Hub struct {
	mu    sync.Mutex
	subs  map[string]map[*subscription]struct{}
	epoch atomic.Uint64
	log   *slog.Logger
}

// subscription is woken through dirty, a one-slot channel: notifications that
// arrive while a reload is running collapse into a single follow-up reload.
type subscription struct {
	topic string
	dirty chan struct{}
}

// NewHub creates an empty Hub.
func NewHub(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		subs: make(map[string]map[*subscription]struct{}),
		log:  log,
	}
}

// Notify marks every subscription on topic for reload. It never blocks.
func (h *Hub) Notify(topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for s := range h.subs[topic] {
		s.wake()
	}
}

// NotifyAll marks every subscription for reload.
func (h *Hub) NotifyAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, set := range h.subs {
		for s := range set {
			s.wake()
		}
	}
}

// Reset starts a new epoch and wakes every subscription. Use it when changes
// may have been missed, e.g. after the store connection was re-established;
// subscribers that see a new Epoch rebuild their state instead of patching it.
func (h *Hub) Reset() {
	h.epoch.Add(1)
	h.NotifyAll()
}

// Epoch returns the number of Reset calls so far.
func (h *Hub) Epoch() uint64 {
	return h.epoch.Load()
}

// Subscribers returns the number of live subscriptions on topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[topic])
}

func (h *Hub) register(s *subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[s.topic]
	if !ok {
		set = make(map[*subscription]struct{})
		h.subs[s.topic] = set
	}
	set[s] = struct{}{}
}

func (h *Hub) unregister(s *subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs[s.topic], s)
	if len(h.subs[s.topic]) == 0 {
		delete(h.subs, s.topic)
	}
}

func (s *subscription) wake() {
	select {
	case s.dirty <- struct{}{}:
	default:
	}
}

// Subscribe delivers the result of load to onUpdate once right away and again
// after every notification on topic, in order, from a dedicated goroutine.
// A failed load is logged and skipped; the next notification tries again.
//
// Delivery stops when ctx is done or the returned cancel func is called. A
// delivery already in progress is allowed to finish.
func Subscribe[T any](ctx context.Context, h *Hub, topic string, load func(context.Context) (T, error), onUpdate func(T)) (cancel func()) {
	ctx, stop := context.WithCancel(ctx)
	s := &subscription{topic: topic, dirty: make(chan struct{}, 1)}
	h.register(s)
	s.wake()

	go func() {
		defer h.unregister(s)
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.dirty:
			}

			snapshot, err := load(ctx)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				h.log.Warn("feed reload failed", "topic", topic, "error", err)
				continue
			}
			onUpdate(snapshot)
		}
	}()

	return stop
}
