package feed

import (
	"context"
	"time"

	"github.com/pkordes/trip-companion/backend/internal/calendar"
)

// RunDayRollover wakes every subscription each time the calendar day in
// clock's location ends, so live browse feeds drop the trips that just
// expired. It returns nil when ctx is done.
func (h *Hub) RunDayRollover(ctx context.Context, clock calendar.Clock) error {
	for {
		timer := time.NewTimer(untilNextDay(clock))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
			h.log.Debug("day rolled over", "day", clock.Today())
			h.NotifyAll()
		}
	}
}

// untilNextDay is the wait until the first instant after today's end of day.
func untilNextDay(clock calendar.Clock) time.Duration {
	end := clock.Today().EndOfDay(clock.Location())
	return end.Sub(clock.Now()) + time.Nanosecond
}
