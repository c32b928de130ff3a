package feed

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-companion/backend/internal/calendar"
)

func TestUntilNextDay(t *testing.T) {
	istanbul := time.FixedZone("TRT", 3*60*60)
	tests := []struct {
		name string
		loc  *time.Location
		now  time.Time
		want time.Duration
	}{
		{"noon utc", time.UTC, time.Date(2024, 12, 1, 12, 0, 0, 0, time.UTC), 12 * time.Hour},
		{"just before midnight", time.UTC, time.Date(2024, 12, 1, 23, 59, 59, 0, time.UTC), time.Second},
		{"day ends in location", istanbul, time.Date(2024, 12, 1, 20, 0, 0, 0, time.UTC), time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := calendar.NewClockAt(tt.loc, func() time.Time { return tt.now })
			assert.Equal(t, tt.want, untilNextDay(clock))
		})
	}
}

func TestRunDayRollover_StopsWithContext(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- hub.RunDayRollover(ctx, calendar.NewClock(time.UTC)) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("rollover loop did not stop")
	}
}
