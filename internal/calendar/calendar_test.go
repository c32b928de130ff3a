package calendar_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-companion/backend/internal/calendar"
)

// 2024-06-20T00:00:00Z
const june20 = 1718841600

func TestNormalize_AllShapesAgree(t *testing.T) {
	istanbul, err := time.LoadLocation("Europe/Istanbul")
	require.NoError(t, err)

	inputs := map[string]any{
		"timestamp":           calendar.Timestamp{Seconds: june20},
		"timestamp pointer":   &calendar.Timestamp{Seconds: june20 + 3600},
		"native date":         time.Date(2024, time.June, 20, 0, 0, 0, 0, time.Local),
		"native date evening": time.Date(2024, time.June, 20, 23, 30, 0, 0, time.UTC),
		"local midnight east": time.Date(2024, time.June, 20, 0, 0, 0, 0, istanbul),
		"iso text":            "2024-06-20",
		"iso text padded":     "  2024-06-20 ",
		"rfc3339 text":        "2024-06-20T18:45:00+03:00",
		"dotted text":         "20.06.2024",
		"slashed text":        "2024/06/20",
		"long text":           "June 20, 2024",
		"day key":             calendar.DayKey("2024-06-20"),
	}

	for name, in := range inputs {
		t.Run(name, func(t *testing.T) {
			got, ok := calendar.Normalize(in)
			require.True(t, ok)
			assert.Equal(t, calendar.DayKey("2024-06-20"), got)
		})
	}
}

func TestNormalize_DiscardsTimeOfDay(t *testing.T) {
	morning, _ := calendar.Normalize(calendar.Timestamp{Seconds: june20 + 60})
	night, _ := calendar.Normalize(calendar.Timestamp{Seconds: june20 + 86399})

	assert.Equal(t, morning, night)
}

func TestNormalize_Unparseable(t *testing.T) {
	var nilTime *time.Time
	var nilTS *calendar.Timestamp

	for name, in := range map[string]any{
		"nil":           nil,
		"empty":         "",
		"blank":         "   ",
		"free prose":    "2-29 Mayıs",
		"invalid date":  "2024-02-30",
		"year zero":     "0000-01-01",
		"dotted zero":   "01.01.0000",
		"zero time":     time.Time{},
		"nil time":      nilTime,
		"nil timestamp": nilTS,
		"unsupported":   42,
		"empty value":   calendar.Value{},
	} {
		t.Run(name, func(t *testing.T) {
			got, ok := calendar.Normalize(in)
			assert.False(t, ok)
			assert.Empty(t, got)
		})
	}
}

func TestSame(t *testing.T) {
	assert.True(t, calendar.Same("2024-12-10", time.Date(2024, 12, 10, 15, 0, 0, 0, time.UTC)))
	assert.False(t, calendar.Same("2024-12-10", "2024-12-11"), "adjacent days do not collide")
	assert.False(t, calendar.Same("garbage", "garbage"), "unparseable values never match")
}

func TestValue_UnmarshalJSON(t *testing.T) {
	tests := map[string]string{
		"seconds object": `{"seconds": 1718841600}`,
		"sdk object":     `{"_seconds": 1718841600, "_nanoseconds": 0}`,
		"string":         `"2024-06-20"`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			var v calendar.Value
			require.NoError(t, json.Unmarshal([]byte(raw), &v))

			got, ok := calendar.Normalize(v)
			require.True(t, ok)
			assert.Equal(t, calendar.DayKey("2024-06-20"), got)
		})
	}
}

func TestValue_UnmarshalJSON_Rejects(t *testing.T) {
	for _, raw := range []string{`{"minutes": 4}`, `12`, `[1]`} {
		var v calendar.Value
		assert.Error(t, json.Unmarshal([]byte(raw), &v), raw)
	}

	var v calendar.Value
	require.NoError(t, json.Unmarshal([]byte(`null`), &v))
	assert.True(t, v.IsZero())
}

func TestDayKey_EndOfDay(t *testing.T) {
	end := calendar.DayKey("2024-06-20").EndOfDay(time.UTC)

	assert.Equal(t, time.Date(2024, 6, 20, 23, 59, 59, 999999999, time.UTC), end)
	assert.True(t, calendar.DayKey("nope").EndOfDay(time.UTC).IsZero())
}

func TestClock_Active(t *testing.T) {
	at := func(s string) func() time.Time {
		return func() time.Time {
			ts, err := time.Parse(time.RFC3339, s)
			require.NoError(t, err)
			return ts
		}
	}

	clock := calendar.NewClockAt(time.UTC, at("2024-06-20T23:59:00Z"))
	assert.True(t, clock.Active("2024-06-20"), "a trip stays active until the end of its day")
	assert.True(t, clock.Active("2024-06-21"))
	assert.False(t, clock.Active("2024-06-19"))
	assert.False(t, clock.Active("not a date"))

	after := calendar.NewClockAt(time.UTC, at("2024-06-21T00:00:00Z"))
	assert.False(t, after.Active("2024-06-20"))
	assert.Equal(t, calendar.DayKey("2024-06-21"), after.Today())
}

func TestClock_ActiveUsesLocation(t *testing.T) {
	istanbul, err := time.LoadLocation("Europe/Istanbul")
	require.NoError(t, err)

	// 22:30 UTC on the 20th is already 01:30 on the 21st in Istanbul.
	now := func() time.Time { return time.Date(2024, 6, 20, 22, 30, 0, 0, time.UTC) }

	assert.True(t, calendar.NewClockAt(time.UTC, now).Active("2024-06-20"))
	assert.False(t, calendar.NewClockAt(istanbul, now).Active("2024-06-20"))
}
