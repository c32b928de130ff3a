package calendar

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Value carries a date exactly as a client sent it: either a serialized
// timestamp object or a string. It is resolved later by Normalize.
type Value struct {
	v any
}

// ValueOf wraps an already-decoded date for Normalize.
func ValueOf(v any) Value {
	return Value{v: v}
}

// IsZero reports whether no date was supplied.
func (v Value) IsZero() bool {
	return v.v == nil
}

// UnmarshalJSON accepts {"seconds": N, "nanoseconds": M}, the underscore-prefixed
// variant some SDKs emit, a plain string, or null.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		v.v = nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("calendar.Value: %w", err)
		}
		v.v = s
	case len(data) > 0 && data[0] == '{':
		var raw struct {
			Seconds      *int64 `json:"seconds"`
			Nanoseconds  int64  `json:"nanoseconds"`
			USeconds     *int64 `json:"_seconds"`
			UNanoseconds int64  `json:"_nanoseconds"`
		}
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("calendar.Value: %w", err)
		}
		switch {
		case raw.Seconds != nil:
			v.v = Timestamp{Seconds: *raw.Seconds, Nanoseconds: raw.Nanoseconds}
		case raw.USeconds != nil:
			v.v = Timestamp{Seconds: *raw.USeconds, Nanoseconds: raw.UNanoseconds}
		default:
			return fmt.Errorf("calendar.Value: timestamp object without seconds")
		}
	default:
		return fmt.Errorf("calendar.Value: unsupported date %s", data)
	}
	return nil
}
