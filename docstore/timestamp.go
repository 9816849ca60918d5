// ABOUTME: Native timestamp type of the document store
// ABOUTME: Converted to time.Time only at display boundaries
package docstore

import (
	"fmt"
	"time"
)

// Seconds between 0001-01-01 and the Unix epoch.
const unixToAbsolute int64 = 62135596800

// Timestamp is the store's native point-in-time value: whole seconds since
// 0001-01-01T00:00:00Z plus nanoseconds. Like time.Time, the zero Timestamp
// means "unset" and the Unix epoch is an ordinary value.
type Timestamp struct {
	Seconds int64
	Nanos   int32
}

// TimestampFromTime converts a time.Time into the store's native type.
// The zero time.Time maps to the zero Timestamp.
func TimestampFromTime(t time.Time) Timestamp {
	if t.IsZero() {
		return Timestamp{}
	}
	t = t.UTC()
	return Timestamp{Seconds: t.Unix() + unixToAbsolute, Nanos: int32(t.Nanosecond())}
}

// ToTime converts to a time.Time in UTC. The zero Timestamp gives the zero time.Time.
func (t Timestamp) ToTime() time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	return time.Unix(t.Seconds-unixToAbsolute, int64(t.Nanos)).UTC()
}

// IsZero reports whether t is unset.
func (t Timestamp) IsZero() bool {
	return t.Seconds == 0 && t.Nanos == 0
}

// Compare returns -1, 0 or +1.
func (t Timestamp) Compare(o Timestamp) int {
	switch {
	case t.Seconds < o.Seconds:
		return -1
	case t.Seconds > o.Seconds:
		return 1
	case t.Nanos < o.Nanos:
		return -1
	case t.Nanos > o.Nanos:
		return 1
	}
	return 0
}

// Before reports whether t is earlier than o.
func (t Timestamp) Before(o Timestamp) bool { return t.Compare(o) < 0 }

// MarshalJSON writes the RFC 3339 form, so API payloads never expose the
// internal epoch.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return t.ToTime().MarshalJSON()
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var tt time.Time
	if err := tt.UnmarshalJSON(data); err != nil {
		return err
	}
	*t = TimestampFromTime(tt)
	return nil
}

func (t Timestamp) String() string {
	if t.IsZero() {
		return "Timestamp(unset)"
	}
	return fmt.Sprintf("Timestamp(%s)", t.ToTime().Format(time.RFC3339Nano))
}
