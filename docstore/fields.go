// ABOUTME: Typed accessors and JSON codec for schemaless document fields
// ABOUTME: Timestamps round-trip through JSON as {"__ts": {"s": seconds, "n": nanos}}
package docstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

const (
	timestampKey     = "__ts"
	timestampSeconds = "s"
	timestampNanos   = "n"
)

// String returns the string at key, or "".
func (f Fields) String(key string) string {
	if s, ok := f[key].(string); ok {
		return s
	}
	return ""
}

// Bool returns the bool at key, or false.
func (f Fields) Bool(key string) bool {
	if b, ok := f[key].(bool); ok {
		return b
	}
	return false
}

// Float returns the numeric value at key. Strings are not coerced.
func (f Fields) Float(key string) (float64, bool) {
	switch v := f[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		n, err := v.Float64()
		return n, err == nil
	}
	return 0, false
}

// Timestamp returns the native timestamp at key, or the zero Timestamp.
func (f Fields) Timestamp(key string) Timestamp {
	switch v := f[key].(type) {
	case Timestamp:
		return v
	case time.Time:
		return TimestampFromTime(v)
	}
	return Timestamp{}
}

func encodeFields(fields Fields) ([]byte, error) {
	out := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		switch tv := v.(type) {
		case Timestamp:
			out[k] = encodeTimestamp(tv)
		case time.Time:
			out[k] = encodeTimestamp(TimestampFromTime(tv))
		case float64:
			if math.IsNaN(tv) || math.IsInf(tv, 0) {
				return nil, fmt.Errorf("field %q: non-finite number", k)
			}
			out[k] = tv
		default:
			if IsServerTimestamp(v) {
				return nil, fmt.Errorf("field %q: unresolved server timestamp", k)
			}
			out[k] = v
		}
	}
	return json.Marshal(out)
}

func encodeTimestamp(t Timestamp) map[string]map[string]int64 {
	return map[string]map[string]int64{timestampKey: {
		timestampSeconds: t.Seconds,
		timestampNanos:   int64(t.Nanos),
	}}
}

func decodeTimestamp(v interface{}) (Timestamp, bool) {
	parts, ok := v.(map[string]interface{})
	if !ok || len(parts) != 2 {
		return Timestamp{}, false
	}
	secs, ok := parts[timestampSeconds].(json.Number)
	if !ok {
		return Timestamp{}, false
	}
	nanos, ok := parts[timestampNanos].(json.Number)
	if !ok {
		return Timestamp{}, false
	}
	s, err := secs.Int64()
	if err != nil {
		return Timestamp{}, false
	}
	n, err := nanos.Int64()
	if err != nil || n < 0 || n >= int64(time.Second) {
		return Timestamp{}, false
	}
	return Timestamp{Seconds: s, Nanos: int32(n)}, true
}

func decodeFields(data []byte) (Fields, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}

	fields := make(Fields, len(raw))
	for k, v := range raw {
		fields[k] = decodeValue(v)
	}
	return fields, nil
}

func decodeValue(v interface{}) interface{} {
	switch tv := v.(type) {
	case json.Number:
		s := tv.String()
		if !strings.ContainsAny(s, ".eE") {
			if n, err := tv.Int64(); err == nil {
				return n
			}
		}
		f, _ := tv.Float64()
		return f
	case map[string]interface{}:
		if inner, ok := tv[timestampKey]; ok && len(tv) == 1 {
			if ts, ok := decodeTimestamp(inner); ok {
				return ts
			}
		}
		out := make(map[string]interface{}, len(tv))
		for k, inner := range tv {
			out[k] = decodeValue(inner)
		}
		return out
	case []interface{}:
		for i := range tv {
			tv[i] = decodeValue(tv[i])
		}
		return tv
	}
	return v
}

func validField(name string) bool {
	return validCollection(name)
}
