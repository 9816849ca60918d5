package docstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestamp_RoundTripsThroughCodec(t *testing.T) {
	when := time.Date(2024, 7, 5, 13, 45, 10, 123456789, time.UTC)

	data, err := encodeFields(Fields{"start": TimestampFromTime(when), "title": "Demo"})
	require.NoError(t, err)

	fields, err := decodeFields(data)
	require.NoError(t, err)
	assert.Equal(t, when, fields.Timestamp("start").ToTime())
	assert.Equal(t, "Demo", fields.String("title"))
}

func TestEncodeFields_RejectsUnresolvedSentinel(t *testing.T) {
	_, err := encodeFields(Fields{"createdAt": ServerTimestamp})
	assert.Error(t, err)
}

func TestTimestamp_Compare(t *testing.T) {
	a := Timestamp{Seconds: 10, Nanos: 5}
	b := Timestamp{Seconds: 10, Nanos: 6}
	c := Timestamp{Seconds: 11}

	assert.True(t, a.Before(b))
	assert.True(t, b.Before(c))
	assert.Equal(t, 0, a.Compare(a))
	assert.Equal(t, 1, c.Compare(a))
}

func TestQueryBuildersDoNotAlias(t *testing.T) {
	base := Query{}.Where("userId", "u1")
	a := base.Where("stage", "Proposal")
	b := base.Where("stage", "Negotiation")

	assert.Len(t, base.Filters, 1)
	assert.Equal(t, "Proposal", a.Filters[1].Value)
	assert.Equal(t, "Negotiation", b.Filters[1].Value)
}

func TestTimestamp_RoundTripsOutsideNanosecondRange(t *testing.T) {
	tests := []struct {
		name string
		when time.Time
	}{
		{"unix epoch", time.Unix(0, 0).UTC()},
		{"before 1678", time.Date(1600, 1, 2, 3, 4, 5, 6, time.UTC)},
		{"after 2262", time.Date(2300, 3, 5, 9, 0, 0, 0, time.UTC)},
		{"year 9999", time.Date(9999, 12, 31, 23, 59, 59, 999999999, time.UTC)},
		{"just after year 1", time.Date(1, 1, 1, 0, 0, 0, 1, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := TimestampFromTime(tt.when)
			require.False(t, ts.IsZero())

			data, err := encodeFields(Fields{"start": ts})
			require.NoError(t, err)
			fields, err := decodeFields(data)
			require.NoError(t, err)

			assert.Equal(t, ts, fields.Timestamp("start"))
			assert.True(t, tt.when.Equal(fields.Timestamp("start").ToTime()))
		})
	}
}

func TestTimestamp_ZeroMeansUnset(t *testing.T) {
	assert.True(t, TimestampFromTime(time.Time{}).IsZero())
	assert.True(t, Timestamp{}.ToTime().IsZero())
	assert.False(t, TimestampFromTime(time.Unix(0, 0)).IsZero())
	assert.True(t, Timestamp{}.Before(TimestampFromTime(time.Date(1, 1, 1, 0, 0, 1, 0, time.UTC))))
}

func TestTimestamp_JSONUsesRFC3339(t *testing.T) {
	ts := TimestampFromTime(time.Date(2300, 3, 5, 9, 0, 0, 0, time.UTC))

	data, err := ts.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"2300-03-05T09:00:00Z"`, string(data))

	var back Timestamp
	require.NoError(t, back.UnmarshalJSON(data))
	assert.Equal(t, ts, back)
}
