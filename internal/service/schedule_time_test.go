package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCombineSplitRoundTrip(t *testing.T) {
	instant, err := CombineDateTime("2025-03-10", "14:30")
	require.NoError(t, err)

	date, clock := SplitDateTime(&instant)
	assert.Equal(t, "2025-03-10", date)
	assert.Equal(t, "14:30", clock)
}

func TestCombineDateTimeIsUTC(t *testing.T) {
	instant, err := CombineDateTime("2025-12-31", "23:59")
	require.NoError(t, err)

	assert.Equal(t, time.UTC, instant.Location())
	assert.Equal(t, 2025, instant.Year())
	assert.Equal(t, 59, instant.Minute())
}

func TestCombineDateTimeRejectsGarbage(t *testing.T) {
	cases := []struct {
		name  string
		date  string
		clock string
	}{
		{"empty", "", ""},
		{"bad date", "2025-13-40", "10:00"},
		{"bad clock", "2025-03-10", "25:61"},
		{"wrong layout", "10/03/2025", "14:30"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := CombineDateTime(tc.date, tc.clock)
			assert.Error(t, err)
		})
	}
}

func TestSplitDateTimePlaceholders(t *testing.T) {
	date, clock := SplitDateTime(nil)
	assert.Equal(t, "--", date)
	assert.Equal(t, "--", clock)

	zero := time.Time{}
	date, clock = SplitDateTime(&zero)
	assert.Equal(t, "--", date)
	assert.Equal(t, "--", clock)
}

func TestSplitDateTimeNormalizesToUTC(t *testing.T) {
	offset := time.FixedZone("UTC+5:30", 5*3600+1800)
	local := time.Date(2025, time.March, 11, 1, 15, 0, 0, offset)

	date, clock := SplitDateTime(&local)
	assert.Equal(t, "2025-03-10", date)
	assert.Equal(t, "19:45", clock)
}
