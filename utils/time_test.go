package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUSDate(t *testing.T) {
	parsed, err := ParseUSDate("06/15/2024")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC), parsed)

	// Impossible and malformed dates are rejected
	for _, s := range []string{"02/30/2024", "13/01/2024", "2024-06-15", "6/15/2024", "junk", ""} {
		assert.False(t, IsValidUSDate(s), s)
	}

	assert.True(t, IsValidUSDate("02/29/2024"))
	assert.False(t, IsValidUSDate("02/29/2023"))
}

func TestTruncateToDay(t *testing.T) {
	stamp := time.Date(2024, time.June, 15, 18, 42, 7, 123, time.UTC)
	assert.Equal(t, time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC), TruncateToDay(stamp))

	// Non-UTC instants are normalized to their UTC calendar day
	tehran := time.FixedZone("IRST", int((3*time.Hour + 30*time.Minute).Seconds()))
	late := time.Date(2024, time.June, 15, 1, 0, 0, 0, tehran)
	assert.Equal(t, time.Date(2024, time.June, 14, 0, 0, 0, 0, time.UTC), TruncateToDay(late))
}

func TestSameCalendarDay(t *testing.T) {
	a := time.Date(2024, time.June, 15, 0, 0, 1, 0, time.UTC)
	b := time.Date(2024, time.June, 15, 23, 59, 59, 0, time.UTC)
	c := time.Date(2024, time.June, 16, 0, 0, 0, 0, time.UTC)

	assert.True(t, SameCalendarDay(a, b))
	assert.False(t, SameCalendarDay(b, c))
}
