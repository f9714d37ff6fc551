package dateutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBeginningOfWeek(t *testing.T) {
	// Wednesday.
	wed := time.Date(2023, time.June, 14, 15, 30, 0, 0, time.UTC)
	monday := BeginningOfWeek(wed)
	require.Equal(t, time.Monday, monday.Weekday())
	require.Equal(t, time.Date(2023, time.June, 12, 0, 0, 0, 0, time.UTC), monday)

	// Sunday belongs to the week starting the previous Monday.
	sun := time.Date(2023, time.June, 18, 1, 0, 0, 0, time.UTC)
	require.Equal(t, monday, BeginningOfWeek(sun))

	// Monday maps to itself.
	require.Equal(t, monday, BeginningOfWeek(monday))
}

func TestEndOfWeek(t *testing.T) {
	wed := time.Date(2023, time.June, 14, 15, 30, 0, 0, time.UTC)
	end := EndOfWeek(wed)
	require.Equal(t, time.Sunday, end.Weekday())
	require.Equal(t, time.Date(2023, time.June, 18, 23, 59, 59, 0, time.UTC), end)
	require.True(t, end.After(wed))
}

func TestNextHour(t *testing.T) {
	now := time.Date(2023, time.June, 14, 15, 30, 12, 0, time.UTC)
	require.Equal(t, time.Date(2023, time.June, 14, 16, 0, 0, 0, time.UTC), NextHour(now))
}
