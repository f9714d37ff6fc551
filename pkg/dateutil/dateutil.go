package dateutil

import (
	"time"
)

// BeginningOfWeek returns Monday 00:00:00 of the week containing t, in the
// location of t.
func BeginningOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		// time.Sunday is 0, but our weeks end on Sunday.
		weekday = 7
	}

	monday := t.AddDate(0, 0, 1-weekday)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfWeek returns Sunday 23:59:59 of the week containing t.
func EndOfWeek(t time.Time) time.Time {
	sunday := BeginningOfWeek(t).AddDate(0, 0, 6)
	return time.Date(sunday.Year(), sunday.Month(), sunday.Day(), 23, 59, 59, 0, t.Location())
}

func NextHour(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location()).Add(time.Hour)
}
