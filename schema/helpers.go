package schema

import (
	"fmt"
	"time"
)

// DayLayout is the key format for calendar days.
const DayLayout = "2006-01-02"

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayKey formats the UTC calendar day of t.
func DayKey(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

// ParseDay parses a YYYY-MM-DD string into a UTC day.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DayLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day '%s'. must be YYYY-MM-DD: %w", s, err)
	}
	return t, nil
}

// SameDay reports whether a and b fall on the same UTC calendar day.
func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}

// WindowDays returns the n calendar days ending at asOf, oldest first.
func WindowDays(asOf time.Time, n int) []time.Time {
	if n <= 0 {
		return nil
	}
	end := Day(asOf)
	days := make([]time.Time, n)
	for i := range n {
		days[i] = end.AddDate(0, 0, i-(n-1))
	}
	return days
}
