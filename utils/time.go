// Package utils provides utility functions for the application.
package utils

import (
	"time"
)

// DateLayoutUS is the wire format for user-entered dates (MM/DD/YYYY)
const DateLayoutUS = "01/02/2006"

// UTCNow returns the current time in UTC
func UTCNow() time.Time {
	return time.Now().UTC()
}

// UTCNowPtr returns a pointer to the current time in UTC
func UTCNowPtr() *time.Time {
	now := UTCNow()
	return &now
}

// UTCNowAdd returns the current UTC time plus the given duration
func UTCNowAdd(d time.Duration) time.Time {
	return UTCNow().Add(d)
}

// UTCNowRFC3339 returns the current UTC time in RFC3339 format
func UTCNowRFC3339() string {
	return UTCNow().Format(time.RFC3339)
}

// TruncateToDay strips the time-of-day component, keeping the calendar date in UTC
func TruncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameCalendarDay reports whether two instants fall on the same UTC calendar day
func SameCalendarDay(a, b time.Time) bool {
	return TruncateToDay(a).Equal(TruncateToDay(b))
}

// ParseUSDate parses an MM/DD/YYYY date string. time.Parse already rejects
// impossible dates such as 02/30/2024, so a successful parse means a real
// calendar date.
func ParseUSDate(s string) (time.Time, error) {
	return time.Parse(DateLayoutUS, s)
}

// IsValidUSDate reports whether s is a real calendar date in MM/DD/YYYY form
func IsValidUSDate(s string) bool {
	_, err := ParseUSDate(s)
	return err == nil
}
