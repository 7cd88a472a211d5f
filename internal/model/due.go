package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Layouts accepted by ParseDue for absolute times, in local time.
const (
	DueLayout     = "2006-01-02 15:04"
	DueTimeLayout = "15:04"
)

// ParseDue turns user input into a due time relative to now. It accepts
// a bare number of minutes ("45"), a duration with optional plus sign
// ("+1h30m"), RFC 3339, "YYYY-MM-DD HH:MM" or "HH:MM" (today, local).
func ParseDue(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("due time is empty")
	}

	if n, err := strconv.Atoi(s); err == nil {
		return now.Add(time.Duration(n) * time.Minute), nil
	}
	if d, err := time.ParseDuration(strings.TrimPrefix(s, "+")); err == nil {
		return now.Add(d), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(DueLayout, s, now.Location()); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation(DueTimeLayout, s, now.Location()); err == nil {
		y, m, d := now.Date()
		return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, now.Location()), nil
	}
	return time.Time{}, fmt.Errorf("unrecognised due time %q: use minutes, +1h30m, %q or RFC 3339", s, DueLayout)
}

// FormatCountdown renders the time left until due as "due in 1h05m",
// or "OVERDUE" once due has passed.
func FormatCountdown(due, now time.Time) string {
	d := due.Sub(now)
	if d < 0 {
		return "OVERDUE"
	}
	d = d.Round(time.Minute)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	switch {
	case h >= 24:
		return fmt.Sprintf("due in %dd%02dh", h/24, h%24)
	case h > 0:
		return fmt.Sprintf("due in %dh%02dm", h, m)
	default:
		return fmt.Sprintf("due in %dm", m)
	}
}
