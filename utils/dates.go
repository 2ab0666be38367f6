// utils/dates.go
package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

func BeginningOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// TimeOfDay returns the wall-clock offset of t from its own midnight
func TimeOfDay(t time.Time) time.Duration {
	h, m, s := t.Clock()
	return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second + time.Duration(t.Nanosecond())
}

// ParseClock parses "15:04" or "15:04:05" into an offset from midnight
func ParseClock(value string) (time.Duration, error) {
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return TimeOfDay(t), nil
		}
	}
	return 0, fmt.Errorf("invalid clock time %q", value)
}

// FormatClock renders an offset from midnight as "15:04"
func FormatClock(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d/time.Hour), int(d%time.Hour/time.Minute))
}

// ParseUTCOffset parses "+05:30", "+0530", "-08", "Z" or "UTC" into seconds
// east of UTC. An empty offset is UTC.
func ParseUTCOffset(offset string) (int, error) {
	s := strings.TrimSpace(offset)
	if s == "" || s == "Z" || s == "UTC" {
		return 0, nil
	}
	sign := 1
	switch s[0] {
	case '+':
		s = s[1:]
	case '-':
		sign = -1
		s = s[1:]
	default:
		return 0, fmt.Errorf("invalid zone offset %q", offset)
	}
	hh, mm, found := strings.Cut(s, ":")
	if !found && len(s) == 4 {
		hh, mm = s[:2], s[2:]
	}
	h, err := strconv.Atoi(hh)
	if err != nil || h < 0 || h > 14 || strings.ContainsAny(hh, "+-") {
		return 0, fmt.Errorf("invalid zone offset %q", offset)
	}
	m := 0
	if mm != "" {
		m, err = strconv.Atoi(mm)
		if err != nil || m < 0 || m > 59 || strings.ContainsAny(mm, "+-") {
			return 0, fmt.Errorf("invalid zone offset %q", offset)
		}
	}
	return sign * (h*3600 + m*60), nil
}
