// Package timex parses the compact duration strings used in configuration:
// a positive integer followed by a unit suffix "m" (minutes), "h" (hours)
// or "d" (days), e.g. "15m", "2h", "3d". Anything else is rejected.
package timex

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var durationRe = regexp.MustCompile(`^(\d+)([mhd])$`)

// ParseDuration converts a duration string to a time.Duration.
// The format is strict: any string not matching ^\d+[mhd]$ (case-insensitive)
// is an error. Configuration loading treats that error as fatal.
func ParseDuration(s string) (time.Duration, error) {
	m := durationRe.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		return 0, fmt.Errorf("invalid duration %q: want digits followed by m, h or d", s)
	}

	value, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}

	switch m[2] {
	case "m":
		return time.Duration(value) * time.Minute, nil
	case "h":
		return time.Duration(value) * time.Hour, nil
	default: // "d"
		return time.Duration(value) * 24 * time.Hour, nil
	}
}

// Milliseconds returns d in whole milliseconds, the base unit for cookie
// max-age computation.
func Milliseconds(d time.Duration) int64 {
	return d.Milliseconds()
}
