package tasklist

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FormatMinutes renders an estimate as "1h 30m" or "45m".
func FormatMinutes(minutes int) string {
	h, m := minutes/60, minutes%60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

// ParseMinutes accepts a bare number of minutes ("90") or a duration
// with hour and minute units ("45m", "1h30m", "2h", "1.5h"). Durations
// must come to a whole number of minutes.
func ParseMinutes(s string) (int, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), " ", "")
	if s == "" {
		return 0, fmt.Errorf("%w: empty estimate", ErrInvalidInput)
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("%w: estimate must not be negative", ErrInvalidInput)
		}
		return n, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil || strings.ContainsAny(s, "sµnu") {
		return 0, fmt.Errorf("%w: invalid estimate %q (use 90, 45m or 1h30m)", ErrInvalidInput, s)
	}
	if d < 0 {
		return 0, fmt.Errorf("%w: estimate must not be negative", ErrInvalidInput)
	}
	if d%time.Minute != 0 {
		return 0, fmt.Errorf("%w: estimate %q is not a whole number of minutes", ErrInvalidInput, s)
	}
	return int(d / time.Minute), nil
}
