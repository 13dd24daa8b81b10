package helpers

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ParseDurationStrict parses a Go duration string, additionally accepting a
// whole-day suffix such as "7d".
func ParseDurationStrict(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil || days < 0 {
			return 0, fmt.Errorf("invalid day duration %q", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

// ParseDuration parses a duration string, returns default duration on error.
func ParseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	duration, err := ParseDurationStrict(durationStr)
	if err != nil {
		// The global logger is used since this may run before logging is configured.
		log.Warn().Err(err).Str("durationStr", durationStr).Dur("defaultDuration", defaultDuration).Msg("Failed to parse duration string, using default")
		return defaultDuration
	}
	return duration
}

// HumanizeRemaining renders the time left until a deadline, e.g. "3 days remaining"
// or "1 hour remaining". Non-positive durations render as "Expired".
func HumanizeRemaining(d time.Duration) string {
	if d <= 0 {
		return "Expired"
	}
	days := int(d / (24 * time.Hour))
	if days > 0 {
		return fmt.Sprintf("%d %s remaining", days, plural(days, "day"))
	}
	hours := int(d / time.Hour)
	return fmt.Sprintf("%d %s remaining", hours, plural(hours, "hour"))
}

func plural(n int, word string) string {
	if n > 1 {
		return word + "s"
	}
	return word
}
