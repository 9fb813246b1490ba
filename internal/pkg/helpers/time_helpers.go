package helpers

import (
	"time"

	"github.com/rs/zerolog/log"
)

// ParseDuration parses a duration string, returning fallback on error
func ParseDuration(durationStr string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		// the configured logger may not exist yet, so use the global one
		log.Warn().Err(err).Str("durationStr", durationStr).Dur("fallback", fallback).Msg("Failed to parse duration string, using fallback")
		return fallback
	}
	return duration
}

// FormatSchedule renders a scheduled time in loc the way notifications show it,
// e.g. "Monday, January 2, 2006 at 03:04 PM"
func FormatSchedule(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format("Monday, January 2, 2006 at 03:04 PM")
}
