package api

import (
	"net/http"
	"strconv"

	"github.com/riftstats/riftstats/internal/stats"
)

// parseLimit parses and validates a limit parameter with default and max values
func parseLimit(r *http.Request, defaultLimit, maxLimit int) int {
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= maxLimit {
			return parsed
		}
	}
	return defaultLimit
}

// parsePeriod returns the period filter, defaulting to all time. Unknown
// values pass through unchanged; the stats layer treats them as no filter.
func parsePeriod(r *http.Request) string {
	if p := r.URL.Query().Get("period"); p != "" {
		return p
	}
	return stats.PeriodAll
}

// parseMode returns the mode filter, defaulting to all modes
func parseMode(r *http.Request) string {
	if m := r.URL.Query().Get("mode"); m != "" {
		return m
	}
	return stats.ModeAll
}
