package textutil

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ParseTime detects the layout of a provider or model supplied date.
// Dates without a zone are read as UTC. Unknown formats yield the zero time.
func ParseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}
