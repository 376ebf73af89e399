package enrich

import (
	"regexp"
	"strings"

	"github.com/iWorld-y/intel_radar/app/intel_radar/pkg/textutil"
)

const (
	minQuoteRunes = 20
	maxQuoteRunes = 300
	maxQuotes     = 5
	maxMetrics    = 10
)

var (
	quoteExp  = regexp.MustCompile(`"([^"]+)"|“([^”]+)”`)
	metricExp = regexp.MustCompile(`(?i)(?:[$€£¥]\s?\d[\d,]*(?:\.\d+)?(?:\s?(?:trillion|billion|million|thousand|bn|mn|m|k)\b)?` +
		`|\d[\d,]*(?:\.\d+)?\s?%` +
		`|\d[\d,]*(?:\.\d+)?\s(?:trillion|billion|million|thousand)\b)`)
)

// Quotes returns up to five distinct quoted spans of 20 to 300 characters.
func Quotes(text string) []string {
	var out []string
	seen := map[string]bool{}
	for _, m := range quoteExp.FindAllStringSubmatch(text, -1) {
		q := m[1]
		if q == "" {
			q = m[2]
		}
		q = textutil.NormalizeSpace(q)
		n := textutil.RuneLen(q)
		if n < minQuoteRunes || n > maxQuoteRunes || seen[q] {
			continue
		}
		seen[q] = true
		out = append(out, q)
		if len(out) == maxQuotes {
			break
		}
	}
	return out
}

// Metrics returns up to ten distinct percentages, currency amounts and scaled numbers.
func Metrics(text string) []string {
	var out []string
	seen := map[string]bool{}
	for _, m := range metricExp.FindAllString(text, -1) {
		m = strings.TrimSpace(m)
		key := strings.ToLower(m)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, m)
		if len(out) == maxMetrics {
			break
		}
	}
	return out
}
