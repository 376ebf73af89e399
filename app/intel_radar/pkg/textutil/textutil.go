// Package textutil holds the text matching helpers shared by the pipeline stages.
package textutil

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

var (
	spaceRun   = regexp.MustCompile(`\s+`)
	hashtagExp = regexp.MustCompile(`#([\p{L}\p{N}_]{2,})`)
)

// ContainsFold reports whether substr occurs in s, ignoring case.
func ContainsFold(s, substr string) bool {
	if substr == "" {
		return false
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// ContainsTerm reports whether term occurs in s, ignoring case, and is not
// glued to surrounding letters or digits. "GM" matches "GM recalls" but not "segment".
func ContainsTerm(s, term string) bool {
	term = strings.TrimSpace(term)
	if term == "" {
		return false
	}
	return CountTerm(s, term) > 0
}

// inflections may follow a term without breaking its word boundary.
var inflections = []string{"s", "es", "ed", "d", "ing", "'s"}

// CountTerm counts the word-bounded, case-insensitive occurrences of term in
// s. A plain inflection suffix ("recalls", "hacked") still counts.
func CountTerm(s, term string) int {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return 0
	}
	hay := strings.ToLower(s)
	count := 0
	for offset := 0; offset < len(hay); {
		idx := strings.Index(hay[offset:], term)
		if idx < 0 {
			break
		}
		start := offset + idx
		end := start + len(term)
		if boundaryBefore(hay, start) && inflectedBoundary(hay, end) {
			count++
		}
		offset = start + 1
	}
	return count
}

// AnyTerm returns the first term found in s, or "".
func AnyTerm(s string, terms []string) string {
	for _, t := range terms {
		if ContainsTerm(s, t) {
			return t
		}
	}
	return ""
}

// MatchedTerms returns every term found in s, in terms order.
func MatchedTerms(s string, terms []string) []string {
	var out []string
	for _, t := range terms {
		if ContainsTerm(s, t) {
			out = append(out, t)
		}
	}
	return out
}

func boundaryBefore(s string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return !isWordRune(r)
}

func boundaryAfter(s string, i int) bool {
	if i >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return !isWordRune(r)
}

func inflectedBoundary(s string, i int) bool {
	if boundaryAfter(s, i) {
		return true
	}
	for _, suf := range inflections {
		if strings.HasPrefix(s[i:], suf) && boundaryAfter(s, i+len(suf)) {
			return true
		}
	}
	return false
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// NormalizeSpace collapses whitespace runs and trims.
func NormalizeSpace(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

// StripHTML returns the visible text of an HTML fragment. Plain text passes through.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return NormalizeSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return NormalizeSpace(s)
	}
	doc.Find("script, style, noscript").Remove()
	return NormalizeSpace(doc.Text())
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}

// RuneLen is the character length of s.
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// Hashtags returns the distinct lower-cased hashtags in s, in order of appearance.
func Hashtags(s string) []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range hashtagExp.FindAllStringSubmatch(s, -1) {
		tag := strings.ToLower(m[1])
		if seen[tag] {
			continue
		}
		seen[tag] = true
		out = append(out, tag)
	}
	return out
}

// HasWordToken reports whether s contains a run of at least minLen letters.
func HasWordToken(s string, minLen int) bool {
	run := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			run++
			if run >= minLen {
				return true
			}
			continue
		}
		run = 0
	}
	return false
}
