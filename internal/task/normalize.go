package task

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxTitleLen is the longest accepted title, in runes, after trimming.
const MaxTitleLen = 80

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// NormalizeTitle trims raw and reports whether the result is a valid title:
// non-empty and at most MaxTitleLen runes.
func NormalizeTitle(raw string) (string, bool) {
	title := strings.TrimSpace(raw)
	if title == "" || utf8.RuneCountInString(title) > MaxTitleLen {
		return "", false
	}
	return title, true
}

// NormalizeDate validates raw as a real YYYY-MM-DD calendar date. Empty input
// and any malformed or impossible date yield "" (no due date); this never
// fails, callers treat "" as absence.
func NormalizeDate(raw string) string {
	if raw == "" {
		return ""
	}
	if !datePattern.MatchString(raw) {
		return ""
	}
	// time.Parse rejects out-of-range components such as 2024-02-30.
	if _, err := time.Parse("2006-01-02", raw); err != nil {
		return ""
	}
	return raw
}
