// Package dates converts between the date forms used by providers, the store
// and the ingest engine.
package dates

import (
	"regexp"
	"strings"
	"time"
)

const (
	// Compact is the 8-digit form used for provider queries and price windows.
	Compact = "20060102"
	// ISO is the form persisted in the store.
	ISO = "2006-01-02"
)

var compactRe = regexp.MustCompile(`^\d{8}$`)

// IsCompact reports whether s is an eight-digit YYYYMMDD calendar date.
func IsCompact(s string) bool {
	if !compactRe.MatchString(s) {
		return false
	}
	_, err := time.Parse(Compact, s)
	return err == nil
}

// ToCompact normalizes YYYYMMDD, YYYY-MM-DD, YYYY/MM/DD or RFC3339 input to
// YYYYMMDD. It returns "" when the value is empty or unparseable.
func ToCompact(value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return ""
	}
	if IsCompact(raw) {
		return raw
	}
	for _, layout := range []string{ISO, "2006/01/02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Format(Compact)
		}
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.Format(Compact)
	}
	return ""
}

// ToISO normalizes any input accepted by ToCompact to YYYY-MM-DD.
func ToISO(value string) string {
	ymd := ToCompact(value)
	if ymd == "" {
		return ""
	}
	return ymd[:4] + "-" + ymd[4:6] + "-" + ymd[6:8]
}

// ParseCompact parses an 8-digit date at UTC midnight.
func ParseCompact(s string) (time.Time, error) {
	return time.Parse(Compact, s)
}

// FormatCompact formats t as YYYYMMDD.
func FormatCompact(t time.Time) string {
	return t.Format(Compact)
}

// Today truncates now to its UTC calendar day.
func Today(now time.Time) time.Time {
	u := now.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
