// Package entity defines the domain models for the ingest feature.
package entity

import "strings"

// CodeWidth is the fixed width of a normalized instrument code.
const CodeWidth = 6

// Symbol is one tradable instrument in the symbol universe.
// Empty string fields mean "unknown" and never overwrite stored values.
type Symbol struct {
	Code         string // 6-digit zero-padded instrument code
	Name         string // display name
	Market       string // e.g. "KOSPI", "KOSDAQ"
	DARTCorpCode string // disclosure-provider corporate identifier
	ListedDate   string // YYYYMMDD
}

// StockInfo is what a quote-provider lookup reports about one instrument.
type StockInfo struct {
	Name       string
	Market     string
	ListedDate string // YYYYMMDD
}

// Merge copies the non-empty fields of info onto s.
func (s *Symbol) Merge(info StockInfo) {
	if info.Market != "" {
		s.Market = info.Market
	}
	if info.ListedDate != "" {
		s.ListedDate = info.ListedDate
	}
	if info.Name != "" {
		s.Name = info.Name
	}
}

// NormalizeCode keeps the digits of value and left-pads them to CodeWidth.
// It reports false when value has no digits or more than CodeWidth of them.
func NormalizeCode(value string) (string, bool) {
	var b strings.Builder
	for _, r := range strings.TrimSpace(value) {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" || len(digits) > CodeWidth {
		return "", false
	}
	return strings.Repeat("0", CodeWidth-len(digits)) + digits, true
}

// NormalizeCodes normalizes and de-duplicates values, keeping first-seen
// order. Values that do not normalize are dropped.
func NormalizeCodes(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		code, ok := NormalizeCode(v)
		if !ok {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out
}
