package common

import (
	"math"
	"strconv"
	"strings"
)

// FirstContained returns the first of subs (in argument order) that occurs in s.
// Matching is case-sensitive substring containment.
func FirstContained(s string, subs ...string) (string, bool) {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return sub, true
		}
	}
	return "", false
}

// ParseNumber leniently converts a numeric string. Surrounding whitespace is
// ignored; empty, NaN and infinite inputs are rejected.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
