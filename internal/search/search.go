// Package search implements the case-insensitive matching used to filter the
// medicine catalog.
package search

import (
	"strings"

	"golang.org/x/text/cases"
)

// Fold returns the case-folded form of s with surrounding space removed.
func Fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// Match reports whether query occurs in any of fields, ignoring case.
// An empty query matches everything.
func Match(query string, fields ...string) bool {
	q := Fold(query)
	if q == "" {
		return true
	}
	// A Caser keeps state between calls and must not be shared.
	folder := cases.Fold()
	for _, f := range fields {
		if strings.Contains(folder.String(f), q) {
			return true
		}
	}
	return false
}
