// Package textnorm normalizes known/target text before it is compared.
package textnorm

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Lower lowercases NFC-normalized text.
// A new Caser is created per call because Casers are stateful.
func Lower(s string) string {
	return cases.Lower(language.Und).String(norm.NFC.String(s))
}

// CollapseSpace trims s and replaces every run of whitespace with one space.
func CollapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Fold lowercases, trims and collapses internal whitespace.
func Fold(s string) string {
	return CollapseSpace(Lower(s))
}
