// Package normalize holds the canonical-form rules for user-entered
// identifiers. Usernames and emails are stored folded (lowercase, combining
// diacritics stripped) so that lookups, uniqueness checks, and prefix search
// are case- and accent-insensitive without collation tricks.
package normalize

import (
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
)

// Username folds to the canonical form. The folded form is the uniqueness
// key and the sort key for prefix search.
func Username(s string) string {
	return text.Fold(s)
}

// Email folds to the canonical form.
func Email(s string) string {
	return text.Fold(s)
}

// QueryParam trims whitespace from a raw query-string value.
func QueryParam(s string) string {
	return strings.TrimSpace(s)
}
