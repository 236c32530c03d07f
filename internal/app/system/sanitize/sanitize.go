// Package sanitize strips markup from user-supplied free text before it is
// persisted. Tournament names, games, and prize descriptions come straight
// from client input and are later rendered by other clients.
package sanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Text removes all HTML from s and trims surrounding whitespace.
func Text(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}
