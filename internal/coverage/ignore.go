package coverage

import (
	"strconv"
	"strings"
)

// Ignore matches status codes excluded from coverage accounting.
// Patterns are exact codes ("429") or class prefixes ("5XX"). Unknown
// tokens are dropped silently.
type Ignore struct {
	tokens   []string
	codes    map[int]bool
	prefixes map[byte]bool
}

// DefaultIgnorePatterns excludes rate limiting and server errors, the
// statuses a fuzz run trips constantly without saying anything about
// the spec.
var DefaultIgnorePatterns = []string{"429", "5XX"}

// Flatten splits comma- or space-separated pattern lists into
// individual tokens.
func Flatten(patterns []string) []string {
	var out []string
	for _, item := range patterns {
		for _, part := range strings.Fields(strings.ReplaceAll(item, ",", " ")) {
			out = append(out, part)
		}
	}
	return out
}

func NewIgnore(patterns []string) *Ignore {
	ig := &Ignore{
		codes:    make(map[int]bool),
		prefixes: make(map[byte]bool),
	}
	for _, token := range Flatten(patterns) {
		ig.tokens = append(ig.tokens, token)
		if code, err := strconv.Atoi(token); err == nil {
			ig.codes[code] = true
			continue
		}
		if len(token) == 3 && token[0] >= '0' && token[0] <= '9' && token[1:] == "XX" {
			ig.prefixes[token[0]] = true
		}
	}
	return ig
}

// Tokens returns the flattened patterns, for display.
func (ig *Ignore) Tokens() []string { return ig.tokens }

func (ig *Ignore) Ignored(status int) bool {
	if ig.codes[status] {
		return true
	}
	s := strconv.Itoa(status)
	return len(s) == 3 && ig.prefixes[s[0]]
}
