// Package walker selects files from a root directory according to an
// ordered list of positive/negative globs, and streams them as the
// (source, dest, must_unpack) triples the packer writes into the
// archive and loose trees.
package walker

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher decides, per path, whether it is selected by an ordered list
// of glob patterns using last-match-wins semantics: the last pattern in
// the list that matches a given path determines inclusion (positive) or
// exclusion (negative, prefixed with "!"). A path matched by nothing is
// excluded.
type Matcher struct {
	patterns []pattern
}

type pattern struct {
	glob     string
	negative bool
}

// NewMatcher compiles an ordered glob list into a Matcher.
func NewMatcher(globs []string) (*Matcher, error) {
	pats := make([]pattern, 0, len(globs))
	for _, g := range globs {
		negative := strings.HasPrefix(g, "!")
		glob := g
		if negative {
			glob = g[1:]
		}
		if !doublestar.ValidatePattern(glob) {
			return nil, fmt.Errorf("invalid glob pattern %q", g)
		}
		pats = append(pats, pattern{glob: glob, negative: negative})
	}
	return &Matcher{patterns: pats}, nil
}

// Match reports whether path is selected: true if the last pattern to
// match it in list order is positive, false if negative or if nothing
// matched at all.
func (m *Matcher) Match(path string) bool {
	matched := false
	included := false
	for _, p := range m.patterns {
		ok, err := doublestar.Match(p.glob, path)
		if err != nil || !ok {
			continue
		}
		matched = true
		included = !p.negative
	}
	return matched && included
}
