package walker

import "testing"

func TestMatcherLastMatchWins(t *testing.T) {
	tests := []struct {
		Name    string
		Globs   []string
		Path    string
		Matched bool
	}{
		{
			Name:    "simple positive",
			Globs:   []string{"**/*.go"},
			Path:    "pkg/file.go",
			Matched: true,
		},
		{
			Name:    "no match",
			Globs:   []string{"**/*.go"},
			Path:    "pkg/file.rs",
			Matched: false,
		},
		{
			Name:    "negative re-excludes",
			Globs:   []string{"**/*", "!**/*.md"},
			Path:    "README.md",
			Matched: false,
		},
		{
			Name:    "later positive re-includes",
			Globs:   []string{"**/*", "!**/node_modules/**", "node_modules/keep-me/**"},
			Path:    "node_modules/keep-me/index.js",
			Matched: true,
		},
		{
			Name:    "excluded stays excluded without re-include",
			Globs:   []string{"**/*", "!**/node_modules/**"},
			Path:    "node_modules/other/index.js",
			Matched: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			m, err := NewMatcher(tt.Globs)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := m.Match(tt.Path); got != tt.Matched {
				t.Fatalf("got %v, want %v", got, tt.Matched)
			}
		})
	}
}
