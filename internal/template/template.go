// Package template expands the small variable language used inside glob
// strings: ${arch}, ${platform} and ${env.NAME}.
package template

import (
	"fmt"
	"os"
	"strings"

	"git.sr.ht/~jackmordaunt/tasje/internal/environment"
	"git.sr.ht/~jackmordaunt/tasje/internal/errs"
)

// Expand substitutes every ${...} reference in s against env and the
// process environment. Any reference other than arch, platform, or
// env.NAME fails with UnknownTemplateVariable.
func Expand(s string, env environment.Environment) (string, error) {
	var out strings.Builder
	i := 0
	for i < len(s) {
		start := strings.Index(s[i:], "${")
		if start < 0 {
			out.WriteString(s[i:])
			break
		}
		start += i
		out.WriteString(s[i:start])

		end := strings.IndexByte(s[start:], '}')
		if end < 0 {
			return "", errs.New(errs.UnknownTemplateVariable, fmt.Errorf("unterminated variable reference in %q", s))
		}
		end += start

		name := s[start+2 : end]
		value, err := resolve(name, env)
		if err != nil {
			return "", err
		}
		out.WriteString(value)
		i = end + 1
	}
	return out.String(), nil
}

func resolve(name string, env environment.Environment) (string, error) {
	switch {
	case name == "arch":
		return env.Architecture.RuntimeName(), nil
	case name == "platform":
		return env.Platform.RuntimeName(), nil
	case strings.HasPrefix(name, "env."):
		return os.Getenv(strings.TrimPrefix(name, "env.")), nil
	default:
		return "", errs.New(errs.UnknownTemplateVariable, fmt.Errorf("unknown template variable %q", name))
	}
}
