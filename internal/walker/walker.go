package walker

import (
	"os"
	"path/filepath"

	"git.sr.ht/~jackmordaunt/tasje/internal/config"
	"git.sr.ht/~jackmordaunt/tasje/internal/environment"
	"git.sr.ht/~jackmordaunt/tasje/internal/errs"
	"git.sr.ht/~jackmordaunt/tasje/internal/template"
)

// Triple is one selected file: an absolute source path, a forward-
// slashed destination path relative to the archive or output root, and
// whether it must be excluded from the asar and shipped loose.
type Triple struct {
	Source     string
	Dest       string
	MustUnpack bool
}

// Split partitions a CopyDef list into the global-glob bucket (every
// Simple entry) and the per-Set bucket (every Set entry), dropping
// degenerate sets (no filter and no "to") since those belong in the
// global bucket instead.
func Split(defs []config.CopyDef) (globs []string, sets []config.FileSet) {
	for _, cd := range defs {
		if cd.Set == nil {
			globs = append(globs, cd.Glob)
			continue
		}
		if len(cd.Set.Filters) == 0 && cd.Set.To == "" {
			continue
		}
		sets = append(sets, *cd.Set)
	}
	return globs, sets
}

// Walk produces the ordered sequence of triples for one FileSelection:
// first the global-glob bucket walked from root, then each Set walked
// from root/from. unpackGlobs, if non-empty, marks matching global-scope
// paths as MustUnpack.
func Walk(root string, globs []string, sets []config.FileSet, unpackGlobs []string, env environment.Environment) ([]Triple, error) {
	globs, err := expandAll(globs, env)
	if err != nil {
		return nil, err
	}
	globalMatcher, err := NewMatcher(globs)
	if err != nil {
		return nil, errs.New(errs.IO, err)
	}

	var unpackMatcher *Matcher
	if len(unpackGlobs) > 0 {
		unpackGlobs, err = expandAll(unpackGlobs, env)
		if err != nil {
			return nil, err
		}
		unpackMatcher, err = NewMatcher(unpackGlobs)
		if err != nil {
			return nil, errs.New(errs.IO, err)
		}
	}

	var triples []Triple

	globalTriples, err := walkScope(root, "", globalMatcher, unpackMatcher)
	if err != nil {
		return nil, err
	}
	triples = append(triples, globalTriples...)

	for _, set := range sets {
		filters := set.Filters
		if allNegative(filters) {
			filters = append([]string{"**/*"}, filters...)
		}
		filters, err = expandAll(filters, env)
		if err != nil {
			return nil, err
		}
		matcher, err := NewMatcher(filters)
		if err != nil {
			return nil, errs.New(errs.IO, err)
		}

		setRoot := filepath.Join(root, set.From)
		setTriples, err := walkScope(setRoot, set.To, matcher, nil)
		if err != nil {
			return nil, err
		}
		triples = append(triples, setTriples...)
	}

	return triples, nil
}

// allNegative reports whether no filter is positive; an empty filter
// list counts, so a set without filters selects its whole tree.
func allNegative(filters []string) bool {
	for _, f := range filters {
		if len(f) == 0 || f[0] != '!' {
			return false
		}
	}
	return true
}

func expandAll(globs []string, env environment.Environment) ([]string, error) {
	out := make([]string, len(globs))
	for i, g := range globs {
		negative := len(g) > 0 && g[0] == '!'
		body := g
		if negative {
			body = g[1:]
		}
		expanded, err := template.Expand(body, env)
		if err != nil {
			return nil, err
		}
		if negative {
			expanded = "!" + expanded
		}
		out[i] = expanded
	}
	return out, nil
}

// walkScope walks scopeRoot recursively, following symlinks and
// deduplicating by canonical directory path to terminate symlink loops,
// emitting every regular file accepted by matcher. Destination paths are
// scopeRoot-relative, forward-slashed, and prefixed with destPrefix
// when set.
func walkScope(scopeRoot, destPrefix string, matcher, unpackMatcher *Matcher) ([]Triple, error) {
	info, err := os.Stat(scopeRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errs.WithPath(errs.IO, scopeRoot, err)
	}
	if !info.IsDir() {
		return nil, nil
	}

	seen := map[string]bool{}
	var triples []Triple
	var visit func(dir string) error
	visit = func(dir string) error {
		real, err := filepath.EvalSymlinks(dir)
		if err != nil {
			real = dir
		}
		if seen[real] {
			return nil
		}
		seen[real] = true

		entries, err := os.ReadDir(dir)
		if err != nil {
			return errs.WithPath(errs.IO, dir, err)
		}
		for _, entry := range entries {
			full := filepath.Join(dir, entry.Name())
			entryInfo, err := os.Stat(full)
			if err != nil {
				return errs.WithPath(errs.IO, full, err)
			}
			if entryInfo.IsDir() {
				if err := visit(full); err != nil {
					return err
				}
				continue
			}
			rel, err := filepath.Rel(scopeRoot, full)
			if err != nil {
				return errs.WithPath(errs.IO, full, err)
			}
			rel = filepath.ToSlash(rel)
			if !matcher.Match(rel) {
				continue
			}
			dest := rel
			if destPrefix != "" {
				dest = destPrefix + "/" + rel
			}
			triples = append(triples, Triple{
				Source:     full,
				Dest:       dest,
				MustUnpack: unpackMatcher != nil && unpackMatcher.Match(rel),
			})
		}
		return nil
	}
	if err := visit(scopeRoot); err != nil {
		return nil, err
	}
	return triples, nil
}
