package config

import "git.sr.ht/~jackmordaunt/tasje/internal/document"

// CopyDef is a single entry of a `files`/`extraFiles`/`extraResources`
// list: either a bare glob (Simple) or a scoped copy-set (Set).
type CopyDef struct {
	Glob string // set when Set == nil
	Set  *FileSet
}

// FileSet is a scoped copy rooted at From (package root if empty),
// written under To (archive/resource root if empty), filtered by an
// ordered list of positive/negative globs.
type FileSet struct {
	From    string
	To      string
	Filters []string
}

// parseCopyDef interprets a single document value as either a glob string
// or a {from,to,filter} mapping, per the CopyDef tagged union in spec §3.
func parseCopyDef(v document.Value) (CopyDef, bool) {
	if s, ok := document.String(v); ok {
		return CopyDef{Glob: s}, true
	}
	m, ok := document.Map(v)
	if !ok {
		return CopyDef{}, false
	}
	fs := &FileSet{
		From:    stripDotSlash(stringField(m, "from")),
		To:      stripDotSlash(stringField(m, "to")),
		Filters: document.StringList(m["filter"]),
	}
	return CopyDef{Set: fs}, true
}

// parseCopyDefs normalizes a might-be-single list of copy-defs.
func parseCopyDefs(v document.Value) []CopyDef {
	items := document.List(v)
	out := make([]CopyDef, 0, len(items))
	for _, item := range items {
		if cd, ok := parseCopyDef(item); ok {
			out = append(out, cd)
		}
	}
	return out
}

func stringField(m map[string]interface{}, key string) string {
	s, _ := document.String(m[key])
	return s
}

func stripDotSlash(s string) string {
	if len(s) >= 2 && s[0] == '.' && s[1] == '/' {
		return s[2:]
	}
	return s
}
