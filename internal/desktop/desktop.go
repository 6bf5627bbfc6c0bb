// Package desktop emits freedesktop.org .desktop launcher entries, per
// spec §4.5.
package desktop

import (
	"fmt"
	"sort"
	"strings"

	"git.sr.ht/~jackmordaunt/tasje/internal/config"
)

// Entry holds everything needed to render one .desktop file. The field
// order mirrors the emission order; Desktop is the only block whose
// line order is unspecified by contract.
type Entry struct {
	Name           string
	ExecutableName string
	IconName       string
	Desktop        map[string]string
	Comment        string
	Protocols      []config.ProtocolAssociation
	FileAssocs     []config.FileAssociation
	Categories     []string
}

// Render produces the full text of the .desktop file.
func Render(e Entry) string {
	var b strings.Builder

	b.WriteString("[Desktop Entry]\n")
	fmt.Fprintf(&b, "Name=%s\n", e.Name)
	fmt.Fprintf(&b, "Exec=/usr/bin/%s %%U\n", e.ExecutableName)
	b.WriteString("Terminal=false\n")
	b.WriteString("Type=Application\n")
	fmt.Fprintf(&b, "Icon=%s\n", e.IconName)

	for _, key := range sortedKeys(e.Desktop) {
		fmt.Fprintf(&b, "%s=%s\n", key, e.Desktop[key])
	}

	if e.Comment != "" {
		fmt.Fprintf(&b, "Comment=%s\n", e.Comment)
	}

	if mime := mimeTypes(e.Protocols, e.FileAssocs); len(mime) > 0 {
		fmt.Fprintf(&b, "MimeType=%s\n", strings.Join(mime, ";"))
	}

	if len(e.Categories) > 0 {
		fmt.Fprintf(&b, "Categories=%s\n", strings.Join(e.Categories, ";"))
	}

	return b.String()
}

// sortedKeys is used only to make test output deterministic; the
// contract leaves the desktop-map line order unspecified.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func mimeTypes(protocols []config.ProtocolAssociation, assocs []config.FileAssociation) []string {
	var out []string
	for _, p := range protocols {
		for _, scheme := range p.Schemes {
			out = append(out, "x-scheme-handler/"+scheme)
		}
	}
	for _, a := range assocs {
		if a.MimeType != "" {
			out = append(out, a.MimeType)
		}
	}
	return out
}
