// Package manifest models the package manifest (package.json-shaped
// document) and the App that binds it to a resolved build Config and a
// project root, per spec §3.
package manifest

import (
	"fmt"
	"path/filepath"
	"strings"

	"git.sr.ht/~jackmordaunt/tasje/internal/config"
	"git.sr.ht/~jackmordaunt/tasje/internal/document"
	"git.sr.ht/~jackmordaunt/tasje/internal/environment"
	"git.sr.ht/~jackmordaunt/tasje/internal/errs"
)

// Package is the parsed manifest plus the verbatim document it came
// from, retained so a patched copy can be emitted later with
// extra_metadata shallow-merged on top.
type Package struct {
	Value  document.Value
	Name   string
	Common config.CommonOverridable
}

// Parse builds a Package from a decoded manifest document.
func Parse(v document.Value) (Package, error) {
	m, ok := document.Map(v)
	if !ok {
		return Package{}, errs.New(errs.ConfigParse, fmt.Errorf("manifest is not an object"))
	}
	name, _ := document.String(m["name"])
	if name == "" {
		return Package{}, errs.New(errs.ConfigParse, fmt.Errorf("manifest is missing required field \"name\""))
	}
	return Package{
		Value:  v,
		Name:   name,
		Common: parseManifestCommon(m),
	}, nil
}

func parseManifestCommon(m map[string]interface{}) config.CommonOverridable {
	common := config.CommonOverridable{}
	if s, ok := document.String(m["description"]); ok {
		common.Description = &s
	}
	if s, ok := document.String(m["productName"]); ok {
		common.ProductName = &s
	}
	if s, ok := document.String(m["executableName"]); ok {
		common.ExecutableName = &s
	}
	if s, ok := document.String(m["desktopName"]); ok {
		common.DesktopName = &s
	}
	return common
}

// App binds a Package to a resolved Config and the directory the
// manifest lives in. Constructed once per build and immutable after
// that.
type App struct {
	Package Package
	Config  config.Config
	Root    string
}

// New builds an App from its three parts.
func New(pkg Package, cfg config.Config, root string) App {
	return App{Package: pkg, Config: cfg, Root: root}
}

// commonField resolves one CommonOverridable field through the
// platform → base → manifest chain, returning the first non-nil
// pointer.
func (a *App) commonField(platform environment.Platform, pick func(config.CommonOverridable) *string) *string {
	var base *config.BaseConfig
	switch platform {
	case environment.Windows:
		base = &a.Config.Win
	case environment.Darwin:
		base = &a.Config.Mac
	default:
		base = &a.Config.Linux
	}
	if v := pick(base.Common); v != nil {
		return v
	}
	if v := pick(a.Config.Base.Common); v != nil {
		return v
	}
	return pick(a.Package.Common)
}

// Description returns the resolved description, or "" if absent
// anywhere in the chain.
func (a *App) Description(platform environment.Platform) string {
	if v := a.commonField(platform, func(c config.CommonOverridable) *string { return c.Description }); v != nil {
		return *v
	}
	return ""
}

// ExecutableName returns the resolved executable name, falling back to
// the filesafe form of the package name.
func (a *App) ExecutableName(platform environment.Platform) (string, error) {
	if v := a.commonField(platform, func(c config.CommonOverridable) *string { return c.ExecutableName }); v != nil {
		return FilesafeName(*v)
	}
	return FilesafeName(a.Package.Name)
}

// ProductName returns the resolved product name, falling back to the
// raw package name.
func (a *App) ProductName(platform environment.Platform) string {
	if v := a.commonField(platform, func(c config.CommonOverridable) *string { return c.ProductName }); v != nil {
		return *v
	}
	return a.Package.Name
}

// DesktopName returns the resolved desktop file name, falling back to
// the filesafe package name with ".desktop" appended.
func (a *App) DesktopName(platform environment.Platform) (string, error) {
	if v := a.commonField(platform, func(c config.CommonOverridable) *string { return c.DesktopName }); v != nil {
		return *v, nil
	}
	name, err := FilesafeName(a.Package.Name)
	if err != nil {
		return "", err
	}
	return name + ".desktop", nil
}

// IconLocations maps the Config's icon_locations() to absolute paths
// under root.
func (a *App) IconLocations() []string {
	locations := a.Config.IconLocations()
	out := make([]string, len(locations))
	for i, p := range locations {
		out[i] = filepath.Join(a.Root, p)
	}
	return out
}

// PatchedPackage returns the manifest document with the platform's
// effective extra_metadata shallow-merged on top. With no
// extra_metadata the original document is returned unchanged.
func (a *App) PatchedPackage(platform environment.Platform) (document.Value, error) {
	patch, ok := document.Map(a.Config.ExtraMetadata(platform))
	if !ok || len(patch) == 0 {
		return a.Package.Value, nil
	}
	base, ok := document.Map(a.Package.Value)
	if !ok {
		return a.Package.Value, nil
	}
	return document.ShallowMerge(base, patch)
}

// filesafeAllowed reports whether r belongs to the filesafe alphabet:
// letters, digits, underscore, hyphen.
func filesafeAllowed(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '_' || r == '-':
		return true
	default:
		return false
	}
}

// FilesafeName normalizes a package name into one safe to use as an
// executable or file name: '@' is stripped, '/' becomes '-', and any
// remaining character outside [A-Za-z0-9_-] fails the operation.
func FilesafeName(name string) (string, error) {
	replaced := strings.NewReplacer("@", "", "/", "-").Replace(name)
	for _, r := range replaced {
		if !filesafeAllowed(r) {
			return "", errs.New(errs.InvalidPackageName, fmt.Errorf("package name %q contains invalid character %q", name, r))
		}
	}
	if replaced == "" {
		return "", errs.New(errs.InvalidPackageName, fmt.Errorf("package name %q normalizes to empty string", name))
	}
	return replaced, nil
}
