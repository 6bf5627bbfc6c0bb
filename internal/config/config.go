// Package config models the build configuration: layered per-platform
// overrides, polymorphic singular-or-list fields collapsed to slices at
// parse time, and copy-set definitions. See spec §3-4.1.
package config

import (
	"git.sr.ht/~jackmordaunt/tasje/internal/document"
	"git.sr.ht/~jackmordaunt/tasje/internal/environment"
)

// CommonOverridable holds the string-valued fields resolved through the
// platform → base → manifest chain (spec §3).
type CommonOverridable struct {
	Description    *string
	ExecutableName *string
	ProductName    *string
	DesktopName    *string
}

func parseCommon(m map[string]interface{}) CommonOverridable {
	return CommonOverridable{
		Description:    optionalString(m, "description"),
		ExecutableName: optionalString(m, "executableName"),
		ProductName:    optionalString(m, "productName"),
		DesktopName:    optionalString(m, "desktopName"),
	}
}

func optionalString(m map[string]interface{}, key string) *string {
	s, ok := document.String(m[key])
	if !ok {
		return nil
	}
	return &s
}

// ProtocolAssociation associates one or more URL schemes with the app.
type ProtocolAssociation struct {
	Name    string
	Schemes []string
}

// FileAssociation associates one or more file extensions with a MIME type.
type FileAssociation struct {
	Extensions []string
	MimeType   string
}

// Directories holds the output-directory override.
type Directories struct {
	Output string
}

// BaseConfig is one platform's (or the shared base's) slice of the build
// configuration.
type BaseConfig struct {
	Common           CommonOverridable
	Files            []CopyDef
	AsarUnpack       []string
	ExtraFiles       []CopyDef
	ExtraResources   []CopyDef
	Protocols        []ProtocolAssociation
	FileAssociations []FileAssociation
	Category         []string
	Desktop          map[string]string
	Directories      Directories
	Icon             string
	ExtraMetadata    document.Value
}

func parseBaseConfig(v document.Value) BaseConfig {
	m, _ := document.Map(v)

	protocols := make([]ProtocolAssociation, 0)
	for _, p := range document.List(m["protocols"]) {
		pm, ok := document.Map(p)
		if !ok {
			continue
		}
		name, _ := document.String(pm["name"])
		protocols = append(protocols, ProtocolAssociation{
			Name:    name,
			Schemes: document.StringList(pm["schemes"]),
		})
	}

	assocs := make([]FileAssociation, 0)
	for _, a := range document.List(m["fileAssociations"]) {
		am, ok := document.Map(a)
		if !ok {
			continue
		}
		mime, _ := document.String(am["mimeType"])
		assocs = append(assocs, FileAssociation{
			Extensions: document.StringList(am["ext"]),
			MimeType:   mime,
		})
	}

	var desktopField map[string]string
	if dm, ok := document.Map(m["desktop"]); ok {
		desktopField = map[string]string{}
		for k, v := range dm {
			if s, ok := document.String(v); ok {
				desktopField[k] = s
			}
		}
	}

	dirs := Directories{}
	if dm, ok := document.Map(m["directories"]); ok {
		dirs.Output, _ = document.String(dm["output"])
	}

	icon, _ := document.String(m["icon"])

	return BaseConfig{
		Common:           parseCommon(m),
		Files:            parseCopyDefs(m["files"]),
		AsarUnpack:       document.StringList(m["asarUnpack"]),
		ExtraFiles:       parseCopyDefs(m["extraFiles"]),
		ExtraResources:   parseCopyDefs(m["extraResources"]),
		Protocols:        protocols,
		FileAssociations: assocs,
		Category:         document.StringList(m["category"]),
		Desktop:          desktopField,
		Directories:      dirs,
		Icon:             icon,
		ExtraMetadata:    m["extraMetadata"],
	}
}

// Config is the full, still-unresolved build configuration: a base shared
// across platforms plus three per-platform overlays.
type Config struct {
	Base  BaseConfig
	Linux BaseConfig
	Mac   BaseConfig
	Win   BaseConfig
}

// Parse builds a Config from a document value holding the `build`
// sub-document (or the whole file, for stand-alone config files).
func Parse(v document.Value) Config {
	m, _ := document.Map(v)
	return Config{
		Base:  parseBaseConfig(v),
		Linux: parseBaseConfig(m["linux"]),
		Mac:   parseBaseConfig(m["mac"]),
		Win:   parseBaseConfig(m["win"]),
	}
}

func (c *Config) platform(p environment.Platform) *BaseConfig {
	switch p {
	case environment.Windows:
		return &c.Win
	case environment.Darwin:
		return &c.Mac
	default:
		return &c.Linux
	}
}

// Files returns the effective `files` list: the platform override if
// non-empty, else the base list.
func (c *Config) Files(p environment.Platform) []CopyDef {
	if pf := c.platform(p).Files; len(pf) > 0 {
		return pf
	}
	return c.Base.Files
}

// AsarUnpack returns the effective `asarUnpack` list.
func (c *Config) AsarUnpack(p environment.Platform) []string {
	if pf := c.platform(p).AsarUnpack; len(pf) > 0 {
		return pf
	}
	return c.Base.AsarUnpack
}

// ExtraFiles returns the effective `extraFiles` list.
func (c *Config) ExtraFiles(p environment.Platform) []CopyDef {
	if pf := c.platform(p).ExtraFiles; len(pf) > 0 {
		return pf
	}
	return c.Base.ExtraFiles
}

// ExtraResources returns the effective `extraResources` list.
func (c *Config) ExtraResources(p environment.Platform) []CopyDef {
	if pf := c.platform(p).ExtraResources; len(pf) > 0 {
		return pf
	}
	return c.Base.ExtraResources
}

// Protocols returns the effective `protocols` list.
func (c *Config) Protocols(p environment.Platform) []ProtocolAssociation {
	if pf := c.platform(p).Protocols; len(pf) > 0 {
		return pf
	}
	return c.Base.Protocols
}

// FileAssociations returns the effective `fileAssociations` list.
func (c *Config) FileAssociations(p environment.Platform) []FileAssociation {
	if pf := c.platform(p).FileAssociations; len(pf) > 0 {
		return pf
	}
	return c.Base.FileAssociations
}

// Categories returns the platform's `category` list (linux-only concept in
// practice, but resolved the same layered way as everything else).
func (c *Config) Categories(p environment.Platform) []string {
	if pf := c.platform(p).Category; len(pf) > 0 {
		return pf
	}
	return c.Base.Category
}

// Desktop returns the effective `desktop` mapping: the platform entry if
// present, else base (not "non-empty", since an empty map is still a
// deliberate override per spec §3).
func (c *Config) Desktop(p environment.Platform) map[string]string {
	if pf := c.platform(p).Desktop; pf != nil {
		return pf
	}
	return c.Base.Desktop
}

// ExtraMetadata returns the effective `extraMetadata` document: the
// platform entry if present, else base.
func (c *Config) ExtraMetadata(p environment.Platform) document.Value {
	if pf := c.platform(p).ExtraMetadata; pf != nil {
		return pf
	}
	return c.Base.ExtraMetadata
}

// OutputDir returns the effective `directories.output` override, or ""
// if none was configured anywhere in the chain.
func (c *Config) OutputDir(p environment.Platform) string {
	if pf := c.platform(p).Directories.Output; pf != "" {
		return pf
	}
	return c.Base.Directories.Output
}

// IconLocations returns up to four candidate icon paths in priority
// order: linux.icon, mac.icon (or its default), win.icon (or its
// default), base.icon. Absent entries are omitted; defaults are returned
// even when the file doesn't yet exist, leaving existence checks to the
// icon transcoder.
func (c *Config) IconLocations() []string {
	candidates := []string{
		c.Linux.Icon,
		orDefault(c.Mac.Icon, "build/icon.icns"),
		orDefault(c.Win.Icon, "build/icon.ico"),
		c.Base.Icon,
	}
	out := make([]string, 0, len(candidates))
	for _, p := range candidates {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
