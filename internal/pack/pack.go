// Package pack orchestrates the full build pipeline: assembling file
// selections, writing the asar archive, copying unpacked and extra
// files, and invoking the desktop emitter and icon transcoder.
package pack

import (
	"fmt"
	"os"
	"path/filepath"

	"git.sr.ht/~jackmordaunt/tasje/internal/asar"
	"git.sr.ht/~jackmordaunt/tasje/internal/config"
	"git.sr.ht/~jackmordaunt/tasje/internal/desktop"
	"git.sr.ht/~jackmordaunt/tasje/internal/environment"
	"git.sr.ht/~jackmordaunt/tasje/internal/errs"
	"git.sr.ht/~jackmordaunt/tasje/internal/icon"
	"git.sr.ht/~jackmordaunt/tasje/internal/manifest"
	"git.sr.ht/~jackmordaunt/tasje/internal/util"
	"git.sr.ht/~jackmordaunt/tasje/internal/walker"
)

// forcedExcludes is appended, in order, after the resolved files list
// for every asar pack, regardless of user configuration (spec §6).
var forcedExcludes = []string{
	"!**/node_modules/.bin",
	"!**/*.{md,rst,markdown}",
	"!**/{__tests__,powered-test,spec,example,examples,readme,README,Readme,changelog,CHANGELOG,Changelog,ChangeLog}",
	"!**/*.{spec,test}.*",
	"!**/._*",
	"!**/{.editorconfig,.DS_Store,.git,.svn,.hg,CVS,RCS,.gitattributes,.nvmrc,.nycrc,Makefile,CMakeLists.txt}",
	"!**/{__pycache__,thumbs.db,.flowconfig,.idea,.vs,.vscode,.nyc_output,.docker-compose.yml}",
	"!**/{.github,.gitlab,.gitlab-ci.yml,appveyor.yml,.travis.yml,circle.yml,.woodpecker.yml}",
	"!**/{package-lock.json,yarn.lock}",
	"!**/.{git,eslint,tslint,prettier,docker,npm,yarn}ignore",
	"!**/.{prettier,eslint,jshint,jsdoc}rc",
	"!**/{.prettierrc,webpack.config,.jshintrc,jsdoc,.eslintrc,tsconfig}{,.json,.js,.yml,yaml}",
	"!**/{yarn,npm}-{debug,error}{,.log,.json}",
	"!**/.{yarn,npm}-{metadata,integrity}",
	"!**/*.{iml,o,hprof,orig,pyc,pyo,rbc,swp,csproj,sln,xproj,c,h,cc,cpp,hpp,lzz,gyp,d.ts}",
}

// nodeModulesGlob is the fixed positive glob prepended to every asar
// pack's file selection, ensuring forced excludes can still filter
// inside vendored packages even when the user's own files list doesn't
// mention node_modules explicitly.
const nodeModulesGlob = "node_modules/**/*"

// Builder records overrides and CLI-supplied additional globs before
// producing an immutable Packer.
type Builder struct {
	App              manifest.App
	Environment      environment.Environment
	BaseOutputDir    string
	AdditionalFiles  []string
	AdditionalUnpack []string
	AdditionalExtra  []string
}

// Build finalizes the Builder into a Packer.
func (b Builder) Build() Packer {
	return Packer{b: b}
}

// Packer performs the full pack pipeline for one App/Environment pair.
type Packer struct {
	b Builder
}

// outputDir resolves the base output directory: builder override, else
// the config's directories.output, else root/tasje_out.
func (p Packer) outputDir() string {
	if p.b.BaseOutputDir != "" {
		return p.b.BaseOutputDir
	}
	if out := p.b.App.Config.OutputDir(p.b.Environment.Platform); out != "" {
		return filepath.Join(p.b.App.Root, out)
	}
	return filepath.Join(p.b.App.Root, "tasje_out")
}

// Proceed runs the full pipeline and returns the first error
// encountered, or nil on success.
func (p Packer) Proceed() error {
	out := p.outputDir()
	resourcesDir := filepath.Join(out, "resources")
	iconsDir := filepath.Join(out, "icons")

	if err := os.MkdirAll(resourcesDir, 0o755); err != nil {
		return errs.WithPath(errs.IO, resourcesDir, err)
	}
	if err := os.MkdirAll(iconsDir, 0o755); err != nil {
		return errs.WithPath(errs.IO, iconsDir, err)
	}

	if err := p.packAsar(resourcesDir); err != nil {
		return fmt.Errorf("packing asar: %w", err)
	}
	if err := p.packExtraFiles(out); err != nil {
		return fmt.Errorf("packing extra files: %w", err)
	}
	if err := p.packExtraResources(resourcesDir); err != nil {
		return fmt.Errorf("packing extra resources: %w", err)
	}
	if p.b.Environment.Platform == environment.Linux {
		if err := p.writeDesktopFile(out); err != nil {
			return fmt.Errorf("writing desktop file: %w", err)
		}
	}
	if err := p.packIcons(iconsDir); err != nil {
		return fmt.Errorf("transcoding icons: %w", err)
	}
	return nil
}

func (p Packer) packAsar(resourcesDir string) error {
	app := p.b.App
	platform := p.b.Environment.Platform

	files := app.Config.Files(platform)
	globs, sets := walker.Split(files)
	globs = append([]string{nodeModulesGlob}, globs...)
	globs = append(globs, p.b.AdditionalFiles...)
	globs = append(globs, forcedExcludes...)

	unpack := append([]string{}, app.Config.AsarUnpack(platform)...)
	unpack = append(unpack, p.b.AdditionalUnpack...)

	triples, err := walker.Walk(app.Root, globs, sets, unpack, p.b.Environment)
	if err != nil {
		return err
	}

	w := asar.NewWriter()
	unpackedDir := filepath.Join(resourcesDir, "app.asar.unpacked")
	for _, t := range triples {
		data, err := os.ReadFile(t.Source)
		if err != nil {
			return errs.WithPath(errs.IO, t.Source, err)
		}
		if err := w.WriteFile(asar.ArchivePath(t.Dest), data, t.MustUnpack); err != nil {
			return err
		}
		if t.MustUnpack {
			dest := filepath.Join(unpackedDir, filepath.FromSlash(t.Dest))
			if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
				return errs.WithPath(errs.IO, dest, err)
			}
			if err := util.CopyFile(t.Source, dest); err != nil {
				return err
			}
		}
	}

	return w.FinalizeToFile(filepath.Join(resourcesDir, "app.asar"))
}

func (p Packer) packExtraFiles(outDir string) error {
	return p.copyComposite(p.b.App.Config.ExtraFiles(p.b.Environment.Platform), p.b.AdditionalExtra, outDir)
}

func (p Packer) packExtraResources(resourcesDir string) error {
	return p.copyComposite(p.b.App.Config.ExtraResources(p.b.Environment.Platform), p.b.AdditionalExtra, resourcesDir)
}

// copyComposite resolves a files/extra_resources-shaped CopyDef list
// plus CLI-additional globs (appended as bare Simple defs, no forced
// overlay) and copies every selected file under destDir.
func (p Packer) copyComposite(defs []config.CopyDef, additional []string, destDir string) error {
	combined := make([]config.CopyDef, 0, len(defs)+len(additional))
	combined = append(combined, defs...)
	for _, g := range additional {
		combined = append(combined, config.CopyDef{Glob: g})
	}
	globs, sets := walker.Split(combined)
	triples, err := walker.Walk(p.b.App.Root, globs, sets, nil, p.b.Environment)
	if err != nil {
		return err
	}
	for _, t := range triples {
		dest := filepath.Join(destDir, filepath.FromSlash(t.Dest))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return errs.WithPath(errs.IO, dest, err)
		}
		if err := util.CopyFile(t.Source, dest); err != nil {
			return err
		}
	}
	return nil
}

func (p Packer) writeDesktopFile(outDir string) error {
	app := p.b.App
	platform := p.b.Environment.Platform

	executableName, err := app.ExecutableName(platform)
	if err != nil {
		return err
	}
	desktopName, err := app.DesktopName(platform)
	if err != nil {
		return err
	}

	entry := desktop.Entry{
		Name:           app.ProductName(platform),
		ExecutableName: executableName,
		IconName:       executableName,
		Desktop:        app.Config.Desktop(platform),
		Comment:        app.Description(platform),
		Protocols:      app.Config.Protocols(platform),
		FileAssocs:     app.Config.FileAssociations(platform),
		Categories:     app.Config.Categories(platform),
	}

	return os.WriteFile(filepath.Join(outDir, desktopName), []byte(desktop.Render(entry)), 0o644)
}

func (p Packer) packIcons(destDir string) error {
	return icon.Transcode(p.b.App.IconLocations(), destDir)
}
