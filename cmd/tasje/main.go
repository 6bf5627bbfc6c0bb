// tasje packs Electron-shaped desktop applications: it resolves a
// layered build configuration, selects files according to an ordered
// glob pipeline, writes an app.asar archive plus loose extra
// resources, transcodes an app icon into the size set a Linux desktop
// expects, and emits a .desktop launcher entry.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"git.sr.ht/~jackmordaunt/tasje/internal/config"
	"git.sr.ht/~jackmordaunt/tasje/internal/desktop"
	"git.sr.ht/~jackmordaunt/tasje/internal/document"
	"git.sr.ht/~jackmordaunt/tasje/internal/environment"
	"git.sr.ht/~jackmordaunt/tasje/internal/errs"
	"git.sr.ht/~jackmordaunt/tasje/internal/manifest"
	"git.sr.ht/~jackmordaunt/tasje/internal/pack"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}

type globalFlags struct {
	configPath   string
	architecture string
	platform     string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:           "tasje",
		Short:         "pack Electron-shaped applications into asar archives and platform resources",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "package.json", "path to the package manifest")
	root.PersistentFlags().StringVar(&flags.architecture, "target-architecture", environment.Host.Architecture.String(), "target architecture (x86_64, x86, aarch64, armv7)")
	root.PersistentFlags().StringVar(&flags.platform, "target-platform", environment.Host.Platform.String(), "target platform (linux, windows, darwin)")

	root.AddCommand(newPackCmd(flags))
	root.AddCommand(newGenerateDesktopCmd(flags))
	return root
}

func (f *globalFlags) resolveEnvironment() (environment.Environment, error) {
	arch, err := environment.ArchitectureFromName(f.architecture)
	if err != nil {
		return environment.Environment{}, err
	}
	plat, err := environment.PlatformFromName(f.platform)
	if err != nil {
		return environment.Environment{}, err
	}
	return environment.Environment{Architecture: arch, Platform: plat}, nil
}

// loadApp reads the manifest at configPath, resolves its effective
// build config (the manifest's own "build" key, or a sibling
// electron-builder.yml), and binds both to the manifest's directory.
func loadApp(configPath string) (manifest.App, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return manifest.App{}, errs.WithPath(errs.IO, configPath, err)
	}
	var manifestDoc document.Value
	if err := json.Unmarshal(data, &manifestDoc); err != nil {
		return manifest.App{}, errs.WithPath(errs.ConfigParse, configPath, err)
	}

	pkg, err := manifest.Parse(manifestDoc)
	if err != nil {
		return manifest.App{}, err
	}

	root := filepath.Dir(configPath)
	buildDoc, err := config.LoadBuildConfig(manifestDoc, root)
	if err != nil {
		return manifest.App{}, err
	}

	return manifest.New(pkg, config.Parse(buildDoc), root), nil
}

func newPackCmd(flags *globalFlags) *cobra.Command {
	var (
		output           string
		additionalFiles  []string
		additionalUnpack []string
		additionalExtra  []string
	)
	cmd := &cobra.Command{
		Use:   "pack",
		Short: "produce app.asar, loose resources, the desktop entry, and transcoded icons",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := flags.resolveEnvironment()
			if err != nil {
				return err
			}
			app, err := loadApp(flags.configPath)
			if err != nil {
				return err
			}
			log.Info("packing", "target", fmt.Sprintf("%s/%s", env.Platform, env.Architecture), "root", app.Root)

			p := pack.Builder{
				App:              app,
				Environment:      env,
				BaseOutputDir:    output,
				AdditionalFiles:  additionalFiles,
				AdditionalUnpack: additionalUnpack,
				AdditionalExtra:  additionalExtra,
			}.Build()

			if err := p.Proceed(); err != nil {
				return err
			}
			log.Info("done")
			return nil
		},
	}
	cmd.Flags().StringVar(&output, "output", "", "override the base output directory")
	cmd.Flags().StringArrayVar(&additionalFiles, "additional-files", nil, "extra glob to merge into the asar file selection")
	cmd.Flags().StringArrayVar(&additionalUnpack, "additional-asar-unpack", nil, "extra glob of files to exclude from the asar body and ship loose")
	cmd.Flags().StringArrayVar(&additionalExtra, "additional-extra-resources", nil, "extra glob to merge into the extra resources selection")
	return cmd
}

func newGenerateDesktopCmd(flags *globalFlags) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "generate-desktop",
		Short: "emit the .desktop launcher entry without packing",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := flags.resolveEnvironment()
			if err != nil {
				return err
			}
			app, err := loadApp(flags.configPath)
			if err != nil {
				return err
			}

			executableName, err := app.ExecutableName(env.Platform)
			if err != nil {
				return err
			}
			desktopName, err := app.DesktopName(env.Platform)
			if err != nil {
				return err
			}

			entry := desktop.Entry{
				Name:           app.ProductName(env.Platform),
				ExecutableName: executableName,
				IconName:       executableName,
				Desktop:        app.Config.Desktop(env.Platform),
				Comment:        app.Description(env.Platform),
				Protocols:      app.Config.Protocols(env.Platform),
				FileAssocs:     app.Config.FileAssociations(env.Platform),
				Categories:     app.Config.Categories(env.Platform),
			}

			dir := output
			if dir == "" {
				dir = app.Root
			}
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return errs.WithPath(errs.IO, dir, err)
			}
			path := filepath.Join(dir, desktopName)
			if err := os.WriteFile(path, []byte(desktop.Render(entry)), 0o644); err != nil {
				return errs.WithPath(errs.IO, path, err)
			}
			log.Info("wrote desktop entry", "path", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&output, "output", "", "directory to write the .desktop file into (default: project root)")
	return cmd
}
