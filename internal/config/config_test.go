package config

import (
	"testing"

	"git.sr.ht/~jackmordaunt/tasje/internal/environment"
)

// TestFilesLayering ensures platform overrides win only when non-empty,
// per the layered-config invariant.
func TestFilesLayering(t *testing.T) {
	tests := []struct {
		Name     string
		Config   Config
		Platform environment.Platform
		Want     int
	}{
		{
			Name: "platform override wins",
			Config: Config{
				Base:  BaseConfig{Files: []CopyDef{{Glob: "base/**"}}},
				Linux: BaseConfig{Files: []CopyDef{{Glob: "linux/**"}, {Glob: "other/**"}}},
			},
			Platform: environment.Linux,
			Want:     2,
		},
		{
			Name: "empty override falls back to base",
			Config: Config{
				Base: BaseConfig{Files: []CopyDef{{Glob: "base/**"}}},
			},
			Platform: environment.Linux,
			Want:     1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.Name, func(t *testing.T) {
			got := tt.Config.Files(tt.Platform)
			if len(got) != tt.Want {
				t.Fatalf("got %d files, want %d", len(got), tt.Want)
			}
		})
	}
}

// TestIconLocationsOrder ensures candidates are returned linux, mac, win,
// base, with mac/win defaults substituted when unset and absent entries
// omitted entirely.
func TestIconLocationsOrder(t *testing.T) {
	cfg := Config{
		Base:  BaseConfig{Icon: "build/icon.png"},
		Linux: BaseConfig{Icon: "res/linux.png"},
		Mac:   BaseConfig{},
		Win:   BaseConfig{Icon: "res/win.ico"},
	}
	got := cfg.IconLocations()
	want := []string{"res/linux.png", "build/icon.icns", "res/win.ico", "build/icon.png"}
	if len(got) != len(want) {
		t.Fatalf("got %d locations, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

// TestIconLocationsOmitsAbsent ensures an unset linux icon with no default
// doesn't leave a blank entry in the result.
func TestIconLocationsOmitsAbsent(t *testing.T) {
	cfg := Config{}
	got := cfg.IconLocations()
	want := []string{"build/icon.icns", "build/icon.ico"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

// TestDesktopLayeringAllowsEmptyOverride ensures a present-but-empty
// platform desktop map still counts as an override, unlike the
// non-empty-wins rule used for lists.
func TestDesktopLayeringAllowsEmptyOverride(t *testing.T) {
	cfg := Config{
		Base:  BaseConfig{Desktop: map[string]string{"Keywords": "foo"}},
		Linux: BaseConfig{Desktop: map[string]string{}},
	}
	got := cfg.Desktop(environment.Linux)
	if len(got) != 0 {
		t.Fatalf("got %v, want empty override to stick", got)
	}
}

// TestParseBaseConfigPreservesEmptyDesktop ensures an explicitly present
// but empty "desktop" object parses to a non-nil, empty map rather than
// being collapsed to nil alongside an absent key.
func TestParseBaseConfigPreservesEmptyDesktop(t *testing.T) {
	present := parseBaseConfig(map[string]interface{}{
		"desktop": map[string]interface{}{},
	})
	if present.Desktop == nil {
		t.Fatalf("expected a present-but-empty desktop map to stay non-nil")
	}
	if len(present.Desktop) != 0 {
		t.Fatalf("expected empty map, got %v", present.Desktop)
	}

	absent := parseBaseConfig(map[string]interface{}{})
	if absent.Desktop != nil {
		t.Fatalf("expected an absent desktop key to parse to nil, got %v", absent.Desktop)
	}
}

// TestCopyDefParsing exercises both arms of the CopyDef tagged union.
func TestCopyDefParsing(t *testing.T) {
	simple, ok := parseCopyDef("resources/**/*")
	if !ok || simple.Glob != "resources/**/*" || simple.Set != nil {
		t.Fatalf("expected simple glob, got %+v", simple)
	}

	set, ok := parseCopyDef(map[string]interface{}{
		"from":   "./assets",
		"to":     "./out",
		"filter": "*.png",
	})
	if !ok || set.Set == nil {
		t.Fatalf("expected file set, got %+v", set)
	}
	if set.Set.From != "assets" || set.Set.To != "out" {
		t.Fatalf("expected ./ stripped from from/to, got %+v", set.Set)
	}
	if len(set.Set.Filters) != 1 || set.Set.Filters[0] != "*.png" {
		t.Fatalf("expected single-filter might-be-single collapse, got %v", set.Set.Filters)
	}
}

// TestParseCopyDefsMightBeSingle ensures a bare string and a list both
// produce the same normalized shape.
func TestParseCopyDefsMightBeSingle(t *testing.T) {
	single := parseCopyDefs("single/**")
	if len(single) != 1 {
		t.Fatalf("got %d, want 1", len(single))
	}
	list := parseCopyDefs([]interface{}{"a/**", "b/**"})
	if len(list) != 2 {
		t.Fatalf("got %d, want 2", len(list))
	}
}

// TestParseRoundTrip exercises Parse against a representative document,
// checking that base, linux and mac each come through distinctly.
func TestParseRoundTrip(t *testing.T) {
	doc := map[string]interface{}{
		"files": "**/*",
		"linux": map[string]interface{}{
			"category": []interface{}{"Utility", "Development"},
		},
		"mac": map[string]interface{}{
			"icon": "build/mac.icns",
		},
	}
	cfg := Parse(doc)
	if len(cfg.Base.Files) != 1 {
		t.Fatalf("expected base files to parse, got %+v", cfg.Base.Files)
	}
	if got := cfg.Categories(environment.Linux); len(got) != 2 {
		t.Fatalf("expected 2 linux categories, got %v", got)
	}
	if cfg.Mac.Icon != "build/mac.icns" {
		t.Fatalf("expected mac icon override, got %q", cfg.Mac.Icon)
	}
}
