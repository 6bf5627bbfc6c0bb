package desktop

import (
	"strings"
	"testing"

	"git.sr.ht/~jackmordaunt/tasje/internal/config"
)

func TestRenderMinimal(t *testing.T) {
	got := Render(Entry{
		Name:           "Tasje",
		ExecutableName: "electron_tasje",
		IconName:       "electron_tasje",
		Comment:        "Packs Electron apps",
	})
	want := "[Desktop Entry]\n" +
		"Name=Tasje\n" +
		"Exec=/usr/bin/electron_tasje %U\n" +
		"Terminal=false\n" +
		"Type=Application\n" +
		"Icon=electron_tasje\n" +
		"Comment=Packs Electron apps\n"
	if got != want {
		t.Fatalf("got:\n%q\nwant:\n%q", got, want)
	}
}

func TestRenderMimeAndCategories(t *testing.T) {
	got := Render(Entry{
		Name:           "Tasje",
		ExecutableName: "electron_tasje",
		IconName:       "electron_tasje",
		Desktop:        map[string]string{"CustomField": "custom_value"},
		Protocols: []config.ProtocolAssociation{
			{Schemes: []string{"tasje", "ebuilder"}},
			{Schemes: []string{"electron-builder"}},
		},
		FileAssocs: []config.FileAssociation{
			{Extensions: []string{"tas"}, MimeType: "application/x-tas"},
		},
		Categories: []string{"Tools"},
	})
	wantMime := "MimeType=x-scheme-handler/tasje;x-scheme-handler/ebuilder;x-scheme-handler/electron-builder;application/x-tas\n"
	if !strings.Contains(got, wantMime) {
		t.Fatalf("got:\n%s\nwant to contain:\n%s", got, wantMime)
	}
	if !strings.Contains(got, "Categories=Tools\n") {
		t.Fatalf("expected Categories=Tools, got:\n%s", got)
	}
	if !strings.Contains(got, "CustomField=custom_value\n") {
		t.Fatalf("expected CustomField=custom_value, got:\n%s", got)
	}
}

func TestRenderOmitsEmptyOptionalLines(t *testing.T) {
	got := Render(Entry{Name: "Tasje", ExecutableName: "tasje", IconName: "tasje"})
	for _, substr := range []string{"Comment=", "MimeType=", "Categories="} {
		if strings.Contains(got, substr) {
			t.Fatalf("did not expect %q in output:\n%s", substr, got)
		}
	}
}
