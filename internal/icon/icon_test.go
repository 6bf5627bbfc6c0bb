package icon

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 0, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("setup: %v", err)
	}
	return buf.Bytes()
}

// buildICOWithPNGEntries constructs a minimal ICO container whose
// entries are themselves PNG-compressed, the modern large-icon form
// that avoids the legacy DIB path entirely.
func buildICOWithPNGEntries(t *testing.T, sizes []int) []byte {
	t.Helper()
	var bodies [][]byte
	for _, s := range sizes {
		bodies = append(bodies, encodePNG(t, s, s))
	}

	var out bytes.Buffer
	header := icoHeader{imageType: 1, imageCount: uint16(len(sizes))}
	if err := binary.Write(&out, binary.LittleEndian, header); err != nil {
		t.Fatalf("setup: %v", err)
	}

	offset := uint32(6 + 16*len(sizes))
	entries := make([]icoEntry, len(sizes))
	for i, body := range bodies {
		entries[i] = icoEntry{Size: uint32(len(body)), Offset: offset}
		offset += uint32(len(body))
	}
	for _, e := range entries {
		if err := binary.Write(&out, binary.LittleEndian, e); err != nil {
			t.Fatalf("setup: %v", err)
		}
	}
	for _, body := range bodies {
		out.Write(body)
	}
	return out.Bytes()
}

func buildICNS(t *testing.T, typeSizes map[string]int) []byte {
	t.Helper()
	var body bytes.Buffer
	for typeCode, size := range typeSizes {
		png := encodePNG(t, size, size)
		body.WriteString(typeCode)
		var lenBuf [4]byte
		binary.BigEndian.PutUint32(lenBuf[:], uint32(8+len(png)))
		body.Write(lenBuf[:])
		body.Write(png)
	}

	var out bytes.Buffer
	out.WriteString("icns")
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(8+body.Len()))
	out.Write(lenBuf[:])
	out.Write(body.Bytes())
	return out.Bytes()
}

func TestTranscodeFromICNS(t *testing.T) {
	dir := t.TempDir()
	icnsPath := filepath.Join(dir, "icon.icns")
	data := buildICNS(t, map[string]int{"ic07": 128, "ic08": 256, "ic09": 512})
	if err := os.WriteFile(icnsPath, data, 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	destDir := filepath.Join(dir, "icons")
	if err := Transcode([]string{icnsPath}, destDir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, name := range []string{"128x128.png", "256x256.png", "512x512.png"} {
		if _, err := os.Stat(filepath.Join(destDir, name)); err != nil {
			t.Fatalf("expected %s to exist: %v", name, err)
		}
	}

	sizeList, err := os.ReadFile(filepath.Join(destDir, "size-list"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "128x128\n256x256\n512x512\n"
	if string(sizeList) != want {
		t.Fatalf("got %q, want %q", sizeList, want)
	}
}

func TestTranscodeFromICO(t *testing.T) {
	dir := t.TempDir()
	icoPath := filepath.Join(dir, "icon.ico")
	data := buildICOWithPNGEntries(t, []int{16, 32})
	if err := os.WriteFile(icoPath, data, 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	destDir := filepath.Join(dir, "icons")
	if err := Transcode([]string{icoPath}, destDir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, name := range []string{"16x16.png", "32x32.png"} {
		if _, err := os.Stat(filepath.Join(destDir, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}
}

func TestTranscodeFromRawPNGDirectory(t *testing.T) {
	dir := t.TempDir()
	srcDir := filepath.Join(dir, "icons-src")
	if err := os.MkdirAll(srcDir, 0o755); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.WriteFile(filepath.Join(srcDir, "64x64.png"), encodePNG(t, 64, 64), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.WriteFile(filepath.Join(srcDir, "notasize.png"), encodePNG(t, 8, 8), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	destDir := filepath.Join(dir, "icons")
	if err := Transcode([]string{srcDir}, destDir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(destDir, "64x64.png")); err != nil {
		t.Fatalf("expected 64x64.png: %v", err)
	}
	if _, err := os.Stat(filepath.Join(destDir, "8x8.png")); err == nil {
		t.Fatalf("did not expect a PNG without a WxH filename to be processed")
	}
}

func TestTranscodeDedupesSizes(t *testing.T) {
	dir := t.TempDir()
	icnsPath := filepath.Join(dir, "a.icns")
	icoPath := filepath.Join(dir, "b.ico")
	if err := os.WriteFile(icnsPath, buildICNS(t, map[string]int{"ic07": 128}), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}
	if err := os.WriteFile(icoPath, buildICOWithPNGEntries(t, []int{128}), 0o644); err != nil {
		t.Fatalf("setup: %v", err)
	}

	destDir := filepath.Join(dir, "icons")
	if err := Transcode([]string{icnsPath, icoPath}, destDir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sizeList, err := os.ReadFile(filepath.Join(destDir, "size-list"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Count(string(sizeList), "128x128") != 1 {
		t.Fatalf("expected 128x128 exactly once, got %q", sizeList)
	}
}
