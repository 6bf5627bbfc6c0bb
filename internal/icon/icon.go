// Package icon transcodes ICO/ICNS/raw-PNG icon containers into a
// normalized set of per-size PNG files plus a sorted size-list manifest,
// per spec §4.4.
package icon

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"

	"git.sr.ht/~jackmordaunt/tasje/internal/errs"
)

// Size identifies a distinct discovered icon dimension.
type Size struct {
	Width, Height int
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

func (s Size) less(other Size) bool {
	if s.Width != other.Width {
		return s.Width < other.Width
	}
	return s.Height < other.Height
}

var rawPNGName = regexp.MustCompile(`^(\d+)x(\d+)\.png$`)

// Transcode processes every candidate input path (a file or a
// directory of files, non-recursive) and writes one optimized PNG per
// distinct size into destDir, plus a "size-list" text file listing the
// materialized sizes in ascending (width, height) order.
func Transcode(inputs []string, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return errs.WithPath(errs.IO, destDir, err)
	}

	seen := map[Size]bool{}
	var sizes []Size

	emit := func(size Size, img image.Image, sourcePath string) error {
		if seen[size] {
			return nil
		}
		seen[size] = true
		sizes = append(sizes, size)
		return writeOptimizedPNG(filepath.Join(destDir, size.String()+".png"), img, sourcePath)
	}

	for _, input := range inputs {
		info, err := os.Stat(input)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return errs.WithPath(errs.IO, input, err)
		}
		if info.IsDir() {
			entries, err := os.ReadDir(input)
			if err != nil {
				return errs.WithPath(errs.IO, input, err)
			}
			for _, e := range entries {
				if e.IsDir() {
					continue
				}
				if err := processFile(filepath.Join(input, e.Name()), emit); err != nil {
					return err
				}
			}
			continue
		}
		if err := processFile(input, emit); err != nil {
			return err
		}
	}

	sort.Slice(sizes, func(i, j int) bool { return sizes[i].less(sizes[j]) })
	return writeSizeList(filepath.Join(destDir, "size-list"), sizes)
}

func processFile(path string, emit func(Size, image.Image, string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errs.WithPath(errs.IO, path, err)
	}
	defer f.Close()

	magic := make([]byte, 4)
	n, err := f.Read(magic)
	if err != nil || n < 4 {
		// too short to carry a recognizable magic: ignore silently.
		return nil
	}

	switch {
	case string(magic) == "icns":
		return processICNS(path, emit)
	case magic[0] == 0x00 && magic[1] == 0x00 && magic[2] == 0x01 && magic[3] == 0x00:
		return processICO(path, emit)
	case magic[0] == 0x89 && magic[1] == 0x50 && magic[2] == 0x4E && magic[3] == 0x47:
		return processRawPNG(path, emit)
	default:
		return nil
	}
}

func processRawPNG(path string, emit func(Size, image.Image, string) error) error {
	m := rawPNGName.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return nil
	}
	w, _ := strconv.Atoi(m[1])
	h, _ := strconv.Atoi(m[2])

	f, err := os.Open(path)
	if err != nil {
		return errs.WithPath(errs.IconDecode, path, err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return errs.WithPath(errs.IconDecode, path, err)
	}
	return emit(Size{Width: w, Height: h}, img, path)
}

func writeOptimizedPNG(destPath string, img image.Image, sourcePath string) error {
	f, err := os.Create(destPath)
	if err != nil {
		return errs.WithPath(errs.IconDecode, sourcePath, err)
	}
	defer f.Close()

	enc := png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(f, img); err != nil {
		return errs.WithPath(errs.IconDecode, sourcePath, err)
	}
	return nil
}

func writeSizeList(path string, sizes []Size) error {
	lines := make([]string, len(sizes))
	for i, s := range sizes {
		lines[i] = s.String()
	}
	content := ""
	for i, l := range lines {
		if i > 0 {
			content += "\n"
		}
		content += l
	}
	if len(lines) > 0 {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return errs.WithPath(errs.IO, path, err)
	}
	return nil
}
