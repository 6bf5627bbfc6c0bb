package icon

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/png"
	"io"
	"os"

	"git.sr.ht/~jackmordaunt/tasje/internal/errs"
)

// icnsTypeSizes maps the modern PNG-compressed ICNS icon type codes to
// their nominal square size. Legacy raw-ARGB/RLE type codes (is32, il32,
// it32, ic04, ic05, …) are not decoded; ICNS containers from current
// toolchains only emit the PNG-backed types listed here.
var icnsTypeSizes = map[string]int{
	"icp4": 16,
	"icp5": 32,
	"icp6": 64,
	"ic07": 128,
	"ic08": 256,
	"ic09": 512,
	"ic10": 1024,
	"ic11": 32,
	"ic12": 64,
	"ic13": 256,
	"ic14": 512,
}

// processICNS reads an ICNS container's table of contents (4-byte type
// code, 4-byte big-endian length, data) and emits the PNG payload of
// every recognized icon type.
func processICNS(path string, emit func(Size, image.Image, string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errs.WithPath(errs.IconDecode, path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return errs.WithPath(errs.IconDecode, path, err)
	}
	if len(data) < 8 {
		return errs.WithPath(errs.IconDecode, path, errEOF)
	}

	fileLen := binary.BigEndian.Uint32(data[4:8])
	if int(fileLen) > len(data) {
		fileLen = uint32(len(data))
	}

	offset := 8
	for offset+8 <= int(fileLen) {
		typeCode := string(data[offset : offset+4])
		length := binary.BigEndian.Uint32(data[offset+4 : offset+8])
		start := offset + 8
		end := offset + int(length)
		if length < 8 || end > len(data) {
			break
		}
		body := data[start:end]
		offset = end

		if _, isPNGType := icnsTypeSizes[typeCode]; !isPNGType {
			continue
		}
		if !bytes.HasPrefix(body, []byte{0x89, 0x50, 0x4E, 0x47}) {
			continue
		}
		img, err := png.Decode(bytes.NewReader(body))
		if err != nil {
			return errs.WithPath(errs.IconDecode, path, err)
		}
		bounds := img.Bounds()
		if err := emit(Size{Width: bounds.Dx(), Height: bounds.Dy()}, img, path); err != nil {
			return err
		}
	}
	return nil
}

var errEOF = icnsError("icns file too short to contain a table of contents")

type icnsError string

func (e icnsError) Error() string { return string(e) }
