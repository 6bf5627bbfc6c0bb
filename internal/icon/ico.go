package icon

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/png"
	"io"
	"os"

	"golang.org/x/image/bmp"

	"git.sr.ht/~jackmordaunt/tasje/internal/errs"
)

// icoHeader mirrors the 6-byte ICONDIR record: reserved, type (1 for
// icons), and entry count.
type icoHeader struct {
	_          uint16
	imageType  uint16
	imageCount uint16
}

// icoEntry mirrors one 16-byte ICONDIRENTRY.
type icoEntry struct {
	Width  uint8
	Height uint8
	_      uint8 // color count
	_      uint8 // reserved
	Planes uint16
	BPP    uint16
	Size   uint32
	Offset uint32
}

// bitmapFileHeader is the 14-byte prefix a bare DIB stream is missing;
// ICO entries store the DIB body without it, so it's synthesized before
// handing the bytes to golang.org/x/image/bmp.
type bitmapFileHeader struct {
	Magic      [2]byte
	Size       uint32
	Reserved   uint32
	DataOffset uint32
}

func processICO(path string, emit func(Size, image.Image, string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return errs.WithPath(errs.IconDecode, path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return errs.WithPath(errs.IconDecode, path, err)
	}
	// icoHeader's fields are unexported, so binary.Read cannot fill it;
	// decode the 6-byte ICONDIR by hand.
	if len(data) < 6 {
		return errs.WithPath(errs.IconDecode, path, io.ErrUnexpectedEOF)
	}
	header := icoHeader{
		imageType:  binary.LittleEndian.Uint16(data[2:4]),
		imageCount: binary.LittleEndian.Uint16(data[4:6]),
	}
	r := bytes.NewReader(data[6:])

	entries := make([]icoEntry, header.imageCount)
	for i := range entries {
		if err := binary.Read(r, binary.LittleEndian, &entries[i]); err != nil {
			return errs.WithPath(errs.IconDecode, path, err)
		}
	}

	for _, e := range entries {
		if int(e.Offset)+int(e.Size) > len(data) {
			continue
		}
		body := data[e.Offset : e.Offset+e.Size]
		img, err := decodeICOEntry(body)
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

// decodeICOEntry decodes a single ICO image body, which is either a PNG
// (modern large icons) or a headerless DIB (classic small icons).
func decodeICOEntry(body []byte) (image.Image, error) {
	if len(body) >= 8 && bytes.Equal(body[:8], []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}) {
		return png.Decode(bytes.NewReader(body))
	}

	dib := append([]byte(nil), body...)
	dataOffset := uint32(14 + 40) // BITMAPFILEHEADER + BITMAPINFOHEADER
	if len(dib) >= 40 {
		// ICO DIB headers count the AND mask in the height; halve it so
		// only the colour bitmap is decoded, and skip any palette.
		height := int32(binary.LittleEndian.Uint32(dib[8:12]))
		binary.LittleEndian.PutUint32(dib[8:12], uint32(height/2))
		bpp := binary.LittleEndian.Uint16(dib[14:16])
		colors := binary.LittleEndian.Uint32(dib[32:36])
		if colors == 0 && bpp <= 8 {
			colors = 1 << bpp
		}
		dataOffset = 14 + binary.LittleEndian.Uint32(dib[0:4]) + 4*colors
	}

	var bmpData bytes.Buffer
	fh := bitmapFileHeader{
		Magic:      [2]byte{'B', 'M'},
		Size:       uint32(14 + len(dib)),
		DataOffset: dataOffset,
	}
	if err := binary.Write(&bmpData, binary.LittleEndian, fh); err != nil {
		return nil, err
	}
	bmpData.Write(dib)

	img, err := bmp.Decode(bytes.NewReader(bmpData.Bytes()))
	if err != nil {
		return nil, err
	}
	return img, nil
}
