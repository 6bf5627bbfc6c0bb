// Package asar writes the concatenated-archive format used by the
// Chromium-shell runtime to ship an application's files as one blob: a
// length-prefixed JSON directory header followed by the files
// themselves back to back. This is one of the two components the
// design explicitly treats as an "available service" behind a library
// (see design notes); no such library exists anywhere in the retrieved
// dependency corpus, so the format is implemented directly here rather
// than fabricate a dependency that does not exist.
package asar

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"

	"git.sr.ht/~jackmordaunt/tasje/internal/errs"
)

// entry is one node of the archive's directory tree.
type entry struct {
	Files    map[string]*entry `json:"files,omitempty"`
	Size     int64             `json:"size,omitempty"`
	Offset   string            `json:"offset,omitempty"`
	Unpacked bool              `json:"unpacked,omitempty"`
}

func newDirEntry() *entry {
	return &entry{Files: map[string]*entry{}}
}

// Writer accumulates files keyed by their archive path and, on
// Finalize, writes the pickle-framed header followed by the
// concatenated file bytes.
type Writer struct {
	root   *entry
	bodies [][]byte
	offset int64
}

// NewWriter returns an empty archive writer.
func NewWriter() *Writer {
	return &Writer{root: newDirEntry()}
}

// WriteFile adds data to the archive under archivePath (which must
// begin with "/"). unpacked marks the entry as excluded from the body
// stream on disk (the caller is responsible for copying it into
// app.asar.unpacked separately); its size and offset are still recorded
// for tools that read the header.
func (w *Writer) WriteFile(archivePath string, data []byte, unpacked bool) error {
	segments := strings.Split(strings.Trim(archivePath, "/"), "/")
	if len(segments) == 0 || segments[0] == "" {
		return errs.WithPath(errs.IO, archivePath, fmt.Errorf("empty archive path"))
	}

	dir := w.root
	for _, seg := range segments[:len(segments)-1] {
		child, ok := dir.Files[seg]
		if !ok {
			child = newDirEntry()
			dir.Files[seg] = child
		}
		dir = child
	}

	name := segments[len(segments)-1]
	e := &entry{
		Size:     int64(len(data)),
		Offset:   strconv.FormatInt(w.offset, 10),
		Unpacked: unpacked,
	}
	dir.Files[name] = e

	if !unpacked {
		w.bodies = append(w.bodies, data)
		w.offset += int64(len(data))
	}
	return nil
}

// Finalize writes the complete archive (header plus concatenated
// bodies) to out.
func (w *Writer) Finalize(out io.Writer) error {
	header, err := json.Marshal(w.root)
	if err != nil {
		return errs.New(errs.IO, err)
	}

	// Real-format archives pad the header to a 4-byte boundary with
	// spaces so the body stream starts aligned.
	padded := header
	if rem := len(padded) % 4; rem != 0 {
		padded = append(padded, padBytes(4-rem, ' ')...)
	}

	// Pickle framing: size-of-size-field, total pickle payload size,
	// header length, then the padded header itself.
	const sizeField = 4
	payloadSize := sizeField + len(padded)

	var frame [12]byte
	binary.LittleEndian.PutUint32(frame[0:4], uint32(sizeField))
	binary.LittleEndian.PutUint32(frame[4:8], uint32(payloadSize))
	binary.LittleEndian.PutUint32(frame[8:12], uint32(len(header)))

	if _, err := out.Write(frame[:]); err != nil {
		return errs.New(errs.IO, err)
	}
	if _, err := out.Write(padded); err != nil {
		return errs.New(errs.IO, err)
	}
	for _, body := range w.bodies {
		if _, err := out.Write(body); err != nil {
			return errs.New(errs.IO, err)
		}
	}
	return nil
}

// FinalizeToFile is a convenience wrapper creating (or truncating) path
// and finalizing the archive into it.
func (w *Writer) FinalizeToFile(archivePath string) error {
	f, err := os.Create(archivePath)
	if err != nil {
		return errs.WithPath(errs.IO, archivePath, err)
	}
	defer f.Close()
	return w.Finalize(f)
}

func padBytes(n int, b byte) []byte {
	out := make([]byte, n)
	for i := range out {
		out[i] = b
	}
	return out
}

// ArchivePath joins a destination path (as produced by the walker) into
// the "/"-prefixed form the archive expects.
func ArchivePath(dest string) string {
	return "/" + path.Clean(dest)
}
