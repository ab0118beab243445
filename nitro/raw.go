// Package nitro implements the read-only Nitro cartridge filesystem: a
// memory- or host-file-backed image containing a filename table (FNT) and
// file allocation table (FAT), mounted so paths resolve into byte ranges of
// the image.
//
// Grounded on devkitPro libfat's nds/source/nitrofs.c (see
// _examples/original_source).
package nitro

import (
	"io"
	"os"

	"github.com/xaionaro-go/bytesextra"

	"github.com/dargueta/nitrofat/errors"
)

// Whence values for RawReader.Seek, mirroring io.SeekStart/io.SeekCurrent
// but kept as a distinct type since HOST_FILE mode never needs SeekEnd.
type Whence int

const (
	SeekSet Whence = iota
	SeekCur
)

// sourceKind selects where a RawReader's bytes come from.
type sourceKind int

const (
	imageWindow sourceKind = iota
	hostFile
)

// RawReader is a small stateful positioned reader over a Nitro image. In
// IMAGE_WINDOW mode it reads directly from an in-memory byte slice with no
// bounds checking (a deliberate contract, not an accident: higher layers
// must never request past the image end). In HOST_FILE mode it reads from
// an os.File.
type RawReader struct {
	kind   sourceKind
	window io.ReadSeeker // wraps the image byte slice; IMAGE_WINDOW mode
	file   *os.File      // HOST_FILE mode
	path   string        // HOST_FILE mode, for reopening
	pos    int64
}

// newImageWindowReader opens a RawReader over an in-memory image. The
// reader owns no resources that need releasing besides its own state, but
// Close is still required to match the HOST_FILE reader's lifecycle.
func newImageWindowReader(image []byte) *RawReader {
	return &RawReader{
		kind:   imageWindow,
		window: bytesextra.NewReadWriteSeeker(image),
	}
}

// newHostFileReader opens a RawReader over a host-filesystem file.
func newHostFileReader(path string) (*RawReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.ErrInvalidImage.Wrap(err)
	}
	return &RawReader{kind: hostFile, file: f, path: path}, nil
}

// Close releases the reader's resources. Closing an IMAGE_WINDOW reader is
// a no-op since it owns nothing but a slice view.
func (r *RawReader) Close() error {
	if r.kind == hostFile && r.file != nil {
		err := r.file.Close()
		r.file = nil
		return err
	}
	return nil
}

// Seek repositions the reader. whence == SeekSet sets an absolute position;
// SeekCur adjusts by a signed delta. Position is not range-checked here in
// IMAGE_WINDOW mode; out-of-range positions surface as a failed Read.
func (r *RawReader) Seek(pos int64, whence Whence) (int64, error) {
	switch whence {
	case SeekSet:
		r.pos = pos
	case SeekCur:
		r.pos += pos
	}

	if r.kind == hostFile {
		newPos, err := r.file.Seek(r.pos, io.SeekStart)
		if err != nil {
			return 0, errors.ErrDeviceIO.Wrap(err)
		}
		return newPos, nil
	}

	if _, err := r.window.Seek(r.pos, io.SeekStart); err != nil {
		return 0, errors.ErrDeviceIO.Wrap(err)
	}
	return r.pos, nil
}

// Read fills buf (reading len(buf) bytes) and advances the position by the
// number of bytes actually read, regardless of source mode.
func (r *RawReader) Read(buf []byte) (int, error) {
	var n int
	var err error
	if r.kind == hostFile {
		n, err = io.ReadFull(r.file, buf)
	} else {
		n, err = io.ReadFull(r.window, buf)
	}
	r.pos += int64(n)
	if err != nil {
		return n, errors.ErrDeviceIO.Wrap(err)
	}
	return n, nil
}

// Pos returns the reader's current byte position.
func (r *RawReader) Pos() int64 {
	return r.pos
}
