package nitro

import (
	stderrors "errors"
	"strings"

	"github.com/dargueta/nitrofat/errors"
)

// FileHandle is an open read-only Nitro file: a raw reader plus the
// [start, end) byte window the file occupies in the image.
type FileHandle struct {
	reader *RawReader
	start  uint32
	end    uint32

	// LegacyShortSeek reproduces the original libfat quirk where a Seek
	// that would land past end returns (0, nil) instead of an error. It
	// defaults to true via OpenFile; set it to false to get
	// errors.ErrInvalidRequest instead. See DESIGN.md open question 2.
	LegacyShortSeek bool
}

// OpenFile opens the file named by path, which is split at its last '/' or
// ':' into a directory path and a file name. The directory is opened with
// OpenDir; Next is iterated until a file entry with a matching name is
// found.
func (m *Mount) OpenFile(path string) (*FileHandle, error) {
	dirPath, fileName := splitDirAndFile(path)

	it, err := m.OpenDir(dirPath)
	if err != nil {
		return nil, err
	}

	for {
		entry, err := it.Next()
		if stderrors.Is(err, errors.ErrNoSuchPath) {
			it.Close()
			return nil, errors.ErrNoSuchPath.WithMessage("no such file: " + fileName)
		}
		if err != nil {
			it.Close()
			return nil, err
		}
		if entry.Kind == EntryFile && entry.Name == fileName {
			start := it.lastFATTop
			end := it.lastFATBottom
			reader := it.reader
			if _, err := reader.Seek(int64(start), SeekSet); err != nil {
				reader.Close()
				return nil, err
			}
			return &FileHandle{
				reader:          reader,
				start:           start,
				end:             end,
				LegacyShortSeek: true,
			}, nil
		}
	}
}

// splitDirAndFile splits path at its last '/' or ':'. If neither is
// present, the whole path is the file name and the directory path is "".
func splitDirAndFile(path string) (dirPath, fileName string) {
	idx := strings.LastIndexAny(path, "/:")
	if idx < 0 {
		return "", path
	}
	return path[:idx+1], path[idx+1:]
}

// Read fills buf, clamping the read so it never crosses the file's end. It
// returns 0 if the handle is already at or past end.
func (f *FileHandle) Read(buf []byte) (int, error) {
	if f.reader.Pos() >= int64(f.end) {
		return 0, nil
	}
	maxLen := int64(f.end) - f.reader.Pos()
	if int64(len(buf)) > maxLen {
		buf = buf[:maxLen]
	}
	return f.reader.Read(buf)
}

// Seek repositions the handle. whence == SeekSet is relative to the start
// of the file; SeekCur passes the delta straight through to the underlying
// raw reader. If the resulting absolute position would exceed the file's
// end, the legacy behavior (LegacyShortSeek == true, the default) reports
// (0, nil) without moving the reader; otherwise it reports
// errors.ErrInvalidRequest.
func (f *FileHandle) Seek(off int64, whence Whence) (int64, error) {
	target := off
	if whence == SeekSet {
		target += int64(f.start)
	} else {
		target += f.reader.Pos()
	}

	if target > int64(f.end) {
		if f.LegacyShortSeek {
			return 0, nil
		}
		return 0, errors.ErrInvalidRequest.WithMessage("seek past end of file")
	}

	return f.reader.Seek(target, SeekSet)
}

// Size returns the file's length in bytes.
func (f *FileHandle) Size() uint32 {
	return f.end - f.start
}

// Close releases the handle's raw reader.
func (f *FileHandle) Close() error {
	return f.reader.Close()
}
