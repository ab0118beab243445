package nitro

import (
	stderrors "errors"
	"strings"

	"github.com/dargueta/nitrofat/errors"
)

// RootDirID is the directory id of the Nitro image's root directory.
const RootDirID = 0xF000

// dirIDMask extracts the low 12 bits of a directory id, the index into the
// FNT directory header array.
const dirIDMask = 0x0FFF

// isDirFlag marks an FNT entry's length byte as describing a subdirectory
// rather than a file.
const isDirFlag = 0x80

// EntryKind distinguishes the two shapes of FNT entry yielded by DirIter.Next.
type EntryKind int

const (
	EntryFile EntryKind = iota
	EntryDirectory
)

// Entry describes one name yielded by DirIter.Next.
type Entry struct {
	Name string
	Kind EntryKind
	// Size is valid only when Kind == EntryFile.
	Size uint32
}

// DirIter walks one directory's entry stream in an open Nitro mount. Each
// DirIter owns an independent RawReader; it is not safe for concurrent use.
type DirIter struct {
	mount    *Mount
	reader   *RawReader
	curDirID uint16
	namePos  uint32
	entryID  uint16
	parentID uint16

	// lastDirID, lastFATTop and lastFATBottom record metadata about the most recent
	// directory/file entry Next returned, mirroring the original
	// dirStruct->dir_id / romfat fields so callers can descend into a
	// directory or open a file without a second lookup.
	lastDirID     uint16
	lastFATTop    uint32
	lastFATBottom uint32
}

// OpenDir opens an iterator at the directory named by path. path is
// tokenized on '/'; any leading "device:" prefix and repeated slashes are
// stripped. An empty path or "/" resolves to the root directory.
func (m *Mount) OpenDir(path string) (*DirIter, error) {
	reader, err := m.newReader()
	if err != nil {
		return nil, err
	}

	it := &DirIter{
		mount:    m,
		reader:   reader,
		curDirID: RootDirID,
	}
	if err := it.reset(); err != nil {
		reader.Close()
		return nil, err
	}

	for _, token := range tokenizePath(path) {
		found := false
		var entry Entry
		for {
			e, err := it.Next()
			if stderrors.Is(err, errors.ErrNoSuchPath) {
				break
			}
			if err != nil {
				reader.Close()
				return nil, err
			}
			entry = e
			if entry.Kind == EntryDirectory && entry.Name == token {
				found = true
				break
			}
		}
		if !found {
			reader.Close()
			return nil, errors.ErrNoSuchPath.WithMessage("no such directory: " + token)
		}
		it.curDirID = it.lastDirID
		if err := it.reset(); err != nil {
			reader.Close()
			return nil, err
		}
	}

	return it, nil
}

// tokenizePath strips a leading "device:" prefix and splits on '/',
// discarding empty tokens produced by leading, trailing, or repeated
// slashes.
func tokenizePath(path string) []string {
	if idx := strings.IndexByte(path, ':'); idx >= 0 {
		path = path[idx+1:]
	}
	parts := strings.Split(path, "/")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			tokens = append(tokens, p)
		}
	}
	return tokens
}

// reset seeks to the current directory's FNT header and loads its
// entry_start/entry_file_id/parent_id fields.
func (it *DirIter) reset() error {
	headerOffset := it.mount.fntOffset + uint32(it.curDirID&dirIDMask)*8
	if _, err := it.reader.Seek(int64(headerOffset), SeekSet); err != nil {
		return err
	}

	hdr := make([]byte, 8)
	if _, err := it.reader.Read(hdr); err != nil {
		return err
	}

	it.namePos = leU32(hdr[0:4])
	it.entryID = leU16(hdr[4:6])
	it.parentID = leU16(hdr[6:8])
	return nil
}

// Next reads and returns the next entry in the directory, advancing
// internal state. It returns errors.ErrNoSuchPath when the directory's
// terminator byte is reached.
func (it *DirIter) Next() (Entry, error) {
	if _, err := it.reader.Seek(int64(it.mount.fntOffset+it.namePos), SeekSet); err != nil {
		return Entry{}, err
	}

	lengthByte := make([]byte, 1)
	if _, err := it.reader.Read(lengthByte); err != nil {
		return Entry{}, err
	}
	t := lengthByte[0]
	if t == 0 {
		return Entry{}, errors.ErrNoSuchPath.WithMessage("end of directory")
	}

	if t&isDirFlag != 0 {
		nameLen := int(t &^ isDirFlag)
		name := make([]byte, nameLen)
		if _, err := it.reader.Read(name); err != nil {
			return Entry{}, err
		}
		idBuf := make([]byte, 2)
		if _, err := it.reader.Read(idBuf); err != nil {
			return Entry{}, err
		}
		it.lastDirID = leU16(idBuf)
		it.namePos += uint32(nameLen) + 3
		return Entry{Name: string(name), Kind: EntryDirectory}, nil
	}

	nameLen := int(t)
	name := make([]byte, nameLen)
	if _, err := it.reader.Read(name); err != nil {
		return Entry{}, err
	}
	it.namePos += uint32(nameLen) + 1

	fatOff := it.mount.fatOffset + uint32(it.entryID)*8
	if _, err := it.reader.Seek(int64(fatOff), SeekSet); err != nil {
		return Entry{}, err
	}
	fatRecord := make([]byte, 8)
	if _, err := it.reader.Read(fatRecord); err != nil {
		return Entry{}, err
	}
	top := leU32(fatRecord[0:4])
	bottom := leU32(fatRecord[4:8])
	it.lastFATTop = top
	it.lastFATBottom = bottom
	it.entryID++

	return Entry{Name: string(name), Kind: EntryFile, Size: bottom - top}, nil
}

// Close releases the iterator's raw reader.
func (it *DirIter) Close() error {
	return it.reader.Close()
}

func leU16(b []byte) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}

func leU32(b []byte) uint32 {
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
}
