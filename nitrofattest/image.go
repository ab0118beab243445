package nitrofattest

import (
	"bytes"
	"encoding/binary"
)

const (
	headerRegionSize = 0x100
	isDirFlag        = 0x80
	rootDirBase      = 0xF000
	fntOffsetOffset  = 0x40
	fatOffsetOffset  = 0x48
	signatureOffset  = 0xAC
)

// EntrySpec is one named entry in a DirSpec: either a subdirectory (IsDir
// true, Dir populated) or a file (IsDir false, Data populated).
type EntrySpec struct {
	Name  string
	IsDir bool
	Dir   DirSpec
	Data  []byte

	resolvedDirID uint16
}

// DirSpec is an ordered list of entries making up one directory. Order is
// preserved in the built image's FNT entry stream.
type DirSpec struct {
	Entries []EntrySpec
}

// NitroImageSpec describes a complete synthetic Nitro image: a single root
// directory tree.
type NitroImageSpec struct {
	Root DirSpec
}

type dirNode struct {
	spec     *DirSpec
	id       uint16
	parentID uint16
}

// BuildNitroImage assembles a minimal but structurally valid Nitro image
// (PASS signature, FNT, FAT, and file data) from spec, suitable for Mount
// in IMAGE_WINDOW mode. Directory ids are assigned breadth-first starting
// at 0xF000 for the root; file ids are assigned in the same breadth-first
// order, counting only file entries.
func BuildNitroImage(spec NitroImageSpec) []byte {
	queue := []*dirNode{{spec: &spec.Root, id: 0, parentID: 0}}
	nextDirID := uint16(1)

	for i := 0; i < len(queue); i++ {
		node := queue[i]
		for j := range node.spec.Entries {
			e := &node.spec.Entries[j]
			if !e.IsDir {
				continue
			}
			child := &dirNode{spec: &e.Dir, id: nextDirID, parentID: node.id}
			e.resolvedDirID = nextDirID
			nextDirID++
			queue = append(queue, child)
		}
	}

	dirFileStart := make([]uint16, len(queue))
	fileIDCounter := uint16(0)
	for i, node := range queue {
		dirFileStart[i] = fileIDCounter
		for j := range node.spec.Entries {
			if !node.spec.Entries[j].IsDir {
				fileIDCounter++
			}
		}
	}

	headerSize := uint32(len(queue)) * 8
	entryArea := &bytes.Buffer{}
	entryStart := make([]uint32, len(queue))

	for i, node := range queue {
		entryStart[i] = headerSize + uint32(entryArea.Len())
		for j := range node.spec.Entries {
			e := &node.spec.Entries[j]
			if e.IsDir {
				entryArea.WriteByte(byte(len(e.Name)) | isDirFlag)
				entryArea.WriteString(e.Name)
				idBuf := make([]byte, 2)
				binary.LittleEndian.PutUint16(idBuf, rootDirBase+e.resolvedDirID)
				entryArea.Write(idBuf)
			} else {
				entryArea.WriteByte(byte(len(e.Name)))
				entryArea.WriteString(e.Name)
			}
		}
		entryArea.WriteByte(0)
	}

	fntBytes := make([]byte, headerSize)
	for i, node := range queue {
		off := i * 8
		binary.LittleEndian.PutUint32(fntBytes[off:off+4], entryStart[i])
		binary.LittleEndian.PutUint16(fntBytes[off+4:off+6], dirFileStart[i])
		if i == 0 {
			binary.LittleEndian.PutUint16(fntBytes[off+6:off+8], uint16(len(queue)))
		} else {
			binary.LittleEndian.PutUint16(fntBytes[off+6:off+8], rootDirBase+node.parentID)
		}
	}
	fntBytes = append(fntBytes, entryArea.Bytes()...)

	fntOffset := uint32(headerRegionSize)
	fatOffset := fntOffset + uint32(len(fntBytes))
	fatSize := uint32(fileIDCounter) * 8
	fileDataOffset := fatOffset + fatSize

	fatBytes := make([]byte, fatSize)
	fileData := &bytes.Buffer{}
	fileCounter := 0
	for _, node := range queue {
		for j := range node.spec.Entries {
			e := &node.spec.Entries[j]
			if e.IsDir {
				continue
			}
			start := fileDataOffset + uint32(fileData.Len())
			fileData.Write(e.Data)
			end := fileDataOffset + uint32(fileData.Len())

			off := fileCounter * 8
			binary.LittleEndian.PutUint32(fatBytes[off:off+4], start)
			binary.LittleEndian.PutUint32(fatBytes[off+4:off+8], end)
			fileCounter++
		}
	}

	totalSize := fileDataOffset + uint32(fileData.Len())
	image := make([]byte, totalSize)
	copy(image[fntOffset:], fntBytes)
	copy(image[fatOffset:], fatBytes)
	copy(image[fileDataOffset:], fileData.Bytes())

	binary.LittleEndian.PutUint32(image[fntOffsetOffset:fntOffsetOffset+4], fntOffset)
	binary.LittleEndian.PutUint32(image[fatOffsetOffset:fatOffsetOffset+4], fatOffset)
	copy(image[signatureOffset:signatureOffset+4], []byte("PASS"))

	return image
}
