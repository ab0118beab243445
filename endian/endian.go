// Package endian implements the little-endian on-disk value layer: reading
// and writing 1/2/4-byte unsigned integers at an arbitrary (sector, offset)
// position through a sector cache.
package endian

import (
	"encoding/binary"
	"fmt"

	"github.com/noxer/bytewriter"

	"github.com/dargueta/nitrofat/errors"
	"github.com/dargueta/nitrofat/sectorcache"
)

// ReadLittle reads a width-byte little-endian unsigned integer at byte
// offset off of sector, through cache. width must be 1, 2, or 4.
func ReadLittle(cache *sectorcache.Cache, sector uint32, off uint32, width int) (uint32, error) {
	buf, err := widthBuffer(width)
	if err != nil {
		return 0, err
	}
	if err := cache.ReadPartial(sector, off, buf); err != nil {
		return 0, err
	}
	return decodeLittle(buf, width), nil
}

// WriteLittle writes value as a width-byte little-endian unsigned integer
// at byte offset off of sector, through cache. width must be 1, 2, or 4.
// Bytes of the sector outside [off, off+width) are left untouched.
func WriteLittle(cache *sectorcache.Cache, sector uint32, off uint32, width int, value uint32) error {
	if _, err := widthBuffer(width); err != nil {
		return err
	}

	staging := make([]byte, 4)
	writer := bytewriter.New(staging)
	if err := binary.Write(writer, binary.LittleEndian, value); err != nil {
		return errors.ErrInvalidRequest.Wrap(err)
	}

	return cache.WritePartial(sector, off, staging[:width])
}

func widthBuffer(width int) ([]byte, error) {
	switch width {
	case 1, 2, 4:
		return make([]byte, width), nil
	default:
		return nil, errors.ErrInvalidRequest.WithMessage(
			fmt.Sprintf("endian width must be 1, 2, or 4, got %d", width),
		)
	}
}

func decodeLittle(buf []byte, width int) uint32 {
	switch width {
	case 1:
		return uint32(buf[0])
	case 2:
		return uint32(binary.LittleEndian.Uint16(buf))
	case 4:
		return binary.LittleEndian.Uint32(buf)
	default:
		panic("endian: unreachable width")
	}
}
