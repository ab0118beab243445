// Package nitrofattest provides shared fixtures for sectorcache and nitro
// tests: a deterministic in-memory block device and a builder for synthetic
// Nitro cartridge images, so test files don't each reinvent fixture setup.
package nitrofattest

import (
	"github.com/dargueta/nitrofat/blockdev"
)

// MockDevice is a blockdev.MemoryDevice seeded with deterministic contents,
// so the numbered end-to-end scenarios can be written against exact
// expected bytes instead of random fixtures.
type MockDevice struct {
	*blockdev.MemoryDevice
}

// NewMockDevice allocates a MockDevice of totalSectors sectors. If seed is
// non-nil, sector i is filled entirely with the byte seed(i) before the
// device is handed back; a nil seed leaves every sector zeroed.
//
// bytesPerSector exists for symmetry with the wider block device surface,
// but the sector cache and every BlockDevice implementation fix sector size
// at blockdev.SectorSize, so a value other than that constant is ignored.
func NewMockDevice(bytesPerSector, totalSectors uint, seed func(sector uint32) byte) *MockDevice {
	_ = bytesPerSector
	dev := blockdev.NewMemoryDevice(uint32(totalSectors))
	md := &MockDevice{MemoryDevice: dev}

	if seed != nil {
		buf := make([]byte, blockdev.SectorSize)
		for s := uint32(0); s < uint32(totalSectors); s++ {
			fillByte := seed(s)
			for i := range buf {
				buf[i] = fillByte
			}
			if err := dev.WriteSectors(s, 1, buf); err != nil {
				panic(err)
			}
		}
	}

	return md
}
