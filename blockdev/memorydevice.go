package blockdev

import (
	"fmt"

	"github.com/dargueta/nitrofat/errors"
)

// MemoryDevice is an in-memory reference implementation of BlockDevice. It
// is not a physical CF/SD/MMC driver; it exists purely so the sector cache
// has something real to run against in tests without hardware. The
// nitrofatctl CLI does not use it.
type MemoryDevice struct {
	sectors    []byte
	totalSecs  uint32
	inserted   bool
	readOnly   bool
	failReads  map[uint32]bool
	failWrites map[uint32]bool
}

// NewMemoryDevice allocates a MemoryDevice with the given number of
// SectorSize-byte sectors, all zeroed.
func NewMemoryDevice(totalSectors uint32) *MemoryDevice {
	return &MemoryDevice{
		sectors:    make([]byte, uint64(totalSectors)*SectorSize),
		totalSecs:  totalSectors,
		inserted:   true,
		failReads:  map[uint32]bool{},
		failWrites: map[uint32]bool{},
	}
}

// FailSectorRead causes subsequent reads covering the given sector to fail
// with errors.ErrDeviceIO, for exercising failure propagation in tests.
func (d *MemoryDevice) FailSectorRead(sector uint32) {
	d.failReads[sector] = true
}

// FailSectorWrite is the write-path counterpart of FailSectorRead.
func (d *MemoryDevice) FailSectorWrite(sector uint32) {
	d.failWrites[sector] = true
}

// SetInserted controls the value IsInserted reports, for simulating
// removable media being ejected.
func (d *MemoryDevice) SetInserted(inserted bool) {
	d.inserted = inserted
}

// SetReadOnly controls whether WriteSectors fails immediately.
func (d *MemoryDevice) SetReadOnly(readOnly bool) {
	d.readOnly = readOnly
}

func (d *MemoryDevice) checkRange(first, count uint32) error {
	if count == 0 || count > MaxSectorsPerCall {
		return errors.ErrInvalidRequest.WithMessage(
			fmt.Sprintf("sector count %d out of range [1, %d]", count, MaxSectorsPerCall),
		)
	}
	if uint64(first)+uint64(count) > uint64(d.totalSecs) {
		return errors.ErrInvalidRequest.WithMessage(
			fmt.Sprintf(
				"sectors [%d, %d) extend past device size %d",
				first, uint64(first)+uint64(count), d.totalSecs,
			),
		)
	}
	return nil
}

// ReadSectors implements BlockDevice.
func (d *MemoryDevice) ReadSectors(first uint32, count uint32, out []byte) error {
	if err := d.checkRange(first, count); err != nil {
		return err
	}
	for s := first; s < first+count; s++ {
		if d.failReads[s] {
			return errors.ErrDeviceIO.WithMessage(fmt.Sprintf("simulated read failure at sector %d", s))
		}
	}
	start := uint64(first) * SectorSize
	end := start + uint64(count)*SectorSize
	copy(out, d.sectors[start:end])
	return nil
}

// WriteSectors implements BlockDevice.
func (d *MemoryDevice) WriteSectors(first uint32, count uint32, in []byte) error {
	if d.readOnly {
		return errors.ErrNotSupported.WithMessage("device is read-only")
	}
	if err := d.checkRange(first, count); err != nil {
		return err
	}
	for s := first; s < first+count; s++ {
		if d.failWrites[s] {
			return errors.ErrDeviceIO.WithMessage(fmt.Sprintf("simulated write failure at sector %d", s))
		}
	}
	start := uint64(first) * SectorSize
	end := start + uint64(count)*SectorSize
	copy(d.sectors[start:end], in)
	return nil
}

// IsInserted implements BlockDevice.
func (d *MemoryDevice) IsInserted() bool { return d.inserted }

// Startup implements BlockDevice. It's a no-op for memory-backed storage.
func (d *MemoryDevice) Startup() error { return nil }

// Shutdown implements BlockDevice. It's a no-op for memory-backed storage.
func (d *MemoryDevice) Shutdown() error { return nil }

// ClearStatus implements BlockDevice. It's a no-op for memory-backed storage.
func (d *MemoryDevice) ClearStatus() error { return nil }

// TypeTag implements BlockDevice.
func (d *MemoryDevice) TypeTag() string { return "mem" }

// Features implements BlockDevice.
func (d *MemoryDevice) Features() FeatureBits {
	f := NewFeatureBits()
	f.Set(FeatureWritable, !d.readOnly)
	f.Set(FeatureReadOnly, d.readOnly)
	f.Set(FeatureSlotFixed, true)
	f.Set(FeatureSupportsStartupShutdown, true)
	return f
}
