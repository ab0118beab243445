// Package blockdev defines the block device capability consumed by the
// sector cache, and a small bitmask type drivers use to advertise what they
// support.
//
// This package does not implement any physical storage driver. Those are
// external collaborators (CF/SD/etc. controllers); blockdev only defines
// the contract they must satisfy and ships one reference implementation,
// MemoryDevice, for tests.
package blockdev

import (
	bitmap "github.com/boljen/go-bitmap"
)

// SectorSize is the fixed byte size of a sector. Every BlockDevice
// implementation in this module uses this size; a device with a
// different native sector size is expected to present this size to its
// caller regardless of its own internal geometry.
const SectorSize = 512

// MaxSectorsPerCall is the largest sector count a single ReadSectors or
// WriteSectors call may request, per the external block device contract.
const MaxSectorsPerCall = 256

// BlockDevice is the synchronous capability the sector cache is built on.
// All four I/O-ish methods are expected to block the caller until the
// underlying operation completes; there is no async variant.
type BlockDevice interface {
	// ReadSectors fills out (which must be exactly count*SectorSize bytes)
	// with the contents of sectors [first, first+count).
	ReadSectors(first uint32, count uint32, out []byte) error

	// WriteSectors writes in (which must be exactly count*SectorSize bytes)
	// to sectors [first, first+count).
	WriteSectors(first uint32, count uint32, in []byte) error

	// IsInserted reports whether removable media is currently present. Fixed
	// devices always return true.
	IsInserted() bool

	// Startup prepares the device for I/O, e.g. powering up a card slot.
	Startup() error

	// Shutdown releases any resources Startup acquired.
	Shutdown() error

	// ClearStatus clears a latched error/status condition on the device.
	ClearStatus() error

	// TypeTag identifies the class of device for the device type registry
	// (see package devicetype). It is purely descriptive.
	TypeTag() string

	// Features reports the capability bitmask for this device instance.
	Features() FeatureBits
}

// Feature bit positions within a FeatureBits bitmap.
const (
	FeatureReadOnly = iota
	FeatureWritable
	FeatureSlotRemovable
	FeatureSlotFixed
	FeatureSupportsStartupShutdown
	featureBitCount
)

// FeatureBits is a compact bitmask describing what a BlockDevice supports:
// read/write access and whether its slot is removable or fixed media, plus
// whether Startup/Shutdown do anything meaningful. It is backed by
// go-bitmap rather than a raw uint so that growing the bit count (a future
// driver contributing new capability bits) doesn't require widening every
// call site that stores one.
type FeatureBits struct {
	bits bitmap.Bitmap
}

// NewFeatureBits creates an empty FeatureBits with none of the known bits
// set.
func NewFeatureBits() FeatureBits {
	return FeatureBits{bits: bitmap.NewSlice(featureBitCount)}
}

// Set sets or clears the bit at the given position.
func (f FeatureBits) Set(bit int, value bool) {
	f.bits.Set(bit, value)
}

// Has reports whether the bit at the given position is set.
func (f FeatureBits) Has(bit int) bool {
	return f.bits.Get(bit)
}

// ReadOnly reports whether the device refuses writes.
func (f FeatureBits) ReadOnly() bool { return f.Has(FeatureReadOnly) }

// Writable reports whether the device accepts writes.
func (f FeatureBits) Writable() bool { return f.Has(FeatureWritable) }

// Removable reports whether the device's media can be physically ejected.
func (f FeatureBits) Removable() bool { return f.Has(FeatureSlotRemovable) }
