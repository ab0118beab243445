package blockdev_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dargueta/nitrofat/blockdev"
	"github.com/dargueta/nitrofat/errors"
)

func TestMemoryDeviceReadWriteRoundTrip(t *testing.T) {
	dev := blockdev.NewMemoryDevice(4)

	payload := make([]byte, blockdev.SectorSize)
	payload[0] = 0x55
	require.NoError(t, dev.WriteSectors(1, 1, payload))

	out := make([]byte, blockdev.SectorSize)
	require.NoError(t, dev.ReadSectors(1, 1, out))
	assert.Equal(t, payload, out)
}

func TestMemoryDeviceRejectsOutOfRangeSectors(t *testing.T) {
	dev := blockdev.NewMemoryDevice(4)

	err := dev.ReadSectors(3, 2, make([]byte, 2*blockdev.SectorSize))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidRequest)
}

func TestMemoryDeviceReadOnlyRejectsWrites(t *testing.T) {
	dev := blockdev.NewMemoryDevice(4)
	dev.SetReadOnly(true)

	err := dev.WriteSectors(0, 1, make([]byte, blockdev.SectorSize))
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNotSupported)
	assert.True(t, dev.Features().ReadOnly())
	assert.False(t, dev.Features().Writable())
}

func TestMemoryDeviceInjectedFailures(t *testing.T) {
	dev := blockdev.NewMemoryDevice(4)
	dev.FailSectorRead(2)
	dev.FailSectorWrite(3)

	readErr := dev.ReadSectors(2, 1, make([]byte, blockdev.SectorSize))
	require.Error(t, readErr)
	assert.ErrorIs(t, readErr, errors.ErrDeviceIO)

	writeErr := dev.WriteSectors(3, 1, make([]byte, blockdev.SectorSize))
	require.Error(t, writeErr)
	assert.ErrorIs(t, writeErr, errors.ErrDeviceIO)
}

func TestMemoryDeviceInsertedToggle(t *testing.T) {
	dev := blockdev.NewMemoryDevice(1)
	assert.True(t, dev.IsInserted())
	dev.SetInserted(false)
	assert.False(t, dev.IsInserted())
}

func TestMemoryDeviceTypeTag(t *testing.T) {
	dev := blockdev.NewMemoryDevice(1)
	assert.Equal(t, "mem", dev.TypeTag())
}
