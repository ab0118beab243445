package nitro_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dargueta/nitrofat/errors"
	"github.com/dargueta/nitrofat/nitro"
)

func TestDeviceNameIsNitro(t *testing.T) {
	mount := mustMount(t, simpleImageSpec())
	dev := nitro.NewDevice(mount)
	assert.Equal(t, "nitro", dev.Name())
}

func TestDeviceOpenReadFstatClose(t *testing.T) {
	mount := mustMount(t, simpleImageSpec())
	dev := nitro.NewDevice(mount)

	f, err := dev.Open("nitro:/README.TXT")
	require.NoError(t, err)

	stat, err := dev.Fstat(f)
	require.NoError(t, err)
	assert.EqualValues(t, len("hello nitro"), stat.Size)
	assert.False(t, stat.IsDir)

	buf := make([]byte, 32)
	n, err := dev.Read(f, buf)
	require.NoError(t, err)
	assert.Equal(t, "hello nitro", string(buf[:n]))

	require.NoError(t, dev.Close(f))
}

func TestDeviceDirEnumeration(t *testing.T) {
	mount := mustMount(t, simpleImageSpec())
	dev := nitro.NewDevice(mount)

	it, err := dev.DirOpen("/")
	require.NoError(t, err)
	defer dev.DirClose(it)

	entry, err := dev.DirNext(it)
	require.NoError(t, err)
	assert.Equal(t, "README.TXT", entry.Name)

	require.NoError(t, dev.DirReset(it))
	entry, err = dev.DirNext(it)
	require.NoError(t, err)
	assert.Equal(t, "README.TXT", entry.Name, "DirReset must rewind to the first entry")
}

func TestDeviceWriteFamilyReturnsErrNotSupported(t *testing.T) {
	mount := mustMount(t, simpleImageSpec())
	dev := nitro.NewDevice(mount)

	_, err := dev.Write(nil, nil)
	assert.ErrorIs(t, err, errors.ErrNotSupported)

	assert.ErrorIs(t, dev.Unlink("/README.TXT"), errors.ErrNotSupported)
	assert.ErrorIs(t, dev.Link("/a", "/b"), errors.ErrNotSupported)
	assert.ErrorIs(t, dev.Rename("/a", "/b"), errors.ErrNotSupported)
	assert.ErrorIs(t, dev.Chdir("/SUB"), errors.ErrNotSupported)
	assert.ErrorIs(t, dev.Mkdir("/NEW"), errors.ErrNotSupported)
	assert.ErrorIs(t, dev.Ftruncate(nil, 0), errors.ErrNotSupported)
	assert.ErrorIs(t, dev.Fsync(nil), errors.ErrNotSupported)

	_, err = dev.Statvfs()
	assert.ErrorIs(t, err, errors.ErrNotSupported)
}
