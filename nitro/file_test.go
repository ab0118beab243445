package nitro_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dargueta/nitrofat/errors"
	"github.com/dargueta/nitrofat/nitro"
)

func TestOpenFileReadsFullContents(t *testing.T) {
	mount := mustMount(t, simpleImageSpec())

	f, err := mount.OpenFile("/README.TXT")
	require.NoError(t, err)
	defer f.Close()

	assert.EqualValues(t, len("hello nitro"), f.Size())

	buf := make([]byte, 32)
	n, err := f.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello nitro", string(buf[:n]))

	n, err = f.Read(buf)
	require.NoError(t, err)
	assert.Zero(t, n, "read past end of file must return 0, nil")
}

func TestOpenFileInSubdirectory(t *testing.T) {
	mount := mustMount(t, simpleImageSpec())

	f, err := mount.OpenFile("/SUB/DATA.BIN")
	require.NoError(t, err)
	defer f.Close()

	buf := make([]byte, 5)
	n, err := f.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, buf[:n])
}

func TestOpenFileMissingReturnsErrNoSuchPath(t *testing.T) {
	mount := mustMount(t, simpleImageSpec())

	_, err := mount.OpenFile("/NOPE.TXT")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNoSuchPath)
}

func TestSeekWithinFile(t *testing.T) {
	mount := mustMount(t, simpleImageSpec())

	f, err := mount.OpenFile("/README.TXT")
	require.NoError(t, err)
	defer f.Close()

	_, err = f.Seek(6, nitro.SeekSet)
	require.NoError(t, err)

	buf := make([]byte, 5)
	n, err := f.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "nitro", string(buf[:n]))
}

func TestLegacyShortSeekPastEndReturnsZeroNil(t *testing.T) {
	mount := mustMount(t, simpleImageSpec())

	f, err := mount.OpenFile("/README.TXT")
	require.NoError(t, err)
	defer f.Close()

	require.True(t, f.LegacyShortSeek)

	off, err := f.Seek(1000, nitro.SeekSet)
	require.NoError(t, err)
	assert.Zero(t, off)
}

func TestSeekPastEndReturnsErrorWhenLegacyQuirkDisabled(t *testing.T) {
	mount := mustMount(t, simpleImageSpec())

	f, err := mount.OpenFile("/README.TXT")
	require.NoError(t, err)
	defer f.Close()
	f.LegacyShortSeek = false

	_, err = f.Seek(1000, nitro.SeekSet)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidRequest)
}
