package nitro_test

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dargueta/nitrofat/errors"
	"github.com/dargueta/nitrofat/nitro"
	"github.com/dargueta/nitrofat/nitrofattest"
)

func mustMount(t *testing.T, spec nitrofattest.NitroImageSpec) *nitro.Mount {
	t.Helper()
	image := nitrofattest.BuildNitroImage(spec)
	mount, err := nitro.MountImage(image, "")
	require.NoError(t, err)
	return mount
}

func TestOpenDirRootListsAllEntries(t *testing.T) {
	mount := mustMount(t, simpleImageSpec())

	it, err := mount.OpenDir("/")
	require.NoError(t, err)
	defer it.Close()

	var names []string
	var kinds []nitro.EntryKind
	for {
		entry, err := it.Next()
		if stderrors.Is(err, errors.ErrNoSuchPath) {
			break
		}
		require.NoError(t, err)
		names = append(names, entry.Name)
		kinds = append(kinds, entry.Kind)
	}

	assert.Equal(t, []string{"README.TXT", "SUB"}, names)
	assert.Equal(t, []nitro.EntryKind{nitro.EntryFile, nitro.EntryDirectory}, kinds)
}

func TestOpenDirDescendsIntoSubdirectory(t *testing.T) {
	mount := mustMount(t, simpleImageSpec())

	it, err := mount.OpenDir("/SUB")
	require.NoError(t, err)
	defer it.Close()

	entry, err := it.Next()
	require.NoError(t, err)
	assert.Equal(t, "DATA.BIN", entry.Name)
	assert.Equal(t, nitro.EntryFile, entry.Kind)
	assert.EqualValues(t, 5, entry.Size)

	_, err = it.Next()
	require.ErrorIs(t, err, errors.ErrNoSuchPath)
}

func TestOpenDirRejectsUnknownPath(t *testing.T) {
	mount := mustMount(t, simpleImageSpec())

	_, err := mount.OpenDir("/DOES-NOT-EXIST")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNoSuchPath)
}

func TestOpenDirStripsDevicePrefix(t *testing.T) {
	mount := mustMount(t, simpleImageSpec())

	it, err := mount.OpenDir("nitro:/SUB")
	require.NoError(t, err)
	defer it.Close()

	entry, err := it.Next()
	require.NoError(t, err)
	assert.Equal(t, "DATA.BIN", entry.Name)
}
