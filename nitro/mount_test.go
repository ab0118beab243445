package nitro_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dargueta/nitrofat/errors"
	"github.com/dargueta/nitrofat/nitro"
	"github.com/dargueta/nitrofat/nitrofattest"
)

func simpleImageSpec() nitrofattest.NitroImageSpec {
	return nitrofattest.NitroImageSpec{
		Root: nitrofattest.DirSpec{
			Entries: []nitrofattest.EntrySpec{
				{Name: "README.TXT", Data: []byte("hello nitro")},
				{
					Name:  "SUB",
					IsDir: true,
					Dir: nitrofattest.DirSpec{
						Entries: []nitrofattest.EntrySpec{
							{Name: "DATA.BIN", Data: []byte{1, 2, 3, 4, 5}},
						},
					},
				},
			},
		},
	}
}

func TestMountImageWindowSucceedsOnValidSignature(t *testing.T) {
	image := nitrofattest.BuildNitroImage(simpleImageSpec())

	mount, err := nitro.MountImage(image, "")
	require.NoError(t, err)
	require.NotNil(t, mount)
}

func TestMountFailsWhenNoSignatureAndNoHostPath(t *testing.T) {
	_, err := nitro.MountImage([]byte("not an nds image"), "")
	require.Error(t, err)
}

func TestMountFallsBackToHostFile(t *testing.T) {
	image := nitrofattest.BuildNitroImage(simpleImageSpec())
	path := filepath.Join(t.TempDir(), "rom.nds")
	require.NoError(t, os.WriteFile(path, image, 0o644))

	// An invalid window image forces the host-file fallback path.
	mount, err := nitro.MountImage([]byte("garbage"), path)
	require.NoError(t, err)
	require.NotNil(t, mount)

	f, err := mount.OpenFile("/README.TXT")
	require.NoError(t, err)
	defer f.Close()

	buf := make([]byte, len("hello nitro"))
	n, err := f.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello nitro", string(buf[:n]))
}

func TestMountAggregatesBothFailures(t *testing.T) {
	_, err := nitro.MountImage([]byte("garbage"), filepath.Join(t.TempDir(), "missing.nds"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "image window mount")
	assert.Contains(t, err.Error(), "host file mount")
}

func TestMountImageTooSmallReportsInvalidImage(t *testing.T) {
	_, err := nitro.MountImage([]byte{1, 2, 3}, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidImage)
}
