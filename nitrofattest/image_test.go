package nitrofattest_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dargueta/nitrofat/nitrofattest"
)

func TestBuildNitroImageHasValidSignatureAndOffsets(t *testing.T) {
	spec := nitrofattest.NitroImageSpec{
		Root: nitrofattest.DirSpec{
			Entries: []nitrofattest.EntrySpec{
				{Name: "A.TXT", Data: []byte("aaa")},
			},
		},
	}

	image := nitrofattest.BuildNitroImage(spec)
	require.GreaterOrEqual(t, len(image), 0xB0)
	assert.Equal(t, "PASS", string(image[0xAC:0xB0]))

	fntOffset := binary.LittleEndian.Uint32(image[0x40:0x44])
	fatOffset := binary.LittleEndian.Uint32(image[0x48:0x4C])
	assert.Greater(t, fntOffset, uint32(0))
	assert.Greater(t, fatOffset, fntOffset)
}

func TestBuildNitroImageEmptyRoot(t *testing.T) {
	image := nitrofattest.BuildNitroImage(nitrofattest.NitroImageSpec{})
	assert.Equal(t, "PASS", string(image[0xAC:0xB0]))
}
