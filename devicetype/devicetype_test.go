package devicetype_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dargueta/nitrofat/devicetype"
)

func TestLookupKnownTag(t *testing.T) {
	dt, ok := devicetype.Lookup("mem")
	require.True(t, ok)
	assert.Equal(t, "mem", dt.Slug)
}

func TestLookupUnknownTag(t *testing.T) {
	_, ok := devicetype.Lookup("does-not-exist")
	assert.False(t, ok)
}

func TestTagsIncludesEveryRegisteredSlug(t *testing.T) {
	tags := devicetype.Tags()
	assert.Contains(t, tags, "mem")
	assert.Contains(t, tags, "cf")
	assert.Contains(t, tags, "sd")
	assert.Contains(t, tags, "mmc")
	assert.Contains(t, tags, "nitro-host")
	assert.Contains(t, tags, "nitro-cart")
}

func TestFeatureBitsReflectsCSVRow(t *testing.T) {
	dt, ok := devicetype.Lookup("mem")
	require.True(t, ok)

	bits := dt.FeatureBits()
	assert.Equal(t, dt.DefaultReadOnly, bits.ReadOnly())
	assert.Equal(t, dt.DefaultWritable, bits.Writable())
	assert.Equal(t, dt.DefaultRemovable, bits.Removable())
}
