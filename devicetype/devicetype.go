// Package devicetype loads the registry of known block device type tags
// from an embedded CSV table, the way the rest of the ecosystem loads
// static reference data such as disk geometries: a single
// UnmarshalToCallback pass into a package-level map at init time.
package devicetype

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/dargueta/nitrofat/blockdev"
)

//go:embed devicetypes.csv
var rawDeviceTypesCSV string

// DeviceType is one row of the registry: a stable slug, a display name, and
// the default feature bitmask devices of this type advertise unless they
// override it themselves.
type DeviceType struct {
	Slug             string `csv:"slug"`
	Name             string `csv:"name"`
	DefaultReadOnly  bool   `csv:"read_only"`
	DefaultWritable  bool   `csv:"writable"`
	DefaultRemovable bool   `csv:"removable"`
	DefaultFixed     bool   `csv:"fixed"`
	DefaultStartStop bool   `csv:"startup_shutdown"`
}

// FeatureBits builds the FeatureBits this device type advertises by
// default.
func (d DeviceType) FeatureBits() blockdev.FeatureBits {
	f := blockdev.NewFeatureBits()
	f.Set(blockdev.FeatureReadOnly, d.DefaultReadOnly)
	f.Set(blockdev.FeatureWritable, d.DefaultWritable)
	f.Set(blockdev.FeatureSlotRemovable, d.DefaultRemovable)
	f.Set(blockdev.FeatureSlotFixed, d.DefaultFixed)
	f.Set(blockdev.FeatureSupportsStartupShutdown, d.DefaultStartStop)
	return f
}

var registry = map[string]DeviceType{}

func init() {
	reader := strings.NewReader(rawDeviceTypesCSV)
	err := gocsv.UnmarshalToCallback(reader, func(row DeviceType) error {
		if _, exists := registry[row.Slug]; exists {
			return fmt.Errorf("duplicate device type slug %q", row.Slug)
		}
		registry[row.Slug] = row
		return nil
	})
	if err != nil {
		panic(fmt.Sprintf("devicetype: failed to load embedded registry: %s", err))
	}
}

// Lookup returns the DeviceType registered under tag, if any.
func Lookup(tag string) (DeviceType, bool) {
	dt, ok := registry[tag]
	return dt, ok
}

// Tags returns every slug currently registered. Order is unspecified.
func Tags() []string {
	tags := make([]string, 0, len(registry))
	for tag := range registry {
		tags = append(tags, tag)
	}
	return tags
}
