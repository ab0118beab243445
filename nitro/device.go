package nitro

import (
	"strings"

	"github.com/dargueta/nitrofat/errors"
)

// Stat is the platform-independent subset of file metadata the Nitro device
// surface can actually report: it has no owner, permission, or timestamp
// concepts, unlike a general-purpose filesystem driver.
type Stat struct {
	Size  int64
	IsDir bool
}

// Device is the registered "nitro" filesystem device surface: a thin
// read-only adapter from path-based operations onto a Mount's directory
// iterator and file handle primitives.
type Device struct {
	mount *Mount
}

// NewDevice wraps mount as a Device registered under DeviceName.
func NewDevice(mount *Mount) *Device {
	return &Device{mount: mount}
}

// Name reports the device name this surface registers under.
func (d *Device) Name() string {
	return DeviceName
}

// stripDevicePrefix removes a leading "<anything>:" prefix from path, so
// both "nitro:/ROM/DATA.BIN" and "/ROM/DATA.BIN" resolve identically.
func stripDevicePrefix(path string) string {
	if idx := strings.IndexByte(path, ':'); idx >= 0 {
		return path[idx+1:]
	}
	return path
}

// Open opens path for reading. It takes no access mode: Nitro files are
// always read-only, and Device.Write reports ErrNotSupported.
func (d *Device) Open(path string) (*FileHandle, error) {
	return d.mount.OpenFile(stripDevicePrefix(path))
}

// Close releases a file handle previously returned by Open.
func (d *Device) Close(f *FileHandle) error {
	return f.Close()
}

// Read reads into buf from the current position of f.
func (d *Device) Read(f *FileHandle, buf []byte) (int, error) {
	return f.Read(buf)
}

// Seek repositions f.
func (d *Device) Seek(f *FileHandle, off int64, whence Whence) (int64, error) {
	return f.Seek(off, whence)
}

// Fstat reports f's size.
func (d *Device) Fstat(f *FileHandle) (Stat, error) {
	return Stat{Size: int64(f.Size())}, nil
}

// DirOpen opens path as a directory for enumeration.
func (d *Device) DirOpen(path string) (*DirIter, error) {
	return d.mount.OpenDir(stripDevicePrefix(path))
}

// DirNext yields the next entry of it, or ErrNoSuchPath when exhausted.
func (d *Device) DirNext(it *DirIter) (Entry, error) {
	return it.Next()
}

// DirReset rewinds it back to the first entry of its directory.
func (d *Device) DirReset(it *DirIter) error {
	return it.reset()
}

// DirClose releases it.
func (d *Device) DirClose(it *DirIter) error {
	return it.Close()
}

// The remaining operations form the write family of a general-purpose
// filesystem device surface. The Nitro cartridge filesystem is read-only by
// construction, so every one of them reports ErrNotSupported rather than
// silently succeeding or panicking.

func (d *Device) Write(*FileHandle, []byte) (int, error) {
	return 0, errors.ErrNotSupported.WithMessage("nitro device is read-only: write")
}

func (d *Device) Unlink(string) error {
	return errors.ErrNotSupported.WithMessage("nitro device is read-only: unlink")
}

func (d *Device) Link(string, string) error {
	return errors.ErrNotSupported.WithMessage("nitro device is read-only: link")
}

func (d *Device) Rename(string, string) error {
	return errors.ErrNotSupported.WithMessage("nitro device is read-only: rename")
}

func (d *Device) Chdir(string) error {
	return errors.ErrNotSupported.WithMessage("nitro device is read-only: chdir")
}

func (d *Device) Mkdir(string) error {
	return errors.ErrNotSupported.WithMessage("nitro device is read-only: mkdir")
}

func (d *Device) Statvfs() (Stat, error) {
	return Stat{}, errors.ErrNotSupported.WithMessage("nitro device is read-only: statvfs")
}

func (d *Device) Ftruncate(*FileHandle, int64) error {
	return errors.ErrNotSupported.WithMessage("nitro device is read-only: ftruncate")
}

func (d *Device) Fsync(*FileHandle) error {
	return errors.ErrNotSupported.WithMessage("nitro device is read-only: fsync")
}
