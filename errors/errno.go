// Package errors defines the error taxonomy shared by every layer of
// nitrofat: the sector cache, the endian value layer, and the Nitro mount.
//
// There is no single shared error type. Instead each failure kind is a
// distinct sentinel value (a NitroError) that can be compared with
// errors.Is and decorated with additional context via WithMessage or Wrap.
// Both return a decoratedNitroError: WithMessage's unwraps to the sentinel,
// while Wrap's unwraps to the error being wrapped.
package errors

import "fmt"

// DriverError is the interface satisfied by every sentinel error in this
// package. It lets callers attach context to a failure while still being
// able to test which kind of failure occurred with errors.Is.
type DriverError interface {
	error
	WithMessage(message string) DriverError
	Wrap(err error) DriverError
	Unwrap() error
}

// NitroError is a sentinel error kind. No attempt is made to map these onto
// POSIX errno values; none of the three core subsystems run under a POSIX
// ABI.
type NitroError string

// ErrDeviceIO is returned whenever the underlying block device (or, in the
// Nitro case, the host file standing in for a cartridge) fails a read or
// write. There is no retry at this layer.
const ErrDeviceIO = NitroError("block device I/O failed")

// ErrNoSuchPath is returned when a path token isn't present in the Nitro
// name table, or when a directory/file lookup otherwise comes up empty.
const ErrNoSuchPath = NitroError("no such file or directory")

// ErrInvalidImage is returned when a Nitro image fails signature
// verification, or the host file backing a HOST_FILE mount cannot be
// opened.
const ErrInvalidImage = NitroError("not a valid Nitro image")

// ErrInvalidRequest is returned for malformed calls: a partial-sector
// request whose offset+length exceeds the sector size, an endian width
// other than 1, 2, or 4, or (when LegacyShortSeek is disabled) a seek past
// the end of a file.
const ErrInvalidRequest = NitroError("invalid request")

// ErrResourceExhausted is the kind for a failed backing allocation. No
// constructor in this module returns it: sectorcache.New returns no error,
// and an allocation failure there is a Go runtime panic.
const ErrResourceExhausted = NitroError("resource exhausted")

// ErrNotSupported is returned by the write-family operations the Nitro
// filesystem surface intentionally does not implement: write, unlink,
// link, rename, chdir, mkdir, statvfs, ftruncate, fsync.
const ErrNotSupported = NitroError("operation not supported")

func (e NitroError) Error() string {
	return string(e)
}

// WithMessage appends additional context to the sentinel's message while
// keeping it reachable via errors.Is(result, e).
func (e NitroError) WithMessage(message string) DriverError {
	return decoratedNitroError{
		message:  fmt.Sprintf("%s: %s", string(e), message),
		unwrapTo: e,
	}
}

// Wrap records err as the cause of this sentinel, joining their messages.
// The returned error unwraps to err, not to e; chain WithMessage/Wrap on
// top of an existing NitroError when the sentinel itself must stay
// reachable via errors.Is.
func (e NitroError) Wrap(err error) DriverError {
	return decoratedNitroError{
		message:  fmt.Sprintf("%s: %s", string(e), err.Error()),
		unwrapTo: err,
	}
}

// decoratedNitroError is the concrete DriverError produced by NitroError's
// WithMessage and Wrap. It carries a rendered message plus whatever error
// it should unwrap to. Decorating one with WithMessage keeps the chain
// errors.Is walks back to the original NitroError; decorating one with Wrap
// unwraps only to the newly wrapped error.
type decoratedNitroError struct {
	message  string
	unwrapTo error
}

func (e decoratedNitroError) Error() string {
	return e.message
}

func (e decoratedNitroError) WithMessage(message string) DriverError {
	return decoratedNitroError{
		message:  fmt.Sprintf("%s: %s", e.message, message),
		unwrapTo: e,
	}
}

func (e decoratedNitroError) Wrap(err error) DriverError {
	return decoratedNitroError{
		message:  fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		unwrapTo: err,
	}
}

func (e decoratedNitroError) Unwrap() error {
	return e.unwrapTo
}
