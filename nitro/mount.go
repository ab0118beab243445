package nitro

import (
	"encoding/binary"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/dargueta/nitrofat/errors"
)

const (
	signatureOffset = 0xAC
	fntOffsetOffset = 0x40
	fatOffsetOffset = 0x48
)

var signature = [4]byte{'P', 'A', 'S', 'S'}

// Mount is the process-wide Nitro mount handle: the source selector
// (image window vs host file), the FNT/FAT offsets read from the header,
// and (in host-file mode) the path to reopen. It is encapsulated here
// rather than kept as package-level globals, per the "global mutable state"
// design note in SPEC_FULL.md §9, so that a device registration
// layer can own one Mount per registered "nitro" device instead of
// assuming there's exactly one process-wide mount.
type Mount struct {
	kind      sourceKind
	image     []byte
	hostPath  string
	fntOffset uint32
	fatOffset uint32
}

// DeviceName is the logical name the Nitro mount registers itself under.
const DeviceName = "nitro"

// MountImage attempts, in order: (1) verify the "PASS" signature in
// imageBytes and mount in IMAGE_WINDOW mode directly from those bytes; (2)
// if that fails and hostPath is non-empty, open hostPath, re-verify the
// signature, and mount in HOST_FILE mode. If both attempts fail, the
// returned error aggregates both underlying causes.
func MountImage(imageBytes []byte, hostPath string) (*Mount, error) {
	windowErr := verifyWindowSignature(imageBytes)
	if windowErr == nil {
		return &Mount{
			kind:      imageWindow,
			image:     imageBytes,
			fntOffset: binary.LittleEndian.Uint32(imageBytes[fntOffsetOffset : fntOffsetOffset+4]),
			fatOffset: binary.LittleEndian.Uint32(imageBytes[fatOffsetOffset : fatOffsetOffset+4]),
		}, nil
	}

	if hostPath == "" {
		return nil, combineMountErrors(windowErr, errors.ErrInvalidImage.WithMessage("no host .nds path provided"))
	}

	m, hostErr := mountHostFile(hostPath)
	if hostErr != nil {
		return nil, combineMountErrors(windowErr, hostErr)
	}
	return m, nil
}

func combineMountErrors(windowErr, hostErr error) error {
	merr := &multierror.Error{}
	merr = multierror.Append(merr, fmt.Errorf("image window mount: %w", windowErr))
	merr = multierror.Append(merr, fmt.Errorf("host file mount: %w", hostErr))
	return merr
}

func verifyWindowSignature(imageBytes []byte) error {
	if len(imageBytes) < signatureOffset+4 {
		return errors.ErrInvalidImage.WithMessage("image too small to contain a header")
	}
	if !signatureMatches(imageBytes[signatureOffset : signatureOffset+4]) {
		return errors.ErrInvalidImage.WithMessage("missing PASS signature at 0xAC")
	}
	if len(imageBytes) < fatOffsetOffset+4 {
		return errors.ErrInvalidImage.WithMessage("image too small to contain FNT/FAT offsets")
	}
	return nil
}

func signatureMatches(b []byte) bool {
	return b[0] == signature[0] && b[1] == signature[1] && b[2] == signature[2] && b[3] == signature[3]
}

func mountHostFile(hostPath string) (*Mount, error) {
	r, err := newHostFileReader(hostPath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	header := make([]byte, 4)
	if _, err := r.Seek(signatureOffset, SeekSet); err != nil {
		return nil, err
	}
	if _, err := r.Read(header); err != nil {
		return nil, err
	}
	if !signatureMatches(header) {
		return nil, errors.ErrInvalidImage.WithMessage("missing PASS signature at 0xAC in host file")
	}

	fntBuf := make([]byte, 4)
	if _, err := r.Seek(fntOffsetOffset, SeekSet); err != nil {
		return nil, err
	}
	if _, err := r.Read(fntBuf); err != nil {
		return nil, err
	}

	fatBuf := make([]byte, 4)
	if _, err := r.Seek(fatOffsetOffset, SeekSet); err != nil {
		return nil, err
	}
	if _, err := r.Read(fatBuf); err != nil {
		return nil, err
	}

	return &Mount{
		kind:      hostFile,
		hostPath:  hostPath,
		fntOffset: binary.LittleEndian.Uint32(fntBuf),
		fatOffset: binary.LittleEndian.Uint32(fatBuf),
	}, nil
}

// newReader opens a fresh RawReader positioned at byte 0, independent of
// any other reader the mount has handed out.
func (m *Mount) newReader() (*RawReader, error) {
	if m.kind == imageWindow {
		return newImageWindowReader(m.image), nil
	}
	return newHostFileReader(m.hostPath)
}
