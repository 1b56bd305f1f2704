package zipatch

import "errors"

// Sentinel errors for stream-level failures. These indicate the patch
// stream cannot be trusted further and abort processing of the file.
var (
	// ErrInvalidMagic is returned when the 12-byte file signature does
	// not match the ZiPatch magic.
	ErrInvalidMagic = errors.New("zipatch: invalid magic number")

	// ErrUnexpectedEOF is returned on any short read at a header,
	// payload, CRC, path, or chunk boundary.
	ErrUnexpectedEOF = errors.New("zipatch: unexpected end of file")

	// ErrUnknownBlockType is returned when a block carries an
	// unrecognized 4-byte type tag. The payload layout of unknown
	// types cannot be safely bounded, so this is fatal.
	ErrUnknownBlockType = errors.New("zipatch: unknown block type")

	// ErrPathTooLong is returned when a path length field exceeds the
	// 1024-byte format limit. Rejected before allocating the path.
	ErrPathTooLong = errors.New("zipatch: path size too large")

	// ErrSizeMismatch is returned when the total bytes consumed from a
	// patch file do not equal the file's size.
	ErrSizeMismatch = errors.New("zipatch: file size mismatch")

	// ErrCRCMismatch is returned when opt-in CRC validation is enabled
	// and a block's trailing CRC disagrees with the computed value.
	ErrCRCMismatch = errors.New("zipatch: block crc mismatch")
)

// Sentinel errors for entry-level failures. These fail the entry being
// applied; the stream framing itself is still intact.
var (
	// ErrUnknownCompression is returned when a chunk declares a
	// compression mode that is neither none nor zlib.
	ErrUnknownCompression = errors.New("zipatch: unknown compression mode")

	// ErrHashMismatch is returned when the SHA-1 of the written entry
	// content does not match the last chunk's declared hash.
	ErrHashMismatch = errors.New("zipatch: hash verification failed")

	// ErrInvalidPath is returned when a decoded path would resolve
	// outside the output root.
	ErrInvalidPath = errors.New("zipatch: path escapes output root")
)
