package zipatch

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// magic is the fixed 12-byte file signature. The surrounding bytes
// follow the PNG convention: a high-bit byte, the format name, then
// CR LF SUB LF to catch text-mode mangling.
var magic = [12]byte{0x91, 'Z', 'I', 'P', 'A', 'T', 'C', 'H', 0x0D, 0x0A, 0x1A, 0x0A}

// blockHeaderSize is the fixed size of a block header: a big-endian
// u32 payload size followed by the 4-byte type tag.
const blockHeaderSize = 8

// ReadMagic consumes and validates the 12-byte file signature.
// It returns ErrUnexpectedEOF if fewer than 12 bytes are available and
// ErrInvalidMagic on a signature mismatch.
func ReadMagic(r io.Reader) error {
	var buf [len(magic)]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return fmt.Errorf("%w: reading magic", ErrUnexpectedEOF)
		}
		return fmt.Errorf("reading magic: %w", err)
	}
	if buf != magic {
		return fmt.Errorf("%w: % X", ErrInvalidMagic, buf[:])
	}
	return nil
}

// BlockHeader is the fixed 8-byte frame prefix of one block. It is
// constructed per block and discarded after dispatch.
type BlockHeader struct {
	// PayloadSize is the number of payload bytes that follow the
	// header, excluding the trailing CRC.
	PayloadSize uint32

	// Type is the decoded block type.
	Type BlockType

	// Tag is the raw 4-byte type tag as read from the wire. Retained
	// so unknown tags can be reported verbatim.
	Tag [4]byte
}

// ReadBlockHeader reads the next block header from the stream.
//
// A clean end of stream before any header bytes returns io.EOF; this is
// the normal termination signal, not an error. A partial header returns
// ErrUnexpectedEOF.
func ReadBlockHeader(r io.Reader) (BlockHeader, error) {
	var buf [blockHeaderSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return BlockHeader{}, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return BlockHeader{}, fmt.Errorf("%w: reading block header", ErrUnexpectedEOF)
		}
		return BlockHeader{}, fmt.Errorf("reading block header: %w", err)
	}

	h := BlockHeader{PayloadSize: binary.BigEndian.Uint32(buf[:4])}
	copy(h.Tag[:], buf[4:])
	h.Type = ParseBlockTag(h.Tag)
	return h, nil
}

// Encode serializes the header to its 8-byte wire form. When Tag is
// unset the tag is derived from Type.
func (h BlockHeader) Encode() []byte {
	buf := make([]byte, blockHeaderSize)
	binary.BigEndian.PutUint32(buf, h.PayloadSize)
	tag := h.Tag
	if tag == ([4]byte{}) {
		tag = h.Type.Tag()
	}
	copy(buf[4:], tag[:])
	return buf
}

// byteReader is a bounds-checked sequential reader over one block's
// payload. Short reads surface as ErrUnexpectedEOF so every decoder
// reports truncation uniformly.
type byteReader struct {
	buf []byte
	off int
}

func newByteReader(payload []byte) *byteReader {
	return &byteReader{buf: payload}
}

func (r *byteReader) remaining() int {
	return len(r.buf) - r.off
}

// take returns the next n bytes of the payload without copying.
func (r *byteReader) take(n int, what string) ([]byte, error) {
	if n < 0 || r.remaining() < n {
		return nil, fmt.Errorf("%w: reading %s (%d of %d bytes)", ErrUnexpectedEOF, what, r.remaining(), n)
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *byteReader) u32(what string) (uint32, error) {
	b, err := r.take(4, what)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}
