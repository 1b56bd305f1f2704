package zipatch

import (
	"bytes"
	"crypto/sha1"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"

	"github.com/meigma/zipatch/internal/sizing"
)

// ChunkMode identifies the file operation a chunk belongs to. The
// whole-entry operation is taken from the first chunk's mode; later
// chunks contribute only data.
type ChunkMode uint8

const (
	ModeUnknown ChunkMode = iota
	ModeAdd
	ModeDelete
	ModeModify
)

// String returns the human-readable name of the chunk mode.
func (m ChunkMode) String() string {
	switch m {
	case ModeAdd:
		return "add"
	case ModeDelete:
		return "delete"
	case ModeModify:
		return "modify"
	default:
		return "unknown"
	}
}

// Compression identifies the compression applied to a chunk's data.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionZlib
	CompressionUnknown
)

// String returns the human-readable name of the compression mode.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZlib:
		return "zlib"
	default:
		return "unknown"
	}
}

// chunkHeaderSize is the fixed chunk header: mode[4], prev hash[20],
// next hash[20], compression[4], size[4], prev size[4], next size[4].
const chunkHeaderSize = 60

// HashSize is the size of the SHA-1 hashes carried by chunks.
const HashSize = sha1.Size

// zeroHash reports whether a declared hash is all zero, which the
// format uses to mean "no content expected on this side of the chain".
func zeroHash(h [HashSize]byte) bool {
	return h == [HashSize]byte{}
}

// Chunk is one piece of an entry's content change: an operation mode,
// before/after SHA-1 hashes, optional compression, and payload bytes.
type Chunk struct {
	// Mode is the operation this chunk belongs to. Only the first
	// chunk's mode is consulted when applying an entry.
	Mode ChunkMode

	// PrevHash is the SHA-1 of the target file's expected prior
	// content; all-zero means no prior content is expected.
	PrevHash [HashSize]byte

	// NextHash is the SHA-1 of the content after this chunk's portion
	// of the chain. The last chunk's NextHash covers the whole entry.
	NextHash [HashSize]byte

	// Compression is how Data is encoded.
	Compression Compression

	// PrevSize and NextSize are the declared sizes of the content
	// before and after the chunk. For zlib chunks NextSize is the
	// exact inflated size of Data.
	PrevSize uint32
	NextSize uint32

	// Data is the chunk payload; its length always equals the
	// declared chunk size. It aliases the block payload buffer and is
	// only valid while the block is being processed.
	Data []byte
}

// decodeChunk decodes one chunk header and its data from an ETRY
// payload. Any shortfall fails with ErrUnexpectedEOF.
func decodeChunk(r *byteReader) (Chunk, error) {
	var c Chunk

	mode, err := r.take(4, "chunk mode")
	if err != nil {
		return Chunk{}, err
	}
	switch mode[0] {
	case 'A':
		c.Mode = ModeAdd
	case 'D':
		c.Mode = ModeDelete
	case 'M':
		c.Mode = ModeModify
	default:
		c.Mode = ModeUnknown
	}

	prev, err := r.take(HashSize, "chunk prev hash")
	if err != nil {
		return Chunk{}, err
	}
	copy(c.PrevHash[:], prev)

	next, err := r.take(HashSize, "chunk next hash")
	if err != nil {
		return Chunk{}, err
	}
	copy(c.NextHash[:], next)

	compression, err := r.take(4, "chunk compression")
	if err != nil {
		return Chunk{}, err
	}
	switch compression[0] {
	case 'N':
		c.Compression = CompressionNone
	case 'Z':
		c.Compression = CompressionZlib
	default:
		c.Compression = CompressionUnknown
	}

	size, err := r.u32("chunk size")
	if err != nil {
		return Chunk{}, err
	}
	if c.PrevSize, err = r.u32("chunk prev size"); err != nil {
		return Chunk{}, err
	}
	if c.NextSize, err = r.u32("chunk next size"); err != nil {
		return Chunk{}, err
	}

	dataLen, err := sizing.ToInt(uint64(size), ErrUnexpectedEOF)
	if err != nil {
		return Chunk{}, err
	}
	if c.Data, err = r.take(dataLen, "chunk data"); err != nil {
		return Chunk{}, err
	}
	return c, nil
}

// zlibOverhead is the 2-byte zlib header plus the 4-byte trailing
// checksum wrapping the inner DEFLATE stream.
const zlibOverhead = 6

// inflate decodes the chunk's zlib-wrapped data into exactly NextSize
// bytes. Only the inner DEFLATE span is decoded; the zlib checksum is
// not verified. A stream that errors, runs short, or produces more
// than NextSize bytes is an inflate failure.
func (c *Chunk) inflate() ([]byte, error) {
	if len(c.Data) < zlibOverhead {
		return nil, fmt.Errorf("chunk data too small for zlib framing (%d bytes)", len(c.Data))
	}
	deflated := c.Data[2 : len(c.Data)-4]

	want, err := sizing.ToInt(uint64(c.NextSize), errors.New("next size overflows"))
	if err != nil {
		return nil, err
	}

	fr := flate.NewReader(bytes.NewReader(deflated))
	defer fr.Close()

	out := make([]byte, want)
	if _, err := io.ReadFull(fr, out); err != nil {
		return nil, fmt.Errorf("inflate: %w", err)
	}
	var extra [1]byte
	if n, _ := fr.Read(extra[:]); n > 0 {
		return nil, fmt.Errorf("inflate: stream exceeds declared size %d", c.NextSize)
	}
	return out, nil
}
