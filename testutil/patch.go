// Package testutil builds synthetic ZiPatch streams for tests.
//
// The builder assembles raw wire bytes independently of the zipatch
// package so that tests exercise the real decoders rather than a
// shared codec.
package testutil

import (
	"bytes"
	"crypto/sha1"
	"encoding/binary"
	"hash/crc32"

	"github.com/klauspost/compress/zlib"
)

// Magic is the 12-byte ZiPatch file signature.
var Magic = []byte{0x91, 'Z', 'I', 'P', 'A', 'T', 'C', 'H', 0x0D, 0x0A, 0x1A, 0x0A}

// ChunkSpec describes one entry chunk to encode.
type ChunkSpec struct {
	// Mode is the operation byte: 'A', 'D', or 'M'.
	Mode byte

	// Compression is the compression byte: 'N' or 'Z'.
	Compression byte

	// PrevHash and NextHash are the declared SHA-1 values; nil means
	// all-zero. Values shorter than 20 bytes are zero padded.
	PrevHash []byte
	NextHash []byte

	// PrevSize and NextSize are the declared before/after sizes.
	PrevSize uint32
	NextSize uint32

	// Data is the chunk payload as it appears on the wire.
	Data []byte
}

// PatchBuilder accumulates a ZiPatch stream.
type PatchBuilder struct {
	buf bytes.Buffer
}

// NewPatchBuilder returns a builder primed with the file signature.
func NewPatchBuilder() *PatchBuilder {
	b := &PatchBuilder{}
	b.buf.Write(Magic)
	return b
}

// Bytes returns the assembled stream.
func (b *PatchBuilder) Bytes() []byte {
	return b.buf.Bytes()
}

// RawBlock frames a payload under the given 4-byte tag with a correct
// trailing CRC.
func (b *PatchBuilder) RawBlock(tag string, payload []byte) *PatchBuilder {
	crc := crc32.NewIEEE()
	crc.Write([]byte(tag))
	crc.Write(payload)
	return b.RawBlockCRC(tag, payload, crc.Sum32())
}

// RawBlockCRC frames a payload with an explicit trailing CRC value,
// for tests that need a corrupted trailer.
func (b *PatchBuilder) RawBlockCRC(tag string, payload []byte, crc uint32) *PatchBuilder {
	var u32 [4]byte
	binary.BigEndian.PutUint32(u32[:], uint32(len(payload)))
	b.buf.Write(u32[:])
	b.buf.WriteString(tag)
	b.buf.Write(payload)
	binary.BigEndian.PutUint32(u32[:], crc)
	b.buf.Write(u32[:])
	return b
}

// FileHeader appends an FHDR block.
func (b *PatchBuilder) FileHeader(version, result string, entries, addDirs, deleteDirs uint32) *PatchBuilder {
	payload := make([]byte, 0, 20)
	payload = append(payload, pad4(version)...)
	payload = append(payload, pad4(result)...)
	payload = binary.BigEndian.AppendUint32(payload, entries)
	payload = binary.BigEndian.AppendUint32(payload, addDirs)
	payload = binary.BigEndian.AppendUint32(payload, deleteDirs)
	return b.RawBlock("FHDR", payload)
}

// ApplyInfo appends an APLY block with three opaque fields.
func (b *PatchBuilder) ApplyInfo(f0, f1, f2 uint32) *PatchBuilder {
	payload := make([]byte, 0, 12)
	payload = binary.BigEndian.AppendUint32(payload, f0)
	payload = binary.BigEndian.AppendUint32(payload, f1)
	payload = binary.BigEndian.AppendUint32(payload, f2)
	return b.RawBlock("APLY", payload)
}

// AddDir appends an ADIR block.
func (b *PatchBuilder) AddDir(path string) *PatchBuilder {
	return b.RawBlock("ADIR", pathPayload(path))
}

// DeleteDir appends a DELD block.
func (b *PatchBuilder) DeleteDir(path string) *PatchBuilder {
	return b.RawBlock("DELD", pathPayload(path))
}

// Entry appends an ETRY block with the given chunks.
func (b *PatchBuilder) Entry(path string, chunks ...ChunkSpec) *PatchBuilder {
	payload := pathPayload(path)
	payload = binary.BigEndian.AppendUint32(payload, uint32(len(chunks)))
	for _, c := range chunks {
		payload = appendChunk(payload, c)
	}
	return b.RawBlock("ETRY", payload)
}

// EntryPayload returns an ETRY payload without framing it, for decoder
// tests that operate on payload bytes directly.
func EntryPayload(path string, chunks ...ChunkSpec) []byte {
	payload := pathPayload(path)
	payload = binary.BigEndian.AppendUint32(payload, uint32(len(chunks)))
	for _, c := range chunks {
		payload = appendChunk(payload, c)
	}
	return payload
}

// PathPayload returns the shared ADIR/DELD payload layout for a path.
func PathPayload(path string) []byte {
	return pathPayload(path)
}

func pathPayload(path string) []byte {
	payload := binary.BigEndian.AppendUint32(nil, uint32(len(path)))
	return append(payload, path...)
}

func appendChunk(payload []byte, c ChunkSpec) []byte {
	payload = append(payload, pad4(string(c.Mode))...)
	payload = append(payload, padHash(c.PrevHash)...)
	payload = append(payload, padHash(c.NextHash)...)
	payload = append(payload, pad4(string(c.Compression))...)
	payload = binary.BigEndian.AppendUint32(payload, uint32(len(c.Data)))
	payload = binary.BigEndian.AppendUint32(payload, c.PrevSize)
	payload = binary.BigEndian.AppendUint32(payload, c.NextSize)
	return append(payload, c.Data...)
}

func pad4(s string) []byte {
	var b [4]byte
	copy(b[:], s)
	return b[:]
}

func padHash(h []byte) []byte {
	var b [sha1.Size]byte
	copy(b[:], h)
	return b[:]
}

// SHA1 returns the SHA-1 digest of data.
func SHA1(data []byte) []byte {
	sum := sha1.Sum(data)
	return sum[:]
}

// ZlibCompress returns data as a complete zlib stream: 2-byte header,
// DEFLATE body, 4-byte checksum.
func ZlibCompress(data []byte) []byte {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		panic(err)
	}
	if err := zw.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
