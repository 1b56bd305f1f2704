package zipatch

import (
	"bytes"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func deflate(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestChunkInflate(t *testing.T) {
	t.Parallel()

	plain := bytes.Repeat([]byte("zlib test data "), 32)
	c := Chunk{
		Compression: CompressionZlib,
		Data:        deflate(t, plain),
		NextSize:    uint32(len(plain)),
	}

	got, err := c.inflate()
	require.NoError(t, err)
	assert.Equal(t, plain, got)
}

func TestChunkInflateWrongDeclaredSize(t *testing.T) {
	t.Parallel()

	plain := []byte("some content here")
	data := deflate(t, plain)

	// Declared size too small: the stream keeps going past it.
	c := Chunk{Compression: CompressionZlib, Data: data, NextSize: uint32(len(plain)) - 1}
	_, err := c.inflate()
	require.Error(t, err)

	// Declared size too large: the stream runs short.
	c = Chunk{Compression: CompressionZlib, Data: data, NextSize: uint32(len(plain)) + 1}
	_, err = c.inflate()
	require.Error(t, err)
}

func TestChunkInflateGarbage(t *testing.T) {
	t.Parallel()

	c := Chunk{
		Compression: CompressionZlib,
		Data:        []byte("garbage, not a zlib stream"),
		NextSize:    10,
	}
	_, err := c.inflate()
	require.Error(t, err)
}

func TestChunkInflateTooSmallForFraming(t *testing.T) {
	t.Parallel()

	c := Chunk{Compression: CompressionZlib, Data: []byte{0x78, 0x9C, 0x01}, NextSize: 0}
	_, err := c.inflate()
	require.Error(t, err)
}

func TestZeroHash(t *testing.T) {
	t.Parallel()

	assert.True(t, zeroHash([HashSize]byte{}))

	var h [HashSize]byte
	h[19] = 1
	assert.False(t, zeroHash(h))
}
