package zipatch_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/zipatch"
	"github.com/meigma/zipatch/testutil"
)

func TestDecodeEntry(t *testing.T) {
	t.Parallel()

	payload := testutil.EntryPayload("game/ffxivgame.ver",
		testutil.ChunkSpec{Mode: 'A', Compression: 'N', Data: []byte("2010.09.18"), NextSize: 10},
		testutil.ChunkSpec{Mode: 'A', Compression: 'N', Data: []byte(".0000")},
	)

	e, err := zipatch.DecodeEntry(payload)
	require.NoError(t, err)
	assert.Equal(t, "game/ffxivgame.ver", e.Path)
	require.Len(t, e.Chunks, 2)
	assert.Equal(t, zipatch.ModeAdd, e.Mode())
	assert.Equal(t, zipatch.CompressionNone, e.Chunks[0].Compression)
	assert.Equal(t, []byte("2010.09.18"), e.Chunks[0].Data)
	assert.Equal(t, uint32(10), e.Chunks[0].NextSize)
}

func TestDecodeEntryModeBytes(t *testing.T) {
	t.Parallel()

	for mode, want := range map[byte]zipatch.ChunkMode{
		'A': zipatch.ModeAdd,
		'D': zipatch.ModeDelete,
		'M': zipatch.ModeModify,
		'X': zipatch.ModeUnknown,
	} {
		e, err := zipatch.DecodeEntry(testutil.EntryPayload("f",
			testutil.ChunkSpec{Mode: mode, Compression: 'N'}))
		require.NoError(t, err)
		assert.Equal(t, want, e.Mode(), "mode byte %c", mode)
	}
}

func TestDecodeEntryPathTooLong(t *testing.T) {
	t.Parallel()

	payload := binary.BigEndian.AppendUint32(nil, 1025)
	_, err := zipatch.DecodeEntry(payload)
	require.ErrorIs(t, err, zipatch.ErrPathTooLong)
}

func TestDecodeEntryChunkDataTruncated(t *testing.T) {
	t.Parallel()

	payload := testutil.EntryPayload("f",
		testutil.ChunkSpec{Mode: 'A', Compression: 'N', Data: []byte("0123456789")})

	// Declared chunk size now exceeds the remaining payload bytes.
	_, err := zipatch.DecodeEntry(payload[:len(payload)-4])
	require.ErrorIs(t, err, zipatch.ErrUnexpectedEOF)
}

func TestDecodeEntryChunkHeaderTruncated(t *testing.T) {
	t.Parallel()

	payload := testutil.EntryPayload("f",
		testutil.ChunkSpec{Mode: 'A', Compression: 'N', Data: []byte("x")})

	// Cut inside the fixed 60-byte chunk header.
	cut := len(testutil.PathPayload("f")) + 4 + 30
	_, err := zipatch.DecodeEntry(payload[:cut])
	require.ErrorIs(t, err, zipatch.ErrUnexpectedEOF)
}

func TestEntryModeEmpty(t *testing.T) {
	t.Parallel()

	e, err := zipatch.DecodeEntry(testutil.EntryPayload("f"))
	require.NoError(t, err)
	assert.Equal(t, zipatch.ModeUnknown, e.Mode())
}
