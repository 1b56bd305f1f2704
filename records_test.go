package zipatch_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/zipatch"
)

func fileHeaderPayload(version, result string, entries, addDirs, deleteDirs uint32) []byte {
	payload := make([]byte, 0, 20)
	payload = append(payload, version...)
	payload = append(payload, result...)
	payload = binary.BigEndian.AppendUint32(payload, entries)
	payload = binary.BigEndian.AppendUint32(payload, addDirs)
	payload = binary.BigEndian.AppendUint32(payload, deleteDirs)
	return payload
}

func TestDecodeFileHeader(t *testing.T) {
	t.Parallel()

	h, err := zipatch.DecodeFileHeader(fileHeaderPayload("\x01\x00\x00\x00", "DIFF", 12, 3, 1))
	require.NoError(t, err)
	assert.Equal(t, [4]byte{0x01, 0, 0, 0}, h.Version)
	assert.Equal(t, zipatch.ResultDiff, h.Result)
	assert.Equal(t, uint32(12), h.EntryFiles)
	assert.Equal(t, uint32(3), h.AddDirectories)
	assert.Equal(t, uint32(1), h.DeleteDirectories)

	h, err = zipatch.DecodeFileHeader(fileHeaderPayload("\x01\x00\x00\x00", "HIST", 0, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, zipatch.ResultHist, h.Result)

	h, err = zipatch.DecodeFileHeader(fileHeaderPayload("\x01\x00\x00\x00", "WHAT", 0, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, zipatch.ResultUnknown, h.Result)
}

func TestDecodeFileHeaderShort(t *testing.T) {
	t.Parallel()

	payload := fileHeaderPayload("\x01\x00\x00\x00", "DIFF", 12, 3, 1)
	for _, n := range []int{0, 3, 7, 19} {
		_, err := zipatch.DecodeFileHeader(payload[:n])
		require.ErrorIs(t, err, zipatch.ErrUnexpectedEOF, "payload of %d bytes", n)
	}

	// Longer than required is fine; trailing bytes are ignored.
	_, err := zipatch.DecodeFileHeader(append(payload, 0xFF, 0xFF))
	require.NoError(t, err)
}

func TestDecodeApplyInfo(t *testing.T) {
	t.Parallel()

	payload := make([]byte, 0, 12)
	payload = binary.BigEndian.AppendUint32(payload, 1)
	payload = binary.BigEndian.AppendUint32(payload, 0x10)
	payload = binary.BigEndian.AppendUint32(payload, 0xDEADBEEF)

	info, err := zipatch.DecodeApplyInfo(payload)
	require.NoError(t, err)
	assert.Equal(t, [3]uint32{1, 0x10, 0xDEADBEEF}, info.Fields)

	_, err = zipatch.DecodeApplyInfo(payload[:11])
	require.ErrorIs(t, err, zipatch.ErrUnexpectedEOF)
}
