package zipatch

import (
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePath(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		want string
	}{
		{"game/data/file.dat", filepath.Join("root", "game", "data", "file.dat")},
		{`game\data\file.dat`, filepath.Join("root", "game", "data", "file.dat")},
		{"./game/file.dat", filepath.Join("root", "game", "file.dat")},
		{"game/sub/../file.dat", filepath.Join("root", "game", "file.dat")},
	}
	for _, tc := range cases {
		got, err := resolvePath("root", tc.name)
		require.NoError(t, err, "path %q", tc.name)
		assert.Equal(t, tc.want, got, "path %q", tc.name)
	}
}

func TestResolvePathRejectsEscapes(t *testing.T) {
	t.Parallel()

	for _, name := range []string{
		"..",
		"../file.dat",
		"game/../../file.dat",
		"/etc/passwd",
		`..\file.dat`,
	} {
		_, err := resolvePath("root", name)
		require.ErrorIs(t, err, ErrInvalidPath, "path %q", name)
	}
}

func TestReadPathLimit(t *testing.T) {
	t.Parallel()

	// Exactly at the limit is accepted.
	long := make([]byte, maxPathLen)
	for i := range long {
		long[i] = 'a'
	}
	payload := binary.BigEndian.AppendUint32(nil, maxPathLen)
	payload = append(payload, long...)

	p, err := readPath(newByteReader(payload))
	require.NoError(t, err)
	assert.Len(t, p, maxPathLen)

	// One past the limit is rejected before the bytes are read.
	payload = binary.BigEndian.AppendUint32(nil, maxPathLen+1)
	_, err = readPath(newByteReader(payload))
	require.ErrorIs(t, err, ErrPathTooLong)
}

func TestByteReaderShortReads(t *testing.T) {
	t.Parallel()

	r := newByteReader([]byte{0x00, 0x01, 0x02})

	_, err := r.u32("value")
	require.ErrorIs(t, err, ErrUnexpectedEOF)

	b, err := r.take(3, "bytes")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x01, 0x02}, b)

	_, err = r.take(1, "more")
	require.ErrorIs(t, err, ErrUnexpectedEOF)
}
