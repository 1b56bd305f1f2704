package sizing

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errOverflow = errors.New("overflow")

func TestToInt(t *testing.T) {
	t.Parallel()

	n, err := ToInt(4096, errOverflow)
	require.NoError(t, err)
	assert.Equal(t, 4096, n)

	_, err = ToInt(math.MaxUint64, errOverflow)
	require.ErrorIs(t, err, errOverflow)
}

func TestToInt64(t *testing.T) {
	t.Parallel()

	n, err := ToInt64(uint64(math.MaxInt64), errOverflow)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), n)

	_, err = ToInt64(uint64(math.MaxInt64)+1, errOverflow)
	require.ErrorIs(t, err, errOverflow)
}
