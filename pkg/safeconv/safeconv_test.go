package safeconv

import (
	"math"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClampInt64(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 42, ClampInt64(42))
	assert.Equal(t, -7, ClampInt64(-7))
	assert.Equal(t, MaxInt, ClampInt64(math.MaxInt64))
	assert.Equal(t, MinInt, ClampInt64(math.MinInt64))
}

func TestSaturatingAdd(t *testing.T) {
	t.Parallel()

	t.Run("normal_value", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, 5, SaturatingAdd(2, 3))
	})

	t.Run("overflow_saturates", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, MaxInt, SaturatingAdd(MaxInt, 1))
		assert.Equal(t, MaxInt, SaturatingAdd(MaxInt-1, MaxInt))
	})

	t.Run("underflow_saturates", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, MinInt, SaturatingAdd(MinInt, -1))
	})
}

func TestParseSaturatingInt(t *testing.T) {
	t.Parallel()

	t.Run("plain", func(t *testing.T) {
		t.Parallel()

		got, err := ParseSaturatingInt(" 17 ")
		require.NoError(t, err)
		assert.Equal(t, 17, got)
	})

	t.Run("beyond_int64", func(t *testing.T) {
		t.Parallel()

		got, err := ParseSaturatingInt("99999999999999999999999")
		require.NoError(t, err)
		assert.Equal(t, MaxInt, got)
	})

	t.Run("negative_beyond_int64", func(t *testing.T) {
		t.Parallel()

		got, err := ParseSaturatingInt("-99999999999999999999999")
		require.NoError(t, err)
		assert.Equal(t, MinInt, got)
	})

	t.Run("not_a_number", func(t *testing.T) {
		t.Parallel()

		_, err := ParseSaturatingInt("many")
		require.ErrorIs(t, err, strconv.ErrSyntax)
	})
}
