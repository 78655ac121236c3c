// Package safeconv provides integer conversions that saturate instead of overflowing.
package safeconv

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// MaxInt is the maximum value for int type (platform-dependent).
const MaxInt = int(^uint(0) >> 1)

// MinInt is the minimum value for int type (platform-dependent).
const MinInt = -MaxInt - 1

// ClampInt64 converts int64 to int, saturating at the int bounds.
func ClampInt64(v int64) int {
	if v > int64(MaxInt) {
		return MaxInt
	}

	if v < int64(MinInt) {
		return MinInt
	}

	return int(v)
}

// SaturatingAdd adds two ints, saturating at the int bounds instead of wrapping.
func SaturatingAdd(a, b int) int {
	if b > 0 && a > MaxInt-b {
		return MaxInt
	}

	if b < 0 && a < MinInt-b {
		return MinInt
	}

	return a + b
}

// ParseSaturatingInt parses a base-10 integer. Values outside the int64 range
// (visit counters on long test runs) saturate rather than fail; only
// non-numeric input is an error.
func ParseSaturatingInt(s string) (int, error) {
	s = strings.TrimSpace(s)

	v, err := strconv.ParseInt(s, 10, 64)
	if err == nil {
		return ClampInt64(v), nil
	}

	if errors.Is(err, strconv.ErrRange) {
		if strings.HasPrefix(s, "-") {
			return ClampInt64(math.MinInt64), nil
		}

		return ClampInt64(math.MaxInt64), nil
	}

	return 0, fmt.Errorf("parse integer %q: %w", s, err)
}
