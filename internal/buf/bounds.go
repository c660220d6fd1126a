package buf

import (
	"fmt"
	"math"
)

// AddOverflowSafe adds a and b, returning ok = false when the result would overflow int64.
func AddOverflowSafe(a, b int64) (int64, bool) {
	switch {
	case b > 0 && a > math.MaxInt64-b:
		return 0, false
	case b < 0 && a < math.MinInt64-b:
		return 0, false
	default:
		return a + b, true
	}
}

// SpanEnd returns off+n when the span [off, off+n) is representable as a
// non-negative int64 range.
func SpanEnd(off int64, n uint64) (int64, bool) {
	if off < 0 || n > math.MaxInt64 {
		return 0, false
	}
	return AddOverflowSafe(off, int64(n))
}

// CheckSpan validates that [off, off+n) lies within a region of size bufLen.
// Returns the end offset if valid, or an error describing the specific failure.
//
//	end, err := buf.CheckSpan(f.Len(), off, n)
//	if err != nil {
//	    return fmt.Errorf("mmfile: write: %w", err)
//	}
func CheckSpan(bufLen, off int64, n uint64) (int64, error) {
	if off < 0 {
		return 0, fmt.Errorf("negative offset: %d", off)
	}
	end, ok := SpanEnd(off, n)
	if !ok {
		return 0, fmt.Errorf("overflow: offset=%d + size=%d", off, n)
	}
	if end > bufLen {
		return 0, fmt.Errorf("bounds: end=%d > len=%d", end, bufLen)
	}
	return end, nil
}

// Slice returns the sub-slice [off:off+n] if it fits within len(b).
func Slice(b []byte, off int64, n uint64) ([]byte, bool) {
	end, err := CheckSpan(int64(len(b)), off, n)
	if err != nil {
		return nil, false
	}
	return b[off:end], true
}

// Has reports whether b[off:off+n] is within bounds.
func Has(b []byte, off int64, n uint64) bool {
	_, ok := Slice(b, off, n)
	return ok
}
