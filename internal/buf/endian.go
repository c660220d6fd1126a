// Package buf contains bounds-checked slicing and endian-safe accessors used
// for the fixed little-endian layouts stored in mapped files.
package buf

import "encoding/binary"

// U64LE reads a little-endian uint64 from b. Returns 0 when b is too short.
func U64LE(b []byte) uint64 {
	if len(b) < 8 {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

// I64LE reads a little-endian int64 from b. Returns 0 when b is too short.
func I64LE(b []byte) int64 {
	return int64(U64LE(b))
}

// PutU64LE writes v into b in little-endian order. Returns false when b is too short.
func PutU64LE(b []byte, v uint64) bool {
	if len(b) < 8 {
		return false
	}
	binary.LittleEndian.PutUint64(b, v)
	return true
}

// PutI64LE writes v into b in little-endian order. Returns false when b is too short.
func PutI64LE(b []byte, v int64) bool {
	return PutU64LE(b, uint64(v))
}
