package format

import (
	"fmt"
	"math"

	"github.com/joshuapare/spankit/internal/buf"
)

// Free-list sidecar layout (little-endian):
//
//	Offset  Size  Description
//	0x00    8     record_count: highest populated row (1-based)
//	0x08    16    slot 0: permanent sentinel, never assigned
//	0x18    16    slot 1
//	...
//
// Each slot:
//
//	0x00    8     Signed offset of the span in the data file
//	0x08    8     Unsigned length of the span
const (
	// CountSize is the size of the record_count header.
	CountSize = 8

	// SlotSize is the encoded size of one free-span slot.
	SlotSize = 16

	// slotOffsetField and slotLengthField are field offsets within a slot.
	slotOffsetField = 0
	slotLengthField = 8

	// FreeListInitSize is the size of a freshly created sidecar: header plus sentinel.
	FreeListInitSize = CountSize + SlotSize
)

// SlotPos returns the absolute byte offset of row within the sidecar.
func SlotPos(row uint64) (int64, bool) {
	if row > (math.MaxInt64-CountSize)/SlotSize {
		return 0, false
	}
	return CountSize + int64(row)*SlotSize, true
}

// FreeListSizeFor returns the sidecar size needed to hold rows 0..row.
func FreeListSizeFor(row uint64) (int64, bool) {
	pos, ok := SlotPos(row)
	if !ok {
		return 0, false
	}
	return buf.AddOverflowSafe(pos, SlotSize)
}

// SlotCapacity returns the highest row that physically fits in a sidecar of
// size fileLen. A file holding only the header and sentinel yields 0.
func SlotCapacity(fileLen int64) uint64 {
	if fileLen < FreeListInitSize {
		return 0
	}
	return uint64((fileLen-CountSize)/SlotSize) - 1
}

// ReadCount decodes the record_count header.
func ReadCount(b []byte) (uint64, error) {
	hdr, ok := buf.Slice(b, 0, CountSize)
	if !ok {
		return 0, fmt.Errorf("%w: record count needs %d bytes, have %d", ErrTruncated, CountSize, len(b))
	}
	return buf.U64LE(hdr), nil
}

// PutCount encodes the record_count header.
func PutCount(b []byte, count uint64) error {
	hdr, ok := buf.Slice(b, 0, CountSize)
	if !ok {
		return fmt.Errorf("%w: record count needs %d bytes, have %d", ErrTruncated, CountSize, len(b))
	}
	buf.PutU64LE(hdr, count)
	return nil
}

// EncodeSlot writes one slot record into rec, which must hold SlotSize bytes.
func EncodeSlot(rec []byte, offset int64, length uint64) error {
	if len(rec) < SlotSize {
		return fmt.Errorf("%w: slot needs %d bytes, have %d", ErrTruncated, SlotSize, len(rec))
	}
	buf.PutI64LE(rec[slotOffsetField:], offset)
	buf.PutU64LE(rec[slotLengthField:], length)
	return nil
}

// ReadSlot decodes the slot at row.
func ReadSlot(b []byte, row uint64) (offset int64, length uint64, err error) {
	slot, err := slotBytes(b, row)
	if err != nil {
		return 0, 0, err
	}
	return buf.I64LE(slot[slotOffsetField:]), buf.U64LE(slot[slotLengthField:]), nil
}

// PutSlot encodes offset and length into the slot at row.
func PutSlot(b []byte, row uint64, offset int64, length uint64) error {
	slot, err := slotBytes(b, row)
	if err != nil {
		return err
	}
	return EncodeSlot(slot, offset, length)
}

func slotBytes(b []byte, row uint64) ([]byte, error) {
	pos, ok := SlotPos(row)
	if !ok {
		return nil, fmt.Errorf("%w: slot %d overflows", ErrTruncated, row)
	}
	slot, ok := buf.Slice(b, pos, SlotSize)
	if !ok {
		return nil, fmt.Errorf("%w: slot %d at %d beyond len %d", ErrTruncated, row, pos, len(b))
	}
	return slot, nil
}
