// Package freelist tracks reclaimed spans of a data file in a memory-mapped
// sidecar file.
//
// # File Layout
//
// The sidecar is a little-endian record count followed by a flat array of
// 16-byte slots (signed offset, unsigned length):
//
//	[record_count u64][slot 0][slot 1] ... [slot N]
//
// Slot 0 is a permanent sentinel and is never assigned. Rows 1..record_count
// are the live free spans; slots above record_count are unused even when
// physically present, since the file is never shrunk.
//
// # Allocation Policy
//
// Search is first-fit with a recency bias: rows are scanned from record_count
// down to 1 and the first span at least as long as the request wins. A reused
// span is shrunk from the front by Release. When the tail row reaches zero
// length it is retired (record_count drops by one); an interior row that
// reaches zero stays behind as a dead slot that no search can select.
//
// Adjacent spans are never merged.
//
// # Recovery
//
// Every live span has a non-zero offset because offset 0 of the data file is
// reserved. Open therefore recomputes record_count from the slots themselves
// by scanning backward from the physical slot count for zero-offset slots;
// the lowest one bounds the populated rows. A stored count that is stale in
// either direction is repaired and rewritten.
//
// # Crash Ordering
//
// Insert writes the new slot before it publishes the incremented count, and
// Release retires a tail row by lowering the count before it clears the
// slot. A crash between the two steps leaves a slot the recovery scan
// accounts for: a written-but-uncounted slot is recovered as free, which is
// correct because the span's bytes were already released by the data store.
package freelist
