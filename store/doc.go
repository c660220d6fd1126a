// Package store provides a durable, variable-length byte-span store backed by
// a memory-mapped file.
//
// # Overview
//
// A Store appends payloads to a raw data file and hands back an Address
// (offset, length) for each one. The data file carries no per-record header:
// the Address is the only record of where a payload starts and ends. Removed
// spans are zeroed and recorded in a sidecar free list (package freelist) at
// path + SidecarSuffix, and later inserts reuse them before the file grows.
//
//	[data file]   0x00 reserved | payload | payload | ... (grows only)
//	[data file.f] record_count | sentinel | free span | free span | ...
//
// Offset 0 of the data file is reserved so a zero Address can stand for
// "absent" in structures built on top of the store.
//
// # Usage
//
//	s, err := store.Open("/var/lib/app/names", nil)
//	if err != nil {
//	    return err
//	}
//	defer s.Close()
//
//	v, err := s.Insert([]byte("Noah"))
//	if err != nil {
//	    return err
//	}
//	addr := v.Address() // keep this; it is the only handle to the bytes
//
//	b, err := s.Bytes(addr)
//	...
//	err = s.Remove(addr)
//
// # Views
//
// Insert returns a View, a zero-copy window onto the mapped bytes. A View is
// valid until the next Insert or Remove on the same Store; either may grow
// and remap the file or overwrite the range.
//
// # Reuse Policy
//
// Reuse is first-fit over the most recently freed spans, and a reused span
// is consumed from its front. Adjacent free spans are never merged, so heavy
// churn with varying sizes fragments the file; Stats reports dead rows and
// free bytes to monitor this.
//
// # Errors
//
// I/O failures from the mapped files are returned wrapped and remain
// matchable with errors.Is. Caller mistakes (an Address that was never live,
// an empty payload) are reported with ErrBadAddress and ErrEmptyPayload;
// ErrBadAddress and the free list's precondition errors all match
// ErrContract.
//
// # Thread Safety
//
// A Store is a single-writer structure with no internal locking. Opening the
// same path twice at once is not supported.
package store
