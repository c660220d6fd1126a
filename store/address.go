package store

import (
	"fmt"

	"github.com/joshuapare/spankit/store/freelist"
)

// Address locates a byte span in the data file. The zero Address means
// "absent": offset 0 is never handed out.
type Address struct {
	Offset int64
	Length uint64
}

// IsZero reports whether a is the absent sentinel.
func (a Address) IsZero() bool { return a.Offset == 0 }

// End returns the offset one past the span.
func (a Address) End() int64 { return a.Offset + int64(a.Length) }

func (a Address) String() string {
	return fmt.Sprintf("{offset:%d length:%d}", a.Offset, a.Length)
}

func (a Address) span() freelist.Span { return freelist.Span(a) }

// View is a zero-copy window onto a record. It borrows the Store and is only
// valid until the next Insert or Remove.
type View struct {
	addr Address
	s    *Store
}

// Address returns the record's address.
func (v View) Address() Address { return v.addr }

// Len returns the record length.
func (v View) Len() uint64 { return v.addr.Length }

// Bytes returns the record's bytes from the mapping. The result is nil if the
// store was closed or the address no longer fits the file.
func (v View) Bytes() []byte {
	if v.s == nil {
		return nil
	}
	b, err := v.s.Bytes(v.addr)
	if err != nil {
		return nil
	}
	return b
}

// String returns the record's bytes as a string (a copy).
func (v View) String() string { return string(v.Bytes()) }
