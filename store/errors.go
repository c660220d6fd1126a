package store

import (
	"errors"

	"github.com/joshuapare/spankit/store/freelist"
)

var (
	// ErrContract matches every precondition violation reported by the store
	// or its free list, as opposed to I/O failures.
	ErrContract = freelist.ErrContract

	// ErrBadAddress indicates an Address that cannot refer to a live record:
	// zero offset, zero length, or a range past the end of the data file.
	ErrBadAddress error = &contractErr{msg: "bad address"}

	// ErrEmptyPayload indicates an Insert of zero bytes.
	ErrEmptyPayload = errors.New("store: empty payload")

	// ErrClosed is returned by operations on a closed Store.
	ErrClosed = errors.New("store: closed")
)

type contractErr struct{ msg string }

func (e *contractErr) Error() string { return "store: " + e.msg }

func (e *contractErr) Unwrap() error { return ErrContract }
