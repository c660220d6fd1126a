package freelist

import "errors"

var (
	// ErrContract indicates a caller broke a precondition. The free list is
	// left unchanged. Every contract error below wraps it.
	ErrContract = errors.New("freelist: contract violation")

	// ErrRowOutOfRange indicates a row outside [1, record_count].
	ErrRowOutOfRange = contractError("row out of range")

	// ErrOverRelease indicates a release longer than the span's remaining length.
	ErrOverRelease = contractError("release exceeds span length")

	// ErrZeroRelease indicates a release of zero bytes.
	ErrZeroRelease = contractError("release of zero bytes")

	// ErrBadSpan indicates a span that can never be a free span: zero offset,
	// negative offset, or zero length.
	ErrBadSpan = contractError("invalid span")

	// ErrGrowFail indicates the sidecar file could not be grown.
	ErrGrowFail = errors.New("freelist: grow failed")

	// ErrClosed is returned by operations on a closed free list.
	ErrClosed = errors.New("freelist: closed")
)

type contractErr struct{ msg string }

func contractError(msg string) error { return &contractErr{msg: msg} }

func (e *contractErr) Error() string { return "freelist: " + e.msg }

func (e *contractErr) Unwrap() error { return ErrContract }
