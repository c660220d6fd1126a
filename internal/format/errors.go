// Package format defines the on-disk layout of the free-list sidecar and
// bounds-checked accessors for it. All integers are little-endian.
package format

import "errors"

// ErrTruncated indicates the buffer lacked the bytes required for a structure.
var ErrTruncated = errors.New("format: truncated buffer")
