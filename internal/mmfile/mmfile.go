// Package mmfile provides a growable, read-write memory-mapped file.
//
// A File keeps the exact on-disk length separate from the size of its mapping:
// on platforms with mmap the mapping is reserved ahead of the file length so
// that most appends only extend the file instead of remapping it. Slices
// returned by Bytes and Data alias the mapping and are invalidated by any call
// that grows the file.
//
// NOT thread-safe. Only one goroutine should use a File at a time.
package mmfile

import (
	"errors"
	"fmt"
	"os"

	"github.com/joshuapare/spankit/internal/buf"
)

const (
	// pageSize is the granularity the mapping capacity is rounded up to.
	pageSize = 4096

	// maxReserveStep bounds how far ahead of the file length the mapping is
	// reserved in a single remap.
	maxReserveStep = 64 << 20
)

var (
	// ErrClosed is returned by operations on a closed File.
	ErrClosed = errors.New("mmfile: file closed")

	// ErrOutOfBounds indicates an offset/length pair outside the file.
	ErrOutOfBounds = errors.New("mmfile: range out of bounds")
)

// File is a read-write mapping of a file on disk.
type File struct {
	path string
	f    *os.File
	data []byte // mapping; len(data) is the reserved capacity
	size int64  // file length on disk
}

// Open opens or creates the file at path and maps it read-write. Files shorter
// than minSize are extended with zeros to minSize.
func Open(path string, minSize int64) (*File, error) {
	if minSize < 0 {
		return nil, fmt.Errorf("mmfile: negative minimum size %d", minSize)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}

	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	sz := st.Size()
	if sz < minSize {
		if err := f.Truncate(minSize); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("mmfile: extend %s to %d: %w", path, minSize, err)
		}
		sz = minSize
	}

	m := &File{path: path, f: f, size: sz}
	if err := m.remap(capacityFor(0, sz)); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("mmfile: map %s: %w", path, err)
	}
	return m, nil
}

// Path returns the path the file was opened with.
func (m *File) Path() string { return m.path }

// Len returns the current file length in bytes.
func (m *File) Len() int64 { return m.size }

// Data returns the mapped contents up to the file length.
func (m *File) Data() []byte {
	if m.data == nil {
		return nil
	}
	return m.data[:m.size:m.size]
}

// FD returns the underlying file descriptor, or -1 once closed.
func (m *File) FD() int {
	if m == nil || m.f == nil {
		return -1
	}
	return int(m.f.Fd())
}

// Bytes returns a borrowed view of [off, off+n). The slice must not be
// retained across a call that grows the file.
func (m *File) Bytes(off int64, n uint64) ([]byte, error) {
	if m.f == nil {
		return nil, ErrClosed
	}
	end, err := buf.CheckSpan(m.size, off, n)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOutOfBounds, err)
	}
	return m.data[off:end:end], nil
}

// Write copies p into the file at off. The range must already exist.
func (m *File) Write(off int64, p []byte) error {
	dst, err := m.Bytes(off, uint64(len(p)))
	if err != nil {
		return err
	}
	copy(dst, p)
	return m.writeThrough(off, dst)
}

// ZeroFill clears [off, off+n).
func (m *File) ZeroFill(off int64, n uint64) error {
	dst, err := m.Bytes(off, n)
	if err != nil {
		return err
	}
	clear(dst)
	return m.writeThrough(off, dst)
}

// GrowTo extends the file to n bytes. Shrinking is never performed; a smaller
// n is a no-op. New bytes read as zero.
func (m *File) GrowTo(n int64) error {
	if m.f == nil {
		return ErrClosed
	}
	if n <= m.size {
		return nil
	}
	if err := m.f.Truncate(n); err != nil {
		return fmt.Errorf("mmfile: grow %s to %d: %w", m.path, n, err)
	}
	if n > int64(len(m.data)) {
		oldCap := int64(len(m.data))
		if err := m.remap(capacityFor(oldCap, n)); err != nil {
			// Put the file back the way the current mapping expects it.
			_ = m.f.Truncate(m.size)
			if m.data == nil {
				_ = m.remap(oldCap)
			}
			return fmt.Errorf("mmfile: remap %s after grow: %w", m.path, err)
		}
	}
	m.size = n
	return nil
}

// Append grows the file by len(p), writes p at the previous end, and returns
// that previous end.
func (m *File) Append(p []byte) (int64, error) {
	if m.f == nil {
		return 0, ErrClosed
	}
	off := m.size
	end, ok := buf.SpanEnd(off, uint64(len(p)))
	if !ok {
		return 0, fmt.Errorf("%w: append of %d bytes at %d", ErrOutOfBounds, len(p), off)
	}
	if err := m.GrowTo(end); err != nil {
		return 0, err
	}
	if err := m.Write(off, p); err != nil {
		return 0, err
	}
	return off, nil
}

// Sync commits the file's contents and metadata to stable storage.
func (m *File) Sync() error {
	if m.f == nil {
		return ErrClosed
	}
	return m.f.Sync()
}

// Close unmaps and closes the file. Closing twice is a no-op.
func (m *File) Close() error {
	if m.f == nil {
		return nil
	}
	unmapErr := m.unmap()
	closeErr := m.f.Close()
	m.f = nil
	return errors.Join(unmapErr, closeErr)
}

// capacityFor picks the mapping size for a file of length need, growing
// geometrically from cur but never more than maxReserveStep past need.
func capacityFor(cur, need int64) int64 {
	c := cur * 2
	if c < need {
		c = need
	}
	if c > need+maxReserveStep {
		c = need + maxReserveStep
	}
	if rem := c % pageSize; rem != 0 {
		c += pageSize - rem
	}
	if c < pageSize {
		c = pageSize
	}
	return c
}
