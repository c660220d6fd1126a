//go:build linux || darwin

package mmfile

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// remap replaces the current mapping with a shared read-write mapping of
// capacity bytes. The mapping may extend past the end of the file; only bytes
// below the file length are ever touched.
func (m *File) remap(capacity int64) error {
	if capacity > int64(^uint(0)>>1) {
		return fmt.Errorf("mapping too large (%d bytes)", capacity)
	}
	if err := m.unmap(); err != nil {
		return err
	}
	data, err := unix.Mmap(
		m.FD(),
		0,
		int(capacity),
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_SHARED,
	)
	if err != nil {
		return fmt.Errorf("mmap failed: %w", err)
	}
	m.data = data
	return nil
}

func (m *File) unmap() error {
	if m.data == nil {
		return nil
	}
	err := unix.Munmap(m.data)
	m.data = nil
	if errors.Is(err, unix.EINVAL) {
		// Treat double-unmap as no-op for callers.
		return nil
	}
	return err
}

// writeThrough is a no-op: stores into a shared mapping are the file contents.
func (m *File) writeThrough(int64, []byte) error { return nil }
