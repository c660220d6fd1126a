//go:build !linux && !darwin

package mmfile

import (
	"fmt"
	"io"
)

// remap reads the file into a heap buffer of capacity bytes when mmap is not
// available. Writes are pushed to the file by writeThrough.
func (m *File) remap(capacity int64) error {
	if capacity > int64(^uint(0)>>1) {
		return fmt.Errorf("buffer too large (%d bytes)", capacity)
	}
	data := make([]byte, capacity)
	if m.data != nil {
		copy(data, m.data)
	} else if m.size > 0 {
		if _, err := io.ReadFull(io.NewSectionReader(m.f, 0, m.size), data[:m.size]); err != nil {
			return err
		}
	}
	m.data = data
	return nil
}

func (m *File) unmap() error {
	m.data = nil
	return nil
}

func (m *File) writeThrough(off int64, p []byte) error {
	if _, err := m.f.WriteAt(p, off); err != nil {
		return fmt.Errorf("mmfile: write %s at %d: %w", m.path, off, err)
	}
	return nil
}
