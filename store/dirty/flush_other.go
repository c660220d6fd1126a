//go:build !linux && !darwin

package dirty

import "context"

// flushRanges is a no-op: without mmap every write already reached the file.
func (t *Tracker) flushRanges(context.Context, []byte) error { return nil }

func msync([]byte) error { return nil }

func fdatasync(t Target, _ bool) error {
	return t.Sync()
}
