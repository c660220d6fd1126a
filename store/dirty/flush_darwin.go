//go:build darwin

package dirty

import (
	"context"

	"golang.org/x/sys/unix"
)

// flushRanges flushes dirty ranges to disk.
//
// On macOS, msync() requires the address to match the original mmap() address,
// so the whole mapped region is synced. The kernel only writes dirty pages.
func (t *Tracker) flushRanges(_ context.Context, data []byte) error {
	return unix.Msync(data, unix.MS_SYNC)
}

// msync flushes a memory region to disk.
func msync(data []byte) error {
	return unix.Msync(data, unix.MS_SYNC)
}

// fdatasync performs file descriptor sync.
//
// macOS has no fdatasync; fullfsync selects F_FULLFSYNC, which also drains
// the drive cache.
func fdatasync(t Target, fullfsync bool) error {
	if fullfsync {
		_, err := unix.FcntlInt(uintptr(t.FD()), unix.F_FULLFSYNC, 0)
		return err
	}
	return unix.Fsync(t.FD())
}
