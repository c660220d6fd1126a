package dirty

import "context"

// DirtyTracker is the minimal interface for tracking dirty (modified) byte ranges.
// Components that only write (allocators, stores) depend on this and leave
// flushing to their owner.
type DirtyTracker interface {
	// Add marks [off, off+length) as dirty.
	Add(off, length int64)
}

// FlushableTracker extends DirtyTracker with methods for flushing dirty regions to disk.
type FlushableTracker interface {
	DirtyTracker

	// FlushDataOnly flushes only the data regions (not header pages).
	FlushDataOnly(ctx context.Context) error

	// FlushHeaderAndMeta flushes header pages and syncs per mode.
	FlushHeaderAndMeta(ctx context.Context, mode FlushMode) error
}

// Target is a mapped file a Tracker flushes.
type Target interface {
	// Data returns the mapped contents up to the file length. The slice is
	// re-fetched at every flush since growth may remap it.
	Data() []byte
	// FD returns the file descriptor, or -1 when closed.
	FD() int
	// Sync commits the file to stable storage.
	Sync() error
}
