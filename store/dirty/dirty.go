package dirty

import (
	"context"
	"sort"
)

const (
	// defaultRangeCapacity is the pre-allocated capacity for dirty ranges.
	defaultRangeCapacity = 64

	// standardPageSize is the typical OS page size (4KB).
	standardPageSize = 4096
)

// FlushMode controls durability guarantees for Flush calls.
type FlushMode int

const (
	// FlushAuto provides safe defaults for most use cases:
	// - msync() dirty data pages
	// - fdatasync() after the header write
	// - On macOS, fsync().
	FlushAuto FlushMode = iota

	// FlushDataOnly only flushes dirty pages via msync().
	// The caller is responsible for syncing the descriptor later.
	FlushDataOnly

	// FlushFull provides power-loss durability:
	// - msync() dirty data pages
	// - msync() header pages
	// - fdatasync() file descriptor
	// - On macOS, uses F_FULLFSYNC
	FlushFull
)

// String returns the mode name.
func (m FlushMode) String() string {
	switch m {
	case FlushAuto:
		return "auto"
	case FlushDataOnly:
		return "data-only"
	case FlushFull:
		return "full"
	default:
		return "unknown"
	}
}

// Range represents a dirty byte range (absolute file offsets).
type Range struct {
	Off int64 // Absolute offset in file
	Len int64 // Length in bytes
}

// Tracker accumulates dirty ranges and flushes them efficiently.
//
// NOT thread-safe. Only one goroutine should use it at a time.
type Tracker struct {
	target    Target
	ranges    []Range // Dirty data ranges (coalesced at flush time)
	pageSize  int64
	headerEnd int64 // page-aligned end of the header region; 0 when there is none
}

// NewTracker creates a dirty tracker for target. headerLen bytes at the
// start of the file are treated as a header: the pages covering them are
// flushed only by FlushHeaderAndMeta. Pass 0 for files without a header.
func NewTracker(target Target, headerLen int64) *Tracker {
	t := &Tracker{
		target:   target,
		ranges:   make([]Range, 0, defaultRangeCapacity),
		pageSize: standardPageSize,
	}
	if headerLen > 0 {
		t.headerEnd = t.alignUp(headerLen)
	}
	return t
}

// Add records a dirty range. Empty ranges are ignored.
//
// The range will be page-aligned and coalesced with other ranges at flush time.
func (t *Tracker) Add(off, length int64) {
	if length <= 0 {
		return
	}
	t.ranges = append(t.ranges, Range{Off: off, Len: length})
}

// Pending reports whether any ranges are waiting to be flushed.
func (t *Tracker) Pending() bool {
	return len(t.ranges) > 0
}

// FlushDataOnly flushes all dirty ranges outside the header pages to disk.
//
// This method:
//  1. Coalesces all ranges into page-aligned, non-overlapping ranges
//  2. Flushes each range using msync()
//  3. Clears the ranges slice
//
// If ctx is cancelled during flushing, some ranges may have been flushed while
// others have not; the ranges are kept so a later call retries them.
func (t *Tracker) FlushDataOnly(ctx context.Context) error {
	if len(t.ranges) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data := t.target.Data()
	if len(data) == 0 {
		t.ranges = t.ranges[:0]
		return nil
	}
	if err := t.flushRanges(ctx, data); err != nil {
		return err
	}

	t.ranges = t.ranges[:0]
	return nil
}

// FlushHeaderAndMeta flushes the header pages and then syncs the descriptor:
//   - FlushAuto: fdatasync()
//   - FlushDataOnly: no descriptor sync
//   - FlushFull: fdatasync() + F_FULLFSYNC on macOS
//
// If cancelled after the header is flushed but before the sync completes, the
// header may be inconsistent with the data pages on disk.
func (t *Tracker) FlushHeaderAndMeta(ctx context.Context, mode FlushMode) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if t.headerEnd > 0 {
		data := t.target.Data()
		headerLen := t.headerEnd
		if headerLen > int64(len(data)) {
			headerLen = int64(len(data))
		}
		if headerLen > 0 {
			if err := msync(data[:headerLen]); err != nil {
				return err
			}
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if mode == FlushDataOnly {
		return nil
	}
	return fdatasync(t.target, mode == FlushFull)
}

// Flush writes data pages, then header pages, then syncs per mode.
func (t *Tracker) Flush(ctx context.Context, mode FlushMode) error {
	if err := t.FlushDataOnly(ctx); err != nil {
		return err
	}
	return t.FlushHeaderAndMeta(ctx, mode)
}

// Reset clears all tracked ranges.
func (t *Tracker) Reset() {
	t.ranges = t.ranges[:0]
}

// DebugRanges returns a copy of the raw, uncoalesced ranges.
func (t *Tracker) DebugRanges() []Range {
	result := make([]Range, len(t.ranges))
	copy(result, t.ranges)
	return result
}

// DebugCoalescedRanges returns the page-aligned, merged ranges that would be flushed.
func (t *Tracker) DebugCoalescedRanges() []Range {
	return t.coalesce()
}

func (t *Tracker) alignUp(n int64) int64 {
	if rem := n % t.pageSize; rem != 0 {
		return n + t.pageSize - rem
	}
	return n
}

// coalesce page-aligns all ranges, sorts them, and merges overlapping/adjacent ranges.
func (t *Tracker) coalesce() []Range {
	if len(t.ranges) == 0 {
		return nil
	}

	aligned := make([]Range, len(t.ranges))
	for i, r := range t.ranges {
		start := (r.Off / t.pageSize) * t.pageSize
		end := t.alignUp(r.Off + r.Len)
		aligned[i] = Range{Off: start, Len: end - start}
	}

	sort.Slice(aligned, func(i, j int) bool {
		return aligned[i].Off < aligned[j].Off
	})

	merged := make([]Range, 0, len(aligned))
	current := aligned[0]
	for _, next := range aligned[1:] {
		if next.Off <= current.Off+current.Len {
			end := max(current.Off+current.Len, next.Off+next.Len)
			current.Len = end - current.Off
			continue
		}
		merged = append(merged, current)
		current = next
	}
	return append(merged, current)
}

// dataRanges clips the coalesced ranges to the file and drops header pages.
func (t *Tracker) dataRanges(fileLen int64) []Range {
	var out []Range
	for _, r := range t.coalesce() {
		start, end := r.Off, r.Off+r.Len
		if start < t.headerEnd {
			start = t.headerEnd
		}
		if end > fileLen {
			end = fileLen
		}
		if start >= end {
			continue
		}
		out = append(out, Range{Off: start, Len: end - start})
	}
	return out
}
