// Package dirty provides page-level dirty tracking and flushing for
// memory-mapped store files.
//
// # Overview
//
// Writers record every modified byte range with Add. At flush time the
// tracker page-aligns the ranges, merges overlapping or adjacent ones, and
// pushes them to disk with msync (Linux, macOS). On platforms where the file
// is not mapped the writes already went through to the file, so only the
// descriptor sync is performed.
//
// # Header Pages
//
// A tracker may be created with a header length. The page(s) covering the
// header are excluded from FlushDataOnly and written by FlushHeaderAndMeta
// instead, so a commit can order "data first, header last":
//
//	dt := dirty.NewTracker(file, format.CountSize)
//	dt.Add(slotPos, format.SlotSize)
//	if err := dt.FlushDataOnly(ctx); err != nil {
//	    return err
//	}
//	return dt.FlushHeaderAndMeta(ctx, dirty.FlushAuto)
//
// # Thread Safety
//
// Trackers are not thread-safe. The owning store serializes access.
package dirty
