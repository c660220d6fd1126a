package freelist

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joshuapare/spankit/internal/buf"
	"github.com/joshuapare/spankit/internal/format"
	"github.com/joshuapare/spankit/internal/mmfile"
	"github.com/joshuapare/spankit/store/dirty"
)

// Span is a free region of the data file. Live free spans always have
// Offset >= 1 and Length >= 1, except dead interior rows whose Length is 0.
type Span struct {
	Offset int64
	Length uint64
}

// End returns the offset one past the span.
func (s Span) End() int64 { return s.Offset + int64(s.Length) }

// FreeList is the sidecar allocator for one data file.
//
// NOT thread-safe. The owning store drives every call.
type FreeList struct {
	file      *mmfile.File
	dt        *dirty.Tracker
	log       *slog.Logger
	count     uint64 // record_count, mirrored in the file header
	growSlots uint64
}

// Open opens or creates the sidecar at path and recovers its record count.
func Open(path string, opts *Options) (*FreeList, error) {
	cfg := resolveOptions(opts)

	f, err := mmfile.Open(path, format.FreeListInitSize)
	if err != nil {
		return nil, err
	}

	fl := &FreeList{
		file:      f,
		dt:        dirty.NewTracker(f, format.CountSize),
		log:       cfg.Logger,
		growSlots: uint64(cfg.GrowSlots),
	}

	stored, err := format.ReadCount(f.Data())
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("freelist: read header of %s: %w", path, err)
	}

	recovered := fl.recoverCount()
	if recovered != stored {
		fl.log.Warn("freelist: repaired record count",
			"path", path,
			"stored", stored,
			"recovered", recovered,
			"capacity", fl.Capacity(),
		)
		if err := fl.writeCount(recovered); err != nil {
			_ = f.Close()
			return nil, err
		}
	}
	fl.count = recovered

	fl.log.Debug("freelist: open", "path", path, "records", fl.count, "capacity", fl.Capacity())
	return fl, nil
}

// recoverCount scans backward from the physical slot count. Every slot with a
// zero offset marks a boundary; the lowest one wins, so the result is the
// number of leading slots that hold a span.
func (fl *FreeList) recoverCount() uint64 {
	data := fl.file.Data()
	physical := format.SlotCapacity(fl.file.Len())
	count := physical
	for row := physical; row >= 1; row-- {
		off, _, err := format.ReadSlot(data, row)
		if err != nil || off == 0 {
			count = row - 1
		}
	}
	return count
}

// Path returns the sidecar path.
func (fl *FreeList) Path() string { return fl.file.Path() }

// Count returns record_count: the highest populated row.
func (fl *FreeList) Count() uint64 { return fl.count }

// Capacity returns the highest row the sidecar can hold without growing.
func (fl *FreeList) Capacity() uint64 { return format.SlotCapacity(fl.file.Len()) }

// Insert appends s as a new row and returns its index. The slot is written
// before the count is published.
func (fl *FreeList) Insert(s Span) (uint64, error) {
	if fl.file.FD() < 0 {
		return 0, ErrClosed
	}
	if s.Offset <= 0 || s.Length == 0 {
		return 0, fmt.Errorf("%w: offset=%d length=%d", ErrBadSpan, s.Offset, s.Length)
	}
	if _, ok := buf.SpanEnd(s.Offset, s.Length); !ok {
		return 0, fmt.Errorf("%w: offset=%d length=%d overflows", ErrBadSpan, s.Offset, s.Length)
	}

	row := fl.count + 1
	if err := fl.ensureRow(row); err != nil {
		return 0, err
	}
	if err := fl.writeSlot(row, s.Offset, s.Length); err != nil {
		return 0, err
	}
	if err := fl.writeCount(row); err != nil {
		return 0, err
	}
	fl.count = row
	return row, nil
}

// Search returns the newest row whose span is at least length bytes long,
// together with that span's current offset. A zero length never matches.
func (fl *FreeList) Search(length uint64) (row uint64, offset int64, ok bool) {
	if fl.count == 0 || length == 0 {
		return 0, 0, false
	}
	data := fl.file.Data()
	for r := fl.count; r >= 1; r-- {
		off, l, err := format.ReadSlot(data, r)
		if err != nil {
			return 0, 0, false
		}
		if l >= length {
			return r, off, true
		}
	}
	return 0, 0, false
}

// Release consumes length bytes from the front of row's span. A tail row
// that reaches zero length is retired; an interior row stays as a dead slot.
// Precondition violations return an error wrapping ErrContract and leave the
// list unchanged.
func (fl *FreeList) Release(row, length uint64) error {
	if fl.file.FD() < 0 {
		return ErrClosed
	}
	if row == 0 || row > fl.count {
		return fmt.Errorf("%w: row %d not in [1,%d]", ErrRowOutOfRange, row, fl.count)
	}
	if length == 0 {
		return fmt.Errorf("%w: row %d", ErrZeroRelease, row)
	}
	off, l, err := format.ReadSlot(fl.file.Data(), row)
	if err != nil {
		return err
	}
	if length > l {
		return fmt.Errorf("%w: row %d has %d bytes, asked for %d", ErrOverRelease, row, l, length)
	}
	newOff, ok := buf.SpanEnd(off, length)
	if !ok {
		return fmt.Errorf("%w: row %d offset %d + %d overflows", ErrOverRelease, row, off, length)
	}
	remaining := l - length

	if remaining == 0 && row == fl.count {
		// Clear first so a torn retirement still reads as a boundary.
		if err := fl.writeSlot(row, 0, 0); err != nil {
			return err
		}
		if err := fl.writeCount(row - 1); err != nil {
			return err
		}
		fl.count = row - 1
		return nil
	}
	return fl.writeSlot(row, newOff, remaining)
}

// Span returns the span stored at row, which must be in [1, Count()].
func (fl *FreeList) Span(row uint64) (Span, error) {
	if row == 0 || row > fl.count {
		return Span{}, fmt.Errorf("%w: row %d not in [1,%d]", ErrRowOutOfRange, row, fl.count)
	}
	off, l, err := format.ReadSlot(fl.file.Data(), row)
	if err != nil {
		return Span{}, err
	}
	return Span{Offset: off, Length: l}, nil
}

// Spans returns a copy of rows 1..Count(), dead rows included.
func (fl *FreeList) Spans() []Span {
	data := fl.file.Data()
	out := make([]Span, 0, fl.count)
	for r := uint64(1); r <= fl.count; r++ {
		off, l, err := format.ReadSlot(data, r)
		if err != nil {
			break
		}
		out = append(out, Span{Offset: off, Length: l})
	}
	return out
}

// Flush persists dirty slots first and the record count last.
func (fl *FreeList) Flush(ctx context.Context, mode dirty.FlushMode) error {
	if fl.file.FD() < 0 {
		return ErrClosed
	}
	return fl.dt.Flush(ctx, mode)
}

// Close unmaps and closes the sidecar. Unflushed changes are left to the OS.
func (fl *FreeList) Close() error {
	fl.dt.Reset()
	return fl.file.Close()
}

// ensureRow grows the sidecar so row fits, in steps of growSlots.
func (fl *FreeList) ensureRow(row uint64) error {
	need, ok := format.FreeListSizeFor(row)
	if !ok {
		return fmt.Errorf("%w: row %d overflows", ErrGrowFail, row)
	}
	cur := fl.file.Len()
	if need <= cur {
		return nil
	}
	target := need
	if stepped, ok := format.FreeListSizeFor(fl.Capacity() + fl.growSlots); ok && stepped > target {
		target = stepped
	}
	if err := fl.file.GrowTo(target); err != nil {
		return fmt.Errorf("%w: %w", ErrGrowFail, err)
	}
	fl.log.Debug("freelist: grow", "path", fl.file.Path(), "from", cur, "to", target)
	return nil
}

func (fl *FreeList) writeSlot(row uint64, offset int64, length uint64) error {
	pos, ok := format.SlotPos(row)
	if !ok {
		return fmt.Errorf("%w: row %d", ErrRowOutOfRange, row)
	}
	var rec [format.SlotSize]byte
	if err := format.EncodeSlot(rec[:], offset, length); err != nil {
		return err
	}
	if err := fl.file.Write(pos, rec[:]); err != nil {
		return err
	}
	fl.dt.Add(pos, format.SlotSize)
	return nil
}

func (fl *FreeList) writeCount(count uint64) error {
	var hdr [format.CountSize]byte
	if err := format.PutCount(hdr[:], count); err != nil {
		return err
	}
	if err := fl.file.Write(0, hdr[:]); err != nil {
		return err
	}
	fl.dt.Add(0, format.CountSize)
	return nil
}
