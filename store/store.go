package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/joshuapare/spankit/internal/buf"
	"github.com/joshuapare/spankit/internal/mmfile"
	"github.com/joshuapare/spankit/store/dirty"
	"github.com/joshuapare/spankit/store/freelist"
)

// Store is an opened data file plus its free list.
type Store struct {
	path   string
	file   *mmfile.File
	dt     *dirty.Tracker
	fl     *freelist.FreeList
	log    *slog.Logger
	cfg    Options
	closed bool
}

// Open opens or creates the data file at path and its free-list sidecar.
func Open(path string, opts *Options) (*Store, error) {
	cfg := resolveOptions(opts)

	f, err := mmfile.Open(path, minDataSize)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}

	fl, err := freelist.Open(path+cfg.SidecarSuffix, &freelist.Options{
		Logger:    cfg.Logger,
		GrowSlots: cfg.FreeListGrowSlots,
	})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("store: open free list for %s: %w", path, err)
	}

	s := &Store{
		path: path,
		file: f,
		dt:   dirty.NewTracker(f, 0),
		fl:   fl,
		log:  cfg.Logger,
		cfg:  cfg,
	}
	s.log.Debug("store: open",
		"path", path,
		"size", f.Len(),
		"free_rows", fl.Count(),
	)
	return s, nil
}

// Path returns the data file path.
func (s *Store) Path() string { return s.path }

// Len returns the data file length. Appends land at this offset.
func (s *Store) Len() int64 { return s.file.Len() }

// FreeList exposes the sidecar allocator for inspection.
func (s *Store) FreeList() *freelist.FreeList { return s.fl }

// Insert stores p and returns a View of it. A free span at least len(p) long
// is reused when one exists; otherwise p is appended to the data file.
func (s *Store) Insert(p []byte) (View, error) {
	if s.closed {
		return View{}, ErrClosed
	}
	if len(p) == 0 {
		return View{}, ErrEmptyPayload
	}
	n := uint64(len(p))

	if row, off, ok := s.fl.Search(n); ok {
		if err := s.file.Write(off, p); err != nil {
			return View{}, fmt.Errorf("store: write %d bytes at %d: %w", n, off, err)
		}
		if err := s.fl.Release(row, n); err != nil {
			return View{}, err
		}
		s.dt.Add(off, int64(n))
		return View{addr: Address{Offset: off, Length: n}, s: s}, nil
	}

	off, err := s.file.Append(p)
	if err != nil {
		return View{}, fmt.Errorf("store: append %d bytes: %w", n, err)
	}
	s.dt.Add(off, int64(n))
	return View{addr: Address{Offset: off, Length: n}, s: s}, nil
}

// Remove zeroes addr's bytes and records the span as free. The span is added
// as a new free-list row; it is not merged with neighbouring free spans.
func (s *Store) Remove(addr Address) error {
	if s.closed {
		return ErrClosed
	}
	if err := s.checkAddress(addr); err != nil {
		return err
	}
	if err := s.file.ZeroFill(addr.Offset, addr.Length); err != nil {
		return fmt.Errorf("store: zero %s: %w", addr, err)
	}
	s.dt.Add(addr.Offset, int64(addr.Length))
	if _, err := s.fl.Insert(addr.span()); err != nil {
		return fmt.Errorf("store: free %s: %w", addr, err)
	}
	return nil
}

// Bytes returns addr's bytes straight from the mapping. The slice is only
// valid until the next Insert or Remove.
func (s *Store) Bytes(addr Address) ([]byte, error) {
	if s.closed {
		return nil, ErrClosed
	}
	if err := s.checkAddress(addr); err != nil {
		return nil, err
	}
	return s.file.Bytes(addr.Offset, addr.Length)
}

// View binds addr to the store after checking it fits the data file.
func (s *Store) View(addr Address) (View, error) {
	if s.closed {
		return View{}, ErrClosed
	}
	if err := s.checkAddress(addr); err != nil {
		return View{}, err
	}
	return View{addr: addr, s: s}, nil
}

// Flush persists the data file's dirty pages, then the free list, at the
// given durability level.
func (s *Store) Flush(ctx context.Context, mode dirty.FlushMode) error {
	if s.closed {
		return ErrClosed
	}
	if err := s.dt.Flush(ctx, mode); err != nil {
		return fmt.Errorf("store: flush %s: %w", s.path, err)
	}
	if err := s.fl.Flush(ctx, mode); err != nil {
		return fmt.Errorf("store: flush %s: %w", s.fl.Path(), err)
	}
	return nil
}

// Close unmaps both files, flushing first when Options.FlushOnClose is set.
// Views and byte slices obtained earlier must not be used afterwards.
func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	var flushErr error
	if s.cfg.FlushOnClose {
		flushErr = s.Flush(context.Background(), s.cfg.CloseFlushMode)
	}
	s.closed = true
	s.dt.Reset()
	err := errors.Join(flushErr, s.fl.Close(), s.file.Close())
	s.log.Debug("store: close", "path", s.path, "error", err)
	return err
}

// checkAddress rejects addresses that cannot name a live record.
func (s *Store) checkAddress(addr Address) error {
	if addr.Offset < minDataSize || addr.Length == 0 {
		return fmt.Errorf("%w: %s", ErrBadAddress, addr)
	}
	if _, err := buf.CheckSpan(s.file.Len(), addr.Offset, addr.Length); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrBadAddress, addr, err)
	}
	return nil
}
