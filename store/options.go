package store

import (
	"io"
	"log/slog"

	"github.com/joshuapare/spankit/store/dirty"
)

// DefaultSidecarSuffix is appended to the data path to name the free list.
const DefaultSidecarSuffix = ".f"

// minDataSize reserves offset 0 of the data file.
const minDataSize = 1

// Options configures a Store. A nil *Options selects every default.
type Options struct {
	// Logger receives debug output from the store and its free list.
	// Nil discards all output.
	Logger *slog.Logger

	// SidecarSuffix names the free-list file: path + SidecarSuffix.
	// Default: ".f"
	SidecarSuffix string

	// FreeListGrowSlots is how many slots the sidecar grows by at a time.
	// Zero selects freelist.DefaultGrowSlots.
	FreeListGrowSlots int

	// FlushOnClose flushes both files with CloseFlushMode before unmapping.
	FlushOnClose bool

	// CloseFlushMode is the durability level used when FlushOnClose is set.
	CloseFlushMode dirty.FlushMode
}

func resolveOptions(o *Options) Options {
	cfg := Options{}
	if o != nil {
		cfg = *o
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.SidecarSuffix == "" {
		cfg.SidecarSuffix = DefaultSidecarSuffix
	}
	return cfg
}
