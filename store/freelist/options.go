package freelist

import (
	"io"
	"log/slog"
)

// DefaultGrowSlots is the number of slots added each time the sidecar grows:
// one 4KB page worth of 16-byte slots.
const DefaultGrowSlots = 256

// Options configures a FreeList. The zero value is ready to use.
type Options struct {
	// Logger receives debug and recovery messages. Nil discards all output.
	Logger *slog.Logger

	// GrowSlots is how many slots the sidecar is extended by when Insert
	// runs out of room. Zero selects DefaultGrowSlots.
	GrowSlots int
}

func resolveOptions(o *Options) Options {
	cfg := Options{}
	if o != nil {
		cfg = *o
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.GrowSlots <= 0 {
		cfg.GrowSlots = DefaultGrowSlots
	}
	return cfg
}
