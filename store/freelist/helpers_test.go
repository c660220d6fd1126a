package freelist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/spankit/internal/format"
)

// openTestList opens a fresh free list in a temp dir.
func openTestList(t testing.TB, opts *Options) (*FreeList, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.f")
	fl, err := Open(path, opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = fl.Close() })
	return fl, path
}

// writeSidecar writes a raw sidecar with the given stored count, physical
// slot capacity, and populated leading slots.
func writeSidecar(t testing.TB, path string, stored, capacity uint64, spans []Span) {
	t.Helper()
	size, ok := format.FreeListSizeFor(capacity)
	require.True(t, ok)
	b := make([]byte, size)
	require.NoError(t, format.PutCount(b, stored))
	for i, s := range spans {
		require.NoError(t, format.PutSlot(b, uint64(i+1), s.Offset, s.Length))
	}
	require.NoError(t, os.WriteFile(path, b, 0o644))
}

// readStoredCount reads the header straight from disk.
func readStoredCount(t testing.TB, path string) uint64 {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	count, err := format.ReadCount(b)
	require.NoError(t, err)
	return count
}

// insertAll inserts spans in order and returns their rows.
func insertAll(t testing.TB, fl *FreeList, spans ...Span) []uint64 {
	t.Helper()
	rows := make([]uint64, 0, len(spans))
	for _, s := range spans {
		row, err := fl.Insert(s)
		require.NoError(t, err)
		rows = append(rows, row)
	}
	return rows
}
