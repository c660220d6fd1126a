package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// openTestStore opens a store in a temp dir and closes it when the test ends.
func openTestStore(t testing.TB, opts *Options) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "names.dat")
	s, err := Open(path, opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

// mustInsert inserts p and returns its address.
func mustInsert(t testing.TB, s *Store, p string) Address {
	t.Helper()
	v, err := s.Insert([]byte(p))
	require.NoError(t, err)
	require.Equal(t, p, string(v.Bytes()))
	return v.Address()
}

// readAt returns the bytes at addr as a string.
func readAt(t testing.TB, s *Store, addr Address) string {
	t.Helper()
	b, err := s.Bytes(addr)
	require.NoError(t, err)
	return string(b)
}
