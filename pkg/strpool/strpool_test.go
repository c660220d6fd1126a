package strpool

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/joshuapare/spankit/store"
)

func newTestPool(t *testing.T, enc encoding.Encoding) (*Pool, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "strings.dat"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return New(st, enc), st
}

func TestPool_UTF8RoundTrip(t *testing.T) {
	p, _ := newTestPool(t, nil)

	addr, err := p.Put("Zoë")
	require.NoError(t, err)
	require.Equal(t, uint64(len("Zoë")), addr.Length)

	got, err := p.Get(addr)
	require.NoError(t, err)
	require.Equal(t, "Zoë", got)
}

func TestPool_Windows1252StoresOneBytePerRune(t *testing.T) {
	p, st := newTestPool(t, charmap.Windows1252)

	addr, err := p.Put("café")
	require.NoError(t, err)
	require.Equal(t, uint64(4), addr.Length)

	raw, err := st.Bytes(addr)
	require.NoError(t, err)
	require.Equal(t, []byte{'c', 'a', 'f', 0xe9}, raw)

	got, err := p.Get(addr)
	require.NoError(t, err)
	require.Equal(t, "café", got)
}

func TestPool_Windows1252RejectsUnsupportedRunes(t *testing.T) {
	p, st := newTestPool(t, charmap.Windows1252)

	_, err := p.Put("日本")
	require.Error(t, err)
	require.Equal(t, int64(1), st.Len(), "nothing written on encode failure")
}

func TestPool_UTF16LE(t *testing.T) {
	p, st := newTestPool(t, unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM))

	addr, err := p.Put("Noah")
	require.NoError(t, err)
	require.Equal(t, uint64(8), addr.Length)

	raw, err := st.Bytes(addr)
	require.NoError(t, err)
	require.Equal(t, []byte("N\x00o\x00a\x00h\x00"), raw)

	got, err := p.Get(addr)
	require.NoError(t, err)
	require.Equal(t, "Noah", got)
}

func TestPool_DeleteThenReuse(t *testing.T) {
	p, _ := newTestPool(t, nil)

	liam, err := p.Put("Liam")
	require.NoError(t, err)
	_, err = p.Put("Olivia")
	require.NoError(t, err)

	require.NoError(t, p.Delete(liam))

	mia, err := p.Put("Mia")
	require.NoError(t, err)
	require.Equal(t, liam.Offset, mia.Offset)

	got, err := p.Get(mia)
	require.NoError(t, err)
	require.Equal(t, "Mia", got)
}

func TestPool_EmptyString(t *testing.T) {
	p, _ := newTestPool(t, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM))

	_, err := p.Put("")
	require.ErrorIs(t, err, store.ErrEmptyPayload)
}

func TestPool_GetBadAddress(t *testing.T) {
	p, _ := newTestPool(t, nil)

	_, err := p.Get(store.Address{})
	require.ErrorIs(t, err, store.ErrBadAddress)
}
