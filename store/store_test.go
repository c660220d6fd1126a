package store

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/spankit/internal/format"
	"github.com/joshuapare/spankit/store/dirty"
	"github.com/joshuapare/spankit/store/freelist"
)

func TestOpen_CreatesBothFiles(t *testing.T) {
	s, path := openTestStore(t, nil)

	require.Equal(t, int64(1), s.Len(), "offset 0 is reserved")
	require.Equal(t, path, s.Path())
	require.Equal(t, path+DefaultSidecarSuffix, s.FreeList().Path())

	_, err := os.Stat(path + ".f")
	require.NoError(t, err)
}

func TestOpen_CustomSidecarSuffix(t *testing.T) {
	s, path := openTestStore(t, &Options{SidecarSuffix: ".free"})

	require.Equal(t, path+".free", s.FreeList().Path())
	_, err := os.Stat(path + ".free")
	require.NoError(t, err)
}

func TestInsert_RoundTrip(t *testing.T) {
	s, _ := openTestStore(t, nil)

	payloads := [][]byte{
		[]byte("a"),
		[]byte("hello, world"),
		{0x00, 0xff, 0x00, 0x10},
		bytes.Repeat([]byte{0xAB}, 10000),
	}
	var addrs []Address
	for _, p := range payloads {
		v, err := s.Insert(p)
		require.NoError(t, err)
		addrs = append(addrs, v.Address())
	}
	for i, p := range payloads {
		got, err := s.Bytes(addrs[i])
		require.NoError(t, err)
		require.Equal(t, p, got)
	}
}

func TestInsert_AppendsAtPriorEnd(t *testing.T) {
	s, _ := openTestStore(t, nil)

	for _, p := range []string{"Noah", "Liam", "Olivia"} {
		before := s.Len()
		addr := mustInsert(t, s, p)
		require.Equal(t, before, addr.Offset)
		require.Equal(t, uint64(len(p)), addr.Length)
		require.Equal(t, before+int64(len(p)), s.Len())
	}
}

func TestInsert_RejectsEmptyPayload(t *testing.T) {
	s, _ := openTestStore(t, nil)

	_, err := s.Insert(nil)
	require.ErrorIs(t, err, ErrEmptyPayload)
	_, err = s.Insert([]byte{})
	require.ErrorIs(t, err, ErrEmptyPayload)

	require.Equal(t, int64(1), s.Len())
	require.Zero(t, s.FreeList().Count())
}

func TestRemove_ZeroesAndFrees(t *testing.T) {
	s, path := openTestStore(t, nil)
	addr := mustInsert(t, s, "secret")

	require.NoError(t, s.Remove(addr))
	require.Equal(t, "\x00\x00\x00\x00\x00\x00", readAt(t, s, addr))
	require.Equal(t, []freelist.Span{{Offset: 1, Length: 6}}, s.FreeList().Spans())

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NotContains(t, string(onDisk), "secret")
}

func TestReuse_SameOffsetForShorterPayload(t *testing.T) {
	s, _ := openTestStore(t, nil)
	addr := mustInsert(t, s, "Olivia")
	mustInsert(t, s, "tail")
	size := s.Len()

	require.NoError(t, s.Remove(addr))

	reused := mustInsert(t, s, "Ava")
	require.Equal(t, addr.Offset, reused.Offset)
	require.Equal(t, uint64(3), reused.Length)
	require.Equal(t, size, s.Len(), "no growth when a free span fits")

	// The remainder of the span stays free, shrunk from the front.
	require.Equal(t, []freelist.Span{{Offset: addr.Offset + 3, Length: 3}}, s.FreeList().Spans())

	rest := mustInsert(t, s, "Eli")
	require.Equal(t, addr.Offset+3, rest.Offset)
	require.Zero(t, s.FreeList().Count(), "exhausted tail row is retired")
}

func TestScenario_NewestFreedSpanWins(t *testing.T) {
	s, _ := openTestStore(t, nil)

	noah := mustInsert(t, s, "Noah")
	liam := mustInsert(t, s, "Liam")
	olivia := mustInsert(t, s, "Olivia")
	require.Equal(t, Address{Offset: 1, Length: 4}, noah)
	require.Equal(t, Address{Offset: 5, Length: 4}, liam)
	require.Equal(t, Address{Offset: 9, Length: 6}, olivia)

	require.NoError(t, s.Remove(noah))

	renamed := mustInsert(t, s, "Renamed Noah")
	require.Equal(t, int64(15), renamed.Offset, "no free span is long enough")

	require.NoError(t, s.Remove(liam))

	again := mustInsert(t, s, "Noah")
	require.Equal(t, int64(5), again.Offset, "newest freed span is scanned first")

	require.Equal(t, "Olivia", readAt(t, s, olivia))
	require.Equal(t, "Renamed Noah", readAt(t, s, renamed))
	require.Equal(t, []freelist.Span{{Offset: 1, Length: 4}}, s.FreeList().Spans())
}

func TestTailRetirementAndDeadInteriorRow(t *testing.T) {
	s, _ := openTestStore(t, nil)
	a := mustInsert(t, s, "AAAA")
	b := mustInsert(t, s, "BBBBBBBB")

	require.NoError(t, s.Remove(a)) // row 1: {1,4}
	require.NoError(t, s.Remove(b)) // row 2: {5,8}
	require.Equal(t, uint64(2), s.FreeList().Count())

	// Consumes 6 of row 2, leaving {11,2}.
	six := mustInsert(t, s, "666666")
	require.Equal(t, b.Offset, six.Offset)

	// Row 2 is too short now, so row 1 is exhausted. It is not the tail,
	// so it stays behind as a dead row.
	four := mustInsert(t, s, "4444")
	require.Equal(t, a.Offset, four.Offset)
	require.Equal(t, uint64(2), s.FreeList().Count())

	st := s.Stats()
	assert.Equal(t, uint64(1), st.FreeList.DeadRows)
	assert.Equal(t, uint64(2), st.FreeList.FreeBytes)

	// Exhausting the tail retires it.
	two := mustInsert(t, s, "22")
	require.Equal(t, int64(11), two.Offset)
	require.Equal(t, uint64(1), s.FreeList().Count())

	// Only the dead row remains; nothing can be reused.
	before := s.Len()
	one := mustInsert(t, s, "1")
	require.Equal(t, before, one.Offset)
}

func TestBadAddresses(t *testing.T) {
	s, _ := openTestStore(t, nil)
	mustInsert(t, s, "Noah")

	for _, addr := range []Address{
		{},
		{Offset: 0, Length: 4},
		{Offset: 1, Length: 0},
		{Offset: -1, Length: 2},
		{Offset: 3, Length: 10},
		{Offset: 1 << 40, Length: 1},
	} {
		err := s.Remove(addr)
		require.ErrorIs(t, err, ErrBadAddress, "%s", addr)
		require.ErrorIs(t, err, ErrContract, "%s", addr)

		_, err = s.Bytes(addr)
		require.ErrorIs(t, err, ErrBadAddress, "%s", addr)

		_, err = s.View(addr)
		require.ErrorIs(t, err, ErrBadAddress, "%s", addr)
	}
	require.Zero(t, s.FreeList().Count(), "rejected removes leave no free rows")
}

func TestView(t *testing.T) {
	s, _ := openTestStore(t, nil)
	v, err := s.Insert([]byte("Olivia"))
	require.NoError(t, err)

	require.Equal(t, uint64(6), v.Len())
	require.Equal(t, "Olivia", v.String())

	bound, err := s.View(v.Address())
	require.NoError(t, err)
	require.Equal(t, "Olivia", string(bound.Bytes()))

	require.Nil(t, View{}.Bytes())
}

func TestReopen_PersistsDataAndFreeList(t *testing.T) {
	s, path := openTestStore(t, nil)

	var addrs []Address
	for _, p := range []string{"Noah", "Liam", "Olivia", "Emma", "Ava"} {
		addrs = append(addrs, mustInsert(t, s, p))
	}
	require.NoError(t, s.Remove(addrs[1]))
	require.NoError(t, s.Remove(addrs[3]))
	wantSpans := s.FreeList().Spans()
	wantLen := s.Len()
	require.NoError(t, s.Flush(context.Background(), dirty.FlushAuto))
	require.NoError(t, s.Close())

	reopened, err := Open(path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	require.Equal(t, wantLen, reopened.Len())
	require.Equal(t, uint64(2), reopened.FreeList().Count())
	require.Equal(t, wantSpans, reopened.FreeList().Spans())
	require.Equal(t, "Olivia", readAt(t, reopened, addrs[2]))
	require.Equal(t, "Ava", readAt(t, reopened, addrs[4]))

	// The newest free span (Emma's) is reused first after the restart.
	again := mustInsert(t, reopened, "Mia")
	require.Equal(t, addrs[3].Offset, again.Offset)
}

func TestReopen_RecoversInflatedStoredCount(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	s, path := openTestStore(t, nil)
	var addrs []Address
	for _, p := range []string{"Noah", "Liam", "Olivia"} {
		addrs = append(addrs, mustInsert(t, s, p))
	}
	require.NoError(t, s.Remove(addrs[0]))
	require.NoError(t, s.Remove(addrs[2]))
	wantSpans := s.FreeList().Spans()
	require.NoError(t, s.Close())

	// Inflate the stored count well past the populated rows.
	sidecar := path + DefaultSidecarSuffix
	raw, err := os.ReadFile(sidecar)
	require.NoError(t, err)
	require.NoError(t, format.PutCount(raw, 40))
	require.NoError(t, os.WriteFile(sidecar, raw, 0o644))

	reopened, err := Open(path, &Options{Logger: logger})
	require.NoError(t, err)
	defer reopened.Close()

	require.Equal(t, uint64(2), reopened.FreeList().Count())
	require.Equal(t, wantSpans, reopened.FreeList().Spans())
	require.Contains(t, logs.String(), "repaired record count")
	require.Contains(t, logs.String(), "store: open")
}

func TestFlushOnClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flush.dat")
	s, err := Open(path, &Options{FlushOnClose: true, CloseFlushMode: dirty.FlushFull})
	require.NoError(t, err)

	addr := mustInsert(t, s, "durable")
	require.NoError(t, s.Remove(addr))
	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "second close is a no-op")

	reopened, err := Open(path, nil)
	require.NoError(t, err)
	defer reopened.Close()
	require.Equal(t, uint64(1), reopened.FreeList().Count())
}

func TestFlush_Cancelled(t *testing.T) {
	s, _ := openTestStore(t, nil)
	mustInsert(t, s, "Noah")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, s.Flush(ctx, dirty.FlushAuto), context.Canceled)
}

func TestClosedStore(t *testing.T) {
	s, _ := openTestStore(t, nil)
	addr := mustInsert(t, s, "Noah")
	v, err := s.View(addr)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.Insert([]byte("x"))
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, s.Remove(addr), ErrClosed)
	_, err = s.Bytes(addr)
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, s.Flush(context.Background(), dirty.FlushAuto), ErrClosed)
	require.Nil(t, v.Bytes())
}

func TestStats(t *testing.T) {
	s, _ := openTestStore(t, nil)
	a := mustInsert(t, s, "Noah")
	mustInsert(t, s, "Olivia")
	require.NoError(t, s.Remove(a))

	st := s.Stats()
	require.Equal(t, int64(11), st.DataSize)
	require.Equal(t, uint64(1), st.FreeList.Rows)
	require.Equal(t, uint64(4), st.FreeList.FreeBytes)
	require.Equal(t, int64(6), st.LiveBytes())
}

func TestAddress(t *testing.T) {
	require.True(t, Address{}.IsZero())
	a := Address{Offset: 9, Length: 6}
	require.False(t, a.IsZero())
	require.Equal(t, int64(15), a.End())
	require.Equal(t, "{offset:9 length:6}", a.String())
}
