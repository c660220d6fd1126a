package store

import "github.com/joshuapare/spankit/store/freelist"

// Stats describes space usage of a Store.
type Stats struct {
	// DataSize is the data file length, including the reserved byte.
	DataSize int64
	// FreeList summarizes reusable and dead free-list rows.
	FreeList freelist.Stats
}

// LiveBytes estimates bytes held by live records: the file minus the
// reserved byte and every free byte.
func (st Stats) LiveBytes() int64 {
	return st.DataSize - minDataSize - int64(st.FreeList.FreeBytes)
}

// Stats reports current space usage.
func (s *Store) Stats() Stats {
	return Stats{
		DataSize: s.file.Len(),
		FreeList: s.fl.Stats(),
	}
}
