package freelist

// Stats summarizes the free list for fragmentation monitoring.
type Stats struct {
	Rows      uint64 // record_count
	Capacity  uint64 // physical slots excluding the sentinel
	DeadRows  uint64 // rows whose span was consumed but cannot be retired
	FreeBytes uint64 // sum of live span lengths
	Largest   uint64 // longest live span
}

// Stats walks rows 1..Count().
func (fl *FreeList) Stats() Stats {
	st := Stats{Rows: fl.count, Capacity: fl.Capacity()}
	for _, s := range fl.Spans() {
		if s.Length == 0 {
			st.DeadRows++
			continue
		}
		st.FreeBytes += s.Length
		st.Largest = max(st.Largest, s.Length)
	}
	return st
}
