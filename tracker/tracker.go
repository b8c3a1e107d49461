package tracker

import (
	"sync"
)

// Tracker is a bidirectional index between records and the identifiers
// they depend on.  It is safe for concurrent use across records; calls to
// Track for the same record must not race with each other.
type Tracker[R comparable] struct {
	mu   sync.RWMutex
	subs map[string]map[R]struct{} // identifier -> set of records
}

// New creates an empty Tracker.
func New[R comparable]() *Tracker[R] {
	return &Tracker[R]{
		subs: make(map[string]map[R]struct{}),
	}
}

// Track moves record from the previous identifier set to the current
// one.  Identifiers only in previous drop the record, identifiers only in
// current gain it, and identifiers in both are untouched.
func (t *Tracker[R]) Track(record R, previous, current []string) {
	prev := setOf(previous)
	cur := setOf(current)

	t.mu.Lock()
	defer t.mu.Unlock()

	for id := range prev {
		if _, ok := cur[id]; ok {
			continue
		}
		if recs, ok := t.subs[id]; ok {
			delete(recs, record)
			if len(recs) == 0 {
				delete(t.subs, id)
			}
		}
	}
	for id := range cur {
		if _, ok := prev[id]; ok {
			continue
		}
		recs := t.subs[id]
		if recs == nil {
			recs = make(map[R]struct{})
			t.subs[id] = recs
		}
		recs[record] = struct{}{}
	}
}

// Register subscribes record to ids.
func (t *Tracker[R]) Register(record R, ids []string) {
	t.Track(record, nil, ids)
}

// Release unsubscribes record from ids.
func (t *Tracker[R]) Release(record R, ids []string) {
	t.Track(record, ids, nil)
}

// RecordsFor returns the records subscribed to any of ids, each with the
// identifiers among ids it matched, in the order of ids.
func (t *Tracker[R]) RecordsFor(ids []string) map[R][]string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	res := make(map[R][]string)
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		for rec := range t.subs[id] {
			res[rec] = append(res[rec], id)
		}
	}
	return res
}

// IdentifierCount returns the number of identifiers with at least one
// subscribed record.
func (t *Tracker[R]) IdentifierCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.subs)
}

// RecordCount returns the number of records subscribed to id.
func (t *Tracker[R]) RecordCount(id string) int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.subs[id])
}

func setOf(ids []string) map[string]struct{} {
	res := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		res[id] = struct{}{}
	}
	return res
}
