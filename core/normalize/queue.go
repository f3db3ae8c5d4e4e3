// FIFO queue of pending continuation ids with deduplication.
// The morechildren endpoint can hand back further "more" things, so
// resolution is a loop over this queue rather than plain recursion.
// Resolved things carry their own parent_id, which is all splicing needs.
package normalize

// moreQueue is a FIFO queue of continuation id batches that drops ids it
// has already seen.
type moreQueue struct {
	items [][]string
	seen  map[string]bool
	idx   int // current read position
}

func newMoreQueue() *moreQueue {
	return &moreQueue{seen: make(map[string]bool)}
}

// Add enqueues a continuation's ids, keeping only ones not seen before.
// Markers that dedupe down to nothing are dropped.
func (q *moreQueue) Add(ids []string) {
	fresh := make([]string, 0, len(ids))
	for _, id := range ids {
		if q.seen[id] {
			continue
		}
		q.seen[id] = true
		fresh = append(fresh, id)
	}
	if len(fresh) == 0 {
		return
	}
	q.items = append(q.items, fresh)
}

// HasNext reports whether unresolved continuations remain.
func (q *moreQueue) HasNext() bool {
	return q.idx < len(q.items)
}

// Next returns the next id batch and advances the pointer.
func (q *moreQueue) Next() []string {
	ids := q.items[q.idx]
	q.idx++
	return ids
}
