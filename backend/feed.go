package backend

import "context"

// Feed carries parsed trace input from the reading goroutines to the UI
// goroutine. Producers Push; the UI drains the queue when the update
// counter changes.
type Feed struct {
	queue RWBox[[]InputData]
	spare []InputData
	count broadcast[uint64]
}

// Push queues items and bumps the update counter.
func (f *Feed) Push(items ...InputData) {
	if len(items) == 0 {
		return
	}
	f.queue.Write(func(q *[]InputData) {
		*q = append(*q, items...)
	})
	f.count.Update(func(n *uint64) {
		*n++
	})
}

// Drain hands every queued item to fn in order and returns how many
// there were. It must only be called from one goroutine.
func (f *Feed) Drain(fn func(InputData)) int {
	var items []InputData
	f.queue.Write(func(q *[]InputData) {
		items = *q
		*q = f.spare[:0]
	})
	for _, item := range items {
		fn(item)
	}
	clear(items)
	f.spare = items
	return len(items)
}

// Updates streams the update counter. Its signature suits
// skel/stream.New.
func (f *Feed) Updates(ctx context.Context) <-chan uint64 {
	return f.count.Stream(ctx)
}
