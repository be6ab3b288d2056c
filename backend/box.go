package backend

import (
	"context"
	"sync"
)

type RWBox[T any] struct {
	t    T
	lock sync.RWMutex
}

func (r *RWBox[T]) Read(f func(*T)) {
	r.lock.RLock()
	defer r.lock.RUnlock()
	f(&r.t)
}

func (r *RWBox[T]) Write(f func(*T)) {
	r.lock.Lock()
	defer r.lock.Unlock()
	f(&r.t)
}

// broadcast holds a value and lets any number of streams observe its
// latest state. Intermediate values may be skipped by slow readers.
type broadcast[T any] struct {
	lock    sync.Mutex
	value   T
	changed chan struct{}
}

func (b *broadcast[T]) current() (T, chan struct{}) {
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.changed == nil {
		b.changed = make(chan struct{})
	}
	return b.value, b.changed
}

// Update modifies the value and wakes every stream.
func (b *broadcast[T]) Update(f func(*T)) {
	b.lock.Lock()
	defer b.lock.Unlock()
	f(&b.value)
	if b.changed != nil {
		close(b.changed)
	}
	b.changed = make(chan struct{})
}

// Get returns the current value.
func (b *broadcast[T]) Get() T {
	v, _ := b.current()
	return v
}

// Stream emits the current value and then every change until ctx is
// done.
func (b *broadcast[T]) Stream(ctx context.Context) <-chan T {
	out := make(chan T)
	go func() {
		defer close(out)
		for {
			v, changed := b.current()
			select {
			case out <- v:
			case <-ctx.Done():
				return
			}
			select {
			case <-changed:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}
