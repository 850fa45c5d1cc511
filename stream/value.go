package stream

import (
	"context"
	"sync"
)

// Value holds the latest value of type T and broadcasts updates to subscribers.
// The zero value is not usable; create one with NewValue or NewValueOf.
type Value[T any] struct {
	mu      sync.Mutex
	current T
	hasAny  bool
	subs    map[*mailbox[T]]struct{}
}

// mailbox is a single-slot, latest-wins buffer.
type mailbox[T any] struct {
	ch chan T
}

// put replaces any undelivered value with v. Callers must hold the owning
// Value's lock, which makes them the only writer.
func (m *mailbox[T]) put(v T) {
	select {
	case <-m.ch:
	default:
	}
	m.ch <- v
}

// NewValue creates a Value with no current value. Subscribers receive nothing
// until the first Set.
func NewValue[T any]() *Value[T] {
	return &Value[T]{subs: make(map[*mailbox[T]]struct{})}
}

// NewValueOf creates a Value whose current value is initial.
func NewValueOf[T any](initial T) *Value[T] {
	v := NewValue[T]()
	v.current = initial
	v.hasAny = true
	return v
}

// Set stores v as the current value and delivers it to every subscriber.
func (v *Value[T]) Set(val T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.current = val
	v.hasAny = true
	for m := range v.subs {
		m.put(val)
	}
}

// Update replaces the current value with fn applied to it and delivers the
// result to every subscriber. fn receives the zero value if none is set.
// It must not call back into v.
func (v *Value[T]) Update(fn func(T) T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.current = fn(v.current)
	v.hasAny = true
	for m := range v.subs {
		m.put(v.current)
	}
}

// Current returns the current value and whether one has been set.
func (v *Value[T]) Current() (T, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current, v.hasAny
}

// Subscribe returns a channel that first yields the current value, if any,
// and then every later update. The channel is closed once ctx is done.
func (v *Value[T]) Subscribe(ctx context.Context) <-chan T {
	m := &mailbox[T]{ch: make(chan T, 1)}

	v.mu.Lock()
	if v.hasAny {
		m.put(v.current)
	}
	v.subs[m] = struct{}{}
	v.mu.Unlock()

	go func() {
		<-ctx.Done()
		v.mu.Lock()
		delete(v.subs, m)
		close(m.ch)
		v.mu.Unlock()
	}()

	return m.ch
}

// Len returns the number of active subscriptions.
func (v *Value[T]) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.subs)
}
