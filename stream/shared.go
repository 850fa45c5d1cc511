package stream

import (
	"context"
	"sync"
)

// Producer computes values for a Shared stream. It calls emit for every value
// and must return once ctx is done.
type Producer[T any] func(ctx context.Context, emit func(T))

// Shared multicasts a single run of a Producer to any number of subscribers.
//
// The producer starts with the first subscription. Subscribers that join
// while it runs immediately receive the most recent value. When the last
// subscriber leaves, the run is cancelled and its replayed value discarded;
// the next subscription starts a fresh run.
type Shared[T any] struct {
	produce Producer[T]

	mu     sync.Mutex
	refs   int
	runs   int
	value  *Value[T]
	cancel context.CancelFunc
	done   chan struct{}
}

// NewShared creates a Shared stream backed by produce.
func NewShared[T any](produce Producer[T]) *Shared[T] {
	return &Shared[T]{produce: produce}
}

// Subscribe attaches to the running producer, starting one if needed.
// The returned channel is closed once ctx is done, at which point the
// subscription is released.
func (s *Shared[T]) Subscribe(ctx context.Context) <-chan T {
	s.mu.Lock()
	if s.refs == 0 {
		s.start(ctx)
	}
	s.refs++
	value := s.value
	s.mu.Unlock()

	ch := value.Subscribe(ctx)
	go func() {
		<-ctx.Done()
		s.release()
	}()
	return ch
}

// start launches a new run. The run inherits values from ctx but not its
// cancellation. Callers must hold s.mu.
func (s *Shared[T]) start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	value := NewValue[T]()
	done := make(chan struct{})

	s.value = value
	s.cancel = cancel
	s.done = done
	s.runs++

	go func() {
		defer close(done)
		s.produce(runCtx, value.Set)
	}()
}

func (s *Shared[T]) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refs--
	if s.refs > 0 {
		return
	}
	s.cancel()
	s.value = nil
	s.cancel = nil
}

// Subscribers returns the number of attached subscribers.
func (s *Shared[T]) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refs
}

// Runs returns how many times the producer has been started.
func (s *Shared[T]) Runs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.runs
}

// Wait blocks until the most recently started run has returned or ctx is done.
func (s *Shared[T]) Wait(ctx context.Context) error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
