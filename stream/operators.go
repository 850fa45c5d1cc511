package stream

import (
	"context"
	"time"
)

// send delivers v on out unless ctx is done first.
func send[T any](ctx context.Context, out chan<- T, v T) bool {
	select {
	case out <- v:
		return true
	case <-ctx.Done():
		return false
	}
}

// Map applies f to every value from in.
func Map[T, U any](ctx context.Context, in <-chan T, f func(T) U) <-chan U {
	out := make(chan U)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-in:
				if !ok {
					return
				}
				if !send(ctx, out, f(v)) {
					return
				}
			}
		}
	}()
	return out
}

// Debounce emits a value from in only after interval has passed without a
// newer value arriving. Superseded values are never emitted. A pending value
// is flushed when in is closed.
func Debounce[T any](ctx context.Context, in <-chan T, interval time.Duration) <-chan T {
	out := make(chan T)
	go func() {
		defer close(out)

		timer := time.NewTimer(interval)
		timer.Stop()
		defer timer.Stop()

		var (
			pending T
			waiting bool
		)
		for {
			var fire <-chan time.Time
			if waiting {
				fire = timer.C
			}

			select {
			case <-ctx.Done():
				return
			case v, ok := <-in:
				if !ok {
					if waiting {
						send(ctx, out, pending)
					}
					return
				}
				pending = v
				waiting = true
				timer.Reset(interval)
			case <-fire:
				waiting = false
				if !send(ctx, out, pending) {
					return
				}
			}
		}
	}()
	return out
}

// Distinct drops every value equal to the value emitted just before it.
func Distinct[T comparable](ctx context.Context, in <-chan T) <-chan T {
	out := make(chan T)
	go func() {
		defer close(out)
		var (
			last    T
			started bool
		)
		for {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-in:
				if !ok {
					return
				}
				if started && v == last {
					continue
				}
				last = v
				started = true
				if !send(ctx, out, v) {
					return
				}
			}
		}
	}()
	return out
}

// CombineLatest emits f(a, b) with the latest values of both inputs whenever
// either input produces a value, once each has produced at least one.
// The output is closed when both inputs are closed.
func CombineLatest[A, B, R any](ctx context.Context, as <-chan A, bs <-chan B, f func(A, B) R) <-chan R {
	out := make(chan R)
	go func() {
		defer close(out)
		var (
			a     A
			b     B
			haveA bool
			haveB bool
		)
		for as != nil || bs != nil {
			select {
			case <-ctx.Done():
				return
			case v, ok := <-as:
				if !ok {
					as = nil
					continue
				}
				a, haveA = v, true
			case v, ok := <-bs:
				if !ok {
					bs = nil
					continue
				}
				b, haveB = v, true
			}
			if haveA && haveB {
				if !send(ctx, out, f(a, b)) {
					return
				}
			}
		}
	}()
	return out
}
