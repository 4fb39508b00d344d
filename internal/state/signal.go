package state

import "sync"

// Waker asks the consumer to re-evaluate shared state soon. Implementations
// must not block.
type Waker interface {
	Wake()
}

// Signal is a coalescing wake-up: any number of Wake calls between two
// receives collapse into one pending signal. The channel is never closed.
type Signal struct {
	ch chan struct{}
}

// NewSignal returns a ready Signal.
func NewSignal() *Signal {
	return &Signal{ch: make(chan struct{}, 1)}
}

// Wake implements Waker. If a signal is already pending this is a no-op.
func (s *Signal) Wake() {
	select {
	case s.ch <- struct{}{}:
	default:
	}
}

// C returns the receive side.
func (s *Signal) C() <-chan struct{} { return s.ch }

// Flag is a mutex-guarded boolean. Every method is a single critical section.
type Flag struct {
	mu sync.Mutex
	v  bool
}

func (f *Flag) Get() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.v
}

func (f *Flag) Set(v bool) {
	f.mu.Lock()
	f.v = v
	f.mu.Unlock()
}

// Toggle flips the flag and returns the new value.
func (f *Flag) Toggle() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.v = !f.v
	return f.v
}
