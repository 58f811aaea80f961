package shutdown

import (
	"sync"
	"sync/atomic"
)

// Flag is the cooperative cancellation signal shared between the signal
// handler and the control loop. It is the only state the two share.
type Flag struct {
	stopping atomic.Bool
	once     sync.Once
	done     chan struct{}
}

// NewFlag returns an unset flag.
func NewFlag() *Flag {
	return &Flag{done: make(chan struct{})}
}

// Set raises the flag. It reports whether this call was the one that raised it.
func (f *Flag) Set() bool {
	first := f.stopping.CompareAndSwap(false, true)
	f.once.Do(func() { close(f.done) })
	return first
}

// IsSet reports whether shutdown has been signalled.
func (f *Flag) IsSet() bool {
	return f.stopping.Load()
}

// Done is closed once the flag is set, so blocking waits can wake early.
func (f *Flag) Done() <-chan struct{} {
	return f.done
}
