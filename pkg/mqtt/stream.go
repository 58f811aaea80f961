package mqtt

import "sync"

// inbound is a single consumption episode. Paho callbacks deliver into it
// until the link drops, at which point the channel is closed.
type inbound struct {
	ch     chan Message
	done   chan struct{}
	once   sync.Once
	mu     sync.RWMutex
	closed bool
}

func newInbound(size int) *inbound {
	return &inbound{
		ch:   make(chan Message, size),
		done: make(chan struct{}),
	}
}

// deliver blocks until the consumer takes msg or the stream is closed.
func (s *inbound) deliver(msg Message) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false
	}

	select {
	case s.ch <- msg:
		return true
	case <-s.done:
		return false
	}
}

// close ends the stream. Senders blocked in deliver are released through done
// before the channel itself is closed.
func (s *inbound) close() {
	s.once.Do(func() {
		close(s.done)

		s.mu.Lock()
		s.closed = true
		close(s.ch)
		s.mu.Unlock()
	})
}
