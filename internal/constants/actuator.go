package constants

import "time"

const (
	// DefaultRelayPin is the BCM number of the relay driving the door opener.
	DefaultRelayPin = 23
	// DefaultPulse is how long the relay is held low; the relay needs this long to react.
	DefaultPulse = 100 * time.Millisecond
	// DefaultDebounceWindow suppresses accidental double clicks.
	DefaultDebounceWindow = time.Second
)

// Reconnect policy defaults: 120 attempts 10 seconds apart.
const (
	DefaultReconnectAttempts = 120
	DefaultReconnectDelay    = 10 * time.Second
)
