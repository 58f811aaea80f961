// Package actuator drives the relay wired to the door opener.
//
// Hardware access is optional: on hosts without GPIO the agent runs with a
// Noop actuator that only logs. Detect picks the implementation at startup.
package actuator

// Actuator pulses the physical relay.
type Actuator interface {
	// Pulse drives the relay for one press. It blocks for the hold time.
	Pulse() error

	// Close returns the relay to its idle state and releases hardware.
	Close() error
}
