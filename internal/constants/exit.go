package constants

// Process exit codes.
const (
	// ExitOK is used after an interrupt-driven shutdown completed cleanly.
	ExitOK = 0
	// ExitConnectFailure is used when the initial connection (or startup) fails.
	ExitConnectFailure = 1
	// ExitReconnectExhausted is used when the reconnect attempt budget runs out.
	ExitReconnectExhausted = 2
	// ExitDisconnectFailure is used when the bounded disconnect during shutdown fails.
	ExitDisconnectFailure = 3
)
