package actuator

import "github.com/rs/zerolog"

// Noop stands in for the relay on hosts without GPIO access.
type Noop struct {
	logger zerolog.Logger
}

// NewNoop creates a Noop actuator.
func NewNoop(logger zerolog.Logger) *Noop {
	return &Noop{logger: logger}
}

// Pulse logs the press that would have been sent to the relay.
func (n *Noop) Pulse() error {
	n.logger.Info().Msg("Button pressed (no GPIO on this platform, relay not driven)")
	return nil
}

func (n *Noop) Close() error {
	return nil
}
