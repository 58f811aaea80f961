// Package debounce turns bursts of trigger commands into single relay pulses.
package debounce

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/benmeehan/relay-agent/internal/actuator"
)

// Result reports what TryTrigger did with a request.
type Result int

const (
	// Fired means the actuator was pulsed.
	Fired Result = iota
	// Suppressed means the request fell inside the debounce window.
	Suppressed
)

func (r Result) String() string {
	if r == Fired {
		return "fired"
	}
	return "suppressed"
}

// Debouncer owns the last accepted trigger instant. It is used only from the
// control loop and is not safe for concurrent use.
type Debouncer struct {
	window   time.Duration
	last     time.Time
	actuator actuator.Actuator
	logger   zerolog.Logger
}

// New creates a Debouncer that accepts at most one trigger per window.
func New(window time.Duration, act actuator.Actuator, logger zerolog.Logger) *Debouncer {
	return &Debouncer{
		window:   window,
		actuator: act,
		logger:   logger.With().Str("component", "debounce").Logger(),
	}
}

// TryTrigger pulses the actuator if more than the window has elapsed since the
// last accepted trigger. A zero last instant, or a clock that moved backwards,
// always allows the pulse.
func (d *Debouncer) TryTrigger(now time.Time) Result {
	if !d.last.IsZero() {
		elapsed := now.Sub(d.last)
		switch {
		case elapsed < 0:
			d.logger.Warn().Time("last", d.last).Time("now", now).Msg("System time moved backwards, allowing trigger")
		case elapsed <= d.window:
			d.logger.Debug().Dur("elapsed", elapsed).Msg("Trigger suppressed")
			return Suppressed
		}
	}

	d.logger.Info().Msg("Button pressed")
	if err := d.actuator.Pulse(); err != nil {
		d.logger.Error().Err(err).Msg("Failed to pulse relay")
	}
	d.last = now
	return Fired
}

// LastAccepted returns the instant of the last accepted trigger.
func (d *Debouncer) LastAccepted() time.Time {
	return d.last
}
