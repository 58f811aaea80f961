package actuator

import (
	"time"

	"github.com/rs/zerolog"
)

// Pin is the subset of rpio.Pin used by Relay.
type Pin interface {
	Output()
	High()
	Low()
}

// Relay pulses an active-low relay: the pin idles high and is pulled low for
// the hold time to register a press.
type Relay struct {
	pin     Pin
	hold    time.Duration
	release func() error
	logger  zerolog.Logger

	sleep func(time.Duration)
}

// NewRelay configures pin as an output in its idle (high) state. release is
// called by Close and may be nil.
func NewRelay(pin Pin, hold time.Duration, release func() error, logger zerolog.Logger) *Relay {
	pin.Output()
	pin.High()

	return &Relay{
		pin:     pin,
		hold:    hold,
		release: release,
		logger:  logger,
		sleep:   time.Sleep,
	}
}

// Pulse pulls the pin low for the hold time and returns it high.
func (r *Relay) Pulse() error {
	r.pin.Low()
	r.sleep(r.hold)
	r.pin.High()

	r.logger.Info().Dur("hold", r.hold).Msg("Relay pulsed")
	return nil
}

// Close leaves the pin high and releases the GPIO memory mapping.
func (r *Relay) Close() error {
	r.pin.High()
	if r.release == nil {
		return nil
	}
	return r.release()
}
