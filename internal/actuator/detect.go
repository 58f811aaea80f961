package actuator

import (
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/host"
	"github.com/stianeikeland/go-rpio"
)

// Detector decides whether the relay can be driven on this host.
type Detector struct {
	KernelArch func() (string, error)
	OpenGPIO   func() error
	CloseGPIO  func() error
	NewPin     func(number int) Pin
}

// DefaultDetector probes the real host and GPIO memory.
func DefaultDetector() Detector {
	return Detector{
		KernelArch: host.KernelArch,
		OpenGPIO:   rpio.Open,
		CloseGPIO:  rpio.Close,
		NewPin:     func(number int) Pin { return rpio.Pin(number) },
	}
}

// Detect returns a Relay on pin when the host is an ARM board with accessible
// GPIO, and a Noop actuator otherwise.
func (d Detector) Detect(pin int, hold time.Duration, logger zerolog.Logger) Actuator {
	logger = logger.With().Str("component", "actuator").Logger()

	arch, err := d.KernelArch()
	if err != nil {
		logger.Warn().Err(err).Msg("Unable to determine kernel architecture, running without GPIO")
		return NewNoop(logger)
	}

	if !IsARM(arch) {
		logger.Info().Str("arch", arch).Msg("No GPIO on this architecture, relay actions will only be logged")
		return NewNoop(logger)
	}

	if err := d.OpenGPIO(); err != nil {
		logger.Warn().Err(err).Str("arch", arch).Msg("Unable to open gpio, continuing but running in test mode")
		return NewNoop(logger)
	}

	logger.Info().Str("arch", arch).Int("pin", pin).Msg("Driving relay over GPIO")
	return NewRelay(d.NewPin(pin), hold, d.CloseGPIO, logger)
}

// IsARM reports whether a kernel architecture string names an ARM CPU.
func IsARM(arch string) bool {
	arch = strings.ToLower(arch)
	return strings.HasPrefix(arch, "arm") || strings.HasPrefix(arch, "aarch64")
}
