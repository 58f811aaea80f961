package actuator

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePin records every level change.
type fakePin struct {
	events []string
}

func (p *fakePin) Output() { p.events = append(p.events, "output") }
func (p *fakePin) High()   { p.events = append(p.events, "high") }
func (p *fakePin) Low()    { p.events = append(p.events, "low") }

func TestNewRelay_IdlesHigh(t *testing.T) {
	pin := &fakePin{}

	NewRelay(pin, 100*time.Millisecond, nil, zerolog.Nop())

	assert.Equal(t, []string{"output", "high"}, pin.events)
}

func TestRelay_Pulse_LowHoldHigh(t *testing.T) {
	pin := &fakePin{}
	r := NewRelay(pin, 100*time.Millisecond, nil, zerolog.Nop())
	pin.events = nil

	var held []time.Duration
	r.sleep = func(d time.Duration) {
		held = append(held, d)
		pin.events = append(pin.events, "hold")
	}

	require.NoError(t, r.Pulse())

	assert.Equal(t, []string{"low", "hold", "high"}, pin.events)
	assert.Equal(t, []time.Duration{100 * time.Millisecond}, held)
}

func TestRelay_Close_ReleasesGPIO(t *testing.T) {
	pin := &fakePin{}
	released := false
	r := NewRelay(pin, time.Millisecond, func() error {
		released = true
		return nil
	}, zerolog.Nop())

	require.NoError(t, r.Close())

	assert.True(t, released)
	assert.Equal(t, "high", pin.events[len(pin.events)-1])
}

func TestNoop_Pulse(t *testing.T) {
	n := NewNoop(zerolog.Nop())

	assert.NoError(t, n.Pulse())
	assert.NoError(t, n.Close())
}

func TestIsARM(t *testing.T) {
	for arch, want := range map[string]bool{
		"armv7l":  true,
		"armv6l":  true,
		"aarch64": true,
		"arm64":   true,
		"x86_64":  false,
		"i686":    false,
		"":        false,
	} {
		assert.Equal(t, want, IsARM(arch), arch)
	}
}

func testDetector(arch string, archErr, openErr error) (Detector, *fakePin) {
	pin := &fakePin{}
	return Detector{
		KernelArch: func() (string, error) { return arch, archErr },
		OpenGPIO:   func() error { return openErr },
		CloseGPIO:  func() error { return nil },
		NewPin:     func(int) Pin { return pin },
	}, pin
}

func TestDetector_Detect(t *testing.T) {
	t.Run("arm with gpio", func(t *testing.T) {
		d, pin := testDetector("armv7l", nil, nil)
		act := d.Detect(23, 100*time.Millisecond, zerolog.Nop())
		assert.IsType(t, &Relay{}, act)
		assert.Equal(t, []string{"output", "high"}, pin.events)
	})

	t.Run("arm without gpio access", func(t *testing.T) {
		d, pin := testDetector("armv7l", nil, errors.New("permission denied"))
		assert.IsType(t, &Noop{}, d.Detect(23, 100*time.Millisecond, zerolog.Nop()))
		assert.Empty(t, pin.events)
	})

	t.Run("x86", func(t *testing.T) {
		d, _ := testDetector("x86_64", nil, nil)
		assert.IsType(t, &Noop{}, d.Detect(23, 100*time.Millisecond, zerolog.Nop()))
	})

	t.Run("unknown arch", func(t *testing.T) {
		d, _ := testDetector("", errors.New("uname failed"), nil)
		assert.IsType(t, &Noop{}, d.Detect(23, 100*time.Millisecond, zerolog.Nop()))
	})
}
