// Package shutdown coordinates interrupt-driven termination of the agent.
package shutdown

import (
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/benmeehan/relay-agent/internal/constants"
	"github.com/benmeehan/relay-agent/pkg/mqtt"
)

// Transport is the part of the MQTT transport the coordinator may touch.
// Implementations must be safe for use from the signal goroutine.
type Transport interface {
	Publish(msg mqtt.Message) error
	Disconnect(timeout time.Duration) error
}

// Coordinator publishes the offline status, disconnects within a bounded
// time and terminates the process when an interrupt arrives.
type Coordinator struct {
	flag      *Flag
	transport Transport
	offline   mqtt.Message
	timeout   time.Duration
	logger    zerolog.Logger

	// Exit terminates the process. It is os.Exit outside of tests.
	Exit func(code int)

	once   sync.Once
	parked chan struct{}
}

// NewCoordinator creates a Coordinator. offline is published before the
// disconnect, which is bounded by timeout.
func NewCoordinator(flag *Flag, transport Transport, offline mqtt.Message, timeout time.Duration, logger zerolog.Logger) *Coordinator {
	return &Coordinator{
		flag:      flag,
		transport: transport,
		offline:   offline,
		timeout:   timeout,
		logger:    logger.With().Str("component", "shutdown").Logger(),
		Exit:      os.Exit,
		parked:    make(chan struct{}),
	}
}

// Listen registers the coordinator for the given signals. It must be called once.
func (c *Coordinator) Listen(signals ...os.Signal) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, signals...)
	go c.Watch(ch)
}

// Watch runs the shutdown sequence when the first signal arrives on ch.
func (c *Coordinator) Watch(ch <-chan os.Signal) {
	sig, ok := <-ch
	if !ok {
		return
	}
	c.logger.Info().Str("signal", sig.String()).Msg("Signal received, disconnecting")
	c.Shutdown()
}

// Shutdown sets the shutdown flag, publishes the offline status best effort,
// disconnects and exits. Only the first call has any effect.
func (c *Coordinator) Shutdown() {
	c.once.Do(func() {
		defer close(c.parked)

		c.flag.Set()

		if err := c.transport.Publish(c.offline); err != nil {
			c.logger.Warn().Err(err).Str("topic", c.offline.Topic).Msg("Failed to publish offline status, continuing shutdown")
		}

		if err := c.transport.Disconnect(c.timeout); err != nil {
			c.logger.Error().Err(err).Dur("timeout", c.timeout).Msg("Error when disconnecting, unclean shutdown")
			c.Exit(constants.ExitDisconnectFailure)
			return
		}

		c.logger.Info().Msg("Disconnected, exiting")
		c.Exit(constants.ExitOK)
	})
}

// Wait parks the caller until the shutdown sequence has finished. Outside of
// tests the process exits inside Shutdown, so Wait never returns.
func (c *Coordinator) Wait() {
	<-c.parked
}
