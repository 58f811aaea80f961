// Package engine runs the agent: one connection lifecycle shared by every
// deployment variant, with the variant expressed through registered services.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/benmeehan/relay-agent/internal/constants"
	"github.com/benmeehan/relay-agent/internal/liveness"
	"github.com/benmeehan/relay-agent/internal/models"
	"github.com/benmeehan/relay-agent/internal/reconnect"
	"github.com/benmeehan/relay-agent/internal/router"
	"github.com/benmeehan/relay-agent/internal/shutdown"
	"github.com/benmeehan/relay-agent/pkg/mqtt"
)

var (
	// ErrInitialConnect is returned when the first connection cannot be made.
	ErrInitialConnect = errors.New("unable to connect")
	// ErrStartup is returned when the agent connected but could not start.
	ErrStartup = errors.New("startup failed")
)

// Services is the set of plug-in services driven by the engine.
type Services interface {
	router.Dispatcher
	StartServices() error
	StopServices() error
}

// Engine owns the connection lifecycle.
type Engine struct {
	transport         mqtt.Transport
	services          Services
	liveness          liveness.Protocol
	flag              *shutdown.Flag
	policy            router.Reconnector
	disconnectTimeout time.Duration
	logger            zerolog.Logger

	state atomic.Int32
}

// Options carries the tunables of the engine.
type Options struct {
	MaxAttempts       int
	ReconnectDelay    time.Duration
	DisconnectTimeout time.Duration
}

// New creates an Engine. The reconnect policy is built from opts.
func New(transport mqtt.Transport, services Services, proto liveness.Protocol, flag *shutdown.Flag, opts Options, logger zerolog.Logger) *Engine {
	return &Engine{
		transport:         transport,
		services:          services,
		liveness:          proto,
		flag:              flag,
		policy:            reconnect.NewPolicy(transport, proto, flag, opts.MaxAttempts, opts.ReconnectDelay, logger),
		disconnectTimeout: opts.DisconnectTimeout,
		logger:            logger.With().Str("component", "engine").Logger(),
	}
}

// State returns the current connection state.
func (e *Engine) State() models.ConnectionState {
	return models.ConnectionState(e.state.Load())
}

func (e *Engine) setState(s models.ConnectionState) {
	if prev := models.ConnectionState(e.state.Swap(int32(s))); prev != s {
		e.logger.Debug().Str("from", prev.String()).Str("to", s.String()).Msg("Connection state changed")
	}
}

// Run connects, announces the agent online, starts the services and runs the
// control loop. It returns nil when the loop ended because of shutdown or ctx
// cancellation. When ctx is cancelled without a signalled shutdown, Run
// performs the offline announcement and disconnect itself.
func (e *Engine) Run(ctx context.Context) error {
	e.setState(models.StateConnecting)
	e.logger.Info().Msg("Connecting to the MQTT server...")

	if err := e.transport.Connect(); err != nil {
		e.setState(models.StateTerminated)
		return fmt.Errorf("%w: %w", ErrInitialConnect, err)
	}
	e.logger.Info().Msg("Connected to MQTT server")

	if err := e.transport.Publish(e.liveness.OnlineMessage()); err != nil {
		e.setState(models.StateTerminated)
		return fmt.Errorf("%w: publishing online status: %w", ErrStartup, err)
	}

	if err := e.services.StartServices(); err != nil {
		e.setState(models.StateTerminated)
		return fmt.Errorf("%w: %w", ErrStartup, err)
	}
	e.logger.Info().Msg("Finished initializing")

	r := router.New(e.transport, e.services, e.policy, e.flag, e.logger)
	r.OnStateChange = e.setState

	err := r.Run(ctx)

	e.setState(models.StateStopping)
	if stopErr := e.services.StopServices(); stopErr != nil {
		e.logger.Warn().Err(stopErr).Msg("Some services did not stop cleanly")
	}

	if err == nil && !e.flag.IsSet() {
		e.disconnect()
	}

	e.setState(models.StateTerminated)
	return err
}

// disconnect leaves the bus in the offline state when the loop was stopped by
// its context rather than by the shutdown coordinator.
func (e *Engine) disconnect() {
	if err := e.transport.Publish(e.liveness.OfflineMessage()); err != nil {
		e.logger.Warn().Err(err).Msg("Failed to publish offline status")
	}
	if err := e.transport.Disconnect(e.disconnectTimeout); err != nil {
		e.logger.Error().Err(err).Msg("Error when disconnecting")
	}
}

// ExitCode maps the result of Run to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return constants.ExitOK
	case errors.Is(err, reconnect.ErrAttemptsExhausted):
		return constants.ExitReconnectExhausted
	default:
		return constants.ExitConnectFailure
	}
}
