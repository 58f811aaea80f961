// Package reconnect re-establishes a dropped broker connection.
//
// The policy uses a fixed delay between attempts rather than exponential
// backoff: the broker sits on the local network, and 120 attempts ten seconds
// apart bound the total wait to twenty minutes.
package reconnect

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/benmeehan/relay-agent/internal/liveness"
	"github.com/benmeehan/relay-agent/internal/shutdown"
	"github.com/benmeehan/relay-agent/pkg/mqtt"
)

// ErrAttemptsExhausted is returned when every attempt in the budget failed.
var ErrAttemptsExhausted = errors.New("unable to reconnect, giving up")

// Outcome is the result of a reconnect sequence.
type Outcome int

const (
	// Success means the link is back and online status was re-announced.
	Success Outcome = iota
	// Aborted means shutdown was signalled; the caller should stop.
	Aborted
	// Exhausted means the attempt budget ran out.
	Exhausted
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case Aborted:
		return "aborted"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Transport is the part of the MQTT transport used while reconnecting.
type Transport interface {
	Reconnect() error
	Publish(msg mqtt.Message) error
}

// Policy drives reconnect attempts. A Policy is not safe for concurrent use;
// only the control loop runs it.
type Policy struct {
	transport   Transport
	liveness    liveness.Protocol
	flag        *shutdown.Flag
	maxAttempts int
	delay       time.Duration
	logger      zerolog.Logger

	sleep func(ctx context.Context, d time.Duration) bool
}

// NewPolicy creates a Policy allowing maxAttempts attempts spaced by delay.
func NewPolicy(transport Transport, proto liveness.Protocol, flag *shutdown.Flag, maxAttempts int, delay time.Duration, logger zerolog.Logger) *Policy {
	p := &Policy{
		transport:   transport,
		liveness:    proto,
		flag:        flag,
		maxAttempts: maxAttempts,
		delay:       delay,
		logger:      logger.With().Str("component", "reconnect").Logger(),
	}
	p.sleep = p.interruptibleSleep
	return p
}

// Run attempts to reconnect until it succeeds, the budget is spent, or
// shutdown is signalled. The attempt counter starts from zero on every call.
func (p *Policy) Run(ctx context.Context) (Outcome, error) {
	if p.stopping(ctx) {
		return Aborted, nil
	}

	p.logger.Warn().Msg("Lost connection, reconnecting to the MQTT server")

	attempts := 0
	for {
		if p.stopping(ctx) {
			p.logger.Info().Int("attempt", attempts).Msg("Shutdown signalled, abandoning reconnect")
			return Aborted, nil
		}

		attempts++
		err := p.transport.Reconnect()
		if err == nil {
			break
		}

		if attempts >= p.maxAttempts {
			p.logger.Error().Err(err).Int("attempt", attempts).Msg("Unable to reconnect, giving up")
			return Exhausted, fmt.Errorf("%w after %d attempts: %w", ErrAttemptsExhausted, attempts, err)
		}

		p.logger.Warn().Err(err).Int("attempt", attempts).Dur("delay", p.delay).Msg("Unable to reconnect to MQTT server, sleeping")
		if !p.sleep(ctx, p.delay) {
			return Aborted, nil
		}
	}

	if err := p.transport.Publish(p.liveness.OnlineMessage()); err != nil {
		p.logger.Error().Err(err).Str("topic", p.liveness.Topic()).Msg("Failed to publish online status after reconnect")
	}

	p.logger.Info().Int("attempt", attempts).Msg("Successfully reconnected to MQTT server")
	return Success, nil
}

func (p *Policy) stopping(ctx context.Context) bool {
	return p.flag.IsSet() || ctx.Err() != nil
}

// interruptibleSleep waits for d and reports false if shutdown cut it short.
func (p *Policy) interruptibleSleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-p.flag.Done():
		return false
	case <-ctx.Done():
		return false
	}
}
