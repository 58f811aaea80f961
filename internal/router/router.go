// Package router consumes the inbound message stream, hands each message to
// the registered services and drives reconnection when the stream ends.
package router

import (
	"context"
	"sort"

	"github.com/rs/zerolog"

	"github.com/benmeehan/relay-agent/internal/models"
	"github.com/benmeehan/relay-agent/internal/reconnect"
	"github.com/benmeehan/relay-agent/internal/shutdown"
	"github.com/benmeehan/relay-agent/pkg/mqtt"
)

// Transport is the part of the MQTT transport the router consumes from.
type Transport interface {
	StartConsuming() <-chan mqtt.Message
	Subscribe(topic string, qos byte) error
}

// Dispatcher routes messages to services.
type Dispatcher interface {
	Dispatch(msg mqtt.Message) bool
	Subscriptions() map[string]byte
}

// Reconnector restores a dropped connection.
type Reconnector interface {
	Run(ctx context.Context) (reconnect.Outcome, error)
}

// Router is the control loop. It is not safe for concurrent use.
type Router struct {
	transport   Transport
	dispatcher  Dispatcher
	reconnector Reconnector
	flag        *shutdown.Flag
	logger      zerolog.Logger

	// OnStateChange, when set, is told about every connection state transition.
	OnStateChange func(models.ConnectionState)
}

// New creates a Router.
func New(transport Transport, dispatcher Dispatcher, reconnector Reconnector, flag *shutdown.Flag, logger zerolog.Logger) *Router {
	return &Router{
		transport:   transport,
		dispatcher:  dispatcher,
		reconnector: reconnector,
		flag:        flag,
		logger:      logger.With().Str("component", "router").Logger(),
	}
}

// Run consumes messages until shutdown is signalled, ctx is cancelled or
// reconnection gives up. Only the last case returns an error.
func (r *Router) Run(ctx context.Context) error {
	for {
		if r.stopping(ctx) {
			return nil
		}

		stream := r.transport.StartConsuming()
		r.subscribe()
		r.setState(models.StateConnected)

		if !r.consume(ctx, stream) {
			return nil
		}

		r.setState(models.StateReconnecting)
		outcome, err := r.reconnector.Run(ctx)
		switch outcome {
		case reconnect.Success:
			continue
		case reconnect.Aborted:
			return nil
		default:
			return err
		}
	}
}

// subscribe registers every service topic in a stable order. A failed
// subscription is logged; if the link is down the transport has already
// closed the stream and the reconnect path takes over.
func (r *Router) subscribe() {
	subs := r.dispatcher.Subscriptions()
	topics := make([]string, 0, len(subs))
	for topic := range subs {
		topics = append(topics, topic)
	}
	sort.Strings(topics)

	for _, topic := range topics {
		if err := r.transport.Subscribe(topic, subs[topic]); err != nil {
			r.logger.Error().Err(err).Str("topic", topic).Msg("Failed to subscribe")
			continue
		}
		r.logger.Debug().Str("topic", topic).Uint8("qos", subs[topic]).Msg("Subscribed")
	}
}

// consume processes stream until it closes, returning true, or until the
// agent is stopping, returning false.
func (r *Router) consume(ctx context.Context, stream <-chan mqtt.Message) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case <-r.flag.Done():
			return false
		case msg, ok := <-stream:
			if !ok {
				return true
			}
			r.handle(msg)
			if r.stopping(ctx) {
				return false
			}
		}
	}
}

func (r *Router) handle(msg mqtt.Message) {
	r.logger.Debug().
		Str("topic", msg.Topic).
		Str("payload", msg.PayloadString()).
		Uint8("qos", msg.QoS).
		Msg("Received message")

	if !r.dispatcher.Dispatch(msg) {
		r.logger.Info().
			Str("topic", msg.Topic).
			Str("payload", msg.PayloadString()).
			Msg("Unknown payload on topic")
	}
}

func (r *Router) stopping(ctx context.Context) bool {
	return r.flag.IsSet() || ctx.Err() != nil
}

func (r *Router) setState(state models.ConnectionState) {
	if r.OnStateChange != nil {
		r.OnStateChange(state)
	}
}
