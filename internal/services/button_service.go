package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/benmeehan/relay-agent/internal/constants"
	"github.com/benmeehan/relay-agent/internal/debounce"
	"github.com/benmeehan/relay-agent/pkg/mqtt"
)

// ButtonServiceName is the registry key of the button service.
const ButtonServiceName = "button"

// ButtonService turns "1" presses on the button topic into relay pulses and
// resets the topic to "0" after every press.
type ButtonService struct {
	Topic     string
	QOS       byte
	Debouncer *debounce.Debouncer
	Publisher Publisher
	Logger    zerolog.Logger

	// Clock supplies the press instant handed to the debouncer.
	Clock func() time.Time

	running bool
}

// NewButtonService initializes a new ButtonService.
func NewButtonService(topic string, qos byte, debouncer *debounce.Debouncer, publisher Publisher, logger zerolog.Logger) *ButtonService {
	return &ButtonService{
		Topic:     topic,
		QOS:       qos,
		Debouncer: debouncer,
		Publisher: publisher,
		Logger:    logger.With().Str("service", ButtonServiceName).Logger(),
		Clock:     time.Now,
	}
}

func (b *ButtonService) Name() string {
	return ButtonServiceName
}

func (b *ButtonService) Subscriptions() map[string]byte {
	return map[string]byte{b.Topic: b.QOS}
}

// Start resets the button topic to its idle state so a press left over from a
// previous session is not replayed.
func (b *ButtonService) Start() error {
	if b.running {
		return errors.New("button service is already running")
	}

	msg := mqtt.NewMessage(b.Topic, constants.PayloadOff, constants.ButtonInitQOS, false)
	if err := b.Publisher.Publish(msg); err != nil {
		return fmt.Errorf("failed to reset button topic %s: %w", b.Topic, err)
	}

	b.running = true
	b.Logger.Info().Str("topic", b.Topic).Msg("ButtonService started successfully")
	return nil
}

func (b *ButtonService) Stop() error {
	if !b.running {
		return errors.New("button service is not running")
	}
	b.running = false
	b.Logger.Info().Msg("ButtonService stopped successfully")
	return nil
}

// HandleMessage pulses the relay for a "1" and always answers it with a "0",
// whether or not the debouncer suppressed the pulse. A "0" is our own reset
// echoing back and is ignored.
func (b *ButtonService) HandleMessage(msg mqtt.Message) bool {
	if msg.Topic != b.Topic {
		return false
	}

	switch msg.PayloadString() {
	case constants.PayloadOn:
		result := b.Debouncer.TryTrigger(b.Clock())
		b.Logger.Debug().Str("result", result.String()).Msg("Button command processed")

		reset := mqtt.NewMessage(b.Topic, constants.PayloadOff, b.QOS, false)
		if err := b.Publisher.Publish(reset); err != nil {
			b.Logger.Error().Err(err).Str("topic", b.Topic).Msg("Error resetting button to zero state")
		}
		return true
	case constants.PayloadOff:
		return true
	default:
		return false
	}
}
