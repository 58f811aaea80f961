package services

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/benmeehan/relay-agent/internal/models"
	"github.com/benmeehan/relay-agent/pkg/mqtt"
)

// DoorServiceName is the registry key of the door-state service.
const DoorServiceName = "door"

// DoorService tracks the door position reported on the retained door-state
// topic. The position is informational: presses trigger the relay whatever
// state the door is in.
type DoorService struct {
	Topic  string
	QOS    byte
	Logger zerolog.Logger

	mu    sync.RWMutex
	state models.DoorState
}

// NewDoorService initializes a new DoorService in the Unknown state.
func NewDoorService(topic string, qos byte, logger zerolog.Logger) *DoorService {
	return &DoorService{
		Topic:  topic,
		QOS:    qos,
		Logger: logger.With().Str("service", DoorServiceName).Logger(),
		state:  models.DoorUnknown,
	}
}

func (d *DoorService) Name() string {
	return DoorServiceName
}

func (d *DoorService) Subscriptions() map[string]byte {
	return map[string]byte{d.Topic: d.QOS}
}

func (d *DoorService) Start() error {
	d.Logger.Info().Str("topic", d.Topic).Msg("DoorService started successfully")
	return nil
}

func (d *DoorService) Stop() error {
	d.Logger.Info().Str("state", d.State().String()).Msg("DoorService stopped successfully")
	return nil
}

// HandleMessage records the reported door state. Unrecognised values are
// stored as Unknown.
func (d *DoorService) HandleMessage(msg mqtt.Message) bool {
	if msg.Topic != d.Topic {
		return false
	}

	payload := msg.PayloadString()
	state, ok := models.ParseDoorState(payload)
	if !ok {
		d.Logger.Warn().Str("payload", payload).Msg("Invalid door state, assuming Unknown")
	}

	d.mu.Lock()
	previous := d.state
	d.state = state
	d.mu.Unlock()

	if previous != state {
		d.Logger.Info().Str("from", previous.String()).Str("to", state.String()).Msg("Door state changed")
	}
	return true
}

// State returns the last reported door state.
func (d *DoorService) State() models.DoorState {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}
