package mqtt

import (
	"fmt"
	"sync"
	"time"

	MQTT "github.com/eclipse/paho.mqtt.golang"
	cmap "github.com/orcaman/concurrent-map/v2"
	"github.com/rs/zerolog"
)

// MQTTClient defines the subset of the paho client used by MqttService.
type MQTTClient interface {
	Connect() MQTT.Token
	IsConnected() bool
	Publish(topic string, qos byte, retained bool, payload interface{}) MQTT.Token
	Subscribe(topic string, qos byte, callback MQTT.MessageHandler) MQTT.Token
	Disconnect(quiesce uint)
}

// MqttService provides the Transport on top of a paho client.
//
// Inbound messages from every subscription are funnelled into the stream
// returned by StartConsuming. Losing the connection closes that stream, and
// until the next successful connect every new stream starts out closed.
type MqttService struct {
	client MQTTClient
	config ConnectionConfig
	logger zerolog.Logger

	// subscriptions maps topic to QoS; a topic is never tracked twice.
	subscriptions cmap.ConcurrentMap[string, byte]

	mu     sync.Mutex
	stream *inbound
	// lost is set when paho reports the link down and cleared by a successful connect.
	lost bool

	publishTimeout  time.Duration
	disconnectGrace time.Duration
}

// NewMqttService creates a paho client configured from cfg, including the last will.
func NewMqttService(cfg ConnectionConfig, logger zerolog.Logger) *MqttService {
	s := newService(cfg, logger)

	opts := BuildClientOptions(cfg)
	opts.SetConnectionLostHandler(func(_ MQTT.Client, err error) {
		s.handleConnectionLost(err)
	})
	opts.SetOnConnectHandler(func(_ MQTT.Client) {
		s.logger.Info().Str("broker", cfg.Broker).Msg("Connected to MQTT server")
	})

	s.client = MQTT.NewClient(opts)
	return s
}

// NewMqttServiceWithClient wraps an existing client. The caller is
// responsible for wiring the client's connection-lost notifications to
// ConnectionLost.
func NewMqttServiceWithClient(client MQTTClient, cfg ConnectionConfig, logger zerolog.Logger) *MqttService {
	s := newService(cfg, logger)
	s.client = client
	return s
}

func newService(cfg ConnectionConfig, logger zerolog.Logger) *MqttService {
	return &MqttService{
		config:          cfg,
		logger:          logger.With().Str("component", "mqtt").Logger(),
		subscriptions:   cmap.New[byte](),
		publishTimeout:  defaultPublishTimeout,
		disconnectGrace: defaultDisconnectGrace,
	}
}

// Connect connects to the MQTT broker.
func (s *MqttService) Connect() error {
	s.logger.Info().Str("broker", s.config.Broker).Str("client_id", s.config.ClientID).Msg("Connecting to the MQTT server")
	return s.connect()
}

// Reconnect re-establishes the session after the link dropped.
func (s *MqttService) Reconnect() error {
	if s.client.IsConnected() {
		return nil
	}
	return s.connect()
}

func (s *MqttService) connect() error {
	timeout := s.config.ConnectTimeout
	if timeout <= 0 {
		timeout = DefaultConnectTimeout
	}

	token := s.client.Connect()
	if !token.WaitTimeout(timeout) {
		return fmt.Errorf("%w: timeout after %v", ErrConnectionFailed, timeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	s.mu.Lock()
	s.lost = false
	s.mu.Unlock()
	return nil
}

func (s *MqttService) linkLost() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lost
}

// Publish sends msg to the broker.
func (s *MqttService) Publish(msg Message) error {
	if msg.Topic == "" {
		return ErrInvalidTopic
	}
	if msg.QoS > maxQoS {
		return ErrInvalidQoS
	}
	if s.linkLost() {
		return ErrNotConnected
	}

	token := s.client.Publish(msg.Topic, msg.QoS, msg.Retained, msg.Payload)
	if !token.WaitTimeout(s.publishTimeout) {
		return fmt.Errorf("%w: timeout after %v", ErrPublishFailed, s.publishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}

	s.logger.Debug().Str("topic", msg.Topic).Str("payload", msg.PayloadString()).Uint8("qos", msg.QoS).Bool("retained", msg.Retained).Msg("Published message")
	return nil
}

// Subscribe subscribes to topic and routes its messages to the current stream.
func (s *MqttService) Subscribe(topic string, qos byte) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	if s.linkLost() {
		return ErrNotConnected
	}

	s.subscriptions.Set(topic, qos)

	token := s.client.Subscribe(topic, qos, s.onMessage)
	if !token.WaitTimeout(s.publishTimeout) {
		s.subscriptions.Remove(topic)
		return fmt.Errorf("%w: timeout after %v", ErrSubscribeFailed, s.publishTimeout)
	}
	if err := token.Error(); err != nil {
		s.subscriptions.Remove(topic)
		return fmt.Errorf("%w: %w", ErrSubscribeFailed, err)
	}

	s.logger.Info().Str("topic", topic).Uint8("qos", qos).Msg("Subscribed to topic")
	return nil
}

// Subscriptions returns the topics currently tracked.
func (s *MqttService) Subscriptions() []string {
	return s.subscriptions.Keys()
}

// StartConsuming begins a new consumption episode. Any previous stream is
// closed first so that only one consumer is ever active. If the link dropped
// since the last successful connect, the returned stream is already closed:
// paho reports each drop only once, and it may have fired before this call.
func (s *MqttService) StartConsuming() <-chan Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stream != nil {
		s.stream.close()
	}
	s.stream = newInbound(inboundBuffer)
	if s.lost {
		s.stream.close()
	}
	return s.stream.ch
}

// ConnectionLost ends the current stream. It is wired as the paho
// connection-lost handler.
func (s *MqttService) ConnectionLost(err error) {
	s.handleConnectionLost(err)
}

func (s *MqttService) handleConnectionLost(err error) {
	s.logger.Warn().Err(err).Msg("Lost connection to MQTT server")

	s.mu.Lock()
	s.lost = true
	s.mu.Unlock()

	s.closeStream()
}

func (s *MqttService) closeStream() {
	s.mu.Lock()
	stream := s.stream
	s.mu.Unlock()

	if stream != nil {
		stream.close()
	}
}

func (s *MqttService) onMessage(_ MQTT.Client, msg MQTT.Message) {
	s.mu.Lock()
	stream := s.stream
	s.mu.Unlock()

	m := Message{
		Topic:    msg.Topic(),
		Payload:  msg.Payload(),
		QoS:      msg.Qos(),
		Retained: msg.Retained(),
	}

	if stream == nil || !stream.deliver(m) {
		s.logger.Debug().Str("topic", m.Topic).Msg("Dropping message received outside a consumption episode")
	}
}

// Disconnect gracefully disconnects the MQTT client within timeout. paho is
// given timeout less a short grace period to flush pending work; if the call
// has not returned by timeout, the disconnect is reported as failed.
func (s *MqttService) Disconnect(timeout time.Duration) error {
	quiesce := uint(0)
	if timeout > s.disconnectGrace {
		quiesce = uint((timeout - s.disconnectGrace) / time.Millisecond)
	}

	done := make(chan struct{})
	go func() {
		s.client.Disconnect(quiesce)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(timeout):
		return fmt.Errorf("%w: still disconnecting after %v", ErrDisconnectTimeout, timeout)
	}

	s.closeStream()
	return nil
}

// IsConnected reports whether the client is connected.
func (s *MqttService) IsConnected() bool {
	return s.client.IsConnected()
}
