package mocks

import (
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/benmeehan/relay-agent/pkg/mqtt"
)

// MockTransport is a mock implementation of the mqtt.Transport interface
type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Connect() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTransport) Reconnect() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTransport) Publish(msg mqtt.Message) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockTransport) Subscribe(topic string, qos byte) error {
	args := m.Called(topic, qos)
	return args.Error(0)
}

// StartConsuming accepts either a bidirectional or a receive-only channel as
// the configured return value.
func (m *MockTransport) StartConsuming() <-chan mqtt.Message {
	args := m.Called()
	switch ch := args.Get(0).(type) {
	case chan mqtt.Message:
		return ch
	case <-chan mqtt.Message:
		return ch
	}
	return nil
}

func (m *MockTransport) Disconnect(timeout time.Duration) error {
	args := m.Called(timeout)
	return args.Error(0)
}

func (m *MockTransport) IsConnected() bool {
	args := m.Called()
	return args.Bool(0)
}

// PublishedTo returns the payloads published to topic, in order.
func (m *MockTransport) PublishedTo(topic string) []string {
	var payloads []string
	for _, call := range m.Calls {
		if call.Method != "Publish" {
			continue
		}
		msg := call.Arguments.Get(0).(mqtt.Message)
		if msg.Topic == topic {
			payloads = append(payloads, msg.PayloadString())
		}
	}
	return payloads
}
