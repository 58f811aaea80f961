package mqtt

import "time"

// Transport defines the connection-level operations the agent core relies on.
// It is implemented by MqttService and mocked in tests.
type Transport interface {
	// Connect performs the initial connection to the broker using the
	// connection configuration supplied at construction time.
	Connect() error

	// Reconnect re-establishes a dropped connection. It returns nil without
	// contacting the broker when the client is already connected.
	Reconnect() error

	// Publish sends msg and waits for the broker acknowledgement required by
	// the message QoS.
	Publish(msg Message) error

	// Subscribe registers interest in topic. Subscribing to a topic that is
	// already tracked replaces the tracked entry rather than adding a second one.
	Subscribe(topic string, qos byte) error

	// StartConsuming returns a fresh inbound message stream. The channel is
	// closed when the link drops, which is the signal to reconnect.
	StartConsuming() <-chan Message

	// Disconnect closes the connection, waiting at most timeout for in-flight
	// work to complete.
	Disconnect(timeout time.Duration) error

	// IsConnected reports whether the underlying client is connected.
	IsConnected() bool
}
