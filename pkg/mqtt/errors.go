package mqtt

import "errors"

// Errors returned by MqttService. Use errors.Is to check for them.
var (
	// ErrNotConnected is returned when publishing or subscribing without a connection.
	ErrNotConnected = errors.New("mqtt: client not connected")

	// ErrConnectionFailed is returned when a connect or reconnect attempt fails.
	ErrConnectionFailed = errors.New("mqtt: connection failed")

	// ErrPublishFailed is returned when a publish is rejected or not acknowledged.
	ErrPublishFailed = errors.New("mqtt: publish failed")

	// ErrSubscribeFailed is returned when a subscription is rejected or not acknowledged.
	ErrSubscribeFailed = errors.New("mqtt: subscribe failed")

	// ErrDisconnectTimeout is returned when the client does not finish disconnecting in time.
	ErrDisconnectTimeout = errors.New("mqtt: disconnect timed out")

	// ErrInvalidQoS is returned for QoS levels other than 0, 1 or 2.
	ErrInvalidQoS = errors.New("mqtt: invalid QoS level (must be 0, 1, or 2)")

	// ErrInvalidTopic is returned when an empty topic is provided.
	ErrInvalidTopic = errors.New("mqtt: topic cannot be empty")
)
