package registry

import "github.com/benmeehan/relay-agent/pkg/mqtt"

// Service is the interface for all plug-in services
type Service interface {
	Name() string
	// Subscriptions returns the topics the service consumes, keyed to their QoS.
	Subscriptions() map[string]byte
	Start() error
	Stop() error
	// HandleMessage reports whether the service recognised the message.
	HandleMessage(msg mqtt.Message) bool
}
