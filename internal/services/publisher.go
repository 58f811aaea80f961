package services

import "github.com/benmeehan/relay-agent/pkg/mqtt"

// Publisher is the part of the MQTT transport services publish through.
type Publisher interface {
	Publish(msg mqtt.Message) error
}
