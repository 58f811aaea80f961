// Package liveness builds the retained status messages that announce whether
// the agent is present on the bus.
//
// The offline message doubles as the MQTT last will: it is registered at
// connect time so the broker publishes it if the agent vanishes without a
// clean disconnect. Nothing here publishes; callers own the ordering.
package liveness

import (
	"github.com/benmeehan/relay-agent/internal/constants"
	"github.com/benmeehan/relay-agent/pkg/mqtt"
)

// Protocol builds liveness messages for a single status topic.
type Protocol struct {
	topic string
}

// NewProtocol returns a Protocol publishing on statusTopic.
func NewProtocol(statusTopic string) Protocol {
	return Protocol{topic: statusTopic}
}

// Topic returns the status topic.
func (p Protocol) Topic() string {
	return p.topic
}

// OnlineMessage returns the retained "1" status message.
func (p Protocol) OnlineMessage() mqtt.Message {
	return mqtt.NewMessage(p.topic, constants.PayloadOn, constants.StatusQOS, true)
}

// OfflineMessage returns the retained "0" status message.
func (p Protocol) OfflineMessage() mqtt.Message {
	return mqtt.NewMessage(p.topic, constants.PayloadOff, constants.StatusQOS, true)
}

// Will returns the last-will message registered with the broker.
func (p Protocol) Will() mqtt.Message {
	return p.OfflineMessage()
}
