package mqtt

// Message is a transport-neutral MQTT message, used both for publishing and
// for messages delivered on the inbound stream.
type Message struct {
	Topic    string
	Payload  []byte
	QoS      byte
	Retained bool
}

// NewMessage builds a message with a string payload.
func NewMessage(topic, payload string, qos byte, retained bool) Message {
	return Message{
		Topic:    topic,
		Payload:  []byte(payload),
		QoS:      qos,
		Retained: retained,
	}
}

// PayloadString returns the payload as a string.
func (m Message) PayloadString() string {
	return string(m.Payload)
}
