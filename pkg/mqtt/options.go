package mqtt

import (
	"time"

	MQTT "github.com/eclipse/paho.mqtt.golang"
)

const (
	// DefaultConnectTimeout bounds a single connect or reconnect attempt.
	DefaultConnectTimeout = 10 * time.Second

	// defaultPublishTimeout bounds the wait for a publish or subscribe acknowledgement.
	defaultPublishTimeout = 5 * time.Second

	// defaultDisconnectGrace is held back from the caller's disconnect timeout
	// so paho's quiesce period ends before the disconnect is declared hung.
	defaultDisconnectGrace = 250 * time.Millisecond

	// inboundBuffer is the capacity of each inbound message stream.
	inboundBuffer = 64

	maxQoS = 2
)

// ConnectionConfig holds everything needed to open a session with the broker.
// It is built once at startup and not modified afterwards.
type ConnectionConfig struct {
	Broker         string
	ClientID       string
	Username       string
	Password       string
	KeepAlive      time.Duration
	ConnectTimeout time.Duration
	CleanSession   bool
	Will           Message
}

// BuildClientOptions creates paho client options from cfg.
//
// Automatic reconnection is disabled: reconnecting is owned by the agent's
// reconnect policy so that liveness can be re-announced in order.
func BuildClientOptions(cfg ConnectionConfig) *MQTT.ClientOptions {
	opts := MQTT.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.SetKeepAlive(cfg.KeepAlive)
	opts.SetCleanSession(cfg.CleanSession)
	opts.SetAutoReconnect(false)
	opts.SetConnectRetry(false)

	connectTimeout := cfg.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}
	opts.SetConnectTimeout(connectTimeout)

	// The broker publishes the will on our behalf if the link drops uncleanly.
	if cfg.Will.Topic != "" {
		opts.SetBinaryWill(cfg.Will.Topic, cfg.Will.Payload, cfg.Will.QoS, cfg.Will.Retained)
	}

	return opts
}
