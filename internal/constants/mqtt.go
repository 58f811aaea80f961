package constants

import "time"

// Broker defaults used when no configuration file overrides them.
const (
	DefaultBroker            = "tcp://192.168.1.127:1886"
	DefaultKeepAlive         = 10 * time.Second
	DefaultDisconnectTimeout = time.Second
	DefaultConfigFile        = "configs/config.yaml"
)

// Release and debug identities. Debug builds use their own client id and
// topics so they can run next to a production agent on the same broker.
const (
	ReleaseClientID    = "Pi"
	ReleaseTopicPrefix = "rasp"
	DebugSuffix        = "_debug"
	DebugClientID      = ReleaseClientID + DebugSuffix
	DebugTopicPrefix   = ReleaseTopicPrefix + DebugSuffix
)

// Topic levels appended to the prefix.
const (
	StatusLevel    = "status"
	ButtonLevel    = "button"
	DoorStateLevel = "door"
)

// Payloads shared by the status and button topics.
const (
	PayloadOn  = "1"
	PayloadOff = "0"
)

// QoS levels per topic.
const (
	StatusQOS     byte = 1
	ButtonQOS     byte = 2
	ButtonInitQOS byte = 1
	DoorStateQOS  byte = 1
)
