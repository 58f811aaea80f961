package utils

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/benmeehan/relay-agent/internal/constants"
	"github.com/benmeehan/relay-agent/pkg/file"
	"github.com/benmeehan/relay-agent/pkg/mqtt"
)

// Config represents the structure of the configuration file.
type Config struct {
	MQTT struct {
		Broker         string        `yaml:"broker"`           // MQTT broker address
		ClientID       string        `yaml:"client_id"`        // MQTT client ID
		UniqueClientID bool          `yaml:"unique_client_id"` // Append a random suffix to the client ID
		Username       string        `yaml:"username"`         // Optional broker username
		Password       string        `yaml:"password"`         // Optional broker password
		KeepAlive      time.Duration `yaml:"keep_alive"`       // Keep-alive interval, 10-20 seconds
		ConnectTimeout time.Duration `yaml:"connect_timeout"`  // Timeout for a single connect attempt
		CleanSession   bool          `yaml:"clean_session"`    // Start each session clean
	} `yaml:"mqtt"`

	Topics struct {
		Status    string `yaml:"status"`     // Retained liveness topic
		Button    string `yaml:"button"`     // Button command topic
		DoorState string `yaml:"door_state"` // Retained door state topic
	} `yaml:"topics"`

	Services struct {
		Button struct {
			Enabled bool `yaml:"enabled"` // Enable/disable button service
		} `yaml:"button"`

		Door struct {
			Enabled bool `yaml:"enabled"` // Enable/disable door state service
		} `yaml:"door"`
	} `yaml:"services"`

	Reconnect struct {
		MaxAttempts int           `yaml:"max_attempts"` // Attempts before giving up
		Delay       time.Duration `yaml:"delay"`        // Fixed delay between attempts
	} `yaml:"reconnect"`

	Actuator struct {
		Pin      int           `yaml:"pin"`      // BCM pin driving the relay
		Pulse    time.Duration `yaml:"pulse"`    // How long the relay is held active
		Debounce time.Duration `yaml:"debounce"` // Minimum spacing between accepted presses
	} `yaml:"actuator"`

	Shutdown struct {
		DisconnectTimeout time.Duration `yaml:"disconnect_timeout"` // Bound on the final disconnect
	} `yaml:"shutdown"`

	Logging struct {
		Level  string `yaml:"level"`  // zerolog level name
		Format string `yaml:"format"` // "console" or "json"
	} `yaml:"logging"`
}

// DefaultConfig returns the built-in deployment. The debug deployment uses
// its own client id and topic prefix and logs verbosely to the console.
func DefaultConfig(debug bool) *Config {
	var cfg Config

	prefix := constants.ReleaseTopicPrefix
	cfg.Logging.Level, cfg.Logging.Format = "info", "json"

	cfg.MQTT.Broker = constants.DefaultBroker
	cfg.MQTT.ClientID = constants.ReleaseClientID
	cfg.MQTT.KeepAlive = constants.DefaultKeepAlive
	cfg.MQTT.ConnectTimeout = mqtt.DefaultConnectTimeout
	cfg.MQTT.CleanSession = true

	cfg.Topics.Status = prefix + "/" + constants.StatusLevel
	cfg.Topics.Button = prefix + "/" + constants.ButtonLevel
	cfg.Topics.DoorState = prefix + "/" + constants.DoorStateLevel

	cfg.Services.Button.Enabled = true

	cfg.Reconnect.MaxAttempts = constants.DefaultReconnectAttempts
	cfg.Reconnect.Delay = constants.DefaultReconnectDelay

	cfg.Actuator.Pin = constants.DefaultRelayPin
	cfg.Actuator.Pulse = constants.DefaultPulse
	cfg.Actuator.Debounce = constants.DefaultDebounceWindow

	cfg.Shutdown.DisconnectTimeout = constants.DefaultDisconnectTimeout

	if debug {
		cfg.ApplyDebug()
	}
	return &cfg
}

// ApplyDebug moves the configuration onto the debug identity so a debug run
// can share the broker with a production agent: the client id and the first
// level of every topic get the debug suffix, and logging becomes verbose
// console output. Applying it twice has no further effect.
func (c *Config) ApplyDebug() {
	c.MQTT.ClientID = withDebugSuffix(c.MQTT.ClientID)
	c.Topics.Status = debugTopic(c.Topics.Status)
	c.Topics.Button = debugTopic(c.Topics.Button)
	c.Topics.DoorState = debugTopic(c.Topics.DoorState)
	c.Logging.Level, c.Logging.Format = "debug", "console"
}

func withDebugSuffix(s string) string {
	if s == "" || strings.HasSuffix(s, constants.DebugSuffix) {
		return s
	}
	return s + constants.DebugSuffix
}

func debugTopic(topic string) string {
	first, rest, found := strings.Cut(topic, "/")
	if !found {
		return withDebugSuffix(topic)
	}
	return withDebugSuffix(first) + "/" + rest
}

// LoadConfig loads the YAML configuration from the specified file over the
// defaults. A missing file is only an error when required is set. With debug
// set, the debug identity is applied after the file so a release config
// cannot put a debug run on the production client id.
func LoadConfig(filename string, required, debug bool, fileClient file.FileOperations) (*Config, error) {
	config, err := loadConfig(filename, required, fileClient)
	if err != nil {
		return nil, err
	}
	if debug {
		config.ApplyDebug()
	}
	return config, nil
}

func loadConfig(filename string, required bool, fileClient file.FileOperations) (*Config, error) {
	config := DefaultConfig(false)
	if filename == "" {
		return config, nil
	}

	exists, err := fileClient.IsFileExists(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file %s: %w", filename, err)
	}
	if !exists {
		if required {
			return nil, fmt.Errorf("config file %s does not exist", filename)
		}
		return config, nil
	}

	if err := fileClient.ReadYamlFile(filename, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}
	return config, nil
}

// Validate checks the values the agent cannot run without.
func (c *Config) Validate() error {
	var errs []error

	if c.MQTT.Broker == "" {
		errs = append(errs, errors.New("mqtt.broker is required"))
	}
	if c.MQTT.ClientID == "" {
		errs = append(errs, errors.New("mqtt.client_id is required"))
	}
	if c.MQTT.KeepAlive < 10*time.Second || c.MQTT.KeepAlive > 20*time.Second {
		errs = append(errs, fmt.Errorf("mqtt.keep_alive must be between 10s and 20s, got %s", c.MQTT.KeepAlive))
	}
	if c.Topics.Status == "" {
		errs = append(errs, errors.New("topics.status is required"))
	}
	if c.Services.Button.Enabled && c.Topics.Button == "" {
		errs = append(errs, errors.New("topics.button is required when the button service is enabled"))
	}
	if c.Services.Door.Enabled && c.Topics.DoorState == "" {
		errs = append(errs, errors.New("topics.door_state is required when the door service is enabled"))
	}
	if c.Reconnect.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("reconnect.max_attempts must be at least 1, got %d", c.Reconnect.MaxAttempts))
	}
	if c.Reconnect.Delay < 0 {
		errs = append(errs, errors.New("reconnect.delay must not be negative"))
	}
	if c.Shutdown.DisconnectTimeout <= 0 {
		errs = append(errs, errors.New("shutdown.disconnect_timeout must be positive"))
	}

	return errors.Join(errs...)
}

// ConnectionConfig builds the transport settings, registering will as the
// last-will message.
func (c *Config) ConnectionConfig(will mqtt.Message) mqtt.ConnectionConfig {
	return mqtt.ConnectionConfig{
		Broker:         c.MQTT.Broker,
		ClientID:       c.MQTT.ClientID,
		Username:       c.MQTT.Username,
		Password:       c.MQTT.Password,
		KeepAlive:      c.MQTT.KeepAlive,
		ConnectTimeout: c.MQTT.ConnectTimeout,
		CleanSession:   c.MQTT.CleanSession,
		Will:           will,
	}
}
