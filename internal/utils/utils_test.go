package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benmeehan/relay-agent/pkg/file"
	"github.com/benmeehan/relay-agent/pkg/mqtt"
)

// TestDefaultConfig_Release tests the fixed release deployment.
func TestDefaultConfig_Release(t *testing.T) {
	cfg := DefaultConfig(false)

	assert.Equal(t, "tcp://192.168.1.127:1886", cfg.MQTT.Broker)
	assert.Equal(t, "Pi", cfg.MQTT.ClientID)
	assert.Equal(t, 10*time.Second, cfg.MQTT.KeepAlive)
	assert.True(t, cfg.MQTT.CleanSession)
	assert.Equal(t, "rasp/status", cfg.Topics.Status)
	assert.Equal(t, "rasp/button", cfg.Topics.Button)
	assert.Equal(t, "rasp/door", cfg.Topics.DoorState)
	assert.True(t, cfg.Services.Button.Enabled)
	assert.False(t, cfg.Services.Door.Enabled)
	assert.Equal(t, 120, cfg.Reconnect.MaxAttempts)
	assert.Equal(t, 10*time.Second, cfg.Reconnect.Delay)
	assert.Equal(t, 23, cfg.Actuator.Pin)
	assert.Equal(t, 100*time.Millisecond, cfg.Actuator.Pulse)
	assert.Equal(t, time.Second, cfg.Actuator.Debounce)
	assert.Equal(t, time.Second, cfg.Shutdown.DisconnectTimeout)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.NoError(t, cfg.Validate())
}

// TestDefaultConfig_Debug tests that the debug deployment is isolated from release.
func TestDefaultConfig_Debug(t *testing.T) {
	cfg := DefaultConfig(true)

	assert.Equal(t, "Pi_debug", cfg.MQTT.ClientID)
	assert.Equal(t, "rasp_debug/status", cfg.Topics.Status)
	assert.Equal(t, "rasp_debug/button", cfg.Topics.Button)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

// TestLoadConfig_OverridesDefaults tests that a file only overrides the keys it sets.
func TestLoadConfig_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "mqtt:\n  broker: tcp://10.0.0.2:1883\n  keep_alive: 15s\nservices:\n  door:\n    enabled: true\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0600))

	cfg, err := LoadConfig(path, true, false, file.NewFileService())

	require.NoError(t, err)
	assert.Equal(t, "tcp://10.0.0.2:1883", cfg.MQTT.Broker)
	assert.Equal(t, 15*time.Second, cfg.MQTT.KeepAlive)
	assert.True(t, cfg.Services.Door.Enabled)
	assert.True(t, cfg.Services.Button.Enabled)
	assert.Equal(t, "Pi", cfg.MQTT.ClientID)
}

// TestLoadConfig_MissingFile tests that only an explicitly requested file must exist.
func TestLoadConfig_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")

	cfg, err := LoadConfig(path, false, true, file.NewFileService())
	require.NoError(t, err)
	assert.Equal(t, "Pi_debug", cfg.MQTT.ClientID)

	_, err = LoadConfig(path, true, false, file.NewFileService())
	assert.Error(t, err)
}

// TestLoadConfig_WrittenDefaultsLoadBack tests that a dumped default config loads unchanged.
func TestLoadConfig_WrittenDefaultsLoadBack(t *testing.T) {
	fs := file.NewFileService()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, fs.WriteYamlFile(path, DefaultConfig(false)))

	cfg, err := LoadConfig(path, true, false, fs)

	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(false), cfg)
}

// TestLoadConfig_DebugOverShippedConfig tests that the debug identity survives a release config file.
func TestLoadConfig_DebugOverShippedConfig(t *testing.T) {
	cfg, err := LoadConfig("../../configs/config.yaml", true, true, file.NewFileService())

	require.NoError(t, err)
	assert.Equal(t, "Pi_debug", cfg.MQTT.ClientID)
	assert.Equal(t, "rasp_debug/status", cfg.Topics.Status)
	assert.Equal(t, "rasp_debug/button", cfg.Topics.Button)
	assert.Equal(t, "rasp_debug/door", cfg.Topics.DoorState)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.NoError(t, cfg.Validate())

	release, err := LoadConfig("../../configs/config.yaml", true, false, file.NewFileService())
	require.NoError(t, err)
	assert.Equal(t, "Pi", release.MQTT.ClientID)
	assert.Equal(t, "rasp/status", release.Topics.Status)
}

// TestLoadConfig_DebugCustomIdentity tests that custom names get the debug suffix once.
func TestLoadConfig_DebugCustomIdentity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "mqtt:\n  client_id: garage\ntopics:\n  status: home/garage/status\n  button: home_debug/garage/button\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0600))

	cfg, err := LoadConfig(path, true, true, file.NewFileService())

	require.NoError(t, err)
	assert.Equal(t, "garage_debug", cfg.MQTT.ClientID)
	assert.Equal(t, "home_debug/garage/status", cfg.Topics.Status)
	assert.Equal(t, "home_debug/garage/button", cfg.Topics.Button)

	cfg.ApplyDebug()
	assert.Equal(t, "garage_debug", cfg.MQTT.ClientID)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"empty broker", func(c *Config) { c.MQTT.Broker = "" }},
		{"empty client id", func(c *Config) { c.MQTT.ClientID = "" }},
		{"keep alive too short", func(c *Config) { c.MQTT.KeepAlive = 5 * time.Second }},
		{"keep alive too long", func(c *Config) { c.MQTT.KeepAlive = 30 * time.Second }},
		{"empty status topic", func(c *Config) { c.Topics.Status = "" }},
		{"button without topic", func(c *Config) { c.Topics.Button = "" }},
		{"door without topic", func(c *Config) { c.Services.Door.Enabled = true; c.Topics.DoorState = "" }},
		{"no attempts", func(c *Config) { c.Reconnect.MaxAttempts = 0 }},
		{"negative delay", func(c *Config) { c.Reconnect.Delay = -time.Second }},
		{"zero disconnect timeout", func(c *Config) { c.Shutdown.DisconnectTimeout = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig(false)
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestConfig_ConnectionConfig(t *testing.T) {
	cfg := DefaultConfig(false)
	cfg.MQTT.Username = "pi"
	will := mqtt.NewMessage("rasp/status", "0", 1, true)

	conn := cfg.ConnectionConfig(will)

	assert.Equal(t, cfg.MQTT.Broker, conn.Broker)
	assert.Equal(t, "Pi", conn.ClientID)
	assert.Equal(t, "pi", conn.Username)
	assert.Equal(t, 10*time.Second, conn.KeepAlive)
	assert.Equal(t, will, conn.Will)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger("warn", "json", &buf)
	require.NoError(t, err)

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"message":"shown"`)
	assert.Equal(t, zerolog.WarnLevel, logger.GetLevel())

	_, err = NewLogger("loud", "json", &buf)
	assert.Error(t, err)
}

func TestBuildVersion(t *testing.T) {
	assert.Equal(t, "1.2.0", BuildVersion("v1.2"))
	assert.Equal(t, "0.3.1", BuildVersion(" 0.3.1 "))
	assert.Equal(t, DevelopmentVersion, BuildVersion(""))
	assert.Equal(t, "nightly", BuildVersion("nightly"))
}
