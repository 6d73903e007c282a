package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCheckMQTTTopic(t *testing.T) {

	assert := assert.New(t)

	topic, err := CheckMQTTTopic("IRPin_Living")
	assert.NoError(err)
	assert.Equal("irpin_living", topic, "lowercased")

	_, err = CheckMQTTTopic("irpin/living")
	assert.Error(err)

	_, err = CheckMQTTTopic("")
	assert.Error(err)
}

func TestDeviceTimeout(t *testing.T) {

	assert.Equal(t, 1500*time.Millisecond, DeviceConfig{TimeoutMillis: 1500}.Timeout())
	assert.Equal(t, DefaultDeviceTimeout, DeviceConfig{}.Timeout())
	assert.Equal(t, 3*time.Second, IRConfig{TransmitTimeoutMillis: 3000}.TransmitTimeout())
}

func TestParseLogLevel(t *testing.T) {

	assert := assert.New(t)

	assert.Equal(zap.DebugLevel, ParseLogLevel("trace"))
	assert.Equal(zap.DebugLevel, ParseLogLevel("DEBUG"))
	assert.Equal(zap.WarnLevel, ParseLogLevel("warn"))
	assert.Equal(zap.InfoLevel, ParseLogLevel("verbose"))
}

func TestLoadFromEnvironment(t *testing.T) {

	require := require.New(t)

	t.Setenv("CONFIG_FILE", "")
	t.Setenv("IRPIN_DEVICE_BASE_URL", "http://192.168.1.50/")
	t.Setenv("IRPIN_MQTT_BASE_TOPIC", "Living_Room")
	t.Setenv("IRPIN_MONITOR_ANALOG_PINS", "1,2")
	t.Setenv("IRPIN_LOG_LEVEL", "debug")
	t.Setenv("PORT", "9090")

	cfg, err := Load(viper.New())
	require.NoError(err)
	require.Equal("http://192.168.1.50/", cfg.Device.BaseURL)
	require.Equal("living_room", cfg.MQTT.BaseTopic)
	require.Equal("homeassistant", cfg.MQTT.HADiscoveryTopic)
	require.Equal([]int{1, 2}, cfg.MonitorConfig.AnalogPins)
	require.Equal(uint(9090), cfg.Port)
	require.Equal(zap.DebugLevel, cfg.LogLevel)
	require.Equal(uint32(10000), cfg.MonitorConfig.PollIntervalMillis)
	require.Equal(5*time.Second, cfg.IR.TransmitTimeout())
}

func TestLoadFromFile(t *testing.T) {

	require := require.New(t)

	file := filepath.Join(t.TempDir(), "irpin.yaml")
	require.NoError(os.WriteFile(file, []byte(`
device:
  base_url: http://10.0.0.7/
mqtt:
  username: bridge
  password: secret
ir:
  legacy_header: true
`), 0o600))
	t.Setenv("CONFIG_FILE", file)

	cfg, err := Load(viper.New())
	require.NoError(err)
	require.Equal("http://10.0.0.7/", cfg.Device.BaseURL)
	require.True(cfg.IR.LegacyHeader)

	redacted := cfg.Redacted()
	require.Equal("*redacted*", redacted.MQTT.Password)
	require.Equal("secret", cfg.MQTT.Password)
}

func TestValidate(t *testing.T) {

	assert := assert.New(t)

	valid := func() Config {
		return Config{
			Device:        DeviceConfig{BaseURL: "http://10.0.0.7/"},
			MQTT:          MQTTConfig{BaseTopic: "irpin", HADiscoveryTopic: "homeassistant"},
			MonitorConfig: MonitorConfig{PollIntervalMillis: 1000},
		}
	}

	cfg := valid()
	assert.NoError(cfg.Validate())

	cfg = valid()
	cfg.Device.BaseURL = ""
	assert.Error(cfg.Validate())

	cfg = valid()
	cfg.MonitorConfig.PollIntervalMillis = 999
	assert.Error(cfg.Validate())

	cfg = valid()
	cfg.IR.LEDDelayMicros = -1
	assert.Error(cfg.Validate())

	cfg = valid()
	cfg.MQTT.BaseTopic = "a/b"
	assert.Error(cfg.Validate())

	cfg = valid()
	cfg.MonitorConfig.AnalogPins = []int{3, -1}
	assert.Error(cfg.Validate())
}
