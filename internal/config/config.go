package config

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	LogLevel      zapcore.Level
	Device        DeviceConfig  `mapstructure:"device"`
	MQTT          MQTTConfig    `mapstructure:"mqtt"`
	MonitorConfig MonitorConfig `mapstructure:"monitor"`
	IR            IRConfig      `mapstructure:"ir"`
	Port          uint          `mapstructure:"port"`
	HttpLog       bool          `mapstructure:"http_log"`
}

type DeviceConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	TimeoutMillis uint32 `mapstructure:"timeout_millis"`
}

type MonitorConfig struct {
	PollIntervalMillis uint32 `mapstructure:"poll_interval_millis"`
	AnalogPins         []int  `mapstructure:"analog_pins"`
}

type IRConfig struct {
	LegacyHeader          bool   `mapstructure:"legacy_header"`
	LEDDelayMicros        int    `mapstructure:"led_delay_micros"`
	TransmitTimeoutMillis uint32 `mapstructure:"transmit_timeout_millis"`
}

type MQTTConfig struct {
	Host              string
	Port              int
	Username          string
	Password          string
	BaseTopic         string `mapstructure:"base_topic"`
	HADiscoveryEnable bool   `mapstructure:"ha_discovery_enable"`
	HADiscoveryTopic  string `mapstructure:"ha_discovery_topic"`
}

const DefaultDeviceTimeout = 2 * time.Second

// Timeout of one device request, DefaultDeviceTimeout when unset.
func (c DeviceConfig) Timeout() time.Duration {
	if c.TimeoutMillis == 0 {
		return DefaultDeviceTimeout
	}
	return time.Duration(c.TimeoutMillis) * time.Millisecond
}

func (c IRConfig) TransmitTimeout() time.Duration {
	return time.Duration(c.TransmitTimeoutMillis) * time.Millisecond
}

func CheckMQTTTopic(baseTopic string) (string, error) {
	// check and fix base topic
	lowerBaseTopic := strings.ToLower(baseTopic)
	baseTopicRegexp := regexp.MustCompile("^[a-z0-9_]+$")
	matches := baseTopicRegexp.FindAllStringSubmatch(lowerBaseTopic, 1)
	if len(matches) <= 0 {
		return "", errors.New("invalid topic. can only contain letters, numbers and underscores")
	}
	return lowerBaseTopic, nil
}

// ParseLogLevel maps a log_level setting to a zap level, info when unknown.
func ParseLogLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "trace", "debug":
		return zap.DebugLevel
	case "info":
		return zap.InfoLevel
	case "error":
		return zap.ErrorLevel
	case "warn":
		return zap.WarnLevel
	case "fatal":
		return zap.FatalLevel
	default:
		return zap.InfoLevel
	}
}
