package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const EnvPrefix = "irpin"

func SetDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "warn")
	v.SetDefault("device.base_url", "")
	v.SetDefault("device.timeout_millis", 2000)
	v.SetDefault("mqtt.host", "localhost")
	v.SetDefault("mqtt.port", 1883)
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("mqtt.ha_discovery_enable", false)
	v.SetDefault("mqtt.base_topic", "irpin")
	v.SetDefault("mqtt.ha_discovery_topic", "homeassistant")
	v.SetDefault("monitor.poll_interval_millis", 10000)
	v.SetDefault("monitor.analog_pins", []int{})
	v.SetDefault("ir.legacy_header", false)
	v.SetDefault("ir.led_delay_micros", 0)
	v.SetDefault("ir.transmit_timeout_millis", 5000)
	v.SetDefault("port", 8080)
	v.SetDefault("http_log", false)
}

// Load builds the bridge configuration from defaults, the yaml file named by
// CONFIG_FILE when it exists, and IRPIN_* environment variables, in
// increasing priority. PORT is accepted as an alias of IRPIN_PORT.
func Load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("port", "IRPIN_PORT", "PORT"); err != nil {
		return nil, err
	}

	if cfgFile := os.Getenv("CONFIG_FILE"); cfgFile != "" {
		if _, err := os.Stat(cfgFile); err == nil {
			slog.Info("Using config", "file", cfgFile)
			v.SetConfigFile(cfgFile)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("reading %s: %w", cfgFile, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	cfg.LogLevel = ParseLogLevel(v.GetString("log_level"))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks bounds and normalizes the MQTT topics in place.
func (cfg *Config) Validate() error {
	baseTopic, err := CheckMQTTTopic(cfg.MQTT.BaseTopic)
	if err != nil {
		return errors.New("invalid base topic. can only contain letters, numbers and underscores")
	}
	cfg.MQTT.BaseTopic = baseTopic

	hadBaseTopic, err := CheckMQTTTopic(cfg.MQTT.HADiscoveryTopic)
	if err != nil {
		return errors.New("invalid homeassistant discovery topic. can only contain letters, numbers and underscores")
	}
	cfg.MQTT.HADiscoveryTopic = hadBaseTopic

	if cfg.Device.BaseURL == "" {
		return errors.New("config param device.base_url is required")
	}
	if cfg.MonitorConfig.PollIntervalMillis < 1000 {
		return errors.New("config param monitor.poll_interval_millis should be >= 1000")
	}
	if cfg.IR.LEDDelayMicros < 0 {
		return errors.New("config param ir.led_delay_micros should be >= 0")
	}
	for _, pin := range cfg.MonitorConfig.AnalogPins {
		if pin < 0 {
			return fmt.Errorf("config param monitor.analog_pins: invalid pin %d", pin)
		}
	}
	return nil
}

// Redacted returns a copy safe to log.
func (cfg Config) Redacted() Config {
	if cfg.MQTT.Username != "" {
		cfg.MQTT.Username = "*redacted*"
	}
	if cfg.MQTT.Password != "" {
		cfg.MQTT.Password = "*redacted*"
	}
	cfg.MonitorConfig.AnalogPins = append([]int(nil), cfg.MonitorConfig.AnalogPins...)
	return cfg
}
