package util

import (
	"github.com/berfenger/irpin2mqtt/internal/config"

	"go.uber.org/zap"
)

func LoadTestConfig() config.Config {
	return config.Config{
		LogLevel: zap.DebugLevel,
		Device: config.DeviceConfig{
			BaseURL:       "http://-.-.-.-",
			TimeoutMillis: 2000,
		},
		MQTT: config.MQTTConfig{
			Host:             "localhost",
			Port:             1883,
			BaseTopic:        "irpin",
			HADiscoveryTopic: "homeassistant",
		},
		MonitorConfig: config.MonitorConfig{
			PollIntervalMillis: 1000,
			AnalogPins:         []int{1, 2, 3},
		},
		IR: config.IRConfig{
			LEDDelayMicros:        0,
			TransmitTimeoutMillis: 5000,
		},
		Port: 8080,
	}
}
