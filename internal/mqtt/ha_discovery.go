package mqtt

import (
	"encoding/json"
	"fmt"

	"github.com/berfenger/irpin2mqtt/internal/core/domain"
)

type HADiscoveryConfig struct {
	Device            HADiscoveryDevice `json:"device"`
	StateTopic        string            `json:"state_topic,omitempty"`
	CommandTopic      string            `json:"command_topic,omitempty"`
	StateClass        string            `json:"state_class,omitempty"`
	DeviceClass       string            `json:"device_class,omitempty"`
	UnitOfMeasurement string            `json:"unit_of_measurement,omitempty"`
	AvTopic           string            `json:"availability_topic,omitempty"`
	EntityCategory    string            `json:"entity_category,omitempty"`
	Name              string            `json:"name"`
	UniqueId          string            `json:"unique_id"`
	Platform          string            `json:"platform"`
	EnabledByDefault  *bool             `json:"enabled_by_default,omitempty"`
	PayloadOn         string            `json:"payload_on,omitempty"`
	PayloadOff        string            `json:"payload_off,omitempty"`
	PayloadPress      string            `json:"payload_press,omitempty"`
	Icon              string            `json:"icon,omitempty"`
}

type HADiscoveryDevice struct {
	Id           []string `json:"identifiers"`
	Manufacturer string   `json:"manufacturer,omitempty"`
	Version      string   `json:"sw_version,omitempty"`
	Model        string   `json:"model,omitempty"`
	Name         string   `json:"name,omitempty"`
	ViaDevice    string   `json:"via_device,omitempty"`
}

// DiscoveryMessage is one retained config message under the Home Assistant
// discovery prefix.
type DiscoveryMessage struct {
	Topic  string
	Config HADiscoveryConfig
}

func (m DiscoveryMessage) Payload() ([]byte, error) {
	return json.Marshal(m.Config)
}

// DiscoveryMessages returns the config messages for all sensors, then all
// buttons.
func (c *MQTTClient) DiscoveryMessages(sensors []domain.GenericSensor, buttons []domain.GenericButton) []DiscoveryMessage {
	messages := make([]DiscoveryMessage, 0, len(sensors)+len(buttons))
	for _, s := range sensors {
		messages = append(messages, c.SensorDiscovery(s))
	}
	for _, b := range buttons {
		messages = append(messages, c.ButtonDiscovery(b))
	}
	return messages
}

func (c *MQTTClient) SensorDiscovery(sensor domain.GenericSensor) DiscoveryMessage {
	cfg := c.entityConfig(sensor.Entity)
	cfg.StateTopic = c.SensorStateTopic(sensor.Id)
	cfg.StateClass = sensor.StateClass
	cfg.DeviceClass = sensor.DeviceClass
	cfg.UnitOfMeasurement = sensor.UnitOfMeasurement
	cfg.EntityCategory = sensor.EntityCategory
	cfg.EnabledByDefault = sensor.EnabledByDefault

	switch {
	case sensor.Id == domain.SENSOR_ID_BRIDGE_STATE:
		cfg.StateTopic = c.BridgeStateTopic()
		cfg.PayloadOn = MQTT_PAYLOAD_ONLINE
		cfg.PayloadOff = MQTT_PAYLOAD_OFFLINE
	case sensor.SensorType == domain.SENSOR_TYPE_BINARY:
		cfg.PayloadOn = MQTT_PAYLOAD_ON
		cfg.PayloadOff = MQTT_PAYLOAD_OFF
	}

	return DiscoveryMessage{
		Topic:  c.discoveryTopic(sensor.SensorType, sensor.Entity),
		Config: cfg,
	}
}

func (c *MQTTClient) ButtonDiscovery(button domain.GenericButton) DiscoveryMessage {
	cfg := c.entityConfig(button.Entity)
	cfg.CommandTopic = c.LEDPressTopic(button.Command)
	cfg.PayloadPress = MQTT_PAYLOAD_PRESS
	return DiscoveryMessage{
		Topic:  c.discoveryTopic("button", button.Entity),
		Config: cfg,
	}
}

func (c *MQTTClient) entityConfig(e domain.Entity) HADiscoveryConfig {
	return HADiscoveryConfig{
		Device: HADiscoveryDevice{
			Id:           []string{e.Device.Id},
			Manufacturer: e.Device.Manufacturer,
			Version:      e.Device.Version,
			Model:        e.Device.Model,
			Name:         e.Device.Name,
			ViaDevice:    e.Device.ViaDevice,
		},
		AvTopic:  c.BridgeStateTopic(),
		Name:     e.Name,
		UniqueId: e.UniqueId,
		Icon:     e.Icon,
		Platform: "mqtt",
	}
}

func (c *MQTTClient) discoveryTopic(component string, e domain.Entity) string {
	return fmt.Sprintf("%s/%s/%s/%s/config", c.HADiscoveryTopic(), component, e.Device.Id, e.Id)
}
