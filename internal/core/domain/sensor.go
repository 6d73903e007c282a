package domain

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/berfenger/irpin2mqtt/pkg/devapi"

	"github.com/carlmjohnson/versioninfo"
)

const (
	SENSOR_ID_BRIDGE_STATE       = "bridge"
	SENSOR_ID_REQUESTS_PROCESSED = "requests_processed"
	SENSOR_ID_UPTIME             = "uptime"
	SENSOR_ID_LAST_IR_COMMAND    = "last_ir_command"
	SENSOR_ID_ANALOG_PIN_PREFIX  = "analog_pin_"
	BUTTON_ID_LED_PREFIX         = "led_"
	STATE_CLASS_MEASUREMENT      = "measurement"
	STATE_CLASS_TOTAL_INCREASING = "total_increasing"
	DEVICE_CLASS_DURATION        = "duration"
	DEVICE_CLASS_CONNECTIVITY    = "connectivity"
	ENTITY_CLASS_DIAGNOSTIC      = "diagnostic"
	SENSOR_TYPE_SENSOR           = "sensor"
	SENSOR_TYPE_BINARY           = "binary_sensor"
)

func AnalogPinSensorId(pin int) string {
	return fmt.Sprintf("%s%d", SENSOR_ID_ANALOG_PIN_PREFIX, pin)
}

func LEDButtonId(name string) string {
	return BUTTON_ID_LED_PREFIX + strings.ToLower(name)
}

func BridgeDevice(baseTopic string) Device {
	return Device{
		Id:           fmt.Sprintf("irpin_bridge_%s", md5HashShort(baseTopic)),
		Manufacturer: "ACasal",
		Model:        "IRPin",
		Version:      versioninfo.Short(),
		Name:         fmt.Sprintf("IRPin %s", md5HashShort(baseTopic)),
	}
}

// ControllerDevice is the microcontroller behind the HTTP API. The API
// exposes no identity, so the device is keyed by its base URL.
func ControllerDevice(baseURL string) Device {
	return Device{
		Id:           fmt.Sprintf("irpin_controller_%s", md5HashShort(baseURL)),
		Manufacturer: "Generic",
		Model:        "GPIO/IR controller",
		Name:         fmt.Sprintf("IR controller %s", md5HashShort(baseURL)),
	}
}

func IdDevice(device Device) Device {
	return Device{
		Id:   device.Id,
		Name: device.Name,
	}
}

func newEntity(device Device, id, name, icon string) Entity {
	return Entity{
		Device:   device,
		Id:       id,
		Name:     name,
		UniqueId: uniqueId(device.Id, id),
		Icon:     icon,
	}
}

func BridgeSensors(bridgeDevice Device) []GenericSensor {
	return []GenericSensor{{
		Entity:         newEntity(bridgeDevice, SENSOR_ID_BRIDGE_STATE, "Connection state", ""),
		SensorType:     SENSOR_TYPE_BINARY,
		DeviceClass:    DEVICE_CLASS_CONNECTIVITY,
		EntityCategory: ENTITY_CLASS_DIAGNOSTIC,
	}}
}

// ControllerSensors lists the status sensors of the controller, the last
// IR command and one sensor per polled analog pin. Only the first entity
// carries the full device description.
func ControllerSensors(controllerDevice Device, analogPins []int) []GenericSensor {
	short := IdDevice(controllerDevice)

	sensors := []GenericSensor{
		{
			Entity:         newEntity(controllerDevice, SENSOR_ID_REQUESTS_PROCESSED, "Requests processed", "mdi:counter"),
			SensorType:     SENSOR_TYPE_SENSOR,
			StateClass:     STATE_CLASS_TOTAL_INCREASING,
			EntityCategory: ENTITY_CLASS_DIAGNOSTIC,
		},
		{
			Entity:            newEntity(short, SENSOR_ID_UPTIME, "Uptime", ""),
			SensorType:        SENSOR_TYPE_SENSOR,
			StateClass:        STATE_CLASS_MEASUREMENT,
			DeviceClass:       DEVICE_CLASS_DURATION,
			UnitOfMeasurement: "s",
			EntityCategory:    ENTITY_CLASS_DIAGNOSTIC,
		},
		{
			Entity:     newEntity(short, SENSOR_ID_LAST_IR_COMMAND, "Last IR command", "mdi:remote"),
			SensorType: SENSOR_TYPE_SENSOR,
		},
	}

	for _, pin := range analogPins {
		sensors = append(sensors, GenericSensor{
			Entity:     newEntity(short, AnalogPinSensorId(pin), fmt.Sprintf("Analog pin %d", pin), "mdi:sine-wave"),
			SensorType: SENSOR_TYPE_SENSOR,
			StateClass: STATE_CLASS_MEASUREMENT,
		})
	}

	return sensors
}

// LEDButtons returns one button per primary LED command, sorted by name.
func LEDButtons(controllerDevice Device) []GenericButton {
	short := IdDevice(controllerDevice)
	var buttons []GenericButton
	for _, name := range devapi.LEDCommandNames() {
		buttons = append(buttons, GenericButton{
			Entity:  newEntity(short, LEDButtonId(name), fmt.Sprintf("LED %s", name), "mdi:remote"),
			Command: name,
		})
	}
	return buttons
}

func uniqueId(deviceId string, sensorId string) string {
	return fmt.Sprintf("%s_%s", deviceId, sensorId)
}

func md5Hash(text string) string {
	hash := md5.Sum([]byte(text))
	return hex.EncodeToString(hash[:])
}

func md5HashShort(text string) string {
	return md5Hash(text)[0:8]
}
