package domain

// Device groups entities in Home Assistant. The controller is attached to
// the bridge through ViaDevice.
type Device struct {
	Id           string
	Name         string
	Version      string
	Model        string
	Manufacturer string
	ViaDevice    string
}

// Entity holds the fields shared by every discovered entity.
type Entity struct {
	Device   Device
	Id       string
	Name     string
	UniqueId string
	Icon     string
}

type GenericSensor struct {
	Entity
	SensorType        string // sensor, binary_sensor
	UnitOfMeasurement string
	StateClass        string
	DeviceClass       string
	EntityCategory    string
	EnabledByDefault  *bool
}

// GenericButton presses the LED remote command it is named after.
type GenericButton struct {
	Entity
	Command string
}
