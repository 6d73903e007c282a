package domain

import (
	"errors"
	"fmt"

	"github.com/berfenger/irpin2mqtt/pkg/devapi"
)

var ErrCommandQueueFull = errors.New("too many device commands waiting")

// DeviceCommand is a command received from MQTT or HTTP, before it is
// translated into device requests.
type DeviceCommand interface {
	DeviceCommand() string
}

type DeviceCommandMixIn struct {
}

func (c DeviceCommandMixIn) DeviceCommand() string {
	return fmt.Sprintf("%T", c)
}

// LEDPressCommand presses one or more remote buttons by name, in order.
type LEDPressCommand struct {
	DeviceCommandMixIn
	Names       []string
	Repeat      int
	DelayMicros int
}

type IRSendCommand struct {
	DeviceCommandMixIn
	Entries []devapi.NECEntry
	Repeat  int
}

type PinWriteCommand struct {
	DeviceCommandMixIn
	Pin   int
	Value devapi.Level
}

type PinModeCommand struct {
	DeviceCommandMixIn
	Pin  int
	Mode devapi.PinMode
}

// ensure interface compliance
var (
	_ DeviceCommand = (*LEDPressCommand)(nil)
	_ DeviceCommand = (*IRSendCommand)(nil)
	_ DeviceCommand = (*PinWriteCommand)(nil)
	_ DeviceCommand = (*PinModeCommand)(nil)
)
