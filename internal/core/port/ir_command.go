package port

import (
	"github.com/berfenger/irpin2mqtt/internal/core/domain"
	"github.com/berfenger/irpin2mqtt/pkg/devapi"
)

// IRCommand is a resolved transmission, ready for the device actor.
type IRCommand struct {
	Label  string
	Codes  []devapi.IRCode
	Repeat int
}

type IRCommandResolver interface {
	ResolveLEDPress(cmd domain.LEDPressCommand) (*IRCommand, error)
	ResolveIRSend(cmd domain.IRSendCommand) (*IRCommand, error)
}
