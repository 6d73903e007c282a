package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/berfenger/irpin2mqtt/internal/core/domain"
	"github.com/berfenger/irpin2mqtt/internal/core/port"
	"github.com/berfenger/irpin2mqtt/pkg/devapi"

	"go.uber.org/zap"
)

const MaxIRRepeat = 20

var ErrRepeatOutOfRange = fmt.Errorf("repeat must be between 0 and %d", MaxIRRepeat)

type IRCommandService struct {
	// Legacy sends the NEC header merged into the first code.
	Legacy bool
	Logger *zap.Logger
}

func (s *IRCommandService) ResolveLEDPress(cmd domain.LEDPressCommand) (*port.IRCommand, error) {
	if err := checkRepeat(cmd.Repeat); err != nil {
		return nil, err
	}
	if len(cmd.Names) == 0 {
		return nil, errors.New("no led command given")
	}
	var codes []devapi.IRCode
	var err error
	if s.Legacy {
		codes, err = s.legacyLEDSequence(cmd)
	} else {
		codes, err = devapi.NECSequenceForLEDs(cmd.DelayMicros, cmd.Names...)
	}
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(cmd.Names))
	for _, n := range cmd.Names {
		primary, _ := devapi.ResolveLEDName(n)
		names = append(names, primary)
	}
	s.Logger.Debug("ircommand: led press resolved", zap.Strings("names", names), zap.Int("codes", len(codes)))
	return &port.IRCommand{
		Label:  strings.Join(names, ","),
		Codes:  codes,
		Repeat: cmd.Repeat,
	}, nil
}

func (s *IRCommandService) legacyLEDSequence(cmd domain.LEDPressCommand) ([]devapi.IRCode, error) {
	entries := make([]devapi.NECEntry, 0, len(cmd.Names))
	for _, n := range cmd.Names {
		code, ok := devapi.LookupLEDCode(n)
		if !ok {
			return nil, fmt.Errorf("%w: %q", devapi.ErrUnknownLED, n)
		}
		if cmd.DelayMicros > 0 {
			entries = append(entries, devapi.WithDelay(code, cmd.DelayMicros))
		} else {
			entries = append(entries, devapi.Bare(code))
		}
	}
	return devapi.BuildNECSequenceMerged(entries...)
}

func (s *IRCommandService) ResolveIRSend(cmd domain.IRSendCommand) (*port.IRCommand, error) {
	if err := checkRepeat(cmd.Repeat); err != nil {
		return nil, err
	}
	if len(cmd.Entries) == 0 {
		return nil, errors.New("no ir code given")
	}
	build := devapi.BuildNECSequence
	if s.Legacy {
		build = devapi.BuildNECSequenceMerged
	}
	codes, err := build(cmd.Entries...)
	if err != nil {
		return nil, err
	}
	label := "NEC"
	for _, c := range codes {
		if c.Code != nil {
			label = fmt.Sprintf("%s 0x%X", label, *c.Code)
		}
	}
	s.Logger.Debug("ircommand: ir send resolved", zap.String("label", label), zap.Int("codes", len(codes)))
	return &port.IRCommand{
		Label:  label,
		Codes:  codes,
		Repeat: cmd.Repeat,
	}, nil
}

func checkRepeat(repeat int) error {
	if repeat < 0 || repeat > MaxIRRepeat {
		return ErrRepeatOutOfRange
	}
	return nil
}

// ensure interface compliance
var _ port.IRCommandResolver = (*IRCommandService)(nil)
