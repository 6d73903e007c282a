package service

import (
	"testing"

	"github.com/berfenger/irpin2mqtt/internal/core/domain"
	"github.com/berfenger/irpin2mqtt/pkg/devapi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newService(legacy bool) *IRCommandService {
	return &IRCommandService{Legacy: legacy, Logger: zap.NewNop()}
}

func TestResolveLEDPress(t *testing.T) {

	require := require.New(t)

	cmd, err := newService(false).ResolveLEDPress(domain.LEDPressCommand{Names: []string{"power", "r1"}, Repeat: 2})
	require.NoError(err)
	require.Equal("POWER,RED1", cmd.Label)
	require.Equal(2, cmd.Repeat)
	require.Len(cmd.Codes, 3)
	require.Equal(devapi.NECHeader(), cmd.Codes[0])
	require.Equal(uint32(16712445), *cmd.Codes[1].Code)
	require.Equal(uint32(16722645), *cmd.Codes[2].Code)
}

func TestResolveLEDPressLegacy(t *testing.T) {

	require := require.New(t)

	cmd, err := newService(true).ResolveLEDPress(domain.LEDPressCommand{Names: []string{"POWER"}, DelayMicros: 1000})
	require.NoError(err)
	require.Len(cmd.Codes, 1)
	require.Equal(devapi.ProtocolNEC, cmd.Codes[0].Protocol)
	require.Equal(devapi.NECBits, *cmd.Codes[0].Bits)
	require.Equal(1000, *cmd.Codes[0].Delay)
}

func TestResolveLEDPressErrors(t *testing.T) {

	assert := assert.New(t)
	s := newService(false)

	_, err := s.ResolveLEDPress(domain.LEDPressCommand{Names: []string{"LASER"}})
	assert.ErrorIs(err, devapi.ErrUnknownLED)

	_, err = newService(true).ResolveLEDPress(domain.LEDPressCommand{Names: []string{"LASER"}})
	assert.ErrorIs(err, devapi.ErrUnknownLED)

	_, err = s.ResolveLEDPress(domain.LEDPressCommand{})
	assert.Error(err)

	_, err = s.ResolveLEDPress(domain.LEDPressCommand{Names: []string{"POWER"}, Repeat: MaxIRRepeat + 1})
	assert.ErrorIs(err, ErrRepeatOutOfRange)

	_, err = s.ResolveLEDPress(domain.LEDPressCommand{Names: []string{"POWER"}, Repeat: -1})
	assert.ErrorIs(err, ErrRepeatOutOfRange)
}

func TestResolveIRSend(t *testing.T) {

	require := require.New(t)

	cmd, err := newService(false).ResolveIRSend(domain.IRSendCommand{
		Entries: []devapi.NECEntry{devapi.Bare(0xF7C03F), devapi.WithDelay(0xF740BF, 50000)},
	})
	require.NoError(err)
	require.Equal("NEC 0xF7C03F 0xF740BF", cmd.Label)
	require.Len(cmd.Codes, 3)
	require.Equal(50000, *cmd.Codes[2].Delay)

	_, err = newService(false).ResolveIRSend(domain.IRSendCommand{Entries: []devapi.NECEntry{devapi.WithDelay(1, -5)}})
	require.ErrorIs(err, devapi.ErrInvalidCodeEntry)

	_, err = newService(false).ResolveIRSend(domain.IRSendCommand{})
	require.Error(err)
}
