package mqtt

import (
	"testing"

	"github.com/berfenger/irpin2mqtt/internal/config"

	"github.com/stretchr/testify/assert"
)

func testClient() *MQTTClient {
	cfg := &config.Config{
		MQTT: config.MQTTConfig{
			Host:             "localhost",
			Port:             1883,
			BaseTopic:        "loremtopic",
			HADiscoveryTopic: "homeassistant",
		},
	}
	return CreateMQTTClient(cfg, OptsFromConfig(cfg), nil, nil)
}

func TestLEDPressCommandParse(t *testing.T) {

	assert := assert.New(t)

	r := ledPressCommandExtractor("loremtopic")
	matches := r.FindAllStringSubmatch("loremtopic/led/RED_UP/press", 1)

	assert.Equal("RED_UP", matches[0][1], "led name extract")
}

func TestLEDPressCommandParseFail(t *testing.T) {

	assert := assert.New(t)

	r := ledPressCommandExtractor("loremtopic")

	assert.Empty(r.FindAllStringSubmatch("loremtopic/led/RED/state", 1), "no matches")
	assert.Empty(r.FindAllStringSubmatch("other/loremtopic/led/RED/press", 1), "anchored")
}

func TestPinCommandParse(t *testing.T) {

	assert := assert.New(t)

	matches := pinSetCommandExtractor("loremtopic").FindAllStringSubmatch("loremtopic/pin/13/set", 1)
	assert.Equal("13", matches[0][1], "pin extract")

	matches = pinModeCommandExtractor("loremtopic").FindAllStringSubmatch("loremtopic/pin/4/mode", 1)
	assert.Equal("4", matches[0][1], "pin extract")

	assert.Empty(pinSetCommandExtractor("loremtopic").FindAllStringSubmatch("loremtopic/pin/x/set", 1))
}

func TestParseCommand(t *testing.T) {

	assert := assert.New(t)
	c := testClient()

	cmd, err := c.parseCommand("loremtopic/led/POWER/press", "2")
	assert.NoError(err)
	assert.Equal(COMMAND_LED_PRESS, cmd.Command)
	assert.Equal("POWER", cmd.DeviceId)
	assert.Equal("2", cmd.Payload)

	cmd, err = c.parseCommand("loremtopic/ir/send", "[16712445]")
	assert.NoError(err)
	assert.Equal(COMMAND_IR_SEND, cmd.Command)

	cmd, err = c.parseCommand("loremtopic/pin/7/set", "HIGH")
	assert.NoError(err)
	assert.Equal(COMMAND_PIN_SET, cmd.Command)
	pin, err := cmd.PinNumber()
	assert.NoError(err)
	assert.Equal(7, pin)

	cmd, err = c.parseCommand("loremtopic/pin/7/mode", "INPUT")
	assert.NoError(err)
	assert.Equal(COMMAND_PIN_MODE, cmd.Command)

	_, err = c.parseCommand("loremtopic/sensor/uptime/state", "12")
	assert.Error(err)
	_, err = c.parseCommand("loremtopic/ir/send", "")
	assert.Error(err)
	_, err = c.parseCommand("loremtopic/pin/7/mode", "")
	assert.Error(err)
}

func TestTopics(t *testing.T) {

	assert := assert.New(t)
	c := testClient()

	assert.Equal("loremtopic/bridge/state", c.BridgeStateTopic())
	assert.Equal("loremtopic/sensor/uptime/state", c.SensorStateTopic("uptime"))
	assert.Equal("loremtopic/led/RED/press", c.LEDPressTopic("RED"))
	assert.Equal("loremtopic/pin/3/set", c.PinSetTopic(3))
	assert.Len(commandTopics("loremtopic"), 4)
}
