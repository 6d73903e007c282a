package mqtt

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"strconv"
	"time"

	"github.com/berfenger/irpin2mqtt/internal/config"
	"github.com/berfenger/irpin2mqtt/internal/core/domain"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

const (
	MQTT_PAYLOAD_ONLINE  = domain.BRIDGE_STATE_ONLINE
	MQTT_PAYLOAD_OFFLINE = domain.BRIDGE_STATE_OFFLINE
	MQTT_PAYLOAD_ON      = "on"
	MQTT_PAYLOAD_OFF     = "off"
	MQTT_PAYLOAD_PRESS   = "PRESS"
)

const (
	COMMAND_LED_PRESS = "led_press"
	COMMAND_IR_SEND   = "ir_send"
	COMMAND_PIN_SET   = "pin_set"
	COMMAND_PIN_MODE  = "pin_mode"
)

var errNotACommand = errors.New("invalid command")

func OptsFromConfig(cfg *config.Config) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.MQTT.Host, cfg.MQTT.Port))
	opts.SetClientID(fmt.Sprintf("irpin_%d", rand.IntN(1000)))
	if cfg.MQTT.Username != "" && cfg.MQTT.Password != "" {
		opts.SetUsername(cfg.MQTT.Username)
		opts.SetPassword(cfg.MQTT.Password)
	}
	opts.WillEnabled = true
	opts.WillPayload = []byte(MQTT_PAYLOAD_OFFLINE)
	opts.WillRetained = true
	opts.WillTopic = bridgeStateTopic(cfg.MQTT.BaseTopic)
	opts.WillQos = 0

	return opts
}

func CreateMQTTClient(cfg *config.Config, opts *mqtt.ClientOptions, onConnectHandler func(client mqtt.Client),
	onConnectionLostHandler func(mqtt.Client, error)) *MQTTClient {
	if onConnectHandler != nil {
		opts.OnConnect = onConnectHandler
	}
	if onConnectionLostHandler != nil {
		opts.OnConnectionLost = onConnectionLostHandler
	}
	return &MQTTClient{
		client:         mqtt.NewClient(opts),
		cfg:            cfg.MQTT,
		ledPressRegexp: ledPressCommandExtractor(cfg.MQTT.BaseTopic),
		pinSetRegexp:   pinSetCommandExtractor(cfg.MQTT.BaseTopic),
		pinModeRegexp:  pinModeCommandExtractor(cfg.MQTT.BaseTopic),
	}
}

type MQTTClient struct {
	client         mqtt.Client
	cfg            config.MQTTConfig
	ledPressRegexp *regexp.Regexp
	pinSetRegexp   *regexp.Regexp
	pinModeRegexp  *regexp.Regexp
}

// ParsedMQTTCommand is a command topic match. DeviceId holds the LED name
// or the pin number, depending on Command.
type ParsedMQTTCommand struct {
	DeviceId string
	Command  string
	Payload  string
}

func (c *MQTTClient) baseTopic() string {
	return c.cfg.BaseTopic
}

func (c *MQTTClient) BridgeStateTopic() string {
	return bridgeStateTopic(c.baseTopic())
}

func (c *MQTTClient) SensorStateTopic(sensorId string) string {
	return fmt.Sprintf("%s/sensor/%s/state", c.baseTopic(), sensorId)
}

func (c *MQTTClient) LEDPressTopic(name string) string {
	return fmt.Sprintf("%s/led/%s/press", c.baseTopic(), name)
}

func (c *MQTTClient) IRSendTopic() string {
	return irSendTopic(c.baseTopic())
}

func (c *MQTTClient) PinSetTopic(pin int) string {
	return fmt.Sprintf("%s/pin/%d/set", c.baseTopic(), pin)
}

func (c *MQTTClient) PinModeTopic(pin int) string {
	return fmt.Sprintf("%s/pin/%d/mode", c.baseTopic(), pin)
}

func (c *MQTTClient) HADiscoveryTopic() string {
	return c.cfg.HADiscoveryTopic
}

func (c *MQTTClient) ParseMQTTCommand(msg mqtt.Message) (*ParsedMQTTCommand, error) {
	return c.parseCommand(msg.Topic(), string(msg.Payload()))
}

func (c *MQTTClient) parseCommand(topic, payload string) (*ParsedMQTTCommand, error) {
	if topic == c.IRSendTopic() {
		if payload == "" {
			return nil, errors.New("empty ir send payload")
		}
		return &ParsedMQTTCommand{
			Command: COMMAND_IR_SEND,
			Payload: payload,
		}, nil
	}
	if id, ok := matchId(c.ledPressRegexp, topic); ok {
		return &ParsedMQTTCommand{
			DeviceId: id,
			Command:  COMMAND_LED_PRESS,
			Payload:  payload,
		}, nil
	}
	if id, ok := matchId(c.pinSetRegexp, topic); ok {
		return &ParsedMQTTCommand{
			DeviceId: id,
			Command:  COMMAND_PIN_SET,
			Payload:  payload,
		}, nil
	}
	if id, ok := matchId(c.pinModeRegexp, topic); ok {
		if payload == "" {
			return nil, errors.New("empty pin mode payload")
		}
		return &ParsedMQTTCommand{
			DeviceId: id,
			Command:  COMMAND_PIN_MODE,
			Payload:  payload,
		}, nil
	}
	return nil, errNotACommand
}

// PinNumber parses DeviceId for pin commands.
func (cmd ParsedMQTTCommand) PinNumber() (int, error) {
	return strconv.Atoi(cmd.DeviceId)
}

func matchId(r *regexp.Regexp, topic string) (string, bool) {
	matches := r.FindAllStringSubmatch(topic, 1)
	if len(matches) == 0 || len(matches[0]) != 2 {
		return "", false
	}
	return matches[0][1], true
}

func (c *MQTTClient) Publish(topic string, payload any, qos byte, retain bool, continuation func(error), timeout time.Duration) {
	token := c.client.Publish(topic, qos, retain, payload)
	go func() {
		didTO := token.WaitTimeout(timeout)
		if !didTO {
			continuation(errors.New("MQTT publish timed out"))
		} else {
			continuation(token.Error())
		}
	}()
}

func (c *MQTTClient) Subscribe(topic string, qos byte, handler mqtt.MessageHandler, continuation func(error), timeout time.Duration) {
	token := c.client.Subscribe(topic, qos, handler)
	go func() {
		didTO := token.WaitTimeout(timeout)
		if !didTO {
			continuation(errors.New("MQTT subscribe timed out"))
		} else {
			continuation(token.Error())
		}
	}()
}

func (c *MQTTClient) SubscribeToCommandTopics(handler mqtt.MessageHandler, continuation func(error), timeout time.Duration) {
	token := c.client.SubscribeMultiple(commandTopics(c.baseTopic()), handler)
	go func() {
		didTO := token.WaitTimeout(timeout)
		if !didTO {
			continuation(errors.New("MQTT subscribe timed out"))
		} else {
			continuation(token.Error())
		}
	}()
}

func (c *MQTTClient) Connect(continuation func(error), timeout time.Duration) {
	token := c.client.Connect()
	go func() {
		didTO := token.WaitTimeout(timeout)
		if !didTO {
			continuation(errors.New("MQTT connect timed out"))
		} else {
			continuation(token.Error())
		}
	}()
}

func (c *MQTTClient) Disconnect(timeout time.Duration) {
	c.client.Disconnect(uint(timeout.Milliseconds()))
}

func commandTopics(baseTopic string) map[string]byte {
	return map[string]byte{
		fmt.Sprintf("%s/led/+/press", baseTopic): 1,
		irSendTopic(baseTopic):                   1,
		fmt.Sprintf("%s/pin/+/set", baseTopic):   1,
		fmt.Sprintf("%s/pin/+/mode", baseTopic):  1,
	}
}

func ledPressCommandExtractor(baseTopic string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf("^%s/led/([a-zA-Z0-9_]+)/press$", baseTopic))
}

func pinSetCommandExtractor(baseTopic string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf("^%s/pin/([0-9]+)/set$", baseTopic))
}

func pinModeCommandExtractor(baseTopic string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf("^%s/pin/([0-9]+)/mode$", baseTopic))
}

func irSendTopic(baseTopic string) string {
	return fmt.Sprintf("%s/ir/send", baseTopic)
}

func bridgeStateTopic(baseTopic string) string {
	return fmt.Sprintf("%s/bridge/state", baseTopic)
}
