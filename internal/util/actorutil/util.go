package actorutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/berfenger/irpin2mqtt/internal/core/domain"
	"github.com/berfenger/irpin2mqtt/internal/mqtt"
	"github.com/berfenger/irpin2mqtt/pkg/devapi"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/lmittmann/tint"
	"go.uber.org/zap"
)

func PipeToSelfWithRecover(ctx actor.Context, future *actor.Future, mapFn func(error) any) {
	ctx.ReenterAfter(future, func(msg any, err error) {
		if err != nil {
			ctx.Send(ctx.Self(), mapFn(err))
			return
		}
		ctx.Send(ctx.Self(), msg)
	})
}

func NewActorSystemWithZapLogger(logger *zap.Logger) *actor.ActorSystem {
	stdOutLogger := zap.NewStdLog(logger)

	var slogLevel slog.Level = slog.LevelInfo

	switch logger.Level() {
	case zap.DebugLevel:
		slogLevel = slog.LevelDebug
	case zap.InfoLevel:
		slogLevel = slog.LevelInfo
	case zap.WarnLevel:
		slogLevel = slog.LevelWarn
	case zap.ErrorLevel, zap.PanicLevel, zap.FatalLevel:
		slogLevel = slog.LevelError
	}

	return actor.NewActorSystem(actor.WithLoggerFactory(func(system *actor.ActorSystem) *slog.Logger {
		return slog.New(tint.NewHandler(stdOutLogger.Writer(), &tint.Options{
			Level:      slogLevel,
			TimeFormat: time.DateTime,
			NoColor:    true,
		}))
	}))
}

func ActorLogger(actorName string, logger *zap.Logger) *zap.Logger {
	return logger.With(zap.String("actor", actorName))
}

type irSendPayload struct {
	Entries []any `json:"entries"`
	Repeat  int   `json:"repeat"`
}

// ParsedMQTTCommandToCommand validates the payload of a command topic and
// builds the matching device command.
func ParsedMQTTCommandToCommand(cmd mqtt.ParsedMQTTCommand) (domain.DeviceCommand, error) {
	switch cmd.Command {
	case mqtt.COMMAND_LED_PRESS:
		repeat, err := parseRepeat(cmd.Payload)
		if err != nil {
			return nil, err
		}
		if _, ok := devapi.ResolveLEDName(cmd.DeviceId); !ok {
			return nil, fmt.Errorf("%w: %q", devapi.ErrUnknownLED, cmd.DeviceId)
		}
		return domain.LEDPressCommand{
			Names:  []string{cmd.DeviceId},
			Repeat: repeat,
		}, nil
	case mqtt.COMMAND_IR_SEND:
		payload, err := parseIRSendPayload(cmd.Payload)
		if err != nil {
			return nil, err
		}
		entries, err := devapi.ParseNECEntries(payload.Entries)
		if err != nil {
			return nil, err
		}
		return domain.IRSendCommand{
			Entries: entries,
			Repeat:  payload.Repeat,
		}, nil
	case mqtt.COMMAND_PIN_SET:
		pin, err := cmd.PinNumber()
		if err != nil {
			return nil, err
		}
		value, err := parseLevel(cmd.Payload)
		if err != nil {
			return nil, err
		}
		return domain.PinWriteCommand{
			Pin:   pin,
			Value: value,
		}, nil
	case mqtt.COMMAND_PIN_MODE:
		pin, err := cmd.PinNumber()
		if err != nil {
			return nil, err
		}
		return domain.PinModeCommand{
			Pin:  pin,
			Mode: devapi.PinMode(strings.TrimSpace(cmd.Payload)),
		}, nil
	}
	return nil, fmt.Errorf("unknown command %q", cmd.Command)
}

func parseRepeat(payload string) (int, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" || strings.EqualFold(payload, mqtt.MQTT_PAYLOAD_PRESS) {
		return 0, nil
	}
	repeat, err := strconv.Atoi(payload)
	if err != nil || repeat < 0 {
		return 0, errors.New("repeat must be a non-negative integer")
	}
	return repeat, nil
}

// parseIRSendPayload accepts {"entries": [...], "repeat": n} or a bare array.
func parseIRSendPayload(payload string) (*irSendPayload, error) {
	payload = strings.TrimSpace(payload)
	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()
	if strings.HasPrefix(payload, "[") {
		var entries []any
		if err := dec.Decode(&entries); err != nil {
			return nil, err
		}
		return &irSendPayload{Entries: entries}, nil
	}
	var p irSendPayload
	if err := dec.Decode(&p); err != nil {
		return nil, err
	}
	if len(p.Entries) == 0 {
		return nil, errors.New("no ir code given")
	}
	return &p, nil
}

// parseLevel accepts the HIGH/LOW literals, on/off and integers.
func parseLevel(payload string) (devapi.Level, error) {
	payload = strings.TrimSpace(payload)
	switch payload {
	case mqtt.MQTT_PAYLOAD_ON:
		return devapi.High, nil
	case mqtt.MQTT_PAYLOAD_OFF:
		return devapi.Low, nil
	}
	return devapi.ParseLevel(payload)
}
