package actor

import (
	"fmt"
	"time"

	"github.com/berfenger/irpin2mqtt/internal/config"
	"github.com/berfenger/irpin2mqtt/internal/core/domain"
	"github.com/berfenger/irpin2mqtt/internal/core/events"
	"github.com/berfenger/irpin2mqtt/internal/core/port"
	. "github.com/berfenger/irpin2mqtt/internal/util/actorutil"
	"github.com/berfenger/irpin2mqtt/pkg/devapi"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"go.uber.org/zap"
)

// MaxQueuedCommands bounds the commands waiting while one is in flight.
const MaxQueuedCommands = 16

// CommandActor turns device commands into device actor requests, one at a
// time, and publishes the last transmitted IR command.
type CommandActor struct {
	ActorWithStates
	stash       *Stash
	deviceActor *actor.PID
	resolver    port.IRCommandResolver
	config      *config.Config
	eventStream *eventstream.EventStream

	logger *zap.Logger
}

func NewCommandActor(config *config.Config, deviceActor *actor.PID, resolver port.IRCommandResolver, eventStream *eventstream.EventStream, logger *zap.Logger) *CommandActor {
	act := &CommandActor{
		config:      config,
		deviceActor: deviceActor,
		resolver:    resolver,
		eventStream: eventStream,
		stash:       &Stash{Limit: MaxQueuedCommands},
		logger:      ActorLogger(domain.ACTOR_ID_COMMAND, logger),
		ActorWithStates: ActorWithStates{
			Behavior: actor.NewBehavior(),
		},
	}
	act.Become(CMDIdleState{
		actor: act,
	})
	return act
}

func (state *CommandActor) Receive(context actor.Context) {
	state.Behavior.Receive(context)
}

// Idle state

type CMDIdleState struct {
	ActorState
	actor *CommandActor
}

func (state CMDIdleState) Name() string {
	return "idle"
}

func (state CMDIdleState) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.actor.logger.Debug("command@idle started")
	case domain.ActorHealthRequest:
		state.actor.logger.Debug("command@idle: ActorHealthRequest")
		state.actor.respondHealth(ctx)
	case domain.DeviceCommandRequest:
		replyTo := ForRequest(msg).ReplyTo(ctx)
		request, ir, timeout, err := state.actor.deviceRequest(msg.Command)
		if err != nil {
			state.actor.logger.Warn("command@idle: rejected", zap.String("command", fmt.Sprintf("%T", msg.Command)), zap.Error(err))
			Reply(ctx, replyTo, commandResponse(err))
			return
		}
		state.actor.logger.Debug("command@idle: command", zap.String("command", fmt.Sprintf("%T", msg.Command)))
		state.actor.Become(NewCMDAwaitDeviceState(state.actor, replyTo, ir).OnEnterAction(ctx, request, timeout))
	default:
		state.actor.logger.Debug("command@idle: recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

// Awaiting device response state

type CMDAwaitDeviceState struct {
	ActorState
	actor   *CommandActor
	replyTo *actor.PID
	ir      *port.IRCommand
}

func NewCMDAwaitDeviceState(fromActor *CommandActor, replyTo *actor.PID, ir *port.IRCommand) CMDAwaitDeviceState {
	return CMDAwaitDeviceState{
		actor:   fromActor,
		replyTo: replyTo,
		ir:      ir,
	}
}

func (state CMDAwaitDeviceState) Name() string {
	return "awaitDevice"
}

func (state CMDAwaitDeviceState) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.actor.respondHealth(ctx)
	case domain.SendIRResponse:
		if msg.HasResponseError() {
			state.actor.logger.Error("command@awaitDevice: SendIRResponse error", zap.Error(msg.GetResponseError()))
		} else {
			state.actor.logger.Debug("command@awaitDevice: SendIRResponse", zap.String("label", msg.Label))
			if state.ir != nil {
				state.actor.publishIRCommand(state.ir)
			}
		}
		state.done(ctx, msg.GetResponseError())
	case domain.WritePinsResponse:
		if msg.HasResponseError() {
			state.actor.logger.Error("command@awaitDevice: WritePinsResponse error", zap.Error(msg.GetResponseError()))
		}
		state.done(ctx, msg.GetResponseError())
	case domain.SetPinModeResponse:
		if msg.HasResponseError() {
			state.actor.logger.Error("command@awaitDevice: SetPinModeResponse error", zap.Error(msg.GetResponseError()))
		}
		state.done(ctx, msg.GetResponseError())
	case domain.DeviceCommandRequest:
		if !state.actor.stash.Stash(ctx, msg) {
			state.actor.logger.Warn("command@awaitDevice: queue full", zap.Int("queued", state.actor.stash.Len()))
			Reply(ctx, ForRequest(msg).ReplyTo(ctx), commandResponse(domain.ErrCommandQueueFull))
		}
	default:
		state.actor.logger.Debug("command@awaitDevice: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.actor.stash.Stash(ctx, msg)
	}
}

func (state CMDAwaitDeviceState) OnEnterAction(ctx actor.Context, request any, timeout time.Duration) CMDAwaitDeviceState {
	PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.actor.deviceActor, request, timeout), func(err error) any {
		return errorResponseFor(request, err)
	})
	return state
}

func (state CMDAwaitDeviceState) done(ctx actor.Context, err error) {
	Reply(ctx, state.replyTo, commandResponse(err))
	state.actor.Become(CMDIdleState{
		actor: state.actor,
	})
	state.actor.stash.UnstashAll(ctx)
}

// Other actor function helpers

func (state *CommandActor) respondHealth(ctx actor.Context) {
	ctx.Respond(domain.ActorHealthResponse{
		Id:      domain.ACTOR_ID_COMMAND,
		Healthy: true,
		State:   state.StateName(),
	})
}

func commandResponse(err error) domain.DeviceCommandResponse {
	return domain.DeviceCommandResponse{
		ActorResponseMixIn: domain.ActorResponseMixIn{
			ResponseError: err,
		},
	}
}

// deviceRequest maps a command to the device actor request that executes it.
func (state *CommandActor) deviceRequest(cmd domain.DeviceCommand) (any, *port.IRCommand, time.Duration, error) {
	switch c := cmd.(type) {
	case domain.LEDPressCommand:
		if c.DelayMicros == 0 {
			c.DelayMicros = state.config.IR.LEDDelayMicros
		}
		ir, err := state.resolver.ResolveLEDPress(c)
		if err != nil {
			return nil, nil, 0, err
		}
		return sendIRRequest(ir), ir, state.irTimeout(), nil
	case domain.IRSendCommand:
		ir, err := state.resolver.ResolveIRSend(c)
		if err != nil {
			return nil, nil, 0, err
		}
		return sendIRRequest(ir), ir, state.irTimeout(), nil
	case domain.PinWriteCommand:
		return domain.WritePinsRequest{Writes: []devapi.PinWrite{{Pin: c.Pin, Value: c.Value}}}, nil, state.pinTimeout(), nil
	case domain.PinModeCommand:
		return domain.SetPinModeRequest{Pin: c.Pin, Mode: c.Mode}, nil, state.pinTimeout(), nil
	}
	return nil, nil, 0, fmt.Errorf("unsupported command %T", cmd)
}

func sendIRRequest(ir *port.IRCommand) domain.SendIRRequest {
	return domain.SendIRRequest{
		Label:  ir.Label,
		Codes:  ir.Codes,
		Repeat: ir.Repeat,
	}
}

func (state *CommandActor) pinTimeout() time.Duration {
	return state.config.Device.Timeout() + time.Second
}

func (state *CommandActor) irTimeout() time.Duration {
	return max(state.config.IR.TransmitTimeout(), state.config.Device.Timeout()) + time.Second
}

func (state *CommandActor) publishIRCommand(ir *port.IRCommand) {
	for _, ev := range events.IRCommandUpdateEvents(ir.Label, ir.Repeat) {
		state.eventStream.Publish(ev)
	}
}

func errorResponseFor(request any, err error) any {
	mixin := domain.ActorResponseMixIn{
		ResponseError: err,
	}
	switch r := request.(type) {
	case domain.SendIRRequest:
		return domain.SendIRResponse{ActorResponseMixIn: mixin, Label: r.Label}
	case domain.WritePinsRequest:
		return domain.WritePinsResponse{ActorResponseMixIn: mixin}
	default:
		return domain.SetPinModeResponse{ActorResponseMixIn: mixin}
	}
}
