package actor

import (
	"context"
	"fmt"
	"time"

	"github.com/berfenger/irpin2mqtt/internal/core/domain"
	"github.com/berfenger/irpin2mqtt/internal/util/actorutil"
	"github.com/berfenger/irpin2mqtt/pkg/devapi"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

// DeviceActor owns the device client. Calls run one at a time; requests
// received meanwhile are stashed.
type DeviceActor struct {
	behavior  actor.Behavior
	stash     *actorutil.Stash
	client    devapi.DeviceClient
	timeout   time.Duration
	irTimeout time.Duration
	logger    *zap.Logger
}

type backgroundTaskResult struct {
	message any
	replyTo *actor.PID
}

func NewDeviceActor(client devapi.DeviceClient, timeout, irTimeout time.Duration, logger *zap.Logger) *DeviceActor {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	if irTimeout < timeout {
		irTimeout = timeout
	}
	act := &DeviceActor{
		client:    client,
		timeout:   timeout,
		irTimeout: irTimeout,
		behavior:  actor.NewBehavior(),
		stash:     &actorutil.Stash{},
		logger:    actorutil.ActorLogger(domain.ACTOR_ID_DEVICE, logger),
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *DeviceActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *DeviceActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("device@starting started")
		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	case *actor.Restarting:
	default:
		state.logger.Debug("device@starting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *DeviceActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("device@default: ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_DEVICE,
			Healthy: true,
			State:   "idle",
		})
	case domain.GetStatusRequest:
		state.logger.Debug("device@default: GetStatusRequest")
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		runDeviceTask(ctx, sender, state.timeout, func(c context.Context) (*domain.GetStatusResponse, error) {
			status, err := state.client.GetStatus(c)
			if err != nil {
				return nil, err
			}
			return &domain.GetStatusResponse{Status: status}, nil
		}, func(err error) domain.GetStatusResponse {
			return domain.GetStatusResponse{ActorResponseMixIn: errorResponse(err)}
		})
		state.behavior.BecomeStacked(state.WaitingDevice)
	case domain.ReadPinsRequest:
		state.logger.Debug("device@default: ReadPinsRequest", zap.Ints("pins", msg.Pins))
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		runDeviceTask(ctx, sender, state.timeout, func(c context.Context) (*domain.ReadPinsResponse, error) {
			values, err := state.client.ReadPins(c, msg.Pins)
			if err != nil {
				return nil, err
			}
			return &domain.ReadPinsResponse{Values: values}, nil
		}, func(err error) domain.ReadPinsResponse {
			return domain.ReadPinsResponse{ActorResponseMixIn: errorResponse(err)}
		})
		state.behavior.BecomeStacked(state.WaitingDevice)
	case domain.WritePinsRequest:
		state.logger.Debug("device@default: WritePinsRequest", zap.Int("writes", len(msg.Writes)))
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		runDeviceTask(ctx, sender, state.timeout, func(c context.Context) (*domain.WritePinsResponse, error) {
			var err error
			if len(msg.Writes) == 1 {
				err = state.client.WritePin(c, msg.Writes[0].Pin, msg.Writes[0].Value)
			} else {
				err = state.client.WritePins(c, msg.Writes)
			}
			if err != nil {
				return nil, err
			}
			return &domain.WritePinsResponse{}, nil
		}, func(err error) domain.WritePinsResponse {
			return domain.WritePinsResponse{ActorResponseMixIn: errorResponse(err)}
		})
		state.behavior.BecomeStacked(state.WaitingDevice)
	case domain.SetPinModeRequest:
		state.logger.Debug("device@default: SetPinModeRequest", zap.Int("pin", msg.Pin), zap.String("mode", string(msg.Mode)))
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		runDeviceTask(ctx, sender, state.timeout, func(c context.Context) (*domain.SetPinModeResponse, error) {
			var err error
			if msg.Mode == devapi.ModeBusy {
				err = state.client.SetBusyPin(c, msg.Pin)
			} else {
				err = state.client.SetPinMode(c, msg.Pin, msg.Mode)
			}
			if err != nil {
				return nil, err
			}
			return &domain.SetPinModeResponse{}, nil
		}, func(err error) domain.SetPinModeResponse {
			return domain.SetPinModeResponse{ActorResponseMixIn: errorResponse(err)}
		})
		state.behavior.BecomeStacked(state.WaitingDevice)
	case domain.SendIRRequest:
		state.logger.Debug("device@default: SendIRRequest", zap.String("label", msg.Label), zap.Int("repeat", msg.Repeat))
		sender := actorutil.ForRequest(msg).ReplyTo(ctx)
		runDeviceTask(ctx, sender, state.irTimeout, func(c context.Context) (*domain.SendIRResponse, error) {
			err := state.client.SendIRCodes(c, msg.Codes, msg.Repeat)
			if err != nil {
				return nil, err
			}
			return &domain.SendIRResponse{Label: msg.Label}, nil
		}, func(err error) domain.SendIRResponse {
			return domain.SendIRResponse{ActorResponseMixIn: errorResponse(err), Label: msg.Label}
		})
		state.behavior.BecomeStacked(state.WaitingDevice)
	default:
		state.logger.Debug("device@default default recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *DeviceActor) WaitingDevice(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case backgroundTaskResult:
		state.logger.Debug("device@WaitingDevice backgroundTaskResult", zap.String("type", fmt.Sprintf("%T", msg.message)))
		if resp, ok := msg.message.(domain.ActorResponse); ok && resp.HasResponseError() {
			state.logger.Warn("device@WaitingDevice request failed", zap.Error(resp.GetResponseError()))
		}
		if msg.replyTo != nil {
			ctx.Send(msg.replyTo, msg.message)
		}
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	case domain.ActorHealthRequest:
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_DEVICE,
			Healthy: true,
			State:   "busy",
		})
	default:
		state.logger.Debug("device@WaitingDevice stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

// runDeviceTask runs fn in the background and pipes the response, or the
// recovered error response, back to the actor tagged with its recipient.
func runDeviceTask[T any](ctx actor.Context, sender *actor.PID, timeout time.Duration,
	fn func(context.Context) (*T, error), recoverFn func(error) T) {
	actorutil.MapBackgroundTask(actorutil.NewContextTask(ctx, timeout, fn),
		mapTaskResult[T](sender)).Recover(func(err error) backgroundTaskResult {
		return backgroundTaskResult{
			message: recoverFn(err),
			replyTo: sender,
		}
	}).PipeTo(ctx.Self())
}

func errorResponse(err error) domain.ActorResponseMixIn {
	return domain.ActorResponseMixIn{
		ResponseError: err,
	}
}

func mapTaskResult[T any](sender *actor.PID) func(t *T) *backgroundTaskResult {
	return func(t *T) *backgroundTaskResult {
		return &backgroundTaskResult{
			message: *t,
			replyTo: sender,
		}
	}
}
