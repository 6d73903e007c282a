package actor

import (
	"fmt"
	"time"

	"github.com/berfenger/irpin2mqtt/internal/config"
	"github.com/berfenger/irpin2mqtt/internal/core/domain"
	"github.com/berfenger/irpin2mqtt/internal/core/events"
	. "github.com/berfenger/irpin2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/asynkron/protoactor-go/scheduler"
	"go.uber.org/zap"
)

// MonitorActor polls device status and analog pins and publishes the
// readings on the event stream.
type MonitorActor struct {
	behavior   actor.Behavior
	stash      *Stash
	scheduler  *scheduler.TimerScheduler
	cancelTick scheduler.CancelFunc

	deviceActor *actor.PID
	config      *config.Config
	eventStream *eventstream.EventStream
	failures    uint

	logger *zap.Logger
}

type monitorTick struct {
}

func NewMonitorActor(config *config.Config, deviceActor *actor.PID, eventStream *eventstream.EventStream, logger *zap.Logger) *MonitorActor {
	act := &MonitorActor{
		config:      config,
		deviceActor: deviceActor,
		behavior:    actor.NewBehavior(),
		stash:       &Stash{},
		logger:      ActorLogger(domain.ACTOR_ID_MONITOR, logger),
		eventStream: eventStream,
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *MonitorActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *MonitorActor) pollInterval() time.Duration {
	return time.Duration(state.config.MonitorConfig.PollIntervalMillis) * time.Millisecond
}

func (state *MonitorActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("monitor@starting started")

		if state.config.MonitorConfig.PollIntervalMillis > 0 {
			state.scheduler = scheduler.NewTimerScheduler(ctx)
			// first poll right away
			ctx.Send(ctx.Self(), monitorTick{})
		}

		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	case *actor.Restarting:
	default:
		state.logger.Debug("monitor@starting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MonitorActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("monitor@default: ActorHealthRequest")
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_MONITOR,
			Healthy: true,
			State:   "idle",
		})
	case monitorTick:
		state.logger.Debug("monitor@default tick")
		timeout := state.config.Device.Timeout() + time.Second
		// get status
		PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.deviceActor, domain.GetStatusRequest{}, timeout), func(err error) any {
			return domain.GetStatusResponse{
				ActorResponseMixIn: domain.ActorResponseMixIn{
					ResponseError: err,
				},
			}
		})
		// get analog pins
		if len(state.config.MonitorConfig.AnalogPins) > 0 {
			PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.deviceActor, domain.ReadPinsRequest{
				Pins: state.config.MonitorConfig.AnalogPins,
			}, 2*timeout), func(err error) any {
				return domain.ReadPinsResponse{
					ActorResponseMixIn: domain.ActorResponseMixIn{
						ResponseError: err,
					},
				}
			})
		}

		// schedule next tick
		state.cancelTick = state.scheduler.RequestOnce(state.pollInterval(), ctx.Self(), monitorTick{})
		state.behavior.BecomeStacked(state.WaitingStatusReceive)
	case domain.ReadPinsResponse:
		if msg.HasResponseError() {
			state.logger.Error("monitor@default ReadPinsResponse error", zap.Error(msg.GetResponseError()))
			return
		}
		state.logger.Debug("monitor@default ReadPinsResponse", zap.Int("values", len(msg.Values)))
		for _, ev := range events.PinValuesToUpdateEvents(msg.Values) {
			state.eventStream.Publish(ev)
		}
	case *actor.Stopping:
		if state.cancelTick != nil {
			state.cancelTick()
		}
	default:
		state.logger.Debug("monitor@default: recv", zap.String("type", fmt.Sprintf("%T", msg)))
	}
}

func (state *MonitorActor) WaitingStatusReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.GetStatusResponse:
		if msg.HasResponseError() {
			state.failures++
			state.logger.Error("monitor@waiting GetStatusResponse error", zap.Uint("failures", state.failures), zap.Error(msg.GetResponseError()))
			state.behavior.UnbecomeStacked()
			state.stash.UnstashAll(ctx)
			return
		}
		if state.failures > 0 {
			state.logger.Info("monitor@waiting device reachable again", zap.Uint("failures", state.failures))
			state.failures = 0
		}
		state.logger.Debug("monitor@waiting GetStatusResponse")
		for _, ev := range events.StatusToUpdateEvents(msg.Status) {
			state.eventStream.Publish(ev)
		}

		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	case domain.ActorHealthRequest:
		ctx.Respond(domain.ActorHealthResponse{
			Id:      domain.ACTOR_ID_MONITOR,
			Healthy: true,
			State:   "polling",
		})
	default:
		state.logger.Debug("monitor@waiting: stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}
