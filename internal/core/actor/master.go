package actor

import (
	"errors"
	"fmt"
	"time"

	adactor "github.com/berfenger/irpin2mqtt/internal/adapter/actor"
	"github.com/berfenger/irpin2mqtt/internal/config"
	"github.com/berfenger/irpin2mqtt/internal/core/domain"
	"github.com/berfenger/irpin2mqtt/internal/core/service"
	. "github.com/berfenger/irpin2mqtt/internal/util/actorutil"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"go.uber.org/zap"
)

type MQTTActorProvider func(*eventstream.EventStream) *adactor.MQTTActor

type DeviceActorProvider func() *adactor.DeviceActor

type MasterOfPuppetsActor struct {
	config   config.Config
	behavior actor.Behavior
	stash    *Stash

	currentHealthCheck  healthCheckResult
	eventStream         *eventstream.EventStream
	deviceActor         *actor.PID
	mqttActor           *actor.PID
	monitorActor        *actor.PID
	commandActor        *actor.PID
	deviceActorProvider DeviceActorProvider
	mqttActorProvider   MQTTActorProvider
	logger              *zap.Logger
}

type healthCheckResult struct {
	healthy        map[string]bool
	checksReceived int
	respondTo      *actor.PID
}

var healthCheckedActors = []string{
	domain.ACTOR_ID_DEVICE,
	domain.ACTOR_ID_MQTT,
	domain.ACTOR_ID_MONITOR,
	domain.ACTOR_ID_COMMAND,
}

func NewMasterOfPuppetsActor(config config.Config, deviceActorProvider DeviceActorProvider, mqttActorProvider MQTTActorProvider, logger *zap.Logger) *MasterOfPuppetsActor {
	act := &MasterOfPuppetsActor{
		config:              config,
		behavior:            actor.NewBehavior(),
		stash:               &Stash{},
		logger:              ActorLogger(domain.ACTOR_ID_MASTER, logger),
		eventStream:         &eventstream.EventStream{},
		deviceActorProvider: deviceActorProvider,
		mqttActorProvider:   mqttActorProvider,
	}
	act.behavior.Become(act.StartingReceive)
	return act
}

func (state *MasterOfPuppetsActor) Receive(context actor.Context) {
	state.behavior.Receive(context)
}

func (state *MasterOfPuppetsActor) StartingReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
		state.logger.Debug("master@starting started")

		state.currentHealthCheck = healthCheckResult{}
		state.currentHealthCheck.reset()

		// children start in dependency order: monitor and command need the
		// device actor, discovery needs both device and mqtt
		children := []struct {
			pid   **actor.PID
			start func(actor.Context) (*actor.PID, error)
		}{
			{&state.deviceActor, state.startDeviceActor},
			{&state.mqttActor, state.startMQTTActor},
			{&state.monitorActor, state.startMonitorActor},
			{&state.commandActor, state.startCommandActor},
		}
		for _, child := range children {
			pid, err := child.start(ctx)
			if err != nil {
				panic(err)
			}
			*child.pid = pid
		}

		if state.config.MQTT.HADiscoveryEnable {
			if _, err := state.startHADiscoveryActor(ctx); err != nil {
				panic(err)
			}
		}

		state.behavior.Become(state.DefaultReceive)
		state.stash.UnstashAll(ctx)
	default:
		state.logger.Debug("master@starting stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MasterOfPuppetsActor) DefaultReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case domain.ActorHealthRequest:
		state.logger.Debug("master@default ActorHealthRequest")
		state.currentHealthCheck.reset()
		state.currentHealthCheck.respondTo = ctx.Sender()
		for _, id := range healthCheckedActors {
			state.requestHealth(ctx, id)
		}

		ctx.SetReceiveTimeout(1 * time.Second)

		state.behavior.BecomeStacked(state.HealthCheckReceive)
	case adactor.ParsedCommand:
		// redirect parsedCommand to the command actor
		state.logger.Debug("master@default parsedCommand", zap.Any("command", msg.Command))
		if msg.Command == nil {
			return
		}
		cmd, err := ParsedMQTTCommandToCommand(*msg.Command)
		if err != nil {
			state.logger.Warn("master@default invalid command", zap.String("command", msg.Command.Command), zap.Error(err))
			return
		}
		ctx.Send(state.commandActor, domain.DeviceCommandRequest{
			Command: cmd,
		})
	case domain.DeviceCommandRequest:
		state.logger.Debug("master@default DeviceCommandRequest", zap.String("type", fmt.Sprintf("%T", msg.Command)))
		if msg.ReplyToRef == nil && ctx.Sender() != nil {
			msg.ReplyToRef = RefOf(ctx.Sender())
		}
		ctx.Send(state.commandActor, msg)
	case *actor.Terminated:
		// if some actor fails on boot, terminate
		if msg.Who.Id == fmt.Sprintf("%s/%s", domain.ACTOR_ID_MASTER, domain.ACTOR_ID_DEVICE) {
			state.logger.Error("master@default device error")
			panic(errors.New("device terminated"))
		}
	default:
		state.logger.Debug("master@default stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MasterOfPuppetsActor) HealthCheckReceive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.ReceiveTimeout:
		// if some actor does not respond to healthCheck, assume not healthy
		ctx.SetReceiveTimeout(0)
		state.currentHealthCheck.respond(ctx)
		state.behavior.UnbecomeStacked()
		state.stash.UnstashAll(ctx)
	case domain.ActorHealthResponse:
		state.logger.Debug("master@healthcheck ActorHealthResponse", zap.String("sender", msg.Id), zap.Bool("healthy", msg.Healthy))
		state.currentHealthCheck.checksReceived++
		if msg.Healthy {
			state.currentHealthCheck.healthy[msg.Id] = true
		}
		if state.currentHealthCheck.allReceived() {
			ctx.SetReceiveTimeout(0)
			state.currentHealthCheck.respond(ctx)

			state.behavior.UnbecomeStacked()
			state.stash.UnstashAll(ctx)
		} else {
			ctx.SetReceiveTimeout(1 * time.Second)
		}
	default:
		state.logger.Debug("master@healthcheck stash", zap.String("type", fmt.Sprintf("%T", msg)))
		state.stash.Stash(ctx, msg)
	}
}

func (state *MasterOfPuppetsActor) requestHealth(ctx actor.Context, id string) {
	PipeToSelfWithRecover(ctx, ctx.RequestFuture(state.childPID(id), domain.ActorHealthRequest{}, 500*time.Millisecond), func(err error) any {
		return domain.ActorHealthResponse{
			Id:      id,
			Healthy: false,
		}
	})
}

func (state *MasterOfPuppetsActor) childPID(id string) *actor.PID {
	switch id {
	case domain.ACTOR_ID_DEVICE:
		return state.deviceActor
	case domain.ACTOR_ID_MQTT:
		return state.mqttActor
	case domain.ACTOR_ID_MONITOR:
		return state.monitorActor
	default:
		return state.commandActor
	}
}

// restartOnce restarts a failing child once within 10s, then stops it.
func (state *MasterOfPuppetsActor) restartOnce(id string) actor.SupervisorStrategy {
	logger := state.logger.With(zap.String("child", id))
	return actor.NewOneForOneStrategy(1, 10*time.Second, func(reason interface{}) actor.Directive {
		logger.Warn("master: child failed, restarting", zap.Any("reason", reason))
		return actor.RestartDirective
	})
}

// backoff is used for the children owning a connection: the device client
// and the MQTT session.
func backoff() actor.SupervisorStrategy {
	return actor.NewExponentialBackoffStrategy(10*time.Second, 1*time.Second)
}

func (state *MasterOfPuppetsActor) spawnChild(ctx actor.Context, id string, supervisor actor.SupervisorStrategy, producer func() actor.Actor) (*actor.PID, error) {
	props := actor.PropsFromProducer(producer, actor.WithSupervisor(supervisor))
	pid, err := ctx.SpawnNamed(props, id)
	if err != nil {
		return nil, fmt.Errorf("spawn %s: %w", id, err)
	}
	return pid, nil
}

func (state *MasterOfPuppetsActor) startDeviceActor(ctx actor.Context) (*actor.PID, error) {
	return state.spawnChild(ctx, domain.ACTOR_ID_DEVICE, backoff(), func() actor.Actor {
		return state.deviceActorProvider()
	})
}

func (state *MasterOfPuppetsActor) startMQTTActor(ctx actor.Context) (*actor.PID, error) {
	return state.spawnChild(ctx, domain.ACTOR_ID_MQTT, backoff(), func() actor.Actor {
		return state.mqttActorProvider(state.eventStream)
	})
}

func (state *MasterOfPuppetsActor) startMonitorActor(ctx actor.Context) (*actor.PID, error) {
	return state.spawnChild(ctx, domain.ACTOR_ID_MONITOR, state.restartOnce(domain.ACTOR_ID_MONITOR), func() actor.Actor {
		return NewMonitorActor(&state.config, state.deviceActor, state.eventStream, state.logger)
	})
}

func (state *MasterOfPuppetsActor) startCommandActor(ctx actor.Context) (*actor.PID, error) {
	resolver := &service.IRCommandService{
		Legacy: state.config.IR.LegacyHeader,
		Logger: state.logger,
	}
	return state.spawnChild(ctx, domain.ACTOR_ID_COMMAND, state.restartOnce(domain.ACTOR_ID_COMMAND), func() actor.Actor {
		return NewCommandActor(&state.config, state.deviceActor, resolver, state.eventStream, state.logger)
	})
}

func (state *MasterOfPuppetsActor) startHADiscoveryActor(ctx actor.Context) (*actor.PID, error) {
	return state.spawnChild(ctx, domain.ACTOR_ID_HA_DISCOVERY, state.restartOnce(domain.ACTOR_ID_HA_DISCOVERY), func() actor.Actor {
		return NewHADiscoveryActor(&state.config, state.deviceActor, state.mqttActor, state.logger)
	})
}

func (state *healthCheckResult) reset() {
	state.healthy = make(map[string]bool, len(healthCheckedActors))
	state.checksReceived = 0
}

func (state *healthCheckResult) allReceived() bool {
	return state.checksReceived == len(healthCheckedActors)
}

func (state *healthCheckResult) allHealthy() bool {
	for _, id := range healthCheckedActors {
		if !state.healthy[id] {
			return false
		}
	}
	return true
}

func (state *healthCheckResult) respond(ctx actor.Context) {
	resp := domain.ActorHealthResponse{
		Id:      domain.ACTOR_ID_MASTER,
		Healthy: state.allHealthy(),
	}
	if state.respondTo != nil {
		ctx.Send(state.respondTo, resp)
	}
}
