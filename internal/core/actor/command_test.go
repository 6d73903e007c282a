package actor

import (
	"sync"
	"testing"
	"time"

	adactor "github.com/berfenger/irpin2mqtt/internal/adapter/actor"
	"github.com/berfenger/irpin2mqtt/internal/core/domain"
	"github.com/berfenger/irpin2mqtt/internal/core/service"
	"github.com/berfenger/irpin2mqtt/internal/util"
	"github.com/berfenger/irpin2mqtt/internal/util/actorutil"
	"github.com/berfenger/irpin2mqtt/pkg/devapi"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type eventRecorder struct {
	mu     sync.Mutex
	events []any
}

func (r *eventRecorder) record(ev any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *eventRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

func (r *eventRecorder) textEvents() []domain.TextSensorUpdateEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.TextSensorUpdateEvent
	for _, ev := range r.events {
		if t, ok := ev.(domain.TextSensorUpdateEvent); ok {
			out = append(out, t)
		}
	}
	return out
}

func (r *eventRecorder) intEvents() map[string]int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := map[string]int64{}
	for _, ev := range r.events {
		if f, ok := ev.(domain.IntSensorUpdateEvent); ok {
			out[f.Id] = f.Value
		}
	}
	return out
}

func spawnCommandActor(t *testing.T, legacy bool) (*actor.ActorSystem, *actor.PID, *devapi.TestDeviceClient, *eventRecorder) {
	cfg := util.LoadTestConfig()
	logger := zap.Must(zap.NewDevelopment())
	as := actorutil.NewActorSystemWithZapLogger(logger)

	client := &devapi.TestDeviceClient{}
	devicePID := as.Root.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return adactor.NewDeviceActor(client, time.Second, 2*time.Second, logger)
	}))

	es := &eventstream.EventStream{}
	rec := &eventRecorder{}
	es.Subscribe(rec.record)

	resolver := &service.IRCommandService{Legacy: legacy, Logger: logger}
	pid := as.Root.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return NewCommandActor(&cfg, devicePID, resolver, es, logger)
	}))

	time.Sleep(100 * time.Millisecond)

	return as, pid, client, rec
}

func sendCommand(t *testing.T, as *actor.ActorSystem, pid *actor.PID, cmd domain.DeviceCommand) domain.DeviceCommandResponse {
	res, err := as.Root.RequestFuture(pid, domain.DeviceCommandRequest{Command: cmd}, 5*time.Second).Result()
	require.NoError(t, err)
	resp, ok := res.(domain.DeviceCommandResponse)
	require.True(t, ok, "unexpected response %T", res)
	return resp
}

func TestCommandActorLEDPress(t *testing.T) {

	assert := assert.New(t)

	as, pid, client, rec := spawnCommandActor(t, false)

	resp := sendCommand(t, as, pid, domain.LEDPressCommand{Names: []string{"r1"}, Repeat: 2})
	assert.False(resp.HasResponseError())

	sent := client.IRSent()
	assert.Len(sent, 3, "one transmission plus two repeats")
	assert.Equal([]devapi.IRCode{devapi.NECHeader(), devapi.Code(16722645)}, sent[0])

	assert.Eventually(func() bool {
		return len(rec.textEvents()) == 1
	}, 2*time.Second, 20*time.Millisecond)
	assert.Equal(domain.SENSOR_ID_LAST_IR_COMMAND, rec.textEvents()[0].Id)
	assert.Equal("RED1 x2", rec.textEvents()[0].Value)

	as.Shutdown()
}

func TestCommandActorLegacyHeader(t *testing.T) {

	assert := assert.New(t)

	as, pid, client, _ := spawnCommandActor(t, true)

	resp := sendCommand(t, as, pid, domain.LEDPressCommand{Names: []string{"POWER"}})
	assert.False(resp.HasResponseError())

	sent := client.IRSent()
	if assert.Len(sent, 1) {
		assert.Equal([]devapi.IRCode{devapi.Code(16712445).WithProtocol(devapi.ProtocolNEC).WithBits(devapi.NECBits)}, sent[0])
	}

	as.Shutdown()
}

func TestCommandActorRejectsUnknownLED(t *testing.T) {

	assert := assert.New(t)

	as, pid, client, rec := spawnCommandActor(t, false)

	resp := sendCommand(t, as, pid, domain.LEDPressCommand{Names: []string{"LASER"}})
	assert.True(resp.HasResponseError())
	assert.ErrorIs(resp.GetResponseError(), devapi.ErrUnknownLED)
	assert.Empty(client.IRSent())
	assert.Empty(rec.textEvents())

	// still idle and usable
	resp = sendCommand(t, as, pid, domain.IRSendCommand{Entries: []devapi.NECEntry{devapi.WithDelay(0xF7C03F, 40000)}})
	assert.False(resp.HasResponseError())
	assert.Len(client.IRSent(), 1)

	as.Shutdown()
}

func TestCommandActorPins(t *testing.T) {

	assert := assert.New(t)

	as, pid, client, _ := spawnCommandActor(t, false)

	// queued while the previous command waits on the device
	f1 := as.Root.RequestFuture(pid, domain.DeviceCommandRequest{Command: domain.PinWriteCommand{Pin: 5, Value: devapi.Low}}, 5*time.Second)
	f2 := as.Root.RequestFuture(pid, domain.DeviceCommandRequest{Command: domain.PinModeCommand{Pin: 6, Mode: devapi.ModeBusy}}, 5*time.Second)

	for _, f := range []*actor.Future{f1, f2} {
		res, err := f.Result()
		assert.NoError(err)
		assert.False(res.(domain.DeviceCommandResponse).HasResponseError())
	}

	assert.Equal([]devapi.PinWrite{{Pin: 5, Value: devapi.Low}}, client.Writes())
	assert.Equal([]devapi.PinModeConfig{{Pin: 6, Mode: devapi.ModeBusy}}, client.Modes())

	as.Shutdown()
}
