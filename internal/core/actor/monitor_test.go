package actor

import (
	"testing"
	"time"

	adactor "github.com/berfenger/irpin2mqtt/internal/adapter/actor"
	"github.com/berfenger/irpin2mqtt/internal/core/domain"
	"github.com/berfenger/irpin2mqtt/internal/util"
	"github.com/berfenger/irpin2mqtt/internal/util/actorutil"
	"github.com/berfenger/irpin2mqtt/pkg/devapi"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/asynkron/protoactor-go/eventstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMonitorActor(t *testing.T) {

	assert := assert.New(t)

	cfg := util.LoadTestConfig()
	logger := zap.Must(zap.NewDevelopment())
	as := actorutil.NewActorSystemWithZapLogger(logger)
	context := as.Root

	client := &devapi.TestDeviceClient{}
	devicePID := context.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return adactor.NewDeviceActor(client, time.Second, 2*time.Second, logger)
	}))

	es := &eventstream.EventStream{}
	rec := &eventRecorder{}
	es.Subscribe(rec.record)

	pid := context.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return NewMonitorActor(&cfg, devicePID, es, logger)
	}))

	// first poll runs right away
	assert.Eventually(func() bool {
		return len(rec.intEvents()) == 2+len(cfg.MonitorConfig.AnalogPins)
	}, 2*time.Second, 20*time.Millisecond)

	values := rec.intEvents()
	assert.Equal(int64(125), values[domain.SENSOR_ID_UPTIME])
	assert.Contains(values, domain.SENSOR_ID_REQUESTS_PROCESSED)
	assert.Equal(int64(10), values[domain.AnalogPinSensorId(1)])
	assert.Equal(int64(20), values[domain.AnalogPinSensorId(2)])
	assert.Equal(int64(30), values[domain.AnalogPinSensorId(3)])

	res, err := context.RequestFuture(pid, domain.ActorHealthRequest{}, 2*time.Second).Result()
	require.NoError(t, err)
	assert.True(res.(domain.ActorHealthResponse).Healthy)

	// second poll after the interval
	first := rec.count()
	time.Sleep(time.Duration(cfg.MonitorConfig.PollIntervalMillis)*time.Millisecond + 500*time.Millisecond)
	assert.Greater(rec.count(), first)

	context.Stop(pid)

	as.Shutdown()
}
