package events

import (
	"testing"

	"github.com/berfenger/irpin2mqtt/internal/core/domain"
	"github.com/berfenger/irpin2mqtt/pkg/devapi"

	"github.com/stretchr/testify/assert"
)

func TestStatusToUpdateEvents(t *testing.T) {

	assert := assert.New(t)

	evs := StatusToUpdateEvents(&devapi.Status{RequestsProcessed: 42, UptimeSeconds: 125})
	assert.Len(evs, 2)

	requests := evs[0].(domain.IntSensorUpdateEvent)
	assert.Equal(domain.SENSOR_ID_REQUESTS_PROCESSED, requests.SensorId())
	assert.Equal(int64(42), requests.Value)
	assert.Equal("42", requests.Payload())
	assert.False(requests.Retained())

	uptime := evs[1].(domain.IntSensorUpdateEvent)
	assert.Equal(domain.SENSOR_ID_UPTIME, uptime.SensorId())
	assert.Equal(int64(125), uptime.Value)
}

func TestPinValuesToUpdateEvents(t *testing.T) {

	assert := assert.New(t)

	evs := PinValuesToUpdateEvents([]devapi.PinValue{{Pin: 3, Value: 512}, {Pin: 1, Value: 0}})
	assert.Len(evs, 2)
	assert.Equal("analog_pin_3", evs[0].(domain.IntSensorUpdateEvent).SensorId())
	assert.Equal(int64(512), evs[0].(domain.IntSensorUpdateEvent).Value)
	assert.Equal("analog_pin_1", evs[1].(domain.IntSensorUpdateEvent).SensorId())

	assert.Empty(PinValuesToUpdateEvents(nil))
}

func TestIRCommandUpdateEvents(t *testing.T) {

	assert := assert.New(t)

	ev := IRCommandUpdateEvents("ON", 0)[0].(domain.TextSensorUpdateEvent)
	assert.Equal(domain.SENSOR_ID_LAST_IR_COMMAND, ev.SensorId())
	assert.Equal("ON", ev.Value)

	ev = IRCommandUpdateEvents("RED", 3)[0].(domain.TextSensorUpdateEvent)
	assert.Equal("RED x3", ev.Value)
}
