package events

import (
	"fmt"
	"strings"

	. "github.com/berfenger/irpin2mqtt/internal/core/domain"
	"github.com/berfenger/irpin2mqtt/pkg/devapi"
)

func StatusToUpdateEvents(status *devapi.Status) []any {
	return []any{
		IntSensorUpdateEvent{
			SensorRef: SensorRef{Id: SENSOR_ID_REQUESTS_PROCESSED},
			Value:     status.RequestsProcessed,
		},
		IntSensorUpdateEvent{
			SensorRef: SensorRef{Id: SENSOR_ID_UPTIME},
			Value:     status.UptimeSeconds,
		},
	}
}

func PinValuesToUpdateEvents(values []devapi.PinValue) []any {
	var events []any
	for _, v := range values {
		events = append(events, IntSensorUpdateEvent{
			SensorRef: SensorRef{Id: AnalogPinSensorId(v.Pin)},
			Value:     int64(v.Value),
		})
	}
	return events
}

// IRCommandUpdateEvents renders the last transmitted command as text,
// e.g. "ON x2" or "NEC 0xF7C03F".
func IRCommandUpdateEvents(label string, repeat int) []any {
	text := label
	if repeat > 0 {
		text = fmt.Sprintf("%s x%d", label, repeat)
	}
	return []any{
		TextSensorUpdateEvent{
			SensorRef: SensorRef{Id: SENSOR_ID_LAST_IR_COMMAND},
			Value:     strings.TrimSpace(text),
		},
	}
}

func BridgeStateUpdateEvents(online bool) []any {
	return []any{
		BridgeStateUpdateEvent{
			SensorRef: SensorRef{Id: SENSOR_ID_BRIDGE_STATE},
			Online:    online,
		},
	}
}
