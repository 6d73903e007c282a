package domain

import "strconv"

const (
	BRIDGE_STATE_ONLINE  = "online"
	BRIDGE_STATE_OFFLINE = "offline"
)

// SensorUpdateEvent is a new state for one published entity. Payload is the
// state payload as published, Retained tells whether it should outlive the
// bridge session.
type SensorUpdateEvent interface {
	SensorId() string
	Payload() string
	Retained() bool
}

type SensorRef struct {
	Id string
}

func (r SensorRef) SensorId() string {
	return r.Id
}

// IntSensorUpdateEvent carries counters and raw readings: request count,
// uptime and analog pin values.
type IntSensorUpdateEvent struct {
	SensorRef
	Value int64
}

func (e IntSensorUpdateEvent) Payload() string {
	return strconv.FormatInt(e.Value, 10)
}

func (e IntSensorUpdateEvent) Retained() bool {
	return false
}

type TextSensorUpdateEvent struct {
	SensorRef
	Value string
}

func (e TextSensorUpdateEvent) Payload() string {
	return e.Value
}

func (e TextSensorUpdateEvent) Retained() bool {
	return true
}

type BridgeStateUpdateEvent struct {
	SensorRef
	Online bool
}

func (e BridgeStateUpdateEvent) Payload() string {
	if e.Online {
		return BRIDGE_STATE_ONLINE
	}
	return BRIDGE_STATE_OFFLINE
}

func (e BridgeStateUpdateEvent) Retained() bool {
	return true
}
