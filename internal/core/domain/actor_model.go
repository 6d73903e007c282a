package domain

import (
	"github.com/berfenger/irpin2mqtt/pkg/devapi"

	"github.com/asynkron/protoactor-go/actor"
)

const (
	ACTOR_ID_MASTER       = "master"
	ACTOR_ID_DEVICE       = "device"
	ACTOR_ID_MONITOR      = "monitor"
	ACTOR_ID_MQTT         = "mqtt"
	ACTOR_ID_HA_DISCOVERY = "hadiscovery"
	ACTOR_ID_COMMAND      = "command"
)

type ActorRef actor.PID

type ActorRequestMixIn struct {
	ReplyToRef *ActorRef
}

type ActorRequest interface {
	ReplyTo() *ActorRef
}

func (r ActorRequestMixIn) ReplyTo() *ActorRef {
	return r.ReplyToRef
}

type ActorResponseMixIn struct {
	ResponseError error
}

func (r ActorResponseMixIn) GetResponseError() error {
	return r.ResponseError
}

func (r ActorResponseMixIn) HasResponseError() bool {
	return r.ResponseError != nil
}

type ActorResponse interface {
	GetResponseError() error
	HasResponseError() bool
}

// device actor

type GetStatusRequest struct {
	ActorRequestMixIn
}

type GetStatusResponse struct {
	ActorResponseMixIn
	Status *devapi.Status
}

type ReadPinsRequest struct {
	ActorRequestMixIn
	Pins []int
}

type ReadPinsResponse struct {
	ActorResponseMixIn
	Values []devapi.PinValue
}

type WritePinsRequest struct {
	ActorRequestMixIn
	Writes []devapi.PinWrite
}

type WritePinsResponse struct {
	ActorResponseMixIn
}

type SetPinModeRequest struct {
	ActorRequestMixIn
	Pin  int
	Mode devapi.PinMode
}

type SetPinModeResponse struct {
	ActorResponseMixIn
}

type SendIRRequest struct {
	ActorRequestMixIn
	Label  string
	Codes  []devapi.IRCode
	Repeat int
}

type SendIRResponse struct {
	ActorResponseMixIn
	Label string
}

// mqtt actor

type PublishMessageRequest struct {
	ActorRequestMixIn
	Topic   string
	Payload string
	Retain  bool
}

type PublishMessageResponse struct {
	ActorResponseMixIn
}

type PublishSensorUpdateRequest struct {
	ActorRequestMixIn
	Retain bool
	Event  SensorUpdateEvent
}

type PublishSensorUpdateResponse struct {
	ActorResponseMixIn
}

type PublishDiscoveryRequest struct {
	ActorRequestMixIn
	Sensors []GenericSensor
	Buttons []GenericButton
}

type PublishDiscoveryResponse struct {
	ActorResponseMixIn
}

// all actors

type ActorHealthRequest struct {
	ActorRequestMixIn
}

type ActorHealthResponse struct {
	ActorResponseMixIn
	Id      string
	Healthy bool
	State   string
}

// master

type DeviceCommandRequest struct {
	ActorRequestMixIn
	Command DeviceCommand
}

type DeviceCommandResponse struct {
	ActorResponseMixIn
}
