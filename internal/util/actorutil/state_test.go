package actorutil

import (
	"testing"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/stretchr/testify/assert"
)

type namedState string

func (s namedState) Name() string           { return string(s) }
func (s namedState) Receive(actor.Context) {}

func TestActorWithStatesNames(t *testing.T) {
	assert := assert.New(t)

	s := ActorWithStates{Behavior: actor.NewBehavior()}
	assert.Equal("", s.StateName())

	s.Become(namedState("idle"))
	assert.Equal("idle", s.StateName())

	s.BecomeStacked(namedState("publishing"))
	assert.Equal("publishing", s.StateName())

	s.UnbecomeStacked()
	assert.Equal("idle", s.StateName())

	s.BecomeStacked(namedState("a"))
	s.Become(namedState("busy"))
	assert.Equal("busy", s.StateName())
	s.BecomeStacked(namedState("b"))
	s.UnbecomeStacked()
	assert.Equal("busy", s.StateName(), "Become replaces the whole stack")
}
