package actorutil

import (
	"github.com/asynkron/protoactor-go/actor"
)

// Stash keeps messages received while an actor is busy, along with their
// original sender. A positive Limit bounds how many messages are kept.
type Stash struct {
	Limit int
	queue []stashed
}

type stashed struct {
	msg    any
	sender *actor.PID
}

// Stash keeps msg for later. It returns false, dropping msg, when the stash
// is already holding Limit messages.
func (s *Stash) Stash(ctx actor.Context, msg any) bool {
	if s.Limit > 0 && len(s.queue) >= s.Limit {
		return false
	}
	s.queue = append(s.queue, stashed{msg: msg, sender: ctx.Sender()})
	return true
}

// UnstashAll redelivers every kept message to self, oldest first, as if it
// came from its original sender.
func (s *Stash) UnstashAll(ctx actor.Context) {
	queue := s.queue
	s.queue = nil
	for _, m := range queue {
		ctx.RequestWithCustomSender(ctx.Self(), m.msg, m.sender)
	}
}

func (s *Stash) UnstashOldest(ctx actor.Context) {
	if len(s.queue) == 0 {
		return
	}
	m := s.queue[0]
	s.queue = s.queue[1:]
	ctx.RequestWithCustomSender(ctx.Self(), m.msg, m.sender)
}

func (s *Stash) Len() int {
	return len(s.queue)
}
