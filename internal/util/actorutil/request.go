package actorutil

import (
	"github.com/berfenger/irpin2mqtt/internal/core/domain"

	"github.com/asynkron/protoactor-go/actor"
)

// RequestReply resolves where the answer to a request goes: the ReplyToRef
// carried by the request when set, the sender of the message otherwise.
type RequestReply struct {
	ref *domain.ActorRef
}

func ForRequest(r domain.ActorRequest) RequestReply {
	return RequestReply{ref: r.ReplyTo()}
}

func (r RequestReply) ReplyTo(ctx actor.Context) *actor.PID {
	if r.ref != nil {
		return (*actor.PID)(r.ref)
	}
	return ctx.Sender()
}

func (r RequestReply) Respond(ctx actor.Context, resp domain.ActorResponse) {
	Reply(ctx, r.ReplyTo(ctx), resp)
}

// Reply sends resp to pid. Fire-and-forget requests have no one to answer,
// so a nil pid is ignored.
func Reply(ctx actor.Context, pid *actor.PID, resp any) {
	if pid != nil {
		ctx.Send(pid, resp)
	}
}

func RefOf(pid *actor.PID) *domain.ActorRef {
	return (*domain.ActorRef)(pid)
}
