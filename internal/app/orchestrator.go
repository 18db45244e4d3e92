package app

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Sketch/internal/core"
	"github.com/dkeye/Sketch/internal/domain"
)

// Orchestrator wires the registry, the room manager and the
// backpressure policy. It owns membership accounting only; broadcasts
// themselves are the signal adapter's job.
type Orchestrator struct {
	Registry *Registry
	Rooms    core.RoomManager
	Policy   Policy
}

// Join moves a session into a room, leaving its previous room first.
// A session belongs to exactly one room at a time. Returns the left
// room (nil when the session had none) and the joined room; ok is
// false for sessions the registry no longer knows.
func (o *Orchestrator) Join(sid core.SessionID, roomID domain.RoomID) (prev, next core.RoomService, ok bool) {
	sess, ok := o.Registry.GetSession(sid)
	if !ok {
		return nil, nil, false
	}

	if prevID, _, in := o.Registry.RoomOf(sid); in {
		prev = o.Rooms.GetOrCreate(prevID)
		prev.RemoveMember(sid)
		log.Info().Str("module", "app.orch").Str("sid", string(sid)).Str("from_room", string(prevID)).Msg("left room")
	}

	next = o.Rooms.GetOrCreate(roomID)
	next.AddMember(sid, sess)
	o.Registry.UpdateRoom(sid, roomID)
	log.Info().Str("module", "app.orch").Str("sid", string(sid)).Str("room", string(roomID)).Msg("joined room")
	return prev, next, true
}

// RoomOf resolves the session's current room, nil when it has none.
func (o *Orchestrator) RoomOf(sid core.SessionID) (core.RoomService, bool) {
	roomID, _, ok := o.Registry.RoomOf(sid)
	if !ok {
		return nil, false
	}
	return o.Rooms.GetOrCreate(roomID), true
}

// OnDisconnect drops all session state. Returns the room the session
// was in so the adapter can notify the remaining members.
func (o *Orchestrator) OnDisconnect(sid core.SessionID) (core.RoomService, bool) {
	var room core.RoomService
	roomID, _, in := o.Registry.RoomOf(sid)
	if in {
		room = o.Rooms.GetOrCreate(roomID)
		room.RemoveMember(sid)
	}
	o.Registry.Unbind(sid)
	return room, in
}

// KickBySID removes the session's membership and cancels its
// connection context; the read pump exit finishes the cleanup.
func (o *Orchestrator) KickBySID(sid core.SessionID) {
	if roomID, _, ok := o.Registry.RoomOf(sid); ok {
		o.Rooms.GetOrCreate(roomID).RemoveMember(sid)
		o.Registry.RemoveRoom(sid)
		log.Info().Str("module", "app.orch").Str("sid", string(sid)).Str("room", string(roomID)).Msg("kicked from room")
	}
	o.Registry.Cancel(sid)
}

// HandleDropped applies the backpressure policy to receivers whose
// send buffers were full during a broadcast.
func (o *Orchestrator) HandleDropped(room core.RoomService, res core.PublishResult) {
	if o.Policy == nil {
		return
	}
	for _, sid := range res.Dropped {
		switch o.Policy.OnBackPressure(room, sid) {
		case KickMember:
			o.KickBySID(sid)
		case DropFrame, NoAction:
		}
	}
}

// EvictRoom kicks every member and stops the room. Admin surface only;
// the sync path never deletes rooms.
func (o *Orchestrator) EvictRoom(id domain.RoomID) {
	for _, snap := range o.Registry.MembersOfRoom(id) {
		o.KickBySID(snap.SID)
	}
	o.Rooms.StopRoom(id)
}
