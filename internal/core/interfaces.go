package core

import "github.com/dkeye/Sketch/internal/domain"

// Frame is an encoded outbound message (JSON envelope).
type Frame []byte

// SessionID identifies one connection. Assigned at upgrade time,
// never reused.
type SessionID string

// SignalConnection abstracts a system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}

// MemberSession binds domain.Member and its transport endpoint.
// This is what a room stores and fans out to.
type MemberSession interface {
	Meta() *domain.Member
	Signal() SignalConnection
}

// PublishResult reports delivery stats/backpressure to the orchestrator.
type PublishResult struct {
	SentTo  int
	Dropped []SessionID
}

// RoomService is the core-facing API of a room.
// It owns the membership set and the board, but never touches
// transport resources.
type RoomService interface {
	Room() *domain.Room
	Board() *Board
	MemberCount() int

	AddMember(sid SessionID, ms MemberSession)
	RemoveMember(sid SessionID)

	// Broadcast fans out to every member except from.
	Broadcast(from SessionID, data Frame) PublishResult
	// BroadcastAll fans out to every member, sender included.
	BroadcastAll(data Frame) PublishResult
}

type RoomInfo struct {
	ID          domain.RoomID `json:"id"`
	MemberCount int           `json:"member_count"`
	StrokeCount int           `json:"stroke_count"`
}

// RoomManager hands out rooms lazily. GetOrCreate is idempotent and
// never fails; the sync path never deletes rooms.
type RoomManager interface {
	GetOrCreate(id domain.RoomID) RoomService
	List() []RoomInfo
	StopRoom(id domain.RoomID)
}
