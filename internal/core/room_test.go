package core

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Sketch/internal/domain"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []Frame
	fail   bool
}

func (f *fakeConn) TrySend(fr Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("full")
	}
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) Close() {}

func (f *fakeConn) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.frames)
}

func member(conn SignalConnection) MemberSession {
	return NewMemberSession(domain.NewMember("#ABCDEF"), conn)
}

func TestRoomMembership(t *testing.T) {
	r := NewRoomService(&domain.Room{ID: "r1"})

	assert.Equal(t, 0, r.MemberCount())
	r.AddMember("s1", member(&fakeConn{}))
	r.AddMember("s2", member(&fakeConn{}))
	assert.Equal(t, 2, r.MemberCount())

	r.RemoveMember("s1")
	assert.Equal(t, 1, r.MemberCount())
	// removing an unknown member is a no-op
	r.RemoveMember("nope")
	assert.Equal(t, 1, r.MemberCount())
}

func TestBroadcastSkipsSender(t *testing.T) {
	r := NewRoomService(&domain.Room{ID: "r1"})
	sender := &fakeConn{}
	peer := &fakeConn{}
	r.AddMember("s1", member(sender))
	r.AddMember("s2", member(peer))

	res := r.Broadcast("s1", Frame(`{"type":"draw-line"}`))

	assert.Equal(t, 1, res.SentTo)
	assert.Empty(t, res.Dropped)
	assert.Equal(t, 0, sender.count())
	assert.Equal(t, 1, peer.count())
}

func TestBroadcastAllIncludesSender(t *testing.T) {
	r := NewRoomService(&domain.Room{ID: "r1"})
	a := &fakeConn{}
	b := &fakeConn{}
	r.AddMember("s1", member(a))
	r.AddMember("s2", member(b))

	res := r.BroadcastAll(Frame(`{"type":"user-count","count":2}`))

	assert.Equal(t, 2, res.SentTo)
	assert.Equal(t, 1, a.count())
	assert.Equal(t, 1, b.count())
}

func TestBroadcastReportsDropped(t *testing.T) {
	r := NewRoomService(&domain.Room{ID: "r1"})
	slow := &fakeConn{fail: true}
	ok := &fakeConn{}
	r.AddMember("slow", member(slow))
	r.AddMember("ok", member(ok))

	res := r.BroadcastAll(Frame(`{}`))

	assert.Equal(t, 1, res.SentTo)
	require.Len(t, res.Dropped, 1)
	assert.Equal(t, SessionID("slow"), res.Dropped[0])
}

func TestRoomOwnsItsBoard(t *testing.T) {
	r1 := NewRoomService(&domain.Room{ID: "r1"})
	r2 := NewRoomService(&domain.Room{ID: "r2"})

	r1.Board().ApplyFragment(stroke("a", true))

	assert.Equal(t, 1, r1.Board().Len())
	assert.Equal(t, 0, r2.Board().Len())
}
