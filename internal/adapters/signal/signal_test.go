package signal

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Sketch/internal/app"
	"github.com/dkeye/Sketch/internal/config"
	"github.com/dkeye/Sketch/internal/core"
	"github.com/dkeye/Sketch/internal/domain"
)

type fakeConn struct {
	mu     sync.Mutex
	frames []core.Frame
}

func (f *fakeConn) TrySend(fr core.Frame) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = append(f.frames, fr)
	return nil
}

func (f *fakeConn) Close() {}

// decoded returns every received envelope as a generic map, oldest first.
func (f *fakeConn) decoded(t *testing.T) []map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]map[string]any, 0, len(f.frames))
	for _, fr := range f.frames {
		var m map[string]any
		require.NoError(t, json.Unmarshal(fr, &m))
		out = append(out, m)
	}
	return out
}

func (f *fakeConn) lastOfType(t *testing.T, typ string) (map[string]any, bool) {
	t.Helper()
	msgs := f.decoded(t)
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i]["type"] == typ {
			return msgs[i], true
		}
	}
	return nil, false
}

func (f *fakeConn) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frames = nil
}

func newTestController() *Controller {
	cfg := &config.Config{
		DefaultRoom:  "general",
		CursorLimit:  100,
		CursorWindow: time.Second,
	}
	orch := &app.Orchestrator{
		Registry: app.NewRegistry(),
		Rooms:    app.NewRoomManager(),
		Policy:   app.SimplePolicy{},
	}
	return NewController(orch, cfg)
}

// connect registers a session and auto-joins the default room, the same
// path HandleSession takes after the upgrade.
func connect(ctl *Controller, sid core.SessionID, color string) *fakeConn {
	conn := &fakeConn{}
	sess := core.NewMemberSession(domain.NewMember(color), conn)
	ctl.Orch.Registry.Bind(sid, sess, nil)
	ctl.joinRoom(sid, conn, domain.RoomID(ctl.Cfg.DefaultRoom))
	return conn
}

func TestConnectDeliversInitialSync(t *testing.T) {
	ctl := newTestController()
	conn := connect(ctl, "s1", "#FF0000")

	msgs := conn.decoded(t)
	require.Len(t, msgs, 3)
	assert.Equal(t, "history", msgs[0]["type"])
	assert.Equal(t, []any{}, msgs[0]["strokes"])
	assert.Equal(t, "room-joined", msgs[1]["type"])
	assert.Equal(t, "general", msgs[1]["room"])
	assert.Equal(t, "user-count", msgs[2]["type"])
	assert.Equal(t, float64(1), msgs[2]["count"])
}

func TestJoinRoomResyncsAndUpdatesCounts(t *testing.T) {
	ctl := newTestController()
	a := connect(ctl, "s1", "#FF0000")
	b := connect(ctl, "s2", "#00FF00")

	// seed room r2 with one finished stroke
	ctl.Orch.Rooms.GetOrCreate("r2").Board().ApplyFragment(domain.Stroke{
		ID: "seed", IsFinished: true, Tool: domain.ToolRect,
	})
	a.reset()
	b.reset()

	ctl.handleEvent("s1", a, []byte(`{"type":"join-room","room":"r2"}`))

	history, ok := a.lastOfType(t, "history")
	require.True(t, ok)
	strokes := history["strokes"].([]any)
	require.Len(t, strokes, 1)
	assert.Equal(t, "seed", strokes[0].(map[string]any)["id"])

	joined, ok := a.lastOfType(t, "room-joined")
	require.True(t, ok)
	assert.Equal(t, "r2", joined["room"])

	// the member left behind sees the old room shrink
	count, ok := b.lastOfType(t, "user-count")
	require.True(t, ok)
	assert.Equal(t, float64(1), count["count"])

	assert.Equal(t, 1, ctl.Orch.Rooms.GetOrCreate("general").MemberCount())
	assert.Equal(t, 1, ctl.Orch.Rooms.GetOrCreate("r2").MemberCount())
}

func TestDrawRelaysToPeersAndMerges(t *testing.T) {
	ctl := newTestController()
	a := connect(ctl, "s1", "#FF0000")
	b := connect(ctl, "s2", "#00FF00")
	a.reset()
	b.reset()

	ctl.handleEvent("s1", a, []byte(`{"type":"draw-line","stroke":{"id":"s","tool":"brush","points":[{"x":1,"y":2}],"isFinished":false}}`))

	relayed, ok := b.lastOfType(t, "draw-line")
	require.True(t, ok)
	assert.Equal(t, "s", relayed["stroke"].(map[string]any)["id"])
	// no echo to the author
	_, echoed := a.lastOfType(t, "draw-line")
	assert.False(t, echoed)

	assert.Equal(t, 1, ctl.Orch.Rooms.GetOrCreate("general").Board().Len())
}

func TestDrawWithoutIDIsDropped(t *testing.T) {
	ctl := newTestController()
	a := connect(ctl, "s1", "#FF0000")
	b := connect(ctl, "s2", "#00FF00")
	b.reset()

	ctl.handleEvent("s1", a, []byte(`{"type":"draw-line","stroke":{"tool":"brush"}}`))

	assert.Empty(t, b.decoded(t))
	assert.Equal(t, 0, ctl.Orch.Rooms.GetOrCreate("general").Board().Len())
}

func TestUndoBroadcastsSnapshotToWholeRoom(t *testing.T) {
	ctl := newTestController()
	a := connect(ctl, "s1", "#FF0000")
	b := connect(ctl, "s2", "#00FF00")
	ctl.handleEvent("s1", a, []byte(`{"type":"draw-line","stroke":{"id":"x","tool":"brush","isFinished":true,"endPoint":{"x":1,"y":1}}}`))
	a.reset()
	b.reset()

	// author-agnostic: s2 undoes what s1 drew
	ctl.handleEvent("s2", b, []byte(`{"type":"undo"}`))

	for _, conn := range []*fakeConn{a, b} {
		msg, ok := conn.lastOfType(t, "undo")
		require.True(t, ok)
		assert.Equal(t, []any{}, msg["strokes"])
	}

	a.reset()
	b.reset()
	ctl.handleEvent("s1", a, []byte(`{"type":"redo"}`))

	msg, ok := a.lastOfType(t, "redo")
	require.True(t, ok)
	assert.Len(t, msg["strokes"].([]any), 1)
}

func TestUndoNoopEmitsNothing(t *testing.T) {
	ctl := newTestController()
	a := connect(ctl, "s1", "#FF0000")
	a.reset()

	ctl.handleEvent("s1", a, []byte(`{"type":"undo"}`))
	ctl.handleEvent("s1", a, []byte(`{"type":"redo"}`))

	assert.Empty(t, a.decoded(t))
}

func TestClearResetsRoom(t *testing.T) {
	ctl := newTestController()
	a := connect(ctl, "s1", "#FF0000")
	ctl.handleEvent("s1", a, []byte(`{"type":"draw-line","stroke":{"id":"x","tool":"brush","isFinished":true,"endPoint":{"x":1,"y":1}}}`))
	a.reset()

	ctl.handleEvent("s1", a, []byte(`{"type":"clear"}`))

	_, ok := a.lastOfType(t, "clear")
	assert.True(t, ok)
	assert.Equal(t, 0, ctl.Orch.Rooms.GetOrCreate("general").Board().Len())
}

func TestCursorMoveRelaysWithSessionColor(t *testing.T) {
	ctl := newTestController()
	a := connect(ctl, "s1", "#FF0000")
	b := connect(ctl, "s2", "#00FF00")
	a.reset()
	b.reset()

	ctl.handleEvent("s1", a, []byte(`{"type":"cursor-move","x":10,"y":20}`))

	msg, ok := b.lastOfType(t, "cursor-update")
	require.True(t, ok)
	assert.Equal(t, "s1", msg["userId"])
	assert.Equal(t, float64(10), msg["x"])
	assert.Equal(t, float64(20), msg["y"])
	assert.Equal(t, "#FF0000", msg["color"])

	_, echoed := a.lastOfType(t, "cursor-update")
	assert.False(t, echoed)
}

func TestPingEchoesTimestamp(t *testing.T) {
	ctl := newTestController()
	a := connect(ctl, "s1", "#FF0000")
	a.reset()

	ctl.handleEvent("s1", a, []byte(`{"type":"ping","timestamp":1712345678}`))

	msg, ok := a.lastOfType(t, "pong")
	require.True(t, ok)
	assert.Equal(t, float64(1712345678), msg["timestamp"])
}

func TestDisconnectNotifiesRoom(t *testing.T) {
	ctl := newTestController()
	connA := connect(ctl, "s1", "#FF0000")
	b := connect(ctl, "s2", "#00FF00")
	b.reset()

	ctl.onDisconnect("s1", connA)

	count, ok := b.lastOfType(t, "user-count")
	require.True(t, ok)
	assert.Equal(t, float64(1), count["count"])

	gone, ok := b.lastOfType(t, "user-disconnected")
	require.True(t, ok)
	assert.Equal(t, "s1", gone["userId"])

	_, found := ctl.Orch.Registry.GetSession("s1")
	assert.False(t, found)
}

func TestStaleSessionEventsAreNoops(t *testing.T) {
	ctl := newTestController()
	ghost := &fakeConn{}

	ctl.handleEvent("ghost", ghost, []byte(`{"type":"draw-line","stroke":{"id":"x","tool":"brush"}}`))
	ctl.handleEvent("ghost", ghost, []byte(`{"type":"undo"}`))
	ctl.handleEvent("ghost", ghost, []byte(`{"type":"cursor-move","x":1,"y":1}`))
	ctl.handleEvent("ghost", ghost, []byte(`{"type":"join-room","room":"r1"}`))
	ctl.handleEvent("ghost", ghost, []byte(`not json`))

	assert.Empty(t, ghost.decoded(t))
	assert.Equal(t, 0, ctl.Orch.Rooms.GetOrCreate("r1").MemberCount())
}
